// Package mystery builds validated mystery scenarios out of unreliable
// generator output.
package mystery

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/portrait"
	"github.com/halvemaan/gumshoe/internal/provider"
	"log/slog"
	"sync"
)

// Generator creates one mystery per game. Text generation runs hot for
// variety; the raw result is normalized so that a schema-violating
// completion still yields a playable mystery. Portraits are assigned in
// parallel afterwards and are allowed to fail per character.
type Generator struct {
	generator   provider.Generator
	portraits   portrait.Provider
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

// NewGenerator wires a mystery generator. portraits may be nil to skip
// portrait assignment entirely.
func NewGenerator(
	generator provider.Generator,
	portraits portrait.Provider,
	temperature float32,
	maxTokens int,
	logger *slog.Logger,
) *Generator {
	return &Generator{
		generator:   generator,
		portraits:   portraits,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Generate produces a complete mystery. It fails only when the text
// generation chain fails; malformed output self-heals and portrait
// failures degrade to characters without avatars.
func (g *Generator) Generate(ctx context.Context) (*models.Mystery, error) {
	result, err := g.generator.Generate(ctx, provider.Request{
		System:      generationSystem,
		Prompt:      generationPrompt,
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
		Schema:      generationSchema(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "generate mystery")
	}

	mystery := normalize(result.Text)
	g.logger.LogAttrs(ctx, slog.LevelInfo, "mystery generated",
		slog.String("model", result.Model),
		slog.String("title", mystery.Title),
		slog.Int("npcs", len(mystery.NPCs)),
		slog.Int("clues", len(mystery.Clues)),
		slog.Int("endings", len(mystery.Endings)))

	g.assignPortraits(ctx, mystery)
	return mystery, nil
}

// assignPortraits requests a portrait for every character with a visual
// summary. The requests run in parallel and join before returning; a failed
// portrait leaves that character without an avatar and never fails the
// generation.
func (g *Generator) assignPortraits(ctx context.Context, mystery *models.Mystery) {
	if g.portraits == nil {
		return
	}
	var wg sync.WaitGroup
	for i := range mystery.NPCs {
		npc := &mystery.NPCs[i]
		if npc.VisualSummary == "" {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			ref, err := g.portraits.Portrait(ctx, npc.Name, npc.VisualSummary)
			if err != nil {
				g.logger.LogAttrs(ctx, slog.LevelWarn, "portrait failed, continuing without avatar",
					slog.String("npc", npc.Name),
					errors.SlogError(err))
				return
			}
			npc.AvatarURL = ref
		}()
	}
	wg.Wait()
}
