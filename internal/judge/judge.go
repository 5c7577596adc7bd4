// Package judge adjudicates player questions against a mystery's hidden
// solution. Questions directed at the GM get omniscient yes/no style
// verdicts; questions directed at an NPC get in-character dialogue. A
// judgment is always usable: when the model chain or the completion fails
// the judge returns a fixed clarification reply alongside the error, so
// the game never stalls on a dead answer.
package judge

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"log/slog"
)

// FallbackReply is shown when no usable judgment could be produced.
const FallbackReply = "A burst of static swallows the answer. Whatever was said is lost to the interference. Ask that again."

// Fallback is the judgment used when the model chain or its output fails.
// It never unlocks a clue.
func Fallback() models.JudgeResponse {
	return models.JudgeResponse{
		AnswerType:     models.AnswerTypeClarification,
		Reply:          FallbackReply,
		UnlockedClueID: "",
	}
}

type Judge struct {
	generator      provider.Generator
	gmTemperature  float32
	npcTemperature float32
	maxTokens      int
	logger         *slog.Logger
}

func NewJudge(
	generator provider.Generator,
	gmTemperature float32,
	npcTemperature float32,
	maxTokens int,
	logger *slog.Logger,
) *Judge {
	return &Judge{
		generator:      generator,
		gmTemperature:  gmTemperature,
		npcTemperature: npcTemperature,
		maxTokens:      maxTokens,
		logger:         logger,
	}
}

// Judge answers one player question aimed at targetID, which is either
// models.TargetGM or the ID of a living NPC. The returned JudgeResponse is
// always usable; when err is non-nil it is the fixed Fallback and err
// carries the failure for the caller to classify.
func (j *Judge) Judge(
	ctx context.Context,
	m *models.Mystery,
	targetID string,
	utterance string,
	history []models.ChatMessage,
) (models.JudgeResponse, error) {
	system := gmSystem
	temperature := j.gmTemperature
	if targetID != models.TargetGM {
		npc, ok := m.NPC(targetID)
		if !ok || npc.Status != models.NPCStatusAlive {
			err := errors.New("target cannot be interrogated", slog.String("target", targetID))
			j.logger.LogAttrs(ctx, slog.LevelWarn, "judgment failed, falling back", errors.SlogError(err))
			return Fallback(), err
		}
		system = npcSystem(npc)
		temperature = j.npcTemperature
	}

	result, err := j.generator.Generate(ctx, provider.Request{
		System:      system,
		Prompt:      userPrompt(m, utterance, history),
		Temperature: temperature,
		MaxTokens:   j.maxTokens,
		Schema:      judgmentSchema(),
	})
	if err != nil {
		j.logger.LogAttrs(ctx, slog.LevelWarn, "judgment failed, falling back",
			slog.String("target", targetID), errors.SlogError(err))
		return Fallback(), errors.Wrap(err, "judge question")
	}

	response, err := parseJudgment(m, result.Text)
	if err != nil {
		j.logger.LogAttrs(ctx, slog.LevelWarn, "judgment unparsable, falling back",
			slog.String("target", targetID), slog.String("model", result.Model), errors.SlogError(err))
		return Fallback(), errors.Wrap(err, "judge question")
	}
	return response, nil
}
