// Package ending scores the player's final theory against the hidden
// solution and picks the matching conclusion. An evaluation always
// settles: when the model chain or its output fails, the evaluator
// returns a fixed BAD ending alongside the error, so a solve attempt can
// never leave the game hanging without a verdict.
package ending

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"log/slog"
	"strings"
)

// FallbackTitle and FallbackNarrative make up the fixed BAD ending used
// when no verdict could be produced.
const (
	FallbackTitle = "The Case Goes Cold"

	FallbackNarrative = "You lay out your theory to the assembled company, and it falls apart " +
		"under the first hard question. The inquest returns an open verdict, the file is carried " +
		"down to the cold archive, and whoever did it walks out into the night unnamed."
)

// Fallback is the evaluation used when the model chain or its output fails.
func Fallback() models.EndingEvaluation {
	return models.EndingEvaluation{
		Type:      models.EndingTypeBad,
		Title:     FallbackTitle,
		Narrative: FallbackNarrative,
	}
}

type Evaluator struct {
	generator   provider.Generator
	temperature float32
	maxTokens   int
	logger      *slog.Logger
}

func NewEvaluator(generator provider.Generator, temperature float32, maxTokens int, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		generator:   generator,
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger,
	}
}

// Evaluate matches the player's free-text theory against the mystery's
// endings. The returned evaluation is always usable; when err is non-nil it
// is the fixed Fallback and err carries the failure for the caller to
// classify.
func (e *Evaluator) Evaluate(ctx context.Context, m *models.Mystery, theory string) (models.EndingEvaluation, error) {
	result, err := e.generator.Generate(ctx, provider.Request{
		System:      evaluatorSystem,
		Prompt:      evaluationPrompt(m, theory),
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
		Schema:      evaluationSchema(),
	})
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "evaluation failed, falling back", errors.SlogError(err))
		return Fallback(), errors.Wrap(err, "evaluate theory")
	}

	evaluation, err := parseEvaluation(result.Text)
	if err != nil {
		e.logger.LogAttrs(ctx, slog.LevelWarn, "evaluation unparsable, falling back",
			slog.String("model", result.Model), errors.SlogError(err))
		return Fallback(), errors.Wrap(err, "evaluate theory")
	}
	return evaluation, nil
}

type rawEvaluation struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Narrative string `json:"narrative"`
}

// parseEvaluation decodes a completion into an EndingEvaluation. Unknown
// ending types soften to NEUTRAL; a missing title or narrative is treated
// as a failure so the caller substitutes the fixed fallback wholesale.
func parseEvaluation(completion string) (models.EndingEvaluation, error) {
	raw, err := provider.DecodeJSON[rawEvaluation](completion)
	if err != nil {
		return models.EndingEvaluation{}, errors.Wrap(err, "decode evaluation")
	}

	title := strings.TrimSpace(raw.Title)
	narrative := strings.TrimSpace(raw.Narrative)
	if title == "" || narrative == "" {
		return models.EndingEvaluation{}, errors.New("evaluation missing title or narrative")
	}

	return models.EndingEvaluation{
		Type:      models.ParseEndingType(raw.Type),
		Title:     title,
		Narrative: narrative,
	}, nil
}
