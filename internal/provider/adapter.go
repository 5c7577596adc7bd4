package provider

import (
	"context"
	"github.com/google/uuid"
	"github.com/halvemaan/gumshoe/internal/errors"
	"log/slog"
	"strings"
	"time"
)

var ErrInvalidModelRef = errors.NewSentinel("model reference must have the form backend:model")

// ModelRef names one concrete model on one backend, e.g.
// "gemini:gemini-2.5-flash" or "openai:gpt-4o-mini".
type ModelRef struct {
	Backend string
	Model   string
}

func (r ModelRef) String() string {
	return r.Backend + ":" + r.Model
}

// ParseModelRefs parses a comma-separated list of backend:model references
// in fallback order.
func ParseModelRefs(s string) ([]ModelRef, error) {
	var refs []ModelRef
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		backend, model, found := strings.Cut(part, ":")
		if !found || backend == "" || model == "" {
			return nil, errors.Wrap(ErrInvalidModelRef, "parse model refs", slog.String("ref", part))
		}
		refs = append(refs, ModelRef{Backend: backend, Model: model})
	}
	if len(refs) == 0 {
		return nil, errors.Wrap(ErrInvalidModelRef, "parse model refs", slog.String("refs", s))
	}
	return refs, nil
}

// Adapter issues one logical generation request against an ordered model
// chain. Models are tried strictly in sequence, each at most once. A
// transient failure moves on to the next model; a credential rejection or
// fatal failure aborts the chain immediately; a fully exhausted chain
// surfaces an ExhaustionError carrying the last failure.
type Adapter struct {
	backends       map[string]Backend
	models         []ModelRef
	attemptTimeout time.Duration
	logger         *slog.Logger
}

// errEmptyCompletion marks a completion with no usable payload. It counts
// as transient so the next model gets a chance.
var errEmptyCompletion = NewTransientError(errors.NewSentinel("empty completion"))

// NewAdapter wires the given backends into a fallback chain over models.
// Every model must reference a known backend. attemptTimeout bounds each
// individual model attempt; a timed-out attempt falls back to the next
// model.
func NewAdapter(backends []Backend, models []ModelRef, attemptTimeout time.Duration, logger *slog.Logger) (*Adapter, error) {
	if len(models) == 0 {
		return nil, errors.New("fallback chain must contain at least one model")
	}
	byName := make(map[string]Backend, len(backends))
	for _, backend := range backends {
		byName[backend.Name()] = backend
	}
	for _, ref := range models {
		if _, ok := byName[ref.Backend]; !ok {
			return nil, errors.New("unknown backend in fallback chain",
				slog.String("backend", ref.Backend),
				slog.String("model", ref.String()))
		}
	}
	return &Adapter{
		backends:       byName,
		models:         models,
		attemptTimeout: attemptTimeout,
		logger:         logger,
	}, nil
}

// Generate runs the fallback chain for one request and returns the first
// usable completion. Every log line of one call shares a requestId so the
// attempts of a fallback cascade can be read together.
func (a *Adapter) Generate(ctx context.Context, req Request) (Result, error) {
	logger := a.logger.With(slog.String("requestId", uuid.NewString()))
	var lastErr error
	for _, ref := range a.models {
		// The caller cancelling or timing out aborts the whole chain; only
		// per-attempt deadlines fall back.
		if err := ctx.Err(); err != nil {
			return Result{}, errors.Wrap(err, "generation cancelled")
		}

		text, err := a.attempt(ctx, ref, req)
		if err == nil && strings.TrimSpace(text) == "" {
			err = errEmptyCompletion
		}
		if err == nil {
			logger.LogAttrs(ctx, slog.LevelDebug, "completion succeeded",
				slog.String("model", ref.String()),
				slog.Int("length", len(text)))
			return Result{Text: text, Model: ref.String()}, nil
		}

		classified := Classify(err)
		switch {
		case IsCredential(classified):
			logger.LogAttrs(ctx, slog.LevelWarn, "backend rejected credential",
				slog.String("model", ref.String()),
				errors.SlogError(classified))
			return Result{}, errors.Wrap(classified, "generate", slog.String("model", ref.String()))
		case IsTransient(classified):
			lastErr = classified
			logger.LogAttrs(ctx, slog.LevelWarn, "model attempt failed, falling back",
				slog.String("model", ref.String()),
				errors.SlogError(classified))
		default:
			logger.LogAttrs(ctx, slog.LevelError, "model attempt failed fatally",
				slog.String("model", ref.String()),
				errors.SlogError(classified))
			return Result{}, errors.Wrap(classified, "generate", slog.String("model", ref.String()))
		}
	}
	return Result{}, NewExhaustionError(lastErr)
}

func (a *Adapter) attempt(ctx context.Context, ref ModelRef, req Request) (string, error) {
	attemptCtx := ctx
	if a.attemptTimeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, a.attemptTimeout)
		defer cancel()
	}
	return a.backends[ref.Backend].Generate(attemptCtx, ref.Model, req)
}
