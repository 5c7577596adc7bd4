// Package game owns the single mutable game session: its phase, message
// log, unlocked-clue set and active interrogation target. All engine
// calls are sequenced through it. Slow calls run outside the session lock
// and commit their results only if the session has not been reset in the
// meantime, so a cancelled solve or an abandoned loading screen can never
// be overwritten by a stale result.
package game

import (
	"context"
	"github.com/google/uuid"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"
)

type Phase string

const (
	PhaseIdle    Phase = "IDLE"
	PhaseLoading Phase = "LOADING"
	PhasePlaying Phase = "PLAYING"
	PhaseSolving Phase = "SOLVING"
	PhaseEnded   Phase = "ENDED"
	PhaseFailed  Phase = "FAILED"
)

var (
	// ErrBusy rejects player actions while an engine call is in flight.
	ErrBusy = errors.NewSentinel("another request is still being processed")
	// ErrWrongPhase rejects actions the current phase does not allow.
	ErrWrongPhase = errors.NewSentinel("action is not allowed in this phase")
	// ErrInvalidTarget rejects targets that are not the GM or a living NPC.
	ErrInvalidTarget = errors.NewSentinel("target cannot be interrogated")
	// ErrStale reports that the session was reset while a call was in flight.
	ErrStale = errors.NewSentinel("session was reset while processing")

	ErrEmptyQuestion = errors.NewSentinel("question is empty")
	ErrEmptyTheory   = errors.NewSentinel("theory is empty")
)

type mysteryGenerator interface {
	Generate(ctx context.Context) (*models.Mystery, error)
}

type questionJudge interface {
	Judge(ctx context.Context, m *models.Mystery, targetID string, utterance string, history []models.ChatMessage) (models.JudgeResponse, error)
}

type theoryEvaluator interface {
	Evaluate(ctx context.Context, m *models.Mystery, theory string) (models.EndingEvaluation, error)
}

// Session is the one game in progress. It starts in IDLE and every
// NewGame discards the previous state wholesale.
type Session struct {
	generator        mysteryGenerator
	judge            questionJudge
	evaluator        theoryEvaluator
	operationTimeout time.Duration
	notify           func(Snapshot)
	logger           *slog.Logger

	mu                 sync.Mutex
	phase              Phase
	epoch              uint64
	processing         bool
	credentialRequired bool
	mystery            *models.Mystery
	messages           []models.ChatMessage
	unlocked           map[string]struct{}
	target             string
	theory             string
	evaluation         *models.EndingEvaluation
}

// NewSession wires a session in the IDLE phase. notify, when non-nil, is
// called with a fresh snapshot after every committed state change.
func NewSession(
	generator mysteryGenerator,
	judge questionJudge,
	evaluator theoryEvaluator,
	operationTimeout time.Duration,
	notify func(Snapshot),
	logger *slog.Logger,
) *Session {
	return &Session{
		generator:        generator,
		judge:            judge,
		evaluator:        evaluator,
		operationTimeout: operationTimeout,
		notify:           notify,
		logger:           logger,

		mu:                 sync.Mutex{},
		phase:              PhaseIdle,
		epoch:              0,
		processing:         false,
		credentialRequired: false,
		mystery:            nil,
		messages:           []models.ChatMessage{},
		unlocked:           map[string]struct{}{},
		target:             models.TargetGM,
		theory:             "",
		evaluation:         nil,
	}
}

// Snapshot returns the current player-visible state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// NewGame resets the session and starts generating a fresh mystery in the
// background. It is allowed in every phase, including while an earlier
// generation is still in flight; the reset bumps the session epoch so the
// abandoned call's result is discarded when it lands.
func (s *Session) NewGame(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.phase = PhaseLoading
	s.epoch++
	epoch := s.epoch
	s.processing = true
	s.credentialRequired = false
	s.mystery = nil
	s.messages = []models.ChatMessage{}
	s.unlocked = map[string]struct{}{}
	s.target = models.TargetGM
	s.theory = ""
	s.evaluation = nil
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)

	// The generation outlives the request that started it.
	go s.load(context.WithoutCancel(ctx), epoch)
	return snapshot
}

func (s *Session) load(ctx context.Context, epoch uint64) {
	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()

	m, err := s.generator.Generate(ctx)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		s.logger.LogAttrs(ctx, slog.LevelDebug, "discarding stale generation result")
		return
	}
	s.processing = false
	if err != nil {
		s.phase = PhaseFailed
		s.credentialRequired = provider.IsCredential(err)
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		s.logger.LogAttrs(ctx, slog.LevelError, "mystery generation failed", errors.SlogError(err))
		s.publish(snapshot)
		return
	}
	s.mystery = m
	s.phase = PhasePlaying
	s.messages = append(s.messages, models.ChatMessage{
		ID:      uuid.NewString(),
		Type:    models.MessageTypeSystem,
		Content: m.Situation,
	})
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
}

// SetTarget switches the interrogation target to the GM or a living NPC.
func (s *Session) SetTarget(targetID string) (Snapshot, error) {
	s.mu.Lock()
	if s.phase != PhasePlaying {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrWrongPhase, "set target", slog.String("phase", string(snapshot.Phase)))
	}
	if s.processing {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrBusy, "set target")
	}
	if targetID != models.TargetGM {
		npc, ok := s.mystery.NPC(targetID)
		if !ok || npc.Status != models.NPCStatusAlive {
			snapshot := s.snapshotLocked()
			s.mu.Unlock()
			return snapshot, errors.Wrap(ErrInvalidTarget, "set target", slog.String("target", targetID))
		}
	}
	s.target = targetID
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot, nil
}

// AskQuestion judges one player question against the current target and
// appends the exchange to the message log. The judge always produces a
// usable reply, so a failed model call still yields a turn; an unlocked
// clue is recorded at most once no matter how often the judge repeats it.
func (s *Session) AskQuestion(ctx context.Context, utterance string) (Snapshot, error) {
	utterance = strings.TrimSpace(utterance)

	s.mu.Lock()
	if s.phase != PhasePlaying {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrWrongPhase, "ask question", slog.String("phase", string(snapshot.Phase)))
	}
	if s.processing {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrBusy, "ask question")
	}
	if utterance == "" {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrEmptyQuestion, "ask question")
	}
	s.processing = true
	epoch := s.epoch
	m := s.mystery
	target := s.target
	history := slices.Clone(s.messages)
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()
	response, judgeErr := s.judge.Judge(ctx, m, target, utterance, history)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return Snapshot{}, errors.Wrap(ErrStale, "ask question")
	}
	s.processing = false
	if provider.IsCredential(judgeErr) {
		s.credentialRequired = true
	}
	s.messages = append(s.messages,
		models.ChatMessage{
			ID:      uuid.NewString(),
			Type:    models.MessageTypeUser,
			Content: utterance,
		},
		answerMessage(m, target, response),
	)
	s.recordUnlockLocked(response.UnlockedClueID)
	snapshot = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot, nil
}

// answerMessage renders a judge response as a chat message attributed to
// the GM or the questioned NPC.
func answerMessage(m *models.Mystery, target string, response models.JudgeResponse) models.ChatMessage {
	message := models.ChatMessage{
		ID:          uuid.NewString(),
		Type:        models.MessageTypeAIResponse,
		Content:     response.Reply,
		AnswerType:  response.AnswerType,
		SpeakerName: models.TargetGM,
		AvatarURL:   "",
	}
	if target != models.TargetGM {
		if npc, ok := m.NPC(target); ok {
			message.SpeakerName = npc.Name
			message.AvatarURL = npc.AvatarURL
		}
	}
	return message
}

// recordUnlockLocked marks a clue as discovered and appends its alert.
// Unknown ids and repeated unlocks are no-ops.
func (s *Session) recordUnlockLocked(clueID string) {
	if clueID == "" {
		return
	}
	if _, already := s.unlocked[clueID]; already {
		return
	}
	clue, ok := s.mystery.Clue(clueID)
	if !ok {
		return
	}
	s.unlocked[clueID] = struct{}{}
	s.messages = append(s.messages, models.ChatMessage{
		ID:      uuid.NewString(),
		Type:    models.MessageTypeClueAlert,
		Content: "New clue unlocked: " + clue.Title,
	})
}

// RequestSolve moves the session from PLAYING to SOLVING.
func (s *Session) RequestSolve() (Snapshot, error) {
	s.mu.Lock()
	if s.phase != PhasePlaying {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrWrongPhase, "request solve", slog.String("phase", string(snapshot.Phase)))
	}
	if s.processing {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrBusy, "request solve")
	}
	s.phase = PhaseSolving
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot, nil
}

// CancelSolve returns the session from SOLVING to PLAYING. It is allowed
// while an evaluation is still in flight; the epoch bump makes that
// evaluation's result stale so it cannot end the game after the fact.
func (s *Session) CancelSolve() (Snapshot, error) {
	s.mu.Lock()
	if s.phase != PhaseSolving {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrWrongPhase, "cancel solve", slog.String("phase", string(snapshot.Phase)))
	}
	s.phase = PhasePlaying
	s.epoch++
	s.processing = false
	s.theory = ""
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot, nil
}

// SubmitTheory evaluates the player's final accusation and ends the game.
// The evaluator always settles on a verdict, so a submitted theory that
// survives until commit always reaches ENDED.
func (s *Session) SubmitTheory(ctx context.Context, theory string) (Snapshot, error) {
	theory = strings.TrimSpace(theory)

	s.mu.Lock()
	if s.phase != PhaseSolving {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrWrongPhase, "submit theory", slog.String("phase", string(snapshot.Phase)))
	}
	if s.processing {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrBusy, "submit theory")
	}
	if theory == "" {
		snapshot := s.snapshotLocked()
		s.mu.Unlock()
		return snapshot, errors.Wrap(ErrEmptyTheory, "submit theory")
	}
	s.processing = true
	s.theory = theory
	epoch := s.epoch
	m := s.mystery
	snapshot := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)

	ctx, cancel := context.WithTimeout(ctx, s.operationTimeout)
	defer cancel()
	evaluation, evalErr := s.evaluator.Evaluate(ctx, m, theory)

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return Snapshot{}, errors.Wrap(ErrStale, "submit theory")
	}
	s.processing = false
	if provider.IsCredential(evalErr) {
		s.credentialRequired = true
	}
	s.phase = PhaseEnded
	s.evaluation = &evaluation
	s.messages = append(s.messages, models.ChatMessage{
		ID:      uuid.NewString(),
		Type:    models.MessageTypeSystem,
		Content: evaluation.Narrative,
	})
	snapshot = s.snapshotLocked()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot, nil
}

func (s *Session) publish(snapshot Snapshot) {
	if s.notify != nil {
		s.notify(snapshot)
	}
}
