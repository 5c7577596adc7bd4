package game_test

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"github.com/halvemaan/gumshoe/internal/judge"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/halvemaan/gumshoe/internal/provider"
	"github.com/halvemaan/gumshoe/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"sync"
	"testing"
	"time"
)

type stubGenerator struct {
	mu        sync.Mutex
	mysteries []*models.Mystery
	err       error
	calls     int
	entered   chan struct{}
	block     chan struct{}
}

func (s *stubGenerator) Generate(_ context.Context) (*models.Mystery, error) {
	s.mu.Lock()
	n := s.calls
	s.calls++
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.mysteries[n%len(s.mysteries)], nil
}

type stubJudge struct {
	mu       sync.Mutex
	response models.JudgeResponse
	err      error
	targets  []string
	block    chan struct{}
}

func (s *stubJudge) Judge(
	_ context.Context, _ *models.Mystery, targetID string, _ string, _ []models.ChatMessage,
) (models.JudgeResponse, error) {
	s.mu.Lock()
	s.targets = append(s.targets, targetID)
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	return s.response, s.err
}

type stubEvaluator struct {
	evaluation models.EndingEvaluation
	err        error
	block      chan struct{}
}

func (s *stubEvaluator) Evaluate(_ context.Context, _ *models.Mystery, _ string) (models.EndingEvaluation, error) {
	if s.block != nil {
		<-s.block
	}
	return s.evaluation, s.err
}

func murderCase() *models.Mystery {
	return &models.Mystery{
		Title:      "Death at the Observatory",
		Situation:  "The director was found frozen under an open dome.",
		Solution:   "The astronomer jammed the dome gears and let the cold do the rest.",
		Difficulty: "classic",
		NPCs: []models.NPC{
			{ID: "victim", Name: "Dr. Marlowe", Role: "the director", Status: models.NPCStatusDeceased},
			{ID: "prof", Name: "Professor Lenz", Role: "the astronomer", Status: models.NPCStatusAlive,
				Personality: "Precise, evasive.", AvatarURL: "https://avatars.test/lenz"},
			{ID: "porter", Name: "Sam Reed", Role: "the night porter", Status: models.NPCStatusAlive},
		},
		Clues: []models.Clue{
			{ID: "c1", Title: "knife found at scene", Description: "A letter knife under the desk.", IsLocked: true},
			{ID: "c2", Title: "Jammed gears", Description: "A spanner wedged in the dome mechanism.", IsLocked: true},
		},
		Endings: []models.Ending{
			{Type: models.EndingTypeGood, Title: "The Full Picture", Condition: "names the astronomer and the method"},
			{Type: models.EndingTypeBad, Title: "The Wrong Door", Condition: "accuses anyone else"},
		},
	}
}

type fixture struct {
	generator *stubGenerator
	judge     *stubJudge
	evaluator *stubEvaluator
	session   *game.Session
	events    chan game.Snapshot
}

func newFixture() *fixture {
	f := &fixture{
		generator: &stubGenerator{mysteries: []*models.Mystery{murderCase()}},
		judge:     &stubJudge{response: models.JudgeResponse{AnswerType: models.AnswerTypeNo, Reply: "No."}},
		evaluator: &stubEvaluator{evaluation: models.EndingEvaluation{
			Type: models.EndingTypeGood, Title: "The Full Picture", Narrative: "You name the astronomer.",
		}},
		events: make(chan game.Snapshot, 64),
	}
	f.session = game.NewSession(
		f.generator,
		f.judge,
		f.evaluator,
		time.Minute,
		func(snapshot game.Snapshot) { f.events <- snapshot },
		testhelpers.NewLogger(io.Discard),
	)
	return f
}

func waitFor(t *testing.T, events <-chan game.Snapshot, predicate func(game.Snapshot) bool) game.Snapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case snapshot := <-events:
			if predicate(snapshot) {
				return snapshot
			}
		case <-deadline:
			t.Fatal("timed out waiting for a matching event")
			return game.Snapshot{}
		}
	}
}

func waitForPhase(t *testing.T, events <-chan game.Snapshot, phase game.Phase) game.Snapshot {
	t.Helper()
	return waitFor(t, events, func(snapshot game.Snapshot) bool { return snapshot.Phase == phase })
}

func startGame(t *testing.T, f *fixture) {
	t.Helper()
	snapshot := f.session.NewGame(context.Background())
	require.Equal(t, game.PhaseLoading, snapshot.Phase)
	require.True(t, snapshot.Processing)
	waitForPhase(t, f.events, game.PhasePlaying)
}

func countMessages(messages []models.ChatMessage, messageType models.MessageType) int {
	count := 0
	for _, message := range messages {
		if message.Type == messageType {
			count++
		}
	}
	return count
}

func TestSession_startsAGame(t *testing.T) {
	f := newFixture()

	assert.Equal(t, game.PhaseIdle, f.session.Snapshot().Phase)
	startGame(t, f)

	snapshot := f.session.Snapshot()
	assert.Equal(t, game.PhasePlaying, snapshot.Phase)
	assert.False(t, snapshot.Processing)
	assert.Equal(t, models.TargetGM, snapshot.Target)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, models.MessageTypeSystem, snapshot.Messages[0].Type)
	assert.Equal(t, "The director was found frozen under an open dome.", snapshot.Messages[0].Content)
	assert.Empty(t, snapshot.UnlockedClues)
}

func TestSession_snapshotRedactsSecrets(t *testing.T) {
	f := newFixture()
	startGame(t, f)

	snapshot := f.session.Snapshot()
	require.NotNil(t, snapshot.Mystery)
	assert.Equal(t, "Death at the Observatory", snapshot.Mystery.Title)
	require.Len(t, snapshot.Mystery.Clues, 2)
	for _, clue := range snapshot.Mystery.Clues {
		assert.False(t, clue.Unlocked)
		assert.Empty(t, clue.Title)
		assert.Empty(t, clue.Description)
	}
	assert.Len(t, snapshot.Mystery.NPCs, 3)
}

func TestSession_failedGenerationFailsTheGame(t *testing.T) {
	tests := []struct {
		name               string
		err                error
		credentialRequired bool
	}{
		{
			name:               "exhausted chain",
			err:                provider.NewExhaustionError(errors.New("all models overloaded")),
			credentialRequired: false,
		},
		{
			name:               "rejected credential",
			err:                provider.NewCredentialError(errors.New("invalid api key")),
			credentialRequired: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.generator.err = tt.err

			f.session.NewGame(context.Background())
			snapshot := waitForPhase(t, f.events, game.PhaseFailed)

			assert.False(t, snapshot.Processing)
			assert.Equal(t, tt.credentialRequired, snapshot.CredentialRequired)
			assert.Nil(t, snapshot.Mystery)
		})
	}
}

func TestSession_unlocksAClueOnce(t *testing.T) {
	f := newFixture()
	f.judge.response = models.JudgeResponse{
		AnswerType:     models.AnswerTypeYes,
		Reply:          "The knife matters.",
		UnlockedClueID: "c1",
	}
	startGame(t, f)

	snapshot, err := f.session.AskQuestion(context.Background(), "Tell me about the knife.")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, snapshot.UnlockedClues)
	require.Equal(t, 1, countMessages(snapshot.Messages, models.MessageTypeClueAlert))
	assert.Contains(t, snapshot.Messages[len(snapshot.Messages)-1].Content, "knife")

	clue := snapshot.Mystery.Clues[0]
	assert.True(t, clue.Unlocked)
	assert.Equal(t, "knife found at scene", clue.Title)

	messagesBefore := len(snapshot.Messages)
	snapshot, err = f.session.AskQuestion(context.Background(), "What about that knife again?")
	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, snapshot.UnlockedClues)
	assert.Equal(t, 1, countMessages(snapshot.Messages, models.MessageTypeClueAlert))
	assert.Len(t, snapshot.Messages, messagesBefore+2)
}

func TestSession_ignoresUnknownUnlockIDs(t *testing.T) {
	f := newFixture()
	f.judge.response = models.JudgeResponse{
		AnswerType:     models.AnswerTypeYes,
		Reply:          "Indeed.",
		UnlockedClueID: "c99",
	}
	startGame(t, f)

	snapshot, err := f.session.AskQuestion(context.Background(), "Was it murder?")
	require.NoError(t, err)
	assert.Empty(t, snapshot.UnlockedClues)
	assert.Equal(t, 0, countMessages(snapshot.Messages, models.MessageTypeClueAlert))
}

func TestSession_attributesAnswersToTheTarget(t *testing.T) {
	f := newFixture()
	f.judge.response = models.JudgeResponse{AnswerType: models.AnswerTypeNPCDialogue, Reply: "I saw nothing."}
	startGame(t, f)

	_, err := f.session.SetTarget("prof")
	require.NoError(t, err)
	snapshot, err := f.session.AskQuestion(context.Background(), "Where were you?")
	require.NoError(t, err)

	assert.Equal(t, []string{"prof"}, f.judge.targets)
	answer := snapshot.Messages[len(snapshot.Messages)-1]
	assert.Equal(t, models.MessageTypeAIResponse, answer.Type)
	assert.Equal(t, "Professor Lenz", answer.SpeakerName)
	assert.Equal(t, "https://avatars.test/lenz", answer.AvatarURL)
}

func TestSession_rejectsBadTargets(t *testing.T) {
	f := newFixture()
	startGame(t, f)

	_, err := f.session.SetTarget("victim")
	require.ErrorIs(t, err, game.ErrInvalidTarget)
	_, err = f.session.SetTarget("nobody")
	require.ErrorIs(t, err, game.ErrInvalidTarget)

	assert.Equal(t, models.TargetGM, f.session.Snapshot().Target)
}

func TestSession_gatesQuestionsByPhase(t *testing.T) {
	f := newFixture()

	_, err := f.session.AskQuestion(context.Background(), "Anyone there?")
	require.ErrorIs(t, err, game.ErrWrongPhase)

	startGame(t, f)
	_, err = f.session.AskQuestion(context.Background(), "   ")
	require.ErrorIs(t, err, game.ErrEmptyQuestion)

	_, err = f.session.RequestSolve()
	require.NoError(t, err)
	_, err = f.session.AskQuestion(context.Background(), "One more thing.")
	require.ErrorIs(t, err, game.ErrWrongPhase)
}

func TestSession_rejectsConcurrentQuestions(t *testing.T) {
	f := newFixture()
	f.judge.block = make(chan struct{})
	startGame(t, f)

	type askResult struct {
		snapshot game.Snapshot
		err      error
	}
	results := make(chan askResult, 1)
	go func() {
		snapshot, err := f.session.AskQuestion(context.Background(), "A slow question.")
		results <- askResult{snapshot: snapshot, err: err}
	}()
	waitFor(t, f.events, func(snapshot game.Snapshot) bool { return snapshot.Processing })

	_, err := f.session.AskQuestion(context.Background(), "An impatient question.")
	require.ErrorIs(t, err, game.ErrBusy)

	close(f.judge.block)
	result := <-results
	require.NoError(t, result.err)
	assert.False(t, result.snapshot.Processing)
}

func TestSession_flagsCredentialFailuresDuringPlay(t *testing.T) {
	f := newFixture()
	f.judge.response = judge.Fallback()
	f.judge.err = provider.NewCredentialError(errors.New("invalid api key"))
	startGame(t, f)

	snapshot, err := f.session.AskQuestion(context.Background(), "Who did it?")
	require.NoError(t, err)

	assert.True(t, snapshot.CredentialRequired)
	assert.Equal(t, game.PhasePlaying, snapshot.Phase)
	answer := snapshot.Messages[len(snapshot.Messages)-1]
	assert.Equal(t, judge.FallbackReply, answer.Content)
}

func TestSession_solveEndsTheGame(t *testing.T) {
	f := newFixture()
	startGame(t, f)

	snapshot, err := f.session.RequestSolve()
	require.NoError(t, err)
	assert.Equal(t, game.PhaseSolving, snapshot.Phase)

	snapshot, err = f.session.SubmitTheory(context.Background(), "Lenz jammed the gears.")
	require.NoError(t, err)
	assert.Equal(t, game.PhaseEnded, snapshot.Phase)
	require.NotNil(t, snapshot.Ending)
	assert.Equal(t, models.EndingTypeGood, snapshot.Ending.Type)
	assert.Equal(t, "Lenz jammed the gears.", snapshot.Theory)
	assert.Equal(t, "You name the astronomer.", snapshot.Messages[len(snapshot.Messages)-1].Content)
}

func TestSession_solveSettlesEvenWhenEvaluationFails(t *testing.T) {
	f := newFixture()
	f.evaluator.evaluation = models.EndingEvaluation{
		Type: models.EndingTypeBad, Title: "The Case Goes Cold", Narrative: "The file gathers dust.",
	}
	f.evaluator.err = provider.NewExhaustionError(errors.New("all models overloaded"))
	startGame(t, f)

	_, err := f.session.RequestSolve()
	require.NoError(t, err)
	snapshot, err := f.session.SubmitTheory(context.Background(), "It was the porter.")
	require.NoError(t, err)

	assert.Equal(t, game.PhaseEnded, snapshot.Phase)
	require.NotNil(t, snapshot.Ending)
	assert.Equal(t, models.EndingTypeBad, snapshot.Ending.Type)
}

func TestSession_cancelSolveDiscardsTheLateVerdict(t *testing.T) {
	f := newFixture()
	f.evaluator.block = make(chan struct{})
	startGame(t, f)

	_, err := f.session.RequestSolve()
	require.NoError(t, err)

	results := make(chan error, 1)
	go func() {
		_, err := f.session.SubmitTheory(context.Background(), "It was the porter.")
		results <- err
	}()
	waitFor(t, f.events, func(snapshot game.Snapshot) bool {
		return snapshot.Phase == game.PhaseSolving && snapshot.Processing
	})

	snapshot, err := f.session.CancelSolve()
	require.NoError(t, err)
	assert.Equal(t, game.PhasePlaying, snapshot.Phase)
	assert.False(t, snapshot.Processing)

	close(f.evaluator.block)
	require.ErrorIs(t, <-results, game.ErrStale)

	snapshot = f.session.Snapshot()
	assert.Equal(t, game.PhasePlaying, snapshot.Phase)
	assert.Nil(t, snapshot.Ending)
}

func TestSession_cancelSolveRequiresSolving(t *testing.T) {
	f := newFixture()
	startGame(t, f)

	_, err := f.session.CancelSolve()
	require.ErrorIs(t, err, game.ErrWrongPhase)
}

func TestSession_newGameDiscardsTheAbandonedLoad(t *testing.T) {
	f := newFixture()
	second := murderCase()
	second.Title = "The Second Case"
	f.generator.mysteries = []*models.Mystery{murderCase(), second}
	f.generator.entered = make(chan struct{}, 2)
	f.generator.block = make(chan struct{})

	f.session.NewGame(context.Background())
	<-f.generator.entered

	f.session.NewGame(context.Background())
	<-f.generator.entered
	close(f.generator.block)

	snapshot := waitForPhase(t, f.events, game.PhasePlaying)
	assert.Equal(t, "The Second Case", snapshot.Mystery.Title)
	assert.Equal(t, "The Second Case", f.session.Snapshot().Mystery.Title)
}

func TestSession_newGameResetsEverything(t *testing.T) {
	f := newFixture()
	f.judge.response = models.JudgeResponse{
		AnswerType:     models.AnswerTypeYes,
		Reply:          "The knife matters.",
		UnlockedClueID: "c1",
	}
	startGame(t, f)

	_, err := f.session.SetTarget("prof")
	require.NoError(t, err)
	_, err = f.session.AskQuestion(context.Background(), "Tell me about the knife.")
	require.NoError(t, err)
	_, err = f.session.RequestSolve()
	require.NoError(t, err)
	snapshot, err := f.session.SubmitTheory(context.Background(), "Lenz did it.")
	require.NoError(t, err)
	require.Equal(t, game.PhaseEnded, snapshot.Phase)

	// Consume the first game's buffered events so waitForPhase below sees
	// the new game's PLAYING snapshot rather than a stale one.
	waitForPhase(t, f.events, game.PhaseEnded)

	f.session.NewGame(context.Background())
	snapshot = waitForPhase(t, f.events, game.PhasePlaying)

	assert.Empty(t, snapshot.UnlockedClues)
	assert.Equal(t, models.TargetGM, snapshot.Target)
	assert.Empty(t, snapshot.Theory)
	assert.Nil(t, snapshot.Ending)
	assert.False(t, snapshot.CredentialRequired)
	require.Len(t, snapshot.Messages, 1)
	assert.Equal(t, models.MessageTypeSystem, snapshot.Messages[0].Type)
}
