package main

import (
	"bufio"
	"context"
	"encoding/json"
	"github.com/halvemaan/gumshoe/internal/game"
	"github.com/halvemaan/gumshoe/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"
)

const phaseTimeout = 5 * time.Second

func Test_application_playthrough(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx, cancel := context.WithTimeout(context.Background(), phaseTimeout)
	defer cancel()

	snapshot, err := client.State(ctx)
	require.NoError(t, err)
	require.Equal(t, game.PhaseIdle, snapshot.Phase)
	require.Nil(t, snapshot.Mystery)

	snapshot, err = client.NewGame(ctx)
	require.NoError(t, err)
	require.Equal(t, game.PhaseLoading, snapshot.Phase)
	require.True(t, snapshot.Processing)

	snapshot, err = client.WaitForPhase(ctx, game.PhasePlaying)
	require.NoError(t, err)
	require.False(t, snapshot.Processing)
	require.NotNil(t, snapshot.Mystery)
	require.Equal(t, "Murder at the Gaslight Archive", snapshot.Mystery.Title)
	require.Len(t, snapshot.Mystery.NPCs, 4)
	require.Len(t, snapshot.Mystery.Clues, 4)
	for _, clue := range snapshot.Mystery.Clues {
		require.False(t, clue.Unlocked)
		require.Empty(t, clue.Title, "locked clues must not leak their titles")
	}
	require.Len(t, snapshot.Messages, 1)
	require.Equal(t, models.MessageTypeSystem, snapshot.Messages[0].Type)
	require.Contains(t, snapshot.Messages[0].Content, "Edmund Hale")
	require.Equal(t, models.TargetGM, snapshot.Target)

	snapshot, err = client.SetTarget(ctx, "lang")
	require.NoError(t, err)
	require.Equal(t, "lang", snapshot.Target)

	snapshot, err = client.Ask(ctx, "Who visited the archive after closing?")
	require.NoError(t, err)
	require.Len(t, snapshot.Messages, 4)
	answer := snapshot.Messages[2]
	require.Equal(t, models.MessageTypeAIResponse, answer.Type)
	require.Equal(t, "Beatrice Lang", answer.SpeakerName)
	require.Contains(t, answer.Content, "archive after closing")
	alert := snapshot.Messages[3]
	require.Equal(t, models.MessageTypeClueAlert, alert.Type)
	require.Equal(t, "New clue unlocked: Torn ledger page", alert.Content)
	require.Equal(t, []string{"c1"}, snapshot.UnlockedClues)

	// The same clue never unlocks twice, so the repeat answer adds exactly
	// the question and the reply.
	snapshot, err = client.Ask(ctx, "Tell me again about the ledger.")
	require.NoError(t, err)
	require.Len(t, snapshot.Messages, 6)
	require.Equal(t, []string{"c1"}, snapshot.UnlockedClues)

	snapshot, err = client.Solve(ctx)
	require.NoError(t, err)
	require.Equal(t, game.PhaseSolving, snapshot.Phase)

	snapshot, err = client.CancelSolve(ctx)
	require.NoError(t, err)
	require.Equal(t, game.PhasePlaying, snapshot.Phase)

	_, err = client.Solve(ctx)
	require.NoError(t, err)

	theory := "Lang sold forged charts, Hale caught her, and she left through the coal chute."
	snapshot, err = client.SubmitTheory(ctx, theory)
	require.NoError(t, err)
	require.Equal(t, game.PhaseEnded, snapshot.Phase)
	require.Equal(t, theory, snapshot.Theory)
	require.NotNil(t, snapshot.Ending)
	require.Equal(t, models.EndingTypeNeutral, snapshot.Ending.Type)
	require.Equal(t, "A Partial Truth", snapshot.Ending.Title)
	last := snapshot.Messages[len(snapshot.Messages)-1]
	require.Equal(t, models.MessageTypeSystem, last.Type)
	require.Equal(t, snapshot.Ending.Narrative, last.Content)
}

func Test_application_stateRedactsTheSolution(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx, cancel := context.WithTimeout(context.Background(), phaseTimeout)
	defer cancel()

	_, err := client.NewGame(ctx)
	require.NoError(t, err)
	_, err = client.WaitForPhase(ctx, game.PhasePlaying)
	require.NoError(t, err)

	resp, err := client.Get(ctx, "/api/state")
	require.NoError(t, err)
	defer func() {
		err = resp.Body.Close()
		assert.NoError(t, err)
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	// The fake case's solution and ending conditions must never reach the
	// wire while the game is on.
	require.NotContains(t, string(body), "killed Hale")
	require.NotContains(t, string(body), "solution")
	require.NotContains(t, string(body), "coal chute escape")
	require.NotContains(t, string(body), "Torn ledger page")
}

// errorEnvelope mirrors the rejection body so tests can decode it.
type errorEnvelope struct {
	Error string        `json:"error"`
	State game.Snapshot `json:"state"`
}

func postRaw(t *testing.T, ctx context.Context, url, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = resp.Body.Close()
	})
	return resp
}

func Test_application_rejectsOutOfPhaseCommands(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx, cancel := context.WithTimeout(context.Background(), phaseTimeout)
	defer cancel()

	// Nothing but a new game works while idle.
	for _, path := range []string{"/api/question", "/api/theory", "/api/solve", "/api/solve/cancel"} {
		resp := postRaw(t, ctx, server.URL()+path, `{"question":"hello","theory":"hello"}`)
		require.Equalf(t, http.StatusConflict, resp.StatusCode, "path %s", path)
		var envelope errorEnvelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
		require.Equal(t, game.PhaseIdle, envelope.State.Phase)
		require.NotEmpty(t, envelope.Error)
	}

	_, err := client.NewGame(ctx)
	require.NoError(t, err)
	_, err = client.WaitForPhase(ctx, game.PhasePlaying)
	require.NoError(t, err)

	// Blank questions are rejected before they reach the judge.
	resp := postRaw(t, ctx, server.URL()+"/api/question", `{"question":"   "}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var envelope errorEnvelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&envelope))
	require.Contains(t, envelope.Error, "question")

	// The dead make poor witnesses and strangers worse ones.
	for _, target := range []string{"hale", "nobody"} {
		resp = postRaw(t, ctx, server.URL()+"/api/target", `{"target":"`+target+`"}`)
		require.Equalf(t, http.StatusBadRequest, resp.StatusCode, "target %s", target)
	}

	// Unparsable bodies never reach the session at all.
	resp = postRaw(t, ctx, server.URL()+"/api/question", `this is not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func Test_application_streamEvents(t *testing.T) {
	server := startTestServer(t)
	client := server.Client()
	ctx, cancel := context.WithTimeout(context.Background(), phaseTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/api/events")
	require.NoError(t, err)
	defer func() {
		err = resp.Body.Close()
		assert.NoError(t, err)
	}()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	scanner := bufio.NewScanner(resp.Body)
	next := func() game.Snapshot {
		t.Helper()
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data: ") {
				continue
			}
			var snapshot game.Snapshot
			require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &snapshot))
			return snapshot
		}
		t.Fatalf("event stream ended early: %v", scanner.Err())
		return game.Snapshot{}
	}

	// The stream opens with the current state before any change happens.
	require.Equal(t, game.PhaseIdle, next().Phase)

	_, err = client.NewGame(ctx)
	require.NoError(t, err)

	require.Equal(t, game.PhaseLoading, next().Phase)
	playing := next()
	require.Equal(t, game.PhasePlaying, playing.Phase)
	require.NotNil(t, playing.Mystery)
	require.Equal(t, "Murder at the Gaslight Archive", playing.Mystery.Title)
}
