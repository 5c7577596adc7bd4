package main

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/e2etest"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"github.com/halvemaan/gumshoe/internal/logging"
	"log/slog"
	"os"
	"strings"
	"time"
)

// TestGame plays a short case from generation to verdict against a running
// server.
func TestGame(client *e2etest.Client) error {
	ctx := context.Background()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute) //nolint:mnd // generation against live models is slow.
	defer cancel()
	var (
		err      error
		snapshot game.Snapshot
	)

	if _, err = client.NewGame(ctx); err != nil {
		return errors.Wrap(err, "new game")
	}
	if snapshot, err = client.WaitForPhase(ctx, game.PhasePlaying); err != nil {
		return errors.Wrap(err, "wait for generation")
	}
	if snapshot.Mystery == nil || len(snapshot.Mystery.NPCs) == 0 {
		return errors.New("generated mystery is empty")
	}
	if snapshot, err = client.Ask(ctx, "Set the scene for me. Who found the body?"); err != nil {
		return errors.Wrap(err, "ask question")
	}
	if len(snapshot.Messages) < 3 { //nolint:mnd // briefing, question, answer.
		return errors.New("question produced no answer", slog.Int("messages", len(snapshot.Messages)))
	}
	if _, err = client.Solve(ctx); err != nil {
		return errors.Wrap(err, "request solve")
	}
	if snapshot, err = client.SubmitTheory(ctx, "It was the quiet one, acting alone, for money."); err != nil {
		return errors.Wrap(err, "submit theory")
	}
	if snapshot.Ending == nil {
		return errors.New("ended game carries no ending")
	}
	return nil
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only the server address to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname-or-url>")
		os.Exit(1)
	}

	var (
		url = os.Args[1]
		err error
	)
	if !strings.HasPrefix(url, "http") {
		url = "https://" + url
	}
	ctx = logging.WithAttrs(ctx, slog.String("url", url))

	client := e2etest.NewClient(url)
	if err = client.WaitForReady(ctx, "/api/healthy"); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready", errors.SlogError(err))
		os.Exit(1)
	}
	if err = TestGame(client); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing game", errors.SlogError(err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌")
	os.Exit(0)
}
