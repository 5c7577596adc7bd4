package main

import (
	"encoding/json"
	"fmt"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"io"
	"log/slog"
	"net/http"
)

// streamEvents pushes state snapshots over Server-Sent Events. The client
// gets the current state immediately on connect and then one event per
// committed change until it disconnects or the server shuts down.
func (app *application) streamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support streaming"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")

	subscriber := app.events.Subscribe()
	defer app.events.Unsubscribe(subscriber)

	// Opening snapshot so the client does not have to wait for the next
	// change to render something.
	if err := writeEvent(w, app.session.Snapshot()); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelDebug, "event stream closed", errors.SlogError(err))
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case snapshot, open := <-subscriber:
			if !open {
				return
			}
			if err := writeEvent(w, snapshot); err != nil {
				app.logger.LogAttrs(r.Context(), slog.LevelDebug, "event stream closed", errors.SlogError(err))
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes one snapshot as an SSE "state" event.
func writeEvent(w io.Writer, snapshot game.Snapshot) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, "marshal snapshot")
	}
	if _, err = fmt.Fprintf(w, "event: state\ndata: %s\n\n", payload); err != nil {
		return errors.Wrap(err, "write event")
	}
	return nil
}
