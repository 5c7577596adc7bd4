package main

import (
	"encoding/json"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"log/slog"
	"net/http"
)

// maxRequestBytes caps request bodies. Questions and theories are a few
// paragraphs at most.
const maxRequestBytes = 1 << 20

func (app *application) serverError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.LogAttrs(r.Context(), slog.LevelError, "server error",
		slog.String("method", method), slog.String("uri", uri), errors.SlogError(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (app *application) clientError(w http.ResponseWriter, r *http.Request, status int) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Debug(http.StatusText(status), "method", method, "uri", uri)
	http.Error(w, http.StatusText(status), status)
}

// writeJSON renders v with the given status. Once the header is written an
// encoding failure can only be logged.
func (app *application) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		app.logger.LogAttrs(r.Context(), slog.LevelError, "encode response", errors.SlogError(err))
	}
}

// readJSON decodes the request body into v. On failure it responds with
// 400 Bad Request and returns false.
func (app *application) readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		app.clientError(w, r, http.StatusBadRequest)
		return false
	}
	return true
}

// errorResponse is the body for rejected game commands. The current state
// rides along so clients can resynchronise without a second round trip.
type errorResponse struct {
	Error string        `json:"error"`
	State game.Snapshot `json:"state"`
}

// gameError maps session errors to statuses: conflicts for commands that
// arrived in the wrong moment, bad requests for commands that can never
// succeed as given.
func (app *application) gameError(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, game.ErrBusy), errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrStale):
		status = http.StatusConflict
	case errors.Is(err, game.ErrInvalidTarget), errors.Is(err, game.ErrEmptyQuestion), errors.Is(err, game.ErrEmptyTheory):
		status = http.StatusBadRequest
	default:
		app.serverError(w, r, err)
		return
	}

	app.logger.LogAttrs(r.Context(), slog.LevelDebug, "game command rejected",
		slog.String("method", r.Method), slog.String("uri", r.URL.RequestURI()), errors.SlogError(err))
	app.writeJSON(w, r, status, errorResponse{
		Error: err.Error(),
		State: app.session.Snapshot(),
	})
}
