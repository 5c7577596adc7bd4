package main

import (
	"github.com/justinas/alice"
	"net/http"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/healthy", app.healthy)
	mux.HandleFunc("GET /api/state", app.state)
	mux.HandleFunc("GET /api/events", app.streamEvents)

	mux.HandleFunc("POST /api/game", app.newGame)
	mux.HandleFunc("POST /api/target", app.setTarget)
	mux.HandleFunc("POST /api/question", app.askQuestion)
	mux.HandleFunc("POST /api/solve", app.requestSolve)
	mux.HandleFunc("POST /api/solve/cancel", app.cancelSolve)
	mux.HandleFunc("POST /api/theory", app.submitTheory)

	standard := alice.New(app.recoverPanic, app.logRequest, secureHeaders)

	return standard.Then(mux)
}
