package main

import "net/http"

// requestSolve moves the game into the SOLVING phase where questioning is
// closed and the player writes up their final theory.
func (app *application) requestSolve(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.session.RequestSolve()
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}

// cancelSolve backs out of the SOLVING phase. A verdict still in flight
// is discarded, so cancelling is always safe.
func (app *application) cancelSolve(w http.ResponseWriter, r *http.Request) {
	snapshot, err := app.session.CancelSolve()
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}

type theoryRequest struct {
	Theory string `json:"theory"`
}

// submitTheory hands the final theory to the evaluator and responds with
// the ended game, ending included.
func (app *application) submitTheory(w http.ResponseWriter, r *http.Request) {
	var req theoryRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	snapshot, err := app.session.SubmitTheory(r.Context(), req.Theory)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}
