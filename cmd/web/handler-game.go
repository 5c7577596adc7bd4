package main

import "net/http"

// newGame resets the session and kicks off mystery generation in the
// background. The response is the LOADING snapshot; clients follow the
// generation's outcome on the event stream or by polling state.
func (app *application) newGame(w http.ResponseWriter, r *http.Request) {
	snapshot := app.session.NewGame(r.Context())
	app.writeJSON(w, r, http.StatusAccepted, snapshot)
}

// state responds with the current player-visible state.
func (app *application) state(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, app.session.Snapshot())
}
