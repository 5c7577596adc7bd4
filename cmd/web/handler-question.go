package main

import "net/http"

type targetRequest struct {
	Target string `json:"target"`
}

// setTarget switches who the next questions are aimed at: "GM" or the id
// of a living character.
func (app *application) setTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	snapshot, err := app.session.SetTarget(req.Target)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}

type questionRequest struct {
	Question string `json:"question"`
}

// askQuestion puts one question to the current target and responds once
// the answer is in. The wait is bounded by the operation timeout, after
// which the player gets the canned fallback answer instead of an error.
func (app *application) askQuestion(w http.ResponseWriter, r *http.Request) {
	var req questionRequest
	if !app.readJSON(w, r, &req) {
		return
	}
	snapshot, err := app.session.AskQuestion(r.Context(), req.Question)
	if err != nil {
		app.gameError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, snapshot)
}
