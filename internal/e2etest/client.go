package e2etest

import (
	"bytes"
	"context"
	"encoding/json"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/game"
	"io"
	"log/slog"
	"net/http"
	"time"
)

type Client struct {
	client *http.Client
	url    string
}

// NewClient creates an HTTP client for the game's JSON API.
func NewClient(url string) *Client {
	return &Client{
		client: &http.Client{},
		url:    url,
	}
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	for {
		if req, err = http.NewRequestWithContext(
			ctx,
			http.MethodGet,
			c.url+urlPath,
			nil,
		); err != nil {
			return errors.Wrap(err, "create request")
		}

		if resp, err = c.client.Do(req); err == nil {
			if resp.StatusCode == http.StatusOK {
				if err = resp.Body.Close(); err != nil {
					return errors.Wrap(err, "close response body")
				}
				return nil
			}
			if err = resp.Body.Close(); err != nil {
				return errors.Wrap(err, "close response body")
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	var (
		err  error
		req  *http.Request
		resp *http.Response
	)
	if req, err = c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil); err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// State fetches the current game state.
func (c *Client) State(ctx context.Context) (game.Snapshot, error) {
	var (
		err      error
		resp     *http.Response
		snapshot game.Snapshot
	)
	if resp, err = c.Get(ctx, "/api/state"); err != nil {
		return snapshot, errors.Wrap(err, "client get")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return snapshot, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	if err = json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return snapshot, errors.Wrap(err, "decode snapshot")
	}
	return snapshot, nil
}

// NewGame starts a fresh game. The returned snapshot is the LOADING state;
// use WaitForPhase to follow the generation to its outcome.
func (c *Client) NewGame(ctx context.Context) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/game", nil, http.StatusAccepted)
}

// SetTarget aims subsequent questions at the GM or a character.
func (c *Client) SetTarget(ctx context.Context, target string) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/target", map[string]string{"target": target}, http.StatusOK)
}

// Ask puts one question to the current target and returns the state with
// the answer appended.
func (c *Client) Ask(ctx context.Context, question string) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/question", map[string]string{"question": question}, http.StatusOK)
}

// Solve moves the game into the SOLVING phase.
func (c *Client) Solve(ctx context.Context) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/solve", nil, http.StatusOK)
}

// CancelSolve backs out of the SOLVING phase.
func (c *Client) CancelSolve(ctx context.Context) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/solve/cancel", nil, http.StatusOK)
}

// SubmitTheory hands in the final theory and returns the ended game.
func (c *Client) SubmitTheory(ctx context.Context, theory string) (game.Snapshot, error) {
	return c.postJSON(ctx, "/api/theory", map[string]string{"theory": theory}, http.StatusOK)
}

// WaitForPhase polls the state until the session reaches phase or the
// context is cancelled. It fails fast when the session lands in FAILED
// while some other phase was expected.
func (c *Client) WaitForPhase(ctx context.Context, phase game.Phase) (game.Snapshot, error) {
	var (
		err      error
		snapshot game.Snapshot
	)
	for {
		if snapshot, err = c.State(ctx); err != nil {
			return snapshot, errors.Wrap(err, "fetch state")
		}
		if snapshot.Phase == phase {
			return snapshot, nil
		}
		if snapshot.Phase == game.PhaseFailed {
			return snapshot, errors.New("game failed while waiting for phase",
				slog.String("phase", string(phase)))
		}
		select {
		case <-ctx.Done():
			return snapshot, errors.Wrap(ctx.Err(), "context cancelled")
		case <-time.After(100 * time.Millisecond): //nolint:mnd // 100ms
		}
	}
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	var (
		req *http.Request
		err error
	)
	if req, err = http.NewRequest(method, c.url+urlPath, body); err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	return req.WithContext(ctx), nil
}

// postJSON posts body (when non-nil) to urlPath and decodes the snapshot
// from the response.
func (c *Client) postJSON(
	ctx context.Context,
	urlPath string,
	body any,
	wantStatus int,
) (game.Snapshot, error) {
	var (
		err      error
		req      *http.Request
		resp     *http.Response
		payload  io.Reader
		snapshot game.Snapshot
	)
	if body != nil {
		var encoded []byte
		if encoded, err = json.Marshal(body); err != nil {
			return snapshot, errors.Wrap(err, "marshal request body")
		}
		payload = bytes.NewReader(encoded)
	}
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, urlPath, payload); err != nil {
		return snapshot, errors.Wrap(err, "create request with context")
	}
	req.Header.Set("Content-Type", "application/json")
	if resp, err = c.client.Do(req); err != nil {
		return snapshot, errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if wantStatus != resp.StatusCode {
		return snapshot, errors.New("unexpected status code",
			slog.Int("status", resp.StatusCode), slog.Int("want", wantStatus))
	}
	if err = json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return snapshot, errors.Wrap(err, "decode snapshot")
	}
	return snapshot, nil
}
