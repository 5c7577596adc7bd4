package provider

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/genai"
	"net/http"
	"strings"
)

// Classify maps a raw backend failure onto the transient/credential/fatal
// taxonomy. Already-classified errors pass through unchanged. HTTP status
// codes are inspected first; errors without a usable status fall back to
// token sniffing on the message.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if IsTransient(err) || IsCredential(err) || IsFatal(err) || IsExhausted(err) {
		return err
	}

	// A timed-out attempt counts as a capacity problem, eligible for
	// fallback to the next model.
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTransientError(err)
	}

	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return classifyStatus(geminiErr.Code, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return classifyStatus(reqErr.HTTPStatusCode, err)
	}

	return classifyMessage(err)
}

func classifyStatus(status int, err error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return NewTransientError(err)
	case status == http.StatusNotFound:
		// The model identifier is unknown to this backend. The next model
		// in the chain may well exist.
		return NewTransientError(err)
	case status >= http.StatusInternalServerError:
		return NewTransientError(err)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return NewCredentialError(err)
	default:
		// Gemini reports an invalid API key as 400 INVALID_ARGUMENT, so
		// the message still has to be consulted.
		return classifyMessage(err)
	}
}

func classifyMessage(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, "api key", "invalid key", "unauthorized", "permission", "forbidden"):
		return NewCredentialError(err)
	case containsAny(msg,
		"not found", "not supported", "quota", "exhausted",
		"rate limit", "too many requests", "overloaded", "unavailable"):
		return NewTransientError(err)
	default:
		return NewFatalError(err)
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, token := range tokens {
		if strings.Contains(s, token) {
			return true
		}
	}
	return false
}
