package provider_test

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/provider"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		wantTransient  bool
		wantCredential bool
		wantFatal      bool
	}{
		{
			name:          "gemini rate limit",
			err:           genai.APIError{Code: 429, Message: "Resource has been exhausted", Status: "RESOURCE_EXHAUSTED"}, //nolint:exhaustruct
			wantTransient: true,
		},
		{
			name:          "gemini unknown model",
			err:           genai.APIError{Code: 404, Message: "models/nope is not found", Status: "NOT_FOUND"}, //nolint:exhaustruct
			wantTransient: true,
		},
		{
			name:          "gemini server error",
			err:           genai.APIError{Code: 503, Message: "The model is overloaded", Status: "UNAVAILABLE"}, //nolint:exhaustruct
			wantTransient: true,
		},
		{
			name:           "gemini permission denied",
			err:            genai.APIError{Code: 403, Message: "Permission denied", Status: "PERMISSION_DENIED"}, //nolint:exhaustruct
			wantCredential: true,
		},
		{
			name:           "gemini invalid key arrives as 400",
			err:            genai.APIError{Code: 400, Message: "API key not valid. Please pass a valid API key.", Status: "INVALID_ARGUMENT"}, //nolint:exhaustruct
			wantCredential: true,
		},
		{
			name:      "gemini malformed request",
			err:       genai.APIError{Code: 400, Message: "Invalid JSON payload received", Status: "INVALID_ARGUMENT"}, //nolint:exhaustruct
			wantFatal: true,
		},
		{
			name:          "openai rate limit",
			err:           &openai.APIError{HTTPStatusCode: 429, Message: "Rate limit reached"}, //nolint:exhaustruct
			wantTransient: true,
		},
		{
			name:           "openai unauthorized",
			err:            &openai.APIError{HTTPStatusCode: 401, Message: "Incorrect API key provided"}, //nolint:exhaustruct
			wantCredential: true,
		},
		{
			name:          "openai request error bad gateway",
			err:           &openai.RequestError{HTTPStatusCode: 502, Err: errors.New("bad gateway")}, //nolint:exhaustruct
			wantTransient: true,
		},
		{
			name:          "attempt deadline",
			err:           context.DeadlineExceeded,
			wantTransient: true,
		},
		{
			name:          "quota token in plain error",
			err:           errors.New("generateContent: quota exceeded for project"),
			wantTransient: true,
		},
		{
			name:          "model not supported token",
			err:           errors.New("model gpt-9 is not supported"),
			wantTransient: true,
		},
		{
			name:           "unauthorized token in plain error",
			err:            errors.New("request rejected: unauthorized"),
			wantCredential: true,
		},
		{
			name:      "anything else is fatal",
			err:       errors.New("response schema mismatch"),
			wantFatal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			classified := provider.Classify(tt.err)
			assert.Equal(t, tt.wantTransient, provider.IsTransient(classified), "transient")
			assert.Equal(t, tt.wantCredential, provider.IsCredential(classified), "credential")
			assert.Equal(t, tt.wantFatal, provider.IsFatal(classified), "fatal")
			assert.ErrorContains(t, classified, tt.err.Error(), "classification must preserve the cause")
		})
	}
}

func TestClassify_passesThroughClassifiedErrors(t *testing.T) {
	credential := provider.NewCredentialError(errors.New("invalid key"))
	assert.Same(t, credential, provider.Classify(credential))

	transient := provider.NewTransientError(errors.New("busy"))
	assert.Same(t, transient, provider.Classify(transient))

	assert.NoError(t, provider.Classify(nil))
}

func TestClassify_wrappedErrorsKeepTheirClass(t *testing.T) {
	wrapped := errors.Wrap(provider.NewTransientError(errors.New("busy")), "judge question")
	assert.True(t, provider.IsTransient(provider.Classify(wrapped)))
	assert.True(t, provider.IsTransient(wrapped))
}
