package provider

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"google.golang.org/genai"
)

// GeminiBackend generates content through the Gemini API. It is the
// preferred backend because it enforces output schemas on the wire.
type GeminiBackend struct {
	client *genai.Client
}

func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{ //nolint:exhaustruct // defaults are fine
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "create gemini client")
	}
	return &GeminiBackend{client: client}, nil
}

func (b *GeminiBackend) Name() string {
	return "gemini"
}

func (b *GeminiBackend) Generate(ctx context.Context, model string, req Request) (string, error) {
	config := &genai.GenerateContentConfig{ //nolint:exhaustruct // optional fields filled below
		Temperature: genai.Ptr(req.Temperature),
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	if req.System != "" {
		config.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: req.System}}} //nolint:exhaustruct
	}
	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = req.Schema.gemini()
	}

	resp, err := b.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		config)
	if err != nil {
		return "", errors.Wrap(err, "gemini generate content")
	}
	return resp.Text(), nil
}
