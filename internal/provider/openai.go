package provider

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	openai "github.com/sashabaranov/go-openai"
)

// OpenAIBackend generates content through the OpenAI chat completion API.
// It has no native schema enforcement, so schemas are rendered into the
// system message and JSON mode is enabled instead.
type OpenAIBackend struct {
	client *openai.Client
}

func NewOpenAIBackend(apiKey string) *OpenAIBackend {
	return &OpenAIBackend{client: openai.NewClient(apiKey)}
}

func (b *OpenAIBackend) Name() string {
	return "openai"
}

func (b *OpenAIBackend) Generate(ctx context.Context, model string, req Request) (string, error) {
	system := req.System
	if req.Schema != nil {
		if system != "" {
			system += "\n\n"
		}
		system += req.Schema.instruction()
	}

	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{ //nolint:exhaustruct
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
		Model:       model,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Messages:    messages,
	}
	if req.Schema != nil {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{ //nolint:exhaustruct
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	completion, err := b.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", errors.Wrap(err, "create chat completion")
	}
	if len(completion.Choices) == 0 {
		return "", nil
	}
	return completion.Choices[0].Message.Content, nil
}
