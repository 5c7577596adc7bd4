package portrait

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	openai "github.com/sashabaranov/go-openai"
)

// DallEProvider renders portraits with DALL-E from a character's visual
// summary. Results come back as self-contained data URIs so they never
// expire like hosted image URLs do.
type DallEProvider struct {
	client *openai.Client
}

func NewDallEProvider(apiKey string) *DallEProvider {
	return &DallEProvider{client: openai.NewClient(apiKey)}
}

func (p *DallEProvider) Portrait(ctx context.Context, _ string, visualSummary string) (string, error) {
	prompt := "A moody film noir character portrait, painterly, dramatic shadows. " + visualSummary

	request := openai.ImageRequest{ //nolint:exhaustruct // this is better for readability
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	}

	response, err := p.client.CreateImage(ctx, request)
	if err != nil {
		return "", errors.Wrap(err, "create image")
	}
	if len(response.Data) == 0 || response.Data[0].B64JSON == "" {
		return "", errors.New("image response carries no data")
	}
	return "data:image/png;base64," + response.Data[0].B64JSON, nil
}
