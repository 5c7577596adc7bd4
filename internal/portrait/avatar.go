package portrait

import (
	"context"
	"net/url"
)

const defaultAvatarBaseURL = "https://api.dicebear.com/9.x/adventurer-neutral/svg"

// AvatarService builds deterministic avatar URLs keyed by seed. It issues
// no network calls itself, so it cannot fail and works offline.
type AvatarService struct {
	baseURL string
}

// NewAvatarService creates an AvatarService against baseURL. An empty
// baseURL selects the default style.
func NewAvatarService(baseURL string) *AvatarService {
	if baseURL == "" {
		baseURL = defaultAvatarBaseURL
	}
	return &AvatarService{baseURL: baseURL}
}

func (s *AvatarService) Portrait(_ context.Context, seed string, _ string) (string, error) {
	return s.baseURL + "?seed=" + url.QueryEscape(seed), nil
}
