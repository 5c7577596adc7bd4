package portrait

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingProvider memoizes portrait lookups so that regenerating a game or
// retrying a cast does not re-render identical characters. Failures are not
// cached; a character that missed its portrait gets another chance next
// time.
type CachingProvider struct {
	inner Provider
	cache *lru.Cache[string, string]
}

func NewCachingProvider(inner Provider, size int) (*CachingProvider, error) {
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, errors.Wrap(err, "create portrait cache")
	}
	return &CachingProvider{inner: inner, cache: cache}, nil
}

func (p *CachingProvider) Portrait(ctx context.Context, seed string, visualSummary string) (string, error) {
	key := seed + "\x00" + visualSummary
	if ref, ok := p.cache.Get(key); ok {
		return ref, nil
	}
	ref, err := p.inner.Portrait(ctx, seed, visualSummary)
	if err != nil {
		return "", err
	}
	p.cache.Add(key, ref)
	return ref, nil
}
