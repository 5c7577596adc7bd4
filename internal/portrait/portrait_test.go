package portrait_test

import (
	"context"
	"github.com/halvemaan/gumshoe/internal/errors"
	"github.com/halvemaan/gumshoe/internal/portrait"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestAvatarService(t *testing.T) {
	service := portrait.NewAvatarService("")

	first, err := service.Portrait(context.Background(), "Mrs. Hargreaves", "ignored")
	require.NoError(t, err)
	second, err := service.Portrait(context.Background(), "Mrs. Hargreaves", "different summary")
	require.NoError(t, err)

	assert.Equal(t, first, second, "same seed must map to the same avatar")
	assert.Contains(t, first, "seed=Mrs.+Hargreaves")

	other, err := service.Portrait(context.Background(), "Tom Mercer", "")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

type countingProvider struct {
	calls int
	err   error
}

func (p *countingProvider) Portrait(_ context.Context, seed string, _ string) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return "https://example.com/" + seed, nil
}

func TestCachingProvider(t *testing.T) {
	inner := &countingProvider{}
	caching, err := portrait.NewCachingProvider(inner, 8)
	require.NoError(t, err)

	first, err := caching.Portrait(context.Background(), "lang", "a composed woman")
	require.NoError(t, err)
	second, err := caching.Portrait(context.Background(), "lang", "a composed woman")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls, "second lookup must hit the cache")

	_, err = caching.Portrait(context.Background(), "lang", "a different summary")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls, "summary is part of the cache key")
}

func TestCachingProvider_doesNotCacheFailures(t *testing.T) {
	inner := &countingProvider{err: errors.New("render failed")}
	caching, err := portrait.NewCachingProvider(inner, 8)
	require.NoError(t, err)

	_, err = caching.Portrait(context.Background(), "mercer", "a wiry young man")
	require.Error(t, err)

	inner.err = nil
	ref, err := caching.Portrait(context.Background(), "mercer", "a wiry young man")
	require.NoError(t, err)
	assert.NotEmpty(t, ref)
	assert.Equal(t, 2, inner.calls)
}
