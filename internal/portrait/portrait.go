// Package portrait resolves character likenesses. Portraits are cosmetic:
// every provider failure degrades to "no avatar" at the call site and must
// never abort mystery generation.
package portrait

import "context"

// Provider produces an image reference for a character. seed is a stable
// identifier for deterministic services, visualSummary an English
// description for generative ones. The returned reference is a URL or data
// URI; an error means the character simply goes without a portrait.
type Provider interface {
	Portrait(ctx context.Context, seed string, visualSummary string) (string, error)
}
