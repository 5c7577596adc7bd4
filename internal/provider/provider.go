// Package provider issues one logical generation request against an ordered
// chain of backend models with automatic fallback and error classification.
package provider

import (
	"context"
)

// Generator is the single entry point the engines use to request content.
type Generator interface {
	Generate(ctx context.Context, req Request) (Result, error)
}

// Request describes one logical generation request. It is backend-agnostic;
// each backend translates it to its own wire format.
type Request struct {
	// System is an optional behavioral directive kept separate from the
	// user content.
	System string
	// Prompt is the user content.
	Prompt string
	// Temperature controls randomness. Creative calls run hot, judging
	// calls run cold.
	Temperature float32
	// MaxTokens bounds the completion length. Zero means backend default.
	MaxTokens int
	// Schema constrains the output shape. Backends with native structured
	// output enforce it on the wire; others receive it as an instruction
	// and their output goes through JSON extraction instead.
	Schema *Schema
}

// Result is a successful completion.
type Result struct {
	// Text is the raw completion, never empty.
	Text string
	// Model identifies which backend:model produced the text.
	Model string
}

// Backend issues a single request against one concrete model. It returns the
// raw completion text and the backend's unclassified error; classification
// happens once, at the adapter boundary.
type Backend interface {
	Name() string
	Generate(ctx context.Context, model string, req Request) (string, error)
}
