package provider

import (
	"github.com/halvemaan/gumshoe/internal/errors"
)

// TransientError is a temporary failure such as rate limiting, capacity or
// an unsupported model. The adapter falls back to the next model in the
// chain on it.
type TransientError struct {
	err error
}

func (e *TransientError) Error() string {
	return e.err.Error()
}

func (e *TransientError) Unwrap() error {
	return e.err
}

// NewTransientError wraps an error as transient (eligible for fallback).
func NewTransientError(err error) error {
	return &TransientError{err: err}
}

// CredentialError means the backend rejected the API key. It aborts the
// whole fallback chain since every model shares the same credential.
type CredentialError struct {
	err error
}

func (e *CredentialError) Error() string {
	return e.err.Error()
}

func (e *CredentialError) Unwrap() error {
	return e.err
}

// NewCredentialError wraps an error as a credential rejection.
func NewCredentialError(err error) error {
	return &CredentialError{err: err}
}

// FatalError is any failure that is neither transient nor a credential
// rejection. It aborts the chain immediately.
type FatalError struct {
	err error
}

func (e *FatalError) Error() string {
	return e.err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.err
}

// NewFatalError wraps an error as fatal (no fallback).
func NewFatalError(err error) error {
	return &FatalError{err: err}
}

// ExhaustionError means every model in the chain failed transiently. It
// carries the last observed failure.
type ExhaustionError struct {
	err error
}

func (e *ExhaustionError) Error() string {
	if e.err == nil {
		return "all models exhausted"
	}
	return "all models exhausted: " + e.err.Error()
}

func (e *ExhaustionError) Unwrap() error {
	return e.err
}

// NewExhaustionError wraps the last transient failure of a fully exhausted
// chain.
func NewExhaustionError(lastErr error) error {
	return &ExhaustionError{err: lastErr}
}

// IsTransient reports whether the error allows falling back to the next
// model.
func IsTransient(err error) bool {
	var transient *TransientError
	return errors.As(err, &transient)
}

// IsCredential reports whether the error is a credential rejection.
func IsCredential(err error) bool {
	var credential *CredentialError
	return errors.As(err, &credential)
}

// IsFatal reports whether the error is fatal.
func IsFatal(err error) bool {
	var fatal *FatalError
	return errors.As(err, &fatal)
}

// IsExhausted reports whether every model in the chain was tried without
// success.
func IsExhausted(err error) bool {
	var exhausted *ExhaustionError
	return errors.As(err, &exhausted)
}
