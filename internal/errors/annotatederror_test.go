package errors

import (
	"github.com/stretchr/testify/require"
	"log/slog"
	"slices"
	"testing"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "wrapped", slog.String("target", "GM"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "wrapped: test error", wrapped.Error())

	// Ensure log values are coming through.
	var annotated *AnnotatedError
	require.ErrorAs(t, err, &annotated)
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestAnnotatedError_chainAttrs(t *testing.T) {
	inner := New("decode judgment", slog.String("answer_type", "MAYBE"))
	outer := Wrap(inner, "judge question", slog.String("target", "npc-1"))

	var annotated *AnnotatedError
	require.ErrorAs(t, outer, &annotated)
	group := annotated.LogValue().Group()

	// Attributes from the whole chain are flattened into one group.
	require.Contains(t, group, slog.String("target", "npc-1"))
	require.Contains(t, group, slog.String("answer_type", "MAYBE"))
	require.Contains(t, group, slog.String("msg", "judge question: decode judgment"))
}
