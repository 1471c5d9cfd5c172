package danaerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNameNotBoundFormatsMessage(t *testing.T) {
	err := NewNameNotBound("x", Location{File: "a.na", Line: 3, Column: 1})
	assert.Equal(t, KindNameNotBound, err.Kind)
	assert.Contains(t, err.Error(), "x")
	assert.Contains(t, err.Error(), "a.na:3:1")
}

func TestOfMatchesKindThroughWrap(t *testing.T) {
	inner := NewTimeout("reason() exceeded deadline")
	wrapped := fmt.Errorf("while awaiting: %w", inner)
	assert.True(t, Of(wrapped, KindTimeout))
	assert.False(t, Of(wrapped, KindParseError))
}

func TestWrapHostPassesThroughDanaErr(t *testing.T) {
	de := NewArgumentError(Location{}, "missing required parameter %s", "b")
	got := WrapHost(de)
	assert.Same(t, error(de), got)
}

func TestWrapHostWrapsPlainError(t *testing.T) {
	plain := errors.New("boom")
	got := WrapHost(plain)
	var de *DanaErr
	assert.True(t, errors.As(got, &de))
	assert.Equal(t, KindHostError, de.Kind)
	assert.ErrorIs(t, got, plain)
}

func TestWithTraceAccumulatesFrames(t *testing.T) {
	err := NewInternalError("invariant violated")
	err.WithTrace("add", Location{File: "m.na", Line: 10}).
		WithTrace("main", Location{File: "m.na", Line: 20})
	assert.Len(t, err.Trace, 2)
	assert.Equal(t, "add", err.Trace[0].Function)
}
