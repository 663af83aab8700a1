package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("matches outermost code through fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", New(CodeNotFound, "case not found"))
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeValidation))
	})

	t.Run("plain errors carry no code", func(t *testing.T) {
		err := errors.New("boom")
		assert.False(t, HasCode(err, CodeInternal))
		assert.Equal(t, CodeInternal, CodeOf(err))
	})
}

func TestWrap(t *testing.T) {
	t.Run("keeps cause reachable", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeInternal, "failed to load case")
		require.ErrorIs(t, err, cause)
		assert.Equal(t, "failed to load case", MessageOf(err))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, CodeInternal, "unused"))
	})
}

func TestErrorsIsMatchesCodeAndMessage(t *testing.T) {
	err := New(CodeValidation, "ob_number is required")
	require.ErrorIs(t, err, New(CodeValidation, "ob_number is required"))
	require.ErrorIs(t, err, &Error{Code: CodeValidation})
	assert.NotErrorIs(t, err, New(CodeValidation, "other message"))
	assert.NotErrorIs(t, err, New(CodeNotFound, "ob_number is required"))
}
