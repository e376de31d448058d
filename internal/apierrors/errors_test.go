package apierrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	t.Run("extracts the kind from a taxonomy error", func(t *testing.T) {
		err := New(KindForbidden, MsgForbidden)
		assert.Equal(t, KindForbidden, KindOf(err))
	})

	t.Run("sees through wrapping", func(t *testing.T) {
		err := fmt.Errorf("list posts: %w", New(KindNotFound, MsgNotFound))
		assert.Equal(t, KindNotFound, KindOf(err))
	})

	t.Run("foreign errors report unknown", func(t *testing.T) {
		assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
		assert.Equal(t, KindUnknown, KindOf(nil))
	})
}

func TestMessageOf(t *testing.T) {
	t.Run("returns the classified message verbatim", func(t *testing.T) {
		err := New(KindValidation, "Email already registered")
		assert.Equal(t, "Email already registered", MessageOf(err))
	})

	t.Run("falls back to the generic text", func(t *testing.T) {
		assert.Equal(t, MsgUnknown, MessageOf(errors.New("plain")))
	})
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(KindNetwork, MsgNetworkError, cause)

	require.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "network")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		kind      Kind
		retryable bool
	}{
		{KindNetwork, true},
		{KindServerError, true},
		{KindUnauthorized, false},
		{KindForbidden, false},
		{KindNotFound, false},
		{KindValidation, false},
		{KindUnknown, false},
	}
	for _, tc := range tests {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.retryable, IsRetryable(New(tc.kind, "x")))
		})
	}
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(New(KindUnauthorized, MsgLoginRequired)))
	assert.False(t, IsUnauthorized(New(KindForbidden, MsgForbidden)))
	assert.False(t, IsUnauthorized(errors.New("plain")))
}
