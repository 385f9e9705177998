package kgerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	err := NotFoundErr("entity %s", "abc")
	assert.Equal(t, NotFound, KindOf(err))
	assert.True(t, Is(err, NotFound))
	assert.False(t, Is(err, StoreError))
	assert.Equal(t, Unknown, KindOf(errors.New("plain")))
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := StoreErr(cause, "writing entity")
	assert.ErrorIs(t, err, cause)
}

func TestRetryStore_StopsOnNonStoreError(t *testing.T) {
	attempts := 0
	err := RetryStore(context.Background(), 3, func() error {
		attempts++
		return InvalidValueErr("bad value")
	})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryStore_RetriesThenSucceeds(t *testing.T) {
	attempts := 0
	err := RetryStore(context.Background(), 3, func() error {
		attempts++
		if attempts < 2 {
			return StoreErr(errors.New("timeout"), "writing entity")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}
