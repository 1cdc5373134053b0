package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrTaskNotFound))
	assert.True(t, IsNotFoundError(ErrProjectNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("get task: %w", ErrTaskNotFound)))
	assert.True(t, IsNotFoundError(NewStoreError("task", "get", "missing", ErrTaskNotFound)))

	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("boom")))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	inner := errors.New("connection refused")
	err := NewStoreError("task", "create", "insert failed", inner)

	assert.Equal(t, "create operation on task failed: insert failed: connection refused", err.Error())
	assert.ErrorIs(t, err, inner)

	bare := NewStoreError("project", "delete", "gone", nil)
	assert.Equal(t, "delete operation on project failed: gone", bare.Error())
}
