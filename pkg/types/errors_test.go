package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorTypePredicates(t *testing.T) {
	assert.True(t, IsValidation(NewValidationError(ErrCodeInvalidInput, "bad input", nil)))
	assert.True(t, IsNotFound(NewNotFoundError(ErrCodeNotFound, "missing")))
	assert.True(t, IsConflict(NewConflictError(ErrCodeSlotOccupied, "slot taken")))
	assert.True(t, IsStoreUnavailable(NewStoreError(ErrCodeStoreUnavailable, "store down", nil)))

	assert.False(t, IsConflict(NewNotFoundError(ErrCodeNotFound, "missing")))
	assert.False(t, IsNotFound(errors.New("plain error")))
	assert.False(t, IsNotFound(nil))
}

func TestErrorPredicates_Wrapped(t *testing.T) {
	inner := NewConflictError(ErrCodeDuplicateCPF, "duplicate")
	wrapped := fmt.Errorf("creating patient: %w", inner)

	assert.True(t, IsConflict(wrapped))
}

func TestAppErrorMessage(t *testing.T) {
	err := NewNotFoundError(ErrCodeNotFound, "appointment not found")
	assert.Equal(t, "NOT_FOUND: appointment not found", err.Error())

	cause := errors.New("connection refused")
	storeErr := NewStoreError(ErrCodeStoreUnavailable, "failed to list", cause)
	assert.Contains(t, storeErr.Error(), "connection refused")
	assert.Equal(t, cause, errors.Unwrap(storeErr))
}
