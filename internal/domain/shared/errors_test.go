package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	err := NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")

	assert.Equal(t, "Payment amount must be positive", err.Error())
	assert.Equal(t, "INVALID_AMOUNT", err.Code)
}

func TestDomainError_Is(t *testing.T) {
	wrapped := fmt.Errorf("find landlord: %w", NotFound("landlord"))

	assert.ErrorIs(t, wrapped, ErrNotFound)
	assert.NotErrorIs(t, wrapped, ErrInvalidInput)
	assert.Equal(t, "find landlord: landlord not found", wrapped.Error())

	var de *DomainError
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, CodeNotFound, de.Code)

	assert.NotErrorIs(t, errors.New("NOT_FOUND"), ErrNotFound)
}
