package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	sentinel := errors.New("invalid input")

	err := NewAppError("time window", "end must be after start", sentinel)
	assert.EqualError(t, err, "time window: end must be after start: invalid input")
	assert.ErrorIs(t, err, sentinel)

	var appErr *AppError
	assert.True(t, errors.As(err, &appErr))
	assert.Equal(t, "time window", appErr.Op)

	assert.EqualError(t, NewAppError("filters", "", sentinel), "filters: invalid input")
	assert.EqualError(t, NewAppError("filters", "bad confidence", nil), "filters: bad confidence")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-0.2, 0, 1))
	assert.Equal(t, 1.0, Clamp(1.7, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
	assert.Equal(t, 10, Clamp(12, 1, 10))
}
