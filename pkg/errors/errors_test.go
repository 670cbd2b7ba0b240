package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRetryability(t *testing.T) {
	assert.True(t, NewNetwork("fetch", "timeout", nil).IsRetryable())
	assert.False(t, NewStatus("fetch", 404).IsRetryable())
	assert.False(t, NewTerminal("fetch", "bad url", nil).IsRetryable())
	assert.False(t, NewExhausted("fetch", 3, nil).IsRetryable())
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, 429, StatusCode(NewStatus("fetch", 429)))
	assert.Equal(t, 0, StatusCode(NewNetwork("fetch", "timeout", nil)))
	assert.Equal(t, 0, StatusCode(errors.New("plain")))

	wrapped := fmt.Errorf("context: %w", NewStatus("fetch", 404))
	assert.Equal(t, 404, StatusCode(wrapped))
}

func TestIsExhausted(t *testing.T) {
	assert.True(t, IsExhausted(NewExhausted("fetch", 3, nil)))
	assert.False(t, IsExhausted(NewStatus("fetch", 500)))
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewNetwork("fetch", "request failed", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Contains(t, err.Error(), "[network]")
}

func TestTypeLabel(t *testing.T) {
	assert.Equal(t, "parsing", TypeLabel(NewParsing("walker", "bad html", nil)))
	assert.Equal(t, "other", TypeLabel(errors.New("plain")))
}
