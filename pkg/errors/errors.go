package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// ErrorTypeNetwork represents transient network errors (timeouts, resets)
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeExhausted represents a request that spent its retry budget
	ErrorTypeExhausted ErrorType = "exhausted"
	// ErrorTypeStatus represents a non-200 HTTP response
	ErrorTypeStatus ErrorType = "status"
	// ErrorTypeParsing represents HTML/JSON parsing errors
	ErrorTypeParsing ErrorType = "parsing"
	// ErrorTypeValidation represents validation errors
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeStorage represents file persistence errors
	ErrorTypeStorage ErrorType = "storage"
	// ErrorTypeRateLimit represents rate limiting cooldowns
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeTerminal represents network failures not worth another attempt
	ErrorTypeTerminal ErrorType = "terminal"
)

// HarvestError represents a pipeline-specific error
type HarvestError struct {
	Type    ErrorType
	Source  string
	Message string
	Status  int
	Err     error
	Time    time.Time
}

// Error implements the error interface
func (e *HarvestError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %s - %v", e.Type, e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Type, e.Source, e.Message)
}

// Unwrap returns the underlying error
func (e *HarvestError) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is retryable
func (e *HarvestError) IsRetryable() bool {
	return e.Type == ErrorTypeNetwork
}

// New creates a new HarvestError
func New(errType ErrorType, source, message string, err error) *HarvestError {
	return &HarvestError{
		Type:    errType,
		Source:  source,
		Message: message,
		Err:     err,
		Time:    time.Now(),
	}
}

// NewNetwork creates a new transient network error
func NewNetwork(source, message string, err error) *HarvestError {
	return New(ErrorTypeNetwork, source, message, err)
}

// NewExhausted creates a new retries-exhausted error
func NewExhausted(source string, attempts int, err error) *HarvestError {
	message := fmt.Sprintf("gave up after %d attempts", attempts)
	return New(ErrorTypeExhausted, source, message, err)
}

// NewStatus creates a new bad-status error carrying the HTTP status code
func NewStatus(source string, status int) *HarvestError {
	e := New(ErrorTypeStatus, source, fmt.Sprintf("HTTP %d", status), nil)
	e.Status = status
	return e
}

// NewParsing creates a new parsing error
func NewParsing(source, message string, err error) *HarvestError {
	return New(ErrorTypeParsing, source, message, err)
}

// NewValidation creates a new validation error
func NewValidation(source, message string) *HarvestError {
	return New(ErrorTypeValidation, source, message, nil)
}

// NewStorage creates a new storage error
func NewStorage(source, message string, err error) *HarvestError {
	return New(ErrorTypeStorage, source, message, err)
}

// NewTerminal creates a new terminal network error
func NewTerminal(source, message string, err error) *HarvestError {
	return New(ErrorTypeTerminal, source, message, err)
}

// NewRateLimit creates a new rate limit error
func NewRateLimit(source string, duration time.Duration) *HarvestError {
	message := fmt.Sprintf("rate limited for %v", duration)
	return New(ErrorTypeRateLimit, source, message, nil)
}

// IsExhausted reports whether err is a retries-exhausted error
func IsExhausted(err error) bool {
	var he *HarvestError
	return errors.As(err, &he) && he.Type == ErrorTypeExhausted
}

// StatusCode returns the HTTP status carried by err, or 0 when err is not a
// bad-status error
func StatusCode(err error) int {
	var he *HarvestError
	if errors.As(err, &he) && he.Type == ErrorTypeStatus {
		return he.Status
	}
	return 0
}

// TypeLabel returns a metrics label for err
func TypeLabel(err error) string {
	var he *HarvestError
	if errors.As(err, &he) {
		return string(he.Type)
	}
	return "other"
}
