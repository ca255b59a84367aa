package ratelimit

import (
	"errors"
	"fmt"
	"time"
)

// ErrRateLimited is returned when a session exceeds its request quota.
var ErrRateLimited = errors.New("rate limit exceeded")

// RateLimitError reports a rejected request with the wait hint for the
// caller.
type RateLimitError struct {
	// SessionID identifies the throttled session.
	SessionID string

	// RetryAfter is how long to wait before the next request can succeed.
	RetryAfter time.Duration
}

// Error returns the error message.
func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded for session %s, retry after %s", e.SessionID, e.RetryAfter)
}

// Unwrap returns the sentinel so errors.Is(err, ErrRateLimited) matches.
func (e *RateLimitError) Unwrap() error {
	return ErrRateLimited
}

// NewRateLimitError creates a RateLimitError from a rejected Result.
func NewRateLimitError(sessionID string, result Result) *RateLimitError {
	return &RateLimitError{
		SessionID:  sessionID,
		RetryAfter: result.RetryAfter,
	}
}

// IsRateLimitError checks if an error is a rate limit rejection.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return true
	}
	return errors.Is(err, ErrRateLimited)
}

// GetRateLimitError extracts the typed error from an error chain.
// Returns nil if the error is not a rate limit rejection.
func GetRateLimitError(err error) *RateLimitError {
	if err == nil {
		return nil
	}
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle
	}
	return nil
}
