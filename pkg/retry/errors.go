package retry

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	// ErrProviderUnavailable is returned when every model candidate has
	// been exhausted.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrNoModels is returned when Do is called with an empty candidate
	// list.
	ErrNoModels = errors.New("no model candidates configured")
)

// ProviderUnavailableError reports that all candidates failed. It wraps the
// last provider error so callers can inspect the final cause.
type ProviderUnavailableError struct {
	// Attempts is the total number of calls made across all candidates.
	Attempts int

	// LastErr is the error from the final attempt.
	LastErr error
}

// Error returns the error message.
func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("all model candidates unavailable after %d attempts: %v", e.Attempts, e.LastErr)
}

// Unwrap returns the last provider error.
func (e *ProviderUnavailableError) Unwrap() error {
	return e.LastErr
}

// Is reports whether target is the ErrProviderUnavailable sentinel.
func (e *ProviderUnavailableError) Is(target error) bool {
	return target == ErrProviderUnavailable
}

// IsProviderUnavailable checks if an error means every candidate failed.
func IsProviderUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var pue *ProviderUnavailableError
	if errors.As(err, &pue) {
		return true
	}
	return errors.Is(err, ErrProviderUnavailable)
}

// GetProviderUnavailableError extracts the typed error from an error chain.
// Returns nil if the error is not an exhaustion error.
func GetProviderUnavailableError(err error) *ProviderUnavailableError {
	if err == nil {
		return nil
	}
	var pue *ProviderUnavailableError
	if errors.As(err, &pue) {
		return pue
	}
	return nil
}
