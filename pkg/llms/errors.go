package llms

import (
	"errors"
	"fmt"
	"time"
)

// ProviderError describes a failed provider call. Transient failures (429,
// 5xx, network) are retryable; other 4xx responses are permanent.
type ProviderError struct {
	Provider   string
	Model      string
	StatusCode int
	Message    string
	Transient  bool
	RetryAfter time.Duration
	Err        error
}

func (e *ProviderError) Error() string {
	switch {
	case e.StatusCode > 0 && e.RetryAfter > 0:
		return fmt.Sprintf("%s model %s: HTTP %d: %s (retry after %v)",
			e.Provider, e.Model, e.StatusCode, e.Message, e.RetryAfter)
	case e.StatusCode > 0:
		return fmt.Sprintf("%s model %s: HTTP %d: %s", e.Provider, e.Model, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("%s model %s: %s", e.Provider, e.Model, e.Message)
	}
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError checks if an error is a ProviderError.
func IsProviderError(err error) bool {
	var providerErr *ProviderError
	return errors.As(err, &providerErr)
}

// GetProviderError extracts the ProviderError from an error chain, or nil.
func GetProviderError(err error) *ProviderError {
	var providerErr *ProviderError
	if errors.As(err, &providerErr) {
		return providerErr
	}
	return nil
}
