package analytics

import (
	"errors"
	"fmt"
)

// PersistenceError reports a failed sink operation. It is logged and
// swallowed by the recorder, never surfaced to request handlers.
type PersistenceError struct {
	// Op is the failed operation ("append", "summary", "load", "save").
	Op string

	// Err is the underlying cause.
	Err error
}

// Error returns the error message.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("analytics %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError checks if an error is a sink persistence failure.
func IsPersistenceError(err error) bool {
	if err == nil {
		return false
	}
	var pe *PersistenceError
	return errors.As(err, &pe)
}
