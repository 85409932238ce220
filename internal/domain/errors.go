package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBackendUnavailable means the completion backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrModelNotFound means the backend is up but does not serve the configured model.
	ErrModelNotFound = errors.New("model not found")
	// ErrAborted means the user interrupted input or confirmation.
	ErrAborted = errors.New("aborted by user")
)

// BackendError is returned by the model client for transport failures and
// non-success HTTP statuses. It is never retried.
type BackendError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *BackendError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s: HTTP %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
