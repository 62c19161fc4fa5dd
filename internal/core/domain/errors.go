package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNetwork wraps transport level failures talking to a node or indexer.
	ErrNetwork = errors.New("network error")

	// ErrNotFound is returned by repositories when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict is returned when a record already exists.
	ErrConflict = errors.New("already exists")
)

// APIError is an error reported by a backend in its HTTP response.
type APIError struct {
	Provider string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Provider, e.Status, e.Message)
}

// Throttled reports whether the backend asked us to slow down.
func (e *APIError) Throttled() bool {
	return e.Status == 429 || e.Status == 403
}

// Retryable reports whether re-issuing the same request may succeed.
func (e *APIError) Retryable() bool {
	return e.Status >= 500 || e.Status == 429
}

// ValidationError reports bad caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// IsRetryable reports whether err is worth retrying by re-issuing the request.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNetwork) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}
