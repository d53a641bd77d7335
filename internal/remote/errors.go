package remote

import "errors"

// Domain-specific errors for remote store operations.
// Use errors.Is() to check for these errors in calling code.
var (
	// ErrUnavailable is returned when the remote store cannot be reached
	// (network failure, timeout, or server-side error). Callers recover
	// locally by falling back to the cache; it is never fatal.
	ErrUnavailable = errors.New("remote: store unavailable")

	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("remote: not found")

	// ErrRequestFailed is returned for any other non-success response.
	ErrRequestFailed = errors.New("remote: request failed")
)
