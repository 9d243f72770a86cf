package transport

import (
	"errors"
	"fmt"
)

// Terminal upstream failures mapped to fixed, human-readable messages.
// These surface to the caller immediately, without retry.
var (
	// ErrMethodNotAvailable is returned for HTTP 405 from the upstream.
	ErrMethodNotAvailable = errors.New("The method does not exist / is not available.")

	// ErrRateLimited is returned for HTTP 429 from the upstream.
	ErrRateLimited = errors.New("Request is being rate limited.")
)

// exhaustedPrefix starts the error message produced once every retry
// attempt has failed. The last underlying cause is appended to it.
const exhaustedPrefix = "FetchTransport - cannot complete request. All retries exhausted."

// retryableError marks a transient failure the transport is allowed to
// retry: HTTP 503/504, connection resets, attempt timeouts and 2xx bodies
// that are not parseable JSON.
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return e.err.Error()
}

func (e *retryableError) Unwrap() error {
	return e.err
}

func retryable(format string, args ...interface{}) error {
	return &retryableError{err: fmt.Errorf(format, args...)}
}

// IsRetryable reports whether err was classified as a transient upstream
// failure.
func IsRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
