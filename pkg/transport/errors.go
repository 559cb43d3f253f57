package transport

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrInvalidOption is returned when construction is given an option key
	// outside the recognized set. Construction fails; no partial transport
	// is produced.
	ErrInvalidOption = errors.New("invalid transport option")

	// ErrHTTPStatus is returned when a flush completes an HTTP exchange
	// with a status code other than 200.
	ErrHTTPStatus = errors.New("unexpected http status")

	// ErrClosed is returned by operations invoked after Close.
	ErrClosed = errors.New("transport is closed")
)

// ConfigError is returned at construction time for unrecognized or
// malformed configuration options.
type ConfigError struct {
	// Option is the offending option key.
	Option string
	// Reason describes why the option was rejected. Empty for unknown keys.
	Reason string
}

// Error returns a human-readable description of the configuration failure.
func (e *ConfigError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("transport option %q: %s", e.Option, e.Reason)
	}
	return fmt.Sprintf("unrecognized transport option %q", e.Option)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrInvalidOption).
func (e *ConfigError) Is(target error) bool {
	return target == ErrInvalidOption
}

// IOError is returned by Flush when the exchange does not complete
// successfully. The outbound buffer is preserved so the caller may retry.
type IOError struct {
	// StatusCode is the HTTP status code when the exchange completed with
	// a non-200 status. Zero when the failure came from the client itself
	// (connection refused, timeout, DNS failure).
	StatusCode int
	// Err is the underlying client error, if any.
	Err error
}

// Error returns a human-readable description of the flush failure.
func (e *IOError) Error() string {
	if e.StatusCode != 0 {
		if e.Err != nil {
			return fmt.Sprintf("flush: http status %d: %v", e.StatusCode, e.Err)
		}
		return fmt.Sprintf("flush: http status %d", e.StatusCode)
	}
	return fmt.Sprintf("flush: %v", e.Err)
}

// Unwrap returns the underlying client error.
func (e *IOError) Unwrap() error {
	return e.Err
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrHTTPStatus) for non-200 responses.
func (e *IOError) Is(target error) bool {
	return target == ErrHTTPStatus && e.StatusCode != 0
}
