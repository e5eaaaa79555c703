// Package errs defines the error taxonomy shared by the API clients and the
// response normalizer. Every error is surfaced to the caller as soon as it
// happens; nothing in mtgmine retries or suppresses them.
package errs

import (
	"errors"
	"fmt"
)

// NetworkError is returned when a request could not be sent or its response
// could not be read (DNS, connection refused, TLS, timeouts, ...).
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error requesting %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// UpstreamError is returned when the server answers with a non-2xx status.
type UpstreamError struct {
	URL        string
	StatusCode int
	Body       []byte
}

func (e *UpstreamError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("request to %s failed with status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("request to %s failed with status %d: %s", e.URL, e.StatusCode, string(e.Body))
}

// NotFoundError is returned by lookups that matched nothing, or matched more
// than one card when a single one was expected.
type NotFoundError struct {
	Query     string
	Ambiguous bool
	Details   string
	Err       error
}

func (e *NotFoundError) Error() string {
	kind := "no match"
	if e.Ambiguous {
		kind = "ambiguous match"
	}
	if e.Details != "" {
		return fmt.Sprintf("%s for %q: %s", kind, e.Query, e.Details)
	}
	return fmt.Sprintf("%s for %q", kind, e.Query)
}

func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a response body is not shaped as expected.
type FormatError struct {
	Reason string
	Err    error
}

func (e *FormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unexpected response format: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unexpected response format: %s", e.Reason)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Formatf builds a FormatError without an underlying cause.
func Formatf(format string, args ...any) error {
	return &FormatError{Reason: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// StatusCode returns the upstream status code carried by err, or 0 when err
// does not wrap an UpstreamError.
func StatusCode(err error) int {
	var up *UpstreamError
	if errors.As(err, &up) {
		return up.StatusCode
	}
	return 0
}
