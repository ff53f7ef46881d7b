package analytics

import (
	"errors"
	"fmt"
)

// ErrTransport matches every error caused by the network rather than by the
// API (unreachable host, DNS, refused connection, cancelled request).
var ErrTransport = errors.New("analytics: transport failure")

// APIError is a non-2xx response from the analytics API.
type APIError struct {
	StatusCode int
	Message    string // value of the "error" field, empty if absent
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("analytics: api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("analytics: api returned %d: %s", e.StatusCode, e.Message)
}

// TransportError wraps the underlying network error.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("analytics: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport so callers can match without a type assertion.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// DecodeError is a 2xx response whose body is not the expected JSON.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("analytics: decode %s response: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// UserMessage returns the message to show for err: the API's own error text
// when it sent one, fallback otherwise.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
