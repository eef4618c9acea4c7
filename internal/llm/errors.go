// internal/llm/errors.go
package llm

import (
	"errors"
	"fmt"
)

// ErrMissingCredential is returned when no API key is configured for a call
// that requires one.
var ErrMissingCredential = errors.New("llm: no API credential configured")

// ErrMissingEndpoint is returned when the endpoint URL for a call is empty.
var ErrMissingEndpoint = errors.New("llm: no endpoint configured")

// TransportError wraps a failure of the HTTP call itself (connection refused,
// DNS, client timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("llm: transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// APIError reports a non-2xx response from the remote service.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("llm: api returned status %d", e.Status)
	}
	return fmt.Sprintf("llm: api returned status %d: %s", e.Status, e.Body)
}

// ParseError reports a malformed response body.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("llm: parse response: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
