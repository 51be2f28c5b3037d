package client

import (
	"errors"
	"fmt"
)

// ErrorClass classifies API request failures.
type ErrorClass string

const (
	// ErrorClassTransport represents a non-200 HTTP status (or a failure
	// to reach the server at all, with status code 0).
	ErrorClassTransport ErrorClass = "transport"

	// ErrorClassDecode represents a response body that is not valid JSON.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassShape represents a structurally unrecognized envelope.
	ErrorClassShape ErrorClass = "shape"

	// ErrorClassServer represents a 200 response whose header carries a
	// server-reported error message.
	ErrorClassServer ErrorClass = "server"
)

// APIError represents a World Bank API error with request context.
type APIError struct {
	URL        string
	StatusCode int
	Class      ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("API %s error [%d]: %s (%s)",
			e.Class, e.StatusCode, e.Message, e.URL)
	}
	return fmt.Sprintf("API %s error: %s (%s)", e.Class, e.Message, e.URL)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// IsClass reports whether err is (or wraps) an APIError of the given class.
func IsClass(err error, class ErrorClass) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Class == class
}
