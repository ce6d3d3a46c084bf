package sift

import (
	"errors"
	"fmt"
)

// Common errors
var (
	// ErrInvalidConfig matches every *ConfigurationError
	ErrInvalidConfig = errors.New("invalid sift configuration")
	// ErrRequestFailed matches every *RequestFailure
	ErrRequestFailed = errors.New("sift request failed")
)

const (
	// DefaultFailureMessage is used when a request fails without a response.
	DefaultFailureMessage = "An error occurred during the request"
	// NoResponseCode is the failure code used when no response was received.
	NoResponseCode = -1
)

// ConfigurationError reports invalid input supplied by the caller, such as
// missing credentials or an unusable HTTP client.
type ConfigurationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("sift configuration error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("sift configuration error: %s", e.Message)
}

// Is implements errors.Is for sentinel error matching.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func configError(field, format string, args ...any) error {
	return &ConfigurationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RequestFailure reports a failed request. Code is the HTTP status when the
// transport returned an error response, the envelope code when the service
// reported a failure in a successful response, or NoResponseCode.
type RequestFailure struct {
	Message string
	Code    int
	Err     error
}

func newRequestFailure(message string, code int, cause error) *RequestFailure {
	return &RequestFailure{Message: message, Code: code, Err: cause}
}

// Error implements the error interface
func (e *RequestFailure) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sift request failed: code %d", e.Code)
	}
	return fmt.Sprintf("sift request failed: code %d: %s", e.Code, e.Message)
}

// Unwrap returns the underlying transport or decoding error, if any.
func (e *RequestFailure) Unwrap() error {
	return e.Err
}

// Is implements errors.Is for sentinel error matching.
func (e *RequestFailure) Is(target error) bool {
	return target == ErrRequestFailed
}

// HasResponse reports whether the failure carries a code from the service.
func (e *RequestFailure) HasResponse() bool {
	return e.Code != NoResponseCode
}

// IsNotFound checks if the failure indicates a missing resource
func (e *RequestFailure) IsNotFound() bool {
	return e.Code == 404
}

// IsUnauthorized checks if the failure indicates rejected credentials or signature
func (e *RequestFailure) IsUnauthorized() bool {
	return e.Code == 401 || e.Code == 403
}

// FailureCode extracts the code of a *RequestFailure in err's chain.
// The second result is false when err holds no RequestFailure.
func FailureCode(err error) (int, bool) {
	var rf *RequestFailure
	if errors.As(err, &rf) {
		return rf.Code, true
	}
	return 0, false
}
