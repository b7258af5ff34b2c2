// Package errors provides typed errors for ci-changelog
package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of error
type ErrorType int

const (
	// ErrConfig indicates a missing or invalid configuration parameter
	ErrConfig ErrorType = iota
	// ErrTransport indicates a network-level failure talking to the CI server
	ErrTransport
	// ErrUpstreamStatus indicates the CI server answered with a non-200 status
	ErrUpstreamStatus
	// ErrDecode indicates a response body that is not valid JSON or lacks the expected shape
	ErrDecode
	// ErrUnsupported indicates no CI handler is available for the environment
	ErrUnsupported
)

// CICDError is the base error type for all ci-changelog errors
type CICDError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error returns the error message
func (e *CICDError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", errorTypeString(e.Type), e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", errorTypeString(e.Type), e.Message)
}

// Unwrap returns the underlying cause
func (e *CICDError) Unwrap() error {
	return e.Cause
}

// New creates a new CICDError
func New(errType ErrorType, message string, cause error) *CICDError {
	return &CICDError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// WithContext adds context to the error
func (e *CICDError) WithContext(key string, value interface{}) *CICDError {
	e.Context[key] = value
	return e
}

// IsType checks if an error is of a specific type
func IsType(err error, errType ErrorType) bool {
	var cicdErr *CICDError
	if err == nil {
		return false
	}
	if errors.As(err, &cicdErr) {
		return cicdErr.Type == errType
	}
	return false
}

// IsRecoverable returns true if the backward walk may continue past the error
// with the next older build.
func IsRecoverable(err error) bool {
	var cicdErr *CICDError
	if !errors.As(err, &cicdErr) {
		return false
	}

	switch cicdErr.Type {
	case ErrUpstreamStatus, ErrDecode:
		return true
	default:
		return false
	}
}

// ShouldBlockCI returns true if the error should block the CI pipeline
func ShouldBlockCI(err error) bool {
	var cicdErr *CICDError
	if !errors.As(err, &cicdErr) {
		return false
	}

	// Only bad credentials halt the pipeline; everything else degrades to a
	// partial or empty changelog.
	switch cicdErr.Type {
	case ErrConfig:
		return true
	default:
		return false
	}
}

func errorTypeString(et ErrorType) string {
	switch et {
	case ErrConfig:
		return "CONFIG"
	case ErrTransport:
		return "TRANSPORT"
	case ErrUpstreamStatus:
		return "UPSTREAM_STATUS"
	case ErrDecode:
		return "DECODE"
	case ErrUnsupported:
		return "UNSUPPORTED"
	default:
		return "UNKNOWN"
	}
}

// Convenience functions for common errors

// ConfigError creates a configuration error
func ConfigError(message string, cause error) *CICDError {
	return New(ErrConfig, message, cause)
}

// TransportError creates a transport error
func TransportError(message string, cause error) *CICDError {
	return New(ErrTransport, message, cause)
}

// UpstreamStatusError creates an error for a non-200 response
func UpstreamStatusError(statusCode int, url string) *CICDError {
	return New(ErrUpstreamStatus, fmt.Sprintf("unexpected status code %d", statusCode), nil).
		WithContext("status", statusCode).
		WithContext("url", url)
}

// DecodeError creates a decode error
func DecodeError(message string, cause error) *CICDError {
	return New(ErrDecode, message, cause)
}

// UnsupportedError creates an unsupported-provider error
func UnsupportedError(message string) *CICDError {
	return New(ErrUnsupported, message, nil)
}
