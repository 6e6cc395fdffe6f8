// Package errors provides custom error types for the simchat client, backend and registry.
package errors

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	ErrEmptyInput       = errors.New("input is empty")
	ErrBusy             = errors.New("a request is already in flight")
	ErrStaleToken       = errors.New("request token does not match the in-flight request")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrSyncInProgress   = errors.New("workflow sync in progress")
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrMissingAPIKey    = errors.New("missing OpenRouter API key")
	ErrNotAuthenticated = errors.New("user not authenticated")
	ErrStoreClosed      = errors.New("store is closed")
)

// APIError represents a non-success HTTP response from a backend or upstream
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// NewAPIErrorWithBody creates a new APIError that keeps the (truncated) response body
func NewAPIErrorWithBody(statusCode int, endpoint, message, body string) *APIError {
	if len(body) > maxBodySize {
		body = body[:maxBodySize]
	}
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
		Body:       body,
	}
}

const maxBodySize = 4096

// NetworkError represents a transport-level failure (connection refused, DNS, reset)
type NetworkError struct {
	Operation string
	Endpoint  string
	Cause     error
}

func (e *NetworkError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("network error during %s at %s: %v", e.Operation, e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("network error during %s: %v", e.Operation, e.Cause)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// NewNetworkErrorWithEndpoint creates a new NetworkError
func NewNetworkErrorWithEndpoint(operation, endpoint string, cause error) *NetworkError {
	return &NetworkError{Operation: operation, Endpoint: endpoint, Cause: cause}
}

// TimeoutError represents a request timeout
type TimeoutError struct {
	Message string
}

func (e *TimeoutError) Error() string {
	if e.Message == "" {
		return "request timed out"
	}
	return fmt.Sprintf("request timed out: %s", e.Message)
}

// Is matches context.DeadlineExceeded so callers can use either form
func (e *TimeoutError) Is(target error) bool {
	if target == context.DeadlineExceeded {
		return true
	}
	_, ok := target.(*TimeoutError)
	return ok
}

// NewTimeoutError creates a new TimeoutError
func NewTimeoutError(message string) *TimeoutError {
	return &TimeoutError{Message: message}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("parse error at %q: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// GetHTTPStatus returns the HTTP status carried by err, or 0
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or ""
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or ""
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsAPIError reports whether err is (or wraps) an APIError
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}

// IsNetworkError reports whether err is (or wraps) a NetworkError
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err is a timeout of any kind
func IsTimeoutError(err error) bool {
	var tErr *TimeoutError
	return errors.As(err, &tErr) || errors.Is(err, context.DeadlineExceeded)
}

// IsParseError reports whether err is (or wraps) a ParseError
func IsParseError(err error) bool {
	return errors.Is(err, ErrInvalidResponse)
}

// Kind classifies err for logs and metrics labels.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case IsTimeoutError(err):
		return "timeout"
	case IsAPIError(err):
		return "status"
	case IsParseError(err):
		return "parse"
	case IsNetworkError(err):
		return "network"
	default:
		return "other"
	}
}

// Is, As and New re-export the standard helpers so callers importing this
// package under its own name keep access to them.
var (
	Is  = errors.Is
	As  = errors.As
	New = errors.New
)
