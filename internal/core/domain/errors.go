package domain

import (
	"errors"
	"fmt"
	"time"
)

// DomainError represents a client-side error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "TD-SESS-4011")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is matches another DomainError by code.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

var (
	// ErrNotAuthenticated indicates neither token is stored.
	ErrNotAuthenticated = NewDomainError("TD-SESS-4010", "not authenticated")

	// ErrSessionExpired indicates the token refresh failed and the user must log in again.
	ErrSessionExpired = NewDomainError("TD-SESS-4011", "session expired, please log in again")
)

var (
	// ErrTaskValidation indicates a task body failed validation before dispatch.
	ErrTaskValidation = NewDomainError("TD-TASK-4001", "task validation failed")

	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("TD-ARG-1001", "invalid argument")
)

var (
	// ErrTokenStore indicates the token store could not persist the session.
	ErrTokenStore = NewDomainError("TD-STORE-5001", "token store error")
)

// ErrorCode classifies a failed HTTP call.
type ErrorCode string

const (
	CodeTimeout      ErrorCode = "timeout"
	CodeNetwork      ErrorCode = "network"
	CodeServer       ErrorCode = "server"
	CodeClient       ErrorCode = "client"
	CodeUnauthorized ErrorCode = "unauthorized"
	CodeRateLimited  ErrorCode = "rate_limited"
	CodeCanceled     ErrorCode = "canceled"
	CodeEncode       ErrorCode = "encode"
	CodeDecode       ErrorCode = "decode"
)

// Default user-facing messages, used when the server did not supply one.
const (
	MessageTimeout = "request timed out"
	MessageNetwork = "network error, check your connection"
	MessageGeneric = "request failed"
)

// RequestError is the uniform error returned by every HTTP call.
// Transport-specific error values are only reachable through Unwrap.
type RequestError struct {
	Message string
	Code    ErrorCode
	// Status is the HTTP status, 0 if no response was received.
	Status int
	// RetryAfter is the server-requested delay on 429 responses.
	RetryAfter time.Duration
	Cause      error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (%s, status %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap returns the underlying transport error.
func (e *RequestError) Unwrap() error {
	return e.Cause
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}

// CodeOf returns the classification carried by err, or "".
func CodeOf(err error) ErrorCode {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Code
	}
	return ""
}
