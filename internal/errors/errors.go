package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrCodeForbidden    ErrorCode = "FORBIDDEN"

	// Validation
	ErrCodeValidation         ErrorCode = "VALIDATION_ERROR"
	ErrCodeInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrCodeMissingRequired    ErrorCode = "MISSING_REQUIRED"
	ErrCodePreconditionFailed ErrorCode = "PRECONDITION_FAILED"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeConflict ErrorCode = "CONFLICT"

	// Transport
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	ErrCodeNetwork ErrorCode = "NETWORK_ERROR"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternal ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// AppError is a structured error returned by the API client and services.
// Status is the HTTP status when the error came from a backend response.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	Details any       `json:"details,omitempty"`
	cause   error

	fromBackend bool
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message)
}

func Forbidden(message string) *AppError {
	return New(ErrCodeForbidden, message)
}

func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource))
}

func ValidationError(message string) *AppError {
	return New(ErrCodeValidation, message)
}

func InvalidInput(field string, reason string) *AppError {
	return New(ErrCodeInvalidInput, fmt.Sprintf("Invalid %s: %s", field, reason))
}

func MissingRequired(field string) *AppError {
	return New(ErrCodeMissingRequired, fmt.Sprintf("%s is required", field))
}

// Precondition is a local rejection raised before any network call.
func Precondition(message string) *AppError {
	return New(ErrCodePreconditionFailed, message)
}

func Timeout(cause error) *AppError {
	return Wrap(ErrCodeTimeout, "Request timed out", cause)
}

func Network(cause error) *AppError {
	return Wrap(ErrCodeNetwork, "Network error", cause)
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func External(service string, cause error) *AppError {
	return Wrap(ErrCodeExternal, fmt.Sprintf("External service error: %s", service), cause)
}

// FromStatus builds an AppError for a non-2xx backend response. message is
// the backend-provided text and may be empty.
func FromStatus(status int, message string) *AppError {
	fromBackend := message != ""
	if !fromBackend {
		message = http.StatusText(status)
	}
	return &AppError{
		Code:        codeFromStatus(status),
		Message:     message,
		Status:      status,
		fromBackend: fromBackend,
	}
}

// HasBackendMessage reports whether Message was supplied by the backend.
func (e *AppError) HasBackendMessage() bool {
	return e.fromBackend
}

// FromTransport classifies a failed round trip as a timeout or a generic
// network failure.
func FromTransport(err error) *AppError {
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout(err)
	}
	return Network(err)
}

func codeFromStatus(status int) ErrorCode {
	switch {
	case status == http.StatusUnauthorized:
		return ErrCodeUnauthorized
	case status == http.StatusForbidden:
		return ErrCodeForbidden
	case status == http.StatusNotFound:
		return ErrCodeNotFound
	case status == http.StatusConflict:
		return ErrCodeConflict
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return ErrCodeTimeout
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return ErrCodeValidation
	case status >= 400 && status < 500:
		return ErrCodeInvalidInput
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		return ErrCodeExternal
	default:
		return ErrCodeInternal
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// StatusOf returns the backend HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Status
	}
	return 0
}
