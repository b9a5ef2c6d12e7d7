package errors

import (
	"errors"
	"fmt"
)

// ErrorType partitions failures by domain concern.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypePolicy     ErrorType = "policy"
	ErrorTypeApproval   ErrorType = "approval"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError is a structured application error.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: 400,
	}
}

// NewPolicyError reports a submission blocked by policy. Callers attach the
// offending rule ids and fields through WithDetails so consumers can tell
// which violations are responsible, not merely that submission is blocked.
func NewPolicyError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypePolicy,
		Code:       code,
		Message:    message,
		StatusCode: 422,
	}
}

// NewApprovalError reports the approval-pending gate: a blocking condition
// distinct from policy violations, so callers can distinguish "fix the data"
// from "get sign-off".
func NewApprovalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeApproval,
		Code:       "APPROVAL_PENDING",
		Message:    message,
		StatusCode: 422,
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: 409,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: 404,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: 500,
	}
}

// Predefined common errors
var (
	ErrFieldNotFound   = NewNotFoundError("field")
	ErrSessionNotFound = NewNotFoundError("session")
	ErrSubmitInFlight  = NewConflictError("Submission already in progress")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
