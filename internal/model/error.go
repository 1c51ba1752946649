package model

import (
	"errors"
	"fmt"
)

// ErrorResponse represents a standardised error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// Standard error codes for API responses
const (
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_FAILED"
	ErrCodeInvalidCredentials = "INVALID_CREDENTIALS"
	ErrCodeSubmissionInFlight = "SUBMISSION_IN_FLIGHT"
	ErrCodeStaleCart          = "STALE_CART"
	ErrCodeBatchNotFound      = "BATCH_NOT_FOUND"
	ErrCodeUserExists         = "USER_EXISTS"
	ErrCodeUnauthorised       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeBackend            = "BACKEND_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
)

// Domain errors for business logic
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrInvalidCredentials = NewDomainError(ErrCodeInvalidCredentials, "Invalid username or password")
	ErrSubmissionInFlight = NewDomainError(ErrCodeSubmissionInFlight, "A submission for this user is already in progress")
	ErrStaleCart          = NewDomainError(ErrCodeStaleCart, "Cart changed since it was loaded; reload and submit again")
	ErrBatchNotFound      = NewDomainError(ErrCodeBatchNotFound, "One or more batches not found")
	ErrUserExists         = NewDomainError(ErrCodeUserExists, "User already exists")
	ErrForbidden          = NewDomainError(ErrCodeForbidden, "Administrator access required")
)

// ValidationError reports bad user input. It is always returned before any
// write is attempted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// BackendError reports a failed store operation.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// NewBackendError wraps err as the failure of op. A nil err yields nil.
func NewBackendError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &BackendError{Op: op, Err: err}
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsBackend reports whether err is or wraps a BackendError.
func IsBackend(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}
