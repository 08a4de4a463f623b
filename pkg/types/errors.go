package types

import (
	"errors"
	"fmt"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeNotFound         ErrorType = "not_found"
	ErrorTypeConflict         ErrorType = "conflict"
	ErrorTypeStoreUnavailable ErrorType = "store_unavailable"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents a structured error in the scheduling system
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(code, message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
		Details: details,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    code,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    code,
		Message: message,
	}
}

// NewStoreError creates a new store unavailability error
func NewStoreError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeStoreUnavailable,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(code, message string, cause error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsErrorType reports whether err is an AppError of the given type
func IsErrorType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool { return IsErrorType(err, ErrorTypeNotFound) }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return IsErrorType(err, ErrorTypeConflict) }

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return IsErrorType(err, ErrorTypeValidation) }

// IsStoreUnavailable reports whether err is a store unavailability error
func IsStoreUnavailable(err error) bool { return IsErrorType(err, ErrorTypeStoreUnavailable) }

// Common error codes
const (
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeSlotOccupied     = "SLOT_OCCUPIED"
	ErrCodeDuplicateCPF     = "DUPLICATE_CPF"
	ErrCodeDuplicateCarName = "DUPLICATE_CAR_NAME"
	ErrCodeStoreUnavailable = "STORE_UNAVAILABLE"
	ErrCodeInternalError    = "INTERNAL_ERROR"
)
