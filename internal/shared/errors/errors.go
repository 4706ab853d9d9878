// Package errors provides application-level error types and utilities.
package errors

import (
	"errors"
	"fmt"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeForbidden  ErrorType = "forbidden"
	ErrorTypeTransport  ErrorType = "transport_error"
	ErrorTypeInternal   ErrorType = "internal_error"
)

// AppError carries a typed error with optional detail context.
type AppError struct {
	Type    ErrorType
	Message string
	Details string
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func newError(t ErrorType, message string, details []string) *AppError {
	detail := ""
	if len(details) > 0 {
		detail = details[0]
	}
	return &AppError{Type: t, Message: message, Details: detail}
}

// NewValidationError creates a validation error.
func NewValidationError(message string, details ...string) *AppError {
	return newError(ErrorTypeValidation, message, details)
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string, details ...string) *AppError {
	return newError(ErrorTypeNotFound, message, details)
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string, details ...string) *AppError {
	return newError(ErrorTypeForbidden, message, details)
}

// NewTransportError creates a transport error. Transport errors are always
// non-fatal to the operation in progress; callers log and degrade.
func NewTransportError(message string, details ...string) *AppError {
	return newError(ErrorTypeTransport, message, details)
}

// NewInternalError creates an internal error.
func NewInternalError(message string, details ...string) *AppError {
	return newError(ErrorTypeInternal, message, details)
}

// GetAppError extracts an AppError from err, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsNotFoundError checks if the error is a not found error.
func IsNotFoundError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeNotFound
}

// IsValidationError checks if the error is a validation error.
func IsValidationError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeValidation
}

// IsTransportError checks if the error is a transport error.
func IsTransportError(err error) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == ErrorTypeTransport
}
