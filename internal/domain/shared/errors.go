package shared

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
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
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// ValidationError reports missing or invalid input, a failed precondition or a
// broken reference. It is always recoverable by the caller and is returned
// before anything is written.
type ValidationError struct {
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidationError creates a validation error for the given field.
// Field may be empty when the failure is not tied to a single input.
func NewValidationError(code, field, message string) *ValidationError {
	return &ValidationError{
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// IsValidationError reports whether err is, or wraps, a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ContractViolationError is returned when an implementation does not satisfy
// the service contract it is being bound to. It is a wiring defect.
type ContractViolationError struct {
	Contract string
	Missing  []string
}

// Error implements the error interface
func (e *ContractViolationError) Error() string {
	return fmt.Sprintf("implementation of %s is missing method(s): %s",
		e.Contract, strings.Join(e.Missing, ", "))
}

// NotConfiguredError is returned when a contract is used before an
// implementation has been registered for it.
type NotConfiguredError struct {
	Contract string
}

// Error implements the error interface
func (e *NotConfiguredError) Error() string {
	return fmt.Sprintf("no implementation configured for %s", e.Contract)
}
