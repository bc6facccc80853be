package models

import (
	"errors"
	"fmt"
)

// ValidationError represents a validation failure with optional field-level
// messages. Nothing is persisted when one is returned.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

// Error returns the error message
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// BadRequestError represents a malformed request that fails before any
// field-level validation applies, like re-parenting a category onto itself.
type BadRequestError struct {
	Message string
}

// Error returns the error message
func (e *BadRequestError) Error() string {
	return e.Message
}

// NewBadRequestError creates a new bad request error
func NewBadRequestError(message string) *BadRequestError {
	return &BadRequestError{Message: message}
}

// ConflictError represents a business-rule violation: deleting an entity that
// still has dependents, removing the last admin, a duplicate unique field.
type ConflictError struct {
	Message string
}

// Error returns the error message
func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// ForbiddenError represents an authorization failure: wrong tenant,
// insufficient role, or a self-targeting rule.
type ForbiddenError struct {
	Message string
}

// Error returns the error message
func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	var c *ConflictError
	return errors.As(err, &c)
}

// IsForbidden reports whether err is a forbidden error.
func IsForbidden(err error) bool {
	var f *ForbiddenError
	return errors.As(err, &f)
}
