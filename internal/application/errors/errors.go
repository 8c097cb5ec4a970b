// Package apperrors defines application-level error types.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrBatchConsumed is returned when a validated batch is imported twice.
var ErrBatchConsumed = errors.New("validated batch has already been imported")

// ValidationError indicates request or input validation failed.
type ValidationError struct {
	Field   string   // Field that failed validation
	Message string   // Error message
	Details []string // Additional details
}

func (e *ValidationError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s (%d issues)", e.Field, e.Message, len(e.Details))
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string, details ...string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Details: details,
	}
}

// PersistenceError indicates a storage write or read failed during import.
type PersistenceError struct {
	Cause        error
	DefinitionID string
	Operation    string
}

func (e *PersistenceError) Error() string {
	if e.DefinitionID == "" {
		return fmt.Sprintf("persistence failed (%s): %v", e.Operation, e.Cause)
	}
	return fmt.Sprintf("persistence failed for definition %s (%s): %v", e.DefinitionID, e.Operation, e.Cause)
}

func (e *PersistenceError) Unwrap() error {
	return e.Cause
}

// NewPersistenceError creates a new persistence error.
func NewPersistenceError(definitionID, operation string, cause error) *PersistenceError {
	return &PersistenceError{
		DefinitionID: definitionID,
		Operation:    operation,
		Cause:        cause,
	}
}

// ExportError indicates definition content could not be materialized.
type ExportError struct {
	Cause   error
	Message string
}

func (e *ExportError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("export failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("export failed: %s", e.Message)
}

func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new export error.
func NewExportError(message string, cause error) *ExportError {
	return &ExportError{
		Message: message,
		Cause:   cause,
	}
}

// ConfigurationError indicates system config or setup issue.
type ConfigurationError struct {
	Cause   error
	Aspect  string
	Message string
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Aspect, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Aspect, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}

// NewConfigurationError creates a new configuration error.
func NewConfigurationError(aspect, message string, cause error) *ConfigurationError {
	return &ConfigurationError{
		Aspect:  aspect,
		Message: message,
		Cause:   cause,
	}
}
