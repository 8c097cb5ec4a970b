package entities

import (
	"fmt"
	"strings"

	"github.com/reglet-dev/defimport/internal/domain/validation"
)

// DefinitionValidationError carries findings raised while parsing or
// compiling. Validation folds them into the report instead of failing.
type DefinitionValidationError struct {
	Messages []validation.Message
}

// NewDefinitionValidationError creates an error from one or more findings.
func NewDefinitionValidationError(msgs ...validation.Message) *DefinitionValidationError {
	return &DefinitionValidationError{Messages: msgs}
}

func (e *DefinitionValidationError) Error() string {
	if len(e.Messages) == 1 {
		return e.Messages[0].Text()
	}
	texts := make([]string, 0, len(e.Messages))
	for _, m := range e.Messages {
		texts = append(texts, m.Text())
	}
	return fmt.Sprintf("%d definition errors:\n  - %s", len(e.Messages), strings.Join(texts, "\n  - "))
}

// HierarchyCycleError indicates a parent chain that revisits a definition.
// Path lists the visited identifiers and ends with the repeated one.
type HierarchyCycleError struct {
	DefinitionID string
	Path         []string
}

func (e *HierarchyCycleError) Error() string {
	return fmt.Sprintf("hierarchy cycle detected for %s: %s", e.DefinitionID, validation.FormatList(e.Path))
}

// Message converts the error into a validation finding.
func (e *HierarchyCycleError) Message() validation.Message {
	return validation.NewError(validation.KindHierarchyCycle, e.DefinitionID, e.DefinitionID, validation.FormatList(e.Path))
}

// MissingParentError indicates a parent reference that cannot be resolved.
type MissingParentError struct {
	DefinitionID string
	ParentID     string
}

func (e *MissingParentError) Error() string {
	return fmt.Sprintf("definition %s references missing parent %s", e.DefinitionID, e.ParentID)
}

// Message converts the error into a validation finding.
func (e *MissingParentError) Message() validation.Message {
	return validation.NewError(validation.KindMissingParent, e.DefinitionID, e.DefinitionID, e.ParentID)
}
