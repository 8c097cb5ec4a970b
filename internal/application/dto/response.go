package dto

import (
	"time"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
)

// ReportView is the printable form of a validation run.
type ReportView struct {
	ImportID    string               `json:"import_id" yaml:"import_id"`
	Directory   string               `json:"directory" yaml:"directory"`
	Definitions []string             `json:"definitions" yaml:"definitions"`
	Files       map[string]string    `json:"files,omitempty" yaml:"files,omitempty"`
	Messages    []validation.Message `json:"messages" yaml:"messages"`
	Errors      int                  `json:"errors" yaml:"errors"`
	Warnings    int                  `json:"warnings" yaml:"warnings"`
	Valid       bool                 `json:"valid" yaml:"valid"`
}

// PersistAction describes what happened to one affected definition.
type PersistAction string

const (
	ActionCreated PersistAction = "created"
	ActionUpdated PersistAction = "updated"
	ActionSkipped PersistAction = "unchanged"
)

// PersistOutcome reports the result of persisting one definition.
type PersistOutcome struct {
	DefinitionID string        `json:"definition_id" yaml:"definition_id"`
	Action       PersistAction `json:"action" yaml:"action"`
	Revision     int64         `json:"revision" yaml:"revision"`
	RenamedFrom  string        `json:"renamed_from,omitempty" yaml:"renamed_from,omitempty"`
}

// ImportResponse contains the result of an import.
type ImportResponse struct {
	ImportID string           `json:"import_id" yaml:"import_id"`
	Outcomes []PersistOutcome `json:"outcomes" yaml:"outcomes"`
	Labels   int              `json:"labels" yaml:"labels"`
	Filters  int              `json:"filters" yaml:"filters"`
	Metadata ResponseMetadata `json:"metadata" yaml:"metadata"`
}

// Count returns how many outcomes have the given action.
func (r *ImportResponse) Count(action PersistAction) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// ExportResponse lists the materialized files.
type ExportResponse struct {
	Directory string   `json:"directory" yaml:"directory"`
	Files     []string `json:"files" yaml:"files"`
}

// ListResponse lists imported definitions.
type ListResponse struct {
	Definitions []entities.DefinitionInfo `json:"definitions" yaml:"definitions"`
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// ProcessedAt is when the request was processed
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`

	// Duration is how long the request took
	Duration time.Duration `json:"duration" yaml:"duration"`
}
