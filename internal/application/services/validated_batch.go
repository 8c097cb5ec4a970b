package services

import (
	"sync/atomic"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/services"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"github.com/reglet-dev/defimport/internal/domain/values"
)

// ValidatedBatch is the only input Import accepts. It can only be built by
// Validate, and only when the report has no blocking errors, so an import
// can never run on a batch that skipped validation or failed it.
//
// A batch is single-use.
type ValidatedBatch struct {
	importID  values.ImportID
	directory string
	// imported are the definitions read from the directory; their labels
	// and filters are persisted on import.
	imported []*entities.ParsedDefinition
	// compiled is the whole compiled batch, including stored definitions
	// recompiled alongside the imported ones.
	compiled []*entities.Definition
	consumed atomic.Bool
}

func newValidatedBatch(
	importID values.ImportID,
	directory string,
	imported []*entities.ParsedDefinition,
	compiled []*entities.Definition,
) *ValidatedBatch {
	return &ValidatedBatch{
		importID:  importID,
		directory: directory,
		imported:  imported,
		compiled:  compiled,
	}
}

// ImportID returns the ID of the validation run that produced the batch.
func (b *ValidatedBatch) ImportID() values.ImportID {
	return b.importID
}

// Directory returns the directory the batch was read from.
func (b *ValidatedBatch) Directory() string {
	return b.directory
}

// Size returns the number of compiled definitions in the batch.
func (b *ValidatedBatch) Size() int {
	return len(b.compiled)
}

// Consumed reports whether the batch has already been imported.
func (b *ValidatedBatch) Consumed() bool {
	return b.consumed.Load()
}

// consume marks the batch used, returning false if it already was.
func (b *ValidatedBatch) consume() bool {
	return b.consumed.CompareAndSwap(false, true)
}

func (b *ValidatedBatch) labels() []entities.Label {
	var out []entities.Label
	for _, p := range b.imported {
		out = append(out, services.CopyLabels(p.Labels)...)
	}
	return out
}

func (b *ValidatedBatch) filters() []entities.Filter {
	var out []entities.Filter
	for _, p := range b.imported {
		out = append(out, services.CopyFilters(p.Filters)...)
	}
	return out
}

// ValidationResult is the outcome of Validate.
type ValidationResult struct {
	ImportID  values.ImportID
	Directory string
	Report    *validation.Report
	// Files maps each imported definition to its file name.
	Files map[string]string
	// Compiled holds the compiled definitions, nil when compilation was
	// skipped or failed.
	Compiled []*entities.Definition
	// Batch is nil when the report has blocking errors.
	Batch *ValidatedBatch
}

// View returns the printable form of the result.
func (r *ValidationResult) View() *dto.ReportView {
	ids := make([]string, 0, len(r.Compiled))
	for _, d := range r.Compiled {
		ids = append(ids, d.Identifier)
	}
	return &dto.ReportView{
		ImportID:    r.ImportID.String(),
		Directory:   r.Directory,
		Definitions: ids,
		Files:       r.Files,
		Messages:    r.Report.Messages(),
		Errors:      len(r.Report.Errors()),
		Warnings:    len(r.Report.Warnings()),
		Valid:       !r.Report.HasBlockingErrors(),
	}
}
