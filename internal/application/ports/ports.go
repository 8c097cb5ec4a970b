// Package ports defines interfaces for infrastructure dependencies.
// These are the "ports" in hexagonal architecture - abstractions that
// the application layer depends on but doesn't implement.
package ports

import (
	"context"
	"io"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/infrastructure/system"
)

// DefinitionSource reads definition files.
type DefinitionSource interface {
	// ReadDirectory parses every .xml file under dir. Files that fail to
	// parse are reported through an *entities.DefinitionValidationError
	// returned alongside the definitions that did parse.
	ReadDirectory(ctx context.Context, dir string) ([]*entities.ParsedDefinition, error)

	// ParseContent parses a stored content row. The result carries no
	// source markers because the file is not part of the current import.
	ParseContent(ctx context.Context, content entities.DefinitionContent) (*entities.ParsedDefinition, error)
}

// DefinitionExporter materializes stored content as files.
type DefinitionExporter interface {
	// Export writes one file per row into dir, named by the stored file
	// name, and returns the written paths. An empty dir means a new
	// temporary directory.
	Export(ctx context.Context, dir string, contents []entities.DefinitionContent) (string, []string, error)
}

// TransactionManager establishes transaction boundaries.
type TransactionManager interface {
	// InTransaction runs fn inside the surrounding transaction, starting one
	// if none is active. The transaction commits when the outermost fn
	// returns nil and rolls back otherwise.
	InTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// InNewTransaction runs fn in a unit of work that is committed when fn
	// returns nil. Stores that commit independently of a surrounding
	// transaction do so. A single-writer store such as SQLite instead runs
	// fn as a savepoint of the active transaction and releases it on
	// return, so the work still rolls back with the outer transaction.
	InNewTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// OnRollback registers a compensating action that runs only if the
	// outermost transaction active on ctx rolls back.
	OnRollback(ctx context.Context, fn func(ctx context.Context) error) error
}

// ChangeNotifier tells downstream caches that definitions changed.
// Notifications are fire-and-forget and carry no payload.
type ChangeNotifier interface {
	DefinitionsChanged(ctx context.Context)
}

// SensitiveFinding is a secret-looking value found in definition content.
type SensitiveFinding struct {
	RuleID string
	Line   int
}

// SensitiveContentScanner looks for secrets in raw definition XML.
type SensitiveContentScanner interface {
	Scan(content string) []SensitiveFinding
}

// Confirmer asks the operator to approve an import.
type Confirmer interface {
	IsInteractive() bool
	ConfirmImport(ctx context.Context, report *dto.ReportView) (bool, error)
}

// SystemConfigProvider loads system configuration.
type SystemConfigProvider interface {
	LoadConfig(ctx context.Context, path string) (*system.Config, error)
}

// OutputFormatter renders use case results.
type OutputFormatter interface {
	FormatReport(view *dto.ReportView) error
	FormatImport(resp *dto.ImportResponse) error
	FormatList(resp *dto.ListResponse) error
	FormatExport(resp *dto.ExportResponse) error
}

// FormatterOptions tunes formatter output.
type FormatterOptions struct {
	// Indent pretty-prints JSON output.
	Indent bool
	// Color enables ANSI colors in text output.
	Color bool
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, writer io.Writer, options FormatterOptions) (OutputFormatter, error)
	SupportedFormats() []string
}
