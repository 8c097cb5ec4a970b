// Package services contains application use cases.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/reglet-dev/defimport/internal/application/dto"
	apperrors "github.com/reglet-dev/defimport/internal/application/errors"
	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
	"github.com/reglet-dev/defimport/internal/domain/services"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"github.com/reglet-dev/defimport/internal/domain/values"
)

// Repositories groups the storage the import service works against.
type Repositories struct {
	Contents    repositories.DefinitionContentRepository
	Definitions repositories.DefinitionRepository
	Labels      repositories.LabelRepository
	Filters     repositories.FilterRepository
}

// DefinitionImportService orchestrates the validate, import, export and
// listing use cases. This is a pure application layer component that
// depends only on ports.
//
// Imports are serialized in-process; concurrent imports from other
// processes must be serialized by the caller.
type DefinitionImportService struct {
	source    ports.DefinitionSource
	repos     Repositories
	tx        ports.TransactionManager
	notifier  ports.ChangeNotifier
	scanner   ports.SensitiveContentScanner
	exporter  ports.DefinitionExporter
	validator *services.DefinitionValidator
	compiler  *services.HierarchyCompiler
	resolver  *services.AffectedResolver
	persister *DefinitionPersister
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewDefinitionImportService creates a new definition import service.
// scanner may be nil to skip sensitive content checks.
func NewDefinitionImportService(
	source ports.DefinitionSource,
	repos Repositories,
	tx ports.TransactionManager,
	notifier ports.ChangeNotifier,
	scanner ports.SensitiveContentScanner,
	exporter ports.DefinitionExporter,
	logger *slog.Logger,
) *DefinitionImportService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DefinitionImportService{
		source:    source,
		repos:     repos,
		tx:        tx,
		notifier:  notifier,
		scanner:   scanner,
		exporter:  exporter,
		validator: services.NewDefinitionValidator(),
		compiler:  services.NewHierarchyCompiler(),
		resolver:  services.NewAffectedResolver(),
		persister: NewDefinitionPersister(repos.Contents, repos.Definitions, tx, services.NewRevisionEngine(), logger),
		logger:    logger,
	}
}

// Validate parses, validates and compiles the directory without persisting
// anything. Parse and compile failures end up in the report; an error is
// returned only for unusable arguments or storage failures.
func (s *DefinitionImportService) Validate(ctx context.Context, req dto.ValidateRequest) (*ValidationResult, error) {
	if err := checkDirectory(req.Directory); err != nil {
		return nil, err
	}

	result := &ValidationResult{
		ImportID:  values.NewImportID(),
		Directory: req.Directory,
		Report:    validation.NewReport(),
	}
	logger := s.logger.With("import_id", result.ImportID.String())
	logger.Info("validating definitions", "directory", req.Directory)

	imported, err := s.source.ReadDirectory(ctx, req.Directory)
	if err := foldDefinitionErrors(result.Report, err); err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}

	stored, err := s.repos.Contents.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("", "load stored content", err)
	}

	result.Files = make(map[string]string, len(imported))
	for _, p := range imported {
		result.Files[p.ID()] = p.FileName
	}

	renamed, err := s.detectRenames(ctx, imported)
	if err != nil {
		return nil, apperrors.NewPersistenceError("", "detect renames", err)
	}
	batch, persistedIDs := s.assembleBatch(ctx, result.Report, imported, stored, renamed)

	result.Report.Merge(s.validator.Validate(batch, persistedIDs))
	s.scanSensitiveContent(result.Report, imported)

	if result.Report.Has(validation.KindHierarchyCycle) || result.Report.Has(validation.KindMissingParent) {
		logger.Warn("skipping compilation, hierarchy is broken")
	} else {
		defs := make([]*entities.Definition, 0, len(batch))
		for _, p := range batch {
			defs = append(defs, p.Definition)
		}
		compiled, err := s.compiler.Compile(defs)
		if err := foldDefinitionErrors(result.Report, err); err != nil {
			return nil, fmt.Errorf("failed to compile definitions: %w", err)
		}
		result.Compiled = compiled
	}

	if !result.Report.HasBlockingErrors() {
		result.Batch = newValidatedBatch(result.ImportID, req.Directory, imported, result.Compiled)
	}

	logger.Info("validation finished",
		"definitions", len(batch),
		"errors", len(result.Report.Errors()),
		"warnings", len(result.Report.Warnings()))
	return result, nil
}

// Import persists a validated batch: labels, filters, then every affected
// definition, all in one transaction. A "definitions changed" notification
// is sent after the transaction commits.
func (s *DefinitionImportService) Import(ctx context.Context, batch *ValidatedBatch) (*dto.ImportResponse, error) {
	if batch == nil {
		return nil, apperrors.NewValidationError("batch", "a validated batch is required; run validate first")
	}
	if !batch.consume() {
		return nil, apperrors.ErrBatchConsumed
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	startTime := time.Now()
	logger := s.logger.With("import_id", batch.ImportID().String())

	affected := s.resolver.Affected(batch.compiled)
	logger.Info("importing definitions", "compiled", batch.Size(), "affected", len(affected))

	resp := &dto.ImportResponse{ImportID: batch.ImportID().String()}
	labels := batch.labels()
	filters := batch.filters()

	err := s.tx.InTransaction(ctx, func(ctx context.Context) error {
		// The store may retry the whole unit of work.
		resp.Outcomes = resp.Outcomes[:0]
		if len(labels) > 0 {
			if err := s.repos.Labels.SaveAll(ctx, labels); err != nil {
				return apperrors.NewPersistenceError("", "save labels", err)
			}
		}
		if len(filters) > 0 {
			if err := s.repos.Filters.SaveAll(ctx, filters); err != nil {
				return apperrors.NewPersistenceError("", "save filters", err)
			}
		}
		for _, def := range affected {
			outcome, err := s.persister.Persist(ctx, def)
			if err != nil {
				return err
			}
			resp.Outcomes = append(resp.Outcomes, outcome)
		}
		return nil
	})
	if err != nil {
		logger.Error("import failed, changes rolled back", "error", err)
		return nil, err
	}

	resp.Labels = len(labels)
	resp.Filters = len(filters)
	resp.Metadata = dto.ResponseMetadata{ProcessedAt: time.Now(), Duration: time.Since(startTime)}

	if s.notifier != nil {
		s.notifier.DefinitionsChanged(ctx)
	}

	logger.Info("import finished",
		"created", resp.Count(dto.ActionCreated),
		"updated", resp.Count(dto.ActionUpdated),
		"unchanged", resp.Count(dto.ActionSkipped))
	return resp, nil
}

// ImportDirectory validates the directory and imports it when the report
// has no blocking errors. The validation result is always returned.
func (s *DefinitionImportService) ImportDirectory(ctx context.Context, req dto.ValidateRequest) (*ValidationResult, *dto.ImportResponse, error) {
	result, err := s.Validate(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	if result.Batch == nil {
		details := make([]string, 0, len(result.Report.Errors()))
		for _, m := range result.Report.Errors() {
			details = append(details, m.Text())
		}
		return result, nil, apperrors.NewValidationError("definitions", "blocking validation errors", details...)
	}

	resp, err := s.Import(ctx, result.Batch)
	return result, resp, err
}

// ImportedDefinitions lists the definitions whose content is stored.
func (s *DefinitionImportService) ImportedDefinitions(ctx context.Context, req dto.ListRequest) (*dto.ListResponse, error) {
	filter, err := buildFilter(req.Filters)
	if err != nil {
		return nil, err
	}

	infos, err := s.definitionInfos(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.ListResponse{Definitions: filter.Apply(infos)}, nil
}

// ExportAll materializes every stored definition as a file.
func (s *DefinitionImportService) ExportAll(ctx context.Context) (*dto.ExportResponse, error) {
	return s.Export(ctx, dto.ExportRequest{})
}

// ExportDefinitions materializes the given definitions as files.
func (s *DefinitionImportService) ExportDefinitions(ctx context.Context, ids []string) (*dto.ExportResponse, error) {
	return s.Export(ctx, dto.ExportRequest{IDs: ids})
}

// Export materializes the selected stored definitions as files named by
// their stored file names.
func (s *DefinitionImportService) Export(ctx context.Context, req dto.ExportRequest) (*dto.ExportResponse, error) {
	opts := req.Filters
	opts.IncludeIDs = append(opts.IncludeIDs, req.IDs...)
	filter, err := buildFilter(opts)
	if err != nil {
		return nil, err
	}

	contents, err := s.repos.Contents.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("", "load stored content", err)
	}
	infos, err := s.definitionInfos(ctx)
	if err != nil {
		return nil, err
	}

	selected := make(map[string]bool)
	for _, info := range filter.Apply(infos) {
		selected[info.Identifier] = true
	}
	for _, id := range req.IDs {
		if !selected[id] {
			s.logger.Warn("definition not found for export", "definition", id)
		}
	}

	var chosen []entities.DefinitionContent
	for _, c := range contents {
		if selected[c.Identifier] {
			chosen = append(chosen, c)
		}
	}
	if len(chosen) == 0 {
		return nil, apperrors.NewExportError("no stored definitions match the selection", nil)
	}

	dir, files, err := s.exporter.Export(ctx, req.TargetDir, chosen)
	if err != nil {
		return nil, apperrors.NewExportError("write definition files", err)
	}
	s.logger.Info("definitions exported", "directory", dir, "count", len(files))
	return &dto.ExportResponse{Directory: dir, Files: files}, nil
}

// assembleBatch combines the imported definitions with the stored ones they
// do not replace, so that descendants of changed definitions are
// recompiled. It returns the batch and the identifiers known to storage.
func (s *DefinitionImportService) assembleBatch(
	ctx context.Context,
	report *validation.Report,
	imported []*entities.ParsedDefinition,
	stored []entities.DefinitionContent,
	renamed map[string]bool,
) ([]*entities.ParsedDefinition, []string) {
	importedIDs := make(map[string]bool, len(imported))
	for _, p := range imported {
		importedIDs[p.ID()] = true
	}

	batch := append([]*entities.ParsedDefinition(nil), imported...)
	var persistedIDs []string
	for _, c := range stored {
		if renamed[c.Identifier] {
			continue
		}
		persistedIDs = append(persistedIDs, c.Identifier)
		if importedIDs[c.Identifier] {
			continue
		}

		p, err := s.source.ParseContent(ctx, c)
		if err != nil {
			if ferr := foldDefinitionErrors(report, err); ferr != nil {
				report.AddError(validation.KindXMLParsingFailure, c.Identifier, c.FileName, ferr.Error())
			}
			continue
		}
		batch = append(batch, p)
	}
	return batch, persistedIDs
}

func (s *DefinitionImportService) scanSensitiveContent(report *validation.Report, imported []*entities.ParsedDefinition) {
	if s.scanner == nil {
		return
	}
	for _, p := range imported {
		for _, finding := range s.scanner.Scan(p.Definition.SourceContent) {
			report.AddWarning(validation.KindSensitiveContent, p.ID(), p.ID(), finding.RuleID, fmt.Sprint(finding.Line))
		}
	}
}

// definitionInfos joins stored content rows with their compiled definitions.
func (s *DefinitionImportService) definitionInfos(ctx context.Context) ([]entities.DefinitionInfo, error) {
	contents, err := s.repos.Contents.FindAll(ctx)
	if err != nil {
		return nil, apperrors.NewPersistenceError("", "load stored content", err)
	}

	infos := make([]entities.DefinitionInfo, 0, len(contents))
	for _, c := range contents {
		def, err := s.repos.Definitions.FindByID(ctx, c.Identifier)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			infos = append(infos, entities.DefinitionInfo{Identifier: c.Identifier, FileName: c.FileName})
		case err != nil:
			return nil, apperrors.NewPersistenceError(c.Identifier, "load stored definition", err)
		default:
			infos = append(infos, def.Info(c.FileName))
		}
	}
	return infos, nil
}

// detectRenames marks imported definitions whose file was stored under a
// different identifier. A stored identifier still claimed by some imported
// definition is not treated as renamed. Returns the renamed-away identifiers.
func (s *DefinitionImportService) detectRenames(ctx context.Context, imported []*entities.ParsedDefinition) (map[string]bool, error) {
	claimed := make(map[string]bool, len(imported))
	for _, p := range imported {
		claimed[p.ID()] = true
	}

	renamed := make(map[string]bool)
	for _, p := range imported {
		c, err := s.repos.Contents.FindByFileName(ctx, p.FileName)
		if errors.Is(err, repositories.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if c.Identifier == p.ID() || claimed[c.Identifier] {
			continue
		}
		p.Definition.PreviousIdentifier = c.Identifier
		renamed[c.Identifier] = true
	}
	return renamed, nil
}

// foldDefinitionErrors merges a DefinitionValidationError into the report.
// Any other non-nil error is returned unchanged.
func foldDefinitionErrors(report *validation.Report, err error) error {
	if err == nil {
		return nil
	}
	var verr *entities.DefinitionValidationError
	if errors.As(err, &verr) {
		report.Add(verr.Messages...)
		return nil
	}
	return err
}

func checkDirectory(dir string) error {
	if dir == "" {
		return apperrors.NewValidationError("directory", "is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return apperrors.NewValidationError("directory", fmt.Sprintf("cannot access %s: %v", dir, err))
	}
	if !info.IsDir() {
		return apperrors.NewValidationError("directory", fmt.Sprintf("%s is not a directory", dir))
	}
	return nil
}

func buildFilter(opts dto.FilterOptions) (*services.DefinitionFilter, error) {
	filter := services.NewDefinitionFilter()
	if len(opts.IncludeIDs) > 0 {
		filter.WithIDs(opts.IncludeIDs)
	}
	if len(opts.IncludeTypes) > 0 {
		filter.WithTypes(opts.IncludeTypes)
	}
	if opts.ExcludeAbstract {
		filter.WithoutAbstract()
	}
	if opts.FilterExpression != "" {
		program, err := services.CompileFilterExpression(opts.FilterExpression)
		if err != nil {
			return nil, apperrors.NewValidationError("filter", err.Error())
		}
		filter.WithFilterExpression(program)
	}
	return filter, nil
}
