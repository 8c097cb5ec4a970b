package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reglet-dev/defimport/internal/application/dto"
	apperrors "github.com/reglet-dev/defimport/internal/application/errors"
	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
	"github.com/reglet-dev/defimport/internal/domain/services"
)

// DefinitionPersister writes one affected definition: its raw content,
// then its compiled form when the revision engine says it changed.
//
// Renames delete the previous content row in an independent, immediately
// committed transaction, because the new row would otherwise collide with
// it, and register a compensating re-insert that runs if the surrounding
// transaction later rolls back.
type DefinitionPersister struct {
	contents    repositories.DefinitionContentRepository
	definitions repositories.DefinitionRepository
	tx          ports.TransactionManager
	revisions   *services.RevisionEngine
	now         func() time.Time
	logger      *slog.Logger
}

// NewDefinitionPersister creates a new persistence coordinator.
func NewDefinitionPersister(
	contents repositories.DefinitionContentRepository,
	definitions repositories.DefinitionRepository,
	tx ports.TransactionManager,
	revisions *services.RevisionEngine,
	logger *slog.Logger,
) *DefinitionPersister {
	if logger == nil {
		logger = slog.Default()
	}
	if revisions == nil {
		revisions = services.NewRevisionEngine()
	}
	return &DefinitionPersister{
		contents:    contents,
		definitions: definitions,
		tx:          tx,
		revisions:   revisions,
		now:         time.Now,
		logger:      logger,
	}
}

// Persist writes def and reports what happened. def itself is not modified.
func (p *DefinitionPersister) Persist(ctx context.Context, def *entities.Definition) (dto.PersistOutcome, error) {
	outcome := dto.PersistOutcome{DefinitionID: def.Identifier}

	if def.SourceFile != "" && def.HasSource() {
		if err := p.persistContent(ctx, def); err != nil {
			return outcome, err
		}
		if def.IsRenamed() {
			outcome.RenamedFrom = def.PreviousIdentifier
		}
	}

	existing, err := p.definitions.FindByID(ctx, def.Identifier)
	if errors.Is(err, repositories.ErrNotFound) {
		existing = nil
	} else if err != nil {
		return outcome, apperrors.NewPersistenceError(def.Identifier, "load stored definition", err)
	}

	decision := p.revisions.Reconcile(def, existing)
	if decision.Skip {
		p.logger.Debug("definition unchanged", "definition", def.Identifier, "revision", decision.Revision)
		outcome.Action = dto.ActionSkipped
		outcome.Revision = decision.Revision
		return outcome, nil
	}

	if existing != nil && p.logger.Enabled(ctx, slog.LevelDebug) {
		p.logger.Debug("definition changed", "definition", def.Identifier, "diff", p.revisions.Diff(existing, def))
	}

	toSave := services.DeepCopyDefinition(def)
	toSave.StampRevision(decision.Revision)
	toSave.ModifiedOn = p.now().UTC()
	if err := p.definitions.Save(ctx, toSave); err != nil {
		return outcome, apperrors.NewPersistenceError(def.Identifier, "save definition", err)
	}

	outcome.Revision = decision.Revision
	outcome.Action = dto.ActionUpdated
	if decision.Created {
		outcome.Action = dto.ActionCreated
	}
	p.logger.Info("definition persisted", "definition", def.Identifier, "revision", decision.Revision, "action", outcome.Action)
	return outcome, nil
}

// persistContent stores the raw XML, replacing the previous row on rename.
func (p *DefinitionPersister) persistContent(ctx context.Context, def *entities.Definition) error {
	if def.IsRenamed() {
		if err := p.removeRenamedContent(ctx, def); err != nil {
			return err
		}
	}

	content := entities.DefinitionContent{
		Identifier: def.Identifier,
		FileName:   def.SourceFile,
		Content:    def.SourceContent,
	}
	if err := p.contents.Save(ctx, content); err != nil {
		return apperrors.NewPersistenceError(def.Identifier, "save content", err)
	}
	return nil
}

func (p *DefinitionPersister) removeRenamedContent(ctx context.Context, def *entities.Definition) error {
	previous, err := p.contents.FindByID(ctx, def.PreviousIdentifier)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil
	}
	if err != nil {
		return apperrors.NewPersistenceError(def.PreviousIdentifier, "load renamed content", err)
	}

	removed := *previous
	err = p.tx.InNewTransaction(ctx, func(ctx context.Context) error {
		return p.contents.Delete(ctx, removed.Identifier)
	})
	if err != nil {
		return apperrors.NewPersistenceError(removed.Identifier, "delete renamed content", err)
	}

	err = p.tx.OnRollback(ctx, func(ctx context.Context) error {
		p.logger.Warn("restoring renamed definition content", "definition", removed.Identifier, "file", removed.FileName)
		return p.contents.Save(ctx, removed)
	})
	if err != nil {
		return apperrors.NewPersistenceError(removed.Identifier, "register content restore", err)
	}

	p.logger.Info("definition renamed", "definition", def.Identifier, "previous", removed.Identifier)
	return nil
}
