package memory

import (
	"context"
	"fmt"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
	"github.com/reglet-dev/defimport/internal/domain/services"
)

// Ensure interface compliance
var (
	_ repositories.DefinitionContentRepository = (*DefinitionContentRepository)(nil)
	_ repositories.DefinitionRepository        = (*DefinitionRepository)(nil)
	_ repositories.LabelRepository             = (*LabelRepository)(nil)
	_ repositories.FilterRepository            = (*FilterRepository)(nil)
)

// DefinitionContentRepository is an in-memory implementation of
// repositories.DefinitionContentRepository.
type DefinitionContentRepository struct {
	store *Store
}

// NewDefinitionContentRepository creates a repository backed by store.
func NewDefinitionContentRepository(store *Store) *DefinitionContentRepository {
	return &DefinitionContentRepository{store: store}
}

// Save inserts or replaces the content row.
func (r *DefinitionContentRepository) Save(ctx context.Context, content entities.DefinitionContent) error {
	if content.Identifier == "" {
		return fmt.Errorf("definition content has no identifier")
	}
	r.store.put(ctx, tableContents, content.Identifier, content)
	return nil
}

// FindByID retrieves a content row by identifier.
func (r *DefinitionContentRepository) FindByID(ctx context.Context, id string) (*entities.DefinitionContent, error) {
	v, ok := r.store.get(ctx, tableContents, id)
	if !ok {
		return nil, fmt.Errorf("definition content %s: %w", id, repositories.ErrNotFound)
	}
	content := v.(entities.DefinitionContent)
	return &content, nil
}

// FindByFileName retrieves the content row stored for fileName.
func (r *DefinitionContentRepository) FindByFileName(ctx context.Context, fileName string) (*entities.DefinitionContent, error) {
	for _, v := range r.store.all(ctx, tableContents) {
		content := v.(entities.DefinitionContent)
		if content.FileName == fileName {
			return &content, nil
		}
	}
	return nil, fmt.Errorf("definition content for file %s: %w", fileName, repositories.ErrNotFound)
}

// FindAll returns every content row ordered by identifier.
func (r *DefinitionContentRepository) FindAll(ctx context.Context) ([]entities.DefinitionContent, error) {
	rows := r.store.all(ctx, tableContents)
	out := make([]entities.DefinitionContent, 0, len(rows))
	for _, v := range rows {
		out = append(out, v.(entities.DefinitionContent))
	}
	return out, nil
}

// Delete removes the content row for id.
func (r *DefinitionContentRepository) Delete(ctx context.Context, id string) error {
	r.store.remove(ctx, tableContents, id)
	return nil
}

// DefinitionRepository is an in-memory implementation of
// repositories.DefinitionRepository. Definitions are copied on the way in
// and out so callers cannot modify stored state.
type DefinitionRepository struct {
	store *Store
}

// NewDefinitionRepository creates a repository backed by store.
func NewDefinitionRepository(store *Store) *DefinitionRepository {
	return &DefinitionRepository{store: store}
}

// Save inserts or replaces the compiled definition.
func (r *DefinitionRepository) Save(ctx context.Context, def *entities.Definition) error {
	if def == nil || def.Identifier == "" {
		return fmt.Errorf("definition has no identifier")
	}
	r.store.put(ctx, tableDefinitions, def.Identifier, services.DeepCopyDefinition(def))
	return nil
}

// FindByID retrieves a compiled definition by identifier.
func (r *DefinitionRepository) FindByID(ctx context.Context, id string) (*entities.Definition, error) {
	v, ok := r.store.get(ctx, tableDefinitions, id)
	if !ok {
		return nil, fmt.Errorf("definition %s: %w", id, repositories.ErrNotFound)
	}
	return services.DeepCopyDefinition(v.(*entities.Definition)), nil
}

// FindAll returns every compiled definition ordered by identifier.
func (r *DefinitionRepository) FindAll(ctx context.Context) ([]*entities.Definition, error) {
	rows := r.store.all(ctx, tableDefinitions)
	out := make([]*entities.Definition, 0, len(rows))
	for _, v := range rows {
		out = append(out, services.DeepCopyDefinition(v.(*entities.Definition)))
	}
	return out, nil
}

// LabelRepository is an in-memory implementation of repositories.LabelRepository.
type LabelRepository struct {
	store *Store
}

// NewLabelRepository creates a repository backed by store.
func NewLabelRepository(store *Store) *LabelRepository {
	return &LabelRepository{store: store}
}

// SaveAll inserts or replaces every label.
func (r *LabelRepository) SaveAll(ctx context.Context, labels []entities.Label) error {
	for _, l := range services.CopyLabels(labels) {
		r.store.put(ctx, tableLabels, l.ID, l)
	}
	return nil
}

// FindByID retrieves a label by identifier.
func (r *LabelRepository) FindByID(ctx context.Context, id string) (*entities.Label, error) {
	v, ok := r.store.get(ctx, tableLabels, id)
	if !ok {
		return nil, fmt.Errorf("label %s: %w", id, repositories.ErrNotFound)
	}
	label := services.CopyLabels([]entities.Label{v.(entities.Label)})[0]
	return &label, nil
}

// FilterRepository is an in-memory implementation of repositories.FilterRepository.
type FilterRepository struct {
	store *Store
}

// NewFilterRepository creates a repository backed by store.
func NewFilterRepository(store *Store) *FilterRepository {
	return &FilterRepository{store: store}
}

// SaveAll inserts or replaces every filter.
func (r *FilterRepository) SaveAll(ctx context.Context, filters []entities.Filter) error {
	for _, f := range services.CopyFilters(filters) {
		r.store.put(ctx, tableFilters, f.ID, f)
	}
	return nil
}

// FindByID retrieves a filter by identifier.
func (r *FilterRepository) FindByID(ctx context.Context, id string) (*entities.Filter, error) {
	v, ok := r.store.get(ctx, tableFilters, id)
	if !ok {
		return nil, fmt.Errorf("filter %s: %w", id, repositories.ErrNotFound)
	}
	filter := services.CopyFilters([]entities.Filter{v.(entities.Filter)})[0]
	return &filter, nil
}
