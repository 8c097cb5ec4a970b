package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/repositories"
)

// Ensure interface compliance
var (
	_ repositories.DefinitionContentRepository = (*DefinitionContentRepository)(nil)
	_ repositories.DefinitionRepository        = (*DefinitionRepository)(nil)
	_ repositories.LabelRepository             = (*LabelRepository)(nil)
	_ repositories.FilterRepository            = (*FilterRepository)(nil)
)

// DefinitionContentRepository stores raw definition XML in SQLite.
type DefinitionContentRepository struct {
	store *Store
}

// NewDefinitionContentRepository creates a repository backed by store.
func NewDefinitionContentRepository(store *Store) *DefinitionContentRepository {
	return &DefinitionContentRepository{store: store}
}

// Save inserts or replaces the content row.
func (r *DefinitionContentRepository) Save(ctx context.Context, content entities.DefinitionContent) error {
	_, err := r.store.q(ctx).ExecContext(ctx,
		`INSERT OR REPLACE INTO definition_content (identifier, file_name, content) VALUES (?, ?, ?)`,
		content.Identifier, content.FileName, content.Content)
	if err != nil {
		return fmt.Errorf("save definition content %s: %w", content.Identifier, err)
	}
	return nil
}

// FindByID retrieves a content row by identifier.
func (r *DefinitionContentRepository) FindByID(ctx context.Context, id string) (*entities.DefinitionContent, error) {
	return r.findOne(ctx, `SELECT identifier, file_name, content FROM definition_content WHERE identifier = ?`, id)
}

// FindByFileName retrieves the content row stored for fileName.
func (r *DefinitionContentRepository) FindByFileName(ctx context.Context, fileName string) (*entities.DefinitionContent, error) {
	return r.findOne(ctx,
		`SELECT identifier, file_name, content FROM definition_content WHERE file_name = ? ORDER BY identifier LIMIT 1`,
		fileName)
}

func (r *DefinitionContentRepository) findOne(ctx context.Context, query, arg string) (*entities.DefinitionContent, error) {
	var c entities.DefinitionContent
	err := r.store.q(ctx).QueryRowContext(ctx, query, arg).Scan(&c.Identifier, &c.FileName, &c.Content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("definition content %s: %w", arg, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load definition content %s: %w", arg, err)
	}
	return &c, nil
}

// FindAll returns every content row ordered by identifier.
func (r *DefinitionContentRepository) FindAll(ctx context.Context) ([]entities.DefinitionContent, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx,
		`SELECT identifier, file_name, content FROM definition_content ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("list definition content: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []entities.DefinitionContent
	for rows.Next() {
		var c entities.DefinitionContent
		if err := rows.Scan(&c.Identifier, &c.FileName, &c.Content); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the content row for id.
func (r *DefinitionContentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.store.q(ctx).ExecContext(ctx, `DELETE FROM definition_content WHERE identifier = ?`, id); err != nil {
		return fmt.Errorf("delete definition content %s: %w", id, err)
	}
	return nil
}

// DefinitionRepository stores compiled definitions as JSON documents.
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
	body, err := json.Marshal(def)
	if err != nil {
		return fmt.Errorf("encode definition %s: %w", def.Identifier, err)
	}

	_, err = r.store.q(ctx).ExecContext(ctx,
		`INSERT OR REPLACE INTO definition (identifier, parent_id, type, is_abstract, revision, modified_on, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		def.Identifier, def.ParentID, def.Type, def.Abstract, def.Revision,
		def.ModifiedOn.UTC().Format(time.RFC3339Nano), string(body))
	if err != nil {
		return fmt.Errorf("save definition %s: %w", def.Identifier, err)
	}
	return nil
}

// FindByID retrieves a compiled definition by identifier.
func (r *DefinitionRepository) FindByID(ctx context.Context, id string) (*entities.Definition, error) {
	var body string
	err := r.store.q(ctx).QueryRowContext(ctx, `SELECT body FROM definition WHERE identifier = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("definition %s: %w", id, repositories.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load definition %s: %w", id, err)
	}
	return decodeDefinition(id, body)
}

// FindAll returns every compiled definition ordered by identifier.
func (r *DefinitionRepository) FindAll(ctx context.Context) ([]*entities.Definition, error) {
	rows, err := r.store.q(ctx).QueryContext(ctx, `SELECT identifier, body FROM definition ORDER BY identifier`)
	if err != nil {
		return nil, fmt.Errorf("list definitions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*entities.Definition
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, err
		}
		def, err := decodeDefinition(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, def)
	}
	return out, rows.Err()
}

func decodeDefinition(id, body string) (*entities.Definition, error) {
	var def entities.Definition
	if err := json.Unmarshal([]byte(body), &def); err != nil {
		return nil, fmt.Errorf("decode definition %s: %w", id, err)
	}
	return &def, nil
}

// LabelRepository stores labels in SQLite.
type LabelRepository struct {
	store *Store
}

// NewLabelRepository creates a repository backed by store.
func NewLabelRepository(store *Store) *LabelRepository {
	return &LabelRepository{store: store}
}

// SaveAll inserts or replaces every label.
func (r *LabelRepository) SaveAll(ctx context.Context, labels []entities.Label) error {
	for _, l := range labels {
		if err := saveDocument(ctx, r.store.q(ctx), "label", l.ID, l.DefinedIn, l); err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a label by identifier.
func (r *LabelRepository) FindByID(ctx context.Context, id string) (*entities.Label, error) {
	var l entities.Label
	if err := loadDocument(ctx, r.store.q(ctx), "label", id, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// FilterRepository stores filters in SQLite.
type FilterRepository struct {
	store *Store
}

// NewFilterRepository creates a repository backed by store.
func NewFilterRepository(store *Store) *FilterRepository {
	return &FilterRepository{store: store}
}

// SaveAll inserts or replaces every filter.
func (r *FilterRepository) SaveAll(ctx context.Context, filters []entities.Filter) error {
	for _, f := range filters {
		if err := saveDocument(ctx, r.store.q(ctx), "filter", f.ID, f.DefinedIn, f); err != nil {
			return err
		}
	}
	return nil
}

// FindByID retrieves a filter by identifier.
func (r *FilterRepository) FindByID(ctx context.Context, id string) (*entities.Filter, error) {
	var f entities.Filter
	if err := loadDocument(ctx, r.store.q(ctx), "filter", id, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

// saveDocument upserts a JSON document into one of the id/defined_in/body
// tables. table is never user input.
func saveDocument(ctx context.Context, q querier, table, id, definedIn string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s %s: %w", table, id, err)
	}
	_, err = q.ExecContext(ctx,
		`INSERT OR REPLACE INTO `+table+` (id, defined_in, body) VALUES (?, ?, ?)`,
		id, definedIn, string(body))
	if err != nil {
		return fmt.Errorf("save %s %s: %w", table, id, err)
	}
	return nil
}

func loadDocument(ctx context.Context, q querier, table, id string, v any) error {
	var body string
	err := q.QueryRowContext(ctx, `SELECT body FROM `+table+` WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", table, id, repositories.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("load %s %s: %w", table, id, err)
	}
	if err := json.Unmarshal([]byte(body), v); err != nil {
		return fmt.Errorf("decode %s %s: %w", table, id, err)
	}
	return nil
}
