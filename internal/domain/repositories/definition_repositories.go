// Package repositories defines interfaces for domain persistence.
package repositories

import (
	"context"
	"errors"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// ErrNotFound is returned by Find methods when nothing is stored under the key.
var ErrNotFound = errors.New("not found")

// DefinitionContentRepository stores the raw XML of top-level definitions.
type DefinitionContentRepository interface {
	// Save inserts or replaces the row keyed by content.Identifier.
	Save(ctx context.Context, content entities.DefinitionContent) error

	// FindByID retrieves a row by identifier.
	FindByID(ctx context.Context, id string) (*entities.DefinitionContent, error)

	// FindByFileName retrieves the row stored for a file name.
	FindByFileName(ctx context.Context, fileName string) (*entities.DefinitionContent, error)

	// FindAll returns every row ordered by identifier.
	FindAll(ctx context.Context) ([]entities.DefinitionContent, error)

	// Delete removes the row keyed by id. Deleting a missing row is not an error.
	Delete(ctx context.Context, id string) error
}

// DefinitionRepository stores compiled definitions.
type DefinitionRepository interface {
	// Save inserts or replaces the compiled definition.
	Save(ctx context.Context, def *entities.Definition) error

	// FindByID retrieves a compiled definition by identifier.
	FindByID(ctx context.Context, id string) (*entities.Definition, error)

	// FindAll returns every compiled definition ordered by identifier.
	FindAll(ctx context.Context) ([]*entities.Definition, error)
}

// LabelRepository stores labels declared in definition files.
type LabelRepository interface {
	SaveAll(ctx context.Context, labels []entities.Label) error
	FindByID(ctx context.Context, id string) (*entities.Label, error)
}

// FilterRepository stores filters declared in definition files.
type FilterRepository interface {
	SaveAll(ctx context.Context, filters []entities.Filter) error
	FindByID(ctx context.Context, id string) (*entities.Filter, error)
}
