package services

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// InitialRevision is assigned to a definition persisted for the first time.
const InitialRevision int64 = 1

// Decision is the outcome of reconciling a compiled definition against
// the stored one.
type Decision struct {
	// Skip is true when the stored definition is structurally equal.
	Skip bool
	// Revision is the revision to persist with when Skip is false.
	Revision int64
	// Created is true when nothing was stored under the identifier.
	Created bool
}

// RevisionEngine decides whether a compiled definition warrants a write.
//
// Equality is structural: fields, regions and transitions are compared in
// declaration order because order drives display; allowed children are
// compared as a set. Label and filter references are compared by
// identifier only. Revisions, timestamps, source markers and the rename
// marker are ignored.
type RevisionEngine struct {
	opts cmp.Options
}

// NewRevisionEngine creates a new diff and revision engine.
func NewRevisionEngine() *RevisionEngine {
	return &RevisionEngine{
		opts: cmp.Options{
			cmpopts.IgnoreFields(entities.Definition{},
				"Revision", "ModifiedOn", "SourceFile", "SourceContent", "PreviousIdentifier"),
			cmpopts.IgnoreFields(entities.Field{}, "Revision"),
			cmpopts.SortSlices(func(a, b entities.AllowedChild) bool {
				if a.Type != b.Type {
					return a.Type < b.Type
				}
				return a.ID < b.ID
			}),
			cmpopts.EquateEmpty(),
		},
	}
}

// Reconcile compares affected with existing, which is nil for a create.
func (e *RevisionEngine) Reconcile(affected, existing *entities.Definition) Decision {
	if existing == nil {
		revision := affected.Revision
		if revision < InitialRevision {
			revision = InitialRevision
		}
		return Decision{Revision: revision, Created: true}
	}

	if e.Equal(affected, existing) {
		return Decision{Skip: true, Revision: existing.Revision}
	}
	return Decision{Revision: existing.Revision + 1}
}

// Equal reports whether two compiled definitions are structurally equal.
func (e *RevisionEngine) Equal(a, b *entities.Definition) bool {
	return cmp.Equal(a, b, e.opts)
}

// Diff returns a human-readable diff between two definitions, empty when
// they are equal. Used for debug logging.
func (e *RevisionEngine) Diff(existing, updated *entities.Definition) string {
	return cmp.Diff(existing, updated, e.opts)
}
