package services

import (
	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// AffectedResolver selects the compiled definitions that need persisting.
//
// A definition is affected when its own file was part of the import, when
// any ancestor's file was, or when one of its sub-definitions has such an
// ancestor. Everything else was compiled only so that
// descendants could see an up-to-date merged view.
type AffectedResolver struct{}

// NewAffectedResolver creates a new affected-set resolver.
func NewAffectedResolver() *AffectedResolver {
	return &AffectedResolver{}
}

// Affected filters compiled down to the affected definitions, preserving
// order. The input is not modified.
func (r *AffectedResolver) Affected(compiled []*entities.Definition) []*entities.Definition {
	index := newHierarchyIndex(compiled)

	var out []*entities.Definition
	for _, def := range compiled {
		if def != nil && r.isAffected(index, def) {
			out = append(out, def)
		}
	}
	return out
}

// isAffected reports whether def or any of its sub-definitions inherits
// from a definition whose file was part of the import.
func (r *AffectedResolver) isAffected(index hierarchyIndex, def *entities.Definition) bool {
	if def.HasSource() {
		return true
	}
	for _, d := range flatten([]*entities.Definition{def}) {
		if r.reachesSource(index, d) {
			return true
		}
	}
	return false
}

// reachesSource walks the parent chain of def looking for new source
// content. The walk stops at the first identifier missing from the index
// and never revisits a node.
func (r *AffectedResolver) reachesSource(index hierarchyIndex, def *entities.Definition) bool {
	visited := map[string]bool{def.Identifier: true}
	parentID := def.ParentID
	for parentID != "" && !visited[parentID] {
		entry, ok := index[parentID]
		if !ok {
			return false
		}
		if entry.hasSource() {
			return true
		}
		visited[parentID] = true
		parentID = entry.def.ParentID
	}
	return false
}
