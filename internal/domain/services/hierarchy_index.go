package services

import (
	"slices"
	"strings"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// indexEntry is a definition in the hierarchy arena together with the
// top-level definition whose file declared it.
type indexEntry struct {
	def    *entities.Definition
	holder *entities.Definition
}

// hasSource reports whether the entry's file was part of the current import.
// Sub-definitions inherit the marker of the file that holds them.
func (e indexEntry) hasSource() bool {
	return e.def.HasSource() || (e.holder != nil && e.holder.HasSource())
}

// hierarchyIndex is an arena of definitions keyed by identifier. Parent
// chains are walked through key lookups, never through pointers.
// Sub-definitions share the index with top-level definitions; the first
// definition registered under an identifier wins.
type hierarchyIndex map[string]indexEntry

func newHierarchyIndex(defs []*entities.Definition) hierarchyIndex {
	idx := make(hierarchyIndex, len(defs))
	for _, def := range defs {
		idx.add(def, def)
	}
	return idx
}

func (idx hierarchyIndex) add(def, holder *entities.Definition) {
	if def == nil {
		return
	}
	if _, exists := idx[def.Identifier]; !exists {
		idx[def.Identifier] = indexEntry{def: def, holder: holder}
	}
	for _, sub := range def.SubDefinitions {
		idx.add(sub, holder)
	}
}

// ancestors returns the parent chain of def, nearest first. The walk is
// bounded by a visited set: a revisit yields a HierarchyCycleError whose
// path ends with the repeated identifier, and an unresolvable reference
// yields a MissingParentError.
func (idx hierarchyIndex) ancestors(def *entities.Definition) ([]*entities.Definition, error) {
	visited := map[string]bool{def.Identifier: true}
	path := []string{def.Identifier}
	var chain []*entities.Definition

	parentID := def.ParentID
	for parentID != "" {
		if visited[parentID] {
			return nil, &entities.HierarchyCycleError{
				DefinitionID: def.Identifier,
				Path:         append(path, parentID),
			}
		}
		entry, ok := idx[parentID]
		if !ok {
			return nil, &entities.MissingParentError{
				DefinitionID: path[len(path)-1],
				ParentID:     parentID,
			}
		}
		visited[parentID] = true
		path = append(path, parentID)
		chain = append(chain, entry.def)
		parentID = entry.def.ParentID
	}
	return chain, nil
}

// flatten lists defs and all nested sub-definitions, parents before children.
func flatten(defs []*entities.Definition) []*entities.Definition {
	var out []*entities.Definition
	var walk func(d *entities.Definition)
	walk = func(d *entities.Definition) {
		if d == nil {
			return
		}
		out = append(out, d)
		for _, sub := range d.SubDefinitions {
			walk(sub)
		}
	}
	for _, d := range defs {
		walk(d)
	}
	return out
}

// cycleKey identifies the loop closed by a cycle path regardless of where
// the walk entered it, so one cycle is reported once.
func cycleKey(path []string) string {
	if len(path) == 0 {
		return ""
	}
	closing := path[len(path)-1]
	start := slices.Index(path, closing)
	members := slices.Clone(path[start : len(path)-1])
	slices.Sort(members)
	return strings.Join(members, "\x00")
}
