// Package services contains domain services for the definition model.
// These are stateless services that encapsulate business logic.
package services

import (
	"maps"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// ===== DEEP COPY UTILITIES =====
//
// These functions provide deep copying of definition structures.
// They ensure immutability by creating independent copies that don't share references.
// Used by HierarchyCompiler and DefinitionMerger.

// DeepCopyDefinition creates a complete deep copy of a definition,
// including nested sub-definitions.
func DeepCopyDefinition(original *entities.Definition) *entities.Definition {
	if original == nil {
		return nil
	}

	cp := *original
	cp.Fields = CopyFields(original.Fields)
	cp.Regions = CopyRegions(original.Regions)
	cp.Transitions = CopyTransitions(original.Transitions)
	cp.AllowedChildren = CopyAllowedChildren(original.AllowedChildren)
	if original.SubDefinitions != nil {
		cp.SubDefinitions = make([]*entities.Definition, len(original.SubDefinitions))
		for i, sub := range original.SubDefinitions {
			cp.SubDefinitions[i] = DeepCopyDefinition(sub)
		}
	}
	return &cp
}

// CopyStringSlice creates a deep copy of a string slice.
func CopyStringSlice(src []string) []string {
	if src == nil {
		return nil
	}
	dst := make([]string, len(src))
	copy(dst, src)
	return dst
}

// CopyField creates a deep copy of a single field.
func CopyField(src entities.Field) entities.Field {
	dst := src
	if src.Mandatory != nil {
		v := *src.Mandatory
		dst.Mandatory = &v
	}
	dst.Conditions = CopyConditions(src.Conditions)
	return dst
}

// CopyFields creates a deep copy of a fields slice.
func CopyFields(src []entities.Field) []entities.Field {
	if src == nil {
		return nil
	}
	dst := make([]entities.Field, len(src))
	for i, f := range src {
		dst[i] = CopyField(f)
	}
	return dst
}

// CopyConditions creates a copy of a conditions slice (conditions are plain values).
func CopyConditions(src []entities.Condition) []entities.Condition {
	if src == nil {
		return nil
	}
	dst := make([]entities.Condition, len(src))
	copy(dst, src)
	return dst
}

// CopyRegions creates a deep copy of a regions slice.
func CopyRegions(src []entities.Region) []entities.Region {
	if src == nil {
		return nil
	}
	dst := make([]entities.Region, len(src))
	for i, r := range src {
		dst[i] = r
		dst[i].Fields = CopyFields(r.Fields)
	}
	return dst
}

// CopyTransitions creates a deep copy of a transitions slice.
func CopyTransitions(src []entities.Transition) []entities.Transition {
	if src == nil {
		return nil
	}
	dst := make([]entities.Transition, len(src))
	for i, t := range src {
		dst[i] = t
		dst[i].Fields = CopyFields(t.Fields)
	}
	return dst
}

// CopyAllowedChildren creates a copy of an allowed children slice.
func CopyAllowedChildren(src []entities.AllowedChild) []entities.AllowedChild {
	if src == nil {
		return nil
	}
	dst := make([]entities.AllowedChild, len(src))
	copy(dst, src)
	return dst
}

// CopyLabels creates a deep copy of a labels slice.
func CopyLabels(src []entities.Label) []entities.Label {
	if src == nil {
		return nil
	}
	dst := make([]entities.Label, len(src))
	for i, l := range src {
		dst[i] = l
		dst[i].Values = maps.Clone(l.Values)
	}
	return dst
}

// CopyFilters creates a deep copy of a filters slice.
func CopyFilters(src []entities.Filter) []entities.Filter {
	if src == nil {
		return nil
	}
	dst := make([]entities.Filter, len(src))
	for i, f := range src {
		dst[i] = f
		dst[i].Values = CopyStringSlice(f.Values)
	}
	return dst
}
