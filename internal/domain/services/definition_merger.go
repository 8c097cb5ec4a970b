package services

import (
	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// DefinitionMerger applies a definition onto an accumulated ancestor view.
// This is a DOMAIN SERVICE because merge semantics are business rules.
//
// Merge Semantics:
//   - Identity (identifier, parent, revision, source): always the overlay's
//   - Type: overlay wins, fallback to base if empty
//   - Abstract: never inherited
//   - Fields: merge by name, attribute-level (unset overlay attributes inherit)
//   - Fields may move between the top level and regions; the overlay's
//     placement wins
//   - Regions, Transitions: merge by ID, overlay attributes win when set
//   - AllowedChildren: replaced when the overlay declares any
//   - SubDefinitions: never inherited (compiled on their own)
//
// The Override flag on a field is carried along but does not change
// precedence: the overlay always wins.
type DefinitionMerger struct{}

// NewDefinitionMerger creates a new definition merger service.
func NewDefinitionMerger() *DefinitionMerger {
	return &DefinitionMerger{}
}

// MergeChain applies the chain root-first onto an empty accumulator.
// The last element is the definition being compiled.
// Returns a NEW definition (does not mutate inputs).
func (m *DefinitionMerger) MergeChain(chain []*entities.Definition) *entities.Definition {
	acc := &entities.Definition{}
	for _, def := range chain {
		m.mergeInto(acc, def)
	}
	return acc
}

// Merge combines two definitions with overlay winning on conflicts.
// Returns a NEW definition (does not mutate inputs).
func (m *DefinitionMerger) Merge(base, overlay *entities.Definition) *entities.Definition {
	acc := DeepCopyDefinition(base)
	m.mergeInto(acc, overlay)
	return acc
}

// Finalize drops deleted fields and disabled regions and transitions.
// It runs once on the fully merged view so that a descendant can still
// re-declare something an ancestor removed.
func (m *DefinitionMerger) Finalize(def *entities.Definition) {
	def.Fields = pruneFields(def.Fields)

	regions := def.Regions[:0]
	for _, r := range def.Regions {
		if r.DisplayType.IsDisabled() {
			continue
		}
		r.Fields = pruneFields(r.Fields)
		regions = append(regions, r)
	}
	def.Regions = nilIfEmpty(regions)

	transitions := def.Transitions[:0]
	for _, t := range def.Transitions {
		if t.DisplayType.IsDisabled() {
			continue
		}
		t.Fields = pruneFields(t.Fields)
		transitions = append(transitions, t)
	}
	def.Transitions = nilIfEmpty(transitions)
}

// mergeInto merges overlay onto acc (mutates acc).
func (m *DefinitionMerger) mergeInto(acc, overlay *entities.Definition) {
	acc.Identifier = overlay.Identifier
	acc.ParentID = overlay.ParentID
	acc.PreviousIdentifier = overlay.PreviousIdentifier
	acc.Revision = overlay.Revision
	acc.SourceFile = overlay.SourceFile
	acc.SourceContent = overlay.SourceContent
	acc.ModifiedOn = overlay.ModifiedOn
	acc.Abstract = overlay.Abstract
	if overlay.Type != "" {
		acc.Type = overlay.Type
	}

	// Regions must exist before fields can be placed into them
	acc.Regions = m.mergeRegions(acc.Regions, overlay.Regions)
	for _, f := range overlay.Fields {
		m.placeField(acc, "", f)
	}
	for _, r := range overlay.Regions {
		for _, f := range r.Fields {
			m.placeField(acc, r.ID, f)
		}
	}

	acc.Transitions = m.mergeTransitions(acc.Transitions, overlay.Transitions)

	if len(overlay.AllowedChildren) > 0 {
		acc.AllowedChildren = CopyAllowedChildren(overlay.AllowedChildren)
	}

	acc.SubDefinitions = nil
}

// placeField merges f into acc at the given location ("" for top level).
// A field found elsewhere is merged and moved; a new field is appended.
func (m *DefinitionMerger) placeField(acc *entities.Definition, regionID string, f entities.Field) {
	target := fieldsAt(acc, regionID)
	if target == nil {
		return
	}

	current, at, idx := locateField(acc, f.Name)
	if current == nil {
		*target = append(*target, CopyField(f))
		return
	}

	merged := m.mergeField(*current, f)
	if at == regionID {
		(*target)[idx] = merged
		return
	}

	src := fieldsAt(acc, at)
	*src = append((*src)[:idx], (*src)[idx+1:]...)
	// the region slice header may have moved; look the target up again
	target = fieldsAt(acc, regionID)
	*target = append(*target, merged)
}

// mergeField merges field attributes, overlay winning when set.
func (m *DefinitionMerger) mergeField(base, overlay entities.Field) entities.Field {
	result := CopyField(base)
	if overlay.Type != "" {
		result.Type = overlay.Type
	}
	if overlay.DisplayType.IsSet() {
		result.DisplayType = overlay.DisplayType
	}
	if overlay.URI != "" {
		result.URI = overlay.URI
	}
	if overlay.LabelID != "" {
		result.LabelID = overlay.LabelID
	}
	if overlay.Value != "" {
		result.Value = overlay.Value
	}
	if overlay.Mandatory != nil {
		v := *overlay.Mandatory
		result.Mandatory = &v
	}
	result.Override = overlay.Override
	result.Conditions = m.mergeConditions(result.Conditions, overlay.Conditions)
	result.Revision = overlay.Revision
	return result
}

// mergeFieldList merges two field lists by name.
// Order is preserved: base fields first, then new overlay fields.
func (m *DefinitionMerger) mergeFieldList(base, overlay []entities.Field) []entities.Field {
	result := CopyFields(base)
	for _, f := range overlay {
		found := false
		for i := range result {
			if result[i].Name == f.Name {
				result[i] = m.mergeField(result[i], f)
				found = true
				break
			}
		}
		if !found {
			result = append(result, CopyField(f))
		}
	}
	return result
}

// mergeConditions merges conditions by ID, overlay replacing whole entries.
func (m *DefinitionMerger) mergeConditions(base, overlay []entities.Condition) []entities.Condition {
	if len(overlay) == 0 {
		return base
	}
	result := CopyConditions(base)
	for _, c := range overlay {
		found := false
		for i := range result {
			if result[i].ID == c.ID {
				result[i] = c
				found = true
				break
			}
		}
		if !found {
			result = append(result, c)
		}
	}
	return result
}

// mergeRegions merges region attributes by ID. Fields are placed separately.
func (m *DefinitionMerger) mergeRegions(base, overlay []entities.Region) []entities.Region {
	result := base
	for _, r := range overlay {
		found := false
		for i := range result {
			if result[i].ID != r.ID {
				continue
			}
			if r.DisplayType.IsSet() {
				result[i].DisplayType = r.DisplayType
			}
			if r.LabelID != "" {
				result[i].LabelID = r.LabelID
			}
			found = true
			break
		}
		if !found {
			result = append(result, entities.Region{
				ID:          r.ID,
				DisplayType: r.DisplayType,
				LabelID:     r.LabelID,
			})
		}
	}
	return result
}

// mergeTransitions merges transitions by ID with attribute-level precedence.
func (m *DefinitionMerger) mergeTransitions(base, overlay []entities.Transition) []entities.Transition {
	result := base
	for _, t := range overlay {
		found := false
		for i := range result {
			if result[i].ID != t.ID {
				continue
			}
			if t.LabelID != "" {
				result[i].LabelID = t.LabelID
			}
			if t.EventID != "" {
				result[i].EventID = t.EventID
			}
			if t.Purpose != "" {
				result[i].Purpose = t.Purpose
			}
			if t.DisplayType.IsSet() {
				result[i].DisplayType = t.DisplayType
			}
			result[i].Fields = m.mergeFieldList(result[i].Fields, t.Fields)
			found = true
			break
		}
		if !found {
			cp := t
			cp.Fields = CopyFields(t.Fields)
			result = append(result, cp)
		}
	}
	return result
}

// fieldsAt returns the field list for a location ("" for top level).
func fieldsAt(def *entities.Definition, regionID string) *[]entities.Field {
	if regionID == "" {
		return &def.Fields
	}
	for i := range def.Regions {
		if def.Regions[i].ID == regionID {
			return &def.Regions[i].Fields
		}
	}
	return nil
}

// locateField finds a field by name, returning it with its location and index.
func locateField(def *entities.Definition, name string) (*entities.Field, string, int) {
	for i := range def.Fields {
		if def.Fields[i].Name == name {
			return &def.Fields[i], "", i
		}
	}
	for r := range def.Regions {
		for i := range def.Regions[r].Fields {
			if def.Regions[r].Fields[i].Name == name {
				return &def.Regions[r].Fields[i], def.Regions[r].ID, i
			}
		}
	}
	return nil, "", -1
}

func pruneFields(fields []entities.Field) []entities.Field {
	out := fields[:0]
	for _, f := range fields {
		if !f.DisplayType.IsDeleted() {
			out = append(out, f)
		}
	}
	return nilIfEmpty(out)
}

func nilIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
