// Package entities contains domain entities for the definition model.
// These are pure domain types with NO infrastructure dependencies.
package entities

import (
	"time"

	"github.com/reglet-dev/defimport/internal/domain/values"
)

// Definition is a schema node describing the fields, regions and transitions
// available to a class of instances. Definitions form a single-parent
// inheritance hierarchy through ParentID.
//
// Aggregate Boundary:
// - Definition is the root
// - Fields, Regions, Transitions and AllowedChildren are keyed by identifier
// - SubDefinitions are nested roots sharing the batch's hierarchy index
//
// Invariants Enforced:
// - Identifier only changes through an explicit rename (PreviousIdentifier set)
// - The parent chain is acyclic and every parent resolves
type Definition struct {
	Identifier         string         `json:"identifier"`
	ParentID           string         `json:"parent_id,omitempty"`
	PreviousIdentifier string         `json:"-"`
	Revision           int64          `json:"revision"`
	Type               string         `json:"type,omitempty"`
	Abstract           bool           `json:"abstract,omitempty"`
	SourceFile         string         `json:"-"`
	SourceContent      string         `json:"-"`
	Fields             []Field        `json:"fields,omitempty"`
	Regions            []Region       `json:"regions,omitempty"`
	Transitions        []Transition   `json:"transitions,omitempty"`
	AllowedChildren    []AllowedChild `json:"allowed_children,omitempty"`
	SubDefinitions     []*Definition  `json:"sub_definitions,omitempty"`
	ModifiedOn         time.Time      `json:"modified_on"`
}

// Field is a single property of a definition.
type Field struct {
	Name        string             `json:"name"`
	Type        string             `json:"type,omitempty"`
	DisplayType values.DisplayType `json:"display_type,omitempty"`
	URI         string             `json:"uri,omitempty"`
	LabelID     string             `json:"label_id,omitempty"`
	Value       string             `json:"value,omitempty"`
	// Mandatory is nil when the definition does not say, so the value of
	// an ancestor's field is inherited.
	Mandatory *bool `json:"mandatory,omitempty"`
	// Override records that the author meant to replace an inherited
	// field. Merge precedence does not depend on it.
	Override   bool        `json:"override,omitempty"`
	Conditions []Condition `json:"conditions,omitempty"`
	Revision   int64       `json:"revision"`
}

// Condition is a rendering rule attached to a field.
type Condition struct {
	ID         string `json:"id"`
	RenderAs   string `json:"render_as,omitempty"`
	Expression string `json:"expression,omitempty"`
}

// Region groups fields under a heading.
type Region struct {
	ID          string             `json:"id"`
	DisplayType values.DisplayType `json:"display_type,omitempty"`
	LabelID     string             `json:"label_id,omitempty"`
	Fields      []Field            `json:"fields,omitempty"`
}

// Transition is a state change or action available on an instance.
type Transition struct {
	ID          string             `json:"id"`
	LabelID     string             `json:"label_id,omitempty"`
	EventID     string             `json:"event_id,omitempty"`
	Purpose     string             `json:"purpose,omitempty"`
	DisplayType values.DisplayType `json:"display_type,omitempty"`
	Fields      []Field            `json:"fields,omitempty"`
}

// AllowedChild names a definition that instances may contain.
type AllowedChild struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// HasSource returns true if the definition's own file was part of the
// current import.
func (d *Definition) HasSource() bool {
	return d.SourceContent != ""
}

// IsRoot returns true if the definition has no parent.
func (d *Definition) IsRoot() bool {
	return d.ParentID == ""
}

// IsRenamed returns true if a rename from PreviousIdentifier was detected.
func (d *Definition) IsRenamed() bool {
	return d.PreviousIdentifier != "" && d.PreviousIdentifier != d.Identifier
}

// EachField calls fn for every field declared on the definition, top-level
// first and then region by region, in declaration order. Transition fields
// are not visited.
func (d *Definition) EachField(fn func(f *Field)) {
	for i := range d.Fields {
		fn(&d.Fields[i])
	}
	for r := range d.Regions {
		for i := range d.Regions[r].Fields {
			fn(&d.Regions[r].Fields[i])
		}
	}
}

// FieldNames returns the names of every field visited by EachField.
func (d *Definition) FieldNames() []string {
	var names []string
	d.EachField(func(f *Field) {
		names = append(names, f.Name)
	})
	return names
}

// FindField looks up a field by name in the top-level fields and regions.
func (d *Definition) FindField(name string) *Field {
	for i := range d.Fields {
		if d.Fields[i].Name == name {
			return &d.Fields[i]
		}
	}
	for r := range d.Regions {
		for i := range d.Regions[r].Fields {
			if d.Regions[r].Fields[i].Name == name {
				return &d.Regions[r].Fields[i]
			}
		}
	}
	return nil
}

// StampRevision sets the definition revision and propagates it to every
// field's property revision, including nested sub-definitions.
func (d *Definition) StampRevision(revision int64) {
	d.Revision = revision
	stampFields(d.Fields, revision)
	for i := range d.Regions {
		stampFields(d.Regions[i].Fields, revision)
	}
	for i := range d.Transitions {
		stampFields(d.Transitions[i].Fields, revision)
	}
	for _, sub := range d.SubDefinitions {
		sub.StampRevision(revision)
	}
}

// Info returns the listing view of the definition.
func (d *Definition) Info(fileName string) DefinitionInfo {
	return DefinitionInfo{
		Identifier: d.Identifier,
		FileName:   fileName,
		Type:       d.Type,
		ParentID:   d.ParentID,
		Abstract:   d.Abstract,
		Revision:   d.Revision,
		ModifiedOn: d.ModifiedOn,
	}
}

func stampFields(fields []Field, revision int64) {
	for i := range fields {
		fields[i].Revision = revision
	}
}
