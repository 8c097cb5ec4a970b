package entities

import "time"

// ParsedDefinition pairs a definition with the labels and filters declared
// in the same file. It lives only for the duration of a validate or import
// call.
type ParsedDefinition struct {
	Definition *Definition
	Labels     []Label
	Filters    []Filter
	// FileName is the base name of the file the definition was read from,
	// either on disk or from its stored content row.
	FileName string
}

// ID returns the identifier of the wrapped definition.
func (p *ParsedDefinition) ID() string {
	if p == nil || p.Definition == nil {
		return ""
	}
	return p.Definition.Identifier
}

// Label is a localized display string referenced by fields, regions and
// transitions.
type Label struct {
	ID        string            `json:"id" yaml:"id"`
	Values    map[string]string `json:"values" yaml:"values"`
	DefinedIn string            `json:"defined_in" yaml:"defined_in"`
}

// Filter restricts the values a coded field may take.
type Filter struct {
	ID        string   `json:"id" yaml:"id"`
	Mode      string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	Values    []string `json:"values,omitempty" yaml:"values,omitempty"`
	DefinedIn string   `json:"defined_in" yaml:"defined_in"`
}

// DefinitionContent is the raw XML stored for a top-level definition.
// Identifier is the primary key; a rename replaces the row instead of
// updating it.
type DefinitionContent struct {
	Identifier string `json:"identifier"`
	FileName   string `json:"file_name"`
	Content    string `json:"content"`
}

// DefinitionInfo is the listing view of an imported definition.
type DefinitionInfo struct {
	Identifier string    `json:"identifier" yaml:"identifier"`
	FileName   string    `json:"file_name" yaml:"file_name"`
	Type       string    `json:"type,omitempty" yaml:"type,omitempty"`
	ParentID   string    `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
	Abstract   bool      `json:"abstract" yaml:"abstract"`
	Revision   int64     `json:"revision" yaml:"revision"`
	ModifiedOn time.Time `json:"modified_on" yaml:"modified_on"`
}
