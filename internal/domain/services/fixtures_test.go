package services

import (
	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// newDef builds a definition with top-level fields whose value is the name
// suffixed with "=1".
func newDef(id, parent string, fields ...string) *entities.Definition {
	d := &entities.Definition{Identifier: id, ParentID: parent, Type: "case"}
	for _, f := range fields {
		d.Fields = append(d.Fields, entities.Field{Name: f, Type: "an..50", Value: f + "=1"})
	}
	return d
}

// withSource marks the definition as part of the current import.
func withSource(d *entities.Definition) *entities.Definition {
	d.SourceFile = d.Identifier + ".xml"
	d.SourceContent = `<definition id="` + d.Identifier + `"/>`
	return d
}

// parsed wraps definitions the way the reader does.
func parsed(defs ...*entities.Definition) []*entities.ParsedDefinition {
	out := make([]*entities.ParsedDefinition, 0, len(defs))
	for _, d := range defs {
		out = append(out, &entities.ParsedDefinition{Definition: d, FileName: d.Identifier + ".xml"})
	}
	return out
}

func ids(defs []*entities.Definition) []string {
	out := make([]string, 0, len(defs))
	for _, d := range defs {
		out = append(out, d.Identifier)
	}
	return out
}

func regionByID(d *entities.Definition, id string) *entities.Region {
	for i := range d.Regions {
		if d.Regions[i].ID == id {
			return &d.Regions[i]
		}
	}
	return nil
}

func transitionByID(d *entities.Definition, id string) *entities.Transition {
	for i := range d.Transitions {
		if d.Transitions[i].ID == id {
			return &d.Transitions[i]
		}
	}
	return nil
}

func boolPtr(b bool) *bool { return &b }
