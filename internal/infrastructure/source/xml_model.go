package source

import (
	"encoding/xml"
	"strings"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/values"
)

// xmlDefinition mirrors the <definition> document element.
type xmlDefinition struct {
	XMLName         xml.Name          `xml:"definition"`
	ID              string            `xml:"id,attr"`
	Type            string            `xml:"type,attr,omitempty"`
	ParentID        string            `xml:"parentId,attr,omitempty"`
	Abstract        bool              `xml:"isAbstract,attr,omitempty"`
	Fields          []xmlField        `xml:"fields>field"`
	Regions         []xmlRegion       `xml:"regions>region"`
	Transitions     []xmlTransition   `xml:"transitions>transition"`
	AllowedChildren []xmlAllowedChild `xml:"allowedChildren>child"`
	Labels          []xmlLabel        `xml:"labels>label"`
	Filters         []xmlFilter       `xml:"filterDefinitions>filter"`
	Definitions     []xmlDefinition   `xml:"definitions>definition"`
}

type xmlField struct {
	Name        string         `xml:"name,attr"`
	Type        string         `xml:"type,attr,omitempty"`
	DisplayType string         `xml:"displayType,attr,omitempty"`
	URI         string         `xml:"uri,attr,omitempty"`
	Label       string         `xml:"label,attr,omitempty"`
	Value       string         `xml:"value,attr,omitempty"`
	Mandatory   *bool          `xml:"mandatory,attr"`
	Override    bool           `xml:"override,attr,omitempty"`
	Conditions  []xmlCondition `xml:"condition"`
}

type xmlCondition struct {
	ID         string `xml:"id,attr"`
	RenderAs   string `xml:"renderAs,attr,omitempty"`
	Expression string `xml:",chardata"`
}

type xmlRegion struct {
	ID          string     `xml:"id,attr"`
	DisplayType string     `xml:"displayType,attr,omitempty"`
	Label       string     `xml:"label,attr,omitempty"`
	Fields      []xmlField `xml:"fields>field"`
}

type xmlTransition struct {
	ID          string     `xml:"id,attr"`
	Label       string     `xml:"label,attr,omitempty"`
	EventID     string     `xml:"eventId,attr,omitempty"`
	Purpose     string     `xml:"purpose,attr,omitempty"`
	DisplayType string     `xml:"displayType,attr,omitempty"`
	Fields      []xmlField `xml:"fields>field"`
}

type xmlAllowedChild struct {
	Type string `xml:"type,attr"`
	ID   string `xml:"id,attr"`
}

type xmlLabel struct {
	ID     string          `xml:"id,attr"`
	Values []xmlLabelValue `xml:"value"`
}

type xmlLabelValue struct {
	Lang string `xml:"lang,attr"`
	Text string `xml:",chardata"`
}

type xmlFilter struct {
	ID     string `xml:"id,attr"`
	Mode   string `xml:"mode,attr,omitempty"`
	Values string `xml:",chardata"`
}

// toParsed converts the document into a parsed definition. Labels and
// filters of nested definitions are collected into the same result.
func (x *xmlDefinition) toParsed(fileName string) *entities.ParsedDefinition {
	parsed := &entities.ParsedDefinition{FileName: fileName}
	parsed.Definition = x.toDefinition(parsed)
	return parsed
}

func (x *xmlDefinition) toDefinition(parsed *entities.ParsedDefinition) *entities.Definition {
	def := &entities.Definition{
		Identifier: strings.TrimSpace(x.ID),
		ParentID:   strings.TrimSpace(x.ParentID),
		Type:       x.Type,
		Abstract:   x.Abstract,
		Fields:     toFields(x.Fields),
	}

	for _, r := range x.Regions {
		def.Regions = append(def.Regions, entities.Region{
			ID:          r.ID,
			DisplayType: values.NewDisplayType(r.DisplayType),
			LabelID:     r.Label,
			Fields:      toFields(r.Fields),
		})
	}
	for _, t := range x.Transitions {
		def.Transitions = append(def.Transitions, entities.Transition{
			ID:          t.ID,
			LabelID:     t.Label,
			EventID:     t.EventID,
			Purpose:     t.Purpose,
			DisplayType: values.NewDisplayType(t.DisplayType),
			Fields:      toFields(t.Fields),
		})
	}
	for _, c := range x.AllowedChildren {
		def.AllowedChildren = append(def.AllowedChildren, entities.AllowedChild{Type: c.Type, ID: c.ID})
	}

	for _, l := range x.Labels {
		label := entities.Label{ID: l.ID, Values: make(map[string]string, len(l.Values)), DefinedIn: def.Identifier}
		for _, v := range l.Values {
			label.Values[v.Lang] = strings.TrimSpace(v.Text)
		}
		parsed.Labels = append(parsed.Labels, label)
	}
	for _, f := range x.Filters {
		parsed.Filters = append(parsed.Filters, entities.Filter{
			ID:        f.ID,
			Mode:      f.Mode,
			Values:    splitList(f.Values),
			DefinedIn: def.Identifier,
		})
	}

	for i := range x.Definitions {
		def.SubDefinitions = append(def.SubDefinitions, x.Definitions[i].toDefinition(parsed))
	}
	return def
}

func toFields(src []xmlField) []entities.Field {
	if len(src) == 0 {
		return nil
	}
	out := make([]entities.Field, 0, len(src))
	for _, f := range src {
		field := entities.Field{
			Name:        f.Name,
			Type:        f.Type,
			DisplayType: values.NewDisplayType(f.DisplayType),
			URI:         f.URI,
			LabelID:     f.Label,
			Value:       f.Value,
			Mandatory:   f.Mandatory,
			Override:    f.Override,
		}
		for _, c := range f.Conditions {
			field.Conditions = append(field.Conditions, entities.Condition{
				ID:         c.ID,
				RenderAs:   c.RenderAs,
				Expression: strings.TrimSpace(c.Expression),
			})
		}
		out = append(out, field)
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
