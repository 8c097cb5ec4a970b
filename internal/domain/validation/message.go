// Package validation holds the findings produced while validating a batch of
// definitions. Messages carry positional parameters instead of rendered text
// so downstream consumers can localize them.
package validation

import (
	"fmt"
	"strings"
)

// Severity distinguishes blocking findings from advisory ones.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Kind identifies the check that produced a message.
type Kind string

const (
	KindDuplicatedDefinition      Kind = "DuplicatedDefinition"
	KindDuplicatedLabelOrFilter   Kind = "DuplicatedLabelOrFilter"
	KindMissingParent             Kind = "MissingParent"
	KindHierarchyCycle            Kind = "HierarchyCycle"
	KindXMLParsingFailure         Kind = "XmlParsingFailure"
	KindDuplicatedFileName        Kind = "DuplicatedFileName"
	KindDuplicatedField           Kind = "DuplicatedField"
	KindDuplicatedTransitionField Kind = "DuplicatedTransitionField"
	KindDuplicatedURI             Kind = "DuplicatedUri"
	KindCompilationFailure        Kind = "CompilationFailure"
	KindSensitiveContent          Kind = "SensitiveContent"
)

// Object kinds used as the second parameter of DuplicatedLabelOrFilter.
const (
	ObjectKindLabel  = "<label>"
	ObjectKindFilter = "<filter>"
)

// templates render the English text of a message. Placeholders are filled
// positionally from Message.Params.
var templates = map[Kind]string{
	KindDuplicatedDefinition:      "Definition %s is declared more than once in files: %s",
	KindDuplicatedLabelOrFilter:   "Definition %s declares %s %s which is also declared by %s",
	KindMissingParent:             "Definition %s references missing parent %s",
	KindHierarchyCycle:            "Definition %s is part of a hierarchy cycle: %s",
	KindXMLParsingFailure:         "File %s could not be parsed: %s",
	KindDuplicatedFileName:        "Duplicate file names found: %s",
	KindDuplicatedField:           "Definition %s declares field %s more than once",
	KindDuplicatedTransitionField: "Definition %s transition %s declares field %s more than once",
	KindDuplicatedURI:             "Definition %s maps uri %s to more than one field: %s",
	KindCompilationFailure:        "Definition %s could not be compiled: %s",
	KindSensitiveContent:          "Definition %s contains a value matching rule %s at line %s",
}

// Message is a single validation finding.
type Message struct {
	Severity     Severity `json:"severity" yaml:"severity"`
	Kind         Kind     `json:"kind" yaml:"kind"`
	DefinitionID string   `json:"definition_id,omitempty" yaml:"definition_id,omitempty"`
	Params       []string `json:"params,omitempty" yaml:"params,omitempty"`
}

// NewError creates an error-severity message.
func NewError(kind Kind, definitionID string, params ...string) Message {
	return Message{
		Severity:     SeverityError,
		Kind:         kind,
		DefinitionID: definitionID,
		Params:       params,
	}
}

// NewWarning creates a warning-severity message.
func NewWarning(kind Kind, definitionID string, params ...string) Message {
	return Message{
		Severity:     SeverityWarning,
		Kind:         kind,
		DefinitionID: definitionID,
		Params:       params,
	}
}

// IsError returns true for blocking messages.
func (m Message) IsError() bool {
	return m.Severity == SeverityError
}

// Text renders the message in English.
func (m Message) Text() string {
	tmpl, ok := templates[m.Kind]
	if !ok {
		return fmt.Sprintf("%s: %s", m.Kind, strings.Join(m.Params, ", "))
	}

	args := make([]any, strings.Count(tmpl, "%s"))
	for i := range args {
		if i < len(m.Params) {
			args[i] = m.Params[i]
		} else {
			args[i] = ""
		}
	}
	return fmt.Sprintf(tmpl, args...)
}

// String implements fmt.Stringer.
func (m Message) String() string {
	return fmt.Sprintf("[%s] %s", m.Severity, m.Text())
}

// FormatList renders identifiers the way they appear in message parameters,
// e.g. "[def1, def2]".
func FormatList(ids []string) string {
	return "[" + strings.Join(ids, ", ") + "]"
}
