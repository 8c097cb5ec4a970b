package services

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

// DefinitionEnv defines the variables available during filter expression evaluation.
type DefinitionEnv struct {
	ID       string `expr:"id"`
	Type     string `expr:"type"`
	Parent   string `expr:"parent"`
	File     string `expr:"file"`
	Abstract bool   `expr:"abstract"`
	Revision int64  `expr:"revision"`
}

// CompileFilterExpression compiles a boolean filter expression against DefinitionEnv.
func CompileFilterExpression(expression string) (*vm.Program, error) {
	program, err := expr.Compile(expression, expr.Env(DefinitionEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression %q: %w", expression, err)
	}
	return program, nil
}

// DefinitionSpecification defines a condition that an imported definition must meet.
type DefinitionSpecification interface {
	// IsSatisfiedBy returns true if satisfied, along with a reason if not.
	IsSatisfiedBy(info entities.DefinitionInfo) (bool, string)
}

// DefinitionFilter selects imported definitions by identifier, type and
// expression. All configured criteria must hold.
type DefinitionFilter struct {
	ids           map[string]bool
	types         map[string]bool
	skipAbstract  bool
	filterProgram *vm.Program
}

// NewDefinitionFilter initializes a new empty filter that matches everything.
func NewDefinitionFilter() *DefinitionFilter {
	return &DefinitionFilter{
		ids:   make(map[string]bool),
		types: make(map[string]bool),
	}
}

// WithIDs restricts the selection to the given identifiers.
func (f *DefinitionFilter) WithIDs(ids []string) *DefinitionFilter {
	f.ids = toSet(ids)
	return f
}

// WithTypes restricts the selection to the given definition types.
func (f *DefinitionFilter) WithTypes(types []string) *DefinitionFilter {
	f.types = toSet(types)
	return f
}

// WithoutAbstract excludes abstract definitions.
func (f *DefinitionFilter) WithoutAbstract() *DefinitionFilter {
	f.skipAbstract = true
	return f
}

// WithFilterExpression applies a compiled Expr program for advanced filtering.
func (f *DefinitionFilter) WithFilterExpression(program *vm.Program) *DefinitionFilter {
	f.filterProgram = program
	return f
}

// Matches evaluates whether info matches the filter criteria.
func (f *DefinitionFilter) Matches(info entities.DefinitionInfo) (bool, string) {
	if f == nil {
		return true, ""
	}
	for _, spec := range f.specifications() {
		if ok, reason := spec.IsSatisfiedBy(info); !ok {
			return false, reason
		}
	}
	return true, ""
}

// Apply returns the matching subset of infos, preserving order.
func (f *DefinitionFilter) Apply(infos []entities.DefinitionInfo) []entities.DefinitionInfo {
	var out []entities.DefinitionInfo
	for _, info := range infos {
		if ok, _ := f.Matches(info); ok {
			out = append(out, info)
		}
	}
	return out
}

func (f *DefinitionFilter) specifications() []DefinitionSpecification {
	var specs []DefinitionSpecification
	if len(f.ids) > 0 {
		specs = append(specs, setSpecification{set: f.ids, attr: idOf, reason: "excluded by --id filter"})
	}
	if len(f.types) > 0 {
		specs = append(specs, setSpecification{set: f.types, attr: typeOf, reason: "excluded by --type filter"})
	}
	if f.skipAbstract {
		specs = append(specs, concreteSpecification{})
	}
	if f.filterProgram != nil {
		specs = append(specs, expressionSpecification{program: f.filterProgram})
	}
	return specs
}

func idOf(info entities.DefinitionInfo) string   { return info.Identifier }
func typeOf(info entities.DefinitionInfo) string { return info.Type }

// setSpecification includes definitions whose attribute is in the set.
type setSpecification struct {
	set    map[string]bool
	attr   func(entities.DefinitionInfo) string
	reason string
}

func (s setSpecification) IsSatisfiedBy(info entities.DefinitionInfo) (bool, string) {
	if s.set[s.attr(info)] {
		return true, ""
	}
	return false, s.reason
}

// concreteSpecification excludes abstract definitions.
type concreteSpecification struct{}

func (concreteSpecification) IsSatisfiedBy(info entities.DefinitionInfo) (bool, string) {
	if info.Abstract {
		return false, "abstract definition"
	}
	return true, ""
}

// expressionSpecification filters definitions using an expr program.
type expressionSpecification struct {
	program *vm.Program
}

func (s expressionSpecification) IsSatisfiedBy(info entities.DefinitionInfo) (bool, string) {
	env := DefinitionEnv{
		ID:       info.Identifier,
		Type:     info.Type,
		Parent:   info.ParentID,
		File:     info.FileName,
		Abstract: info.Abstract,
		Revision: info.Revision,
	}

	output, err := expr.Run(s.program, env)
	if err != nil {
		return false, fmt.Sprintf("filter expression error: %v", err)
	}
	result, ok := output.(bool)
	if !ok {
		return false, fmt.Sprintf("filter expression did not return boolean: %v", output)
	}
	if !result {
		return false, "excluded by filter expression"
	}
	return true, ""
}

// toSet converts a slice to a map (set)
func toSet(slice []string) map[string]bool {
	s := make(map[string]bool, len(slice))
	for _, item := range slice {
		s[item] = true
	}
	return s
}
