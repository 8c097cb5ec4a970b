package services

import (
	"errors"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
)

// HierarchyCompiler resolves single-parent inheritance into a flattened
// definition per input.
//
// Compilation steps, per definition:
// 1. Walk the parent chain through the batch index, nearest ancestor first
// 2. Apply the chain root-to-nearest onto an empty accumulator, then the
//    definition itself (child always wins)
// 3. Drop deleted fields and disabled regions and transitions
// 4. Compile sub-definitions the same way against the same index
//
// Inputs are never mutated, so compiling the same batch twice yields equal
// results. The parent walk re-checks for cycles even though validation has
// already certified the batch.
type HierarchyCompiler struct {
	merger *DefinitionMerger
}

// NewHierarchyCompiler creates a new hierarchy compiler service.
func NewHierarchyCompiler() *HierarchyCompiler {
	return &HierarchyCompiler{merger: NewDefinitionMerger()}
}

// Compile returns the compiled form of every definition, in input order.
// Failures are collected across the batch and returned together as a
// DefinitionValidationError.
func (c *HierarchyCompiler) Compile(defs []*entities.Definition) ([]*entities.Definition, error) {
	index := newHierarchyIndex(defs)

	compiled := make([]*entities.Definition, 0, len(defs))
	var failures []validation.Message
	for _, def := range defs {
		if def == nil {
			continue
		}
		out, msgs := c.compileOne(index, def)
		if len(msgs) > 0 {
			failures = append(failures, msgs...)
			continue
		}
		compiled = append(compiled, out)
	}

	if len(failures) > 0 {
		return nil, entities.NewDefinitionValidationError(failures...)
	}
	return compiled, nil
}

func (c *HierarchyCompiler) compileOne(index hierarchyIndex, def *entities.Definition) (*entities.Definition, []validation.Message) {
	ancestors, err := index.ancestors(def)
	if err != nil {
		return nil, []validation.Message{compileFailure(def.Identifier, err)}
	}

	chain := make([]*entities.Definition, 0, len(ancestors)+1)
	for i := len(ancestors) - 1; i >= 0; i-- {
		chain = append(chain, ancestors[i])
	}
	chain = append(chain, def)

	compiled := c.merger.MergeChain(chain)
	c.merger.Finalize(compiled)

	var failures []validation.Message
	for _, sub := range def.SubDefinitions {
		out, msgs := c.compileOne(index, sub)
		if len(msgs) > 0 {
			failures = append(failures, msgs...)
			continue
		}
		compiled.SubDefinitions = append(compiled.SubDefinitions, out)
	}
	if len(failures) > 0 {
		return nil, failures
	}
	return compiled, nil
}

// compileFailure maps a walk error onto the finding that describes it.
func compileFailure(defID string, err error) validation.Message {
	var cycle *entities.HierarchyCycleError
	if errors.As(err, &cycle) {
		return cycle.Message()
	}
	var missing *entities.MissingParentError
	if errors.As(err, &missing) {
		return missing.Message()
	}
	return validation.NewError(validation.KindCompilationFailure, defID, defID, err.Error())
}
