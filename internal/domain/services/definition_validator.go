package services

import (
	"errors"
	"strings"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
)

// DefinitionValidator runs the structural checks over a parsed batch.
// Every check runs and accumulates into the same report; none short-circuits.
type DefinitionValidator struct{}

// NewDefinitionValidator creates a new definition validator service.
func NewDefinitionValidator() *DefinitionValidator {
	return &DefinitionValidator{}
}

// Validate checks the batch. persistedIDs are identifiers already in
// storage; a parent reference resolving to one of them is not missing.
func (v *DefinitionValidator) Validate(parsed []*entities.ParsedDefinition, persistedIDs []string) *validation.Report {
	report := validation.NewReport()

	defs := make([]*entities.Definition, 0, len(parsed))
	for _, p := range parsed {
		if p != nil && p.Definition != nil {
			defs = append(defs, p.Definition)
		}
	}
	index := newHierarchyIndex(defs)

	v.checkDuplicateDefinitions(report, parsed)
	v.checkDuplicateOwnership(report, parsed)
	v.checkMissingParents(report, index, defs, persistedIDs)
	v.checkHierarchyCycles(report, index, defs)
	v.checkDuplicateFields(report, defs)
	v.checkDuplicateTransitionFields(report, defs)
	v.checkDuplicateURIs(report, defs)

	return report
}

// checkDuplicateDefinitions reports each identifier declared more than once,
// with every file that declares it.
func (v *DefinitionValidator) checkDuplicateDefinitions(report *validation.Report, parsed []*entities.ParsedDefinition) {
	files := make(map[string][]string)
	var order []string
	for _, p := range parsed {
		if p == nil || p.Definition == nil {
			continue
		}
		for _, def := range flatten([]*entities.Definition{p.Definition}) {
			if _, seen := files[def.Identifier]; !seen {
				order = append(order, def.Identifier)
			}
			files[def.Identifier] = append(files[def.Identifier], p.FileName)
		}
	}

	for _, id := range order {
		if len(files[id]) > 1 {
			report.AddError(validation.KindDuplicatedDefinition, id, id, strings.Join(files[id], ", "))
		}
	}
}

// checkDuplicateOwnership reports labels and filters declared by more than
// one definition across the whole batch.
func (v *DefinitionValidator) checkDuplicateOwnership(report *validation.Report, parsed []*entities.ParsedDefinition) {
	labels := newOwnership()
	filters := newOwnership()
	for _, p := range parsed {
		owner := p.ID()
		if owner == "" {
			continue
		}
		for _, l := range p.Labels {
			labels.add(l.ID, owner)
		}
		for _, f := range p.Filters {
			filters.add(f.ID, owner)
		}
	}

	labels.report(report, validation.ObjectKindLabel)
	filters.report(report, validation.ObjectKindFilter)
}

// checkMissingParents reports parent references that resolve neither in the
// batch nor in storage.
func (v *DefinitionValidator) checkMissingParents(
	report *validation.Report,
	index hierarchyIndex,
	defs []*entities.Definition,
	persistedIDs []string,
) {
	persisted := make(map[string]bool, len(persistedIDs))
	for _, id := range persistedIDs {
		persisted[id] = true
	}

	for _, def := range flatten(defs) {
		if def.IsRoot() {
			continue
		}
		if _, ok := index[def.ParentID]; ok || persisted[def.ParentID] {
			continue
		}
		report.AddError(validation.KindMissingParent, def.Identifier, def.Identifier, def.ParentID)
	}
}

// checkHierarchyCycles walks every parent chain and reports each distinct
// cycle once, with the path of the first walk that closed it.
func (v *DefinitionValidator) checkHierarchyCycles(report *validation.Report, index hierarchyIndex, defs []*entities.Definition) {
	reported := make(map[string]bool)
	for _, def := range flatten(defs) {
		_, err := index.ancestors(def)

		var cycle *entities.HierarchyCycleError
		if !errors.As(err, &cycle) {
			continue
		}
		key := cycleKey(cycle.Path)
		if reported[key] {
			continue
		}
		reported[key] = true
		report.Add(cycle.Message())
	}
}

// checkDuplicateFields reports a field name declared twice within one
// definition, counting top-level and region fields together.
func (v *DefinitionValidator) checkDuplicateFields(report *validation.Report, defs []*entities.Definition) {
	for _, def := range flatten(defs) {
		seen := make(map[string]int)
		for _, name := range def.FieldNames() {
			seen[name]++
			if seen[name] == 2 {
				report.AddError(validation.KindDuplicatedField, def.Identifier, def.Identifier, name)
			}
		}
	}
}

// checkDuplicateTransitionFields reports a field name declared twice within
// one transition.
func (v *DefinitionValidator) checkDuplicateTransitionFields(report *validation.Report, defs []*entities.Definition) {
	for _, def := range flatten(defs) {
		for _, tr := range def.Transitions {
			seen := make(map[string]int)
			for _, f := range tr.Fields {
				seen[f.Name]++
				if seen[f.Name] == 2 {
					report.AddError(validation.KindDuplicatedTransitionField, def.Identifier, def.Identifier, tr.ID, f.Name)
				}
			}
		}
	}
}

// checkDuplicateURIs reports a uri bound to more than one field of a
// definition. Fields without a uri are not considered.
func (v *DefinitionValidator) checkDuplicateURIs(report *validation.Report, defs []*entities.Definition) {
	for _, def := range flatten(defs) {
		byURI := make(map[string][]string)
		var order []string
		def.EachField(func(f *entities.Field) {
			if f.URI == "" {
				return
			}
			if _, seen := byURI[f.URI]; !seen {
				order = append(order, f.URI)
			}
			byURI[f.URI] = append(byURI[f.URI], f.Name)
		})
		for _, uri := range order {
			if names := byURI[uri]; len(names) > 1 {
				report.AddError(validation.KindDuplicatedURI, def.Identifier, def.Identifier, uri, strings.Join(names, ", "))
			}
		}
	}
}

// ownership maps an object identifier to its owning definitions, keeping
// first-seen order for both.
type ownership struct {
	owners map[string][]string
	order  []string
}

func newOwnership() *ownership {
	return &ownership{owners: make(map[string][]string)}
}

func (o *ownership) add(id, owner string) {
	current, seen := o.owners[id]
	if !seen {
		o.order = append(o.order, id)
	}
	for _, existing := range current {
		if existing == owner {
			return
		}
	}
	o.owners[id] = append(current, owner)
}

func (o *ownership) report(report *validation.Report, objectKind string) {
	for _, id := range o.order {
		owners := o.owners[id]
		if len(owners) < 2 {
			continue
		}
		report.AddError(
			validation.KindDuplicatedLabelOrFilter,
			owners[0],
			owners[0], objectKind, id, validation.FormatList(owners),
		)
	}
}
