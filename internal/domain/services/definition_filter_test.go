package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/defimport/internal/domain/entities"
)

func filterFixtures() []entities.DefinitionInfo {
	return []entities.DefinitionInfo{
		{Identifier: "caseBase", Type: "case", Abstract: true, FileName: "caseBase.xml", Revision: 1},
		{Identifier: "complaint", Type: "case", ParentID: "caseBase", FileName: "complaint.xml", Revision: 3},
		{Identifier: "invoice", Type: "document", FileName: "invoice.xml", Revision: 1},
	}
}

func Test_DefinitionFilter_EmptyMatchesAll(t *testing.T) {
	t.Parallel()

	assert.Len(t, NewDefinitionFilter().Apply(filterFixtures()), 3)
}

func Test_DefinitionFilter_NilMatchesAll(t *testing.T) {
	t.Parallel()

	var f *DefinitionFilter
	ok, _ := f.Matches(filterFixtures()[0])
	assert.True(t, ok)
}

func Test_DefinitionFilter_ByIDsAndTypes(t *testing.T) {
	t.Parallel()

	byID := NewDefinitionFilter().WithIDs([]string{"invoice", "missing"}).Apply(filterFixtures())
	require.Len(t, byID, 1)
	assert.Equal(t, "invoice", byID[0].Identifier)

	byType := NewDefinitionFilter().WithTypes([]string{"case"}).WithoutAbstract().Apply(filterFixtures())
	require.Len(t, byType, 1)
	assert.Equal(t, "complaint", byType[0].Identifier)
}

func Test_DefinitionFilter_Expression(t *testing.T) {
	t.Parallel()

	program, err := CompileFilterExpression(`type == "case" && revision > 1 && parent == "caseBase"`)
	require.NoError(t, err)

	out := NewDefinitionFilter().WithFilterExpression(program).Apply(filterFixtures())
	require.Len(t, out, 1)
	assert.Equal(t, "complaint", out[0].Identifier)

	ok, reason := NewDefinitionFilter().WithFilterExpression(program).Matches(filterFixtures()[2])
	assert.False(t, ok)
	assert.Equal(t, "excluded by filter expression", reason)
}

func Test_CompileFilterExpression_Invalid(t *testing.T) {
	t.Parallel()

	_, err := CompileFilterExpression(`unknown_var == 1`)
	assert.Error(t, err)

	_, err = CompileFilterExpression(`id`)
	assert.Error(t, err, "non-boolean expressions are rejected")
}
