package source

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"github.com/reglet-dev/defimport/internal/domain/values"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fullDefinition = `<?xml version="1.0" encoding="UTF-8"?>
<definition id="A" type="case" parentId="ROOT" isAbstract="true">
  <fields>
    <field name="f1" type="string" displayType="ReadOnly" label="L1" mandatory="true">
      <condition id="c1" renderAs="hidden">status == 'closed'</condition>
    </field>
    <field name="f2" type="number" override="true"/>
  </fields>
  <regions>
    <region id="r1" displayType="editable" label="L2">
      <fields><field name="f3"/></fields>
    </region>
  </regions>
  <transitions>
    <transition id="t1" label="L3" eventId="close" purpose="finish" displayType="system"/>
  </transitions>
  <allowedChildren>
    <child type="task" id="T"/>
  </allowedChildren>
  <labels>
    <label id="L1"><value lang="en">Name</value><value lang="de">Name</value></label>
  </labels>
  <filterDefinitions>
    <filter id="F1" mode="include">A0, A2</filter>
  </filterDefinitions>
  <definitions>
    <definition id="A_SUB" parentId="A">
      <labels><label id="L9"><value lang="en">Sub</value></label></labels>
    </definition>
  </definitions>
</definition>
`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o750))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
}

func Test_XMLReader_ReadDirectory_ParsesDefinition(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "a.xml", fullDefinition)
	writeFile(t, dir, "notes.txt", "ignored")

	parsed, err := NewXMLReader(0, nil).ReadDirectory(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, parsed, 1)

	p := parsed[0]
	def := p.Definition
	assert.Equal(t, "a.xml", p.FileName)
	assert.Equal(t, "A", def.Identifier)
	assert.Equal(t, "ROOT", def.ParentID)
	assert.Equal(t, "case", def.Type)
	assert.True(t, def.Abstract)
	assert.Equal(t, "a.xml", def.SourceFile)
	assert.Equal(t, fullDefinition, def.SourceContent)

	require.Len(t, def.Fields, 2)
	assert.Equal(t, values.DisplayReadOnly, def.Fields[0].DisplayType)
	require.NotNil(t, def.Fields[0].Mandatory)
	assert.True(t, *def.Fields[0].Mandatory)
	assert.Nil(t, def.Fields[1].Mandatory)
	assert.True(t, def.Fields[1].Override)
	assert.Equal(t, []entities.Condition{{ID: "c1", RenderAs: "hidden", Expression: "status == 'closed'"}}, def.Fields[0].Conditions)

	require.Len(t, def.Regions, 1)
	assert.Equal(t, "f3", def.Regions[0].Fields[0].Name)
	require.Len(t, def.Transitions, 1)
	assert.Equal(t, values.DisplaySystem, def.Transitions[0].DisplayType)
	assert.Equal(t, []entities.AllowedChild{{Type: "task", ID: "T"}}, def.AllowedChildren)

	require.Len(t, def.SubDefinitions, 1)
	assert.Equal(t, "A_SUB", def.SubDefinitions[0].Identifier)

	require.Len(t, p.Labels, 2)
	assert.Equal(t, "A", p.Labels[0].DefinedIn)
	assert.Equal(t, "A_SUB", p.Labels[1].DefinedIn)
	require.Len(t, p.Filters, 1)
	assert.Equal(t, []string{"A0", "A2"}, p.Filters[0].Values)
}

func Test_XMLReader_ReadDirectory_ReportsParseFailures(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "good.xml", `<definition id="A"/>`)
	writeFile(t, dir, "broken.xml", `<definition id="B">`)
	writeFile(t, dir, "wrong.xml", `<profile id="C"/>`)
	writeFile(t, dir, "noid.xml", `<definition/>`)

	parsed, err := NewXMLReader(2, nil).ReadDirectory(context.Background(), dir)
	require.Len(t, parsed, 1)
	assert.Equal(t, "A", parsed[0].ID())

	var verr *entities.DefinitionValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 3)
	files := make([]string, 0, 3)
	for _, m := range verr.Messages {
		assert.Equal(t, validation.KindXMLParsingFailure, m.Kind)
		files = append(files, m.Params[0])
	}
	assert.ElementsMatch(t, []string{"broken.xml", "wrong.xml", "noid.xml"}, files)
}

func Test_XMLReader_ReadDirectory_DuplicateFileNames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeFile(t, dir, "one/a.xml", `<definition id="A"/>`)
	writeFile(t, dir, "two/a.xml", `<definition id="B"/>`)

	parsed, err := NewXMLReader(0, nil).ReadDirectory(context.Background(), dir)
	assert.Len(t, parsed, 2)

	var verr *entities.DefinitionValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Messages, 1)
	assert.Equal(t, validation.KindDuplicatedFileName, verr.Messages[0].Kind)
	assert.Equal(t, []string{"one/a.xml, two/a.xml"}, verr.Messages[0].Params)
}

func Test_XMLReader_ReadDirectory_Errors(t *testing.T) {
	t.Parallel()
	reader := NewXMLReader(0, nil)

	_, err := reader.ReadDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	_, err = reader.ReadDirectory(context.Background(), t.TempDir())
	assert.True(t, errors.Is(err, ErrNoDefinitionFiles))
}

func Test_XMLReader_ParseContent(t *testing.T) {
	t.Parallel()
	reader := NewXMLReader(0, nil)

	p, err := reader.ParseContent(context.Background(), entities.DefinitionContent{
		Identifier: "A", FileName: "a.xml", Content: fullDefinition,
	})
	require.NoError(t, err)
	assert.Equal(t, "a.xml", p.FileName)
	assert.False(t, p.Definition.HasSource())

	_, err = reader.ParseContent(context.Background(), entities.DefinitionContent{
		Identifier: "B", FileName: "b.xml", Content: "<definition",
	})
	var verr *entities.DefinitionValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "B", verr.Messages[0].DefinitionID)
}

func Test_FileExporter_Export(t *testing.T) {
	t.Parallel()
	target := filepath.Join(t.TempDir(), "out")
	contents := []entities.DefinitionContent{
		{Identifier: "A", FileName: "a.xml", Content: `<definition id="A"/>`},
		{Identifier: "B", Content: `<definition id="B"/>`},
	}

	dir, files, err := NewFileExporter(nil).Export(context.Background(), target, contents)
	require.NoError(t, err)
	assert.Equal(t, target, dir)
	assert.Equal(t, []string{filepath.Join(target, "a.xml"), filepath.Join(target, "B.xml")}, files)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Equal(t, `<definition id="A"/>`, string(data))

	// exported files read back as the same definitions
	parsed, err := NewXMLReader(0, nil).ReadDirectory(context.Background(), dir)
	require.NoError(t, err)
	assert.Len(t, parsed, 2)
}

func Test_FileExporter_Export_TempDir(t *testing.T) {
	t.Parallel()
	dir, files, err := NewFileExporter(nil).Export(context.Background(), "", []entities.DefinitionContent{
		{Identifier: "A", FileName: "a.xml", Content: `<definition id="A"/>`},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	assert.Len(t, files, 1)
	assert.FileExists(t, files[0])
}

func Test_FileExporter_Export_RejectsEscapingNames(t *testing.T) {
	t.Parallel()
	_, _, err := NewFileExporter(nil).Export(context.Background(), t.TempDir(), []entities.DefinitionContent{
		{Identifier: "A", FileName: "../a.xml", Content: `<definition id="A"/>`},
	})
	assert.Error(t, err)
}
