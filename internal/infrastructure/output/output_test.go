package output

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/domain/entities"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReport() *dto.ReportView {
	return &dto.ReportView{
		ImportID:    "3f0c2f4e-4c55-4b43-9d4f-0d7f2b8a9a11",
		Directory:   "defs",
		Definitions: []string{"A", "B"},
		Files:       map[string]string{"A": "a.xml", "B": "b.xml"},
		Messages: []validation.Message{
			validation.NewError(validation.KindHierarchyCycle, "A", "A", "[A, B, A]"),
			validation.NewWarning(validation.KindSensitiveContent, "B", "B", "github-pat", "7"),
			validation.NewError(validation.KindXMLParsingFailure, "", "c.xml", "unexpected EOF"),
		},
		Errors:   2,
		Warnings: 1,
		Valid:    false,
	}
}

func testImport() *dto.ImportResponse {
	return &dto.ImportResponse{
		ImportID: "3f0c2f4e-4c55-4b43-9d4f-0d7f2b8a9a11",
		Outcomes: []dto.PersistOutcome{
			{DefinitionID: "A", Action: dto.ActionCreated, Revision: 1},
			{DefinitionID: "B", Action: dto.ActionUpdated, Revision: 4, RenamedFrom: "OLD_B"},
			{DefinitionID: "C", Action: dto.ActionSkipped, Revision: 2},
		},
		Labels:   3,
		Metadata: dto.ResponseMetadata{Duration: 12 * time.Millisecond},
	}
}

func Test_TableFormatter_FormatReport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatReport(testReport()))

	out := buf.String()
	assert.Contains(t, out, "Directory: defs")
	assert.Contains(t, out, "✗ HierarchyCycle Definition A is part of a hierarchy cycle: [A, B, A]")
	assert.Contains(t, out, "⚠ SensitiveContent")
	assert.Contains(t, out, "INVALID  2 error(s), 1 warning(s)")
	assert.NotContains(t, out, "\033[")
}

func Test_TableFormatter_FormatReport_Clean(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatReport(&dto.ReportView{Directory: "defs", Valid: true}))
	assert.Contains(t, buf.String(), "No problems found.")
	assert.Contains(t, buf.String(), "VALID  0 error(s), 0 warning(s)")
}

func Test_TableFormatter_FormatImport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatImport(testImport()))

	out := buf.String()
	assert.Contains(t, out, "OLD_B")
	assert.Contains(t, out, "1 created, 1 updated, 1 unchanged, 3 label(s), 0 filter(s)")
}

func Test_TableFormatter_FormatList(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)

	require.NoError(t, f.FormatList(&dto.ListResponse{}))
	assert.Equal(t, "No definitions imported.\n", buf.String())

	buf.Reset()
	require.NoError(t, f.FormatList(&dto.ListResponse{Definitions: []entities.DefinitionInfo{
		{Identifier: "A", Type: "case", FileName: "a.xml", Revision: 2},
	}}))
	assert.Contains(t, buf.String(), "a.xml")
	assert.Contains(t, buf.String(), "case")
}

func Test_TableFormatter_FormatExport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	f := NewTableFormatter(&buf)
	f.EnableColor = false

	require.NoError(t, f.FormatExport(&dto.ExportResponse{Directory: "/tmp/x", Files: []string{"/tmp/x/a.xml"}}))
	assert.Equal(t, "Exported 1 file(s) to /tmp/x\n  /tmp/x/a.xml\n", buf.String())
}

func Test_JSONFormatter_FormatImport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, true).FormatImport(testImport()))

	var decoded dto.ImportResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testImport().Outcomes, decoded.Outcomes)
	assert.Contains(t, buf.String(), "\n  ")
}

func Test_JSONFormatter_FormatReport_Compact(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(&buf, false).FormatReport(testReport()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, false, decoded["valid"])
	assert.Len(t, decoded["messages"], 3)
}

func Test_YAMLFormatter_FormatReport(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, NewYAMLFormatter(&buf).FormatReport(testReport()))

	var decoded dto.ReportView
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, testReport().Messages, decoded.Messages)
	assert.Equal(t, "defs", decoded.Directory)
}
