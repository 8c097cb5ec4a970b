package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/infrastructure/container"
	"github.com/reglet-dev/defimport/internal/infrastructure/system"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	parentXML = `<definition id="A" type="case"><fields><field name="f1" type="string"/></fields></definition>`
	childXML  = `<definition id="B" parentId="A"><fields><field name="f2"/></fields></definition>`
)

type stubConfirmer struct {
	interactive bool
	answer      bool
	asked       int
}

func (s *stubConfirmer) IsInteractive() bool { return s.interactive }

func (s *stubConfirmer) ConfirmImport(context.Context, *dto.ReportView) (bool, error) {
	s.asked++
	return s.answer, nil
}

func newTestContext(t *testing.T, confirmer *stubConfirmer) *CommandContext {
	t.Helper()
	ctx := context.Background()
	c, err := container.New(ctx, container.Options{
		SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DatabaseDriver:   system.DriverMemory,
		Confirmer:        confirmer,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return &CommandContext{Container: c, Logger: c.Logger(), Context: ctx}
}

func newOutputCommand() (*cobra.Command, *bytes.Buffer) {
	var buf bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&buf)
	return cmd, &buf
}

func writeDefinitions(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

// The command tests share the package-level flag variables, so they do not
// run in parallel.
func TestCommands_ValidateImportList(t *testing.T) {
	cc := newTestContext(t, &stubConfirmer{})
	dir := writeDefinitions(t, map[string]string{"a.xml": parentXML, "b.xml": childXML})

	validateOpts.Format = "json"
	importOpts.Format = "json"
	listOpts.Format = "json"
	assumeYes = true
	t.Cleanup(func() {
		validateOpts = DefaultCommonOptions()
		importOpts = DefaultCommonOptions()
		listOpts = DefaultCommonOptions()
		assumeYes = false
	})

	cmd, out := newOutputCommand()
	require.NoError(t, runValidate(cc, cmd, []string{dir}))
	var view dto.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.True(t, view.Valid)
	assert.ElementsMatch(t, []string{"A", "B"}, view.Definitions)

	cmd, out = newOutputCommand()
	require.NoError(t, runImport(cc, cmd, []string{dir}))
	var imported dto.ImportResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &imported))
	assert.Equal(t, 2, imported.Count(dto.ActionCreated))

	cmd, out = newOutputCommand()
	require.NoError(t, runList(cc, cmd, nil))
	var list dto.ListResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &list))
	assert.Len(t, list.Definitions, 2)
}

func TestCommands_ValidateFailsOnBlockingErrors(t *testing.T) {
	cc := newTestContext(t, &stubConfirmer{})
	dir := writeDefinitions(t, map[string]string{"b.xml": childXML})

	validateOpts.Format = "json"
	t.Cleanup(func() { validateOpts = DefaultCommonOptions() })

	cmd, out := newOutputCommand()
	err := runValidate(cc, cmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")

	var view dto.ReportView
	require.NoError(t, json.Unmarshal(out.Bytes(), &view))
	assert.False(t, view.Valid)
	assert.Equal(t, 1, view.Errors)
}

func TestCommands_ImportRequiresConfirmation(t *testing.T) {
	cc := newTestContext(t, &stubConfirmer{})
	dir := writeDefinitions(t, map[string]string{"a.xml": parentXML})

	cmd, _ := newOutputCommand()
	err := runImport(cc, cmd, []string{dir})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCommands_ImportDeclined(t *testing.T) {
	confirmer := &stubConfirmer{interactive: true}
	cc := newTestContext(t, confirmer)
	dir := writeDefinitions(t, map[string]string{"a.xml": parentXML})

	cmd, out := newOutputCommand()
	require.NoError(t, runImport(cc, cmd, []string{dir}))
	assert.Equal(t, 1, confirmer.asked)
	assert.Empty(t, out.String())

	resp, err := cc.Container.ImportService().ImportedDefinitions(cc.Context, dto.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Definitions)
}

func TestCommands_Export(t *testing.T) {
	cc := newTestContext(t, &stubConfirmer{})
	dir := writeDefinitions(t, map[string]string{"a.xml": parentXML})

	_, _, err := cc.Container.ImportService().ImportDirectory(cc.Context, dto.ValidateRequest{Directory: dir})
	require.NoError(t, err)

	target := t.TempDir()
	exportOpts.Format = "json"
	exportDir = target
	t.Cleanup(func() {
		exportOpts = DefaultCommonOptions()
		exportDir = ""
	})

	cmd, out := newOutputCommand()
	require.NoError(t, runExport(cc, cmd, nil))

	var resp dto.ExportResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, target, resp.Directory)

	data, err := os.ReadFile(filepath.Join(target, "a.xml"))
	require.NoError(t, err)
	assert.Equal(t, parentXML, string(data))
}
