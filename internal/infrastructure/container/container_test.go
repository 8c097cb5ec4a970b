package container

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/reglet-dev/defimport/internal/application/errors"
	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/infrastructure/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_New_MemoryDriver(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), Options{
		SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DatabaseDriver:   system.DriverMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.NotNil(t, c.ImportService())
	assert.NotNil(t, c.Notifier())
	assert.NotNil(t, c.Logger())
	assert.Equal(t, system.DriverMemory, c.SystemConfig().Database.Driver)

	resp, err := c.ImportService().ImportedDefinitions(context.Background(), dto.ListRequest{})
	require.NoError(t, err)
	assert.Empty(t, resp.Definitions)
}

func Test_New_SQLiteDriver(t *testing.T) {
	t.Parallel()

	dbPath := filepath.Join(t.TempDir(), "nested", "definitions.db")
	c, err := New(context.Background(), Options{
		SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DatabaseDriver:   system.DriverSQLite,
		DatabasePath:     dbPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	_, err = os.Stat(dbPath)
	assert.NoError(t, err)
}

func Test_New_UnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Options{
		SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DatabaseDriver:   "postgres",
	})
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func Test_New_InvalidConfigFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("unknown_key: true\n"), 0o600))

	_, err := New(context.Background(), Options{SystemConfigPath: path})
	require.Error(t, err)

	var cfgErr *apperrors.ConfigurationError
	assert.True(t, errors.As(err, &cfgErr))
}

func Test_New_SensitiveContentDisabled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	config := "database:\n  driver: memory\nsensitive_content:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(config), 0o600))

	c, err := New(context.Background(), Options{SystemConfigPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	assert.Nil(t, c.Scanner())
}

func Test_New_ExposesPresentation(t *testing.T) {
	t.Parallel()

	c, err := New(context.Background(), Options{
		SystemConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		DatabaseDriver:   system.DriverMemory,
	})
	require.NoError(t, err)

	assert.Contains(t, c.Formatters().SupportedFormats(), "sarif")
	assert.NotNil(t, c.Confirmer())
}
