// Package system provides infrastructure for system-level configuration.
// This covers loading the system config file (~/.defimport/config.yaml).
package system

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/goccy/go-yaml"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config_schema.json
var configSchema []byte

// Database drivers.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Config represents the global configuration file (~/.defimport/config.yaml).
type Config struct {
	// RequiredVersion is a semver constraint the running binary must satisfy.
	RequiredVersion  string                 `yaml:"required_version"`
	Database         DatabaseConfig         `yaml:"database"`
	Reader           ReaderConfig           `yaml:"reader"`
	Export           ExportConfig           `yaml:"export"`
	SensitiveContent SensitiveContentConfig `yaml:"sensitive_content"`
}

// DatabaseConfig selects where imported definitions are stored.
type DatabaseConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `yaml:"driver"`
	// Path is the SQLite database file.
	Path string `yaml:"path"`
}

// ReaderConfig tunes definition file parsing.
type ReaderConfig struct {
	// MaxConcurrency bounds parallel parsing. 0 means GOMAXPROCS.
	MaxConcurrency int `yaml:"max_concurrency"`
}

// ExportConfig configures definition export.
type ExportConfig struct {
	// Directory receives exported files. Empty means a new temp directory.
	Directory string `yaml:"directory"`
}

// SensitiveContentConfig configures the secret scan run during validation.
type SensitiveContentConfig struct {
	Enabled         bool     `yaml:"enabled"`
	DisableGitleaks bool     `yaml:"disable_gitleaks"`
	Patterns        []string `yaml:"patterns"`
}

// ConfigLoader loads system configuration from disk.
type ConfigLoader struct{}

// NewConfigLoader creates a new system config loader.
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// DefaultConfig returns a Config with safe defaults for all fields.
// This is used when no system config file exists.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   DefaultDatabasePath(),
		},
		SensitiveContent: SensitiveContentConfig{
			Enabled:  true,
			Patterns: []string{},
		},
	}
}

// DefaultDatabasePath returns ~/.defimport/definitions.db, or a relative
// path when the home directory is unknown.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "definitions.db"
	}
	return filepath.Join(home, ".defimport", "definitions.db")
}

// LoadConfig implements ports.SystemConfigProvider.
func (l *ConfigLoader) LoadConfig(_ context.Context, path string) (*Config, error) {
	return l.Load(path)
}

// Load loads the system configuration from the specified path.
// If the file does not exist, returns DefaultConfig() with safe defaults.
// Keys missing from the file keep their default values.
func (l *ConfigLoader) Load(path string) (*Config, error) {
	// Check if file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	//nolint:gosec // G304: path is user-provided config file, validated to exist above
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config: %w", err)
	}

	return Parse(data)
}

// Parse validates data against the config schema and decodes it over the
// defaults.
func Parse(data []byte) (*Config, error) {
	config := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return config, nil
	}
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}
	if config.Database.Driver == DriverSQLite && config.Database.Path == "" {
		config.Database.Path = DefaultDatabasePath()
	}
	if config.RequiredVersion != "" {
		if _, err := semver.NewConstraint(config.RequiredVersion); err != nil {
			return nil, fmt.Errorf("invalid required_version %q: %w", config.RequiredVersion, err)
		}
	}

	return config, nil
}

// CheckVersion returns an error when version does not satisfy
// RequiredVersion. Versions that are not semver, such as "dev", always pass.
func (c *Config) CheckVersion(version string) error {
	if c.RequiredVersion == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(c.RequiredVersion)
	if err != nil {
		return fmt.Errorf("invalid required_version %q: %w", c.RequiredVersion, err)
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return nil
	}
	if ok, errs := constraint.Validate(v); !ok {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("defimport %s does not satisfy required_version %q: %s", version, c.RequiredVersion, strings.Join(msgs, "; "))
	}
	return nil
}

func validateSchema(data []byte) error {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020

	if err := compiler.AddResource("config_schema.json", bytes.NewReader(configSchema)); err != nil {
		return fmt.Errorf("failed to add config schema: %w", err)
	}
	schema, err := compiler.Compile("config_schema.json")
	if err != nil {
		return fmt.Errorf("failed to compile config schema: %w", err)
	}

	jsonData, err := yaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("failed to parse system config: %w", err)
	}
	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("failed to parse system config: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var validationErr *jsonschema.ValidationError
		if errors.As(err, &validationErr) {
			return formatSchemaValidationError(validationErr)
		}
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// formatSchemaValidationError formats a JSON Schema validation error into a readable message.
func formatSchemaValidationError(err *jsonschema.ValidationError) error {
	var messages []string

	var collectErrors func(*jsonschema.ValidationError)
	collectErrors = func(e *jsonschema.ValidationError) {
		if e.Message != "" && len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, fmt.Sprintf("%s: %s", location, e.Message))
		}
		for _, cause := range e.Causes {
			collectErrors(cause)
		}
	}
	collectErrors(err)

	if len(messages) == 0 {
		return fmt.Errorf("config validation failed")
	}
	return fmt.Errorf("config validation failed:\n    - %s", strings.Join(messages, "\n    - "))
}
