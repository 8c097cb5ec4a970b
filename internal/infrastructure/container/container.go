// Package container provides dependency injection for the application.
package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "github.com/reglet-dev/defimport/internal/application/errors"
	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/reglet-dev/defimport/internal/application/services"
	"github.com/reglet-dev/defimport/internal/infrastructure/events"
	"github.com/reglet-dev/defimport/internal/infrastructure/output"
	"github.com/reglet-dev/defimport/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/defimport/internal/infrastructure/persistence/sqlite"
	"github.com/reglet-dev/defimport/internal/infrastructure/prompt"
	"github.com/reglet-dev/defimport/internal/infrastructure/sensitivedata"
	"github.com/reglet-dev/defimport/internal/infrastructure/source"
	"github.com/reglet-dev/defimport/internal/infrastructure/system"
	"github.com/reglet-dev/defimport/internal/version"
)

// Container holds all application dependencies.
type Container struct {
	importService *services.DefinitionImportService
	notifier      *events.Notifier
	scanner       *sensitivedata.Scanner
	formatters    ports.OutputFormatterFactory
	confirmer     ports.Confirmer
	systemCfg     *system.Config
	logger        *slog.Logger
	closeStore    func() error
}

// Options configure the container.
type Options struct {
	Logger           *slog.Logger
	SystemConfigPath string
	// DatabaseDriver and DatabasePath override the system config when set.
	DatabaseDriver string
	DatabasePath   string
	// SystemConfigProvider overrides the file-based config loader.
	SystemConfigProvider ports.SystemConfigProvider
	// Confirmer overrides the terminal import prompt.
	Confirmer ports.Confirmer
}

// New creates a new dependency injection container.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.SystemConfigProvider == nil {
		opts.SystemConfigProvider = system.NewConfigLoader()
	}
	if opts.Confirmer == nil {
		opts.Confirmer = prompt.NewTerminalConfirmer()
	}

	configPath := opts.SystemConfigPath
	if configPath == "" {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			configPath = filepath.Join(homeDir, ".defimport", "config.yaml")
		}
	}

	systemCfg, err := opts.SystemConfigProvider.LoadConfig(ctx, configPath)
	if err != nil {
		return nil, apperrors.NewConfigurationError("system config", configPath, err)
	}
	if err := systemCfg.CheckVersion(version.Get().Version); err != nil {
		return nil, apperrors.NewConfigurationError("required_version", systemCfg.RequiredVersion, err)
	}
	if opts.DatabaseDriver != "" {
		systemCfg.Database.Driver = opts.DatabaseDriver
	}
	if opts.DatabasePath != "" {
		systemCfg.Database.Path = opts.DatabasePath
	}

	var scanner *sensitivedata.Scanner
	if systemCfg.SensitiveContent.Enabled {
		scanner, err = sensitivedata.New(sensitivedata.Config{
			Patterns:        systemCfg.SensitiveContent.Patterns,
			DisableGitleaks: systemCfg.SensitiveContent.DisableGitleaks,
		})
		if err != nil {
			return nil, apperrors.NewConfigurationError("sensitive_content", "scanner", err)
		}
	}

	repos, tx, closeStore, err := openStore(systemCfg.Database, opts.Logger)
	if err != nil {
		return nil, err
	}

	notifier := events.NewNotifier(opts.Logger)

	// A nil *Scanner must not become a non-nil interface value.
	var contentScanner ports.SensitiveContentScanner
	if scanner != nil {
		contentScanner = scanner
	}

	importService := services.NewDefinitionImportService(
		source.NewXMLReader(systemCfg.Reader.MaxConcurrency, opts.Logger),
		repos,
		tx,
		notifier,
		contentScanner,
		source.NewFileExporter(opts.Logger),
		opts.Logger,
	)

	return &Container{
		importService: importService,
		notifier:      notifier,
		scanner:       scanner,
		formatters:    output.NewFormatterFactory(),
		confirmer:     opts.Confirmer,
		systemCfg:     systemCfg,
		logger:        opts.Logger,
		closeStore:    closeStore,
	}, nil
}

func openStore(cfg system.DatabaseConfig, logger *slog.Logger) (services.Repositories, ports.TransactionManager, func() error, error) {
	switch cfg.Driver {
	case system.DriverMemory:
		store := memory.NewStore(logger)
		return services.Repositories{
			Contents:    memory.NewDefinitionContentRepository(store),
			Definitions: memory.NewDefinitionRepository(store),
			Labels:      memory.NewLabelRepository(store),
			Filters:     memory.NewFilterRepository(store),
		}, store, func() error { return nil }, nil

	case system.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return services.Repositories{}, nil, nil, apperrors.NewConfigurationError("database", cfg.Path, err)
		}
		store, err := sqlite.Open(cfg.Path, logger)
		if err != nil {
			return services.Repositories{}, nil, nil, apperrors.NewConfigurationError("database", cfg.Path, err)
		}
		logger.Debug("opened definition database", "path", cfg.Path)
		return services.Repositories{
			Contents:    sqlite.NewDefinitionContentRepository(store),
			Definitions: sqlite.NewDefinitionRepository(store),
			Labels:      sqlite.NewLabelRepository(store),
			Filters:     sqlite.NewFilterRepository(store),
		}, store, store.Close, nil

	default:
		return services.Repositories{}, nil, nil, apperrors.NewConfigurationError(
			"database", cfg.Driver, fmt.Errorf("unknown driver %q", cfg.Driver))
	}
}

// ImportService returns the definition import use cases.
func (c *Container) ImportService() *services.DefinitionImportService {
	return c.importService
}

// Notifier returns the change notifier so callers can subscribe.
func (c *Container) Notifier() *events.Notifier {
	return c.notifier
}

// Scanner returns the sensitive content scanner, nil when disabled.
func (c *Container) Scanner() *sensitivedata.Scanner {
	return c.scanner
}

// Formatters returns the output formatter factory.
func (c *Container) Formatters() ports.OutputFormatterFactory {
	return c.formatters
}

// Confirmer returns the interactive import confirmer.
func (c *Container) Confirmer() ports.Confirmer {
	return c.confirmer
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Close releases the store.
func (c *Container) Close() error {
	if c.closeStore == nil {
		return nil
	}
	return c.closeStore()
}
