package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/reglet-dev/defimport/internal/infrastructure/sensitivedata"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile  string
	logLevel string
	verbose  bool
	quiet    bool
)

// rootCmd is the application entry point.
var rootCmd = &cobra.Command{
	Use:   "defimport",
	Short: "Validate, compile and import XML definitions",
	Long: `defimport reads a directory of XML definition files, validates them,
resolves their inheritance hierarchy into compiled definitions and stores
the result with a revision history. Stored definitions can be listed and
exported back to files.`,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return setupLogging(os.Stderr)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.defimport/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().String("driver", "", "storage driver: memory, sqlite (overrides config)")
	rootCmd.PersistentFlags().String("database", "", "SQLite database path (overrides config)")

	_ = viper.BindPFlag("database.driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("database"))
}

// initConfig resolves the config file path and environment overrides.
// The file itself is parsed and schema checked by the container.
func initConfig() {
	if cfgFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			cfgFile = filepath.Join(home, ".defimport", "config.yaml")
		}
	}

	viper.SetEnvPrefix("DEFIMPORT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if path := viper.GetString("config"); path != "" && !rootCmd.PersistentFlags().Changed("config") {
		cfgFile = path
	}
	slog.Debug("using config file", "file", cfgFile)
}

func setupLogging(w io.Writer) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	switch {
	case verbose && quiet:
		return fmt.Errorf("--verbose and --quiet are mutually exclusive")
	case verbose:
		level = slog.LevelDebug
	case quiet:
		level = slog.LevelError
	}

	// Log output never carries secrets found in definition content.
	if scanner, err := sensitivedata.New(sensitivedata.Config{DisableGitleaks: true}); err == nil {
		w = sensitivedata.NewWriter(w, scanner)
	}

	// Using TextHandler for CLI friendliness
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid --log-level %q: %w", s, err)
	}
	return level, nil
}
