package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/reglet-dev/defimport/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// The store is closed when the handler returns.
func withContainer(handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		logger := slog.Default()
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		c, err := container.New(ctx, container.Options{
			SystemConfigPath: cfgFile,
			DatabaseDriver:   viper.GetString("database.driver"),
			DatabasePath:     viper.GetString("database.path"),
			Logger:           logger,
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if cerr := c.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("failed to close store: %w", cerr)
			}
		}()

		return handler(&CommandContext{
			Container: c,
			Logger:    logger,
			Context:   ctx,
		}, cmd, args)
	}
}
