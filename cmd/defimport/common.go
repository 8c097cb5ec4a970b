package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/application/ports"
	"github.com/spf13/cobra"
)

// CommonOptions contains flags shared across commands.
type CommonOptions struct {
	// Output
	Format  string
	OutFile string

	// Execution
	Timeout time.Duration

	NoColor bool
}

// DefaultCommonOptions returns sensible defaults.
func DefaultCommonOptions() CommonOptions {
	return CommonOptions{
		Timeout: 2 * time.Minute,
		Format:  "table",
	}
}

// RegisterFlags adds common flags to a cobra command.
func (opts *CommonOptions) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", opts.Timeout,
		"Global timeout for the command (0 to disable)")
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: table, json, yaml, sarif")
	cmd.Flags().StringVarP(&opts.OutFile, "output", "o", "",
		"Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false,
		"Disable colored table output")
}

// ApplyToContext applies timeout to context.
// Returns new context and cancel function.
func (opts *CommonOptions) ApplyToContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if opts.Timeout > 0 {
		return context.WithTimeout(ctx, opts.Timeout)
	}
	return ctx, func() {}
}

// ValidateFlags checks the options against the supported formats.
func (opts *CommonOptions) ValidateFlags(supported []string) error {
	if !slices.Contains(supported, opts.Format) && opts.Format != "text" {
		return fmt.Errorf("invalid format: %s (valid: %s)", opts.Format, strings.Join(supported, ", "))
	}
	return nil
}

// Formatter opens the output destination and creates the formatter. The
// returned close function must be called when output is complete.
func (opts *CommonOptions) Formatter(cmd *cobra.Command, factory ports.OutputFormatterFactory) (ports.OutputFormatter, func(), error) {
	var w io.Writer = cmd.OutOrStdout()
	closeFn := func() {}
	if opts.OutFile != "" {
		//nolint:gosec // G304: User-controlled output file path is intentional
		file, err := os.Create(opts.OutFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create output file: %w", err)
		}
		w = file
		closeFn = func() { _ = file.Close() }
	}

	formatter, err := factory.Create(opts.Format, w, ports.FormatterOptions{
		Indent: true,
		Color:  !opts.NoColor && opts.OutFile == "",
	})
	if err != nil {
		closeFn()
		return nil, nil, err
	}
	return formatter, closeFn, nil
}

// FilterFlags selects stored definitions for list and export.
type FilterFlags struct {
	Expression      string
	IDs             []string
	Types           []string
	ExcludeAbstract bool
}

// RegisterFlags adds the selection flags to a cobra command.
func (f *FilterFlags) RegisterFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.Expression, "filter", "",
		"Filter expression over id, type, parent, file, abstract, revision (e.g. \"type == 'case'\")")
	cmd.Flags().StringSliceVar(&f.IDs, "id", nil, "Select definitions by identifier (comma-separated)")
	cmd.Flags().StringSliceVar(&f.Types, "type", nil, "Select definitions by type (comma-separated)")
	cmd.Flags().BoolVar(&f.ExcludeAbstract, "no-abstract", false, "Skip abstract definitions")
}

// Options converts the flags into filter options.
func (f *FilterFlags) Options() dto.FilterOptions {
	return dto.FilterOptions{
		FilterExpression: f.Expression,
		IncludeIDs:       f.IDs,
		IncludeTypes:     f.Types,
		ExcludeAbstract:  f.ExcludeAbstract,
	}
}
