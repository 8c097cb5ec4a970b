package main

import (
	"fmt"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/spf13/cobra"
)

var (
	listOpts    = DefaultCommonOptions()
	listFilters FilterFlags
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported definitions",
	Long: `List the stored definitions with their file, type, parent and current
revision.

Filtering:
  --id A,B                 Only the given identifiers
  --type case              Only definitions of the given types
  --no-abstract            Skip abstract definitions
  --filter "revision > 1"  Advanced filter expression`,
	Args: cobra.NoArgs,
	RunE: withContainer(runList),
}

func init() {
	rootCmd.AddCommand(listCmd)
	listOpts.RegisterFlags(listCmd)
	listFilters.RegisterFlags(listCmd)
}

func runList(cc *CommandContext, cmd *cobra.Command, _ []string) error {
	factory := cc.Container.Formatters()
	if err := listOpts.ValidateFlags(factory.SupportedFormats()); err != nil {
		return err
	}
	ctx, cancel := listOpts.ApplyToContext(cc.Context)
	defer cancel()

	resp, err := cc.Container.ImportService().ImportedDefinitions(ctx, dto.ListRequest{
		Filters: listFilters.Options(),
	})
	if err != nil {
		return err
	}

	formatter, closeOut, err := listOpts.Formatter(cmd, factory)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := formatter.FormatList(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
