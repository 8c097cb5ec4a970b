package main

import (
	"fmt"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/spf13/cobra"
)

var (
	exportOpts    = DefaultCommonOptions()
	exportFilters FilterFlags
	exportDir     string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write stored definitions back to XML files",
	Long: `Write the stored content of the selected definitions to a directory, one
file per definition named by its original file name. Without selection
flags every stored definition is exported. Without --output-dir the
configured export directory is used, or a new temporary directory.`,
	Args: cobra.NoArgs,
	RunE: withContainer(runExport),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportOpts.RegisterFlags(exportCmd)
	exportFilters.RegisterFlags(exportCmd)
	exportCmd.Flags().StringVar(&exportDir, "output-dir", "", "Directory receiving the exported files")
}

func runExport(cc *CommandContext, cmd *cobra.Command, _ []string) error {
	factory := cc.Container.Formatters()
	if err := exportOpts.ValidateFlags(factory.SupportedFormats()); err != nil {
		return err
	}
	ctx, cancel := exportOpts.ApplyToContext(cc.Context)
	defer cancel()

	dir := exportDir
	if dir == "" {
		dir = cc.Container.SystemConfig().Export.Directory
	}

	resp, err := cc.Container.ImportService().Export(ctx, dto.ExportRequest{
		Filters:   exportFilters.Options(),
		TargetDir: dir,
	})
	if err != nil {
		return err
	}

	formatter, closeOut, err := exportOpts.Formatter(cmd, factory)
	if err != nil {
		return err
	}
	defer closeOut()

	if err := formatter.FormatExport(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}
