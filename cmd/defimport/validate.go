package main

import (
	"fmt"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/spf13/cobra"
)

var validateOpts = DefaultCommonOptions()

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <directory>",
	Short: "Validate and compile a directory of definitions without storing them",
	Long: `Read every .xml file under the directory, validate the definitions
together with the ones already stored and compile the inheritance hierarchy.
Nothing is written. The command fails when the report has blocking errors.`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runValidate),
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateOpts.RegisterFlags(validateCmd)
}

func runValidate(cc *CommandContext, cmd *cobra.Command, args []string) error {
	factory := cc.Container.Formatters()
	if err := validateOpts.ValidateFlags(factory.SupportedFormats()); err != nil {
		return err
	}
	ctx, cancel := validateOpts.ApplyToContext(cc.Context)
	defer cancel()

	result, err := cc.Container.ImportService().Validate(ctx, dto.ValidateRequest{Directory: args[0]})
	if err != nil {
		return err
	}

	formatter, closeOut, err := validateOpts.Formatter(cmd, factory)
	if err != nil {
		return err
	}
	defer closeOut()

	view := result.View()
	if err := formatter.FormatReport(view); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	if !view.Valid {
		return fmt.Errorf("validation failed: %d error(s), %d warning(s)", view.Errors, view.Warnings)
	}
	return nil
}
