package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/spf13/cobra"
)

var (
	importOpts = DefaultCommonOptions()
	assumeYes  bool
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <directory>",
	Short: "Validate a directory of definitions and store the compiled result",
	Long: `Validate the directory exactly like 'validate' and, when the report has no
blocking errors, store the file contents and every affected compiled
definition in one transaction. Definitions whose compiled form did not
change keep their revision.

In an interactive terminal the import asks for confirmation unless --yes
is given. Non-interactive sessions require --yes.`,
	Args: cobra.ExactArgs(1),
	RunE: withContainer(runImport),
}

func init() {
	rootCmd.AddCommand(importCmd)
	importOpts.RegisterFlags(importCmd)
	importCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Import without asking for confirmation")
}

func runImport(cc *CommandContext, cmd *cobra.Command, args []string) error {
	factory := cc.Container.Formatters()
	if err := importOpts.ValidateFlags(factory.SupportedFormats()); err != nil {
		return err
	}
	ctx, cancel := importOpts.ApplyToContext(cc.Context)
	defer cancel()

	svc := cc.Container.ImportService()
	result, err := svc.Validate(ctx, dto.ValidateRequest{Directory: args[0]})
	if err != nil {
		return err
	}

	formatter, closeOut, err := importOpts.Formatter(cmd, factory)
	if err != nil {
		return err
	}
	defer closeOut()

	view := result.View()
	if !view.Valid {
		if err := formatter.FormatReport(view); err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		return fmt.Errorf("import aborted: %d validation error(s)", view.Errors)
	}
	for _, m := range result.Report.Warnings() {
		cc.Logger.Warn("validation warning", "kind", string(m.Kind), "message", m.Text())
	}

	ok, err := confirmImport(ctx, cc, view)
	if err != nil {
		return err
	}
	if !ok {
		cc.Logger.Info("import cancelled", "directory", view.Directory)
		return nil
	}

	cc.Container.Notifier().Subscribe(func(context.Context) {
		cc.Logger.Debug("stored definitions changed", "import_id", view.ImportID)
	})

	resp, err := svc.Import(ctx, result.Batch)
	if err != nil {
		return err
	}
	if err := formatter.FormatImport(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	return nil
}

func confirmImport(ctx context.Context, cc *CommandContext, view *dto.ReportView) (bool, error) {
	if assumeYes {
		return true, nil
	}
	confirmer := cc.Container.Confirmer()
	if !confirmer.IsInteractive() {
		return false, errors.New("refusing to import without confirmation in a non-interactive session (use --yes)")
	}
	return confirmer.ConfirmImport(ctx, view)
}
