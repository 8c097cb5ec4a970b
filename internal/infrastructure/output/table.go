package output

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/domain/validation"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorBold   = "\033[1m"
)

// TableFormatter formats results as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", 80), colorGray)
}

// FormatReport writes the validation report.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) FormatReport(view *dto.ReportView) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Directory: %s\n", f.colorize(view.Directory, colorBold))
	fmt.Fprintf(f.writer, "Import ID: %s\n", view.ImportID)
	fmt.Fprintf(f.writer, "Definitions: %d\n", len(view.Definitions))
	fmt.Fprintln(f.writer)

	if len(view.Messages) == 0 {
		fmt.Fprintln(f.writer, f.colorize("✓ No problems found.", colorGreen))
	} else {
		fmt.Fprintln(f.writer, f.colorize("Messages:", colorBold))
		for _, m := range view.Messages {
			f.formatMessage(m)
		}
	}

	fmt.Fprintln(f.writer, f.rule())
	status := f.colorize("VALID", colorGreen)
	if !view.Valid {
		status = f.colorize("INVALID", colorRed)
	}
	fmt.Fprintf(f.writer, "%s  %d error(s), %d warning(s)\n", status, view.Errors, view.Warnings)
	return nil
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatMessage(m validation.Message) {
	symbol, color := "⚠", colorYellow
	if m.IsError() {
		symbol, color = "✗", colorRed
	}
	fmt.Fprintf(f.writer, "  %s %s %s\n", f.colorize(symbol, color), f.colorize(string(m.Kind), color), m.Text())
}

// FormatImport writes the import result.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatImport(resp *dto.ImportResponse) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Import ID: %s\n", resp.ImportID)
	fmt.Fprintf(f.writer, "Duration: %s\n", resp.Metadata.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DEFINITION\tACTION\tREVISION\tRENAMED FROM")
	for _, o := range resp.Outcomes {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", o.DefinitionID, o.Action, o.Revision, o.RenamedFrom)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "%s  %d created, %d updated, %d unchanged, %d label(s), %d filter(s)\n",
		f.colorize("IMPORTED", colorGreen),
		resp.Count(dto.ActionCreated), resp.Count(dto.ActionUpdated), resp.Count(dto.ActionSkipped),
		resp.Labels, resp.Filters)
	return nil
}

// FormatList writes the definition listing.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatList(resp *dto.ListResponse) error {
	if len(resp.Definitions) == 0 {
		fmt.Fprintln(f.writer, "No definitions imported.")
		return nil
	}

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tPARENT\tABSTRACT\tREVISION\tFILE\tMODIFIED")
	for _, d := range resp.Definitions {
		modified := ""
		if !d.ModifiedOn.IsZero() {
			modified = d.ModifiedOn.Format(time.RFC3339)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%d\t%s\t%s\n",
			d.Identifier, d.Type, d.ParentID, d.Abstract, d.Revision, d.FileName, modified)
	}
	return tw.Flush()
}

// FormatExport writes the export result.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) FormatExport(resp *dto.ExportResponse) error {
	fmt.Fprintf(f.writer, "Exported %d file(s) to %s\n", len(resp.Files), f.colorize(resp.Directory, colorBold))
	for _, file := range resp.Files {
		fmt.Fprintf(f.writer, "  %s\n", file)
	}
	return nil
}
