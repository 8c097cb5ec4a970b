// Package prompt provides interactive terminal prompts.
package prompt

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/application/ports"
)

// Ensure interface compliance
var _ ports.Confirmer = (*TerminalConfirmer)(nil)

// TerminalConfirmer asks for import approval on the terminal.
type TerminalConfirmer struct{}

// NewTerminalConfirmer creates a new TerminalConfirmer.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalConfirmer) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	// Check if it's a character device (terminal) and not a pipe/file
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// ConfirmImport shows a summary of the validated batch and asks whether to
// import it. The default answer is no.
func (p *TerminalConfirmer) ConfirmImport(ctx context.Context, report *dto.ReportView) (bool, error) {
	confirmed := false
	confirm := huh.NewConfirm().
		Title(fmt.Sprintf("Import %d definition(s) from %s?", len(report.Definitions), report.Directory)).
		Description(describeReport(report)).
		Affirmative("Import").
		Negative("Cancel").
		Value(&confirmed)

	err := huh.NewForm(huh.NewGroup(confirm)).RunWithContext(ctx)
	if err != nil {
		return false, err
	}
	return confirmed, nil
}

// describeReport returns a short description of what an import would do.
func describeReport(report *dto.ReportView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d warning(s)", report.Warnings)
	if len(report.Definitions) > 0 {
		shown := report.Definitions
		if len(shown) > 5 {
			shown = shown[:5]
		}
		fmt.Fprintf(&b, "; definitions: %s", strings.Join(shown, ", "))
		if rest := len(report.Definitions) - len(shown); rest > 0 {
			fmt.Fprintf(&b, " and %d more", rest)
		}
	}
	return b.String()
}
