// Package output provides formatters for defimport results.
package output

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"

	"github.com/owenrumney/go-sarif/v3/pkg/report/v210/sarif"
	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/reglet-dev/defimport/internal/domain/validation"
	"github.com/reglet-dev/defimport/internal/version"
)

// SARIFFormatter formats validation reports as SARIF 2.1.0 JSON.
// Each message kind becomes a rule and each message a result located in
// the definition file it concerns. Other results are written as JSON.
type SARIFFormatter struct {
	*JSONFormatter
	writer io.Writer
}

// NewSARIFFormatter creates a new SARIF formatter.
func NewSARIFFormatter(writer io.Writer, indent bool) *SARIFFormatter {
	return &SARIFFormatter{
		JSONFormatter: NewJSONFormatter(writer, indent),
		writer:        writer,
	}
}

// FormatReport writes the validation report as SARIF 2.1.0 JSON.
func (f *SARIFFormatter) FormatReport(view *dto.ReportView) error {
	report := sarif.NewReport()

	run := sarif.NewRunWithInformationURI("defimport", "https://github.com/reglet-dev/defimport")
	v := version.Get().Version
	run.Tool.Driver.Version = &v

	seen := make(map[validation.Kind]bool)
	for _, m := range view.Messages {
		if !seen[m.Kind] {
			seen[m.Kind] = true
			run.Tool.Driver.AddRule(newRule(m))
		}
		run.AddResult(newResult(view, m))
	}

	report.AddRun(run)

	if err := report.Write(f.writer); err != nil {
		return fmt.Errorf("failed to write SARIF output: %w", err)
	}
	_, err := f.writer.Write([]byte("\n"))
	return err
}

func newRule(m validation.Message) *sarif.ReportingDescriptor {
	name := string(m.Kind)
	rule := sarif.NewReportingDescriptor().WithID(name).WithName(name)
	rule.WithShortDescription(&sarif.MultiformatMessageString{Text: &name})
	rule.WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: level(m.Severity)})
	return rule
}

func newResult(view *dto.ReportView, m validation.Message) *sarif.Result {
	result := sarif.NewRuleResult(string(m.Kind))
	result.Level = level(m.Severity)
	result.Message = sarif.NewTextMessage(m.Text())

	if file := messageFile(view, m); file != "" {
		pLoc := sarif.NewPhysicalLocation().
			WithArtifactLocation(sarif.NewArtifactLocation().WithURI(filepath.ToSlash(filepath.Join(view.Directory, file))))
		if m.Kind == validation.KindSensitiveContent && len(m.Params) > 2 {
			if line, err := strconv.Atoi(m.Params[2]); err == nil && line > 0 {
				pLoc.WithRegion(sarif.NewRegion().WithStartLine(line))
			}
		}
		result.Locations = []*sarif.Location{sarif.NewLocation().WithPhysicalLocation(pLoc)}
	}

	props := sarif.NewPropertyBag()
	if m.DefinitionID != "" {
		props.Add("definition", m.DefinitionID)
	}
	result.WithProperties(props)
	return result
}

// messageFile returns the definition file a message concerns, if known.
func messageFile(view *dto.ReportView, m validation.Message) string {
	if m.Kind == validation.KindXMLParsingFailure && len(m.Params) > 0 {
		return m.Params[0]
	}
	return view.Files[m.DefinitionID]
}

func level(s validation.Severity) string {
	if s == validation.SeverityError {
		return "error"
	}
	return "warning"
}
