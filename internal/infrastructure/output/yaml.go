package output

import (
	"io"

	"github.com/goccy/go-yaml"
	"github.com/reglet-dev/defimport/internal/application/dto"
)

// YAMLFormatter formats results as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// FormatReport writes the validation report as YAML.
func (f *YAMLFormatter) FormatReport(view *dto.ReportView) error {
	return f.encode(view)
}

// FormatImport writes the import result as YAML.
func (f *YAMLFormatter) FormatImport(resp *dto.ImportResponse) error {
	return f.encode(resp)
}

// FormatList writes the definition listing as YAML.
func (f *YAMLFormatter) FormatList(resp *dto.ListResponse) error {
	return f.encode(resp)
}

// FormatExport writes the export result as YAML.
func (f *YAMLFormatter) FormatExport(resp *dto.ExportResponse) error {
	return f.encode(resp)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}
