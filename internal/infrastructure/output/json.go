package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/defimport/internal/application/dto"
)

// JSONFormatter formats results as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// NewJSONFormatter creates a new JSON formatter.
// If indent is true, the output will be pretty-printed with indentation.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// FormatReport writes the validation report as JSON.
func (f *JSONFormatter) FormatReport(view *dto.ReportView) error {
	return f.encode(view)
}

// FormatImport writes the import result as JSON.
func (f *JSONFormatter) FormatImport(resp *dto.ImportResponse) error {
	return f.encode(resp)
}

// FormatList writes the definition listing as JSON.
func (f *JSONFormatter) FormatList(resp *dto.ListResponse) error {
	return f.encode(resp)
}

// FormatExport writes the export result as JSON.
func (f *JSONFormatter) FormatExport(resp *dto.ExportResponse) error {
	return f.encode(resp)
}

func (f *JSONFormatter) encode(v any) error {
	encoder := json.NewEncoder(f.writer)
	if f.indent {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}
