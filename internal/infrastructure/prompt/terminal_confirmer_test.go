package prompt

import (
	"testing"

	"github.com/reglet-dev/defimport/internal/application/dto"
	"github.com/stretchr/testify/assert"
)

func Test_TerminalConfirmer_IsInteractive(t *testing.T) {
	// Not t.Parallel() because it interacts with os.Stdin
	assert.IsType(t, true, NewTerminalConfirmer().IsInteractive())
}

func Test_describeReport(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		report   *dto.ReportView
		expected string
	}{
		{
			name:     "empty",
			report:   &dto.ReportView{},
			expected: "0 warning(s)",
		},
		{
			name:     "few definitions",
			report:   &dto.ReportView{Definitions: []string{"A", "B"}, Warnings: 1},
			expected: "1 warning(s); definitions: A, B",
		},
		{
			name:     "many definitions",
			report:   &dto.ReportView{Definitions: []string{"A", "B", "C", "D", "E", "F", "G"}},
			expected: "0 warning(s); definitions: A, B, C, D, E and 2 more",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, describeReport(tt.report))
		})
	}
}
