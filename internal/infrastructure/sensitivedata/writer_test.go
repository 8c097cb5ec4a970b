package sensitivedata_test

import (
	"bytes"
	"testing"

	"github.com/reglet-dev/defimport/internal/infrastructure/sensitivedata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Writer_WithScanner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	scanner, err := sensitivedata.New(sensitivedata.Config{
		Patterns:        []string{"secret"},
		DisableGitleaks: true,
	})
	require.NoError(t, err)

	writer := sensitivedata.NewWriter(&buf, scanner)

	texts := []string{
		"Part 1 with secret.\n",
		"Part 2 is safe.\n",
		"Part 3 has another secret.\n",
	}
	for _, text := range texts {
		n, err := writer.Write([]byte(text))
		require.NoError(t, err)
		assert.Equal(t, len(text), n)
	}

	expected := "Part 1 with [REDACTED].\nPart 2 is safe.\nPart 3 has another [REDACTED].\n"
	assert.Equal(t, expected, buf.String())
}

func Test_Writer_WithoutScanner(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writer := sensitivedata.NewWriter(&buf, nil)

	input := "This is a secret."
	n, err := writer.Write([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, len(input), n)
	assert.Equal(t, input, buf.String())
}
