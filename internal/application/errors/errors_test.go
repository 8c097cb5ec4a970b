package apperrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ValidationError_Error(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "validation failed: directory: is required", NewValidationError("directory", "is required").Error())
	assert.Equal(t,
		"validation failed: batch: has blocking errors (2 issues)",
		NewValidationError("batch", "has blocking errors", "a", "b").Error(),
	)
}

func Test_PersistenceError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("disk full")
	err := NewPersistenceError("caseBase", "save content", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "persistence failed for definition caseBase (save content): disk full", err.Error())
	assert.Equal(t, "persistence failed (save labels): disk full", NewPersistenceError("", "save labels", cause).Error())
}

func Test_ExportError_And_ConfigurationError_Unwrap(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")

	assert.ErrorIs(t, NewExportError("write file", cause), cause)
	assert.ErrorIs(t, NewConfigurationError("database", "open", cause), cause)
	assert.Equal(t, "export failed: nothing to export", NewExportError("nothing to export", nil).Error())
	assert.Equal(t, "configuration error (config): bad", NewConfigurationError("config", "bad", nil).Error())
}
