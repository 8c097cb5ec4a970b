package values

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewDisplayType_Normalizes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, DisplayEditable, NewDisplayType(" Editable "))
	assert.Equal(t, DisplayDelete, NewDisplayType("DELETE"))
	assert.Equal(t, DisplayUnset, NewDisplayType(""))
	assert.Equal(t, DisplayType("custom"), NewDisplayType("custom"))
}

func Test_DisplayType_Predicates(t *testing.T) {
	t.Parallel()

	assert.True(t, DisplayDelete.IsDeleted())
	assert.False(t, DisplaySystem.IsDeleted())
	assert.True(t, DisplaySystem.IsDisabled())
	assert.False(t, DisplayHidden.IsDisabled())
	assert.False(t, DisplayUnset.IsSet())
	assert.True(t, DisplayReadOnly.IsSet())
}
