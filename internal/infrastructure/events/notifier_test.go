package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Notifier_DefinitionsChanged(t *testing.T) {
	t.Parallel()
	n := NewNotifier(nil)

	var calls []string
	n.Subscribe(func(context.Context) { calls = append(calls, "first") })
	n.Subscribe(func(context.Context) { panic("listener failure") })
	n.Subscribe(func(context.Context) { calls = append(calls, "third") })

	assert.NotPanics(t, func() { n.DefinitionsChanged(context.Background()) })
	assert.Equal(t, []string{"first", "third"}, calls)
}

func Test_Notifier_NoListeners(t *testing.T) {
	t.Parallel()
	assert.NotPanics(t, func() { NewNotifier(nil).DefinitionsChanged(context.Background()) })
}
