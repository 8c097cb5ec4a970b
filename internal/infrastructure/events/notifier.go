// Package events delivers change notifications to in-process listeners.
package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reglet-dev/defimport/internal/application/ports"
)

// Ensure interface compliance
var _ ports.ChangeNotifier = (*Notifier)(nil)

// Listener is called after definitions have changed.
type Listener func(ctx context.Context)

// Notifier fans a "definitions changed" event out to registered listeners.
type Notifier struct {
	logger    *slog.Logger
	listeners []Listener
	mu        sync.RWMutex
}

// NewNotifier creates a notifier with no listeners.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Subscribe registers l for every future notification.
func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// DefinitionsChanged calls every listener in registration order. A panicking
// listener is logged and does not stop the others.
func (n *Notifier) DefinitionsChanged(ctx context.Context) {
	n.mu.RLock()
	listeners := append([]Listener(nil), n.listeners...)
	n.mu.RUnlock()

	n.logger.Debug("definitions changed", "listeners", len(listeners))
	for _, l := range listeners {
		n.call(ctx, l)
	}
}

func (n *Notifier) call(ctx context.Context, l Listener) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Error("change listener panicked", "panic", r)
		}
	}()
	l(ctx)
}
