package events

import (
	"log/slog"

	"github.com/c360/waverobot/errors"
)

// HandlerFunc processes one event. A non-nil error aborts the remaining
// dispatch for the bundle.
type HandlerFunc func(*Event) error

// Dispatcher routes events to handlers by type. The zero value is not
// usable; construct with NewDispatcher.
type Dispatcher struct {
	handlers map[Type]HandlerFunc
	logger   *slog.Logger
}

// NewDispatcher builds an empty dispatcher. A nil logger falls back to
// slog.Default.
func NewDispatcher(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		handlers: make(map[Type]HandlerFunc),
		logger:   logger,
	}
}

// Bind registers the handler for an event type, replacing any previous
// binding.
func (d *Dispatcher) Bind(t Type, fn HandlerFunc) {
	d.handlers[t] = fn
}

// Bound reports whether a handler is registered for the type.
func (d *Dispatcher) Bound(t Type) bool {
	_, ok := d.handlers[t]
	return ok
}

// Dispatch runs the bundle's events through the bound handlers in bundle
// order. Events with an unknown type tag are skipped, as are events with
// no bound handler. The first handler error stops the run and is returned
// wrapped, so the caller fails the whole request rather than replying with
// operations from a half-processed bundle.
func (d *Dispatcher) Dispatch(b *Bundle) error {
	for _, e := range b.Events() {
		if !e.Type().Known() {
			d.logger.Debug("skipping unknown event type", "type", string(e.Type()))
			continue
		}
		fn, ok := d.handlers[e.Type()]
		if !ok {
			continue
		}
		if err := fn(e); err != nil {
			d.logger.Error("event handler failed",
				"type", string(e.Type()),
				"modifiedBy", e.ModifiedBy(),
				"error", err)
			return errors.Wrap(err, "Dispatcher", "Dispatch", string(e.Type())+" handler")
		}
	}
	return nil
}
