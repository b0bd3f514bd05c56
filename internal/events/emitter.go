package events

import (
	"context"
	"log/slog"
	"sync"
)

// InMemoryEventEmitter dispatches events synchronously to handlers registered
// in the same process. Registration normally happens once at startup;
// emission happens on request paths, so the handler list is copied under a
// read lock before dispatch.
type InMemoryEventEmitter struct {
	mu       sync.RWMutex
	handlers []EventHandler
	logger   *slog.Logger
}

var _ EventEmitter = (*InMemoryEventEmitter)(nil)

// NewInMemoryEventEmitter creates an emitter with no handlers registered.
func NewInMemoryEventEmitter(logger *slog.Logger) *InMemoryEventEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemoryEventEmitter{
		logger: logger.With("component", "in_memory_event_emitter"),
	}
}

// RegisterHandler adds a handler that will receive every subsequent event.
func (e *InMemoryEventEmitter) RegisterHandler(handler EventHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = append(e.handlers, handler)
	e.logger.Debug("registered event handler", "handler_count", len(e.handlers))
}

func (e *InMemoryEventEmitter) snapshot() []EventHandler {
	e.mu.RLock()
	defer e.mu.RUnlock()
	handlers := make([]EventHandler, len(e.handlers))
	copy(handlers, e.handlers)
	return handlers
}

// EmitEvent delivers the event to every registered handler in registration
// order. A failing handler does not stop delivery to the rest; the first
// failure is returned after all handlers have run. An event with no handlers
// is logged and dropped, not an error: during startup the services exist
// before the task pipeline registers itself.
func (e *InMemoryEventEmitter) EmitEvent(ctx context.Context, event *TaskRequestEvent) error {
	handlers := e.snapshot()

	if len(handlers) == 0 {
		e.logger.Warn("no handlers registered, dropping event",
			"event_id", event.ID,
			"event_type", event.Type)
		return nil
	}

	e.logger.Debug("emitting event",
		"event_id", event.ID,
		"event_type", event.Type,
		"handler_count", len(handlers))

	var firstErr error
	for i, handler := range handlers {
		if err := handler.HandleEvent(ctx, event); err != nil {
			e.logger.Error("event handler failed",
				"error", err,
				"handler_index", i,
				"event_id", event.ID,
				"event_type", event.Type)
			if firstErr == nil {
				firstErr = err
			}
		}
	}

	return firstErr
}
