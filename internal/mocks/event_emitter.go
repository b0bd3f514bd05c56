package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/mnemo-api/internal/events"
)

// MockEventEmitter implements events.EventEmitter for testing
type MockEventEmitter struct {
	// EmitEventFn allows test cases to mock the EmitEvent behavior
	EmitEventFn func(ctx context.Context, event *events.TaskRequestEvent) error

	// Err is returned by the default implementation when set
	Err error

	// mu protects the emitted event log for concurrent test cases
	mu sync.Mutex

	// Events records every event passed to EmitEvent
	Events []*events.TaskRequestEvent
}

// EmitEvent implements the events.EventEmitter interface
func (m *MockEventEmitter) EmitEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	m.mu.Lock()
	m.Events = append(m.Events, event)
	m.mu.Unlock()

	// Use custom function if provided
	if m.EmitEventFn != nil {
		return m.EmitEventFn(ctx, event)
	}

	return m.Err
}

// LastEvent returns the most recent emitted event, or nil if none were emitted
func (m *MockEventEmitter) LastEvent() *events.TaskRequestEvent {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Events) == 0 {
		return nil
	}
	return m.Events[len(m.Events)-1]
}

// Ensure MockEventEmitter implements events.EventEmitter
var _ events.EventEmitter = (*MockEventEmitter)(nil)
