package task

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// MockTask is the in-package Task double for queue and runner tests. The
// real TopicGenerationTask drags in stores and a generator; the runner only
// needs something it can identify, persist, and execute.
type MockTask struct {
	TaskID      uuid.UUID
	TaskType    string
	TaskPayload []byte
	TaskStatus  TaskStatus
	ExecuteFn   func(ctx context.Context) error
}

var _ Task = (*MockTask)(nil)

// NewMockTask creates a pending MockTask whose Execute succeeds.
func NewMockTask(id uuid.UUID, taskType string, payload []byte) *MockTask {
	return &MockTask{
		TaskID:      id,
		TaskType:    taskType,
		TaskPayload: payload,
		TaskStatus:  TaskStatusPending,
	}
}

// ID returns the task's unique identifier.
func (t *MockTask) ID() uuid.UUID {
	return t.TaskID
}

// Type returns the task type identifier.
func (t *MockTask) Type() string {
	return t.TaskType
}

// Payload returns the task data as stored.
func (t *MockTask) Payload() []byte {
	return t.TaskPayload
}

// Status returns the current task status.
func (t *MockTask) Status() TaskStatus {
	return t.TaskStatus
}

// Execute runs ExecuteFn when set and succeeds otherwise.
func (t *MockTask) Execute(ctx context.Context) error {
	if t.ExecuteFn == nil {
		return nil
	}
	return t.ExecuteFn(ctx)
}

// MockPayload is the JSON payload CreateMockTaskWithPayload serializes.
type MockPayload struct {
	Message string    `json:"message"`
	Created time.Time `json:"created"`
}

// CreateMockTaskWithPayload builds a MockTask carrying a small JSON payload,
// for tests that care about payload round-trips through the store.
func CreateMockTaskWithPayload(message string) *MockTask {
	data, _ := json.Marshal(MockPayload{
		Message: message,
		Created: time.Now().UTC(),
	})
	return NewMockTask(uuid.New(), "mock_task", data)
}
