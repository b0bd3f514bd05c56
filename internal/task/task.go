package task

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// TaskStatus is the lifecycle state of a task as persisted in the tasks
// table: pending, then processing, then completed or failed.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type identifiers. The value is stored in the tasks.type column and
// selects the reconstructor during recovery.
const (
	// TaskTypeTopicGeneration generates flashcards for a topic with an AI
	// provider.
	TaskTypeTopicGeneration = "topic_generation"
)

// Task is a unit of background work.
type Task interface {
	// ID returns the task's unique identifier.
	ID() uuid.UUID

	// Type returns the task type identifier.
	Type() string

	// Payload returns the serialized task data persisted alongside it.
	Payload() []byte

	// Status returns the current task status.
	Status() TaskStatus

	// Execute runs the task logic.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the worker-side view of the queue.
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks.
	GetChannel() <-chan Task
}

// TaskQueueWriter is the submitter-side view of the queue.
type TaskQueueWriter interface {
	// Enqueue adds a task for processing. It fails when the queue is full
	// or closed.
	Enqueue(task Task) error

	// Close stops further submissions; already queued tasks still drain.
	Close()
}

// TaskStore persists tasks and their status transitions.
type TaskStore interface {
	// SaveTask inserts the task row.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus moves a task to the given status. errorMsg travels
	// with the transition; callers pass an empty string except on failure.
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks returns every task still waiting to run, oldest first.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks returns in-flight tasks. A non-zero olderThan
	// restricts the result to tasks that entered processing at least that
	// long ago.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a TaskStore bound to the given transaction so task
	// writes can join a caller-managed unit of work.
	WithTx(tx *sql.Tx) TaskStore
}

// TaskReconstructor rebuilds an executable task from its persisted form.
// Implementations must keep the given task ID so that status updates for the
// rebuilt task land on the existing row in the tasks table.
type TaskReconstructor func(taskID uuid.UUID, payload []byte) (Task, error)
