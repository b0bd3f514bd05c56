package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/events"
)

// taskFactory creates topic generation tasks from event payloads.
type taskFactory interface {
	CreateTask(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error)
}

// taskSubmitter persists and enqueues tasks for background processing.
type taskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// TaskFactoryEventHandler implements the events.EventHandler interface:
// it turns generation request events into tasks and submits them to the
// runner. Keeping this translation in an event handler means the API layer
// can request generation without importing the task machinery.
type TaskFactoryEventHandler struct {
	taskFactory taskFactory
	taskRunner  taskSubmitter
	logger      *slog.Logger
}

// NewTaskFactoryEventHandler creates a new event handler that uses the given
// task factory to create tasks and submits them to the provided task runner.
func NewTaskFactoryEventHandler(
	factory taskFactory,
	runner taskSubmitter,
	logger *slog.Logger,
) *TaskFactoryEventHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &TaskFactoryEventHandler{
		taskFactory: factory,
		taskRunner:  runner,
		logger:      logger.With("component", "task_factory_event_handler"),
	}
}

// HandleEvent processes generation request events by creating and submitting
// tasks. Events of other types are ignored.
func (h *TaskFactoryEventHandler) HandleEvent(
	ctx context.Context,
	event *events.TaskRequestEvent,
) error {
	if event.Type != events.EventTypeTopicGeneration {
		h.logger.Debug("ignoring event with unsupported type",
			"event_type", event.Type,
			"event_id", event.ID)
		return nil
	}

	var payload events.TopicGenerationRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		h.logger.Error("failed to unmarshal payload", "error", err, "event_id", event.ID)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	if payload.TopicID == uuid.Nil {
		h.logger.Error("event payload has no topic ID", "event_id", event.ID)
		return ErrEmptyTopicID
	}
	if payload.UserID == uuid.Nil {
		h.logger.Error("event payload has no user ID", "event_id", event.ID)
		return ErrEmptyUserID
	}

	// Create the task. The event ID becomes the task ID: the API layer
	// already returned it to the client when it accepted the request, so
	// status updates must land on that identifier.
	h.logger.Debug("creating task for topic",
		"topic_id", payload.TopicID,
		"event_id", event.ID)
	task, err := h.taskFactory.CreateTask(event.ID, payload.TopicID, payload.UserID, GenerationParams{
		Provider: payload.Provider,
		Model:    payload.Model,
		Count:    payload.Count,
		CardType: payload.CardType,
	})
	if err != nil {
		h.logger.Error("failed to create task",
			"error", err,
			"topic_id", payload.TopicID,
			"event_id", event.ID)
		return fmt.Errorf("failed to create task: %w", err)
	}

	// Submit the task to the runner
	h.logger.Debug("submitting task to runner",
		"task_id", task.ID(),
		"topic_id", payload.TopicID,
		"event_id", event.ID)
	if err := h.taskRunner.Submit(ctx, task); err != nil {
		h.logger.Error("failed to submit task",
			"error", err,
			"task_id", task.ID(),
			"topic_id", payload.TopicID,
			"event_id", event.ID)
		return fmt.Errorf("failed to submit task: %w", err)
	}

	h.logger.Info("task created and submitted successfully",
		"task_id", task.ID(),
		"topic_id", payload.TopicID,
		"event_id", event.ID)
	return nil
}

// Ensure TaskFactoryEventHandler implements events.EventHandler
var _ events.EventHandler = (*TaskFactoryEventHandler)(nil)
