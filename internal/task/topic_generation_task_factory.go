package task

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// TopicGenerationTaskFactory creates TopicGenerationTask instances with the
// task's execution dependencies already wired in.
type TopicGenerationTaskFactory struct {
	topicService TopicService
	generator    Generator
	logger       *slog.Logger
}

// NewTopicGenerationTaskFactory creates a new factory for TopicGenerationTasks
func NewTopicGenerationTaskFactory(
	topicService TopicService,
	generator Generator,
	logger *slog.Logger,
) *TopicGenerationTaskFactory {
	if logger == nil {
		logger = slog.Default()
	}

	return &TopicGenerationTaskFactory{
		topicService: topicService,
		generator:    generator,
		logger:       logger.With("component", "topic_generation_task_factory"),
	}
}

// CreateTask creates a new TopicGenerationTask for the specified topic.
// The caller supplies the task ID; the API layer hands that ID to the client
// when it accepts a generation request, before the task row exists.
func (f *TopicGenerationTaskFactory) CreateTask(
	taskID uuid.UUID,
	topicID uuid.UUID,
	userID uuid.UUID,
	params GenerationParams,
) (Task, error) {
	if taskID == uuid.Nil {
		return nil, ErrEmptyTaskID
	}

	task, err := NewTopicGenerationTask(
		topicID,
		userID,
		params,
		f.topicService,
		f.generator,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	task.id = taskID
	return task, nil
}

// ReconstructTask rebuilds a TopicGenerationTask from a persisted payload,
// keeping the stored task ID so status updates land on the existing row.
// It has the TaskReconstructor signature and is registered with the runner
// for TaskTypeTopicGeneration.
func (f *TopicGenerationTaskFactory) ReconstructTask(taskID uuid.UUID, payload []byte) (Task, error) {
	var p topicGenerationPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal topic generation payload: %w", err)
	}

	task, err := NewTopicGenerationTask(
		p.TopicID,
		p.UserID,
		p.GenerationParams,
		f.topicService,
		f.generator,
		f.logger,
	)
	if err != nil {
		return nil, err
	}

	task.id = taskID
	return task, nil
}
