package task

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockTaskFactory records CreateTask calls and delegates to CreateTaskFn.
type mockTaskFactory struct {
	CreateTaskFn     func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error)
	CreateTaskCalled bool
	LastTaskID       uuid.UUID
	LastTopicID      uuid.UUID
	LastUserID       uuid.UUID
	LastParams       GenerationParams
}

func (m *mockTaskFactory) CreateTask(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
	m.CreateTaskCalled = true
	m.LastTaskID = taskID
	m.LastTopicID = topicID
	m.LastUserID = userID
	m.LastParams = params
	return m.CreateTaskFn(taskID, topicID, userID, params)
}

// mockTaskSubmitter records Submit calls and delegates to SubmitFn.
type mockTaskSubmitter struct {
	SubmitFn       func(ctx context.Context, task Task) error
	SubmitCalled   bool
	LastSubmitTask Task
}

func (m *mockTaskSubmitter) Submit(ctx context.Context, task Task) error {
	m.SubmitCalled = true
	m.LastSubmitTask = task
	return m.SubmitFn(ctx, task)
}

func newGenerationEvent(t *testing.T, topicID, userID uuid.UUID) *events.TaskRequestEvent {
	t.Helper()

	payload := events.TopicGenerationRequested{
		TopicID:  topicID,
		UserID:   userID,
		Provider: "google",
		Count:    10,
		CardType: "qa_hint",
	}
	event, err := events.NewTaskRequestEvent(events.EventTypeTopicGeneration, payload)
	require.NoError(t, err)
	return event
}

func TestTaskFactoryEventHandler_HandleEvent(t *testing.T) {
	// Create a minimal logger that discards output
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("successfully handle topic generation event", func(t *testing.T) {
		// Create mock dependencies
		createdTask := NewMockTask(uuid.New(), TaskTypeTopicGeneration, nil)

		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				return createdTask, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return nil
			},
		}

		// Create the handler
		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		// Create test data
		topicID := uuid.New()
		userID := uuid.New()
		event := newGenerationEvent(t, topicID, userID)

		// Test the handler
		err := handler.HandleEvent(context.Background(), event)
		assert.NoError(t, err)

		// Verify expectations
		assert.True(t, mockFactory.CreateTaskCalled)
		assert.Equal(t, event.ID, mockFactory.LastTaskID)
		assert.Equal(t, topicID, mockFactory.LastTopicID)
		assert.Equal(t, userID, mockFactory.LastUserID)
		assert.Equal(t, "google", mockFactory.LastParams.Provider)
		assert.Equal(t, 10, mockFactory.LastParams.Count)
		assert.Equal(t, "qa_hint", mockFactory.LastParams.CardType)
		assert.True(t, mockRunner.SubmitCalled)
		assert.Equal(t, Task(createdTask), mockRunner.LastSubmitTask)
	})

	t.Run("ignore unsupported event type", func(t *testing.T) {
		// Create mock dependencies
		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		// Create the handler
		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		// Create an event with an unsupported type
		event, err := events.NewTaskRequestEvent("unsupported_type", map[string]string{"key": "value"})
		require.NoError(t, err)

		// Test the handler
		err = handler.HandleEvent(context.Background(), event)
		assert.NoError(t, err)

		// Verify factory and runner were not called
		assert.False(t, mockFactory.CreateTaskCalled)
		assert.False(t, mockRunner.SubmitCalled)
	})

	t.Run("reject malformed payload", func(t *testing.T) {
		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		// topic_id must be a UUID string, not a number
		event := &events.TaskRequestEvent{
			ID:      uuid.New(),
			Type:    events.EventTypeTopicGeneration,
			Payload: json.RawMessage(`{"topic_id":42}`),
		}

		err := handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal payload")

		assert.False(t, mockFactory.CreateTaskCalled)
		assert.False(t, mockRunner.SubmitCalled)
	})

	t.Run("reject payload without topic ID", func(t *testing.T) {
		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		event := newGenerationEvent(t, uuid.Nil, uuid.New())

		err := handler.HandleEvent(context.Background(), event)
		assert.ErrorIs(t, err, ErrEmptyTopicID)

		assert.False(t, mockFactory.CreateTaskCalled)
		assert.False(t, mockRunner.SubmitCalled)
	})

	t.Run("reject payload without user ID", func(t *testing.T) {
		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				t.Fail() // Should not be called
				return nil, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		event := newGenerationEvent(t, uuid.New(), uuid.Nil)

		err := handler.HandleEvent(context.Background(), event)
		assert.ErrorIs(t, err, ErrEmptyUserID)

		assert.False(t, mockFactory.CreateTaskCalled)
		assert.False(t, mockRunner.SubmitCalled)
	})

	t.Run("handle task creation failure", func(t *testing.T) {
		// Create mock dependencies
		expectedErr := errors.New("task creation failed")

		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				return nil, expectedErr
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				t.Fail() // Should not be called
				return nil
			},
		}

		// Create the handler
		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		topicID := uuid.New()
		event := newGenerationEvent(t, topicID, uuid.New())

		// Test the handler
		err := handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create task")
		assert.ErrorIs(t, err, expectedErr)

		// Verify expectations
		assert.True(t, mockFactory.CreateTaskCalled)
		assert.Equal(t, topicID, mockFactory.LastTopicID)
		assert.False(t, mockRunner.SubmitCalled)
	})

	t.Run("handle task submission failure", func(t *testing.T) {
		// Create mock dependencies
		expectedErr := errors.New("task submission failed")
		createdTask := NewMockTask(uuid.New(), TaskTypeTopicGeneration, nil)

		mockFactory := &mockTaskFactory{
			CreateTaskFn: func(taskID, topicID, userID uuid.UUID, params GenerationParams) (Task, error) {
				return createdTask, nil
			},
		}

		mockRunner := &mockTaskSubmitter{
			SubmitFn: func(ctx context.Context, task Task) error {
				return expectedErr
			},
		}

		// Create the handler
		handler := NewTaskFactoryEventHandler(mockFactory, mockRunner, logger)

		topicID := uuid.New()
		event := newGenerationEvent(t, topicID, uuid.New())

		// Test the handler
		err := handler.HandleEvent(context.Background(), event)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to submit task")
		assert.ErrorIs(t, err, expectedErr)

		// Verify expectations
		assert.True(t, mockFactory.CreateTaskCalled)
		assert.Equal(t, topicID, mockFactory.LastTopicID)
		assert.True(t, mockRunner.SubmitCalled)
		assert.Equal(t, Task(createdTask), mockRunner.LastSubmitTask)
	})
}
