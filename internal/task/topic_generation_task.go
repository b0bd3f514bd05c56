package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// Common errors
var (
	ErrNilTopicService = errors.New("topic service cannot be nil")
	ErrNilGenerator    = errors.New("generator cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyTaskID     = errors.New("task ID cannot be empty")
	ErrEmptyTopicID    = errors.New("topic ID cannot be empty")
	ErrEmptyUserID     = errors.New("user ID cannot be empty")
	ErrTopicNotOwned   = errors.New("topic does not belong to the requesting user")
)

// TopicService defines the topic operations the generation task needs.
// The service layer implements this directly; declaring it here keeps the
// task package free of service imports.
type TopicService interface {
	// GetTopic retrieves a topic by its ID
	GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)

	// AppendGeneratedCards appends cards to the topic's collection up to the
	// per-topic card cap and reports how many were added and how many were
	// dropped because the cap was reached
	AppendGeneratedCards(ctx context.Context, topicID uuid.UUID, cards []domain.Card) (added, dropped int, err error)
}

// Generator defines the card generation operation the task needs.
// Implementations resolve provider credentials when the task runs so
// persisted task payloads never carry secrets.
type Generator interface {
	// GenerateTopicCards produces flashcards for the topic with the given
	// generation settings
	GenerateTopicCards(ctx context.Context, topic *domain.Topic, params GenerationParams) ([]domain.Card, error)
}

// GenerationParams carries the generation settings from the original request
// through the task payload.
type GenerationParams struct {
	// Provider selects the AI provider ("google", "openai", "anthropic", "xai")
	Provider string `json:"provider"`

	// Model overrides the provider's default model when non-empty
	Model string `json:"model,omitempty"`

	// Count is the number of cards to generate
	Count int `json:"count"`

	// CardType selects the card shape to generate
	CardType string `json:"card_type"`
}

// topicGenerationPayload is the serialized task data stored in the tasks
// table. It deliberately carries no credentials.
type topicGenerationPayload struct {
	TopicID uuid.UUID `json:"topic_id"`
	UserID  uuid.UUID `json:"user_id"`
	GenerationParams
}

// TopicGenerationTask implements the Task interface for generating
// flashcards for a topic with an AI provider
type TopicGenerationTask struct {
	id           uuid.UUID
	topicID      uuid.UUID
	userID       uuid.UUID
	params       GenerationParams
	topicService TopicService
	generator    Generator
	logger       *slog.Logger
	status       TaskStatus
}

// NewTopicGenerationTask creates a new topic generation task
func NewTopicGenerationTask(
	topicID uuid.UUID,
	userID uuid.UUID,
	params GenerationParams,
	topicService TopicService,
	generator Generator,
	logger *slog.Logger,
) (*TopicGenerationTask, error) {
	// Validate dependencies
	if topicService == nil {
		return nil, ErrNilTopicService
	}
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	// Validate identifiers
	if topicID == uuid.Nil {
		return nil, ErrEmptyTopicID
	}
	if userID == uuid.Nil {
		return nil, ErrEmptyUserID
	}

	return &TopicGenerationTask{
		id:           uuid.New(),
		topicID:      topicID,
		userID:       userID,
		params:       params,
		topicService: topicService,
		generator:    generator,
		logger: logger.With(
			"task_type", TaskTypeTopicGeneration,
			"topic_id", topicID,
			"user_id", userID,
		),
		status: TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *TopicGenerationTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *TopicGenerationTask) Type() string {
	return TaskTypeTopicGeneration
}

// Payload returns the task data as a byte slice
func (t *TopicGenerationTask) Payload() []byte {
	payload := topicGenerationPayload{
		TopicID:          t.topicID,
		UserID:           t.userID,
		GenerationParams: t.params,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		// If marshal fails, return an empty payload with error logged
		t.logger.Error("failed to marshal task payload", "error", err)
		return []byte{}
	}

	return data
}

// Status returns the current task status
func (t *TopicGenerationTask) Status() TaskStatus {
	return t.status
}

// Execute runs the topic generation task: it loads the topic, generates
// cards with the configured provider and appends them to the topic's
// collection. Cards beyond the per-topic cap are dropped with a warning.
func (t *TopicGenerationTask) Execute(ctx context.Context) error {
	t.status = TaskStatusProcessing
	t.logger.Info("starting topic generation task")

	// Check for context cancellation
	if err := ctx.Err(); err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("task cancelled by context", "error", err)
		return fmt.Errorf("task cancelled by context: %w", err)
	}

	// 1. Retrieve the topic
	topic, err := t.topicService.GetTopic(ctx, t.topicID)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to retrieve topic", "error", err)
		return fmt.Errorf("failed to retrieve topic: %w", err)
	}

	// The ownership recorded in the payload must still hold when the task
	// runs; a mismatch means the request is stale.
	if topic.UserID != t.userID {
		t.status = TaskStatusFailed
		t.logger.Error("topic owner does not match task payload",
			"topic_user_id", topic.UserID)
		return ErrTopicNotOwned
	}

	t.logger.Info("retrieved topic",
		"topic_name", topic.Name,
		"existing_cards", len(topic.Cards))

	// 2. Generate cards
	t.logger.Info("generating cards",
		"provider", t.params.Provider,
		"count", t.params.Count,
		"card_type", t.params.CardType)
	cards, err := t.generator.GenerateTopicCards(ctx, topic, t.params)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to generate cards", "error", err)
		return fmt.Errorf("failed to generate cards: %w", err)
	}

	t.logger.Info("cards generated", "count", len(cards))

	if len(cards) == 0 {
		// No cards but no error either; complete the task and leave a trace
		t.logger.Warn("generation produced no cards for this topic")
		t.status = TaskStatusCompleted
		return nil
	}

	// 3. Append the generated cards to the topic
	added, dropped, err := t.topicService.AppendGeneratedCards(ctx, t.topicID, cards)
	if err != nil {
		t.status = TaskStatusFailed
		t.logger.Error("failed to append generated cards", "error", err)
		return fmt.Errorf("failed to append generated cards: %w", err)
	}

	if dropped > 0 {
		t.logger.Warn("card cap reached, dropped overflow cards",
			"added", added,
			"dropped", dropped)
	}

	t.status = TaskStatusCompleted
	t.logger.Info("topic generation task completed successfully",
		"cards_added", added)
	return nil
}
