package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/events"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/store"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// cardGenerationPromptKey is the ai_prompts profile key whose value replaces
// the default card generation system prompt.
const cardGenerationPromptKey = "card_generation"

// CardGenerationRequest carries the user-supplied parameters of a synchronous
// card generation. The API key is optional; when absent, the server-configured
// key for the provider is used if the user's role allows it.
type CardGenerationRequest struct {
	Provider  string
	Model     string
	TopicName string
	DeckName  string
	Count     int
	CardType  string
	APIKey    string
}

// GenerationService provides card generation operations, both the synchronous
// path that returns cards directly and the asynchronous path that hands the
// work to the background task pipeline.
type GenerationService interface {
	// GenerateCards generates flashcards synchronously and returns them
	// without persisting anything
	GenerateCards(
		ctx context.Context,
		userID uuid.UUID,
		req CardGenerationRequest,
	) (*generation.GenerationResult, error)

	// RequestTopicGeneration validates a generation request for one of the
	// user's topics and emits the event that creates the background task.
	// It returns the identifier under which the task can be polled.
	RequestTopicGeneration(
		ctx context.Context,
		userID, topicID uuid.UUID,
		params task.GenerationParams,
	) (uuid.UUID, error)

	// Generator is the execution-time contract used by the task pipeline.
	// Provider credentials are resolved here, when the task runs, because
	// task payloads never carry them.
	task.Generator
}

// GenerationServiceError wraps errors from the generation service with context.
type GenerationServiceError struct {
	// Operation is the operation that failed (e.g., "generate_cards")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for GenerationServiceError.
func (e *GenerationServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("generation service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}

// NewGenerationServiceError creates a new GenerationServiceError.
// It returns known sentinel errors directly without wrapping so callers can
// match them with errors.Is.
func NewGenerationServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrNotOwned) {
		return ErrNotOwned
	}
	if errors.Is(err, ErrAPIKeyRequired) {
		return ErrAPIKeyRequired
	}

	return &GenerationServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// generationServiceImpl implements the GenerationService interface
type generationServiceImpl struct {
	userStore    store.UserStore
	topicStore   store.TopicStore
	deckStore    store.DeckStore
	generator    generation.CardGenerator
	eventEmitter events.EventEmitter
	llm          config.LLMConfig
	logger       *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// It returns an error if any of the required dependencies are nil.
func NewGenerationService(
	userStore store.UserStore,
	topicStore store.TopicStore,
	deckStore store.DeckStore,
	generator generation.CardGenerator,
	eventEmitter events.EventEmitter,
	llm config.LLMConfig,
	logger *slog.Logger,
) (GenerationService, error) {
	if userStore == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "userStore cannot be nil",
		}
	}
	if topicStore == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "topicStore cannot be nil",
		}
	}
	if deckStore == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "deckStore cannot be nil",
		}
	}
	if generator == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "generator cannot be nil",
		}
	}
	if eventEmitter == nil {
		return nil, &GenerationServiceError{
			Operation: "create_service",
			Message:   "eventEmitter cannot be nil",
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &generationServiceImpl{
		userStore:    userStore,
		topicStore:   topicStore,
		deckStore:    deckStore,
		generator:    generator,
		eventEmitter: eventEmitter,
		llm:          llm,
		logger:       logger.With("component", "generation_service"),
	}, nil
}

// GenerateCards generates flashcards synchronously and returns them without
// persisting anything
func (s *generationServiceImpl) GenerateCards(
	ctx context.Context,
	userID uuid.UUID,
	req CardGenerationRequest,
) (*generation.GenerationResult, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user for generation",
			"error", err,
			"user_id", userID)
		return nil, NewGenerationServiceError("generate_cards", "failed to retrieve user", err)
	}

	genReq := generation.GenerationRequest{
		Provider:  req.Provider,
		Model:     req.Model,
		TopicName: req.TopicName,
		DeckName:  req.DeckName,
		Count:     req.Count,
		CardType:  req.CardType,
	}.Normalized()

	// Parameter problems surface before key resolution so an unsupported
	// provider reads as a bad request, not a missing subscription
	if err := genReq.Validate(); err != nil {
		s.logger.Debug("rejected invalid generation request",
			"error", err,
			"user_id", userID)
		return nil, NewGenerationServiceError("generate_cards", "invalid generation request", err)
	}

	apiKey, err := s.resolveAPIKey(user, genReq.Provider, req.APIKey)
	if err != nil {
		s.logger.Debug("failed to resolve API key",
			"error", err,
			"user_id", userID,
			"provider", genReq.Provider)
		return nil, NewGenerationServiceError("generate_cards", "failed to resolve API key", err)
	}
	genReq.APIKey = apiKey
	genReq.PromptOverride = user.AIPrompts[cardGenerationPromptKey]

	result, err := s.generator.GenerateCards(ctx, genReq)
	if err != nil {
		s.logger.Error("card generation failed",
			"error", err,
			"user_id", userID,
			"provider", genReq.Provider,
			"model", genReq.Model)
		return nil, NewGenerationServiceError("generate_cards", "card generation failed", err)
	}

	s.logger.Info("cards generated successfully",
		"user_id", userID,
		"provider", genReq.Provider,
		"model", genReq.Model,
		"card_count", len(result.Cards),
		"total_tokens", result.Usage.TotalTokens)

	return result, nil
}

// RequestTopicGeneration validates a generation request for one of the user's
// topics and emits the event that creates the background task. The returned
// ID identifies the task; the event handler reuses the event's ID when it
// persists the task row, so the caller can poll it immediately.
func (s *generationServiceImpl) RequestTopicGeneration(
	ctx context.Context,
	userID, topicID uuid.UUID,
	params task.GenerationParams,
) (uuid.UUID, error) {
	topic, err := s.topicStore.GetByID(ctx, topicID)
	if err != nil {
		s.logger.Debug("failed to retrieve topic for generation request",
			"error", err,
			"topic_id", topicID)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"failed to retrieve topic",
			err,
		)
	}
	if topic.UserID != userID {
		s.logger.Debug("topic owned by another user",
			"topic_id", topicID,
			"user_id", userID)
		return uuid.Nil, ErrNotOwned
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user for generation request",
			"error", err,
			"user_id", userID)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"failed to retrieve user",
			err,
		)
	}

	probe := generation.GenerationRequest{
		Provider:  params.Provider,
		Model:     params.Model,
		TopicName: topic.Name,
		Count:     params.Count,
		CardType:  params.CardType,
	}.Normalized()
	if err := probe.Validate(); err != nil {
		s.logger.Debug("rejected invalid generation parameters",
			"error", err,
			"topic_id", topicID)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"invalid generation parameters",
			err,
		)
	}

	// Async generation always runs on a server key: task payloads never
	// carry credentials, so a user who cannot use server keys is rejected
	// here instead of when the task fails hours later
	if _, err := s.resolveAPIKey(user, probe.Provider, ""); err != nil {
		s.logger.Debug("user is not eligible for background generation",
			"error", err,
			"user_id", userID,
			"provider", probe.Provider)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"failed to resolve API key",
			err,
		)
	}

	payload := events.TopicGenerationRequested{
		TopicID:  topicID,
		UserID:   userID,
		Provider: probe.Provider,
		Model:    probe.Model,
		Count:    probe.Count,
		CardType: probe.CardType,
	}

	event, err := events.NewTaskRequestEvent(events.EventTypeTopicGeneration, payload)
	if err != nil {
		s.logger.Error("failed to create topic generation event",
			"error", err,
			"topic_id", topicID,
			"user_id", userID)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"failed to create event",
			err,
		)
	}

	if err := s.eventEmitter.EmitEvent(ctx, event); err != nil {
		s.logger.Error("failed to emit topic generation event",
			"error", err,
			"topic_id", topicID,
			"user_id", userID,
			"event_id", event.ID)
		return uuid.Nil, NewGenerationServiceError(
			"request_topic_generation",
			"failed to emit event",
			err,
		)
	}

	s.logger.Info("topic generation event emitted successfully",
		"topic_id", topicID,
		"user_id", userID,
		"event_id", event.ID,
		"provider", probe.Provider)

	return event.ID, nil
}

// GenerateTopicCards produces flashcards for the topic with the given
// generation settings. Runs inside the background task; the provider key is
// resolved here, at execution time, because task payloads never carry
// credentials.
func (s *generationServiceImpl) GenerateTopicCards(
	ctx context.Context,
	topic *domain.Topic,
	params task.GenerationParams,
) ([]domain.Card, error) {
	user, err := s.userStore.GetByID(ctx, topic.UserID)
	if err != nil {
		s.logger.Error("failed to retrieve user for topic generation",
			"error", err,
			"user_id", topic.UserID,
			"topic_id", topic.ID)
		return nil, NewGenerationServiceError(
			"generate_topic_cards",
			"failed to retrieve user",
			err,
		)
	}

	req := generation.GenerationRequest{
		Provider:  params.Provider,
		Model:     params.Model,
		TopicName: topic.Name,
		Count:     params.Count,
		CardType:  params.CardType,
	}.Normalized()

	apiKey, err := s.resolveAPIKey(user, req.Provider, "")
	if err != nil {
		s.logger.Error("failed to resolve API key for topic generation",
			"error", err,
			"user_id", topic.UserID,
			"provider", req.Provider)
		return nil, NewGenerationServiceError(
			"generate_topic_cards",
			"failed to resolve API key",
			err,
		)
	}
	req.APIKey = apiKey
	req.PromptOverride = user.AIPrompts[cardGenerationPromptKey]

	// The deck name only enriches the prompt; generation proceeds without it
	if deck, deckErr := s.deckStore.GetByID(ctx, topic.DeckID); deckErr == nil {
		req.DeckName = deck.Name
	} else {
		s.logger.Warn("failed to retrieve deck for prompt context",
			"error", deckErr,
			"deck_id", topic.DeckID,
			"topic_id", topic.ID)
	}

	result, err := s.generator.GenerateCards(ctx, req)
	if err != nil {
		s.logger.Error("topic card generation failed",
			"error", err,
			"topic_id", topic.ID,
			"provider", req.Provider,
			"model", req.Model)
		return nil, NewGenerationServiceError(
			"generate_topic_cards",
			"card generation failed",
			err,
		)
	}

	s.logger.Info("topic cards generated successfully",
		"topic_id", topic.ID,
		"provider", req.Provider,
		"model", req.Model,
		"card_count", len(result.Cards),
		"total_tokens", result.Usage.TotalTokens)

	return result.Cards, nil
}

// resolveAPIKey picks the key a generation will authenticate with. A key the
// user supplied always wins, whatever their role. Server-configured keys are
// reserved for Pro and Admin users; everyone else gets ErrAPIKeyRequired.
func (s *generationServiceImpl) resolveAPIKey(
	user *domain.User,
	provider string,
	userKey string,
) (string, error) {
	if key := strings.TrimSpace(userKey); key != "" {
		return key, nil
	}

	if user.Role != domain.RolePro && user.Role != domain.RoleAdmin {
		return "", ErrAPIKeyRequired
	}

	var key string
	switch provider {
	case generation.ProviderGoogle:
		key = s.llm.GoogleAPIKey
	case generation.ProviderOpenAI:
		key = s.llm.OpenAIAPIKey
	case generation.ProviderAnthropic:
		key = s.llm.AnthropicAPIKey
	case generation.ProviderXAI:
		key = s.llm.XAIAPIKey
	}

	if key == "" {
		return "", fmt.Errorf(
			"%w: no server API key configured for provider %q",
			generation.ErrInvalidConfig,
			provider,
		)
	}

	return key, nil
}

// Ensure generationServiceImpl implements both the service interface and the
// task pipeline's generator contract
var (
	_ GenerationService = (*generationServiceImpl)(nil)
	_ task.Generator    = (*generationServiceImpl)(nil)
)
