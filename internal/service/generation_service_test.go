package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/events"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/mocks"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// generationFixture wires a generation service against fresh mocks.
type generationFixture struct {
	userStore  *mocks.MockUserStore
	topicStore *mocks.MockTopicStore
	deckStore  *mocks.MockDeckStore
	generator  *mocks.MockCardGenerator
	emitter    *mocks.MockEventEmitter
	svc        service.GenerationService
}

func newGenerationFixture(t *testing.T, llm config.LLMConfig) *generationFixture {
	t.Helper()

	fix := &generationFixture{
		userStore:  mocks.NewMockUserStore(),
		topicStore: mocks.NewMockTopicStore(),
		deckStore:  mocks.NewMockDeckStore(),
		generator:  mocks.NewMockCardGeneratorWithDefaultCards(),
		emitter:    &mocks.MockEventEmitter{},
	}

	svc, err := service.NewGenerationService(
		fix.userStore,
		fix.topicStore,
		fix.deckStore,
		fix.generator,
		fix.emitter,
		llm,
		newTestLogger(),
	)
	require.NoError(t, err)

	fix.svc = svc
	return fix
}

func storeUser(t *testing.T, fix *generationFixture, role domain.Role) *domain.User {
	t.Helper()

	user, err := domain.NewUser(string(role)+"@example.com", "a-long-password-123")
	require.NoError(t, err)
	user.Password = ""
	user.HashedPassword = "$2a$10$fakehashfakehashfakehash"
	require.NoError(t, user.UpdateRole(role))

	fix.userStore.Users[user.Email] = user
	return user
}

func TestGenerationService_GenerateCards(t *testing.T) {
	t.Parallel()

	t.Run("user-supplied key wins regardless of role", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-key"})
		user := storeUser(t, fix, domain.RoleUser)

		result, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  generation.ProviderGoogle,
			TopicName: "Photosynthesis",
			APIKey:    "  user-key  ",
		})
		require.NoError(t, err)
		require.NotNil(t, result)

		assert.Equal(t, "user-key", fix.generator.LastRequest().APIKey, "key should be trimmed and used as-is")
	})

	t.Run("plain user without a key is refused", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-key"})
		user := storeUser(t, fix, domain.RoleUser)

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  generation.ProviderGoogle,
			TopicName: "Photosynthesis",
		})
		assert.ErrorIs(t, err, service.ErrAPIKeyRequired)
		assert.Zero(t, fix.generator.GenerateCardsCalls.Count, "no provider call should happen")
	})

	t.Run("pro user falls back to the server key", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{AnthropicAPIKey: "server-anthropic"})
		user := storeUser(t, fix, domain.RolePro)

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  generation.ProviderAnthropic,
			TopicName: "Photosynthesis",
		})
		require.NoError(t, err)

		assert.Equal(t, "server-anthropic", fix.generator.LastRequest().APIKey)
	})

	t.Run("missing server key is a configuration error", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{})
		user := storeUser(t, fix, domain.RoleAdmin)

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  generation.ProviderXAI,
			TopicName: "Photosynthesis",
		})
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})

	t.Run("invalid parameters are rejected before key resolution", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{})
		user := storeUser(t, fix, domain.RoleUser)

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  "uncle-bob",
			TopicName: "Photosynthesis",
		})
		assert.ErrorIs(t, err, generation.ErrInvalidParameters)
		assert.NotErrorIs(t, err, service.ErrAPIKeyRequired,
			"a bad provider should read as a bad request, not a missing subscription")
	})

	t.Run("applies defaults and the user's prompt override", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{OpenAIAPIKey: "server-openai"})
		user := storeUser(t, fix, domain.RolePro)
		user.AIPrompts = map[string]string{"card_generation": "Focus on etymology."}

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			TopicName: "Photosynthesis",
		})
		require.NoError(t, err)

		req := fix.generator.LastRequest()
		assert.Equal(t, generation.DefaultProvider, req.Provider)
		assert.Equal(t, generation.DefaultModelFor(generation.DefaultProvider), req.Model)
		assert.Equal(t, generation.DefaultCardCount, req.Count)
		assert.Equal(t, generation.CardTypeMixed, req.CardType)
		assert.Equal(t, "Focus on etymology.", req.PromptOverride)
	})

	t.Run("provider failures are wrapped with operation context", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-key"})
		fix.generator.GenerateCardsFn = func(
			ctx context.Context,
			req generation.GenerationRequest,
		) (*generation.GenerationResult, error) {
			return nil, generation.ErrTransientFailure
		}
		user := storeUser(t, fix, domain.RolePro)

		_, err := fix.svc.GenerateCards(context.Background(), user.ID, service.CardGenerationRequest{
			Provider:  generation.ProviderGoogle,
			TopicName: "Photosynthesis",
		})
		assert.ErrorIs(t, err, generation.ErrTransientFailure)

		var svcErr *service.GenerationServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "generate_cards", svcErr.Operation)
	})
}

func TestGenerationService_RequestTopicGeneration(t *testing.T) {
	t.Parallel()

	t.Run("emits event and returns its ID", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-secret"})
		user := storeUser(t, fix, domain.RolePro)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		taskID, err := fix.svc.RequestTopicGeneration(context.Background(), user.ID, topic.ID, task.GenerationParams{
			Provider: generation.ProviderGoogle,
			Count:    5,
			CardType: generation.CardTypeQAHint,
		})
		require.NoError(t, err)

		event := fix.emitter.LastEvent()
		require.NotNil(t, event, "an event should be emitted")
		assert.Equal(t, event.ID, taskID, "the task is polled under the event's ID")
		assert.Equal(t, events.EventTypeTopicGeneration, event.Type)

		var payload events.TopicGenerationRequested
		require.NoError(t, event.UnmarshalPayload(&payload))
		assert.Equal(t, topic.ID, payload.TopicID)
		assert.Equal(t, user.ID, payload.UserID)
		assert.Equal(t, generation.ProviderGoogle, payload.Provider)
		assert.Equal(t, 5, payload.Count)
		assert.Equal(t, generation.CardTypeQAHint, payload.CardType)

		assert.NotContains(t, string(event.Payload), "server-secret",
			"task payloads must never carry provider credentials")
	})

	t.Run("foreign topic is refused without an event", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-secret"})
		user := storeUser(t, fix, domain.RolePro)

		topic := newStoredTopic(t, uuid.New(), uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		_, err := fix.svc.RequestTopicGeneration(context.Background(), user.ID, topic.ID, task.GenerationParams{})
		assert.ErrorIs(t, err, service.ErrNotOwned)
		assert.Nil(t, fix.emitter.LastEvent())
	})

	t.Run("plain user is refused before any event", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-secret"})
		user := storeUser(t, fix, domain.RoleUser)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		_, err := fix.svc.RequestTopicGeneration(context.Background(), user.ID, topic.ID, task.GenerationParams{
			Provider: generation.ProviderGoogle,
		})
		assert.ErrorIs(t, err, service.ErrAPIKeyRequired)
		assert.Nil(t, fix.emitter.LastEvent())
	})

	t.Run("invalid parameters are refused", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-secret"})
		user := storeUser(t, fix, domain.RolePro)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		_, err := fix.svc.RequestTopicGeneration(context.Background(), user.ID, topic.ID, task.GenerationParams{
			Provider: generation.ProviderGoogle,
			Count:    generation.MaxCardCount + 1,
		})
		assert.ErrorIs(t, err, generation.ErrInvalidParameters)
		assert.Nil(t, fix.emitter.LastEvent())
	})

	t.Run("emit failures propagate", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-secret"})
		emitErr := errors.New("queue is full")
		fix.emitter.Err = emitErr
		user := storeUser(t, fix, domain.RolePro)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		_, err := fix.svc.RequestTopicGeneration(context.Background(), user.ID, topic.ID, task.GenerationParams{
			Provider: generation.ProviderGoogle,
		})
		assert.ErrorIs(t, err, emitErr)
	})
}

func TestGenerationService_GenerateTopicCards(t *testing.T) {
	t.Parallel()

	t.Run("resolves the server key at execution time", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-google"})
		user := storeUser(t, fix, domain.RolePro)
		user.AIPrompts = map[string]string{"card_generation": "Focus on etymology."}

		deck := newStoredDeck(t, user.ID)
		fix.deckStore.Decks[deck.ID] = deck

		topic := newStoredTopic(t, user.ID, deck.ID)
		fix.topicStore.Topics[topic.ID] = topic

		cards, err := fix.svc.GenerateTopicCards(context.Background(), topic, task.GenerationParams{
			Provider: generation.ProviderGoogle,
			Count:    5,
			CardType: generation.CardTypeQAHint,
		})
		require.NoError(t, err)
		assert.Len(t, cards, 2)

		req := fix.generator.LastRequest()
		assert.Equal(t, "server-google", req.APIKey)
		assert.Equal(t, topic.Name, req.TopicName)
		assert.Equal(t, deck.Name, req.DeckName, "the deck name should enrich the prompt")
		assert.Equal(t, "Focus on etymology.", req.PromptOverride)
	})

	t.Run("missing deck does not block generation", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-google"})
		user := storeUser(t, fix, domain.RolePro)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		cards, err := fix.svc.GenerateTopicCards(context.Background(), topic, task.GenerationParams{
			Provider: generation.ProviderGoogle,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, cards)
		assert.Empty(t, fix.generator.LastRequest().DeckName)
	})

	t.Run("role downgraded since the request fails the task", func(t *testing.T) {
		t.Parallel()

		fix := newGenerationFixture(t, config.LLMConfig{GoogleAPIKey: "server-google"})
		user := storeUser(t, fix, domain.RoleUser)

		topic := newStoredTopic(t, user.ID, uuid.New())
		fix.topicStore.Topics[topic.ID] = topic

		_, err := fix.svc.GenerateTopicCards(context.Background(), topic, task.GenerationParams{
			Provider: generation.ProviderGoogle,
		})
		assert.ErrorIs(t, err, service.ErrAPIKeyRequired)
		assert.Zero(t, fix.generator.GenerateCardsCalls.Count)
	})
}

// Guards against credentials sneaking into anything the task pipeline would
// persist: the payload type itself has no key field, and the wire form stays
// free of configured secrets.
func TestTopicGenerationPayloadCarriesNoSecrets(t *testing.T) {
	t.Parallel()

	payload := events.TopicGenerationRequested{
		TopicID:  uuid.New(),
		UserID:   uuid.New(),
		Provider: generation.ProviderGoogle,
		Model:    "gemini-2.5-flash",
		Count:    10,
		CardType: generation.CardTypeMixed,
	}

	event, err := events.NewTaskRequestEvent(events.EventTypeTopicGeneration, payload)
	require.NoError(t, err)

	raw := string(event.Payload)
	for _, field := range []string{"api_key", "apikey", "key"} {
		assert.False(t, strings.Contains(strings.ToLower(raw), field),
			"payload should have no %q field", field)
	}
}
