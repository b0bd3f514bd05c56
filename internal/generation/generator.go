package generation

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// Card type values accepted in generation requests. The first two mirror the
// domain card types; CardTypeMixed asks the provider for a mix of both shapes.
const (
	CardTypeQAHint         = string(domain.CardTypeQAHint)
	CardTypeMultipleChoice = string(domain.CardTypeMultipleChoice)
	CardTypeMixed          = "mixed"
)

// MaxCardCount bounds how many cards one request may ask for. It matches the
// per-topic card cap so a single generation can never overflow a topic.
const MaxCardCount = domain.MaxCardsPerTopic

// DefaultCardCount is used when a request does not say how many cards to
// generate.
const DefaultCardCount = 10

// GenerationRequest carries everything one card generation needs. API keys
// are resolved by the caller before the request reaches a generator; requests
// are never persisted.
type GenerationRequest struct {
	// Provider selects the AI provider ("openai", "google", "xai", "anthropic").
	Provider string

	// Model must be in the provider's model list. Empty selects the
	// provider's default model.
	Model string

	// TopicName is the subject to generate cards for.
	TopicName string

	// DeckName optionally names the surrounding deck for extra context.
	DeckName string

	// Count is the number of cards to generate (1 to MaxCardCount).
	Count int

	// CardType selects the card shape: qa_hint, multiple_choice or mixed.
	CardType string

	// APIKey authenticates against the provider.
	APIKey string

	// PromptOverride replaces the default system prompt when non-empty,
	// typically from the user's ai_prompts profile setting.
	PromptOverride string
}

// Normalized returns a copy of the request with defaults applied: provider,
// model, count and card type fall back to their defaults when unset.
func (r GenerationRequest) Normalized() GenerationRequest {
	if r.Provider == "" {
		r.Provider = DefaultProvider
	}
	if r.Model == "" {
		r.Model = DefaultModelFor(r.Provider)
	}
	if r.Count == 0 {
		r.Count = DefaultCardCount
	}
	if r.CardType == "" {
		r.CardType = CardTypeMixed
	}
	return r
}

// Validate checks the request against the provider registry and the
// generation limits. All failures wrap ErrInvalidParameters.
func (r GenerationRequest) Validate() error {
	if !IsSupportedProvider(r.Provider) {
		return fmt.Errorf("%w: unsupported provider %q", ErrInvalidParameters, r.Provider)
	}
	if _, ok := LookupModel(r.Provider, r.Model); !ok {
		return fmt.Errorf("%w: unknown model %q for provider %q", ErrInvalidParameters, r.Model, r.Provider)
	}
	if r.TopicName == "" {
		return fmt.Errorf("%w: topic name is required", ErrInvalidParameters)
	}
	if r.Count < 1 || r.Count > MaxCardCount {
		return fmt.Errorf("%w: count must be between 1 and %d", ErrInvalidParameters, MaxCardCount)
	}
	switch r.CardType {
	case CardTypeQAHint, CardTypeMultipleChoice, CardTypeMixed:
	default:
		return fmt.Errorf("%w: unsupported card type %q", ErrInvalidParameters, r.CardType)
	}
	return nil
}

// Usage reports the token consumption of one generation and its cost
// according to the model's pricing.
type Usage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// GenerationResult is the outcome of one successful generation: validated
// cards carrying the default weight, plus the provider-reported usage.
type GenerationResult struct {
	Cards []domain.Card
	Usage Usage
}

// CardGenerator is the boundary between the application core and external
// LLM providers. Implementations are provider-specific; requests are routed
// between them by MultiProviderGenerator.
type CardGenerator interface {
	// GenerateCards produces flashcards for the request's topic using the
	// requested provider and model. Errors are the package sentinels, wrapped
	// with provider detail.
	GenerateCards(ctx context.Context, req GenerationRequest) (*GenerationResult, error)
}

// MultiProviderGenerator dispatches generation requests to the generator
// registered for the request's provider.
type MultiProviderGenerator struct {
	generators map[string]CardGenerator
	logger     *slog.Logger
}

// NewMultiProviderGenerator creates an empty dispatcher. Providers are added
// with Register during application wiring.
func NewMultiProviderGenerator(logger *slog.Logger) *MultiProviderGenerator {
	if logger == nil {
		logger = slog.Default()
	}

	return &MultiProviderGenerator{
		generators: make(map[string]CardGenerator),
		logger:     logger.With(slog.String("component", "multi_provider_generator")),
	}
}

// Register binds a provider identifier to its generator. A later registration
// for the same provider replaces the earlier one.
func (m *MultiProviderGenerator) Register(provider string, generator CardGenerator) {
	m.generators[provider] = generator
}

// GenerateCards normalizes and validates the request, then hands it to the
// generator registered for its provider.
func (m *MultiProviderGenerator) GenerateCards(
	ctx context.Context,
	req GenerationRequest,
) (*GenerationResult, error) {
	req = req.Normalized()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	generator, ok := m.generators[req.Provider]
	if !ok {
		return nil, fmt.Errorf("%w: no generator registered for provider %q", ErrInvalidParameters, req.Provider)
	}

	m.logger.Debug("dispatching generation request",
		"provider", req.Provider,
		"model", req.Model,
		"count", req.Count,
		"card_type", req.CardType)

	return generator.GenerateCards(ctx, req)
}

// Ensure MultiProviderGenerator implements CardGenerator
var _ CardGenerator = (*MultiProviderGenerator)(nil)
