package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"google.golang.org/genai"
)

// Defaults applied when the retry settings in the configuration are unusable.
const (
	defaultMaxRetries        = 3
	defaultRetryDelaySeconds = 2
)

// Generator produces flashcards through Google's Gemini API. It implements
// generation.CardGenerator for the "google" provider.
//
// The generator holds no API client: every request carries its own key, so a
// client is created per call. Creating a genai client does not touch the
// network, it only binds the key and backend for subsequent requests.
type Generator struct {
	logger     *slog.Logger
	maxRetries int
	baseDelay  time.Duration
}

// NewGenerator creates a Gemini-backed card generator.
//
// The retry settings come from the LLM configuration; out-of-range values
// fall back to package defaults. MaxRetries of zero is valid and means a
// single attempt per request.
func NewGenerator(logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = defaultMaxRetries
	}

	delaySeconds := cfg.RetryDelaySeconds
	if delaySeconds < 1 {
		delaySeconds = defaultRetryDelaySeconds
	}

	return &Generator{
		logger:     logger.With(slog.String("component", "gemini_generator")),
		maxRetries: maxRetries,
		baseDelay:  time.Duration(delaySeconds) * time.Second,
	}, nil
}

// GenerateCards sends the request's topic to the Gemini API and converts the
// response into validated domain cards.
//
// The request must arrive normalized and validated (MultiProviderGenerator
// does both) and must carry an API key; key resolution happens upstream so
// keys never travel further than the request struct.
func (g *Generator) GenerateCards(
	ctx context.Context,
	req generation.GenerationRequest,
) (*generation.GenerationResult, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("%w: missing Google API key", generation.ErrInvalidConfig)
	}

	systemPrompt, userMessage, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	resp, err := g.callWithRetry(ctx, req, systemPrompt, userMessage)
	if err != nil {
		return nil, err
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	cards, err := generation.ParseCards(text)
	if err != nil {
		return nil, err
	}

	usage := usageFrom(resp, req.Model)

	g.logger.InfoContext(ctx, "generated cards with Gemini",
		"model", req.Model,
		"cards", len(cards),
		"total_tokens", usage.TotalTokens)

	if len(cards) != req.Count {
		g.logger.WarnContext(ctx, "model returned a different card count than requested",
			"requested", req.Count,
			"returned", len(cards))
	}

	return &generation.GenerationResult{Cards: cards, Usage: usage}, nil
}

// callWithRetry calls the Gemini API, retrying transient failures with
// exponential backoff and jitter. Rate limits and server errors are
// transient; any other API status is permanent and returns immediately.
func (g *Generator) callWithRetry(
	ctx context.Context,
	req generation.GenerationRequest,
	systemPrompt, userMessage string,
) (*genai.GenerateContentResponse, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	genConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
		ResponseMIMEType:  "application/json",
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			"model", req.Model,
			"attempt", attempt+1,
			"max_attempts", g.maxRetries+1)

		resp, err := client.Models.GenerateContent(ctx, req.Model, genai.Text(userMessage), genConfig)
		if err == nil {
			return resp, nil
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if !isTransient(err) {
			return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
		}

		if attempt >= g.maxRetries {
			return nil, fmt.Errorf("%w: exceeded %d attempts: %v",
				generation.ErrTransientFailure, g.maxRetries+1, err)
		}

		delay := backoffDelay(g.baseDelay, attempt, rng)
		g.logger.InfoContext(ctx, "retrying Gemini API call",
			"attempt", attempt+1,
			"delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

// isTransient reports whether an API call failure is worth retrying. Network
// and transport failures carry no API status and count as transient.
func isTransient(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests ||
			apiErr.Code >= http.StatusInternalServerError
	}
	return true
}

// backoffDelay computes the wait before the next retry. The base delay grows
// exponentially with each attempt and is scaled by a random factor between
// 0.5 and 1.0 so concurrent tasks do not retry in lockstep.
func backoffDelay(base time.Duration, attempt int, rng *rand.Rand) time.Duration {
	backoff := float64(base) * math.Pow(2, float64(attempt))
	jitter := 0.5 + rng.Float64()*0.5
	return time.Duration(backoff * jitter)
}

// extractText pulls the generated text out of a Gemini response, mapping the
// ways a response can be unusable onto the generation sentinels.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", fmt.Errorf("%w: nil response", generation.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	return text.String(), nil
}

// usageFrom reads the token counts off a response and prices them for the
// model. Responses without usage metadata report zero usage.
func usageFrom(resp *genai.GenerateContentResponse, model string) generation.Usage {
	if resp == nil || resp.UsageMetadata == nil {
		return generation.Usage{}
	}

	usage := generation.Usage{
		PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
		CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
	}
	usage.CostUSD = generation.CostUSD(generation.ProviderGoogle, model, usage.PromptTokens, usage.CompletionTokens)

	return usage
}

// Ensure Generator implements CardGenerator
var _ generation.CardGenerator = (*Generator)(nil)
