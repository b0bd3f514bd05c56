package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewGenerator(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration", func(t *testing.T) {
		g, err := NewGenerator(testLogger(), config.LLMConfig{
			MaxRetries:        2,
			RetryDelaySeconds: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, g.maxRetries)
		assert.Equal(t, time.Second, g.baseDelay)
	})

	t.Run("nil logger", func(t *testing.T) {
		_, err := NewGenerator(nil, config.LLMConfig{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger cannot be nil")
	})

	t.Run("out-of-range retry settings fall back to defaults", func(t *testing.T) {
		g, err := NewGenerator(testLogger(), config.LLMConfig{
			MaxRetries:        -1,
			RetryDelaySeconds: 0,
		})
		require.NoError(t, err)
		assert.Equal(t, defaultMaxRetries, g.maxRetries)
		assert.Equal(t, time.Duration(defaultRetryDelaySeconds)*time.Second, g.baseDelay)
	})

	t.Run("zero retries means a single attempt", func(t *testing.T) {
		g, err := NewGenerator(testLogger(), config.LLMConfig{
			MaxRetries:        0,
			RetryDelaySeconds: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, 0, g.maxRetries)
	})
}

func TestGenerateCardsRequiresAPIKey(t *testing.T) {
	t.Parallel()

	g, err := NewGenerator(testLogger(), config.LLMConfig{MaxRetries: 1, RetryDelaySeconds: 1})
	require.NoError(t, err)

	req := generation.GenerationRequest{
		Provider:  generation.ProviderGoogle,
		Model:     "gemini-2.5-flash",
		TopicName: "Photosynthesis",
		Count:     5,
		CardType:  generation.CardTypeQAHint,
	}

	_, err = g.GenerateCards(context.Background(), req)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "API key")
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		resp     *genai.GenerateContentResponse
		wantText string
		wantErr  error
	}{
		{
			name:    "nil response",
			resp:    nil,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "no candidates",
			resp:    &genai.GenerateContentResponse{},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "blocked by safety filters",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{FinishReason: genai.FinishReasonSafety},
				},
			},
			wantErr: generation.ErrContentBlocked,
		},
		{
			name: "candidate without content",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{FinishReason: genai.FinishReasonStop},
				},
			},
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name: "single part",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content:      &genai.Content{Parts: []*genai.Part{{Text: `{"cards": []}`}}},
						FinishReason: genai.FinishReasonStop,
					},
				},
			},
			wantText: `{"cards": []}`,
		},
		{
			name: "multiple parts concatenated",
			resp: &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{
					{
						Content: &genai.Content{Parts: []*genai.Part{
							{Text: `{"cards": `},
							nil,
							{Text: `[]}`},
						}},
						FinishReason: genai.FinishReasonStop,
					},
				},
			},
			wantText: `{"cards": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := extractText(tt.resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, text)
		})
	}
}

func TestIsTransient(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "rate limited",
			err:  genai.APIError{Code: 429, Message: "rate limited"},
			want: true,
		},
		{
			name: "server error",
			err:  genai.APIError{Code: 500, Message: "internal"},
			want: true,
		},
		{
			name: "service unavailable",
			err:  genai.APIError{Code: 503, Message: "overloaded"},
			want: true,
		},
		{
			name: "bad request",
			err:  genai.APIError{Code: 400, Message: "invalid argument"},
			want: false,
		},
		{
			name: "invalid key",
			err:  genai.APIError{Code: 401, Message: "unauthenticated"},
			want: false,
		},
		{
			name: "wrapped API error",
			err:  fmt.Errorf("call failed: %w", genai.APIError{Code: 404, Message: "model not found"}),
			want: false,
		},
		{
			name: "plain transport error",
			err:  errors.New("connection reset by peer"),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestBackoffDelay(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(42))
	base := 2 * time.Second

	for attempt := 0; attempt < 4; attempt++ {
		exp := float64(base) * float64(int(1)<<attempt)
		min := time.Duration(exp * 0.5)
		max := time.Duration(exp)

		for i := 0; i < 20; i++ {
			delay := backoffDelay(base, attempt, rng)
			assert.GreaterOrEqual(t, delay, min, "attempt %d", attempt)
			assert.LessOrEqual(t, delay, max, "attempt %d", attempt)
		}
	}
}

func TestUsageFrom(t *testing.T) {
	t.Parallel()

	t.Run("reads counts and prices them", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
				PromptTokenCount:     1200,
				CandidatesTokenCount: 3400,
				TotalTokenCount:      4600,
			},
		}

		usage := usageFrom(resp, "gemini-2.5-flash")
		assert.Equal(t, 1200, usage.PromptTokens)
		assert.Equal(t, 3400, usage.CompletionTokens)
		assert.Equal(t, 4600, usage.TotalTokens)
		// 1200 * $0.30/1M in + 3400 * $2.50/1M out
		assert.InDelta(t, 0.00886, usage.CostUSD, 1e-9)
	})

	t.Run("missing metadata reports zero usage", func(t *testing.T) {
		assert.Zero(t, usageFrom(&genai.GenerateContentResponse{}, "gemini-2.5-flash"))
		assert.Zero(t, usageFrom(nil, "gemini-2.5-flash"))
	})
}
