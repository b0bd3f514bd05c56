package llmhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func anthropicGenRequest() generation.GenerationRequest {
	return generation.GenerationRequest{
		Provider:  generation.ProviderAnthropic,
		Model:     "claude-sonnet-4-5",
		TopicName: "The French Revolution",
		Count:     1,
		CardType:  generation.CardTypeQAHint,
		APIKey:    "user-key",
	}
}

func anthropicCompletion(blocks ...anthropicContent) anthropicResponse {
	return anthropicResponse{
		ID:         "msg_123",
		Type:       "message",
		Role:       "assistant",
		Model:      "claude-sonnet-4-5",
		Content:    blocks,
		StopReason: "end_turn",
		Usage:      anthropicUsage{InputTokens: 100, OutputTokens: 50},
	}
}

func TestAnthropicClient_GenerateCards(t *testing.T) {
	t.Run("successful generation", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/messages", r.URL.Path)
			assert.Equal(t, "user-key", r.Header.Get("x-api-key"))
			assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

			var reqBody anthropicRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&reqBody))
			assert.Equal(t, "claude-sonnet-4-5", reqBody.Model)
			assert.Equal(t, anthropicMaxTokens, reqBody.MaxTokens)
			assert.Contains(t, reqBody.System, `"cards"`)
			require.Len(t, reqBody.Messages, 1)
			assert.Equal(t, "user", reqBody.Messages[0].Role)
			assert.Contains(t, reqBody.Messages[0].Content, "The French Revolution")

			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(anthropicCompletion(
				anthropicContent{Type: "text", Text: `{"cards": [{"card_type": "qa_hint", `},
				anthropicContent{Type: "thinking", Text: "ignored"},
				anthropicContent{Type: "text", Text: `"question": "When did it start?", "answer": "1789", "hint": ""}]}`},
			)))
		}))
		defer server.Close()

		client := newAnthropicClient(server.URL, testLogger(), 2)

		result, err := client.GenerateCards(context.Background(), anthropicGenRequest())
		require.NoError(t, err)

		require.Len(t, result.Cards, 1)
		assert.Equal(t, "When did it start?", result.Cards[0].Question)
		assert.Equal(t, "1789", result.Cards[0].Answer)

		assert.Equal(t, 100, result.Usage.PromptTokens)
		assert.Equal(t, 50, result.Usage.CompletionTokens)
		assert.Equal(t, 150, result.Usage.TotalTokens)
		// claude-sonnet-4-5: 100 * $3.00/1M in + 50 * $15.00/1M out
		assert.InDelta(t, 0.00105, result.Usage.CostUSD, 1e-9)
	})

	t.Run("overloaded API is retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				// Anthropic signals overload with a non-standard 529.
				w.WriteHeader(529)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(anthropicCompletion(
				anthropicContent{Type: "text", Text: `{"cards": []}`},
			)))
		}))
		defer server.Close()

		client := newAnthropicClient(server.URL, testLogger(), 2)

		result, err := client.GenerateCards(context.Background(), anthropicGenRequest())
		require.NoError(t, err)
		assert.Empty(t, result.Cards)
		assert.Equal(t, 2, calls)
	})

	t.Run("invalid key is not retried", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		client := newAnthropicClient(server.URL, testLogger(), 2)

		_, err := client.GenerateCards(context.Background(), anthropicGenRequest())
		assert.ErrorIs(t, err, generation.ErrGenerationFailed)
		assert.Equal(t, 1, calls)
	})

	t.Run("response without text blocks", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(anthropicCompletion(
				anthropicContent{Type: "thinking", Text: "no text output"},
			)))
		}))
		defer server.Close()

		client := newAnthropicClient(server.URL, testLogger(), 2)

		_, err := client.GenerateCards(context.Background(), anthropicGenRequest())
		assert.ErrorIs(t, err, generation.ErrInvalidResponse)
	})

	t.Run("missing API key fails before any call", func(t *testing.T) {
		client := NewAnthropicClient(testLogger(), 2)

		req := anthropicGenRequest()
		req.APIKey = ""
		_, err := client.GenerateCards(context.Background(), req)
		assert.ErrorIs(t, err, generation.ErrInvalidConfig)
	})
}
