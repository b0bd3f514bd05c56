package llmhttp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

const (
	anthropicBaseURL = "https://api.anthropic.com/v1"

	// anthropicVersion is the API version header required on every request.
	anthropicVersion = "2023-06-01"

	// anthropicMaxTokens caps the completion length. The messages API makes
	// this field mandatory.
	anthropicMaxTokens = 4096
)

// anthropicRequest is the request body of the messages API. Unlike the
// chat-completions shape, the system prompt is a top-level field.
type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// anthropicResponse is the response body of the messages API. The completion
// arrives as a list of typed content blocks.
type anthropicResponse struct {
	ID         string             `json:"id"`
	Type       string             `json:"type"`
	Role       string             `json:"role"`
	Model      string             `json:"model"`
	Content    []anthropicContent `json:"content"`
	StopReason string             `json:"stop_reason"`
	Usage      anthropicUsage     `json:"usage"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// AnthropicClient generates cards through Anthropic's messages API. It
// implements generation.CardGenerator.
//
// Like the other adapters it holds no credentials; the per-request API key
// travels in the x-api-key header.
type AnthropicClient struct {
	httpClient       *resty.Client
	logger           *slog.Logger
	maxRetryAttempts uint
}

// NewAnthropicClient creates a generator for Anthropic's messages API.
func NewAnthropicClient(logger *slog.Logger, retryAttempts uint) *AnthropicClient {
	return newAnthropicClient(anthropicBaseURL, logger, retryAttempts)
}

func newAnthropicClient(baseURL string, logger *slog.Logger, retryAttempts uint) *AnthropicClient {
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("anthropic-version", anthropicVersion)

	return &AnthropicClient{
		httpClient:       client,
		logger:           logger.With(slog.String("component", "anthropic_generator")),
		maxRetryAttempts: retryAttempts,
	}
}

// GenerateCards sends the request's topic to Anthropic and converts the
// completion into validated domain cards. Transient failures are retried
// with exponential backoff.
func (c *AnthropicClient) GenerateCards(
	ctx context.Context,
	req generation.GenerationRequest,
) (*generation.GenerationResult, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("%w: missing Anthropic API key", generation.ErrInvalidConfig)
	}

	systemPrompt, userMessage, err := generation.BuildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrGenerationFailed, err)
	}

	result, err := doWithRetry(ctx, c.maxRetryAttempts, func(ctx context.Context) (*generation.GenerationResult, error) {
		return c.generate(ctx, req, systemPrompt, userMessage)
	})
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "generated cards",
		"provider", generation.ProviderAnthropic,
		"model", req.Model,
		"cards", len(result.Cards),
		"total_tokens", result.Usage.TotalTokens)

	return result, nil
}

// generate makes a single messages API call.
func (c *AnthropicClient) generate(
	ctx context.Context,
	req generation.GenerationRequest,
	systemPrompt, userMessage string,
) (*generation.GenerationResult, error) {
	requestBody := anthropicRequest{
		Model:     req.Model,
		MaxTokens: anthropicMaxTokens,
		System:    systemPrompt,
		Messages: []anthropicMessage{
			{Role: "user", Content: userMessage},
		},
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("x-api-key", req.APIKey).
		SetBody(requestBody).
		SetResult(&anthropicResponse{}).
		Post("/messages")
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", generation.ErrTransientFailure, err)
	}
	if response.IsError() {
		return nil, classifyStatus(response.StatusCode(), response.String())
	}

	message := response.Result().(*anthropicResponse)
	if message == nil || len(message.Content) == 0 {
		return nil, fmt.Errorf("%w: empty response content", generation.ErrInvalidResponse)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}
	if content.Len() == 0 {
		return nil, fmt.Errorf("%w: no text blocks in response", generation.ErrInvalidResponse)
	}

	cards, err := generation.ParseCards(content.String())
	if err != nil {
		return nil, err
	}

	usage := generation.Usage{
		PromptTokens:     message.Usage.InputTokens,
		CompletionTokens: message.Usage.OutputTokens,
		TotalTokens:      message.Usage.InputTokens + message.Usage.OutputTokens,
	}
	usage.CostUSD = generation.CostUSD(generation.ProviderAnthropic, req.Model, usage.PromptTokens, usage.CompletionTokens)

	return &generation.GenerationResult{Cards: cards, Usage: usage}, nil
}

// Ensure AnthropicClient implements CardGenerator
var _ generation.CardGenerator = (*AnthropicClient)(nil)
