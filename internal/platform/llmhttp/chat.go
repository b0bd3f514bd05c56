package llmhttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

// API base URLs for the chat-completions providers.
const (
	openAIBaseURL = "https://api.openai.com/v1"
	xaiBaseURL    = "https://api.x.ai/v1"
)

// ChatCompletionRequest is the request body of the chat-completions API.
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float32         `json:"temperature,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ResponseFormat asks the API for a specific output shape. Type "json_object"
// forces the model to emit valid JSON.
type ResponseFormat struct {
	Type string `json:"type"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ChatCompletionResponse is the response body of the chat-completions API.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatClient generates cards through an OpenAI-compatible chat-completions
// API. OpenAI and xAI share the protocol, so one client type serves both
// providers. It implements generation.CardGenerator.
//
// The client holds no credentials: every generation request carries its own
// API key, sent as a bearer token per call.
type ChatClient struct {
	provider         string
	httpClient       *resty.Client
	logger           *slog.Logger
	maxRetryAttempts uint
}

// NewOpenAIClient creates a generator for OpenAI's chat-completions API.
func NewOpenAIClient(logger *slog.Logger, retryAttempts uint) *ChatClient {
	return newChatClient(generation.ProviderOpenAI, openAIBaseURL, logger, retryAttempts)
}

// NewXAIClient creates a generator for xAI's chat-completions API.
func NewXAIClient(logger *slog.Logger, retryAttempts uint) *ChatClient {
	return newChatClient(generation.ProviderXAI, xaiBaseURL, logger, retryAttempts)
}

func newChatClient(provider, baseURL string, logger *slog.Logger, retryAttempts uint) *ChatClient {
	if logger == nil {
		logger = slog.Default()
	}

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetHeader("Content-Type", "application/json")

	return &ChatClient{
		provider:         provider,
		httpClient:       client,
		logger:           logger.With(slog.String("component", provider+"_generator")),
		maxRetryAttempts: retryAttempts,
	}
}

// GenerateCards sends the request's topic to the provider and converts the
// completion into validated domain cards. Transient failures are retried
// with exponential backoff.
func (c *ChatClient) GenerateCards(
	ctx context.Context,
	req generation.GenerationRequest,
) (*generation.GenerationResult, error) {
	if req.APIKey == "" {
		return nil, fmt.Errorf("%w: missing %s API key", generation.ErrInvalidConfig, c.provider)
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
		"provider", c.provider,
		"model", req.Model,
		"cards", len(result.Cards),
		"total_tokens", result.Usage.TotalTokens)

	return result, nil
}

// generate makes a single chat-completions call.
func (c *ChatClient) generate(
	ctx context.Context,
	req generation.GenerationRequest,
	systemPrompt, userMessage string,
) (*generation.GenerationResult, error) {
	requestBody := ChatCompletionRequest{
		Model: req.Model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userMessage},
		},
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+req.APIKey).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", generation.ErrTransientFailure, err)
	}
	if response.IsError() {
		return nil, classifyStatus(response.StatusCode(), response.String())
	}

	completion := response.Result().(*ChatCompletionResponse)
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response body or choices", generation.ErrInvalidResponse)
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("%w: empty response content", generation.ErrInvalidResponse)
	}

	cards, err := generation.ParseCards(content)
	if err != nil {
		return nil, err
	}

	usage := generation.Usage{
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
		TotalTokens:      completion.Usage.TotalTokens,
	}
	usage.CostUSD = generation.CostUSD(c.provider, req.Model, usage.PromptTokens, usage.CompletionTokens)

	return &generation.GenerationResult{Cards: cards, Usage: usage}, nil
}

// classifyStatus maps a provider HTTP error status onto the generation
// sentinels. Rate limits and server errors are transient; everything else
// (bad request, invalid key, unknown model) is permanent.
func classifyStatus(statusCode int, body string) error {
	if statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError {
		return fmt.Errorf("%w: response error %d: %s", generation.ErrTransientFailure, statusCode, body)
	}
	return fmt.Errorf("%w: response error %d: %s", generation.ErrGenerationFailed, statusCode, body)
}

// Ensure ChatClient implements CardGenerator
var _ generation.CardGenerator = (*ChatClient)(nil)
