package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// GenerationHandler handles AI card generation requests: the provider
// catalog, the synchronous preview endpoint and the asynchronous
// generate-into-topic endpoint.
type GenerationHandler struct {
	generationService service.GenerationService
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(
	generationService service.GenerationService,
	logger *slog.Logger,
) *GenerationHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for GenerationHandler")
	}

	return &GenerationHandler{
		generationService: generationService,
		validator:         validator.New(),
		logger:            logger.With(slog.String("component", "generation_handler")),
	}
}

// ListProviders handles GET /api/ai/providers requests, returning every
// supported provider with its selectable models and the defaults applied
// when a request leaves provider or model unset.
func (h *GenerationHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	providers := generation.Providers()

	items := make([]AIProviderResponse, len(providers))
	for i, p := range providers {
		models := make([]AIModelResponse, len(p.Models))
		for j, m := range p.Models {
			models[j] = AIModelResponse{ID: m.ID, Name: m.Name}
		}
		items[i] = AIProviderResponse{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			Models:      models,
		}
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AIProvidersResponse{
		Providers:       items,
		DefaultProvider: generation.DefaultProvider,
		DefaultModel:    generation.DefaultModel,
	})
}

// GenerateCards handles POST /api/ai/generate-cards requests. Cards are
// generated and returned without being persisted; the client decides which
// ones to add through the card endpoints.
func (h *GenerationHandler) GenerateCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	result, err := h.generationService.GenerateCards(r.Context(), userID, service.CardGenerationRequest{
		Provider:  req.Provider,
		Model:     req.Model,
		TopicName: req.TopicName,
		DeckName:  req.DeckName,
		Count:     req.Count,
		CardType:  req.CardType,
		APIKey:    req.APIKey,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to generate cards")
		return
	}

	log.Debug("cards generated",
		slog.String("user_id", userID.String()),
		slog.Int("card_count", len(result.Cards)),
		slog.Int("total_tokens", result.Usage.TotalTokens))

	shared.RespondWithJSON(w, r, http.StatusCreated, generationToResponse(result))
}

// GenerateTopicCards handles POST /api/topics/{topicID}/generate requests.
// The request is validated and handed to the background pipeline; generated
// cards appear on the topic when the task completes. Responds 202 with the
// task ID.
func (h *GenerationHandler) GenerateTopicCards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", log)
	if !ok {
		return
	}

	var req GenerateTopicCardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	taskID, err := h.generationService.RequestTopicGeneration(r.Context(), userID, topicID, task.GenerationParams{
		Provider: req.Provider,
		Model:    req.Model,
		Count:    req.Count,
		CardType: req.CardType,
	})
	if err != nil {
		HandleAPIError(w, r, err, "Failed to request card generation")
		return
	}

	log.Debug("topic generation requested",
		slog.String("topic_id", topicID.String()),
		slog.String("task_id", taskID.String()))

	shared.RespondWithJSON(w, r, http.StatusAccepted, TaskResponse{
		TaskID: taskID,
		Status: "pending",
	})
}
