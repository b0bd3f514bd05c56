package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// TopicHandler handles topic and card HTTP requests. Cards live embedded in
// their topic and are addressed by index, so the card endpoints are part of
// the topic surface.
type TopicHandler struct {
	topicService service.TopicService
	validator    *validator.Validate
	logger       *slog.Logger
}

// NewTopicHandler creates a new TopicHandler.
func NewTopicHandler(topicService service.TopicService, logger *slog.Logger) *TopicHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TopicHandler")
	}

	return &TopicHandler{
		topicService: topicService,
		validator:    validator.New(),
		logger:       logger.With(slog.String("component", "topic_handler")),
	}
}

// CreateTopic handles POST /api/decks/{deckID}/topics requests. New topics
// start with a fresh scheduling state and are due immediately.
func (h *TopicHandler) CreateTopic(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "deckID", log)
	if !ok {
		return
	}

	var req TopicRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	topic, err := h.topicService.CreateTopic(r.Context(), userID, deckID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to create topic")
		return
	}

	log.Debug("topic created",
		slog.String("topic_id", topic.ID.String()),
		slog.String("deck_id", deckID.String()))
	shared.RespondWithJSON(w, r, http.StatusCreated, topicToResponse(topic))
}

// ListDeckTopics handles GET /api/decks/{deckID}/topics requests.
func (h *TopicHandler) ListDeckTopics(w http.ResponseWriter, r *http.Request) {
	userID, deckID, ok := handleUserIDAndPathUUID(w, r, "deckID", nil)
	if !ok {
		return
	}

	page := getPagination(r)

	topics, total, err := h.topicService.ListDeckTopics(r.Context(), userID, deckID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list topics")
		return
	}

	items := make([]TopicResponse, len(topics))
	for i, topic := range topics {
		items[i] = topicToResponse(topic)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewPageResponse(items, total, page))
}

// ListDueTopics handles GET /api/topics/due requests. Topics whose next
// review time has passed are returned most overdue first.
func (h *TopicHandler) ListDueTopics(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	page := getPagination(r)

	topics, total, err := h.topicService.ListDueTopics(r.Context(), userID, page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due topics")
		return
	}

	items := make([]TopicResponse, len(topics))
	for i, topic := range topics {
		items[i] = topicToResponse(topic)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewPageResponse(items, total, page))
}

// GetTopic handles GET /api/topics/{topicID} requests.
func (h *TopicHandler) GetTopic(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	topic, err := h.topicService.GetTopicForUser(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get topic")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}

// RenameTopic handles PUT /api/topics/{topicID} requests.
func (h *TopicHandler) RenameTopic(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	var req TopicRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	topic, err := h.topicService.RenameTopic(r.Context(), userID, topicID, req.Name)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to rename topic")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, topicToResponse(topic))
}

// DeleteTopic handles DELETE /api/topics/{topicID} requests.
func (h *TopicHandler) DeleteTopic(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	if err := h.topicService.DeleteTopic(r.Context(), userID, topicID); err != nil {
		HandleAPIError(w, r, err, "Failed to delete topic")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// AddCard handles POST /api/topics/{topicID}/cards requests. The new card is
// appended to the topic and its index returned; topics hold at most 25 cards.
func (h *TopicHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", log)
	if !ok {
		return
	}

	var req AddCardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := cardFromRequest(req)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	index, err := h.topicService.AddCard(r.Context(), userID, topicID, card)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to add card")
		return
	}

	log.Debug("card added",
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", index))
	shared.RespondWithJSON(w, r, http.StatusCreated, cardToResponse(index, card))
}

// GetCard handles GET /api/topics/{topicID}/cards/{cardIndex} requests.
func (h *TopicHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	index, err := getPathCardIndex(r, "cardIndex")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.topicService.GetCard(r.Context(), userID, topicID, index)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(index, card))
}

// UpdateCardWeight handles PATCH /api/topics/{topicID}/cards/{cardIndex}/weight
// requests. Weights outside the legal range are clamped into it.
func (h *TopicHandler) UpdateCardWeight(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	index, err := getPathCardIndex(r, "cardIndex")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateCardWeightRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.topicService.SetCardWeight(r.Context(), userID, topicID, index, *req.Weight)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update card weight")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(index, card))
}

// RemoveCard handles DELETE /api/topics/{topicID}/cards/{cardIndex} requests.
// Later cards shift down one index.
func (h *TopicHandler) RemoveCard(w http.ResponseWriter, r *http.Request) {
	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", nil)
	if !ok {
		return
	}

	index, err := getPathCardIndex(r, "cardIndex")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	if err := h.topicService.RemoveCard(r.Context(), userID, topicID, index); err != nil {
		HandleAPIError(w, r, err, "Failed to remove card")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// cardFromRequest builds a domain card and validates it, so the shape rules
// for each card type apply. CorrectIndex stays a pointer: an omitted index is
// a different failure than an out-of-range one.
func cardFromRequest(req AddCardRequest) (domain.Card, error) {
	card := domain.Card{
		Type:     domain.CardType(req.Type),
		Weight:   domain.DefaultCardWeight,
		Question: req.Question,
	}

	switch card.Type {
	case domain.CardTypeMultipleChoice:
		card.Choices = req.Choices
		card.CorrectIndex = req.CorrectIndex
		card.Explanation = req.Explanation
	default:
		card.Answer = req.Answer
		card.Hint = req.Hint
	}

	if err := card.Validate(); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}
