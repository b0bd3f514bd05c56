package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service/review"
)

// ReviewHandler handles the study flow: picking the next card of a topic and
// recording the outcome of a review round.
type ReviewHandler struct {
	reviewService review.ReviewService
	validator     *validator.Validate
	logger        *slog.Logger
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewService review.ReviewService, logger *slog.Logger) *ReviewHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReviewHandler")
	}

	return &ReviewHandler{
		reviewService: reviewService,
		validator:     validator.New(),
		logger:        logger.With(slog.String("component", "review_handler")),
	}
}

// GetReviewCard handles GET /api/topics/{topicID}/review-card requests. The
// card is drawn by weighted random sampling over the topic's cards; a topic
// without cards yields a conflict.
func (h *ReviewHandler) GetReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", log)
	if !ok {
		return
	}

	picked, err := h.reviewService.GetReviewCard(r.Context(), userID, topicID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get review card")
		return
	}

	log.Debug("review card picked",
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", picked.CardIndex))

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewCardResponse{
		TopicID:   picked.TopicID,
		CardIndex: picked.CardIndex,
		Card:      cardToResponse(picked.CardIndex, picked.Card),
	})
}

// SubmitReview handles POST /api/topics/{topicID}/review requests. The score
// reruns the scheduler; the topic's state and the card's weight are persisted
// together and the new scheduling state returned.
func (h *ReviewHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, topicID, ok := handleUserIDAndPathUUID(w, r, "topicID", log)
	if !ok {
		return
	}

	var req SubmitReviewRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	topic, err := h.reviewService.SubmitReview(r.Context(), userID, topicID, *req.CardIndex, *req.Score)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	card, err := topic.CardAt(*req.CardIndex)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit review")
		return
	}

	log.Debug("review recorded",
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", *req.CardIndex),
		slog.Int("score", *req.Score))

	shared.RespondWithJSON(w, r, http.StatusOK, ReviewResultResponse{
		TopicID:        topic.ID,
		CardIndex:      *req.CardIndex,
		CardWeight:     card.Weight,
		Stability:      topic.Stability,
		Difficulty:     topic.Difficulty,
		NextReviewAt:   topic.NextReviewAt,
		LastReviewedAt: topic.LastReviewedAt,
	})
}
