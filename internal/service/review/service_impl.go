package review

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// Verify interface compliance at compile time
var _ ReviewService = (*reviewServiceImpl)(nil)

// reviewServiceImpl implements the ReviewService interface.
type reviewServiceImpl struct {
	topicStore store.TopicStore
	scheduler  srs.Service
	sampler    *srs.Sampler
	db         *sql.DB
	logger     *slog.Logger

	// now is swapped in tests for deterministic scheduling
	now func() time.Time
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(
	topicStore store.TopicStore,
	scheduler srs.Service,
	sampler *srs.Sampler,
	db *sql.DB,
	logger *slog.Logger,
) ReviewService {
	// Validate inputs
	if topicStore == nil {
		panic("topicStore cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if sampler == nil {
		panic("sampler cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &reviewServiceImpl{
		topicStore: topicStore,
		scheduler:  scheduler,
		sampler:    sampler,
		db:         db,
		logger:     logger.With(slog.String("component", "review_service")),
		now:        time.Now,
	}
}

// GetReviewCard implements ReviewService.GetReviewCard.
// It picks the card of the topic to study next by weighted random selection.
func (s *reviewServiceImpl) GetReviewCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*ReviewCard, error) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("selecting review card",
		slog.String("user_id", userID.String()),
		slog.String("topic_id", topicID.String()))

	topic, err := s.topicStore.GetByID(ctx, topicID)
	if err != nil {
		log.Error("failed to get topic for review",
			slog.String("error", err.Error()),
			slog.String("topic_id", topicID.String()))
		return nil, NewGetReviewCardError("failed to get topic", err)
	}

	if topic.UserID != userID {
		log.Debug("topic owned by another user",
			slog.String("user_id", userID.String()),
			slog.String("topic_id", topicID.String()))
		return nil, service.ErrNotOwned
	}

	if len(topic.Cards) == 0 {
		log.Debug("topic has no cards to review",
			slog.String("topic_id", topicID.String()))
		return nil, ErrNoCards
	}

	index, err := s.sampler.Pick(topic.CardWeights())
	if err != nil {
		log.Error("failed to sample review card",
			slog.String("error", err.Error()),
			slog.String("topic_id", topicID.String()))
		return nil, NewGetReviewCardError("failed to sample card", err)
	}

	card, err := topic.CardAt(index)
	if err != nil {
		return nil, NewGetReviewCardError("sampled index names no card", err)
	}

	log.Debug("successfully selected review card",
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", index))

	return &ReviewCard{
		TopicID:   topic.ID,
		CardIndex: index,
		Card:      card,
	}, nil
}

// SubmitReview implements ReviewService.SubmitReview.
// It records the user's score for a card and advances the topic's schedule.
func (s *reviewServiceImpl) SubmitReview(
	ctx context.Context,
	userID, topicID uuid.UUID,
	cardIndex int,
	score int,
) (*domain.Topic, error) {
	// Get logger from context or use default
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review score",
		slog.String("user_id", userID.String()),
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", cardIndex),
		slog.Int("score", score))

	// Validate the score before touching the database
	if !srs.Score(score).IsValid() {
		log.Warn("invalid review score",
			slog.String("user_id", userID.String()),
			slog.String("topic_id", topicID.String()),
			slog.Int("score", score))
		return nil, srs.ErrInvalidScore
	}

	// The read, the scheduling update and the write run in a single
	// transaction so concurrent reviews of the same topic serialize
	var reviewed *domain.Topic
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.topicStore.WithTx(tx)

		topic, err := txStore.GetByID(ctx, topicID)
		if err != nil {
			log.Error("failed to get topic for review",
				slog.String("error", err.Error()),
				slog.String("topic_id", topicID.String()))
			return NewSubmitReviewError("failed to get topic", err)
		}

		if topic.UserID != userID {
			log.Debug("topic owned by another user",
				slog.String("user_id", userID.String()),
				slog.String("topic_id", topicID.String()))
			return service.ErrNotOwned
		}

		card, err := topic.CardAt(cardIndex)
		if err != nil {
			log.Warn("review names no card",
				slog.String("topic_id", topicID.String()),
				slog.Int("card_index", cardIndex),
				slog.Int("card_count", len(topic.Cards)))
			return err
		}

		newState, newWeight, err := s.scheduler.Review(
			topic.SchedulingState(),
			card.Weight,
			srs.Score(score),
			s.now().UTC(),
		)
		if err != nil {
			return NewSubmitReviewError("scheduling failed", err)
		}

		if err := topic.ApplyReview(newState, cardIndex, newWeight); err != nil {
			return NewSubmitReviewError("failed to apply review", err)
		}

		if err := txStore.UpdateReviewState(ctx, topic); err != nil {
			log.Error("failed to persist review",
				slog.String("error", err.Error()),
				slog.String("topic_id", topicID.String()))
			return NewSubmitReviewError("failed to persist review", err)
		}

		reviewed = topic
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info("review submitted successfully",
		slog.String("user_id", userID.String()),
		slog.String("topic_id", topicID.String()),
		slog.Int("card_index", cardIndex),
		slog.Int("score", score),
		slog.Time("next_review_at", reviewed.NextReviewAt))

	return reviewed, nil
}
