package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// PostgresTopicStore implements the store.TopicStore interface
// using a PostgreSQL database as the storage backend. The topic's card
// collection is stored in a JSONB column so one row carries everything a
// review touches.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStore creates a new PostgreSQL implementation of the TopicStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTopicStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

// Ensure PostgresTopicStore implements store.TopicStore interface
var _ store.TopicStore = (*PostgresTopicStore)(nil)

// topicColumns is the column list shared by all topic queries, in the order
// scanTopic expects.
const topicColumns = `id, deck_id, user_id, name, stability, difficulty, next_review_at, last_reviewed_at, cards, created_at, updated_at`

// Create implements store.TopicStore.Create
// It saves a new topic to the database, handling domain validation.
// Returns store.ErrInvalidEntity if the deck or user doesn't exist (foreign key violation).
func (s *PostgresTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate topic data
	if err := topic.Validate(); err != nil {
		log.Warn("topic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	cards, err := marshalCards(topic.Cards)
	if err != nil {
		return fmt.Errorf("failed to encode cards: %w", err)
	}

	query := `
		INSERT INTO topics (id, deck_id, user_id, name, stability, difficulty, next_review_at, last_reviewed_at, cards, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		topic.ID,
		topic.DeckID,
		topic.UserID,
		topic.Name,
		topic.Stability,
		topic.Difficulty,
		topic.NextReviewAt,
		nullTime(topic.LastReviewedAt),
		cards,
		topic.CreatedAt,
		topic.UpdatedAt,
	)

	if err != nil {
		mapped := MapError(err)
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("foreign key violation during topic creation",
				slog.String("error", err.Error()),
				slog.String("topic_id", topic.ID.String()),
				slog.String("deck_id", topic.DeckID.String()))
			return mapped
		}

		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()),
			slog.String("deck_id", topic.DeckID.String()))
		return mapped
	}

	log.Info("topic created successfully",
		slog.String("topic_id", topic.ID.String()),
		slog.String("deck_id", topic.DeckID.String()),
		slog.Int("card_count", len(topic.Cards)))
	return nil
}

// GetByID implements store.TopicStore.GetByID
// It retrieves a topic by its unique ID, cards included.
// Returns store.ErrTopicNotFound if the topic does not exist.
func (s *PostgresTopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving topic by ID", slog.String("topic_id", id.String()))

	query := `SELECT ` + topicColumns + ` FROM topics WHERE id = $1`

	topic, err := scanTopic(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("topic not found", slog.String("topic_id", id.String()))
			return nil, store.ErrTopicNotFound
		}
		log.Error("failed to get topic by ID",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return nil, err
	}

	return topic, nil
}

// ListByDeck implements store.TopicStore.ListByDeck
// It returns a page of the deck's topics ordered by creation time plus the
// deck's total topic count.
func (s *PostgresTopicStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	countQuery := `SELECT COUNT(*) FROM topics WHERE deck_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, deckID).Scan(&total); err != nil {
		log.Error("failed to count topics",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, 0, err
	}

	query := `
		SELECT ` + topicColumns + `
		FROM topics
		WHERE deck_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	topics, err := s.queryTopics(ctx, query, deckID, page.Limit(), page.Offset())
	if err != nil {
		log.Error("failed to query topics by deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return nil, 0, err
	}

	log.Debug("listed topics",
		slog.String("deck_id", deckID.String()),
		slog.Int("count", len(topics)),
		slog.Int64("total", total))
	return topics, total, nil
}

// ListDue implements store.TopicStore.ListDue
// It returns a page of the user's due topics, most overdue first, plus the
// total due count.
func (s *PostgresTopicStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	countQuery := `SELECT COUNT(*) FROM topics WHERE user_id = $1 AND next_review_at <= $2`
	if err := s.db.QueryRowContext(ctx, countQuery, userID, now).Scan(&total); err != nil {
		log.Error("failed to count due topics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, err
	}

	query := `
		SELECT ` + topicColumns + `
		FROM topics
		WHERE user_id = $1 AND next_review_at <= $2
		ORDER BY next_review_at ASC
		LIMIT $3 OFFSET $4
	`

	topics, err := s.queryTopics(ctx, query, userID, now, page.Limit(), page.Offset())
	if err != nil {
		log.Error("failed to query due topics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, err
	}

	log.Debug("listed due topics",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(topics)),
		slog.Int64("total", total))
	return topics, total, nil
}

// Update implements store.TopicStore.Update
// It saves the full topic row, cards included.
// Returns store.ErrTopicNotFound if the topic does not exist.
func (s *PostgresTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate topic data
	if err := topic.Validate(); err != nil {
		log.Warn("topic validation failed during update",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	cards, err := marshalCards(topic.Cards)
	if err != nil {
		return fmt.Errorf("failed to encode cards: %w", err)
	}

	topic.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE topics
		SET name = $1, stability = $2, difficulty = $3, next_review_at = $4, last_reviewed_at = $5, cards = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		topic.Name,
		topic.Stability,
		topic.Difficulty,
		topic.NextReviewAt,
		nullTime(topic.LastReviewedAt),
		cards,
		topic.UpdatedAt,
		topic.ID,
	)

	if err != nil {
		log.Error("failed to update topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrTopicNotFound); err != nil {
		log.Debug("topic not found for update", slog.String("topic_id", topic.ID.String()))
		return err
	}

	log.Info("topic updated successfully",
		slog.String("topic_id", topic.ID.String()),
		slog.Int("card_count", len(topic.Cards)))
	return nil
}

// UpdateReviewState implements store.TopicStore.UpdateReviewState
// It persists the outcome of one review in a single UPDATE: the new
// scheduling state plus the card collection with the reviewed card's
// adjusted weight.
// Returns store.ErrTopicNotFound if the topic does not exist.
func (s *PostgresTopicStore) UpdateReviewState(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	cards, err := marshalCards(topic.Cards)
	if err != nil {
		return fmt.Errorf("failed to encode cards: %w", err)
	}

	topic.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE topics
		SET stability = $1, difficulty = $2, next_review_at = $3, last_reviewed_at = $4, cards = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		topic.Stability,
		topic.Difficulty,
		topic.NextReviewAt,
		nullTime(topic.LastReviewedAt),
		cards,
		topic.UpdatedAt,
		topic.ID,
	)

	if err != nil {
		log.Error("failed to update topic review state",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrTopicNotFound); err != nil {
		log.Debug("topic not found for review state update",
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	log.Info("topic review state updated",
		slog.String("topic_id", topic.ID.String()),
		slog.Time("next_review_at", topic.NextReviewAt))
	return nil
}

// CountByDeck implements store.TopicStore.CountByDeck
func (s *PostgresTopicStore) CountByDeck(ctx context.Context, deckID uuid.UUID) (int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int64
	query := `SELECT COUNT(*) FROM topics WHERE deck_id = $1`
	if err := s.db.QueryRowContext(ctx, query, deckID).Scan(&count); err != nil {
		log.Error("failed to count topics by deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deckID.String()))
		return 0, err
	}

	return count, nil
}

// Delete implements store.TopicStore.Delete
// It removes a topic from the database by its ID.
// Returns store.ErrTopicNotFound if the topic does not exist.
func (s *PostgresTopicStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM topics WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrTopicNotFound); err != nil {
		log.Debug("topic not found for delete", slog.String("topic_id", id.String()))
		return err
	}

	log.Info("topic deleted successfully", slog.String("topic_id", id.String()))
	return nil
}

// WithTx implements store.TopicStore.WithTx
// It returns a new TopicStore that runs all operations on the given transaction.
func (s *PostgresTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &PostgresTopicStore{
		db:     tx,
		logger: s.logger,
	}
}

// queryTopics runs a multi-row topic query and scans all rows.
func (s *PostgresTopicStore) queryTopics(
	ctx context.Context,
	query string,
	args ...any,
) ([]*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	topics := []*domain.Topic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			return nil, err
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return topics, nil
}

// scanTopic reads one topic row in topicColumns order, decoding the JSONB
// card collection.
func scanTopic(row rowScanner) (*domain.Topic, error) {
	var topic domain.Topic
	var lastReviewed sql.NullTime
	var cards []byte

	err := row.Scan(
		&topic.ID,
		&topic.DeckID,
		&topic.UserID,
		&topic.Name,
		&topic.Stability,
		&topic.Difficulty,
		&topic.NextReviewAt,
		&lastReviewed,
		&cards,
		&topic.CreatedAt,
		&topic.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if lastReviewed.Valid {
		topic.LastReviewedAt = lastReviewed.Time
	}

	topic.Cards = []domain.Card{}
	if len(cards) > 0 {
		if err := json.Unmarshal(cards, &topic.Cards); err != nil {
			return nil, fmt.Errorf("failed to decode cards: %w", err)
		}
	}

	return &topic, nil
}

// marshalCards encodes the card collection for the JSONB cards column.
// An empty collection is stored as an empty JSON array, never NULL.
func marshalCards(cards []domain.Card) ([]byte, error) {
	if cards == nil {
		cards = []domain.Card{}
	}
	return json.Marshal(cards)
}

// nullTime converts a possibly zero time to its nullable SQL form.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
