package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// topicTestColumns matches topicColumns order for building mock rows.
var topicTestColumns = []string{
	"id", "deck_id", "user_id", "name", "stability", "difficulty",
	"next_review_at", "last_reviewed_at", "cards", "created_at", "updated_at",
}

func newTestTopic(t *testing.T) *domain.Topic {
	t.Helper()
	topic, err := domain.NewTopic(uuid.New(), uuid.New(), "Irregular Verbs", srs.State{
		Stability:  24,
		Difficulty: 5,
		NextReview: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return topic
}

func TestPostgresTopicStore_Create(t *testing.T) {
	t.Run("creates topic with empty card collection", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		topic := newTestTopic(t)

		mock.ExpectExec("INSERT INTO topics").
			WithArgs(
				topic.ID,
				topic.DeckID,
				topic.UserID,
				topic.Name,
				topic.Stability,
				topic.Difficulty,
				topic.NextReviewAt,
				nullTime(time.Time{}),
				[]byte(`[]`),
				topic.CreatedAt,
				topic.UpdatedAt,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresTopicStore(db, nil)
		require.NoError(t, s.Create(context.Background(), topic))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown deck maps to invalid entity", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		topic := newTestTopic(t)

		mock.ExpectExec("INSERT INTO topics").
			WillReturnError(&pgconn.PgError{
				Code:           "23503",
				ConstraintName: "topics_deck_id_fkey",
			})

		s := NewPostgresTopicStore(db, nil)
		assert.ErrorIs(t, s.Create(context.Background(), topic), store.ErrInvalidEntity)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("validation failure skips the database", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		s := NewPostgresTopicStore(db, nil)
		err = s.Create(context.Background(), &domain.Topic{ID: uuid.New()})

		assert.ErrorIs(t, err, domain.ErrEmptyTopicDeckID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_GetByID(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	topicID := uuid.New()
	deckID := uuid.New()
	userID := uuid.New()

	t.Run("returns topic with decoded cards", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		cards := []byte(`[{"type":"qa_hint","question":"ser vs estar?","answer":"permanent vs temporary","weight":1.2}]`)
		rows := sqlmock.NewRows(topicTestColumns).AddRow(
			topicID.String(), deckID.String(), userID.String(), "Irregular Verbs",
			24.0, 5.0, now, nil, cards, now, now,
		)
		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(topicID).
			WillReturnRows(rows)

		s := NewPostgresTopicStore(db, nil)
		topic, err := s.GetByID(context.Background(), topicID)

		require.NoError(t, err)
		assert.Equal(t, topicID, topic.ID)
		assert.Equal(t, 24.0, topic.Stability)
		assert.True(t, topic.LastReviewedAt.IsZero())
		require.Len(t, topic.Cards, 1)
		assert.Equal(t, domain.CardTypeQAHint, topic.Cards[0].Type)
		assert.Equal(t, 1.2, topic.Cards[0].Weight)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty cards column yields empty collection", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		rows := sqlmock.NewRows(topicTestColumns).AddRow(
			topicID.String(), deckID.String(), userID.String(), "Irregular Verbs",
			24.0, 5.0, now, now, []byte(`[]`), now, now,
		)
		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(topicID).
			WillReturnRows(rows)

		s := NewPostgresTopicStore(db, nil)
		topic, err := s.GetByID(context.Background(), topicID)

		require.NoError(t, err)
		assert.NotNil(t, topic.Cards)
		assert.Empty(t, topic.Cards)
		assert.Equal(t, now, topic.LastReviewedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing topic returns not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(topicID).
			WillReturnRows(sqlmock.NewRows(topicTestColumns))

		s := NewPostgresTopicStore(db, nil)
		topic, err := s.GetByID(context.Background(), topicID)

		assert.ErrorIs(t, err, store.ErrTopicNotFound)
		assert.Nil(t, topic)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_ListDue(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	userID := uuid.New()

	t.Run("returns due topics most overdue first", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM topics WHERE user_id`).
			WithArgs(userID, now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		overdue := now.Add(-48 * time.Hour)
		rows := sqlmock.NewRows(topicTestColumns).
			AddRow(uuid.NewString(), uuid.NewString(), userID.String(), "Oldest",
				24.0, 5.0, overdue, nil, []byte(`[]`), overdue, overdue).
			AddRow(uuid.NewString(), uuid.NewString(), userID.String(), "Newer",
				24.0, 5.0, now, nil, []byte(`[]`), now, now)
		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(userID, now, 20, 0).
			WillReturnRows(rows)

		s := NewPostgresTopicStore(db, nil)
		topics, total, err := s.ListDue(context.Background(), userID, now, store.NewPagination(1, 20))

		require.NoError(t, err)
		assert.Equal(t, int64(2), total)
		require.Len(t, topics, 2)
		assert.Equal(t, "Oldest", topics[0].Name)
		assert.Equal(t, "Newer", topics[1].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no due topics returns empty slice", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM topics WHERE user_id`).
			WithArgs(userID, now).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(userID, now, 20, 0).
			WillReturnRows(sqlmock.NewRows(topicTestColumns))

		s := NewPostgresTopicStore(db, nil)
		topics, total, err := s.ListDue(context.Background(), userID, now, store.NewPagination(1, 20))

		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.NotNil(t, topics)
		assert.Empty(t, topics)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_ListByDeck(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	deckID := uuid.New()

	t.Run("returns page and total", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM topics WHERE deck_id`).
			WithArgs(deckID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

		rows := sqlmock.NewRows(topicTestColumns).
			AddRow(uuid.NewString(), deckID.String(), uuid.NewString(), "Irregular Verbs",
				24.0, 5.0, now, nil, []byte(`[]`), now, now)
		mock.ExpectQuery("SELECT id, deck_id, user_id").
			WithArgs(deckID, 20, 0).
			WillReturnRows(rows)

		s := NewPostgresTopicStore(db, nil)
		topics, total, err := s.ListByDeck(context.Background(), deckID, store.NewPagination(1, 20))

		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, topics, 1)
		assert.Equal(t, deckID, topics[0].DeckID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_UpdateReviewState(t *testing.T) {
	t.Run("persists scheduling state and cards in one update", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		topic := newTestTopic(t)
		card, err := domain.NewQAHintCard("ser vs estar?", "permanent vs temporary", "")
		require.NoError(t, err)
		require.NoError(t, topic.AddCard(card))
		topic.LastReviewedAt = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectExec("UPDATE topics SET stability").
			WithArgs(
				topic.Stability,
				topic.Difficulty,
				topic.NextReviewAt,
				nullTime(topic.LastReviewedAt),
				sqlmock.AnyArg(), // cards JSON
				sqlmock.AnyArg(), // updated_at
				topic.ID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresTopicStore(db, nil)
		require.NoError(t, s.UpdateReviewState(context.Background(), topic))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing topic returns not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		topic := newTestTopic(t)

		mock.ExpectExec("UPDATE topics SET stability").
			WillReturnResult(sqlmock.NewResult(0, 0))

		s := NewPostgresTopicStore(db, nil)
		assert.ErrorIs(t, s.UpdateReviewState(context.Background(), topic), store.ErrTopicNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_Update(t *testing.T) {
	t.Run("persists full topic row", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		topic := newTestTopic(t)
		card, err := domain.NewQAHintCard("ser vs estar?", "permanent vs temporary", "")
		require.NoError(t, err)
		require.NoError(t, topic.AddCard(card))

		mock.ExpectExec("UPDATE topics SET name").
			WithArgs(
				topic.Name,
				topic.Stability,
				topic.Difficulty,
				topic.NextReviewAt,
				nullTime(time.Time{}),
				sqlmock.AnyArg(), // cards JSON
				sqlmock.AnyArg(), // updated_at
				topic.ID,
			).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresTopicStore(db, nil)
		require.NoError(t, s.Update(context.Background(), topic))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_CountByDeck(t *testing.T) {
	deckID := uuid.New()

	t.Run("returns count", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM topics WHERE deck_id`).
			WithArgs(deckID).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

		s := NewPostgresTopicStore(db, nil)
		count, err := s.CountByDeck(context.Background(), deckID)

		require.NoError(t, err)
		assert.Equal(t, int64(7), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("count error is returned", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM topics WHERE deck_id`).
			WithArgs(deckID).
			WillReturnError(fmt.Errorf("connection refused"))

		s := NewPostgresTopicStore(db, nil)
		_, err = s.CountByDeck(context.Background(), deckID)

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresTopicStore_Delete(t *testing.T) {
	topicID := uuid.New()

	t.Run("deletes topic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("DELETE FROM topics").
			WithArgs(topicID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		s := NewPostgresTopicStore(db, nil)
		assert.NoError(t, s.Delete(context.Background(), topicID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing topic returns not found", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectExec("DELETE FROM topics").
			WithArgs(topicID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		s := NewPostgresTopicStore(db, nil)
		assert.ErrorIs(t, s.Delete(context.Background(), topicID), store.ErrTopicNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
