package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// TopicStore defines the interface for topic data persistence. A topic row
// carries both the spaced-repetition scheduling state and the embedded card
// collection (a JSONB array), so review updates touch a single row.
type TopicStore interface {
	// Create saves a new topic to the store.
	// It handles domain validation internally.
	Create(ctx context.Context, topic *domain.Topic) error

	// GetByID retrieves a topic by its unique ID, cards included.
	// Returns ErrTopicNotFound if the topic does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error)

	// ListByDeck returns a page of the deck's topics ordered by creation
	// time together with the deck's total topic count.
	ListByDeck(ctx context.Context, deckID uuid.UUID, page Pagination) ([]*domain.Topic, int64, error)

	// ListDue returns a page of the user's topics whose next review time is
	// at or before now, most overdue first, together with the total due
	// count.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, page Pagination) ([]*domain.Topic, int64, error)

	// Update saves the full topic row, cards included.
	// Returns ErrTopicNotFound if the topic does not exist.
	Update(ctx context.Context, topic *domain.Topic) error

	// UpdateReviewState persists the outcome of one review in a single
	// UPDATE: the new scheduling state plus the card collection (whose
	// reviewed card carries an adjusted weight).
	// Returns ErrTopicNotFound if the topic does not exist.
	UpdateReviewState(ctx context.Context, topic *domain.Topic) error

	// CountByDeck returns the number of topics in the deck.
	CountByDeck(ctx context.Context, deckID uuid.UUID) (int64, error)

	// Delete removes a topic from the store by its ID.
	// Returns ErrTopicNotFound if the topic does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new TopicStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) TopicStore
}
