package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// DeckStore defines the interface for deck data persistence.
type DeckStore interface {
	// Create saves a new deck to the store.
	// It handles domain validation internally.
	// Returns ErrDeckNameExists if the owner already has a deck with the
	// same name.
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID retrieves a deck by its unique ID.
	// Returns ErrDeckNotFound if the deck does not exist.
	// Ownership checks belong to the service layer.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser returns a page of the user's decks ordered by creation
	// time together with the user's total deck count.
	ListByUser(ctx context.Context, userID uuid.UUID, page Pagination) ([]*domain.Deck, int64, error)

	// Update saves changes to an existing deck.
	// Returns ErrDeckNotFound if the deck does not exist.
	// Returns ErrDeckNameExists if renaming to a name the owner already uses.
	Update(ctx context.Context, deck *domain.Deck) error

	// Delete removes a deck and, through the schema's cascade, its topics.
	// Returns ErrDeckNotFound if the deck does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// WithTx returns a new DeckStore instance that uses the provided transaction.
	// This allows for multiple operations to be executed within a single transaction.
	// The transaction should be created and managed by the caller (typically a service).
	WithTx(tx *sql.Tx) DeckStore
}
