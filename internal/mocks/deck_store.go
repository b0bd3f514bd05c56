package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockDeckStore implements store.DeckStore for testing
type MockDeckStore struct {
	// Function fields for customizable behavior
	CreateFn     func(ctx context.Context, deck *domain.Deck) error
	GetByIDFn    func(ctx context.Context, id uuid.UUID) (*domain.Deck, error)
	ListByUserFn func(ctx context.Context, userID uuid.UUID, page store.Pagination) ([]*domain.Deck, int64, error)
	UpdateFn     func(ctx context.Context, deck *domain.Deck) error
	DeleteFn     func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by deck ID
	Decks map[uuid.UUID]*domain.Deck
}

// NewMockDeckStore creates a new mock store with initialized defaults
func NewMockDeckStore() *MockDeckStore {
	return &MockDeckStore{
		Decks: make(map[uuid.UUID]*domain.Deck),
	}
}

// Create implements the DeckStore interface
func (m *MockDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, deck)
	}

	for _, existing := range m.Decks {
		if existing.UserID == deck.UserID && existing.Name == deck.Name {
			return store.ErrDeckNameExists
		}
	}

	m.Decks[deck.ID] = deck
	return nil
}

// GetByID implements the DeckStore interface
func (m *MockDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	deck, exists := m.Decks[id]
	if !exists {
		return nil, store.ErrDeckNotFound
	}

	return deck, nil
}

// ListByUser implements the DeckStore interface
func (m *MockDeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Deck, int64, error) {
	if m.ListByUserFn != nil {
		return m.ListByUserFn(ctx, userID, page)
	}

	// Default implementation returns the user's decks unpaged; tests that
	// care about ordering or paging set ListByUserFn
	decks := make([]*domain.Deck, 0)
	for _, deck := range m.Decks {
		if deck.UserID == userID {
			decks = append(decks, deck)
		}
	}

	return decks, int64(len(decks)), nil
}

// Update implements the DeckStore interface
func (m *MockDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, deck)
	}

	if _, exists := m.Decks[deck.ID]; !exists {
		return store.ErrDeckNotFound
	}

	for _, existing := range m.Decks {
		if existing.ID != deck.ID && existing.UserID == deck.UserID &&
			existing.Name == deck.Name {
			return store.ErrDeckNameExists
		}
	}

	m.Decks[deck.ID] = deck
	return nil
}

// Delete implements the DeckStore interface
func (m *MockDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Decks[id]; !exists {
		return store.ErrDeckNotFound
	}

	delete(m.Decks, id)
	return nil
}

// WithTx implements the DeckStore interface for transaction support
func (m *MockDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	// For mock purposes, just return the same mock
	return m
}

// Ensure MockDeckStore implements store.DeckStore
var _ store.DeckStore = (*MockDeckStore)(nil)
