package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockDeckService implements service.DeckService for testing.
type MockDeckService struct {
	// Custom behavior functions
	CreateDeckFn func(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error)
	GetDeckFn    func(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)
	ListDecksFn  func(ctx context.Context, userID uuid.UUID, page store.Pagination) ([]*domain.Deck, int64, error)
	UpdateDeckFn func(ctx context.Context, userID, deckID uuid.UUID, name, description string) (*domain.Deck, error)
	DeleteDeckFn func(ctx context.Context, userID, deckID uuid.UUID) error

	// Default response values
	Deck  *domain.Deck
	Decks []*domain.Deck
	Total int64
	Err   error
}

func (m *MockDeckService) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	if m.CreateDeckFn != nil {
		return m.CreateDeckFn(ctx, userID, name, description)
	}
	return m.Deck, m.Err
}

func (m *MockDeckService) GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error) {
	if m.GetDeckFn != nil {
		return m.GetDeckFn(ctx, userID, deckID)
	}
	return m.Deck, m.Err
}

func (m *MockDeckService) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Deck, int64, error) {
	if m.ListDecksFn != nil {
		return m.ListDecksFn(ctx, userID, page)
	}
	return m.Decks, m.Total, m.Err
}

func (m *MockDeckService) UpdateDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	if m.UpdateDeckFn != nil {
		return m.UpdateDeckFn(ctx, userID, deckID, name, description)
	}
	return m.Deck, m.Err
}

func (m *MockDeckService) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	if m.DeleteDeckFn != nil {
		return m.DeleteDeckFn(ctx, userID, deckID)
	}
	return m.Err
}

// Ensure MockDeckService implements service.DeckService
var _ service.DeckService = (*MockDeckService)(nil)
