package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// DeckService provides deck-related operations. Every operation that touches
// an existing deck verifies the deck belongs to the requesting user; a deck
// owned by someone else yields ErrNotOwned.
type DeckService interface {
	// CreateDeck creates a new deck owned by the user
	CreateDeck(ctx context.Context, userID uuid.UUID, name, description string) (*domain.Deck, error)

	// GetDeck retrieves one of the user's decks by ID
	GetDeck(ctx context.Context, userID, deckID uuid.UUID) (*domain.Deck, error)

	// ListDecks returns a page of the user's decks with the total count
	ListDecks(ctx context.Context, userID uuid.UUID, page store.Pagination) ([]*domain.Deck, int64, error)

	// UpdateDeck renames and redescribes one of the user's decks
	UpdateDeck(ctx context.Context, userID, deckID uuid.UUID, name, description string) (*domain.Deck, error)

	// DeleteDeck removes one of the user's decks and, through the schema's
	// cascade, all topics in it
	DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error
}

// DeckServiceImpl implements the DeckService interface
type DeckServiceImpl struct {
	deckStore store.DeckStore
	db        *sql.DB
	logger    *slog.Logger
}

// NewDeckService creates a new DeckService
func NewDeckService(deckStore store.DeckStore, db *sql.DB, logger *slog.Logger) DeckService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DeckServiceImpl{
		deckStore: deckStore,
		db:        db,
		logger:    logger.With("component", "deck_service"),
	}
}

// CreateDeck creates a new deck owned by the user
// Uses a transaction to ensure atomicity of the operation
func (s *DeckServiceImpl) CreateDeck(
	ctx context.Context,
	userID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, name, description)
	if err != nil {
		s.logger.Debug("rejected invalid deck data",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.deckStore.WithTx(tx)
		return txStore.Create(ctx, deck)
	})

	if err != nil {
		if errors.Is(err, store.ErrDeckNameExists) {
			s.logger.Debug("attempted to create deck with duplicate name",
				"user_id", userID,
				"name", name)
		} else {
			s.logger.Error("failed to save deck to database",
				"error", err,
				"user_id", userID)
		}
		return nil, fmt.Errorf("failed to create deck: %w", err)
	}

	s.logger.Info("deck created successfully",
		"deck_id", deck.ID,
		"user_id", userID)

	return deck, nil
}

// GetDeck retrieves one of the user's decks by ID
func (s *DeckServiceImpl) GetDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
) (*domain.Deck, error) {
	deck, err := s.deckStore.GetByID(ctx, deckID)
	if err != nil {
		if errors.Is(err, store.ErrDeckNotFound) {
			s.logger.Debug("deck not found",
				"deck_id", deckID)
		} else {
			s.logger.Error("failed to retrieve deck",
				"error", err,
				"deck_id", deckID)
		}
		return nil, fmt.Errorf("failed to retrieve deck: %w", err)
	}

	if deck.UserID != userID {
		s.logger.Debug("deck owned by another user",
			"deck_id", deckID,
			"user_id", userID)
		return nil, ErrNotOwned
	}

	return deck, nil
}

// ListDecks returns a page of the user's decks with the total count
func (s *DeckServiceImpl) ListDecks(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Deck, int64, error) {
	decks, total, err := s.deckStore.ListByUser(ctx, userID, page)
	if err != nil {
		s.logger.Error("failed to list decks",
			"error", err,
			"user_id", userID)
		return nil, 0, fmt.Errorf("failed to list decks: %w", err)
	}

	s.logger.Debug("listed decks successfully",
		"user_id", userID,
		"count", len(decks),
		"total", total)

	return decks, total, nil
}

// UpdateDeck renames and redescribes one of the user's decks
// Uses a transaction so the ownership check and the write see the same row
func (s *DeckServiceImpl) UpdateDeck(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name, description string,
) (*domain.Deck, error) {
	var updated *domain.Deck

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.deckStore.WithTx(tx)

		deck, err := txStore.GetByID(ctx, deckID)
		if err != nil {
			s.logger.Debug("failed to retrieve deck for update",
				"error", err,
				"deck_id", deckID)
			return fmt.Errorf("failed to retrieve deck for update: %w", err)
		}

		if deck.UserID != userID {
			s.logger.Debug("deck owned by another user",
				"deck_id", deckID,
				"user_id", userID)
			return ErrNotOwned
		}

		if err := deck.Update(name, description); err != nil {
			s.logger.Debug("rejected invalid deck data",
				"error", err,
				"deck_id", deckID)
			return fmt.Errorf("invalid deck data: %w", err)
		}

		if err := txStore.Update(ctx, deck); err != nil {
			if errors.Is(err, store.ErrDeckNameExists) {
				s.logger.Debug("attempted to rename deck to a duplicate name",
					"deck_id", deckID,
					"name", name)
			} else {
				s.logger.Error("failed to update deck",
					"error", err,
					"deck_id", deckID)
			}
			return fmt.Errorf("failed to update deck: %w", err)
		}

		updated = deck
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deck updated successfully in transaction",
		"deck_id", deckID,
		"user_id", userID)

	return updated, nil
}

// DeleteDeck removes one of the user's decks
// Uses a transaction so the ownership check and the delete see the same row
func (s *DeckServiceImpl) DeleteDeck(ctx context.Context, userID, deckID uuid.UUID) error {
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.deckStore.WithTx(tx)

		deck, err := txStore.GetByID(ctx, deckID)
		if err != nil {
			s.logger.Debug("failed to retrieve deck for delete",
				"error", err,
				"deck_id", deckID)
			return fmt.Errorf("failed to retrieve deck for delete: %w", err)
		}

		if deck.UserID != userID {
			s.logger.Debug("deck owned by another user",
				"deck_id", deckID,
				"user_id", userID)
			return ErrNotOwned
		}

		if err := txStore.Delete(ctx, deckID); err != nil {
			s.logger.Error("failed to delete deck",
				"error", err,
				"deck_id", deckID)
			return fmt.Errorf("failed to delete deck: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("deck deleted successfully in transaction",
		"deck_id", deckID,
		"user_id", userID)

	return nil
}

// Ensure DeckServiceImpl implements DeckService
var _ DeckService = (*DeckServiceImpl)(nil)
