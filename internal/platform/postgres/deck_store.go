package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// PostgresDeckStore implements the store.DeckStore interface
// using a PostgreSQL database as the storage backend.
type PostgresDeckStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresDeckStore creates a new PostgreSQL implementation of the DeckStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresDeckStore(db store.DBTX, logger *slog.Logger) *PostgresDeckStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresDeckStore{
		db:     db,
		logger: logger.With(slog.String("component", "deck_store")),
	}
}

// Ensure PostgresDeckStore implements store.DeckStore interface
var _ store.DeckStore = (*PostgresDeckStore)(nil)

// Create implements store.DeckStore.Create
// It saves a new deck to the database, handling domain validation.
// Returns store.ErrDeckNameExists if the owner already has a deck with this name.
// Returns store.ErrInvalidEntity if the user ID doesn't exist (foreign key violation).
func (s *PostgresDeckStore) Create(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate deck data
	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during create",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	query := `
		INSERT INTO decks (id, user_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		deck.ID,
		deck.UserID,
		deck.Name,
		deck.Description,
		deck.CreatedAt,
		deck.UpdatedAt,
	)

	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("deck name already used by owner",
				slog.String("deck_id", deck.ID.String()),
				slog.String("user_id", deck.UserID.String()))
			return mapped
		}
		if errors.Is(mapped, store.ErrInvalidEntity) {
			log.Warn("foreign key violation during deck creation",
				slog.String("error", err.Error()),
				slog.String("deck_id", deck.ID.String()),
				slog.String("user_id", deck.UserID.String()))
			return mapped
		}

		log.Error("failed to create deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()),
			slog.String("user_id", deck.UserID.String()))
		return mapped
	}

	log.Info("deck created successfully",
		slog.String("deck_id", deck.ID.String()),
		slog.String("user_id", deck.UserID.String()))
	return nil
}

// GetByID implements store.DeckStore.GetByID
// It retrieves a deck by its unique ID.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving deck by ID", slog.String("deck_id", id.String()))

	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM decks
		WHERE id = $1
	`

	var deck domain.Deck
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.UserID,
		&deck.Name,
		&deck.Description,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("deck not found", slog.String("deck_id", id.String()))
			return nil, store.ErrDeckNotFound
		}
		log.Error("failed to get deck by ID",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return nil, err
	}

	return &deck, nil
}

// ListByUser implements store.DeckStore.ListByUser
// It returns a page of the user's decks ordered by creation time plus the
// user's total deck count.
func (s *PostgresDeckStore) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Deck, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	countQuery := `SELECT COUNT(*) FROM decks WHERE user_id = $1`
	if err := s.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		log.Error("failed to count decks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, err
	}

	query := `
		SELECT id, user_id, name, description, created_at, updated_at
		FROM decks
		WHERE user_id = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := s.db.QueryContext(ctx, query, userID, page.Limit(), page.Offset())
	if err != nil {
		log.Error("failed to query decks",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, 0, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	decks := []*domain.Deck{}
	for rows.Next() {
		var deck domain.Deck
		err := rows.Scan(
			&deck.ID,
			&deck.UserID,
			&deck.Name,
			&deck.Description,
			&deck.CreatedAt,
			&deck.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan deck row", slog.String("error", err.Error()))
			return nil, 0, err
		}
		decks = append(decks, &deck)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, err
	}

	log.Debug("listed decks",
		slog.String("user_id", userID.String()),
		slog.Int("count", len(decks)),
		slog.Int64("total", total))
	return decks, total, nil
}

// Update implements store.DeckStore.Update
// It saves changes to an existing deck's name and description.
// Returns store.ErrDeckNotFound if the deck does not exist.
// Returns store.ErrDeckNameExists if renaming to a name the owner already uses.
func (s *PostgresDeckStore) Update(ctx context.Context, deck *domain.Deck) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate deck data
	if err := deck.Validate(); err != nil {
		log.Warn("deck validation failed during update",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return err
	}

	deck.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE decks
		SET name = $1, description = $2, updated_at = $3
		WHERE id = $4
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		deck.Name,
		deck.Description,
		deck.UpdatedAt,
		deck.ID,
	)

	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("deck name already used by owner",
				slog.String("deck_id", deck.ID.String()))
			return mapped
		}

		log.Error("failed to update deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", deck.ID.String()))
		return mapped
	}

	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		log.Debug("deck not found for update", slog.String("deck_id", deck.ID.String()))
		return err
	}

	log.Info("deck updated successfully", slog.String("deck_id", deck.ID.String()))
	return nil
}

// Delete implements store.DeckStore.Delete
// It removes a deck from the database; the schema's ON DELETE CASCADE
// removes the deck's topics with it.
// Returns store.ErrDeckNotFound if the deck does not exist.
func (s *PostgresDeckStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM decks WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete deck",
			slog.String("error", err.Error()),
			slog.String("deck_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrDeckNotFound); err != nil {
		log.Debug("deck not found for delete", slog.String("deck_id", id.String()))
		return err
	}

	log.Info("deck deleted successfully", slog.String("deck_id", id.String()))
	return nil
}

// WithTx implements store.DeckStore.WithTx
// It returns a new DeckStore that runs all operations on the given transaction.
func (s *PostgresDeckStore) WithTx(tx *sql.Tx) store.DeckStore {
	return &PostgresDeckStore{
		db:     tx,
		logger: s.logger,
	}
}
