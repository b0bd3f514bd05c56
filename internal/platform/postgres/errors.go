package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// Class 23 integrity violation codes, the only PostgreSQL errors the stores
// translate. Everything else passes through untouched.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
	notNullViolationCode    = "23502"
)

// Unique constraint names from the schema. A violation of one of these maps
// to its entity-specific store sentinel instead of the bare ErrDuplicate.
const (
	constraintUsersEmail   = "users_email_key"
	constraintUsersName    = "users_username_key"
	constraintDeckUserName = "decks_user_id_name_key"
)

var uniqueConstraintErrors = map[string]error{
	constraintUsersEmail:   store.ErrEmailExists,
	constraintUsersName:    store.ErrUsernameExists,
	constraintDeckUserName: store.ErrDeckNameExists,
}

// MapError translates driver errors into store sentinels so callers above
// the store layer never match on PostgreSQL error codes. The original error
// stays in the chain for logging.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			if sentinel, ok := uniqueConstraintErrors[pgErr.ConstraintName]; ok {
				return fmt.Errorf("%w: %v", sentinel, err)
			}
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		case foreignKeyViolationCode:
			return fmt.Errorf("%w: foreign key violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case checkViolationCode:
			return fmt.Errorf("%w: check constraint violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ConstraintName, err)
		case notNullViolationCode:
			return fmt.Errorf("%w: not null violation (%s): %v",
				store.ErrInvalidEntity, pgErr.ColumnName, err)
		}
	}

	return err
}

// CheckRowsAffected turns a zero-row UPDATE or DELETE into notFoundErr,
// typically an entity-specific sentinel such as store.ErrTopicNotFound.
func CheckRowsAffected(result sql.Result, notFoundErr error) error {
	if result == nil {
		return fmt.Errorf("nil result provided to CheckRowsAffected")
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if notFoundErr == nil {
			return store.ErrNotFound
		}
		return notFoundErr
	}
	return nil
}
