package store

import (
	"errors"
	"fmt"
)

// Store errors shared by all implementations. The entity-specific variants
// wrap the generic sentinels, so errors.Is against ErrNotFound or
// ErrDuplicate matches every variant.
var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when an operation would violate a uniqueness
	// constraint, such as registering an email twice.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidEntity is returned when an entity fails validation before
	// being stored. The wrapped error carries the field-level detail.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when an update cannot be applied.
	ErrUpdateFailed = errors.New("update failed")

	// ErrDeleteFailed is returned when a delete cannot be applied.
	ErrDeleteFailed = errors.New("delete failed")

	// ErrTransactionFailed is returned when a transaction fails to commit or
	// an operation inside it fails.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrUserNotFound  = fmt.Errorf("%w: user", ErrNotFound)
	ErrDeckNotFound  = fmt.Errorf("%w: deck", ErrNotFound)
	ErrTopicNotFound = fmt.Errorf("%w: topic", ErrNotFound)
	ErrTaskNotFound  = fmt.Errorf("%w: task", ErrNotFound)

	ErrEmailExists    = fmt.Errorf("%w: email", ErrDuplicate)
	ErrUsernameExists = fmt.Errorf("%w: username", ErrDuplicate)

	// ErrDeckNameExists indicates the owner already has a deck with the
	// given name. Deck names are unique per user, not globally.
	ErrDeckNameExists = fmt.Errorf("%w: deck name", ErrDuplicate)
)

// IsNotFoundError reports whether err is ErrNotFound or any entity-specific
// variant of it.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err is ErrDuplicate or any entity-specific
// variant of it.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
