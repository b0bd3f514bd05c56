package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Deck field limits
const (
	MaxDeckNameLength        = 100
	MaxDeckDescriptionLength = 500
)

// Common validation errors for Deck
var (
	ErrEmptyDeckID            = errors.New("deck ID cannot be empty")
	ErrEmptyDeckUserID        = errors.New("deck user ID cannot be empty")
	ErrEmptyDeckName          = errors.New("deck name cannot be empty")
	ErrDeckNameTooLong        = errors.New("deck name cannot exceed 100 characters")
	ErrDeckDescriptionTooLong = errors.New("deck description cannot exceed 500 characters")
)

// Deck is the top level of the learning hierarchy: a user-owned collection
// of topics.
type Deck struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewDeck creates a new Deck owned by the given user.
// It generates a new UUID for the deck ID and sets the creation/update
// timestamps. Returns an error if validation fails.
func NewDeck(userID uuid.UUID, name, description string) (*Deck, error) {
	deck := &Deck{
		ID:          uuid.New(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := deck.Validate(); err != nil {
		return nil, err
	}

	return deck, nil
}

// Validate checks if the Deck has valid data.
// Returns an error if any field fails validation.
func (d *Deck) Validate() error {
	if d.ID == uuid.Nil {
		return ErrEmptyDeckID
	}

	if d.UserID == uuid.Nil {
		return ErrEmptyDeckUserID
	}

	if d.Name == "" {
		return ErrEmptyDeckName
	}

	if len(d.Name) > MaxDeckNameLength {
		return ErrDeckNameTooLong
	}

	if len(d.Description) > MaxDeckDescriptionLength {
		return ErrDeckDescriptionTooLong
	}

	return nil
}

// Update sets the deck's name and description and refreshes the update
// timestamp. Returns an error if the new values are invalid.
func (d *Deck) Update(name, description string) error {
	origName, origDescription := d.Name, d.Description
	d.Name, d.Description = name, description

	if err := d.Validate(); err != nil {
		d.Name, d.Description = origName, origDescription
		return err
	}

	d.UpdatedAt = time.Now().UTC()
	return nil
}
