package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain/srs"
)

// MaxTopicNameLength limits topic names.
const MaxTopicNameLength = 200

// MaxCardsPerTopic caps the embedded card collection of one topic.
const MaxCardsPerTopic = 25

// Common validation errors for Topic
var (
	ErrEmptyTopicID        = errors.New("topic ID cannot be empty")
	ErrEmptyTopicDeckID    = errors.New("topic deck ID cannot be empty")
	ErrEmptyTopicUserID    = errors.New("topic user ID cannot be empty")
	ErrEmptyTopicName      = errors.New("topic name cannot be empty")
	ErrTopicNameTooLong    = errors.New("topic name cannot exceed 200 characters")
	ErrInvalidTopicState   = errors.New("topic scheduling state is invalid")
	ErrTopicCardLimit      = errors.New("topic cannot hold more than 25 cards")
	ErrCardIndexOutOfRange = errors.New("card index is out of range")
	ErrTopicHasNoCards     = errors.New("topic has no cards")
)

// Topic is the unit of review scheduling. It owns an embedded collection of
// cards and carries the spaced-repetition state the scheduler updates after
// every review: stability (hours), difficulty (1-10) and the next review
// time. A zero LastReviewedAt means the topic has never been reviewed.
type Topic struct {
	ID             uuid.UUID `json:"id"`
	DeckID         uuid.UUID `json:"deck_id"`
	UserID         uuid.UUID `json:"user_id"`
	Name           string    `json:"name"`
	Stability      float64   `json:"stability"`
	Difficulty     float64   `json:"difficulty"`
	NextReviewAt   time.Time `json:"next_review_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	Cards          []Card    `json:"cards"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewTopic creates a new Topic in the given deck with the supplied initial
// scheduling state, normally srs.Service.NewState(now). It generates a new
// UUID for the topic ID and sets the creation/update timestamps.
// Returns an error if validation fails.
func NewTopic(deckID, userID uuid.UUID, name string, state srs.State) (*Topic, error) {
	topic := &Topic{
		ID:             uuid.New(),
		DeckID:         deckID,
		UserID:         userID,
		Name:           name,
		Stability:      state.Stability,
		Difficulty:     state.Difficulty,
		NextReviewAt:   state.NextReview,
		LastReviewedAt: state.LastReviewed,
		Cards:          []Card{},
		CreatedAt:      time.Now().UTC(),
		UpdatedAt:      time.Now().UTC(),
	}

	if err := topic.Validate(); err != nil {
		return nil, err
	}

	return topic, nil
}

// Validate checks if the Topic has valid data.
// Returns an error if any field fails validation.
func (t *Topic) Validate() error {
	if t.ID == uuid.Nil {
		return ErrEmptyTopicID
	}

	if t.DeckID == uuid.Nil {
		return ErrEmptyTopicDeckID
	}

	if t.UserID == uuid.Nil {
		return ErrEmptyTopicUserID
	}

	if t.Name == "" {
		return ErrEmptyTopicName
	}

	if len(t.Name) > MaxTopicNameLength {
		return ErrTopicNameTooLong
	}

	if t.Stability <= 0 || t.Difficulty <= 0 || t.NextReviewAt.IsZero() {
		return ErrInvalidTopicState
	}

	if len(t.Cards) > MaxCardsPerTopic {
		return ErrTopicCardLimit
	}

	for i := range t.Cards {
		if err := t.Cards[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SchedulingState returns the topic's current scheduling state in the form
// the scheduler consumes.
func (t *Topic) SchedulingState() srs.State {
	return srs.State{
		Stability:    t.Stability,
		Difficulty:   t.Difficulty,
		NextReview:   t.NextReviewAt,
		LastReviewed: t.LastReviewedAt,
	}
}

// ApplyReview writes the scheduler's output back onto the topic: the new
// scheduling state plus the reviewed card's updated intrinsic weight.
func (t *Topic) ApplyReview(state srs.State, cardIndex int, newWeight float64) error {
	if cardIndex < 0 || cardIndex >= len(t.Cards) {
		return ErrCardIndexOutOfRange
	}

	t.Stability = state.Stability
	t.Difficulty = state.Difficulty
	t.NextReviewAt = state.NextReview
	t.LastReviewedAt = state.LastReviewed
	t.Cards[cardIndex].Weight = newWeight
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// Rename sets the topic's name and refreshes the update timestamp.
func (t *Topic) Rename(name string) error {
	if name == "" {
		return ErrEmptyTopicName
	}
	if len(name) > MaxTopicNameLength {
		return ErrTopicNameTooLong
	}

	t.Name = name
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// AddCard appends a card to the topic's collection.
// Returns ErrTopicCardLimit when the topic is full.
func (t *Topic) AddCard(card Card) error {
	if len(t.Cards) >= MaxCardsPerTopic {
		return ErrTopicCardLimit
	}
	if err := card.Validate(); err != nil {
		return err
	}

	t.Cards = append(t.Cards, card)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// CardAt returns the card at the given index.
func (t *Topic) CardAt(index int) (Card, error) {
	if index < 0 || index >= len(t.Cards) {
		return Card{}, ErrCardIndexOutOfRange
	}
	return t.Cards[index], nil
}

// SetCardWeight sets the intrinsic weight of the card at the given index.
// The weight must already be inside the legal range; manual adjustments are
// not silently clamped the way scheduler updates are.
func (t *Topic) SetCardWeight(index int, weight float64) error {
	if index < 0 || index >= len(t.Cards) {
		return ErrCardIndexOutOfRange
	}
	if weight < MinCardWeight || weight > MaxCardWeight {
		return ErrCardWeightOutOfRange
	}

	t.Cards[index].Weight = weight
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// RemoveCard deletes the card at the given index, shifting later cards
// down. Callers must treat previously held indexes as invalidated.
func (t *Topic) RemoveCard(index int) error {
	if index < 0 || index >= len(t.Cards) {
		return ErrCardIndexOutOfRange
	}

	t.Cards = append(t.Cards[:index], t.Cards[index+1:]...)
	t.UpdatedAt = time.Now().UTC()
	return nil
}

// CardWeights returns the intrinsic weights of all cards in index order,
// the shape the sampler consumes.
func (t *Topic) CardWeights() []float64 {
	weights := make([]float64, len(t.Cards))
	for i := range t.Cards {
		weights[i] = t.Cards[i].Weight
	}
	return weights
}

// IsDue reports whether the topic is due for review at the given time.
func (t *Topic) IsDue(now time.Time) bool {
	return !t.NextReviewAt.After(now)
}
