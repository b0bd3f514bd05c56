// Package review implements the study flow: picking which card of a topic to
// show next and folding the user's score back into the topic's schedule.
package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
)

// ReviewCard is one card selected for review, addressed by its index within
// the topic because cards have no identity of their own.
type ReviewCard struct {
	TopicID   uuid.UUID   `json:"topic_id"`
	CardIndex int         `json:"card_index"`
	Card      domain.Card `json:"card"`
}

// ReviewService provides methods for reviewing a topic's flashcards using a
// spaced repetition algorithm.
type ReviewService interface {
	// GetReviewCard picks the card of the topic to study next. Selection is
	// weighted random over the cards' intrinsic weights, so a weight-2.0 card
	// turns up about four times as often as a weight-0.5 one.
	//
	// Returns:
	//   - (*ReviewCard, nil): the selected card and its index
	//   - (nil, ErrNoCards): if the topic has no cards yet
	//   - (nil, service.ErrNotOwned): if the topic belongs to another user
	//   - (nil, error): any other error, typically from the database
	//
	// This method does not modify any data; repeated calls may select
	// different cards.
	GetReviewCard(ctx context.Context, userID, topicID uuid.UUID) (*ReviewCard, error)

	// SubmitReview records the user's score for the card at the given index
	// and advances the topic's schedule.
	//
	// This method performs several operations within a single transaction:
	// 1. Verifies the topic exists and belongs to the user
	// 2. Runs the scheduling algorithm against the reviewed card's weight
	// 3. Persists the new schedule and the card's adjusted weight
	//
	// Returns:
	//   - (*domain.Topic, nil): the topic with its updated schedule
	//   - (nil, srs.ErrInvalidScore): if the score is outside 0 to 3
	//   - (nil, domain.ErrCardIndexOutOfRange): if the index names no card
	//   - (nil, service.ErrNotOwned): if the topic belongs to another user
	//   - (nil, error): any other error, typically from the database
	SubmitReview(
		ctx context.Context,
		userID, topicID uuid.UUID,
		cardIndex int,
		score int,
	) (*domain.Topic, error)
}

// Common error types for ReviewService
var (
	// ErrNoCards indicates that the topic has no cards to review.
	ErrNoCards = errors.New("topic has no cards to review")
)

// ServiceError wraps errors from the review service with additional context.
// This allows consumers to differentiate between different types of service
// errors using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_review_card", "submit_review")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewGetReviewCardError returns a new ServiceError for the get_review_card operation.
func NewGetReviewCardError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "get_review_card",
		Message:   message,
		Err:       err,
	}
}

// NewSubmitReviewError returns a new ServiceError for the submit_review operation.
func NewSubmitReviewError(message string, err error) *ServiceError {
	return &ServiceError{
		Operation: "submit_review",
		Message:   message,
		Err:       err,
	}
}
