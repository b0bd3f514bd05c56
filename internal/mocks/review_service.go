package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service/review"
)

// MockReviewService implements review.ReviewService for testing.
type MockReviewService struct {
	// Custom behavior functions
	GetReviewCardFn func(ctx context.Context, userID, topicID uuid.UUID) (*review.ReviewCard, error)
	SubmitReviewFn  func(ctx context.Context, userID, topicID uuid.UUID, cardIndex, score int) (*domain.Topic, error)

	// Default response values
	ReviewCard *review.ReviewCard
	Topic      *domain.Topic
	Err        error

	// Call tracking for verification
	SubmitReviewCalls struct {
		mu      sync.Mutex
		Count   int
		Indexes []int
		Scores  []int
	}
}

func (m *MockReviewService) GetReviewCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*review.ReviewCard, error) {
	if m.GetReviewCardFn != nil {
		return m.GetReviewCardFn(ctx, userID, topicID)
	}
	return m.ReviewCard, m.Err
}

func (m *MockReviewService) SubmitReview(
	ctx context.Context,
	userID, topicID uuid.UUID,
	cardIndex int,
	score int,
) (*domain.Topic, error) {
	m.SubmitReviewCalls.mu.Lock()
	m.SubmitReviewCalls.Count++
	m.SubmitReviewCalls.Indexes = append(m.SubmitReviewCalls.Indexes, cardIndex)
	m.SubmitReviewCalls.Scores = append(m.SubmitReviewCalls.Scores, score)
	m.SubmitReviewCalls.mu.Unlock()

	if m.SubmitReviewFn != nil {
		return m.SubmitReviewFn(ctx, userID, topicID, cardIndex, score)
	}
	return m.Topic, m.Err
}

// Ensure MockReviewService implements review.ReviewService
var _ review.ReviewService = (*MockReviewService)(nil)
