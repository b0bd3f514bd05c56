package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockTopicStore implements store.TopicStore for testing
type MockTopicStore struct {
	// Function fields for customizable behavior
	CreateFn            func(ctx context.Context, topic *domain.Topic) error
	GetByIDFn           func(ctx context.Context, id uuid.UUID) (*domain.Topic, error)
	ListByDeckFn        func(ctx context.Context, deckID uuid.UUID, page store.Pagination) ([]*domain.Topic, int64, error)
	ListDueFn           func(ctx context.Context, userID uuid.UUID, now time.Time, page store.Pagination) ([]*domain.Topic, int64, error)
	UpdateFn            func(ctx context.Context, topic *domain.Topic) error
	UpdateReviewStateFn func(ctx context.Context, topic *domain.Topic) error
	CountByDeckFn       func(ctx context.Context, deckID uuid.UUID) (int64, error)
	DeleteFn            func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by topic ID
	Topics map[uuid.UUID]*domain.Topic

	// UpdateCalls counts Update invocations for verification
	UpdateCalls int

	// UpdateReviewStateCalls counts UpdateReviewState invocations
	UpdateReviewStateCalls int
}

// NewMockTopicStore creates a new mock store with initialized defaults
func NewMockTopicStore() *MockTopicStore {
	return &MockTopicStore{
		Topics: make(map[uuid.UUID]*domain.Topic),
	}
}

// Create implements the TopicStore interface
func (m *MockTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, topic)
	}

	m.Topics[topic.ID] = topic
	return nil
}

// GetByID implements the TopicStore interface
func (m *MockTopicStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Topic, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	topic, exists := m.Topics[id]
	if !exists {
		return nil, store.ErrTopicNotFound
	}

	return topic, nil
}

// ListByDeck implements the TopicStore interface
func (m *MockTopicStore) ListByDeck(
	ctx context.Context,
	deckID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	if m.ListByDeckFn != nil {
		return m.ListByDeckFn(ctx, deckID, page)
	}

	topics := make([]*domain.Topic, 0)
	for _, topic := range m.Topics {
		if topic.DeckID == deckID {
			topics = append(topics, topic)
		}
	}

	return topics, int64(len(topics)), nil
}

// ListDue implements the TopicStore interface
func (m *MockTopicStore) ListDue(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, userID, now, page)
	}

	topics := make([]*domain.Topic, 0)
	for _, topic := range m.Topics {
		if topic.UserID == userID && !topic.NextReviewAt.After(now) {
			topics = append(topics, topic)
		}
	}

	return topics, int64(len(topics)), nil
}

// Update implements the TopicStore interface
func (m *MockTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	m.UpdateCalls++

	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, topic)
	}

	if _, exists := m.Topics[topic.ID]; !exists {
		return store.ErrTopicNotFound
	}

	m.Topics[topic.ID] = topic
	return nil
}

// UpdateReviewState implements the TopicStore interface
func (m *MockTopicStore) UpdateReviewState(ctx context.Context, topic *domain.Topic) error {
	m.UpdateReviewStateCalls++

	if m.UpdateReviewStateFn != nil {
		return m.UpdateReviewStateFn(ctx, topic)
	}

	if _, exists := m.Topics[topic.ID]; !exists {
		return store.ErrTopicNotFound
	}

	m.Topics[topic.ID] = topic
	return nil
}

// CountByDeck implements the TopicStore interface
func (m *MockTopicStore) CountByDeck(ctx context.Context, deckID uuid.UUID) (int64, error) {
	if m.CountByDeckFn != nil {
		return m.CountByDeckFn(ctx, deckID)
	}

	var count int64
	for _, topic := range m.Topics {
		if topic.DeckID == deckID {
			count++
		}
	}

	return count, nil
}

// Delete implements the TopicStore interface
func (m *MockTopicStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	if _, exists := m.Topics[id]; !exists {
		return store.ErrTopicNotFound
	}

	delete(m.Topics, id)
	return nil
}

// WithTx implements the TopicStore interface for transaction support
func (m *MockTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	// For mock purposes, just return the same mock
	return m
}

// Ensure MockTopicStore implements store.TopicStore
var _ store.TopicStore = (*MockTopicStore)(nil)
