package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockTopicService implements service.TopicService for testing.
type MockTopicService struct {
	// Custom behavior functions
	CreateTopicFn          func(ctx context.Context, userID, deckID uuid.UUID, name string) (*domain.Topic, error)
	GetTopicForUserFn      func(ctx context.Context, userID, topicID uuid.UUID) (*domain.Topic, error)
	ListDeckTopicsFn       func(ctx context.Context, userID, deckID uuid.UUID, page store.Pagination) ([]*domain.Topic, int64, error)
	ListDueTopicsFn        func(ctx context.Context, userID uuid.UUID, page store.Pagination) ([]*domain.Topic, int64, error)
	RenameTopicFn          func(ctx context.Context, userID, topicID uuid.UUID, name string) (*domain.Topic, error)
	DeleteTopicFn          func(ctx context.Context, userID, topicID uuid.UUID) error
	AddCardFn              func(ctx context.Context, userID, topicID uuid.UUID, card domain.Card) (int, error)
	GetCardFn              func(ctx context.Context, userID, topicID uuid.UUID, index int) (domain.Card, error)
	SetCardWeightFn        func(ctx context.Context, userID, topicID uuid.UUID, index int, weight float64) (domain.Card, error)
	RemoveCardFn           func(ctx context.Context, userID, topicID uuid.UUID, index int) error
	GetTopicFn             func(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error)
	AppendGeneratedCardsFn func(ctx context.Context, topicID uuid.UUID, cards []domain.Card) (int, int, error)

	// Default response values
	Topic     *domain.Topic
	Topics    []*domain.Topic
	Total     int64
	Card      domain.Card
	CardIndex int
	Added     int
	Dropped   int
	Err       error
}

func (m *MockTopicService) CreateTopic(
	ctx context.Context,
	userID, deckID uuid.UUID,
	name string,
) (*domain.Topic, error) {
	if m.CreateTopicFn != nil {
		return m.CreateTopicFn(ctx, userID, deckID, name)
	}
	return m.Topic, m.Err
}

func (m *MockTopicService) GetTopicForUser(
	ctx context.Context,
	userID, topicID uuid.UUID,
) (*domain.Topic, error) {
	if m.GetTopicForUserFn != nil {
		return m.GetTopicForUserFn(ctx, userID, topicID)
	}
	return m.Topic, m.Err
}

func (m *MockTopicService) ListDeckTopics(
	ctx context.Context,
	userID, deckID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	if m.ListDeckTopicsFn != nil {
		return m.ListDeckTopicsFn(ctx, userID, deckID, page)
	}
	return m.Topics, m.Total, m.Err
}

func (m *MockTopicService) ListDueTopics(
	ctx context.Context,
	userID uuid.UUID,
	page store.Pagination,
) ([]*domain.Topic, int64, error) {
	if m.ListDueTopicsFn != nil {
		return m.ListDueTopicsFn(ctx, userID, page)
	}
	return m.Topics, m.Total, m.Err
}

func (m *MockTopicService) RenameTopic(
	ctx context.Context,
	userID, topicID uuid.UUID,
	name string,
) (*domain.Topic, error) {
	if m.RenameTopicFn != nil {
		return m.RenameTopicFn(ctx, userID, topicID, name)
	}
	return m.Topic, m.Err
}

func (m *MockTopicService) DeleteTopic(ctx context.Context, userID, topicID uuid.UUID) error {
	if m.DeleteTopicFn != nil {
		return m.DeleteTopicFn(ctx, userID, topicID)
	}
	return m.Err
}

func (m *MockTopicService) AddCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
	card domain.Card,
) (int, error) {
	if m.AddCardFn != nil {
		return m.AddCardFn(ctx, userID, topicID, card)
	}
	return m.CardIndex, m.Err
}

func (m *MockTopicService) GetCard(
	ctx context.Context,
	userID, topicID uuid.UUID,
	index int,
) (domain.Card, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, userID, topicID, index)
	}
	return m.Card, m.Err
}

func (m *MockTopicService) SetCardWeight(
	ctx context.Context,
	userID, topicID uuid.UUID,
	index int,
	weight float64,
) (domain.Card, error) {
	if m.SetCardWeightFn != nil {
		return m.SetCardWeightFn(ctx, userID, topicID, index, weight)
	}
	return m.Card, m.Err
}

func (m *MockTopicService) RemoveCard(ctx context.Context, userID, topicID uuid.UUID, index int) error {
	if m.RemoveCardFn != nil {
		return m.RemoveCardFn(ctx, userID, topicID, index)
	}
	return m.Err
}

func (m *MockTopicService) GetTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	if m.GetTopicFn != nil {
		return m.GetTopicFn(ctx, topicID)
	}
	return m.Topic, m.Err
}

func (m *MockTopicService) AppendGeneratedCards(
	ctx context.Context,
	topicID uuid.UUID,
	cards []domain.Card,
) (int, int, error) {
	if m.AppendGeneratedCardsFn != nil {
		return m.AppendGeneratedCardsFn(ctx, topicID, cards)
	}
	return m.Added, m.Dropped, m.Err
}

// Ensure MockTopicService implements service.TopicService
var _ service.TopicService = (*MockTopicService)(nil)
