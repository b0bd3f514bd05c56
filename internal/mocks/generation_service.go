package mocks

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/task"
)

// MockGenerationService implements service.GenerationService for testing.
type MockGenerationService struct {
	// Custom behavior functions
	GenerateCardsFn          func(ctx context.Context, userID uuid.UUID, req service.CardGenerationRequest) (*generation.GenerationResult, error)
	RequestTopicGenerationFn func(ctx context.Context, userID, topicID uuid.UUID, params task.GenerationParams) (uuid.UUID, error)
	GenerateTopicCardsFn     func(ctx context.Context, topic *domain.Topic, params task.GenerationParams) ([]domain.Card, error)

	// Default response values
	Result *generation.GenerationResult
	TaskID uuid.UUID
	Cards  []domain.Card
	Err    error

	// Call tracking for verification
	RequestTopicGenerationCalls struct {
		mu     sync.Mutex
		Count  int
		Params []task.GenerationParams
	}
}

func (m *MockGenerationService) GenerateCards(
	ctx context.Context,
	userID uuid.UUID,
	req service.CardGenerationRequest,
) (*generation.GenerationResult, error) {
	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, userID, req)
	}
	return m.Result, m.Err
}

func (m *MockGenerationService) RequestTopicGeneration(
	ctx context.Context,
	userID, topicID uuid.UUID,
	params task.GenerationParams,
) (uuid.UUID, error) {
	m.RequestTopicGenerationCalls.mu.Lock()
	m.RequestTopicGenerationCalls.Count++
	m.RequestTopicGenerationCalls.Params = append(m.RequestTopicGenerationCalls.Params, params)
	m.RequestTopicGenerationCalls.mu.Unlock()

	if m.RequestTopicGenerationFn != nil {
		return m.RequestTopicGenerationFn(ctx, userID, topicID, params)
	}
	return m.TaskID, m.Err
}

func (m *MockGenerationService) GenerateTopicCards(
	ctx context.Context,
	topic *domain.Topic,
	params task.GenerationParams,
) ([]domain.Card, error) {
	if m.GenerateTopicCardsFn != nil {
		return m.GenerateTopicCardsFn(ctx, topic, params)
	}
	return m.Cards, m.Err
}

// Ensure MockGenerationService implements service.GenerationService
var _ service.GenerationService = (*MockGenerationService)(nil)
