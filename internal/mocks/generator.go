package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
)

// MockCardGenerator implements generation.CardGenerator for testing
type MockCardGenerator struct {
	// GenerateCardsFn allows test cases to mock the GenerateCards behavior
	GenerateCardsFn func(ctx context.Context, req generation.GenerationRequest) (*generation.GenerationResult, error)

	// Default response values
	Result *generation.GenerationResult
	Err    error

	// Call tracking for verification
	GenerateCardsCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times GenerateCards was called
		Count int

		// Requests contains every request passed to GenerateCards
		Requests []generation.GenerationRequest
	}
}

// GenerateCards implements the generation.CardGenerator interface
func (m *MockCardGenerator) GenerateCards(
	ctx context.Context,
	req generation.GenerationRequest,
) (*generation.GenerationResult, error) {
	// Track call details for verification
	m.GenerateCardsCalls.mu.Lock()
	m.GenerateCardsCalls.Count++
	m.GenerateCardsCalls.Requests = append(m.GenerateCardsCalls.Requests, req)
	m.GenerateCardsCalls.mu.Unlock()

	// Use custom function if provided
	if m.GenerateCardsFn != nil {
		return m.GenerateCardsFn(ctx, req)
	}

	// Return default values
	return m.Result, m.Err
}

// LastRequest returns the most recent request passed to GenerateCards, or a
// zero request if it was never called
func (m *MockCardGenerator) LastRequest() generation.GenerationRequest {
	m.GenerateCardsCalls.mu.Lock()
	defer m.GenerateCardsCalls.mu.Unlock()

	if len(m.GenerateCardsCalls.Requests) == 0 {
		return generation.GenerationRequest{}
	}
	return m.GenerateCardsCalls.Requests[len(m.GenerateCardsCalls.Requests)-1]
}

// NewMockCardGeneratorWithCards creates a MockCardGenerator that returns the
// specified cards
func NewMockCardGeneratorWithCards(cards []domain.Card) *MockCardGenerator {
	return &MockCardGenerator{
		Result: &generation.GenerationResult{Cards: cards},
	}
}

// NewMockCardGeneratorWithError creates a MockCardGenerator that returns the
// specified error
func NewMockCardGeneratorWithError(err error) *MockCardGenerator {
	return &MockCardGenerator{
		Err: err,
	}
}

// NewMockCardGeneratorWithDefaultCards creates a MockCardGenerator with
// sample cards of both shapes
func NewMockCardGeneratorWithDefaultCards() *MockCardGenerator {
	correctIndex := 1

	return NewMockCardGeneratorWithCards([]domain.Card{
		{
			Type:     domain.CardTypeQAHint,
			Question: "What is spaced repetition?",
			Answer:   "A study technique that schedules reviews at growing intervals.",
			Hint:     "Think about when you review, not how often.",
			Weight:   domain.DefaultCardWeight,
		},
		{
			Type:         domain.CardTypeMultipleChoice,
			Question:     "Which score marks a perfect recall?",
			Choices:      []string{"0", "3"},
			CorrectIndex: &correctIndex,
			Explanation:  "Scores run from 0 (forgot) to 3 (easy).",
			Weight:       domain.DefaultCardWeight,
		},
	})
}

// MockCardGeneratorThatFails creates a MockCardGenerator that always returns
// generation.ErrGenerationFailed
func MockCardGeneratorThatFails() *MockCardGenerator {
	return NewMockCardGeneratorWithError(generation.ErrGenerationFailed)
}

// Ensure MockCardGenerator implements generation.CardGenerator
var _ generation.CardGenerator = (*MockCardGenerator)(nil)
