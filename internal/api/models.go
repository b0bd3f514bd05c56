package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// AuthResponse defines the successful response for the register, login and
// refresh endpoints.
type AuthResponse struct {
	// UserID is the unique identifier for the authenticated user
	UserID uuid.UUID `json:"user_id"`

	// AccessToken is the JWT used for API authorization
	AccessToken string `json:"access_token"`

	// RefreshToken is the JWT used to obtain new access tokens
	RefreshToken string `json:"refresh_token"`

	// ExpiresAt is the ISO 8601 timestamp when the access token expires
	ExpiresAt string `json:"expires_at"`
}

// UpdateProfileRequest defines the payload for profile updates. All fields
// are optional; empty username or avatar URL clears the stored value.
type UpdateProfileRequest struct {
	Username  string            `json:"username"   validate:"omitempty,min=3,max=50"`
	AvatarURL string            `json:"avatar_url" validate:"omitempty,url"`
	AIPrompts map[string]string `json:"ai_prompts"`
}

// UserResponse is the user shape returned by profile and admin endpoints.
// The password hash never appears here.
type UserResponse struct {
	ID        uuid.UUID         `json:"id"`
	Email     string            `json:"email"`
	Username  string            `json:"username,omitempty"`
	AvatarURL string            `json:"avatar_url,omitempty"`
	Role      string            `json:"role"`
	AIPrompts map[string]string `json:"ai_prompts,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		Role:      string(user.Role),
		AIPrompts: user.AIPrompts,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// UpdateRoleRequest defines the payload for the admin role update endpoint.
type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=user pro admin"`
}

// DeckRequest defines the payload for creating or updating a deck.
type DeckRequest struct {
	Name        string `json:"name"        validate:"required,min=1,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// DeckResponse represents a deck in API responses.
type DeckResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func deckToResponse(deck *domain.Deck) DeckResponse {
	return DeckResponse{
		ID:          deck.ID,
		Name:        deck.Name,
		Description: deck.Description,
		CreatedAt:   deck.CreatedAt,
		UpdatedAt:   deck.UpdatedAt,
	}
}

// TopicRequest defines the payload for creating or renaming a topic.
type TopicRequest struct {
	Name string `json:"name" validate:"required,min=1,max=200"`
}

// CardResponse represents one card of a topic. Index is the card's position
// within the topic, which is how card endpoints address it.
type CardResponse struct {
	Index        int      `json:"index"`
	Type         string   `json:"type"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer,omitempty"`
	Hint         string   `json:"hint,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Weight       float64  `json:"weight"`
}

func cardToResponse(index int, card domain.Card) CardResponse {
	return CardResponse{
		Index:        index,
		Type:         string(card.Type),
		Question:     card.Question,
		Answer:       card.Answer,
		Hint:         card.Hint,
		Choices:      card.Choices,
		CorrectIndex: card.CorrectIndex,
		Explanation:  card.Explanation,
		Weight:       card.Weight,
	}
}

// TopicResponse represents a topic with its scheduling state and cards.
type TopicResponse struct {
	ID             uuid.UUID      `json:"id"`
	DeckID         uuid.UUID      `json:"deck_id"`
	Name           string         `json:"name"`
	Stability      float64        `json:"stability"`
	Difficulty     float64        `json:"difficulty"`
	NextReviewAt   time.Time      `json:"next_review_at"`
	LastReviewedAt time.Time      `json:"last_reviewed_at"`
	Cards          []CardResponse `json:"cards"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

func topicToResponse(topic *domain.Topic) TopicResponse {
	cards := make([]CardResponse, len(topic.Cards))
	for i, card := range topic.Cards {
		cards[i] = cardToResponse(i, card)
	}
	return TopicResponse{
		ID:             topic.ID,
		DeckID:         topic.DeckID,
		Name:           topic.Name,
		Stability:      topic.Stability,
		Difficulty:     topic.Difficulty,
		NextReviewAt:   topic.NextReviewAt,
		LastReviewedAt: topic.LastReviewedAt,
		Cards:          cards,
		CreatedAt:      topic.CreatedAt,
		UpdatedAt:      topic.UpdatedAt,
	}
}

// AddCardRequest defines the payload for appending a card to a topic.
// Multiple choice cards additionally require choices and a correct index;
// the domain constructors enforce those rules.
type AddCardRequest struct {
	Type         string   `json:"type"     validate:"required,oneof=qa_hint multiple_choice"`
	Question     string   `json:"question" validate:"required,min=1"`
	Answer       string   `json:"answer"`
	Hint         string   `json:"hint"`
	Choices      []string `json:"choices"`
	CorrectIndex *int     `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// UpdateCardWeightRequest defines the payload for manually setting a card's
// sampling weight. Weight is a pointer so an explicit zero survives decoding;
// out-of-range values are clamped, not rejected.
type UpdateCardWeightRequest struct {
	Weight *float64 `json:"weight" validate:"required"`
}

// ReviewCardResponse carries the card picked for a study round.
type ReviewCardResponse struct {
	TopicID   uuid.UUID    `json:"topic_id"`
	CardIndex int          `json:"card_index"`
	Card      CardResponse `json:"card"`
}

// SubmitReviewRequest defines the payload for recording a review outcome.
// Both fields are pointers because zero is a legal value for each.
type SubmitReviewRequest struct {
	CardIndex *int `json:"card_index" validate:"required"`
	Score     *int `json:"score"      validate:"required"`
}

// ReviewResultResponse reports the topic's scheduling state after a review,
// plus the reviewed card's adjusted weight.
type ReviewResultResponse struct {
	TopicID        uuid.UUID `json:"topic_id"`
	CardIndex      int       `json:"card_index"`
	CardWeight     float64   `json:"card_weight"`
	Stability      float64   `json:"stability"`
	Difficulty     float64   `json:"difficulty"`
	NextReviewAt   time.Time `json:"next_review_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
}

// GenerateCardsRequest defines the payload for the synchronous generation
// preview endpoint. Provider, model, count and card type fall back to
// defaults; unknown values are rejected by the generation layer.
type GenerateCardsRequest struct {
	Provider  string `json:"provider"`
	Model     string `json:"model"`
	TopicName string `json:"topic_name" validate:"required,min=1,max=200"`
	DeckName  string `json:"deck_name"  validate:"omitempty,max=100"`
	Count     int    `json:"count"      validate:"omitempty,min=1,max=25"`
	CardType  string `json:"card_type"  validate:"omitempty,oneof=qa_hint multiple_choice mixed"`
	APIKey    string `json:"api_key"`
}

// GenerationUsageResponse reports token consumption and the priced cost of
// one generation call.
type GenerationUsageResponse struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

// GenerateCardsResponse carries generated cards back to the client. Nothing
// is persisted; the client adds the cards it wants via the card endpoints.
type GenerateCardsResponse struct {
	Cards []CardResponse          `json:"cards"`
	Usage GenerationUsageResponse `json:"usage"`
}

func generationToResponse(result *generation.GenerationResult) GenerateCardsResponse {
	cards := make([]CardResponse, len(result.Cards))
	for i, card := range result.Cards {
		cards[i] = cardToResponse(i, card)
	}
	return GenerateCardsResponse{
		Cards: cards,
		Usage: GenerationUsageResponse{
			PromptTokens:     result.Usage.PromptTokens,
			CompletionTokens: result.Usage.CompletionTokens,
			TotalTokens:      result.Usage.TotalTokens,
			CostUSD:          result.Usage.CostUSD,
		},
	}
}

// GenerateTopicCardsRequest defines the payload for the asynchronous
// generation endpoint. The generated cards are appended to the topic by a
// background task; no API key is accepted here because task payloads never
// carry credentials.
type GenerateTopicCardsRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Count    int    `json:"count"     validate:"omitempty,min=1,max=25"`
	CardType string `json:"card_type" validate:"omitempty,oneof=qa_hint multiple_choice mixed"`
}

// TaskResponse acknowledges an accepted background task.
type TaskResponse struct {
	TaskID uuid.UUID `json:"task_id"`
	Status string    `json:"status"`
}

// AIModelResponse describes one selectable model of a provider.
type AIModelResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AIProviderResponse describes a provider and its models.
type AIProviderResponse struct {
	ID          string            `json:"id"`
	DisplayName string            `json:"display_name"`
	Models      []AIModelResponse `json:"models"`
}

// AIProvidersResponse lists every supported provider plus the defaults
// applied when a generation request leaves them unset.
type AIProvidersResponse struct {
	Providers       []AIProviderResponse `json:"providers"`
	DefaultProvider string               `json:"default_provider"`
	DefaultModel    string               `json:"default_model"`
}

// PageResponse is the envelope for paginated list endpoints.
type PageResponse struct {
	Items      interface{} `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"page_size"`
	TotalPages int         `json:"total_pages"`
	HasNext    bool        `json:"has_next"`
	HasPrev    bool        `json:"has_prev"`
}

// NewPageResponse wraps one page of items in the standard envelope.
func NewPageResponse(items interface{}, total int64, page store.Pagination) PageResponse {
	totalPages := page.TotalPages(total)
	return PageResponse{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: totalPages,
		HasNext:    page.Page < totalPages,
		HasPrev:    page.Page > 1,
	}
}
