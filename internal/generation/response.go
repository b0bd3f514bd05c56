package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/phrazzld/mnemo-api/internal/domain"
)

// generatedCard mirrors the JSON shape providers are instructed to emit.
type generatedCard struct {
	CardType     string   `json:"card_type"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Hint         string   `json:"hint"`
	Choices      []string `json:"choices"`
	CorrectIndex *int     `json:"correct_index"`
	Explanation  string   `json:"explanation"`
}

// generatedPayload is the top-level response object.
type generatedPayload struct {
	Cards []generatedCard `json:"cards"`
}

// StripCodeFences removes a markdown code fence wrapper when a provider
// ignores the no-markdown instruction.
func StripCodeFences(content string) string {
	s := strings.TrimSpace(content)

	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-len("```")]
	}

	return strings.TrimSpace(s)
}

// ParseCards decodes a provider response into validated domain cards carrying
// the default weight. Responses that do not decode map to ErrGenerationFailed
// (permanent); responses that decode but have the wrong shape map to
// ErrInvalidResponse.
func ParseCards(content string) ([]domain.Card, error) {
	text := StripCodeFences(content)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponse)
	}

	var payload generatedPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("%w: response is not valid JSON: %v", ErrGenerationFailed, err)
	}

	if payload.Cards == nil {
		return nil, fmt.Errorf("%w: response has no cards array", ErrInvalidResponse)
	}

	cards := make([]domain.Card, 0, len(payload.Cards))
	for i, raw := range payload.Cards {
		card, err := raw.toDomain()
		if err != nil {
			return nil, fmt.Errorf("%w: card %d: %v", ErrInvalidResponse, i, err)
		}
		cards = append(cards, card)
	}

	return cards, nil
}

// toDomain converts one decoded card into a validated domain card.
func (c generatedCard) toDomain() (domain.Card, error) {
	switch c.CardType {
	case CardTypeQAHint:
		return domain.NewQAHintCard(c.Question, c.Answer, c.Hint)
	case CardTypeMultipleChoice:
		if c.CorrectIndex == nil {
			return domain.Card{}, domain.ErrMissingCorrectIndex
		}
		return domain.NewMultipleChoiceCard(c.Question, c.Choices, *c.CorrectIndex, c.Explanation)
	default:
		return domain.Card{}, fmt.Errorf("%w %q", domain.ErrInvalidCardType, c.CardType)
	}
}
