package domain

import "errors"

// CardType tags the two supported card shapes.
type CardType string

// Possible card types
const (
	CardTypeQAHint         CardType = "qa_hint"
	CardTypeMultipleChoice CardType = "multiple_choice"
)

// Card intrinsic weight bounds. The weight biases review sampling and is
// adjusted by the scheduler after every review.
const (
	MinCardWeight     = 0.5
	MaxCardWeight     = 2.0
	DefaultCardWeight = 1.0
)

// Card-specific validation errors
var (
	ErrInvalidCardType        = errors.New("invalid card type")
	ErrEmptyCardQuestion      = errors.New("card question cannot be empty")
	ErrEmptyCardAnswer        = errors.New("card answer cannot be empty")
	ErrTooFewCardChoices      = errors.New("multiple choice card needs at least 2 choices")
	ErrMissingCorrectIndex    = errors.New("multiple choice card needs a correct choice index")
	ErrCorrectIndexOutOfRange = errors.New("correct choice index is out of range")
	ErrCardWeightOutOfRange   = errors.New("card weight must be between 0.5 and 2.0")
)

// Card is one flashcard embedded in a topic's card collection. Content is a
// tagged variant: qa_hint cards carry question/answer/hint, multiple_choice
// cards carry question/choices/correct_index/explanation. The scheduling
// engine never inspects content; only Weight participates in review math.
//
// Cards are addressed by their index within the owning topic, so a Card has
// no identity of its own.
type Card struct {
	Type         CardType `json:"type"`
	Question     string   `json:"question"`
	Answer       string   `json:"answer,omitempty"`
	Hint         string   `json:"hint,omitempty"`
	Choices      []string `json:"choices,omitempty"`
	CorrectIndex *int     `json:"correct_index,omitempty"`
	Explanation  string   `json:"explanation,omitempty"`
	Weight       float64  `json:"weight"`
}

// NewQAHintCard creates a question/answer card with an optional hint and
// the default weight. Returns an error if validation fails.
func NewQAHintCard(question, answer, hint string) (Card, error) {
	card := Card{
		Type:     CardTypeQAHint,
		Question: question,
		Answer:   answer,
		Hint:     hint,
		Weight:   DefaultCardWeight,
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// NewMultipleChoiceCard creates a multiple choice card with the default
// weight. Returns an error if validation fails.
func NewMultipleChoiceCard(question string, choices []string, correctIndex int, explanation string) (Card, error) {
	card := Card{
		Type:         CardTypeMultipleChoice,
		Question:     question,
		Choices:      choices,
		CorrectIndex: &correctIndex,
		Explanation:  explanation,
		Weight:       DefaultCardWeight,
	}

	if err := card.Validate(); err != nil {
		return Card{}, err
	}

	return card, nil
}

// Validate checks if the Card has valid data for its type.
// Returns an error if any field fails validation.
func (c *Card) Validate() error {
	if c.Question == "" {
		return ErrEmptyCardQuestion
	}

	switch c.Type {
	case CardTypeQAHint:
		if c.Answer == "" {
			return ErrEmptyCardAnswer
		}

	case CardTypeMultipleChoice:
		if len(c.Choices) < 2 {
			return ErrTooFewCardChoices
		}
		if c.CorrectIndex == nil {
			return ErrMissingCorrectIndex
		}
		if *c.CorrectIndex < 0 || *c.CorrectIndex >= len(c.Choices) {
			return ErrCorrectIndexOutOfRange
		}

	default:
		return ErrInvalidCardType
	}

	if c.Weight < MinCardWeight || c.Weight > MaxCardWeight {
		return ErrCardWeightOutOfRange
	}

	return nil
}
