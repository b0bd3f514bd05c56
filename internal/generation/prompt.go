package generation

import (
	"bytes"
	"fmt"
	"text/template"
)

// DefaultSystemPrompt sets the model's role. Users can replace it per request
// through their ai_prompts profile setting.
const DefaultSystemPrompt = "You are an expert flashcard author. " +
	"You write clear, factual, self-contained flashcards that each test one piece of knowledge."

// cardFormatInstructions pins the exact JSON shape providers must emit. It is
// always appended to the system prompt so a user override cannot break
// response parsing.
const cardFormatInstructions = `Respond with a single JSON object and nothing else. No prose, no markdown.
The object has exactly one key "cards" holding an array of card objects.
A qa_hint card: {"card_type": "qa_hint", "question": "...", "answer": "...", "hint": "..."}.
A multiple_choice card: {"card_type": "multiple_choice", "question": "...", "choices": ["...", "..."], "correct_index": 0, "explanation": "..."}.
"choices" holds 2 to 6 options and "correct_index" is the zero-based index of the right choice.`

// userMessageTemplate renders the per-request instruction sent alongside the
// system prompt.
var userMessageTemplate = template.Must(template.New("user_message").Parse(
	`Generate exactly {{.Count}} flashcards{{if .CardTypeLabel}} ({{.CardTypeLabel}}){{end}} for this topic based on the instructions.

# Topic:
{{.TopicName}}{{if .DeckName}}

# Deck:
{{.DeckName}}{{end}}`))

// promptData is the data passed to userMessageTemplate.
type promptData struct {
	TopicName     string
	DeckName      string
	Count         int
	CardTypeLabel string
}

// BuildPrompt renders the system instructions and user message for a
// normalized request. The format instructions are appended to whichever
// system prompt is in effect.
func BuildPrompt(req GenerationRequest) (systemPrompt, userMessage string, err error) {
	system := DefaultSystemPrompt
	if req.PromptOverride != "" {
		system = req.PromptOverride
	}
	systemPrompt = system + "\n\n" + cardFormatInstructions

	var label string
	switch req.CardType {
	case CardTypeQAHint:
		label = "question/answer with hint"
	case CardTypeMultipleChoice:
		label = "multiple choice"
	case CardTypeMixed:
		label = "a mix of question/answer and multiple choice"
	}

	var buf bytes.Buffer
	if err := userMessageTemplate.Execute(&buf, promptData{
		TopicName:     req.TopicName,
		DeckName:      req.DeckName,
		Count:         req.Count,
		CardTypeLabel: label,
	}); err != nil {
		return "", "", fmt.Errorf("failed to execute prompt template: %w", err)
	}

	return systemPrompt, buf.String(), nil
}
