// Package generation provides interfaces and implementations for interacting
// with external AI/LLM services for content generation. It abstracts the
// details of LLM API integration (Google, OpenAI, Anthropic, xAI), allowing
// the application to generate flashcards for topics without coupling to
// specific external services.
package generation
