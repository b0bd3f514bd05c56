// Package gemini provides an implementation of the generation.CardGenerator
// interface that uses Google's Gemini API for generating flashcards.
//
// This package is an infrastructure adapter, connecting the application's
// generation boundary to Google's external AI service. It translates between
// generation requests and the genai client's types without exposing the
// external service to the core application.
//
// Because generation requests carry their own API key (the server's fallback
// key or one the user supplied), the adapter creates a genai client per call
// rather than holding one.
//
// Error handling follows the generation package sentinels: transient API
// failures (rate limits, server errors, transport problems) are retried with
// exponential backoff and jitter, safety blocks map to ErrContentBlocked, and
// unusable responses map to ErrInvalidResponse.
package gemini
