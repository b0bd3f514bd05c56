// Package api implements the HTTP surface: one handler per resource (auth,
// profile, decks, topics, reviews, card generation, admin), the request and
// response DTOs, and the single error-to-status translation in
// HandleAPIError. Handlers decode and validate input, call a service, and
// write the shared response envelope; they hold no business logic of their
// own.
package api
