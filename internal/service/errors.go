package service

import "errors"

// Common service errors - sentinel errors used across service implementations.
// These errors represent common conditions that callers may want to check for with errors.Is().
//
// Error handling principles:
// 1. Service methods return sentinel errors for expected error conditions
// 2. Unexpected errors are wrapped in service-specific error types
// 3. Callers use errors.Is/errors.As to check for specific error conditions
// 4. The API layer maps service errors to appropriate HTTP status codes
var (
	// ErrNotOwned indicates a resource exists but is owned by a different user
	// than the one making the request. The API layer maps this to HTTP 404 Not
	// Found rather than 403, so probing for other users' resource IDs is
	// indistinguishable from asking for IDs that never existed.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates a login attempt with an unknown email or
	// a wrong password. The two cases deliberately share one error so the
	// response does not reveal which part was wrong.
	// API layer should map this to HTTP 401 Unauthorized.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAPIKeyRequired indicates a card generation request arrived without a
	// usable provider credential: the caller supplied no API key and their
	// role does not permit falling back to the server-configured one.
	// API layer should map this to HTTP 403 Forbidden.
	ErrAPIKeyRequired = errors.New(
		"API key is required: a Pro or Admin subscription is needed to use server-managed provider keys",
	)
)
