package generation

import "errors"

// Sentinel errors for card generation. The API layer maps these to status
// codes, so generators classify provider failures into one of these rather
// than returning raw client errors.
var (
	// ErrGenerationFailed covers failures with no more specific class.
	ErrGenerationFailed = errors.New("failed to generate cards for topic")

	// ErrInvalidParameters is returned when a request fails validation
	// before any provider call is made.
	ErrInvalidParameters = errors.New("invalid generation parameters")

	// ErrInvalidResponse is returned when the model's output cannot be
	// parsed into cards.
	ErrInvalidResponse = errors.New("invalid response from language model")

	// ErrContentBlocked is returned when the provider's safety filters
	// refuse the prompt or the completion.
	ErrContentBlocked = errors.New("content blocked by language model safety filters")

	// ErrTransientFailure marks errors worth retrying, such as rate limits
	// and provider 5xx responses.
	ErrTransientFailure = errors.New("transient error during card generation")

	// ErrInvalidConfig is returned when a generator is constructed with
	// unusable configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
