package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/domain/srs"
	"github.com/phrazzld/mnemo-api/internal/generation"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
	"github.com/phrazzld/mnemo-api/internal/service/review"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
//
// Ownership failures deliberately map to 404 rather than 403: probing for
// another user's resource IDs must be indistinguishable from asking for IDs
// that never existed.
func MapErrorToStatusCode(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrAPIKeyRequired):
		return http.StatusForbidden

	// Not found errors. Ownership failures and out-of-range card indexes
	// both read as "no such resource".
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrNotOwned),
		errors.Is(err, domain.ErrCardIndexOutOfRange):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrDuplicate),
		errors.Is(err, domain.ErrTopicCardLimit),
		errors.Is(err, review.ErrNoCards):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, srs.ErrInvalidScore),
		errors.Is(err, generation.ErrInvalidParameters),
		errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest

	case isDomainInvariantError(err):
		return http.StatusBadRequest

	// Upstream provider failures
	case errors.Is(err, generation.ErrTransientFailure):
		return http.StatusServiceUnavailable
	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return http.StatusBadGateway

	// Default: internal server error
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrMissingToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, service.ErrInvalidCredentials):
		return "Invalid credentials"

	case errors.Is(err, domain.ErrUnauthorized):
		return "Unauthorized"

	// Authorization errors
	case errors.Is(err, service.ErrAPIKeyRequired):
		return "An API key is required: server-managed provider keys need a Pro or Admin account"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, store.ErrDeckNotFound):
		return "Deck not found"

	case errors.Is(err, store.ErrTopicNotFound):
		return "Topic not found"

	case errors.Is(err, domain.ErrCardIndexOutOfRange):
		return "Card not found"

	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, service.ErrNotOwned):
		return "Resource not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, store.ErrUsernameExists):
		return "Username already taken"

	case errors.Is(err, store.ErrDeckNameExists):
		return "A deck with this name already exists"

	case errors.Is(err, domain.ErrTopicCardLimit):
		return fmt.Sprintf("Topic is full: at most %d cards per topic", domain.MaxCardsPerTopic)

	case errors.Is(err, review.ErrNoCards):
		return "Topic has no cards to review"

	// Bad request errors
	case errors.Is(err, srs.ErrInvalidScore):
		return "Score must be between 0 and 3"

	case errors.Is(err, generation.ErrInvalidParameters):
		return "Invalid generation parameters"

	case errors.Is(err, generation.ErrContentBlocked):
		return "The AI provider blocked this content"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	// Upstream provider failures
	case errors.Is(err, generation.ErrTransientFailure):
		return "The AI provider is temporarily unavailable, try again shortly"

	case errors.Is(err, generation.ErrGenerationFailed),
		errors.Is(err, generation.ErrInvalidResponse):
		return "The AI provider returned an unusable response"

	default:
		// Domain invariant messages are written for users and safe to echo,
		// as are field-level validation failures, which carry only the field
		// name and a short reason.
		if sentinel, ok := matchDomainInvariantError(err); ok {
			return sentinel.Error()
		}
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return validationErr.Error()
		}
		return "An unexpected error occurred"
	}
}

// domainInvariantErrors are entity invariant failures surfaced to clients as
// bad requests. Kept in one list so the status mapping and the safe message
// lookup cannot drift apart.
var domainInvariantErrors = []error{
	domain.ErrInvalidEmail,
	domain.ErrEmptyEmail,
	domain.ErrPasswordTooShort,
	domain.ErrPasswordTooLong,
	domain.ErrEmptyPassword,
	domain.ErrInvalidUsername,
	domain.ErrInvalidAvatarURL,
	domain.ErrInvalidRole,
	domain.ErrEmptyDeckName,
	domain.ErrDeckNameTooLong,
	domain.ErrDeckDescriptionTooLong,
	domain.ErrEmptyTopicName,
	domain.ErrTopicNameTooLong,
	domain.ErrInvalidCardType,
	domain.ErrEmptyCardQuestion,
	domain.ErrEmptyCardAnswer,
	domain.ErrTooFewCardChoices,
	domain.ErrMissingCorrectIndex,
	domain.ErrCorrectIndexOutOfRange,
	domain.ErrCardWeightOutOfRange,
}

func isDomainInvariantError(err error) bool {
	_, ok := matchDomainInvariantError(err)
	return ok
}

func matchDomainInvariantError(err error) (error, bool) {
	for _, sentinel := range domainInvariantErrors {
		if errors.Is(err, sentinel) {
			return sentinel, true
		}
	}
	return nil, false
}

// HandleAPIError maps an error to its status code and safe message, then
// writes the error response and logs the underlying error. defaultMessage
// replaces the generic message for 5xx responses so handlers can hint at the
// failed operation without exposing the error itself.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	status := MapErrorToStatusCode(err)
	message := GetSafeErrorMessage(err)

	if status >= http.StatusInternalServerError && defaultMessage != "" {
		message = defaultMessage
	}

	shared.RespondWithErrorAndLog(w, r, status, message, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Check if this is likely a validation error message
	if strings.Contains(errMsg, "Field validation") {
		// Extract the field name and validation tag
		// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "url":
		return "invalid URL"
	default:
		return "validation failed"
	}
}
