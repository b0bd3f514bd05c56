package api

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// ProfileHandler handles requests for the authenticated user's own profile.
type ProfileHandler struct {
	userService service.UserService
	validator   *validator.Validate
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(userService service.UserService) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

// GetProfile handles GET /api/profile requests.
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	user, err := h.userService.GetUser(r.Context(), userID)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to load profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}

// UpdateProfile handles PUT /api/profile requests. Username, avatar URL and
// the per-user AI prompt overrides are replaced with the submitted values.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserIDFromContext(r)
	if !ok {
		HandleAPIError(w, r, domain.ErrUnauthorized, "User ID not found or invalid")
		return
	}

	var req UpdateProfileRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, req.Username, req.AvatarURL, req.AIPrompts)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update profile")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
