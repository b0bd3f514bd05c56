package api

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	userService   service.UserService
	jwtService    auth.JWTService
	tokenLifetime time.Duration
	validator     *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
// tokenLifetime is the access token lifetime, used to report expiry to
// clients.
func NewAuthHandler(
	userService service.UserService,
	jwtService auth.JWTService,
	tokenLifetime time.Duration,
) *AuthHandler {
	return &AuthHandler{
		userService:   userService,
		jwtService:    jwtService,
		tokenLifetime: tokenLifetime,
		validator:     validator.New(),
	}
}

// Register handles POST /api/auth/register requests.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to register user")
		return
	}

	h.respondWithTokenPair(w, r, http.StatusCreated, user.ID, string(user.Role))
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		// Unknown email and wrong password share one sentinel and one
		// response, so neither case reveals whether the account exists.
		HandleAPIError(w, r, err, "Failed to authenticate user")
		return
	}

	h.respondWithTokenPair(w, r, http.StatusOK, user.ID, string(user.Role))
}

// RefreshToken handles POST /api/auth/refresh requests. It accepts a refresh
// token and, when valid, issues a fresh access/refresh pair. Access tokens
// are rejected here; only tokens minted as type refresh pass validation.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to refresh token")
		return
	}

	h.respondWithTokenPair(w, r, http.StatusOK, claims.UserID, claims.Role)
}

// respondWithTokenPair mints an access and refresh token for the user and
// writes the standard auth response.
func (h *AuthHandler) respondWithTokenPair(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	userID uuid.UUID,
	role string,
) {
	accessToken, err := h.jwtService.GenerateToken(r.Context(), userID, role)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate authentication token", err)
		return
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(r.Context(), userID, role)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError,
			"Failed to generate refresh token", err)
		return
	}

	shared.RespondWithJSON(w, r, status, AuthResponse{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    time.Now().UTC().Add(h.tokenLifetime).Format(time.RFC3339),
	})
}
