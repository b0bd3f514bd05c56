package api

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/service"
)

// AdminHandler handles the administrative user management endpoints. Routes
// using it must sit behind the RequireAdmin middleware, which re-reads the
// caller's role from storage rather than trusting the token claim.
type AdminHandler struct {
	userService service.UserService
	validator   *validator.Validate
	logger      *slog.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(userService service.UserService, logger *slog.Logger) *AdminHandler {
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for AdminHandler")
	}

	return &AdminHandler{
		userService: userService,
		validator:   validator.New(),
		logger:      logger.With(slog.String("component", "admin_handler")),
	}
}

// ListUsers handles GET /api/admin/users requests.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	page := getPagination(r)

	users, total, err := h.userService.ListUsers(r.Context(), page)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list users")
		return
	}

	items := make([]UserResponse, len(users))
	for i, user := range users {
		items[i] = userToResponse(user)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, NewPageResponse(items, total, page))
}

// UpdateUserRole handles PUT /api/admin/users/{userID}/role requests.
func (h *AdminHandler) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	targetID, err := getPathUUID(r, "userID")
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req UpdateRoleRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	user, err := h.userService.UpdateUserRole(r.Context(), targetID, domain.Role(req.Role))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update user role")
		return
	}

	log.Info("user role updated",
		slog.String("target_user_id", targetID.String()),
		slog.String("role", req.Role))

	shared.RespondWithJSON(w, r, http.StatusOK, userToResponse(user))
}
