package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/mocks"
	"github.com/phrazzld/mnemo-api/internal/store"
)

func newAdminHandlerForTest(userService *mocks.MockUserService) *AdminHandler {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAdminHandler(userService, testLogger)
}

func newAdminUser(t *testing.T, email string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(email, "correct-horse-battery")
	require.NoError(t, err)
	return user
}

func TestAdminListUsers(t *testing.T) {
	t.Parallel()

	adminID := uuid.New()
	users := []*domain.User{
		newAdminUser(t, "first@example.com"),
		newAdminUser(t, "second@example.com"),
	}

	var gotPage store.Pagination
	userService := &mocks.MockUserService{
		ListUsersFn: func(ctx context.Context, page store.Pagination) ([]*domain.User, int64, error) {
			gotPage = page
			return users, 42, nil
		},
	}
	handler := newAdminHandlerForTest(userService)

	req := httptest.NewRequest("GET", "/api/admin/users?page=3&page_size=2", nil)
	req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, adminID))
	recorder := httptest.NewRecorder()

	handler.ListUsers(recorder, req)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, store.Pagination{Page: 3, PageSize: 2}, gotPage)

	var resp struct {
		Items      []UserResponse `json:"items"`
		Total      int64          `json:"total"`
		Page       int            `json:"page"`
		TotalPages int            `json:"total_pages"`
		HasNext    bool           `json:"has_next"`
		HasPrev    bool           `json:"has_prev"`
	}
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "first@example.com", resp.Items[0].Email)
	assert.Equal(t, int64(42), resp.Total)
	assert.Equal(t, 3, resp.Page)
	assert.Equal(t, 21, resp.TotalPages)
	assert.True(t, resp.HasNext)
	assert.True(t, resp.HasPrev)

	// The hash never crosses the API boundary in either direction.
	assert.NotContains(t, recorder.Body.String(), "password")
	assert.NotContains(t, recorder.Body.String(), "hashed")
}

func TestUpdateUserRole(t *testing.T) {
	t.Parallel()

	adminID := uuid.New()
	targetID := uuid.New()

	newRoleRequest := func(target string, body []byte) *http.Request {
		req := httptest.NewRequest("PUT", "/api/admin/users/"+target+"/role", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")

		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("userID", target)
		ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
		ctx = context.WithValue(ctx, shared.UserIDContextKey, adminID)
		return req.WithContext(ctx)
	}

	t.Run("promotes a user", func(t *testing.T) {
		var gotRole domain.Role
		userService := &mocks.MockUserService{
			UpdateUserRoleFn: func(ctx context.Context, uid uuid.UUID, role domain.Role) (*domain.User, error) {
				assert.Equal(t, targetID, uid)
				gotRole = role

				user := newAdminUser(t, "promoted@example.com")
				user.ID = targetID
				user.Role = role
				return user, nil
			},
		}
		handler := newAdminHandlerForTest(userService)

		body, _ := json.Marshal(map[string]string{"role": "pro"})
		recorder := httptest.NewRecorder()

		handler.UpdateUserRole(recorder, newRoleRequest(targetID.String(), body))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, domain.RolePro, gotRole)

		var resp UserResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, targetID, resp.ID)
		assert.Equal(t, "pro", resp.Role)
	})

	t.Run("unknown role rejected before the service", func(t *testing.T) {
		called := false
		userService := &mocks.MockUserService{
			UpdateUserRoleFn: func(ctx context.Context, uid uuid.UUID, role domain.Role) (*domain.User, error) {
				called = true
				return nil, nil
			},
		}
		handler := newAdminHandlerForTest(userService)

		body, _ := json.Marshal(map[string]string{"role": "superuser"})
		recorder := httptest.NewRecorder()

		handler.UpdateUserRole(recorder, newRoleRequest(targetID.String(), body))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		assert.False(t, called)
	})

	t.Run("missing user", func(t *testing.T) {
		handler := newAdminHandlerForTest(&mocks.MockUserService{Err: store.ErrUserNotFound})

		body, _ := json.Marshal(map[string]string{"role": "admin"})
		recorder := httptest.NewRecorder()

		handler.UpdateUserRole(recorder, newRoleRequest(targetID.String(), body))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("malformed target id", func(t *testing.T) {
		handler := newAdminHandlerForTest(&mocks.MockUserService{})

		body, _ := json.Marshal(map[string]string{"role": "admin"})
		recorder := httptest.NewRecorder()

		handler.UpdateUserRole(recorder, newRoleRequest("not-a-uuid", body))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
