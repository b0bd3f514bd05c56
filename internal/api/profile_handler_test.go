package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/mocks"
	"github.com/phrazzld/mnemo-api/internal/store"
)

func newProfileRequest(method string, body []byte, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, "/api/profile", bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, "/api/profile", nil)
	}
	if userID != uuid.Nil {
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))
	}
	return req
}

func TestGetProfile(t *testing.T) {
	t.Parallel()

	t.Run("returns the caller's profile", func(t *testing.T) {
		user, err := domain.NewUser("learner@example.com", "correct-horse-battery")
		require.NoError(t, err)
		user.Username = "learner"
		user.AIPrompts = map[string]string{"qa_hint": "keep answers under ten words"}

		handler := NewProfileHandler(&mocks.MockUserService{User: user})

		recorder := httptest.NewRecorder()
		handler.GetProfile(recorder, newProfileRequest("GET", nil, user.ID))

		require.Equal(t, http.StatusOK, recorder.Code)

		var resp UserResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, user.ID, resp.ID)
		assert.Equal(t, "learner@example.com", resp.Email)
		assert.Equal(t, "learner", resp.Username)
		assert.Equal(t, "user", resp.Role)
		assert.Equal(t, "keep answers under ten words", resp.AIPrompts["qa_hint"])
		assert.NotContains(t, recorder.Body.String(), "password")
	})

	t.Run("unauthenticated request rejected", func(t *testing.T) {
		handler := NewProfileHandler(&mocks.MockUserService{})

		recorder := httptest.NewRecorder()
		handler.GetProfile(recorder, newProfileRequest("GET", nil, uuid.Nil))

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestUpdateProfile(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("replaces username, avatar and prompts", func(t *testing.T) {
		var gotUsername, gotAvatarURL string
		var gotPrompts map[string]string
		userService := &mocks.MockUserService{
			UpdateProfileFn: func(ctx context.Context, uid uuid.UUID, username, avatarURL string, aiPrompts map[string]string) (*domain.User, error) {
				assert.Equal(t, userID, uid)
				gotUsername = username
				gotAvatarURL = avatarURL
				gotPrompts = aiPrompts

				user, err := domain.NewUser("learner@example.com", "correct-horse-battery")
				require.NoError(t, err)
				user.ID = uid
				user.Username = username
				user.AvatarURL = avatarURL
				user.AIPrompts = aiPrompts
				return user, nil
			},
		}
		handler := NewProfileHandler(userService)

		body, _ := json.Marshal(map[string]interface{}{
			"username":   "polyglot",
			"avatar_url": "https://cdn.example.com/a/polyglot.png",
			"ai_prompts": map[string]string{"multiple_choice": "four choices, one subtle distractor"},
		})
		recorder := httptest.NewRecorder()

		handler.UpdateProfile(recorder, newProfileRequest("PUT", body, userID))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "polyglot", gotUsername)
		assert.Equal(t, "https://cdn.example.com/a/polyglot.png", gotAvatarURL)
		assert.Equal(t, "four choices, one subtle distractor", gotPrompts["multiple_choice"])

		var resp UserResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "polyglot", resp.Username)
	})

	t.Run("taken username conflicts", func(t *testing.T) {
		handler := NewProfileHandler(&mocks.MockUserService{Err: store.ErrUsernameExists})

		body, _ := json.Marshal(map[string]string{"username": "polyglot"})
		recorder := httptest.NewRecorder()

		handler.UpdateProfile(recorder, newProfileRequest("PUT", body, userID))

		assert.Equal(t, http.StatusConflict, recorder.Code)
	})

	t.Run("malformed avatar url rejected", func(t *testing.T) {
		handler := NewProfileHandler(&mocks.MockUserService{})

		body, _ := json.Marshal(map[string]string{"avatar_url": "not a url"})
		recorder := httptest.NewRecorder()

		handler.UpdateProfile(recorder, newProfileRequest("PUT", body, userID))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("short username rejected", func(t *testing.T) {
		handler := NewProfileHandler(&mocks.MockUserService{})

		body, _ := json.Marshal(map[string]string{"username": "ab"})
		recorder := httptest.NewRecorder()

		handler.UpdateProfile(recorder, newProfileRequest("PUT", body, userID))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
