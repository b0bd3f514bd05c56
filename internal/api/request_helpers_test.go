package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/mnemo-api/internal/api/shared"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

func requestWithParam(name, value string) *http.Request {
	req := httptest.NewRequest("GET", "/", nil)
	rctx := chi.NewRouteContext()
	if value != "" {
		rctx.URLParams.Add(name, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestGetUserIDFromContext(t *testing.T) {
	t.Parallel()

	t.Run("present", func(t *testing.T) {
		userID := uuid.New()
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, userID))

		got, ok := getUserIDFromContext(req)
		assert.True(t, ok)
		assert.Equal(t, userID, got)
	})

	t.Run("absent", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)

		_, ok := getUserIDFromContext(req)
		assert.False(t, ok)
	})

	t.Run("nil UUID is not an identity", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req = req.WithContext(context.WithValue(req.Context(), shared.UserIDContextKey, uuid.Nil))

		_, ok := getUserIDFromContext(req)
		assert.False(t, ok)
	})
}

func TestGetPathUUID(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		want := uuid.New()
		got, err := getPathUUID(requestWithParam("deckID", want.String()), "deckID")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := getPathUUID(requestWithParam("deckID", ""), "deckID")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := getPathUUID(requestWithParam("deckID", "not-a-uuid"), "deckID")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidID)

		var validationErr *domain.ValidationError
		require.True(t, errors.As(err, &validationErr))
		assert.Equal(t, "deckID", validationErr.Field)
	})
}

func TestGetPathCardIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    int
		wantErr bool
	}{
		{name: "zero", value: "0", want: 0},
		{name: "positive", value: "17", want: 17},
		{name: "negative parses and is left to the service", value: "-2", want: -2},
		{name: "non-numeric", value: "two", wantErr: true},
		{name: "float", value: "1.5", wantErr: true},
		{name: "missing", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := getPathCardIndex(requestWithParam("cardIndex", tt.value), "cardIndex")
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetPagination(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
		want  store.Pagination
	}{
		{name: "defaults", query: "", want: store.Pagination{Page: store.DefaultPage, PageSize: store.DefaultPageSize}},
		{name: "explicit", query: "?page=3&page_size=50", want: store.Pagination{Page: 3, PageSize: 50}},
		{name: "oversized page capped", query: "?page=1&page_size=9999", want: store.Pagination{Page: 1, PageSize: store.MaxPageSize}},
		{name: "garbage falls back", query: "?page=abc&page_size=xyz", want: store.Pagination{Page: store.DefaultPage, PageSize: store.DefaultPageSize}},
		{name: "negative falls back", query: "?page=-4&page_size=-1", want: store.Pagination{Page: store.DefaultPage, PageSize: store.DefaultPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/api/decks"+tt.query, nil)
			assert.Equal(t, tt.want, getPagination(req))
		})
	}
}
