package mocks

import (
	"context"

	"github.com/google/uuid"

	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockUserService implements service.UserService for testing handlers
// without real stores behind them.
type MockUserService struct {
	// Custom behavior functions
	RegisterFn       func(ctx context.Context, email, password string) (*domain.User, error)
	AuthenticateFn   func(ctx context.Context, email, password string) (*domain.User, error)
	GetUserFn        func(ctx context.Context, userID uuid.UUID) (*domain.User, error)
	UpdateProfileFn  func(ctx context.Context, userID uuid.UUID, username, avatarURL string, aiPrompts map[string]string) (*domain.User, error)
	ListUsersFn      func(ctx context.Context, page store.Pagination) ([]*domain.User, int64, error)
	UpdateUserRoleFn func(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error)

	// Default response values
	User  *domain.User
	Users []*domain.User
	Total int64
	Err   error
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if m.RegisterFn != nil {
		return m.RegisterFn(ctx, email, password)
	}
	return m.User, m.Err
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, email, password)
	}
	return m.User, m.Err
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if m.GetUserFn != nil {
		return m.GetUserFn(ctx, userID)
	}
	return m.User, m.Err
}

func (m *MockUserService) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	username, avatarURL string,
	aiPrompts map[string]string,
) (*domain.User, error) {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, userID, username, avatarURL, aiPrompts)
	}
	return m.User, m.Err
}

func (m *MockUserService) ListUsers(
	ctx context.Context,
	page store.Pagination,
) ([]*domain.User, int64, error) {
	if m.ListUsersFn != nil {
		return m.ListUsersFn(ctx, page)
	}
	return m.Users, m.Total, m.Err
}

func (m *MockUserService) UpdateUserRole(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
) (*domain.User, error) {
	if m.UpdateUserRoleFn != nil {
		return m.UpdateUserRoleFn(ctx, userID, role)
	}
	return m.User, m.Err
}

// Ensure MockUserService implements service.UserService
var _ service.UserService = (*MockUserService)(nil)
