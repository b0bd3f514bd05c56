package mocks

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// MockUserStore implements store.UserStore for testing
type MockUserStore struct {
	// Function fields for customizable behavior
	CreateFn        func(ctx context.Context, user *domain.User) error
	GetByIDFn       func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmailFn    func(ctx context.Context, email string) (*domain.User, error)
	UpdateFn        func(ctx context.Context, user *domain.User) error
	UpdateProfileFn func(ctx context.Context, user *domain.User) error
	UpdateRoleFn    func(ctx context.Context, id uuid.UUID, role domain.Role) error
	ListFn          func(ctx context.Context, page store.Pagination) ([]*domain.User, int64, error)
	DeleteFn        func(ctx context.Context, id uuid.UUID) error

	// Data for default implementation, keyed by email
	Users           map[string]*domain.User
	LastUserID      uuid.UUID
	CreateError     error
	GetByEmailError error
}

// NewMockUserStore creates a new mock store with initialized defaults
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		Users: make(map[string]*domain.User),
	}
}

// Create implements the UserStore interface
func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, user)
	}

	if m.CreateError != nil {
		return m.CreateError
	}

	if _, exists := m.Users[user.Email]; exists {
		return store.ErrEmailExists
	}

	m.Users[user.Email] = user
	m.LastUserID = user.ID
	return nil
}

// GetByID implements the UserStore interface
func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	// Default implementation searches through Users map
	for _, user := range m.Users {
		if user.ID == id {
			return user, nil
		}
	}

	return nil, store.ErrUserNotFound
}

// GetByEmail implements the UserStore interface
func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.GetByEmailFn != nil {
		return m.GetByEmailFn(ctx, email)
	}

	if m.GetByEmailError != nil {
		return nil, m.GetByEmailError
	}

	user, exists := m.Users[email]
	if !exists {
		return nil, store.ErrUserNotFound
	}

	return user, nil
}

// Update implements the UserStore interface
func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, user)
	}

	// Default simple implementation - just replace user with same ID
	for email, existingUser := range m.Users {
		if existingUser.ID == user.ID {
			// If email changed, check it's not taken
			if email != user.Email {
				if _, exists := m.Users[user.Email]; exists {
					return store.ErrEmailExists
				}
				// Remove old entry
				delete(m.Users, email)
			}

			// Store updated user
			m.Users[user.Email] = user
			return nil
		}
	}

	return store.ErrUserNotFound
}

// UpdateProfile implements the UserStore interface
func (m *MockUserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	if m.UpdateProfileFn != nil {
		return m.UpdateProfileFn(ctx, user)
	}

	for _, existingUser := range m.Users {
		if existingUser.ID == user.ID {
			existingUser.Username = user.Username
			existingUser.AvatarURL = user.AvatarURL
			existingUser.AIPrompts = user.AIPrompts
			return nil
		}
	}

	return store.ErrUserNotFound
}

// UpdateRole implements the UserStore interface
func (m *MockUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	if m.UpdateRoleFn != nil {
		return m.UpdateRoleFn(ctx, id, role)
	}

	for _, user := range m.Users {
		if user.ID == id {
			user.Role = role
			return nil
		}
	}

	return store.ErrUserNotFound
}

// List implements the UserStore interface
func (m *MockUserStore) List(
	ctx context.Context,
	page store.Pagination,
) ([]*domain.User, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, page)
	}

	// Default implementation returns all users unpaged; tests that care
	// about ordering or paging set ListFn
	users := make([]*domain.User, 0, len(m.Users))
	for _, user := range m.Users {
		users = append(users, user)
	}

	return users, int64(len(users)), nil
}

// Delete implements the UserStore interface
func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	// Default implementation searches through Users map
	for email, user := range m.Users {
		if user.ID == id {
			delete(m.Users, email)
			return nil
		}
	}

	return store.ErrUserNotFound
}

// WithTx implements the UserStore interface for transaction support
func (m *MockUserStore) WithTx(tx *sql.Tx) store.UserStore {
	// For mock purposes, just return the same mock
	// In a real implementation, this would create a new store with the transaction
	return m
}

// Ensure MockUserStore implements store.UserStore
var _ store.UserStore = (*MockUserStore)(nil)
