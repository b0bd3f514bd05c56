package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
	"github.com/phrazzld/mnemo-api/internal/store"
)

// UserService provides user-related operations: registration, credential
// checks and profile management, plus the admin-only listing and role
// operations.
type UserService interface {
	// Register creates a new user with the default role. The plaintext
	// password is hashed by the store before the row is written.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate verifies the email/password pair and returns the matching
	// user. Unknown emails and wrong passwords both yield
	// ErrInvalidCredentials.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by their ID
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)

	// UpdateProfile sets the user's username, avatar URL and AI prompt
	// overrides, following the pattern of retrieving the full user first and
	// persisting only the profile columns.
	UpdateProfile(
		ctx context.Context,
		userID uuid.UUID,
		username, avatarURL string,
		aiPrompts map[string]string,
	) (*domain.User, error)

	// ListUsers returns a page of users with the total count. Admin surface.
	ListUsers(ctx context.Context, page store.Pagination) ([]*domain.User, int64, error)

	// UpdateUserRole changes a user's role and returns the updated user.
	// Admin surface.
	UpdateUserRole(ctx context.Context, userID uuid.UUID, role domain.Role) (*domain.User, error)
}

// UserServiceImpl implements the UserService interface
type UserServiceImpl struct {
	userStore        store.UserStore
	passwordVerifier auth.PasswordVerifier
	db               *sql.DB
	logger           *slog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userStore store.UserStore,
	passwordVerifier auth.PasswordVerifier,
	db *sql.DB,
	logger *slog.Logger,
) UserService {
	if logger == nil {
		logger = slog.Default()
	}

	return &UserServiceImpl{
		userStore:        userStore,
		passwordVerifier: passwordVerifier,
		db:               db,
		logger:           logger.With("component", "user_service"),
	}
}

// Register creates a new user with the specified email and password
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) Register(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := domain.NewUser(email, password)
	if err != nil {
		s.logger.Debug("rejected invalid registration data",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Use a transaction for the user creation
	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Get a transaction-aware store
		txStore := s.userStore.WithTx(tx)

		// Create the user within the transaction; the store hashes the
		// plaintext password before writing the row
		return txStore.Create(ctx, user)
	})

	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to register with existing email",
				"email", email)
		} else {
			s.logger.Error("failed to save user to database",
				"error", err,
				"email", email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Drop the plaintext now that the hash is stored
	user.Password = ""

	s.logger.Info("user registered successfully",
		"user_id", user.ID,
		"email", user.Email)

	return user, nil
}

// Authenticate verifies the email/password pair and returns the user on
// success. The error is the same for an unknown email and a wrong password.
func (s *UserServiceImpl) Authenticate(
	ctx context.Context,
	email, password string,
) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("login attempt for unknown email",
				"email", email)
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("failed to retrieve user for login",
			"error", err,
			"email", email)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	if err := s.passwordVerifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("login attempt with wrong password",
			"user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	s.logger.Debug("user authenticated successfully",
		"user_id", user.ID)

	return user, nil
}

// GetUser retrieves a user by their ID
func (s *UserServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		s.logger.Error("failed to retrieve user",
			"error", err,
			"user_id", userID)
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	s.logger.Debug("retrieved user successfully",
		"user_id", userID,
		"email", user.Email)

	return user, nil
}

// UpdateProfile updates the user's profile fields
// Following the pattern of getting the complete user first, then updating the specific fields
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) UpdateProfile(
	ctx context.Context,
	userID uuid.UUID,
	username, avatarURL string,
	aiPrompts map[string]string,
) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Get a transaction-aware store
		txStore := s.userStore.WithTx(tx)

		// First, retrieve the current user to get the complete user object
		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			s.logger.Error("failed to retrieve user for profile update",
				"error", err,
				"user_id", userID)
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		// Apply the profile changes on the domain object
		if err := user.UpdateProfile(username, avatarURL, aiPrompts); err != nil {
			s.logger.Debug("rejected invalid profile data",
				"error", err,
				"user_id", userID)
			return fmt.Errorf("invalid profile data: %w", err)
		}

		// Persist only the profile columns
		err = txStore.UpdateProfile(ctx, user)
		if err != nil {
			if errors.Is(err, store.ErrUsernameExists) {
				s.logger.Debug("attempted to update to an existing username",
					"user_id", userID,
					"username", username)
			} else {
				s.logger.Error("failed to update user profile",
					"error", err,
					"user_id", userID)
			}
			return fmt.Errorf("failed to update user profile: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user profile updated successfully in transaction",
		"user_id", userID)

	return updated, nil
}

// ListUsers returns a page of users ordered by creation time together with
// the total user count
func (s *UserServiceImpl) ListUsers(
	ctx context.Context,
	page store.Pagination,
) ([]*domain.User, int64, error) {
	users, total, err := s.userStore.List(ctx, page)
	if err != nil {
		s.logger.Error("failed to list users",
			"error", err,
			"page", page.Page,
			"page_size", page.PageSize)
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}

	s.logger.Debug("listed users successfully",
		"count", len(users),
		"total", total)

	return users, total, nil
}

// UpdateUserRole changes a user's role
// Following the pattern of getting the complete user first, then updating the specific field
// Uses a transaction to ensure atomicity of the operation
func (s *UserServiceImpl) UpdateUserRole(
	ctx context.Context,
	userID uuid.UUID,
	role domain.Role,
) (*domain.User, error) {
	var updated *domain.User

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		// Get a transaction-aware store
		txStore := s.userStore.WithTx(tx)

		// First, retrieve the current user to get the complete user object
		user, err := txStore.GetByID(ctx, userID)
		if err != nil {
			s.logger.Error("failed to retrieve user for role update",
				"error", err,
				"user_id", userID)
			return fmt.Errorf("failed to retrieve user for update: %w", err)
		}

		// Validate and apply the role change on the domain object
		if err := user.UpdateRole(role); err != nil {
			s.logger.Debug("rejected invalid role",
				"error", err,
				"user_id", userID,
				"role", string(role))
			return fmt.Errorf("invalid role: %w", err)
		}

		// Persist the role change
		err = txStore.UpdateRole(ctx, userID, role)
		if err != nil {
			s.logger.Error("failed to update user role",
				"error", err,
				"user_id", userID,
				"role", string(role))
			return fmt.Errorf("failed to update user role: %w", err)
		}

		updated = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user role updated successfully in transaction",
		"user_id", userID,
		"role", string(role))

	return updated, nil
}

// Ensure UserServiceImpl implements UserService
var _ UserService = (*UserServiceImpl)(nil)
