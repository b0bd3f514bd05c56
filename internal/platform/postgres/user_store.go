package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/domain"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
	"github.com/phrazzld/mnemo-api/internal/store"
	"golang.org/x/crypto/bcrypt"
)

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	logger     *slog.Logger
	bcryptCost int
}

// NewPostgresUserStore creates a new PostgreSQL implementation of the UserStore interface.
// It accepts a database connection or transaction that should be initialized and managed
// by the caller, and the bcrypt cost used when hashing plaintext passwords.
// If logger is nil, a default logger will be used.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger, bcryptCost int) *PostgresUserStore {
	// Validate inputs
	if db == nil {
		panic("db cannot be nil")
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	// Out-of-range costs fall back to the library default
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}

	return &PostgresUserStore{
		db:         db,
		logger:     logger.With(slog.String("component", "user_store")),
		bcryptCost: bcryptCost,
	}
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// Create implements store.UserStore.Create
// It saves a new user to the database, hashing the plaintext password first.
// Returns store.ErrEmailExists or store.ErrUsernameExists on unique violations.
// Returns validation errors from the domain User if data is invalid.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate user data
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	// Hash the plaintext password before storage
	if user.Password != "" {
		hashed, err := s.hashPassword(user.Password)
		if err != nil {
			log.Error("failed to hash password",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	prompts, err := marshalPrompts(user.AIPrompts)
	if err != nil {
		return fmt.Errorf("failed to encode ai prompts: %w", err)
	}

	query := `
		INSERT INTO users (id, email, hashed_password, username, avatar_url, role, ai_prompts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.HashedPassword,
		nullString(user.Username),
		nullString(user.AvatarURL),
		user.Role,
		prompts,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("duplicate field during user creation",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return mapped
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()),
		slog.String("role", string(user.Role)))
	return nil
}

// GetByID implements store.UserStore.GetByID
// It retrieves a user by their unique ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving user by ID", slog.String("user_id", id.String()))

	query := `
		SELECT id, email, hashed_password, username, avatar_url, role, ai_prompts, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found", slog.String("user_id", id.String()))
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by ID",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return nil, err
	}

	return user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
// It retrieves a user by their email address.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, hashed_password, username, avatar_url, role, ai_prompts, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	user, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("user not found by email")
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user by email",
			slog.String("error", err.Error()))
		return nil, err
	}

	return user, nil
}

// Update implements store.UserStore.Update
// The caller must provide a complete user object. If a plaintext Password is
// set it is hashed and replaces the stored hash.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// Validate user data
	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during update",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}

	// Hash a new plaintext password when one is provided
	if user.Password != "" {
		hashed, err := s.hashPassword(user.Password)
		if err != nil {
			log.Error("failed to hash password",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = hashed
		user.Password = ""
	}

	prompts, err := marshalPrompts(user.AIPrompts)
	if err != nil {
		return fmt.Errorf("failed to encode ai prompts: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET email = $1, hashed_password = $2, username = $3, avatar_url = $4, role = $5, ai_prompts = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		user.Email,
		user.HashedPassword,
		nullString(user.Username),
		nullString(user.AvatarURL),
		user.Role,
		prompts,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("duplicate field during user update",
				slog.String("error", err.Error()),
				slog.String("user_id", user.ID.String()))
			return mapped
		}

		log.Error("failed to update user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for update", slog.String("user_id", user.ID.String()))
		return err
	}

	log.Info("user updated successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// UpdateProfile implements store.UserStore.UpdateProfile
// It persists only the profile columns of the given user.
// Returns store.ErrUserNotFound if the user does not exist and
// store.ErrUsernameExists if the username is already taken.
func (s *PostgresUserStore) UpdateProfile(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	prompts, err := marshalPrompts(user.AIPrompts)
	if err != nil {
		return fmt.Errorf("failed to encode ai prompts: %w", err)
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = $1, avatar_url = $2, ai_prompts = $3, updated_at = $4
		WHERE id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		nullString(user.Username),
		nullString(user.AvatarURL),
		prompts,
		user.UpdatedAt,
		user.ID,
	)

	if err != nil {
		mapped := MapError(err)
		if store.IsDuplicateError(mapped) {
			log.Warn("username already taken",
				slog.String("user_id", user.ID.String()))
			return mapped
		}

		log.Error("failed to update user profile",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapped
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for profile update", slog.String("user_id", user.ID.String()))
		return err
	}

	log.Info("user profile updated successfully", slog.String("user_id", user.ID.String()))
	return nil
}

// UpdateRole implements store.UserStore.UpdateRole
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) UpdateRole(ctx context.Context, id uuid.UUID, role domain.Role) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if !role.IsValid() {
		return domain.ErrInvalidRole
	}

	query := `
		UPDATE users
		SET role = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := s.db.ExecContext(ctx, query, role, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update user role",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()),
			slog.String("role", string(role)))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for role update", slog.String("user_id", id.String()))
		return err
	}

	log.Info("user role updated successfully",
		slog.String("user_id", id.String()),
		slog.String("role", string(role)))
	return nil
}

// List implements store.UserStore.List
// It returns a page of users ordered by creation time plus the total count.
func (s *PostgresUserStore) List(ctx context.Context, page store.Pagination) ([]*domain.User, int64, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		log.Error("failed to count users", slog.String("error", err.Error()))
		return nil, 0, err
	}

	query := `
		SELECT id, email, hashed_password, username, avatar_url, role, ai_prompts, created_at, updated_at
		FROM users
		ORDER BY created_at ASC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, page.Limit(), page.Offset())
	if err != nil {
		log.Error("failed to query users", slog.String("error", err.Error()))
		return nil, 0, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	users := []*domain.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.Error("failed to scan user row", slog.String("error", err.Error()))
			return nil, 0, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, err
	}

	log.Debug("listed users",
		slog.Int("count", len(users)),
		slog.Int64("total", total))
	return users, total, nil
}

// Delete implements store.UserStore.Delete
// It removes a user from the database by their ID.
// Returns store.ErrUserNotFound if the user does not exist.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM users WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete user",
			slog.String("error", err.Error()),
			slog.String("user_id", id.String()))
		return err
	}

	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		log.Debug("user not found for delete", slog.String("user_id", id.String()))
		return err
	}

	log.Info("user deleted successfully", slog.String("user_id", id.String()))
	return nil
}

// WithTx implements store.UserStore.WithTx
// It returns a new UserStore that runs all operations on the given transaction.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{
		db:         tx,
		logger:     s.logger,
		bcryptCost: s.bcryptCost,
	}
}

// hashPassword hashes a plaintext password with the store's configured cost.
func (s *PostgresUserStore) hashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// rowScanner abstracts *sql.Row and *sql.Rows so user scanning is shared
// between single-row and multi-row queries.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanUser reads one user row in the column order used by all user queries.
func scanUser(row rowScanner) (*domain.User, error) {
	var user domain.User
	var username, avatarURL sql.NullString
	var role string
	var prompts []byte

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&username,
		&avatarURL,
		&role,
		&prompts,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Username = username.String
	user.AvatarURL = avatarURL.String
	user.Role = domain.Role(role)

	if len(prompts) > 0 {
		if err := json.Unmarshal(prompts, &user.AIPrompts); err != nil {
			return nil, fmt.Errorf("failed to decode ai prompts: %w", err)
		}
	}

	return &user, nil
}

// marshalPrompts encodes the per-user prompt overrides for the JSONB
// ai_prompts column. Empty maps are stored as NULL.
func marshalPrompts(prompts map[string]string) ([]byte, error) {
	if len(prompts) == 0 {
		return nil, nil
	}
	return json.Marshal(prompts)
}

// nullString converts a possibly empty string to its nullable SQL form.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
