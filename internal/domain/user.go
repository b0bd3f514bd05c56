package domain

import (
	"errors"
	"net/url"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Common validation errors for User
var (
	ErrEmptyUserID         = errors.New("user ID cannot be empty")
	ErrInvalidEmail        = errors.New("invalid email format")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrEmptyPassword       = errors.New("password cannot be empty")
	ErrEmptyHashedPassword = errors.New("hashed password cannot be empty")
	ErrInvalidUsername     = errors.New("username must be 3-50 characters of letters, digits, underscore or hyphen")
	ErrInvalidAvatarURL    = errors.New("avatar URL must be a valid http or https URL")
	ErrInvalidRole         = errors.New("invalid user role")
)

// Role controls a user's access level. Pro and admin users may fall back to
// server-configured AI provider keys; admins can additionally manage other
// users.
type Role string

// Possible user roles
const (
	RoleUser  Role = "user"
	RolePro   Role = "pro"
	RoleAdmin Role = "admin"
)

// usernamePattern limits usernames to 3-50 characters of letters, digits,
// underscores and hyphens.
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]{3,50}$`)

// User represents a registered user, combining authentication details with
// the learning profile shown to other parts of the application.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // Plaintext password, used temporarily during registration/updates
	HashedPassword string    `json:"-"` // Never expose password hash in JSON
	Username       string    `json:"username,omitempty"`
	AvatarURL      string    `json:"avatar_url,omitempty"`
	Role           Role      `json:"role"`
	// AIPrompts holds per-user prompt overrides for card generation,
	// keyed by prompt name.
	AIPrompts map[string]string `json:"ai_prompts,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewUser creates a new User with the given email and password and the
// default role. It generates a new UUID for the user ID and sets the
// creation/update timestamps. Returns an error if validation fails.
//
// NOTE: This function only sets up the user structure with the plaintext
// password. The caller is responsible for hashing the password before
// storing the user.
func NewUser(email, password string) (*User, error) {
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  password, // Plaintext password - must be hashed before storage
		Role:      RoleUser,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
// Returns an error if any field fails validation.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrEmptyUserID
	}

	if u.Email == "" {
		return ErrEmptyEmail
	}

	if !validateEmailFormat(u.Email) {
		return ErrInvalidEmail
	}

	// During user creation/update we need to validate the provided password
	if u.Password != "" {
		if !validatePasswordLength(u.Password) {
			if len(u.Password) < 12 {
				return ErrPasswordTooShort
			}
			return ErrPasswordTooLong
		}
	} else {
		// When no plaintext password is provided, the user must have a
		// hashed password (the case for existing users loaded from the
		// database).
		if u.HashedPassword == "" {
			return ErrEmptyPassword
		}
	}

	if u.Username != "" && !usernamePattern.MatchString(u.Username) {
		return ErrInvalidUsername
	}

	if u.AvatarURL != "" && !validateHTTPURL(u.AvatarURL) {
		return ErrInvalidAvatarURL
	}

	if !u.Role.IsValid() {
		return ErrInvalidRole
	}

	return nil
}

// UpdateProfile sets the profile fields and refreshes the update timestamp.
// Empty username and avatar values clear the corresponding field; a nil
// prompts map leaves the existing prompts untouched.
func (u *User) UpdateProfile(username, avatarURL string, aiPrompts map[string]string) error {
	if username != "" && !usernamePattern.MatchString(username) {
		return ErrInvalidUsername
	}
	if avatarURL != "" && !validateHTTPURL(avatarURL) {
		return ErrInvalidAvatarURL
	}

	u.Username = username
	u.AvatarURL = avatarURL
	if aiPrompts != nil {
		u.AIPrompts = aiPrompts
	}
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateRole changes the user's role and refreshes the update timestamp.
func (u *User) UpdateRole(role Role) error {
	if !role.IsValid() {
		return ErrInvalidRole
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// IsValid reports whether the role is one of the defined values.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RolePro, RoleAdmin:
		return true
	default:
		return false
	}
}

// validateEmailFormat performs basic validation of email format.
// Returns true if the email appears to be in a valid format.
func validateEmailFormat(email string) bool {
	// Simple check: an @ with a dotted domain after it. Full RFC 5322
	// validation is deliberately out of scope; the mail round trip is
	// the real verification.
	atIndex := -1
	for i, char := range email {
		if char == '@' {
			atIndex = i
			break
		}
	}

	if atIndex <= 0 || atIndex == len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	if len(domainPart) < 3 { // minimum would be "a.b"
		return false
	}

	dotIndex := -1
	for i, char := range domainPart {
		if char == '.' {
			dotIndex = i
			break
		}
	}

	return dotIndex > 0 && dotIndex < len(domainPart)-1
}

// validatePasswordLength checks if a password meets length requirements:
// minimum 12 characters, maximum 72 (bcrypt's practical limit).
//
// Length matters more than character-class rules: longer passwords provide
// better security than short ones with special-character requirements.
func validatePasswordLength(password string) bool {
	passLen := len(password)
	return passLen >= 12 && passLen <= 72
}

// validateHTTPURL reports whether raw parses as an absolute http or https
// URL with a host.
func validateHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
