package auth

import "golang.org/x/crypto/bcrypt"

// PasswordVerifier checks a plaintext password against a stored hash.
// The user service depends on this seam rather than on bcrypt directly so
// login tests can swap in a constant-time fake.
type PasswordVerifier interface {
	// Compare returns nil when password matches hashedPassword. A mismatch
	// and a malformed hash both come back as errors; callers treat every
	// failure as invalid credentials.
	Compare(hashedPassword, password string) error
}

// BcryptVerifier is the production PasswordVerifier. Hashing happens in the
// user store at its configured cost; verification reads the cost out of the
// hash itself, so no configuration is needed here.
type BcryptVerifier struct{}

// NewBcryptVerifier creates a new BcryptVerifier.
func NewBcryptVerifier() *BcryptVerifier {
	return &BcryptVerifier{}
}

var _ PasswordVerifier = (*BcryptVerifier)(nil)

// Compare implements PasswordVerifier with bcrypt's constant-time comparison.
func (v *BcryptVerifier) Compare(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}
