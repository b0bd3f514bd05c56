package mocks

import (
	"errors"

	"github.com/phrazzld/mnemo-api/internal/service/auth"
)

// MockPasswordVerifier implements auth.PasswordVerifier. It records every
// Compare call so login tests can assert the verifier actually ran, which
// matters for the anti-enumeration path where a failed lookup still burns a
// comparison.
type MockPasswordVerifier struct {
	// ShouldSucceed is the default outcome when CompareFn is nil.
	ShouldSucceed bool

	// CompareFn overrides the outcome per call when set.
	CompareFn func(hashedPassword, password string) error

	CompareCalledWith struct {
		HashedPassword string
		Password       string
	}
	CompareCallCount int
}

func (m *MockPasswordVerifier) Compare(hashedPassword, password string) error {
	m.CompareCalledWith.HashedPassword = hashedPassword
	m.CompareCalledWith.Password = password
	m.CompareCallCount++

	if m.CompareFn != nil {
		return m.CompareFn(hashedPassword, password)
	}
	if m.ShouldSucceed {
		return nil
	}
	return errors.New("password mismatch")
}

var _ auth.PasswordVerifier = (*MockPasswordVerifier)(nil)
