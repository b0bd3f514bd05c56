package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/service/auth"
)

// MockJWTService implements auth.JWTService. Each method prefers its Fn
// field when set and falls back to the fixed Token/Claims/Err values, so
// simple tests configure three fields and table tests swap behavior per case.
type MockJWTService struct {
	GenerateTokenFn        func(ctx context.Context, userID uuid.UUID, role string) (string, error)
	ValidateTokenFn        func(ctx context.Context, tokenString string) (*auth.Claims, error)
	GenerateRefreshTokenFn func(ctx context.Context, userID uuid.UUID, role string) (string, error)
	ValidateRefreshTokenFn func(ctx context.Context, tokenString string) (*auth.Claims, error)

	// Fallbacks when the Fn fields are nil. Err covers both generate
	// methods, ValidateErr both validate methods.
	Token        string
	RefreshToken string
	Err          error
	ValidateErr  error
	Claims       *auth.Claims
}

func (m *MockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	if m.GenerateTokenFn != nil {
		return m.GenerateTokenFn(ctx, userID, role)
	}
	return m.Token, m.Err
}

func (m *MockJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

func (m *MockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	if m.GenerateRefreshTokenFn != nil {
		return m.GenerateRefreshTokenFn(ctx, userID, role)
	}
	return m.RefreshToken, m.Err
}

func (m *MockJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if m.ValidateRefreshTokenFn != nil {
		return m.ValidateRefreshTokenFn(ctx, tokenString)
	}
	return m.Claims, m.ValidateErr
}

var _ auth.JWTService = (*MockJWTService)(nil)
