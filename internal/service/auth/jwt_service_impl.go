package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/mnemo-api/internal/config"
	"github.com/phrazzld/mnemo-api/internal/platform/logger"
)

// Token type claim values. Access tokens authenticate API calls; refresh
// tokens are only good for obtaining a new pair. The claim keeps the
// long-lived refresh token from being replayed as an access token.
const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// hmacJWTService implements JWTService with HMAC-SHA256 signing.
type hmacJWTService struct {
	signingKey           []byte
	tokenLifetime        time.Duration
	refreshTokenLifetime time.Duration
	timeFunc             func() time.Time // injectable so tests control expiry
	clockSkew            time.Duration
}

// jwtCustomClaims is the on-wire claim set: user identity, role, token type,
// plus the registered claims.
type jwtCustomClaims struct {
	UserID    uuid.UUID `json:"uid"`
	Role      string    `json:"role"`
	TokenType string    `json:"type"`
	jwt.RegisteredClaims
}

var _ JWTService = (*hmacJWTService)(nil)

// NewJWTService creates a new JWT service using HMAC-SHA signing.
func NewJWTService(cfg config.AuthConfig) (JWTService, error) {
	if len(cfg.JWTSecret) < 32 {
		return nil, fmt.Errorf("jwt secret must be at least 32 characters")
	}

	return &hmacJWTService{
		signingKey:           []byte(cfg.JWTSecret),
		tokenLifetime:        time.Duration(cfg.TokenLifetimeMinutes) * time.Minute,
		refreshTokenLifetime: time.Duration(cfg.RefreshTokenLifetimeMinutes) * time.Minute,
		timeFunc:             time.Now,
		clockSkew:            2 * time.Minute, // tolerate minor clock drift between issuer and validator
	}, nil
}

// GenerateToken creates a signed access token carrying the user's ID and role.
func (s *hmacJWTService) GenerateToken(ctx context.Context, userID uuid.UUID, role string) (string, error) {
	return s.sign(ctx, userID, role, tokenTypeAccess, s.tokenLifetime)
}

// GenerateRefreshToken creates a signed refresh token. It outlives the access
// token and is accepted only by the refresh endpoint.
func (s *hmacJWTService) GenerateRefreshToken(
	ctx context.Context,
	userID uuid.UUID,
	role string,
) (string, error) {
	return s.sign(ctx, userID, role, tokenTypeRefresh, s.refreshTokenLifetime)
}

// ValidateToken checks an access token and returns its claims. A refresh
// token presented here is rejected with ErrWrongTokenType.
func (s *hmacJWTService) ValidateToken(ctx context.Context, tokenString string) (*Claims, error) {
	return s.parse(ctx, tokenString, tokenTypeAccess, validationErrors{
		expired:     ErrExpiredToken,
		notYetValid: ErrTokenNotYetValid,
		invalid:     ErrInvalidToken,
	})
}

// ValidateRefreshToken checks a refresh token and returns its claims. An
// access token presented here is rejected with ErrWrongTokenType.
func (s *hmacJWTService) ValidateRefreshToken(
	ctx context.Context,
	tokenString string,
) (*Claims, error) {
	return s.parse(ctx, tokenString, tokenTypeRefresh, validationErrors{
		expired:     ErrExpiredRefreshToken,
		notYetValid: ErrInvalidRefreshToken,
		invalid:     ErrInvalidRefreshToken,
	})
}

// sign issues a token of the given type and lifetime for the user.
func (s *hmacJWTService) sign(
	ctx context.Context,
	userID uuid.UUID,
	role, tokenType string,
	lifetime time.Duration,
) (string, error) {
	now := s.timeFunc()
	claims := jwtCustomClaims{
		UserID:    userID,
		Role:      role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signingKey)
	if err != nil {
		logger.FromContext(ctx).Error("failed to sign JWT",
			"error", err,
			"user_id", userID,
			"token_type", tokenType)
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// validationErrors is the sentinel set for one token type; parse maps the
// jwt library's failures onto it so access and refresh validation report
// their own errors.
type validationErrors struct {
	expired     error
	notYetValid error
	invalid     error
}

// parse verifies the signature and time claims with the configured leeway,
// then checks the token carries the wanted type.
func (s *hmacJWTService) parse(
	ctx context.Context,
	tokenString, wantType string,
	errs validationErrors,
) (*Claims, error) {
	log := logger.FromContext(ctx)
	now := s.timeFunc()

	token, err := jwt.ParseWithClaims(
		tokenString,
		&jwtCustomClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return s.signingKey, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithLeeway(s.clockSkew),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("token validation failed: expired", "token_type", wantType)
			return nil, errs.expired
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("token validation failed: not yet valid", "token_type", wantType)
			return nil, errs.notYetValid
		default:
			log.Debug("token validation failed",
				"error", err,
				"token_type", wantType)
			return nil, errs.invalid
		}
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		log.Debug("token validation failed: invalid claims", "token_type", wantType)
		return nil, errs.invalid
	}
	if claims.TokenType != wantType {
		log.Debug("token validation failed: wrong token type",
			"expected", wantType,
			"actual", claims.TokenType)
		return nil, ErrWrongTokenType
	}

	log.Debug("token validated",
		"user_id", claims.UserID,
		"token_type", wantType,
		"token_id", claims.ID)

	return &Claims{
		UserID:    claims.UserID,
		Role:      claims.Role,
		TokenType: claims.TokenType,
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
		ID:        claims.ID,
	}, nil
}
