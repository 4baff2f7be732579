package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"ongelEstate/internal/database"
)

// AuthService issues and validates access tokens and checks password hashes.
type AuthService struct {
	secret         []byte
	accessTokenTTL time.Duration
}

// TokenClaims carries the business fields middleware reads off the token.
type TokenClaims struct {
	Email string        `json:"email"`
	Role  database.Role `json:"role"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim back into the user id.
func (c *TokenClaims) UserID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse subject claim: %w", err)
	}
	return id, nil
}

// NewAuthService constructs the service from the shared signing secret.
func NewAuthService(secret string, accessTTL time.Duration) (*AuthService, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 {
		return nil, errors.New("access token ttl must be positive")
	}
	return &AuthService{
		secret:         []byte(secret),
		accessTokenTTL: accessTTL,
	}, nil
}

// GenerateAccessToken signs a token with sub/email/role claims.
func (s *AuthService) GenerateAccessToken(user database.User) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Email: user.Email,
		Role:  user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and verifies a token string.
func (s *AuthService) ValidateToken(tokenString string) (*TokenClaims, error) {
	if tokenString == "" {
		return nil, errors.New("token string is empty")
	}

	token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method: %s", token.Method.Alg())
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// AccessTokenTTL exposes the configured token lifetime.
func (s *AuthService) AccessTokenTTL() time.Duration {
	return s.accessTokenTTL
}
