package auth

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// ExpiryBuffer is subtracted from the real expiry so clients renew or log out
// before the server starts rejecting the token.
const ExpiryBuffer = 5 * time.Minute

// InspectedClaims is the unverified payload a client may read off its own token.
type InspectedClaims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// DecodeUnverified extracts the payload without checking the signature.
// Only for client-side expiry estimation; never trust these claims server-side.
func DecodeUnverified(tokenString string) (*InspectedClaims, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return nil, errors.New("malformed token")
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, errors.New("malformed token payload")
	}

	var claims InspectedClaims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil, errors.New("malformed token payload")
	}
	return &claims, nil
}

// IsExpired reports whether the token is expired or within ExpiryBuffer of it.
// Undecodable tokens and tokens without an exp claim count as expired.
func IsExpired(tokenString string, now time.Time) bool {
	claims, err := DecodeUnverified(tokenString)
	if err != nil || claims.ExpiresAt == 0 {
		return true
	}
	expiresAt := time.Unix(claims.ExpiresAt, 0)
	return !now.Before(expiresAt.Add(-ExpiryBuffer))
}

// TimeUntilExpiry returns the remaining lifetime, zero when already expired.
func TimeUntilExpiry(tokenString string, now time.Time) (time.Duration, error) {
	claims, err := DecodeUnverified(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.ExpiresAt == 0 {
		return 0, errors.New("token has no expiry claim")
	}
	remaining := time.Unix(claims.ExpiresAt, 0).Sub(now)
	if remaining < 0 {
		return 0, nil
	}
	return remaining, nil
}
