package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// defaultTokenTTL applies when security.jwt.access_token_ttl is unset.
const defaultTokenTTL = 15 * time.Minute

// Claims are the JWT claims of a lumend access token.
type Claims struct {
	jwt.RegisteredClaims
	Role Role `json:"role"`
}

// TokenTTL converts the configured TTL in minutes, substituting the default
// for non-positive values.
func TokenTTL(minutes int) time.Duration {
	if minutes <= 0 {
		return defaultTokenTTL
	}
	return time.Duration(minutes) * time.Minute
}

// GenerateAccessToken signs an HS256 access token for subject.
func GenerateAccessToken(subject string, role Role, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		Role: role,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("signing access token: %w", err)
	}
	return signed, nil
}

// ParseToken validates signature, expiry and required claims.
func ParseToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(_ *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: role %q", ErrTokenInvalid, claims.Role)
	}
	return claims, nil
}
