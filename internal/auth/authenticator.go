package auth

import (
	"fmt"
	"time"
)

// Authenticator checks credentials against the configured accounts and
// issues access tokens.
//
// Thread Safety: read-only after NewAuthenticator; safe for concurrent use.
type Authenticator struct {
	users  map[string]User
	secret string
	ttl    time.Duration
}

// NewAuthenticator creates an authenticator for users.
//
// Returns:
//   - error: If a user has an unknown role or a duplicate name
func NewAuthenticator(users []User, secret string, ttl time.Duration) (*Authenticator, error) {
	a := &Authenticator{
		users:  make(map[string]User, len(users)),
		secret: secret,
		ttl:    ttl,
	}
	for _, u := range users {
		if !u.Role.Valid() {
			return nil, fmt.Errorf("user %q: unknown role %q", u.Username, u.Role)
		}
		if _, dup := a.users[u.Username]; dup {
			return nil, fmt.Errorf("user %q declared twice", u.Username)
		}
		a.users[u.Username] = u
	}
	return a, nil
}

// TTL returns the lifetime of issued tokens.
func (a *Authenticator) TTL() time.Duration {
	return a.ttl
}

// Login verifies the password and returns a signed access token.
// Unknown users and wrong passwords both return ErrInvalidCredentials.
func (a *Authenticator) Login(username, password string) (string, error) {
	u, ok := a.users[username]
	if !ok {
		return "", ErrInvalidCredentials
	}
	match, err := VerifyPassword(password, u.PasswordHash)
	if err != nil {
		return "", err
	}
	if !match {
		return "", ErrInvalidCredentials
	}
	return GenerateAccessToken(u.Username, u.Role, a.secret, a.ttl)
}

// Verify parses an access token issued by this authenticator.
func (a *Authenticator) Verify(token string) (*Claims, error) {
	return ParseToken(token, a.secret)
}
