package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	password := "correct-horse-battery-staple"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// Verify the hash is in PHC format
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash should start with $argon2id$, got %q", hash)
	}

	// Correct password should verify
	ok, err := VerifyPassword(password, hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if !ok {
		t.Error("VerifyPassword() should return true for correct password")
	}
}

func TestHashPassword_WrongPassword(t *testing.T) {
	hash, err := HashPassword("correct-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	ok, err := VerifyPassword("wrong-password", hash)
	if err != nil {
		t.Fatalf("VerifyPassword() error = %v", err)
	}
	if ok {
		t.Error("VerifyPassword() should return false for wrong password")
	}
}

func TestHashPassword_UniqueSalts(t *testing.T) {
	password := "same-password"

	hash1, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash1 == hash2 {
		t.Error("two hashes of the same password should have different salts")
	}
}

func TestVerifyPassword_InvalidFormat(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"not PHC", "plaintext"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=1$salt$hash"},
		{"too few parts", "$argon2id$v=19$m=65536,t=3,p=1"},
		{"bad salt", "$argon2id$v=19$m=65536,t=3,p=1$!!!$aGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := VerifyPassword("password", tt.hash)
			if !errors.Is(err, ErrInvalidHash) {
				t.Errorf("VerifyPassword() error = %v, want ErrInvalidHash", err)
			}
		})
	}
}

func TestAuthenticator(t *testing.T) {
	hash, err := HashPassword("s3cret")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	a, err := NewAuthenticator([]User{{Username: "alice", PasswordHash: hash, Role: RoleAdmin}}, "jwt-secret", time.Minute)
	if err != nil {
		t.Fatalf("NewAuthenticator() error = %v", err)
	}

	if _, err := a.Login("alice", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(wrong password) error = %v", err)
	}
	if _, err := a.Login("bob", "s3cret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login(unknown user) error = %v", err)
	}

	token, err := a.Login("alice", "s3cret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	claims, err := a.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Subject != "alice" || claims.Role != RoleAdmin {
		t.Errorf("claims = %s/%s, want alice/admin", claims.Subject, claims.Role)
	}
}

func TestNewAuthenticator_Invalid(t *testing.T) {
	if _, err := NewAuthenticator([]User{{Username: "a", Role: "root"}}, "s", time.Minute); err == nil {
		t.Error("unknown role should be rejected")
	}
	dup := []User{{Username: "a", Role: RoleViewer}, {Username: "a", Role: RoleAdmin}}
	if _, err := NewAuthenticator(dup, "s", time.Minute); err == nil {
		t.Error("duplicate user should be rejected")
	}
}
