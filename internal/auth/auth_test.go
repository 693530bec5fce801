package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

const testSecret = "test-secret-that-is-at-least-32-bytes"

func TestPasswordAuthenticator(t *testing.T) {
	a := NewPasswordAuthenticator(memory.New()).WithCost(bcrypt.MinCost)
	ctx := context.Background()

	user, err := a.Register(ctx, "  Alice@Example.com ", "Alice", "+15550100", "correct horse")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("Expected normalized email, got %q", user.Email)
	}
	if user.PasswordHash == "correct horse" || user.PasswordHash == "" {
		t.Error("Expected password to be hashed")
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"duplicate email", "ALICE@example.com", "another password", ErrEmailExists},
		{"weak password", "bob@example.com", "short", ErrWeakPassword},
		{"bad email", "not-an-email", "long enough", ErrInvalidEmail},
		{"display name form", "Bob <bob@example.com>", "long enough", ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Register(ctx, tt.email, "x", "", tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	t.Run("authenticate", func(t *testing.T) {
		got, err := a.Authenticate(ctx, "alice@EXAMPLE.com", "correct horse")
		if err != nil {
			t.Fatalf("Authenticate failed: %v", err)
		}
		if got.ID != user.ID {
			t.Errorf("Expected user %s, got %s", user.ID, got.ID)
		}

		if _, err := a.Authenticate(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
		if _, err := a.Authenticate(ctx, "nobody@example.com", "whatever"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials for unknown user, got %v", err)
		}
	})
}

func TestJWTManager(t *testing.T) {
	m := NewJWTManager(testSecret, time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := m.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "alice@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager(strings.Repeat("x", 32), time.Hour)
		if _, err := other.Validate(token); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTManager(testSecret, -time.Minute)
		tok, err := expired.Generate(user)
		if err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		if _, err := m.Validate(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		})
		s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
		if err != nil {
			t.Fatalf("SignedString failed: %v", err)
		}
		if _, err := m.Validate(s); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Validate("not.a.token"); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken, got %v", err)
		}
	})
}
