package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// Name is the display name of the user.
	Name string

	PhoneNumber string

	// PasswordHash is the bcrypt hash of the user's password. Never sent to clients.
	PasswordHash string

	CreatedAt time.Time
}

// NewUser creates a user with a fresh ID and creation time.
func NewUser(email, name, phoneNumber, passwordHash string) *User {
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         name,
		PhoneNumber:  phoneNumber,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
}
