package auth

import (
	"context"

	"github.com/mmynk/splitledger/internal/models"
)

// Authenticator registers users and checks their credentials.
// The credential format depends on the implementation.
type Authenticator interface {
	// Register creates a new user account. Returns ErrEmailExists if the
	// email is already taken, ignoring case.
	Register(ctx context.Context, email, name, phoneNumber, credential string) (*models.User, error)

	// Authenticate verifies the user's credentials and returns the user if successful.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks if the credential meets the implementation's requirements.
	ValidateCredential(credential string) error
}
