package domain

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateEmail is returned by UserRepository.Create when the email
// unique constraint rejects the insert.
var ErrDuplicateEmail = errors.New("email already exists")

// UserRow represents a user record returned from the database.
// It includes the password hash so the Logic layer can verify credentials.
type UserRow struct {
	ID           int64
	Email        string
	FirstName    string
	LastName     string
	PasswordHash string
	Admin        bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Principal converts the record into the per-request caller identity.
func (u UserRow) Principal() Principal {
	return Principal{
		ID:        u.ID,
		Username:  u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Admin:     u.Admin,
	}
}

// UserRepository defines the data-access contract for user operations.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only, never on SQL or drivers directly.
type UserRepository interface {
	// GetByID returns the user with the given id.
	// Returns (nil, nil) when no user is found.
	GetByID(ctx context.Context, id int64) (*UserRow, error)

	// GetByEmail returns the user matching the given email.
	// Returns (nil, nil) when no user is found.
	GetByEmail(ctx context.Context, email string) (*UserRow, error)

	// ExistsByEmail returns true when a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// Create inserts a new user and returns the generated id.
	// Returns ErrDuplicateEmail when the email is already taken.
	Create(ctx context.Context, user UserRow) (int64, error)

	// Delete removes the user and its roster memberships.
	Delete(ctx context.Context, id int64) error
}
