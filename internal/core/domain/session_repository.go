package domain

import (
	"context"
	"errors"
	"slices"
	"time"
)

// ErrStaleRoster is returned by SessionRepository.SaveRoster when the
// session's roster version no longer matches the expected one.
var ErrStaleRoster = errors.New("roster version is stale")

// ErrUnknownParticipant is returned by SessionRepository.SaveRoster when a
// roster entry references a user that no longer exists.
var ErrUnknownParticipant = errors.New("roster references unknown user")

// SessionRow represents a yoga session with its roster.
type SessionRow struct {
	ID          int64
	Name        string
	Description string
	Date        time.Time
	TeacherID   *int64
	// Users holds the ids of participating users, without duplicates.
	Users []int64
	// RosterVersion is bumped on every roster write.
	RosterVersion int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// HasParticipant reports whether userID is in the roster.
func (s SessionRow) HasParticipant(userID int64) bool {
	return slices.Contains(s.Users, userID)
}

// SessionRepository defines the data-access contract for sessions.
type SessionRepository interface {
	// List returns every session ordered by id.
	List(ctx context.Context) ([]SessionRow, error)

	// GetByID returns the session with its roster.
	// Returns (nil, nil) when no session is found.
	GetByID(ctx context.Context, id int64) (*SessionRow, error)

	// Create inserts a session (roster ignored) and returns the generated id.
	Create(ctx context.Context, session SessionRow) (int64, error)

	// Update overwrites name, description, date and teacher of an existing
	// session. The roster is left untouched.
	Update(ctx context.Context, session SessionRow) error

	// Delete removes the session and its roster.
	Delete(ctx context.Context, id int64) error

	// SaveRoster replaces the roster if the stored roster version equals
	// expectedVersion, bumping the version in the same transaction.
	// Returns ErrStaleRoster otherwise, and ErrUnknownParticipant when a
	// user id has no user row.
	SaveRoster(ctx context.Context, sessionID, expectedVersion int64, userIDs []int64) error
}
