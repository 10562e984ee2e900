package domain

import (
	"context"
	"time"
)

// TeacherRow represents a teacher record.
type TeacherRow struct {
	ID        int64
	FirstName string
	LastName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TeacherRepository defines the data-access contract for teachers.
type TeacherRepository interface {
	// List returns every teacher ordered by id.
	List(ctx context.Context) ([]TeacherRow, error)

	// GetByID returns the teacher with the given id.
	// Returns (nil, nil) when no teacher is found.
	GetByID(ctx context.Context, id int64) (*TeacherRow, error)
}
