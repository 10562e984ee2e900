package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// PgxTeacherRepository implements domain.TeacherRepository using pgxpool.
type PgxTeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new PgxTeacherRepository.
func NewTeacherRepository(pool *pgxpool.Pool) *PgxTeacherRepository {
	return &PgxTeacherRepository{pool: pool}
}

// List returns every teacher ordered by id.
func (r *PgxTeacherRepository) List(ctx context.Context) ([]domain.TeacherRow, error) {
	query := `SELECT id, first_name, last_name, created_at, updated_at FROM teachers ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.TeacherRow, error) {
		var t domain.TeacherRow
		err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt)
		return t, err
	})
}

// GetByID returns the teacher with the given id.
// Returns (nil, nil) when no teacher is found.
func (r *PgxTeacherRepository) GetByID(ctx context.Context, id int64) (*domain.TeacherRow, error) {
	query := `SELECT id, first_name, last_name, created_at, updated_at FROM teachers WHERE id = $1`

	var t domain.TeacherRow
	err := r.pool.QueryRow(ctx, query, id).Scan(&t.ID, &t.FirstName, &t.LastName, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &t, nil
}
