package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// TeacherRepository implements domain.TeacherRepository on SQLite.
type TeacherRepository struct {
	db *sql.DB
}

type teacherScanner interface {
	Scan(dest ...any) error
}

func scanTeacher(row teacherScanner) (domain.TeacherRow, error) {
	var (
		t                    domain.TeacherRow
		createdAt, updatedAt int64
	)
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &createdAt, &updatedAt); err != nil {
		return domain.TeacherRow{}, err
	}
	t.CreatedAt = fromMillis(createdAt)
	t.UpdatedAt = fromMillis(updatedAt)
	return t, nil
}

// List returns every teacher ordered by id.
func (r *TeacherRepository) List(ctx context.Context) ([]domain.TeacherRow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, first_name, last_name, created_at, updated_at FROM teachers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teachers []domain.TeacherRow
	for rows.Next() {
		t, err := scanTeacher(rows)
		if err != nil {
			return nil, err
		}
		teachers = append(teachers, t)
	}
	return teachers, rows.Err()
}

// GetByID returns the teacher with the given id, or (nil, nil).
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*domain.TeacherRow, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, first_name, last_name, created_at, updated_at FROM teachers WHERE id = ?`, id)
	t, err := scanTeacher(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}
