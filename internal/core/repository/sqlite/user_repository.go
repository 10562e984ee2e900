package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

// UserRepository implements domain.UserRepository on SQLite.
type UserRepository struct {
	db *sql.DB
}

// GetByID returns the user with the given id, or (nil, nil).
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByEmail returns the user with the given email, or (nil, nil).
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *UserRepository) getOne(ctx context.Context, where sq.Eq) (*domain.UserRow, error) {
	query, args, err := qb.Select("id", "email", "first_name", "last_name", "password", "admin", "created_at", "updated_at").
		From("users").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var (
		row                  domain.UserRow
		createdAt, updatedAt int64
	)
	err = r.db.QueryRowContext(ctx, query, args...).Scan(
		&row.ID, &row.Email, &row.FirstName, &row.LastName,
		&row.PasswordHash, &row.Admin, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	row.CreatedAt = fromMillis(createdAt)
	row.UpdatedAt = fromMillis(updatedAt)

	return &row, nil
}

// ExistsByEmail reports whether the email is taken.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	return exists, err
}

// Create inserts a user and returns its id.
func (r *UserRepository) Create(ctx context.Context, user domain.UserRow) (int64, error) {
	now := toMillis(time.Now())
	query, args, err := qb.Insert("users").
		Columns("email", "first_name", "last_name", "password", "admin", "created_at", "updated_at").
		Values(user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Admin, now, now).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build user insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isConstraintUnique(err) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, err
	}
	return res.LastInsertId()
}

// Delete removes the user, bumping the roster version of every session the
// user was part of.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	bump := `
		UPDATE sessions SET roster_version = roster_version + 1, updated_at = ?
		WHERE id IN (SELECT session_id FROM participate WHERE user_id = ?)
	`
	if _, err := tx.ExecContext(ctx, bump, toMillis(time.Now()), id); err != nil {
		return fmt.Errorf("bump rosters: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return tx.Commit()
}
