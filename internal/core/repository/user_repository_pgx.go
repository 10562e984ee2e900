package repository

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "password", "admin", "created_at", "updated_at",
}

// PgxUserRepository implements domain.UserRepository using pgxpool.
type PgxUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PgxUserRepository.
func NewUserRepository(pool *pgxpool.Pool) *PgxUserRepository {
	return &PgxUserRepository{pool: pool}
}

// GetByID returns the user with the given id.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByID(ctx context.Context, id int64) (*domain.UserRow, error) {
	return r.getOne(ctx, sq.Eq{"id": id})
}

// GetByEmail returns the user matching the given email.
// Returns (nil, nil) when no user is found.
func (r *PgxUserRepository) GetByEmail(ctx context.Context, email string) (*domain.UserRow, error) {
	return r.getOne(ctx, sq.Eq{"email": email})
}

func (r *PgxUserRepository) getOne(ctx context.Context, where sq.Eq) (*domain.UserRow, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build user query: %w", err)
	}

	var row domain.UserRow
	err = r.pool.QueryRow(ctx, query, args...).Scan(
		&row.ID, &row.Email, &row.FirstName, &row.LastName,
		&row.PasswordHash, &row.Admin, &row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	return &row, nil
}

// ExistsByEmail returns true when a user with the given email exists.
func (r *PgxUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, email).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// Create inserts a new user and returns the generated user ID.
func (r *PgxUserRepository) Create(ctx context.Context, user domain.UserRow) (int64, error) {
	query, args, err := psql.Insert("users").
		Columns("email", "first_name", "last_name", "password", "admin").
		Values(user.Email, user.FirstName, user.LastName, user.PasswordHash, user.Admin).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build user insert: %w", err)
	}

	var userID int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&userID); err != nil {
		if isUniqueViolation(err) {
			return 0, domain.ErrDuplicateEmail
		}
		return 0, err
	}

	return userID, nil
}

// Delete removes the user. Roster rows go with it through ON DELETE
// CASCADE; the affected sessions get their roster version bumped so that
// in-flight roster writes based on the old roster fail their version check.
func (r *PgxUserRepository) Delete(ctx context.Context, id int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		bump := `
			UPDATE sessions SET roster_version = roster_version + 1, updated_at = now()
			WHERE id IN (SELECT session_id FROM participate WHERE user_id = $1)
		`
		if _, err := tx.Exec(ctx, bump, id); err != nil {
			return fmt.Errorf("bump rosters: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, id); err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		return nil
	})
}
