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

var sessionColumns = []string{
	"id", "name", "description", "date", "teacher_id", "roster_version", "created_at", "updated_at",
}

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

func scanSession(row pgx.Row) (domain.SessionRow, error) {
	var s domain.SessionRow
	err := row.Scan(&s.ID, &s.Name, &s.Description, &s.Date, &s.TeacherID, &s.RosterVersion, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// List returns every session ordered by id, rosters included.
func (r *PgxSessionRepository) List(ctx context.Context) ([]domain.SessionRow, error) {
	query, args, err := psql.Select(sessionColumns...).From("sessions").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.SessionRow, error) {
		return scanSession(row)
	})
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return sessions, nil
	}

	ids := make([]int64, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	rosters, err := r.rosters(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].Users = rosters[sessions[i].ID]
	}

	return sessions, nil
}

// GetByID returns the session with its roster.
// Returns (nil, nil) when no session is found.
func (r *PgxSessionRepository) GetByID(ctx context.Context, id int64) (*domain.SessionRow, error) {
	query, args, err := psql.Select(sessionColumns...).From("sessions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	session, err := scanSession(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	rosters, err := r.rosters(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	session.Users = rosters[id]

	return &session, nil
}

// rosters loads participant ids for the given sessions, keyed by session id.
func (r *PgxSessionRepository) rosters(ctx context.Context, sessionIDs []int64) (map[int64][]int64, error) {
	query, args, err := psql.Select("session_id", "user_id").
		From("participate").
		Where(sq.Eq{"session_id": sessionIDs}).
		OrderBy("session_id", "user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roster query: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rosters := make(map[int64][]int64, len(sessionIDs))
	for rows.Next() {
		var sessionID, userID int64
		if err := rows.Scan(&sessionID, &userID); err != nil {
			return nil, err
		}
		rosters[sessionID] = append(rosters[sessionID], userID)
	}

	return rosters, rows.Err()
}

// Create inserts a session and returns the generated id.
func (r *PgxSessionRepository) Create(ctx context.Context, session domain.SessionRow) (int64, error) {
	query, args, err := psql.Insert("sessions").
		Columns("name", "description", "date", "teacher_id").
		Values(session.Name, session.Description, session.Date, session.TeacherID).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build session insert: %w", err)
	}

	var id int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return 0, err
	}

	return id, nil
}

// Update overwrites the session fields, leaving the roster untouched.
func (r *PgxSessionRepository) Update(ctx context.Context, session domain.SessionRow) error {
	query, args, err := psql.Update("sessions").
		Set("name", session.Name).
		Set("description", session.Description).
		Set("date", session.Date).
		Set("teacher_id", session.TeacherID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session update: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return err
}

// Delete removes the session; its roster rows cascade.
func (r *PgxSessionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// SaveRoster replaces the roster when roster_version still equals
// expectedVersion. Returns domain.ErrStaleRoster otherwise, and
// domain.ErrUnknownParticipant when a user id has no user row.
func (r *PgxSessionRepository) SaveRoster(ctx context.Context, sessionID, expectedVersion int64, userIDs []int64) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
			UPDATE sessions SET roster_version = roster_version + 1, updated_at = now()
			WHERE id = $1 AND roster_version = $2
		`, sessionID, expectedVersion)
		if err != nil {
			return fmt.Errorf("bump roster version: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrStaleRoster
		}

		if _, err := tx.Exec(ctx, `DELETE FROM participate WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("clear roster: %w", err)
		}
		if len(userIDs) == 0 {
			return nil
		}

		insert := psql.Insert("participate").Columns("session_id", "user_id")
		for _, userID := range userIDs {
			insert = insert.Values(sessionID, userID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build roster insert: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			if isForeignKeyViolation(err) {
				return domain.ErrUnknownParticipant
			}
			return fmt.Errorf("insert roster: %w", err)
		}
		return nil
	})
}
