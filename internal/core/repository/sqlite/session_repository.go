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

var sessionColumns = []string{
	"id", "name", "description", "date", "teacher_id", "roster_version", "created_at", "updated_at",
}

// SessionRepository implements domain.SessionRepository on SQLite.
type SessionRepository struct {
	db *sql.DB
}

type sessionScanner interface {
	Scan(dest ...any) error
}

func scanSession(row sessionScanner) (domain.SessionRow, error) {
	var (
		s                          domain.SessionRow
		date, createdAt, updatedAt int64
		teacherID                  sql.NullInt64
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &date, &teacherID, &s.RosterVersion, &createdAt, &updatedAt); err != nil {
		return domain.SessionRow{}, err
	}
	s.Date = fromMillis(date)
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	if teacherID.Valid {
		id := teacherID.Int64
		s.TeacherID = &id
	}
	return s, nil
}

func nullableID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

// List returns every session ordered by id, rosters included.
func (r *SessionRepository) List(ctx context.Context) ([]domain.SessionRow, error) {
	query, args, err := qb.Select(sessionColumns...).From("sessions").OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	sessions, err := r.query(ctx, query, args...)
	if err != nil || len(sessions) == 0 {
		return sessions, err
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

// query scans every row before returning so the single connection is free
// for the follow-up roster query.
func (r *SessionRepository) query(ctx context.Context, query string, args ...any) ([]domain.SessionRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.SessionRow
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// GetByID returns the session with its roster, or (nil, nil).
func (r *SessionRepository) GetByID(ctx context.Context, id int64) (*domain.SessionRow, error) {
	query, args, err := qb.Select(sessionColumns...).From("sessions").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build session query: %w", err)
	}

	session, err := scanSession(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
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

func (r *SessionRepository) rosters(ctx context.Context, sessionIDs []int64) (map[int64][]int64, error) {
	query, args, err := qb.Select("session_id", "user_id").
		From("participate").
		Where(sq.Eq{"session_id": sessionIDs}).
		OrderBy("session_id", "user_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build roster query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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

// Create inserts a session and returns its id.
func (r *SessionRepository) Create(ctx context.Context, session domain.SessionRow) (int64, error) {
	now := toMillis(time.Now())
	query, args, err := qb.Insert("sessions").
		Columns("name", "description", "date", "teacher_id", "created_at", "updated_at").
		Values(session.Name, session.Description, toMillis(session.Date), nullableID(session.TeacherID), now, now).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build session insert: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update overwrites the session fields, leaving the roster untouched.
func (r *SessionRepository) Update(ctx context.Context, session domain.SessionRow) error {
	query, args, err := qb.Update("sessions").
		Set("name", session.Name).
		Set("description", session.Description).
		Set("date", toMillis(session.Date)).
		Set("teacher_id", nullableID(session.TeacherID)).
		Set("updated_at", toMillis(time.Now())).
		Where(sq.Eq{"id": session.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build session update: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	return err
}

// Delete removes the session; its roster rows cascade.
func (r *SessionRepository) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	return err
}

// SaveRoster replaces the roster when roster_version still equals
// expectedVersion. Returns domain.ErrStaleRoster otherwise, and
// domain.ErrUnknownParticipant when a user id has no user row.
func (r *SessionRepository) SaveRoster(ctx context.Context, sessionID, expectedVersion int64, userIDs []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		UPDATE sessions SET roster_version = roster_version + 1, updated_at = ?
		WHERE id = ? AND roster_version = ?
	`, toMillis(time.Now()), sessionID, expectedVersion)
	if err != nil {
		return fmt.Errorf("bump roster version: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("bump roster version: %w", err)
	}
	if affected == 0 {
		return domain.ErrStaleRoster
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM participate WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear roster: %w", err)
	}
	if len(userIDs) > 0 {
		insert := qb.Insert("participate").Columns("session_id", "user_id")
		for _, userID := range userIDs {
			insert = insert.Values(sessionID, userID)
		}
		query, args, err := insert.ToSql()
		if err != nil {
			return fmt.Errorf("build roster insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isConstraintForeignKey(err) {
				return domain.ErrUnknownParticipant
			}
			return fmt.Errorf("insert roster: %w", err)
		}
	}

	return tx.Commit()
}
