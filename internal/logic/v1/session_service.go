package v1

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// maxRosterAttempts bounds the read-check-write loop of a roster change.
const maxRosterAttempts = 3

// SessionService manages yoga sessions and their rosters.
type SessionService struct {
	sessions domain.SessionRepository
	users    domain.UserRepository
	teachers domain.TeacherRepository
}

// NewSessionService creates a new SessionService with the given repository dependencies.
func NewSessionService(sessions domain.SessionRepository, users domain.UserRepository, teachers domain.TeacherRepository) *SessionService {
	return &SessionService{
		sessions: sessions,
		users:    users,
		teachers: teachers,
	}
}

// List returns every session.
func (s *SessionService) List(ctx context.Context) ([]domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.list", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	rows, err := s.sessions.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list sessions: %w", err)
	}

	out := make([]domain.Session, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToSession())
	}
	span.SetAttributes(attribute.Int("session.count", len(out)))
	return out, nil
}

// Get returns one session.
func (s *SessionService) Get(ctx context.Context, id int64) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", id),
	))
	defer span.End()

	row, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get session %d: %w", id, ErrSessionNotFound)
	}

	session := row.ToSession()
	return &session, nil
}

// Create stores a new session with an empty roster.
func (s *SessionService) Create(ctx context.Context, req domain.SessionRequest) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.create", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("session.name", req.Name),
	))
	defer span.End()

	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("create session: %w", err)
	}

	id, err := s.sessions.Create(ctx, domain.SessionRow{
		Name:        req.Name,
		Description: req.Description,
		Date:        req.Date,
		TeacherID:   req.TeacherID,
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("insert session: %w", err)
	}
	span.SetAttributes(attribute.Int64("session.id", id))

	return s.reload(ctx, id)
}

// Update overwrites the editable fields of an existing session.
// The roster is preserved.
func (s *SessionService) Update(ctx context.Context, id int64, req domain.SessionRequest) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.update", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", id),
	))
	defer span.End()

	existing, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query session %d: %w", id, err)
	}
	if existing == nil {
		return nil, fmt.Errorf("update session %d: %w", id, ErrSessionNotFound)
	}

	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update session %d: %w", id, err)
	}

	existing.Name = req.Name
	existing.Description = req.Description
	existing.Date = req.Date
	existing.TeacherID = req.TeacherID
	if err := s.sessions.Update(ctx, *existing); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("update session %d: %w", id, err)
	}

	return s.reload(ctx, id)
}

// Delete removes a session and its roster.
func (s *SessionService) Delete(ctx context.Context, id int64) error {
	ctx, span := middleware.StartSpan(ctx, "session.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", id),
	))
	defer span.End()

	row, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("query session %d: %w", id, err)
	}
	if row == nil {
		return fmt.Errorf("delete session %d: %w", id, ErrSessionNotFound)
	}

	if err := s.sessions.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete session %d: %w", id, err)
	}
	return nil
}

// Participate adds userID to the roster of sessionID.
//
// The session is checked before the user, so a missing session wins over a
// missing user. A user already on the roster yields ErrAlreadyParticipating.
func (s *SessionService) Participate(ctx context.Context, sessionID, userID int64) error {
	ctx, span := middleware.StartSpan(ctx, "session.participate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", sessionID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	err := s.changeRoster(ctx, sessionID, func(session *domain.SessionRow) ([]int64, error) {
		user, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("query user %d: %w", userID, err)
		}
		if user == nil {
			return nil, ErrUserNotFound
		}
		if session.HasParticipant(userID) {
			return nil, ErrAlreadyParticipating
		}
		return append(slices.Clone(session.Users), userID), nil
	})
	recordRosterOutcome(span, "participate", err)
	if err != nil {
		return fmt.Errorf("participate user %d in session %d: %w", userID, sessionID, err)
	}
	return nil
}

// NoLongerParticipate removes userID from the roster of sessionID.
// A user not on the roster yields ErrNotParticipating.
func (s *SessionService) NoLongerParticipate(ctx context.Context, sessionID, userID int64) error {
	ctx, span := middleware.StartSpan(ctx, "session.no_longer_participate", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", sessionID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	err := s.changeRoster(ctx, sessionID, func(session *domain.SessionRow) ([]int64, error) {
		if !session.HasParticipant(userID) {
			return nil, ErrNotParticipating
		}
		return slices.DeleteFunc(slices.Clone(session.Users), func(id int64) bool {
			return id == userID
		}), nil
	})
	recordRosterOutcome(span, "leave", err)
	if err != nil {
		return fmt.Errorf("remove user %d from session %d: %w", userID, sessionID, err)
	}
	return nil
}

// changeRoster loads the session, lets apply compute the new roster and
// writes it back against the version it read. On a stale write the whole
// cycle repeats so apply always judges the latest roster.
func (s *SessionService) changeRoster(ctx context.Context, sessionID int64, apply func(*domain.SessionRow) ([]int64, error)) error {
	for attempt := 1; attempt <= maxRosterAttempts; attempt++ {
		session, err := s.sessions.GetByID(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("query session %d: %w", sessionID, err)
		}
		if session == nil {
			return ErrSessionNotFound
		}

		roster, err := apply(session)
		if err != nil {
			return err
		}

		err = s.sessions.SaveRoster(ctx, sessionID, session.RosterVersion, roster)
		if err == nil {
			return nil
		}
		if errors.Is(err, domain.ErrUnknownParticipant) {
			// A roster member was deleted after it was checked.
			return ErrUserNotFound
		}
		if !errors.Is(err, domain.ErrStaleRoster) {
			return fmt.Errorf("save roster of session %d: %w", sessionID, err)
		}
		trace.SpanFromContext(ctx).AddEvent("roster.stale", trace.WithAttributes(
			attribute.Int("attempt", attempt),
		))
	}
	return ErrRosterContention
}

func (s *SessionService) checkTeacher(ctx context.Context, teacherID *int64) error {
	if teacherID == nil {
		return ErrInvalidTeacher
	}
	teacher, err := s.teachers.GetByID(ctx, *teacherID)
	if err != nil {
		return fmt.Errorf("query teacher %d: %w", *teacherID, err)
	}
	if teacher == nil {
		return fmt.Errorf("teacher %d: %w", *teacherID, ErrInvalidTeacher)
	}
	return nil
}

func (s *SessionService) reload(ctx context.Context, id int64) (*domain.Session, error) {
	row, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("query session %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("reload session %d: %w", id, ErrSessionNotFound)
	}
	session := row.ToSession()
	return &session, nil
}

func recordRosterOutcome(span trace.Span, operation string, err error) {
	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrUserNotFound):
		outcome = "not_found"
	case errors.Is(err, ErrAlreadyParticipating), errors.Is(err, ErrNotParticipating):
		outcome = "conflict"
	case errors.Is(err, ErrRosterContention):
		outcome = "contention"
	default:
		outcome = "error"
		span.RecordError(err)
	}
	span.SetAttributes(attribute.String("roster.outcome", outcome))
	middleware.RecordRosterChange(operation, outcome)
}
