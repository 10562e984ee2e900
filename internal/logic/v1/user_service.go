package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// UserService exposes user lookup and self-deletion.
type UserService struct {
	users domain.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(users domain.UserRepository) *UserService {
	return &UserService{users: users}
}

// Get returns the public view of a user.
func (s *UserService) Get(ctx context.Context, id int64) (*domain.User, error) {
	ctx, span := middleware.StartSpan(ctx, "user.get", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
	))
	defer span.End()

	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %d: %w", id, err)
	}
	if row == nil {
		return nil, fmt.Errorf("get user %d: %w", id, ErrUserNotFound)
	}

	user := row.ToUser()
	return &user, nil
}

// Delete removes the user if it is the caller's own account.
func (s *UserService) Delete(ctx context.Context, caller domain.Principal, id int64) error {
	ctx, span := middleware.StartSpan(ctx, "user.delete", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", id),
		attribute.Int64("caller.id", caller.ID),
	))
	defer span.End()

	row, err := s.users.GetByID(ctx, id)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("query user %d: %w", id, err)
	}
	if row == nil {
		return fmt.Errorf("delete user %d: %w", id, ErrUserNotFound)
	}
	if row.Email != caller.Username {
		span.AddEvent("delete.forbidden")
		return fmt.Errorf("delete user %d as %q: %w", id, caller.Username, ErrForbiddenDelete)
	}

	if err := s.users.Delete(ctx, id); err != nil {
		span.RecordError(err)
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	span.AddEvent("user.deleted")
	return nil
}
