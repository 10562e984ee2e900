package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/middleware"
)

// AuthService implements authentication business rules.
// It depends on repository interfaces (injected via constructor) and
// MUST NOT access the database or SQL directly.
type AuthService struct {
	users  domain.UserRepository
	tokens *TokenService
}

// NewAuthService creates a new AuthService with the given dependencies.
func NewAuthService(users domain.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{
		users:  users,
		tokens: tokens,
	}
}

// Login checks the credentials and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("username", req.Email),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", req.Email, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.PasswordHash), []byte(req.Password)); err != nil {
		span.SetAttributes(attribute.Bool("auth.success", false))
		span.AddEvent("authentication.failed")
		return nil, fmt.Errorf("authenticate user %q: %w", req.Email, ErrInvalidCredentials)
	}

	principal := row.Principal()
	token, err := s.tokens.Issue(principal)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("issue token for %q: %w", req.Email, err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", row.ID),
		attribute.Bool("auth.success", true),
	)
	span.AddEvent("user.authenticated")

	return &domain.AuthResponse{
		Token:     token,
		Type:      "Bearer",
		ID:        principal.ID,
		Username:  principal.Username,
		FirstName: principal.FirstName,
		LastName:  principal.LastName,
		Admin:     principal.Admin,
	}, nil
}

// Register creates a non-admin user with a bcrypt password hash.
func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (int64, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.register", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.String("email", req.Email),
	))
	defer span.End()

	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		span.SetAttributes(attribute.Bool("registration.success", false))
		return 0, fmt.Errorf("register user %q: %w", req.Email, ErrUserExists)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.Create(ctx, domain.UserRow{
		Email:        req.Email,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
		PasswordHash: string(passwordHash),
	})
	if errors.Is(err, domain.ErrDuplicateEmail) {
		// Lost a race against a concurrent registration.
		span.SetAttributes(attribute.Bool("registration.success", false))
		return 0, fmt.Errorf("register user %q: %w", req.Email, ErrUserExists)
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("insert user: %w", err)
	}

	span.SetAttributes(
		attribute.Int64("user.id", userID),
		attribute.Bool("registration.success", true),
	)
	span.AddEvent("user.registered")

	return userID, nil
}

// LoadPrincipal resolves the caller identity for a token subject.
// Returns ErrUserNotFound when no user has that username.
func (s *AuthService) LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error) {
	ctx, span := middleware.StartSpan(ctx, "auth.load_principal", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	row, err := s.users.GetByEmail(ctx, username)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query user %q: %w", username, err)
	}
	if row == nil {
		span.SetAttributes(attribute.Bool("principal.found", false))
		return nil, fmt.Errorf("load principal %q: %w", username, ErrUserNotFound)
	}

	principal := row.Principal()
	span.SetAttributes(
		attribute.Int64("user.id", principal.ID),
		attribute.Bool("principal.found", true),
	)
	return &principal, nil
}
