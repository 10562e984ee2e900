package v1

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/duynhne/yoga-service/internal/core/domain"
)

func newTestAuth(users *fakeUsers) *AuthService {
	return NewAuthService(users, NewTokenService(testSecret, time.Hour))
}

func TestRegisterThenLogin(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	auth := newTestAuth(users)
	ctx := context.Background()
	req := domain.RegisterRequest{Email: "a@b.com", FirstName: "Alice", LastName: "Martin", Password: "secret1"}

	id, err := auth.Register(ctx, req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := auth.Register(ctx, req); !errors.Is(err, ErrUserExists) {
		t.Fatalf("second Register error = %v, want %v", err, ErrUserExists)
	}

	stored, _ := users.GetByID(ctx, id)
	if stored.PasswordHash == req.Password || stored.Admin {
		t.Fatalf("stored user = %+v, want hashed non-admin", stored)
	}

	resp, err := auth.Login(ctx, domain.LoginRequest{Email: "a@b.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Type != "Bearer" || resp.ID != id || resp.Username != "a@b.com" || resp.FirstName != "Alice" {
		t.Fatalf("login response = %+v", resp)
	}
	if !auth.tokens.Validate(ctx, resp.Token) {
		t.Fatal("login token rejected")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	users := newFakeUsers()
	auth := newTestAuth(users)
	ctx := context.Background()
	if _, err := auth.Register(ctx, domain.RegisterRequest{Email: "a@b.com", FirstName: "Alice", LastName: "Martin", Password: "secret1"}); err != nil {
		t.Fatalf("Register: %v", err)
	}

	tests := []struct {
		name string
		req  domain.LoginRequest
	}{
		{name: "wrong password", req: domain.LoginRequest{Email: "a@b.com", Password: "nope"}},
		{name: "unknown email", req: domain.LoginRequest{Email: "x@b.com", Password: "secret1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := auth.Login(ctx, tt.req); !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("Login error = %v, want %v", err, ErrInvalidCredentials)
			}
		})
	}
}

func TestLoadPrincipal(t *testing.T) {
	t.Parallel()

	users := newFakeUsers(domain.UserRow{ID: 3, Email: "yoga@studio.com", FirstName: "Ada", LastName: "Lovelace", Admin: true})
	auth := newTestAuth(users)

	principal, err := auth.LoadPrincipal(context.Background(), "yoga@studio.com")
	if err != nil {
		t.Fatalf("LoadPrincipal: %v", err)
	}
	want := domain.Principal{ID: 3, Username: "yoga@studio.com", FirstName: "Ada", LastName: "Lovelace", Admin: true}
	if *principal != want {
		t.Fatalf("principal = %+v, want %+v", *principal, want)
	}

	if _, err := auth.LoadPrincipal(context.Background(), "ghost@studio.com"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("LoadPrincipal error = %v, want %v", err, ErrUserNotFound)
	}
}

func TestLoadPrincipalPropagatesStoreErrors(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	users := newFakeUsers()
	users.err = boom

	if _, err := newTestAuth(users).LoadPrincipal(context.Background(), "a@b.com"); !errors.Is(err, boom) {
		t.Fatalf("LoadPrincipal error = %v, want %v", err, boom)
	}
}
