package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/logger"
)

const bearerPrefix = "Bearer "

// TokenValidator checks bearer tokens and reads their subject.
type TokenValidator interface {
	Validate(ctx context.Context, token string) bool
	ExtractSubject(token string) string
}

// PrincipalLoader resolves a token subject to a caller identity.
type PrincipalLoader interface {
	LoadPrincipal(ctx context.Context, username string) (*domain.Principal, error)
}

type principalKey struct{}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the authenticated caller, if any.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	if ctx == nil {
		return domain.Principal{}, false
	}
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}

// Gate authenticates requests from their bearer token.
// It never rejects a request; routes that need a caller add RequireAuth.
type Gate struct {
	tokens     TokenValidator
	principals PrincipalLoader
}

// NewGate creates a Gate.
func NewGate(tokens TokenValidator, principals PrincipalLoader) *Gate {
	return &Gate{tokens: tokens, principals: principals}
}

// Resolve returns the principal named by a valid bearer token in header.
func (g *Gate) Resolve(ctx context.Context, header string) (*domain.Principal, bool) {
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok {
		return nil, false
	}
	if !g.tokens.Validate(ctx, token) {
		return nil, false
	}

	username := g.tokens.ExtractSubject(token)
	principal, err := g.principals.LoadPrincipal(ctx, username)
	if err != nil || principal == nil {
		logger.FromContext(ctx).Error().
			Err(err).
			Str("username", username).
			Msg("Cannot set user authentication")
		return nil, false
	}
	return principal, true
}

// Middleware attaches the resolved principal to the request context and
// always continues the chain.
func (g *Gate) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if principal, ok := g.Resolve(ctx, c.GetHeader("Authorization")); ok {
			c.Request = c.Request.WithContext(WithPrincipal(ctx, *principal))
		}
		c.Next()
	}
}

// RequireAuth aborts with 401 when the gate attached no principal.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := PrincipalFromContext(c.Request.Context()); ok {
			c.Next()
			return
		}
		logger.FromContext(c.Request.Context()).Warn().
			Str("path", c.Request.URL.Path).
			Msg("Unauthorized error: Full authentication is required")
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"status":  http.StatusUnauthorized,
			"error":   "Unauthorized",
			"message": "Full authentication is required to access this resource",
			"path":    c.Request.URL.Path,
		})
	}
}
