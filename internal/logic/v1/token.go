package v1

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/duynhne/yoga-service/internal/core/domain"
	"github.com/duynhne/yoga-service/internal/logger"
	"github.com/duynhne/yoga-service/middleware"
)

// InvalidReason classifies why a token was rejected. It is logged and
// counted, never returned to callers.
type InvalidReason string

const (
	ReasonMalformed    InvalidReason = "malformed"
	ReasonExpired      InvalidReason = "expired"
	ReasonBadSignature InvalidReason = "bad_signature"
	ReasonUnsupported  InvalidReason = "unsupported"
	ReasonEmptyClaims  InvalidReason = "empty_claims"
)

var errUnsupportedMethod = errors.New("unsupported signing method")

// TokenService issues and validates HS512 bearer tokens.
// The secret and lifetime are fixed at construction.
type TokenService struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// TokenOption customizes a TokenService.
type TokenOption func(*TokenService)

// WithClock replaces time.Now for issuing and validating.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a TokenService signing with secret.
func NewTokenService(secret string, lifetime time.Duration, opts ...TokenOption) *TokenService {
	s := &TokenService{
		secret:   []byte(secret),
		lifetime: lifetime,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs a token whose subject is the principal's username.
// Expiry is truncated to whole seconds, so the token lives up to one
// second less than the configured lifetime.
func (s *TokenService) Issue(principal domain.Principal) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   principal.Username,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.lifetime)),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate reports whether token carries a valid signature, an expiry in the
// future and a subject. Rejections are logged with their reason.
func (s *TokenService) Validate(ctx context.Context, token string) bool {
	reason, err := s.check(token)
	if reason == "" {
		return true
	}

	logger.FromContext(ctx).Warn().
		Err(err).
		Str("reason", string(reason)).
		Msg("Invalid bearer token")
	middleware.RecordTokenRejection(string(reason))
	return false
}

// ExtractSubject returns the subject of a token signed by this service
// without checking its expiry. It returns "" when the token cannot be parsed.
func (s *TokenService) ExtractSubject(token string) string {
	var claims jwt.RegisteredClaims
	if _, err := jwt.ParseWithClaims(token, &claims, s.keyFunc, jwt.WithoutClaimsValidation()); err != nil {
		return ""
	}
	return claims.Subject
}

// check returns the empty reason for a valid token.
func (s *TokenService) check(token string) (InvalidReason, error) {
	if strings.Trim(token, ". ") == "" {
		return ReasonEmptyClaims, errors.New("token is empty")
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, s.keyFunc,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return classify(err), err
	}
	if claims.Subject == "" {
		return ReasonEmptyClaims, errors.New("token has no subject")
	}
	return "", nil
}

func (s *TokenService) keyFunc(t *jwt.Token) (any, error) {
	if t.Method != jwt.SigningMethodHS512 {
		return nil, fmt.Errorf("%w: %v", errUnsupportedMethod, t.Header["alg"])
	}
	return s.secret, nil
}

func classify(err error) InvalidReason {
	switch {
	case errors.Is(err, errUnsupportedMethod), errors.Is(err, jwt.ErrTokenUnverifiable):
		return ReasonUnsupported
	case errors.Is(err, jwt.ErrTokenMalformed):
		return ReasonMalformed
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ReasonBadSignature
	case errors.Is(err, jwt.ErrTokenExpired):
		return ReasonExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return ReasonEmptyClaims
	default:
		return ReasonMalformed
	}
}
