package service

import (
	"encoding/base64"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// ErrMissingSigningSecret is returned when the codec is built without a secret.
var ErrMissingSigningSecret = errors.New("token signing secret is not configured")

// TokenConfig is the server-side token configuration.
type TokenConfig struct {
	Secret   string
	Issuer   string
	Audience string
	TTL      time.Duration
}

// TokenCodec issues and verifies HS256-signed JWTs carrying a principal.
type TokenCodec struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// TokenOption customises a TokenCodec.
type TokenOption func(*TokenCodec)

// WithClock replaces the wall clock used for iat/exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(c *TokenCodec) { c.now = now }
}

type tokenClaims struct {
	UserID      string   `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

func NewTokenCodec(cfg TokenConfig, opts ...TokenOption) (*TokenCodec, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrMissingSigningSecret
	}
	if cfg.Issuer == "" || cfg.Audience == "" {
		return nil, errors.New("token issuer and audience are required")
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	c := &TokenCodec{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		audience: cfg.Audience,
		ttl:      ttl,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the default token lifetime.
func (c *TokenCodec) TTL() time.Duration { return c.ttl }

// Issue signs a token for p valid for ttl (the default when ttl <= 0).
func (c *TokenCodec) Issue(p *domain.Principal, ttl time.Duration) (string, time.Time, error) {
	if p == nil || p.Username == "" || p.Role == "" {
		return "", time.Time{}, errors.New("issue token: principal username and role are required")
	}
	if ttl <= 0 {
		ttl = c.ttl
	}

	now := c.now().UTC()
	exp := now.Add(ttl)
	claims := tokenClaims{
		UserID:      p.ID,
		Username:    p.Username,
		Role:        p.Role,
		Permissions: slices.Clone(p.Permissions),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   p.ID,
			Audience:  jwt.ClaimStrings{c.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.NewString(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Verify checks signature, issuer, audience and expiry, and returns the
// embedded principal. Errors wrap domain.ErrTokenMalformed,
// domain.ErrTokenSignature, domain.ErrTokenClaims or domain.ErrTokenExpired.
func (c *TokenCodec) Verify(token string) (*domain.Principal, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 3 || parts[2] == "" {
		return nil, domain.ErrTokenMalformed
	}

	// The HMAC covers the encoded header and payload, so it is checked before
	// either is decoded.
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature segment: %v", domain.ErrTokenMalformed, err)
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenSignature, err)
	}

	claims := &tokenClaims{}
	_, err = jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithAudience(c.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classifyTokenError(err)
	}
	if claims.Username == "" || claims.Role == "" {
		return nil, fmt.Errorf("%w: username or role claim missing", domain.ErrTokenClaims)
	}

	return &domain.Principal{
		ID:          claims.UserID,
		Username:    claims.Username,
		Role:        claims.Role,
		Permissions: claims.Permissions,
	}, nil
}

func classifyTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return fmt.Errorf("%w: %v", domain.ErrTokenSignature, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrTokenExpired, err)
	case errors.Is(err, jwt.ErrTokenMalformed), errors.Is(err, jwt.ErrTokenUnverifiable):
		return fmt.Errorf("%w: %v", domain.ErrTokenMalformed, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrTokenClaims, err)
	}
}
