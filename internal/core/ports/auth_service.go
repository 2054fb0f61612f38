package ports

import (
	"context"
	"time"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// LoginInput carries the credentials plus request metadata for the audit trail.
type LoginInput struct {
	Username      string
	Password      string
	SourceAddress string
	UserAgent     string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string
	Principal *domain.Principal
	ExpiresAt time.Time
	ExpiresIn time.Duration
}

type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
}

// TokenVerifier decodes and validates bearer tokens.
type TokenVerifier interface {
	Verify(token string) (*domain.Principal, error)
}
