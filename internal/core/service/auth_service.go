package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

const componentAuth = "auth"

// CredentialChecker verifies a username/password pair.
type CredentialChecker interface {
	VerifyCredentials(ctx context.Context, username, password string) (*domain.Principal, error)
}

// TokenIssuer signs tokens for a principal.
type TokenIssuer interface {
	Issue(p *domain.Principal, ttl time.Duration) (string, time.Time, error)
	TTL() time.Duration
}

// AuthService runs the login flow: credential check, audit, token issuance.
type AuthService struct {
	credentials CredentialChecker
	registry    *rbac.Registry
	tokens      TokenIssuer
	limiter     ports.LoginLimiter
	audit       ports.AuditRecorder
	log         zerolog.Logger
}

// NewAuthService wires the login flow. limiter may be nil to disable lockout.
func NewAuthService(
	credentials CredentialChecker,
	registry *rbac.Registry,
	tokens TokenIssuer,
	limiter ports.LoginLimiter,
	audit ports.AuditRecorder,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		credentials: credentials,
		registry:    registry,
		tokens:      tokens,
		limiter:     limiter,
		audit:       audit,
		log:         log,
	}
}

// Login authenticates the caller and returns a signed token. Every attempt
// is audited; failures return domain.ErrInvalidCredentials whatever the
// underlying reason.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		s.recordFailure(ctx, in, "missing_credentials", "")
		return nil, domain.Invalidf("username and password are required")
	}

	if s.isLocked(ctx, in.Username) {
		s.recordFailure(ctx, in, "account_locked", "")
		return nil, domain.ErrAccountLocked
	}

	principal, err := s.credentials.VerifyCredentials(ctx, in.Username, in.Password)
	if err != nil {
		var failure *domain.VerificationFailure
		if errors.As(err, &failure) {
			return nil, s.rejectCredentials(ctx, in, failure.Reason)
		}
		s.recordFailure(ctx, in, "internal_error", domain.ReasonStoreError)
		return nil, fmt.Errorf("login: %w", err)
	}

	perms, ok := s.registry.Grantable(principal.Role, principal.Permissions)
	if !ok {
		return nil, s.rejectCredentials(ctx, in, domain.ReasonUnknownRole)
	}
	principal.Role = rbac.NormalizeRoleName(principal.Role)
	principal.Permissions = perms

	token, expiresAt, err := s.tokens.Issue(principal, 0)
	if err != nil {
		s.recordFailure(ctx, in, "internal_error", domain.ReasonTokenIssue)
		return nil, fmt.Errorf("login: %w", err)
	}

	s.resetFailures(ctx, in.Username)
	s.audit.Record(ctx, domain.AuditEvent{
		Actor:         principal.Username,
		ActorID:       principal.ID,
		Action:        domain.ActionLoginSuccess,
		Operation:     "login",
		Component:     componentAuth,
		SourceAddress: in.SourceAddress,
		UserAgent:     in.UserAgent,
		Detail:        "login successful",
		UserID:        principal.ID,
		Username:      principal.Username,
		Fields: map[string]any{
			"role":             principal.Role,
			"permission_count": len(principal.Permissions),
		},
	})
	s.log.Info().Str("username", principal.Username).Str("role", principal.Role).Msg("login succeeded")

	return &ports.LoginResult{
		Token:     token,
		Principal: principal,
		ExpiresAt: expiresAt,
		ExpiresIn: s.tokens.TTL(),
	}, nil
}

func (s *AuthService) rejectCredentials(ctx context.Context, in ports.LoginInput, reason string) error {
	if s.limiter != nil {
		locked, err := s.limiter.RegisterFailure(ctx, in.Username)
		if err != nil {
			s.log.Warn().Err(err).Str("username", in.Username).Msg("failed to count login failure")
		} else if locked {
			s.log.Warn().Str("username", in.Username).Msg("account locked after repeated failures")
		}
	}
	s.recordFailure(ctx, in, "invalid_credentials", reason)
	return domain.ErrInvalidCredentials
}

func (s *AuthService) recordFailure(ctx context.Context, in ports.LoginInput, detail, reason string) {
	ev := domain.AuditEvent{
		Actor:         domain.ActorSystem,
		Action:        domain.ActionLoginFailed,
		Operation:     "login",
		Component:     componentAuth,
		SourceAddress: in.SourceAddress,
		UserAgent:     in.UserAgent,
		Detail:        detail,
		Username:      in.Username,
	}
	if reason != "" {
		ev.Fields = map[string]any{"reason": reason}
	}
	s.audit.Record(ctx, ev)
	s.log.Debug().Str("username", in.Username).Str("detail", detail).Str("reason", reason).Msg("login failed")
}

// isLocked fails open: a limiter outage must not block logins.
func (s *AuthService) isLocked(ctx context.Context, username string) bool {
	if s.limiter == nil {
		return false
	}
	locked, err := s.limiter.IsLocked(ctx, username)
	if err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("lockout check failed, continuing")
		return false
	}
	return locked
}

func (s *AuthService) resetFailures(ctx context.Context, username string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, username); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("failed to reset login failures")
	}
}
