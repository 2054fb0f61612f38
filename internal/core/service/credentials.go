package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/crypto/bcrypt"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
)

// CredentialVerifier checks a username/password pair against the credential
// store. It is read-only and does not audit.
type CredentialVerifier struct {
	users ports.UserRepository
}

func NewCredentialVerifier(users ports.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{users: users}
}

// VerifyCredentials returns the user's principal, or a
// *domain.VerificationFailure that is indistinguishable to callers whatever
// the reason. Store failures are returned as-is.
func (v *CredentialVerifier) VerifyCredentials(ctx context.Context, username, password string) (*domain.Principal, error) {
	if username == "" || password == "" {
		return nil, domain.Invalidf("username and password are required")
	}

	user, err := v.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash(), []byte(password))
			return nil, &domain.VerificationFailure{Reason: domain.ReasonUserNotFound}
		}
		return nil, fmt.Errorf("verify credentials: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, &domain.VerificationFailure{Reason: domain.ReasonPasswordMismatch}
	}
	if !user.IsActive {
		return nil, &domain.VerificationFailure{Reason: domain.ReasonAccountInactive}
	}

	return &domain.Principal{
		ID:          user.ID,
		Username:    user.Username,
		Role:        user.Role,
		Permissions: slices.Clone(user.Permissions),
	}, nil
}
