package ports

import (
	"context"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// UserRepository is the credential store. FindByUsername is the only method
// the authentication path uses; the rest back user management.
type UserRepository interface {
	// FindByUsername returns domain.ErrUserNotFound when no record matches.
	// Matching is exact and case-sensitive.
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	// Create returns domain.ErrUserExists on a duplicate username.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	Update(ctx context.Context, user *domain.User) error
	Delete(ctx context.Context, id string) error
}
