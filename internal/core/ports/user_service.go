package ports

import (
	"context"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// CreateUserInput carries the fields for a new credential record.
type CreateUserInput struct {
	Username    string
	Password    string
	Role        string
	Permissions []string
	IsActive    *bool
}

// RequestMeta identifies where a request came from, for audit events.
type RequestMeta struct {
	SourceAddress string
	UserAgent     string
}

// UserService is user management. Every method takes the acting principal so
// self-service rules can be enforced next to the permission check.
type UserService interface {
	List(ctx context.Context, actor *domain.Principal) ([]*domain.User, error)
	Get(ctx context.Context, actor *domain.Principal, id string, meta RequestMeta) (*domain.User, error)
	Create(ctx context.Context, actor *domain.Principal, in CreateUserInput, meta RequestMeta) (*domain.User, error)
	Update(ctx context.Context, actor *domain.Principal, id string, upd domain.UserUpdate, meta RequestMeta) (*domain.User, error)
	Delete(ctx context.Context, actor *domain.Principal, id string, meta RequestMeta) error
}
