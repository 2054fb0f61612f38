package ports

import (
	"context"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

// RoleService exposes the registry to the admin endpoints and persists edits.
type RoleService interface {
	List() []rbac.Role
	Get(name string) (rbac.Role, error)
	Create(ctx context.Context, actor *domain.Principal, name string, perms []string, meta RequestMeta) (rbac.Role, error)
	Update(ctx context.Context, actor *domain.Principal, name string, perms []string, meta RequestMeta) (rbac.Role, error)
	Delete(ctx context.Context, actor *domain.Principal, name string, meta RequestMeta) error
}
