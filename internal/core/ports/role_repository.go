package ports

import "context"

// StoredRole is a persisted role → permission mapping.
type StoredRole struct {
	Name        string
	Permissions []string
}

// RoleRepository persists admin edits to the role registry.
type RoleRepository interface {
	List(ctx context.Context) ([]StoredRole, error)
	Save(ctx context.Context, role StoredRole) error
	Delete(ctx context.Context, name string) error
}
