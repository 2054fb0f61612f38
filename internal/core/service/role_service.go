package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

const componentRoles = "roles"

// RoleService applies admin edits to the registry and writes them through to
// the role repository. A failed write rolls the registry back.
type RoleService struct {
	registry *rbac.Registry
	repo     ports.RoleRepository
	audit    ports.AuditRecorder
	log      zerolog.Logger
}

// NewRoleService returns a RoleService. repo may be nil, in which case edits
// live only in memory.
func NewRoleService(registry *rbac.Registry, repo ports.RoleRepository, audit ports.AuditRecorder, log zerolog.Logger) *RoleService {
	return &RoleService{registry: registry, repo: repo, audit: audit, log: log}
}

// LoadPersisted overlays stored roles onto the registry. Unknown permission
// tags in storage are dropped with a warning.
func (s *RoleService) LoadPersisted(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	stored, err := s.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	for _, r := range stored {
		perms := make([]string, 0, len(r.Permissions))
		for _, p := range r.Permissions {
			if domain.IsKnownPermission(p) {
				perms = append(perms, p)
				continue
			}
			s.log.Warn().Str("role", r.Name).Str("permission", p).Msg("dropping unknown stored permission")
		}
		s.registry.Restore(r.Name, perms)
	}
	s.log.Info().Int("count", len(stored)).Msg("persisted roles loaded")
	return nil
}

func (s *RoleService) List() []rbac.Role {
	return s.registry.List()
}

func (s *RoleService) Get(name string) (rbac.Role, error) {
	return s.registry.Get(name)
}

func (s *RoleService) Create(ctx context.Context, actor *domain.Principal, name string, perms []string, meta ports.RequestMeta) (rbac.Role, error) {
	role, err := s.registry.CreateRole(name, perms)
	if err != nil {
		return rbac.Role{}, err
	}
	if err := s.save(ctx, role); err != nil {
		s.registry.Forget(role.Name)
		return rbac.Role{}, err
	}
	s.record(ctx, actor, domain.ActionRoleCreated, "create", role, meta)
	return role, nil
}

func (s *RoleService) Update(ctx context.Context, actor *domain.Principal, name string, perms []string, meta ports.RequestMeta) (rbac.Role, error) {
	previous, _ := s.registry.Permissions(name)
	role, err := s.registry.UpdateRole(name, perms)
	if err != nil {
		return rbac.Role{}, err
	}
	if err := s.save(ctx, role); err != nil {
		s.registry.Restore(role.Name, previous)
		return rbac.Role{}, err
	}
	s.record(ctx, actor, domain.ActionRoleUpdated, "update", role, meta)
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, actor *domain.Principal, name string, meta ports.RequestMeta) error {
	name = rbac.NormalizeRoleName(name)
	previous, _ := s.registry.Permissions(name)
	if err := s.registry.DeleteRole(name); err != nil {
		return err
	}
	if s.repo != nil {
		if err := s.repo.Delete(ctx, name); err != nil {
			s.registry.Restore(name, previous)
			return fmt.Errorf("delete role: %w", err)
		}
	}
	s.record(ctx, actor, domain.ActionRoleDeleted, "delete", rbac.Role{Name: name, Permissions: previous}, meta)
	return nil
}

func (s *RoleService) save(ctx context.Context, role rbac.Role) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.Save(ctx, ports.StoredRole{Name: role.Name, Permissions: role.Permissions}); err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (s *RoleService) record(ctx context.Context, actor *domain.Principal, action, op string, role rbac.Role, meta ports.RequestMeta) {
	name, id := actorFields(actor)
	s.audit.Record(ctx, domain.AuditEvent{
		Actor:         name,
		ActorID:       id,
		Action:        action,
		Operation:     op,
		Component:     componentRoles,
		SourceAddress: meta.SourceAddress,
		UserAgent:     meta.UserAgent,
		Detail:        role.Name,
		Fields:        map[string]any{"permissions": role.Permissions},
	})
}
