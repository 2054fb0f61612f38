package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

const componentUsers = "user-management"

// UserService implements user management, including the self-service rules
// layered on top of the permission gate.
type UserService struct {
	repo     ports.UserRepository
	registry *rbac.Registry
	audit    ports.AuditRecorder
	log      zerolog.Logger
	now      func() time.Time
}

func NewUserService(repo ports.UserRepository, registry *rbac.Registry, audit ports.AuditRecorder, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, registry: registry, audit: audit, log: log, now: time.Now}
}

// List returns all users. The route is gated on read:users.
func (s *UserService) List(ctx context.Context, _ *domain.Principal) ([]*domain.User, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Get returns a user. Anyone may read their own profile; reading others
// needs read:users.
func (s *UserService) Get(ctx context.Context, actor *domain.Principal, id string, meta ports.RequestMeta) (*domain.User, error) {
	if !actor.IsSelf(id) {
		if err := authorize(ctx, s.audit, actor, rbac.NeedPermission(domain.PermReadUsers), componentUsers, meta); err != nil {
			return nil, err
		}
	}
	return s.repo.FindByID(ctx, id)
}

// Create adds a credential record. Permissions default to the role's full
// set and must otherwise be a subset of it.
func (s *UserService) Create(ctx context.Context, actor *domain.Principal, in ports.CreateUserInput, meta ports.RequestMeta) (*domain.User, error) {
	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, domain.Invalidf("username is required")
	}
	role, perms, err := s.resolveAccess(in.Role, in.Permissions)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	active := true
	if in.IsActive != nil {
		active = *in.IsActive
	}
	now := s.now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Username:     username,
		PasswordHash: hash,
		Role:         role,
		Permissions:  perms,
		IsActive:     active,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.record(ctx, actor, domain.ActionUserCreated, "create", created, meta, "user created")
	return created, nil
}

// Update applies a partial update. A user may edit their own profile without
// write:users but may never change their own role, permissions or active
// flag.
func (s *UserService) Update(ctx context.Context, actor *domain.Principal, id string, upd domain.UserUpdate, meta ports.RequestMeta) (*domain.User, error) {
	if actor.IsSelf(id) {
		if upd.ChangesAccess() {
			recordDenial(ctx, s.audit, actor, "self:access-change", "self_access_change", componentUsers, meta)
			return nil, domain.Forbiddenf("you cannot change your own role or permissions")
		}
	} else if err := authorize(ctx, s.audit, actor, rbac.NeedPermission(domain.PermWriteUsers), componentUsers, meta); err != nil {
		return nil, err
	}
	// Omitting permissions keeps the current set; an explicit empty list
	// would leave the user with nothing and is refused.
	if upd.Permissions != nil && len(upd.Permissions) == 0 {
		return nil, domain.Invalidf("permissions must not be empty; omit the field to keep the current set")
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Password != nil {
		hash, err := HashPassword(*upd.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
	}
	if upd.Role != nil || upd.Permissions != nil {
		role := user.Role
		if upd.Role != nil {
			role = *upd.Role
		}
		perms := upd.Permissions
		if perms == nil && upd.Role == nil {
			perms = user.Permissions
		}
		role, perms, err = s.resolveAccess(role, perms)
		if err != nil {
			return nil, err
		}
		user.Role, user.Permissions = role, perms
	}
	if upd.IsActive != nil {
		user.IsActive = *upd.IsActive
	}
	user.UpdatedAt = s.now().UTC()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	s.record(ctx, actor, domain.ActionUserUpdated, "update", user, meta, "user updated")
	return user, nil
}

// Delete removes a user. Deleting your own account is rejected before the
// permission check, whatever your role grants.
func (s *UserService) Delete(ctx context.Context, actor *domain.Principal, id string, meta ports.RequestMeta) error {
	if actor.IsSelf(id) {
		return domain.Invalidf("you cannot delete your own account")
	}
	if err := authorize(ctx, s.audit, actor, rbac.NeedPermission(domain.PermDeleteUsers), componentUsers, meta); err != nil {
		return err
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	s.record(ctx, actor, domain.ActionUserDeleted, "delete", user, meta, "user deleted")
	return nil
}

// Bootstrap creates an ADMIN account when no user with that name exists.
func (s *UserService) Bootstrap(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}
	if _, err := s.repo.FindByUsername(ctx, username); err == nil {
		return false, nil
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}

	if _, err := s.Create(ctx, nil, ports.CreateUserInput{
		Username: username,
		Password: password,
		Role:     domain.RoleAdmin,
	}, ports.RequestMeta{}); err != nil {
		return false, fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info().Str("username", username).Msg("bootstrap admin created")
	return true, nil
}

func (s *UserService) resolveAccess(role string, perms []string) (string, []string, error) {
	role = rbac.NormalizeRoleName(role)
	if role == "" {
		return "", nil, domain.Invalidf("role is required")
	}
	granted, ok := s.registry.Permissions(role)
	if !ok {
		return "", nil, domain.Invalidf("unknown role %q", role)
	}
	if len(perms) == 0 {
		return role, granted, nil
	}

	out := make([]string, 0, len(perms))
	for _, p := range perms {
		if !domain.IsKnownPermission(p) {
			return "", nil, domain.Invalidf("invalid permission %q", p)
		}
		if !slices.Contains(granted, p) {
			return "", nil, domain.Invalidf("permission %q is not granted by role %s", p, role)
		}
		if !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return role, out, nil
}

func (s *UserService) record(ctx context.Context, actor *domain.Principal, action, op string, user *domain.User, meta ports.RequestMeta, detail string) {
	name, id := actorFields(actor)
	s.audit.Record(ctx, domain.AuditEvent{
		Actor:         name,
		ActorID:       id,
		Action:        action,
		Operation:     op,
		Component:     componentUsers,
		SourceAddress: meta.SourceAddress,
		UserAgent:     meta.UserAgent,
		Detail:        detail,
		UserID:        user.ID,
		Username:      user.Username,
		Fields:        map[string]any{"role": user.Role},
	})
}
