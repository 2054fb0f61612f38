// Package rbac holds the role → permission registry and the authorization
// decision function used by every gated route.
package rbac

import (
	"regexp"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

var roleNamePattern = regexp.MustCompile(`^[A-Z][A-Z0-9_]{1,31}$`)

// Role is a registry entry as seen by callers.
type Role struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	BuiltIn     bool     `json:"built_in"`
}

// Registry maps role names to permission sets. It is safe for concurrent use;
// writers replace a role's whole set under the lock, so readers never observe
// a partial update.
type Registry struct {
	mu    sync.RWMutex
	roles map[string]map[string]struct{}
}

// NewRegistry returns a registry seeded with the built-in roles.
func NewRegistry() *Registry {
	r := &Registry{roles: make(map[string]map[string]struct{})}
	for name, perms := range domain.BuiltinRoles() {
		r.roles[name] = toSet(perms)
	}
	return r
}

// NormalizeRoleName upper-cases and trims a role name.
func NormalizeRoleName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Exists reports whether the role is registered.
func (r *Registry) Exists(role string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.roles[NormalizeRoleName(role)]
	return ok
}

// Permissions returns a sorted copy of the role's permission set.
func (r *Registry) Permissions(role string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.roles[NormalizeRoleName(role)]
	if !ok {
		return nil, false
	}
	return fromSet(set), true
}

// HasPermission reports whether role grants perm.
func (r *Registry) HasPermission(role, perm string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	set, ok := r.roles[NormalizeRoleName(role)]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// List returns every role ordered by name.
func (r *Registry) List() []Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Role, 0, len(r.roles))
	for name, set := range r.roles {
		out = append(out, Role{Name: name, Permissions: fromSet(set), BuiltIn: domain.IsBuiltinRole(name)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get returns a single role.
func (r *Registry) Get(name string) (Role, error) {
	name = NormalizeRoleName(name)
	perms, ok := r.Permissions(name)
	if !ok {
		return Role{}, domain.ErrRoleNotFound
	}
	return Role{Name: name, Permissions: perms, BuiltIn: domain.IsBuiltinRole(name)}, nil
}

// CreateRole registers a new role. Input is validated before the conflict
// check, so an invalid request never reports a conflict.
func (r *Registry) CreateRole(name string, perms []string) (Role, error) {
	name = NormalizeRoleName(name)
	if err := validateRoleName(name); err != nil {
		return Role{}, err
	}
	set, err := validatePermissions(perms)
	if err != nil {
		return Role{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[name]; exists {
		return Role{}, domain.ErrRoleExists
	}
	r.roles[name] = set
	return Role{Name: name, Permissions: fromSet(set), BuiltIn: domain.IsBuiltinRole(name)}, nil
}

// UpdateRole replaces the role's permission set. It does not merge.
func (r *Registry) UpdateRole(name string, perms []string) (Role, error) {
	name = NormalizeRoleName(name)
	set, err := validatePermissions(perms)
	if err != nil {
		return Role{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[name]; !exists {
		return Role{}, domain.ErrRoleNotFound
	}
	r.roles[name] = set
	return Role{Name: name, Permissions: fromSet(set), BuiltIn: domain.IsBuiltinRole(name)}, nil
}

// DeleteRole removes a custom role. Built-in roles can never be deleted.
func (r *Registry) DeleteRole(name string) error {
	name = NormalizeRoleName(name)
	if domain.IsBuiltinRole(name) {
		return domain.Invalidf("built-in role %s cannot be deleted", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.roles[name]; !exists {
		return domain.ErrRoleNotFound
	}
	delete(r.roles, name)
	return nil
}

// Restore sets a role's permissions without validation. Used to load
// persisted roles at startup and to roll back failed write-throughs.
func (r *Registry) Restore(name string, perms []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.roles[NormalizeRoleName(name)] = toSet(perms)
}

// Forget removes a role unconditionally. Built-ins are kept.
func (r *Registry) Forget(name string) {
	name = NormalizeRoleName(name)
	if domain.IsBuiltinRole(name) {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.roles, name)
}

// Grantable narrows requested to the role's registered permissions. An empty
// request yields the role's full set.
func (r *Registry) Grantable(role string, requested []string) ([]string, bool) {
	perms, ok := r.Permissions(role)
	if !ok {
		return nil, false
	}
	if len(requested) == 0 {
		return perms, true
	}
	out := make([]string, 0, len(requested))
	for _, p := range requested {
		if slices.Contains(perms, p) && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	sort.Strings(out)
	return out, true
}

func validateRoleName(name string) error {
	if name == "" {
		return domain.Invalidf("role name is required")
	}
	if !roleNamePattern.MatchString(name) {
		return domain.Invalidf("invalid role name %q", name)
	}
	return nil
}

func validatePermissions(perms []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(p)
		if !domain.IsKnownPermission(p) {
			return nil, domain.Invalidf("invalid permission %q", p)
		}
		set[p] = struct{}{}
	}
	return set, nil
}

func toSet(perms []string) map[string]struct{} {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return set
}

func fromSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
