package rbac

import "github.com/inventory-platform/inventory-api/internal/core/domain"

// Requirement is what a route demands of the caller: a single permission tag
// or an exact role.
type Requirement struct {
	Permission string
	Role       string
}

// NeedPermission builds a permission requirement.
func NeedPermission(perm string) Requirement { return Requirement{Permission: perm} }

// NeedRole builds a role requirement.
func NeedRole(role string) Requirement { return Requirement{Role: NormalizeRoleName(role)} }

func (r Requirement) String() string {
	if r.Role != "" {
		return "role:" + r.Role
	}
	return r.Permission
}

// Denial reasons.
const (
	ReasonNoPrincipal       = "no_principal"
	ReasonMissingPermission = "missing_permission"
	ReasonRoleMismatch      = "role_mismatch"
	ReasonEmptyRequirement  = "empty_requirement"
)

// Decision is the outcome of Authorize.
type Decision struct {
	Allowed bool
	Reason  string
}

// Authorize decides whether p satisfies req. It has no side effects. Role
// checks are exact matches; there is no role hierarchy.
func Authorize(p *domain.Principal, req Requirement) Decision {
	if p == nil {
		return Decision{Reason: ReasonNoPrincipal}
	}
	switch {
	case req.Role != "":
		if NormalizeRoleName(p.Role) == req.Role {
			return Decision{Allowed: true}
		}
		return Decision{Reason: ReasonRoleMismatch}
	case req.Permission != "":
		if p.Has(req.Permission) {
			return Decision{Allowed: true}
		}
		return Decision{Reason: ReasonMissingPermission}
	}
	return Decision{Reason: ReasonEmptyRequirement}
}
