package domain

import (
	"context"
	"slices"
)

// Principal is the authenticated identity attached to a request. It is
// rebuilt from a verified token on every request and never persisted.
type Principal struct {
	ID          string   `json:"id"`
	Username    string   `json:"username"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
}

// Has reports whether the principal carries the permission tag.
func (p *Principal) Has(perm string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Permissions, perm)
}

// IsSelf reports whether userID identifies the principal.
func (p *Principal) IsSelf(userID string) bool {
	return p != nil && p.ID != "" && p.ID == userID
}

type principalKey struct{}

// ContextWithPrincipal returns a copy of ctx carrying p.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal attached by the auth middleware.
func PrincipalFromContext(ctx context.Context) (*Principal, bool) {
	if ctx == nil {
		return nil, false
	}
	p, ok := ctx.Value(principalKey{}).(*Principal)
	if !ok || p == nil {
		return nil, false
	}
	return p, true
}
