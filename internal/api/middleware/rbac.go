package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/inventory-platform/inventory-api/internal/api/metrics"
	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

// Gate builds route guards. Denials are audited and answered with 403.
type Gate struct {
	audit ports.AuditRecorder
}

func NewGate(audit ports.AuditRecorder) *Gate {
	return &Gate{audit: audit}
}

// RequirePermission lets the request through when the principal carries perm.
func (g *Gate) RequirePermission(perm string) echo.MiddlewareFunc {
	return g.require(rbac.NeedPermission(perm))
}

// RequireRole lets the request through when the principal's role is exactly
// role. Holding a superset of the role's permissions is not enough.
func (g *Gate) RequireRole(role string) echo.MiddlewareFunc {
	return g.require(rbac.NeedRole(role))
}

func (g *Gate) require(req rbac.Requirement) echo.MiddlewareFunc {
	label := req.String()
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := domain.PrincipalFromContext(c.Request().Context())
			d := rbac.Authorize(p, req)
			if d.Allowed {
				metrics.AuthzDecisionsTotal.WithLabelValues(label, "allowed").Inc()
				return next(c)
			}

			metrics.AuthzDecisionsTotal.WithLabelValues(label, "denied").Inc()
			if p == nil {
				return domain.ErrMissingCredentials
			}
			g.audit.Record(c.Request().Context(), domain.AuditEvent{
				Actor:         p.Username,
				ActorID:       p.ID,
				Action:        domain.ActionPermissionDenied,
				Operation:     label,
				Component:     c.Path(),
				SourceAddress: c.RealIP(),
				UserAgent:     c.Request().UserAgent(),
				Detail:        d.Reason,
				UserID:        p.ID,
				Username:      p.Username,
				Fields:        map[string]any{"method": c.Request().Method, "role": p.Role},
			})
			return domain.ErrForbidden
		}
	}
}
