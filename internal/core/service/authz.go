package service

import (
	"context"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
	"github.com/inventory-platform/inventory-api/internal/core/ports"
	"github.com/inventory-platform/inventory-api/internal/core/rbac"
)

// authorize runs the authorization gate and audits a denial.
func authorize(ctx context.Context, audit ports.AuditRecorder, actor *domain.Principal, req rbac.Requirement, component string, meta ports.RequestMeta) error {
	d := rbac.Authorize(actor, req)
	if d.Allowed {
		return nil
	}
	recordDenial(ctx, audit, actor, req.String(), d.Reason, component, meta)
	return domain.ErrForbidden
}

func recordDenial(ctx context.Context, audit ports.AuditRecorder, actor *domain.Principal, required, reason, component string, meta ports.RequestMeta) {
	ev := domain.AuditEvent{
		Actor:         domain.ActorSystem,
		Action:        domain.ActionPermissionDenied,
		Operation:     required,
		Component:     component,
		SourceAddress: meta.SourceAddress,
		UserAgent:     meta.UserAgent,
		Detail:        reason,
	}
	if actor != nil {
		ev.Actor = actor.Username
		ev.ActorID = actor.ID
		ev.UserID = actor.ID
		ev.Username = actor.Username
	}
	audit.Record(ctx, ev)
}

func actorFields(actor *domain.Principal) (name, id string) {
	if actor == nil {
		return domain.ActorSystem, ""
	}
	return actor.Username, actor.ID
}
