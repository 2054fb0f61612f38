package ports

import (
	"context"

	"github.com/inventory-platform/inventory-api/internal/core/domain"
)

// AuditSink durably appends audit events. Implementations return an error on
// I/O failure.
type AuditSink interface {
	Append(ctx context.Context, event *domain.AuditEvent) error
}

// AuditRecorder is what services call. Record never blocks on I/O and never
// fails; delivery is best-effort.
type AuditRecorder interface {
	Record(ctx context.Context, event domain.AuditEvent)
}
