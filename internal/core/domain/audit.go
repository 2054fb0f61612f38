package domain

import "time"

// Audit actions.
const (
	ActionLoginSuccess     = "login_success"
	ActionLoginFailed      = "login_failed"
	ActionPermissionDenied = "permission_denied"
	ActionRoleCreated      = "role_created"
	ActionRoleUpdated      = "role_updated"
	ActionRoleDeleted      = "role_deleted"
	ActionUserCreated      = "user_created"
	ActionUserUpdated      = "user_updated"
	ActionUserDeleted      = "user_deleted"
)

// ActorSystem is recorded when no authenticated actor exists.
const ActorSystem = "system"

// AuditEvent is an immutable record of an authentication or authorization
// occurrence. It is written once and never mutated.
type AuditEvent struct {
	ID            string
	Timestamp     time.Time
	Actor         string // username, or ActorSystem
	ActorID       string // empty for unauthenticated events
	Action        string
	Operation     string
	Component     string
	SourceAddress string
	UserAgent     string
	Detail        string
	UserID        string
	Username      string
	Fields        map[string]any
}
