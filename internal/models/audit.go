package models

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// Audited actions.
const (
	AuditActionRolePromote   = "ROLE_PROMOTE"
	AuditActionClassStatus   = "CLASS_STATUS"
	AuditActionClassFeedback = "CLASS_FEEDBACK"
	AuditActionClassCreate   = "CLASS_CREATE"
	AuditActionEnroll        = "ENROLL"
	AuditActionLogout        = "LOGOUT"
	AuditActionAccessDenied  = "ACCESS_DENIED"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string         `db:"id" json:"id"`
	ActorEmail string         `db:"actor_email" json:"actorEmail"`
	Action     string         `db:"action" json:"action"`
	Resource   string         `db:"resource" json:"resource"`
	ResourceID string         `db:"resource_id" json:"resourceId"`
	Detail     types.JSONText `db:"detail" json:"detail,omitempty"`
	IPAddress  string         `db:"ip_address" json:"ipAddress"`
	UserAgent  string         `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
}
