package domain

import "time"

// AuditAction classifies an audit log entry.
type AuditAction string

const (
	ActionCreate AuditAction = "CREATE"
	ActionUpdate AuditAction = "UPDATE"
	ActionDelete AuditAction = "DELETE"
	ActionLogin  AuditAction = "LOGIN"
	ActionLogout AuditAction = "LOGOUT"
	ActionOther  AuditAction = "OTHER"
)

// AuditLogEntry is an immutable record of a system event.
type AuditLogEntry struct {
	ID          ID             `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Actor       string         `json:"actor"`
	Company     string         `json:"company,omitempty"`
	Action      AuditAction    `json:"action"`
	Object      string         `json:"object"` // type:id
	Description string         `json:"description"`
	IP          string         `json:"ip"`
	Meta        map[string]any `json:"meta,omitempty"`
}
