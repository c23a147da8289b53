package domain

import "time"

// AuditLog is one recorded reservation lifecycle action.
type AuditLog struct {
	ID        string
	UserID    string
	EventID   string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
