package repository

import (
	"context"

	"event-rsvp/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	Create(ctx context.Context, a *domain.AuditLog) error
	// ListByEvent returns the event's entries, newest first.
	ListByEvent(ctx context.Context, eventID string, limit, offset int32) ([]*domain.AuditLog, error)
}
