// Package audit records who did what to which event's reservations.
package audit

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"event-rsvp/backend/internal/audit/domain"
	auditrepo "event-rsvp/backend/internal/audit/repository"
)

// Reservation lifecycle actions.
const (
	ActionRequested    = "reservation_requested"
	ActionConfirmed    = "reservation_confirmed"
	ActionCancelled    = "reservation_cancelled"
	ActionVerifyFailed = "verification_failed"
	ActionRejected     = "reservation_rejected"
)

// ResourceReservation is the resource recorded for every reservation action.
const ResourceReservation = "reservation"

// IPExtractor returns the client IP from the request context (e.g. gRPC metadata or peer).
type IPExtractor func(context.Context) string

// AuditLogger writes a single audit event. LogEvent is best-effort: failures are logged and do not affect the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, userID, eventID, action, metadata string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	nowF        func() time.Time
}

// NewLogger returns an AuditLogger that persists to repo and uses ipExtractor for client IP.
// ipExtractor may be nil; then IP is recorded as "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor) *Logger {
	return &Logger{repo: repo, ipExtractor: ipExtractor, nowF: func() time.Time { return time.Now().UTC() }}
}

// LogEvent writes one audit log entry. Best-effort: errors are logged and not returned.
func (l *Logger) LogEvent(ctx context.Context, userID, eventID, action, metadata string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := "unknown"
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	entry := &domain.AuditLog{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		Action:    action,
		Resource:  ResourceReservation,
		IP:        ip,
		Metadata:  metadata,
		CreatedAt: l.nowF(),
	}
	if err := l.repo.Create(ctx, entry); err != nil {
		log.Printf("audit: failed to log event %s for %s: %v", action, eventID, err)
	}
}
