// Package telemetry carries reservation lifecycle events to observability backends.
package telemetry

import (
	"context"
	"time"
)

// Lifecycle event types.
const (
	EventChallengeIssued       = "challenge_issued"
	EventReservationConfirmed  = "reservation_confirmed"
	EventReservationRejected   = "reservation_rejected"
	EventReservationCancelled  = "reservation_cancelled"
	EventVerificationFailed    = "verification_failed"
	EventNotificationDelivered = "notification_delivered"
	EventNotificationFailed    = "notification_failed"
	EventRPCCompleted          = "rpc_completed"
)

// Event is one lifecycle record. It never carries a verification code.
type Event struct {
	Type        string
	Source      string
	UserID      string
	EventID     string
	ChallengeID string
	// Outcome is a short machine-readable reason (e.g. capacity_exceeded, already_member).
	Outcome   string
	Attendees int
	Capacity  int
	// Method and DurationMs are set for rpc_completed events only.
	Method     string
	DurationMs int64
	CreatedAt  time.Time
}

// EventEmitter emits lifecycle events (e.g. to OTel Logs). Best-effort; callers log and ignore errors.
type EventEmitter interface {
	Emit(ctx context.Context, event *Event) error
}
