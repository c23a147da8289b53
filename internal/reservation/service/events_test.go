package service

import (
	"context"
	"sync"
	"testing"
	"time"

	attendancerepo "event-rsvp/backend/internal/attendance/repository"
	"event-rsvp/backend/internal/catalog"
	"event-rsvp/backend/internal/challenge"
	challengerepo "event-rsvp/backend/internal/challenge/repository"
	"event-rsvp/backend/internal/telemetry"
)

type captureEmitter struct {
	mu     sync.Mutex
	events []telemetry.Event
	ch     chan struct{}
}

func (c *captureEmitter) Emit(_ context.Context, e *telemetry.Event) error {
	c.mu.Lock()
	c.events = append(c.events, *e)
	c.mu.Unlock()
	c.ch <- struct{}{}
	return nil
}

func TestCoordinator_EmitsLifecycleEvents(t *testing.T) {
	em := &captureEmitter{ch: make(chan struct{}, 16)}
	notifier := newRecordingNotifier()
	coord := NewCoordinator(
		catalog.NewMemoryCatalog(map[string]int{"evt-1": 2}),
		attendancerepo.NewMemoryStore(),
		challenge.NewManager(challengerepo.NewMemoryRepository(), time.Minute),
		Options{Notifier: notifier, Events: em},
	)
	ctx := context.Background()

	if _, err := coord.RequestReservation(ctx, "alice", "evt-1"); err != nil {
		t.Fatalf("RequestReservation: %v", err)
	}
	code := notifier.code("alice", "evt-1")
	_, _ = coord.VerifyReservation(ctx, "alice", "evt-1", "000000")
	if _, err := coord.VerifyReservation(ctx, "alice", "evt-1", code); err != nil {
		t.Fatalf("VerifyReservation: %v", err)
	}
	if err := coord.CancelReservation(ctx, "alice", "evt-1"); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}

	for i := 0; i < 4; i++ {
		select {
		case <-em.ch:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d events emitted, want 4", i)
		}
	}
	em.mu.Lock()
	defer em.mu.Unlock()
	seen := map[string]telemetry.Event{}
	for _, e := range em.events {
		seen[e.Type] = e
	}
	for _, typ := range []string{
		telemetry.EventChallengeIssued,
		telemetry.EventVerificationFailed,
		telemetry.EventReservationConfirmed,
		telemetry.EventReservationCancelled,
	} {
		if _, ok := seen[typ]; !ok {
			t.Errorf("missing %s event", typ)
		}
	}
	if e := seen[telemetry.EventReservationConfirmed]; e.Attendees != 1 || e.Capacity != 2 {
		t.Errorf("confirmed event = %+v, want attendees 1 capacity 2", e)
	}
	if e := seen[telemetry.EventReservationCancelled]; e.Attendees != 0 {
		t.Errorf("cancelled event attendees = %d, want 0", e.Attendees)
	}
}
