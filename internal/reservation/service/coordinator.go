// Package service implements the reservation state machine for a (user, event) pair:
// Unregistered → PendingVerification → Registered, and back to Unregistered by cancel, expiry, or supersession.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"event-rsvp/backend/internal/attendance/domain"
	attendancerepo "event-rsvp/backend/internal/attendance/repository"
	"event-rsvp/backend/internal/audit"
	"event-rsvp/backend/internal/catalog"
	"event-rsvp/backend/internal/challenge"
	challengedomain "event-rsvp/backend/internal/challenge/domain"
	"event-rsvp/backend/internal/devotp"
	"event-rsvp/backend/internal/telemetry"
)

// Sentinel errors for the coordinator; the handler maps them to gRPC codes.
var (
	ErrInvalidArgument      = errors.New("user_id and event_id are required")
	ErrInvalidCodeFormat    = challenge.ErrInvalidCodeFormat
	ErrEventNotFound        = errors.New("event not found")
	ErrAlreadyRegistered    = errors.New("already registered for this event")
	ErrCapacityExceeded     = errors.New("event is full")
	ErrInvalidOrExpiredCode = errors.New("invalid or expired code")
)

// Challenges is the subset of *challenge.Manager used by the coordinator.
type Challenges interface {
	Issue(ctx context.Context, userID, eventID string) (*challengedomain.Challenge, string, error)
	FindLive(ctx context.Context, userID, eventID, code string) (*challengedomain.Challenge, error)
	MarkVerified(ctx context.Context, challengeID string) error
	InvalidateAll(ctx context.Context, userID, eventID string) error
	Retire(ctx context.Context, challengeID string) error
}

// Notifier hands notifications off without waiting for delivery. *notify.Dispatcher implements it.
type Notifier interface {
	DispatchCode(userID, eventID, code string)
	DispatchConfirmation(userID, eventID string)
}

// Options holds the coordinator's optional collaborators. Nil fields are skipped.
type Options struct {
	Notifier Notifier
	// DevCodes receives every issued plain code; set only in dev code mode.
	DevCodes devotp.Store
	Audit    audit.AuditLogger
	Events   telemetry.EventEmitter
	Meter    metric.Meter
}

// RequestResult identifies the issued challenge.
type RequestResult struct {
	ChallengeID string
	ExpiresAt   time.Time
	ExpiresIn   time.Duration
}

// VerifyResult is the attendance observed by the committing TryAdd.
type VerifyResult struct {
	Snapshot domain.Snapshot
}

// AttendanceView is an event's attendance for display.
type AttendanceView struct {
	Snapshot   domain.Snapshot
	Attendees  []domain.Attendee
	Registered bool
}

// Coordinator drives request → verify → commit → cancel. The attendance store's TryAdd is the only
// point that admits a user; every earlier check is advisory.
type Coordinator struct {
	catalog    catalog.EventCatalog
	store      attendancerepo.Store
	challenges Challenges
	notifier   Notifier
	devCodes   devotp.Store
	audit      audit.AuditLogger
	events     telemetry.EventEmitter
	metrics    *coordinatorMetrics
	nowF       func() time.Time
}

// NewCoordinator returns a Coordinator over the given catalog, attendance store, and challenge manager.
func NewCoordinator(events catalog.EventCatalog, store attendancerepo.Store, challenges Challenges, opts Options) *Coordinator {
	return &Coordinator{
		catalog:    events,
		store:      store,
		challenges: challenges,
		notifier:   opts.Notifier,
		devCodes:   opts.DevCodes,
		audit:      opts.Audit,
		events:     opts.Events,
		metrics:    newCoordinatorMetrics(opts.Meter),
		nowF:       func() time.Time { return time.Now().UTC() },
	}
}

// RequestReservation checks eligibility, issues a fresh challenge (superseding any pending one), and
// dispatches the code. Delivery failures never fail the request.
func (c *Coordinator) RequestReservation(ctx context.Context, userID, eventID string) (*RequestResult, error) {
	userID, eventID, err := normalizeIDs(userID, eventID)
	if err != nil {
		return nil, err
	}
	snap, err := c.snapshot(ctx, eventID)
	if err != nil {
		c.metrics.request(ctx, outcomeOf(err))
		return nil, err
	}
	member, err := c.store.IsMember(ctx, eventID, userID)
	if err != nil {
		return nil, c.storageErr("membership check", err)
	}
	if member {
		c.reject(ctx, userID, eventID, domain.AlreadyMember.String(), snap)
		c.metrics.request(ctx, domain.AlreadyMember.String())
		return nil, ErrAlreadyRegistered
	}
	if snap.Full() {
		c.reject(ctx, userID, eventID, domain.CapacityExceeded.String(), snap)
		c.metrics.request(ctx, domain.CapacityExceeded.String())
		return nil, ErrCapacityExceeded
	}

	ch, code, err := c.challenges.Issue(ctx, userID, eventID)
	if err != nil {
		return nil, c.storageErr("issue challenge", err)
	}
	if c.devCodes != nil {
		c.devCodes.Put(ctx, ch.ID, userID, eventID, code, ch.ExpiresAt)
	}
	if c.notifier != nil {
		c.notifier.DispatchCode(userID, eventID, code)
	}

	c.logAudit(ctx, userID, eventID, audit.ActionRequested, "challenge_id", ch.ID)
	telemetry.EmitAsync(c.events, &telemetry.Event{
		Type:        telemetry.EventChallengeIssued,
		Source:      "coordinator",
		UserID:      userID,
		EventID:     eventID,
		ChallengeID: ch.ID,
		Attendees:   snap.AttendeeCount,
		Capacity:    snap.Capacity,
	})
	c.metrics.request(ctx, "issued")

	expiresIn := ch.ExpiresAt.Sub(c.nowF())
	if expiresIn < 0 {
		expiresIn = 0
	}
	return &RequestResult{ChallengeID: ch.ID, ExpiresAt: ch.ExpiresAt, ExpiresIn: expiresIn}, nil
}

// VerifyReservation matches the code against the live challenge and commits the reservation through
// TryAdd. A lost capacity race is reported as ErrCapacityExceeded, never as a bad code.
func (c *Coordinator) VerifyReservation(ctx context.Context, userID, eventID, code string) (*VerifyResult, error) {
	userID, eventID, err := normalizeIDs(userID, eventID)
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if err := challenge.ValidateCodeFormat(code); err != nil {
		return nil, ErrInvalidCodeFormat
	}

	ch, err := c.challenges.FindLive(ctx, userID, eventID, code)
	if errors.Is(err, challenge.ErrNotFound) {
		c.logAudit(ctx, userID, eventID, audit.ActionVerifyFailed, "reason", "invalid_or_expired_code")
		telemetry.EmitAsync(c.events, &telemetry.Event{
			Type:    telemetry.EventVerificationFailed,
			Source:  "coordinator",
			UserID:  userID,
			EventID: eventID,
			Outcome: "invalid_or_expired_code",
		})
		c.metrics.verify(ctx, "invalid_or_expired_code")
		return nil, ErrInvalidOrExpiredCode
	}
	if err != nil {
		return nil, c.storageErr("find challenge", err)
	}
	if _, err := c.catalogCapacity(ctx, eventID); err != nil {
		if errors.Is(err, ErrEventNotFound) {
			c.reject(ctx, userID, eventID, domain.NotFound.String(), domain.Snapshot{EventID: eventID})
			c.metrics.verify(ctx, domain.NotFound.String())
		}
		return nil, err
	}

	res, err := c.store.TryAdd(ctx, eventID, userID)
	if err != nil {
		return nil, c.storageErr("try add", err)
	}
	c.metrics.verify(ctx, res.Outcome.String())

	switch res.Outcome {
	case domain.Added:
		if err := c.challenges.MarkVerified(ctx, ch.ID); err != nil {
			// The membership is committed; the challenge can no longer admit anyone twice.
			log.Printf("reservation: mark verified %s: %v", ch.ID, err)
		}
		if c.devCodes != nil {
			c.devCodes.Delete(ctx, ch.ID)
		}
		if c.notifier != nil {
			c.notifier.DispatchConfirmation(userID, eventID)
		}
		c.logAudit(ctx, userID, eventID, audit.ActionConfirmed, "challenge_id", ch.ID)
		telemetry.EmitAsync(c.events, &telemetry.Event{
			Type:        telemetry.EventReservationConfirmed,
			Source:      "coordinator",
			UserID:      userID,
			EventID:     eventID,
			ChallengeID: ch.ID,
			Outcome:     res.Outcome.String(),
			Attendees:   res.Snapshot.AttendeeCount,
			Capacity:    res.Snapshot.Capacity,
		})
		return &VerifyResult{Snapshot: res.Snapshot}, nil
	case domain.AlreadyMember:
		c.reject(ctx, userID, eventID, res.Outcome.String(), res.Snapshot)
		return nil, ErrAlreadyRegistered
	case domain.CapacityExceeded:
		// A lost race is terminal for this challenge only; a newer request for the pair stays live.
		if err := c.challenges.Retire(ctx, ch.ID); err != nil {
			log.Printf("reservation: retire %s after capacity race: %v", ch.ID, err)
		}
		if c.devCodes != nil {
			c.devCodes.Delete(ctx, ch.ID)
		}
		c.reject(ctx, userID, eventID, res.Outcome.String(), res.Snapshot)
		return nil, ErrCapacityExceeded
	default:
		c.reject(ctx, userID, eventID, res.Outcome.String(), res.Snapshot)
		return nil, ErrEventNotFound
	}
}

// CancelReservation releases the caller's spot and drops any pending challenge. It succeeds whether or
// not the caller held a spot; only an unknown event is an error.
func (c *Coordinator) CancelReservation(ctx context.Context, userID, eventID string) error {
	userID, eventID, err := normalizeIDs(userID, eventID)
	if err != nil {
		return err
	}
	snap, err := c.snapshot(ctx, eventID)
	if err != nil {
		c.metrics.cancel(ctx, outcomeOf(err))
		return err
	}
	outcome, err := c.store.Remove(ctx, eventID, userID)
	if errors.Is(err, attendancerepo.ErrEventNotFound) {
		c.metrics.cancel(ctx, domain.NotFound.String())
		return ErrEventNotFound
	}
	if err != nil {
		return c.storageErr("remove", err)
	}
	if err := c.challenges.InvalidateAll(ctx, userID, eventID); err != nil {
		log.Printf("reservation: invalidate on cancel %s/%s: %v", userID, eventID, err)
	}
	if c.devCodes != nil {
		c.devCodes.Invalidate(ctx, userID, eventID)
	}
	c.metrics.cancel(ctx, outcome.String())

	if outcome == domain.Removed {
		snap.AttendeeCount--
		c.logAudit(ctx, userID, eventID, audit.ActionCancelled, "outcome", outcome.String())
		telemetry.EmitAsync(c.events, &telemetry.Event{
			Type:      telemetry.EventReservationCancelled,
			Source:    "coordinator",
			UserID:    userID,
			EventID:   eventID,
			Outcome:   outcome.String(),
			Attendees: snap.AttendeeCount,
			Capacity:  snap.Capacity,
		})
	}
	return nil
}

// Attendance returns the event's snapshot and attendees in join order. userID is optional; when set,
// Registered reports whether that user holds a spot.
func (c *Coordinator) Attendance(ctx context.Context, eventID, userID string) (*AttendanceView, error) {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return nil, ErrInvalidArgument
	}
	snap, err := c.snapshot(ctx, eventID)
	if err != nil {
		return nil, err
	}
	attendees, err := c.store.ListAttendees(ctx, eventID)
	if err != nil {
		return nil, c.storageErr("list attendees", err)
	}
	view := &AttendanceView{Snapshot: snap, Attendees: attendees}
	if userID = strings.TrimSpace(userID); userID != "" {
		for _, a := range attendees {
			if a.UserID == userID {
				view.Registered = true
				break
			}
		}
	}
	return view, nil
}

// SyncCapacity applies the catalog's current capacity to the event's attendance record, creating the
// record if needed. A capacity below the current attendee count is refused.
func (c *Coordinator) SyncCapacity(ctx context.Context, eventID string) error {
	eventID = strings.TrimSpace(eventID)
	if eventID == "" {
		return ErrInvalidArgument
	}
	capacity, err := c.catalogCapacity(ctx, eventID)
	if err != nil {
		return err
	}
	err = c.store.Resize(ctx, eventID, capacity)
	if errors.Is(err, attendancerepo.ErrEventNotFound) {
		err = c.store.Ensure(ctx, eventID, capacity)
	}
	if err != nil {
		return fmt.Errorf("reservation: sync capacity: %w", err)
	}
	return nil
}

// catalogCapacity asks the catalog whether the event still exists. An attendance record can outlive its
// event in stores that are not cascaded from the catalog (Redis), so the catalog is the authority.
func (c *Coordinator) catalogCapacity(ctx context.Context, eventID string) (int, error) {
	capacity, err := c.catalog.GetCapacity(ctx, eventID)
	if errors.Is(err, catalog.ErrEventNotFound) {
		return 0, ErrEventNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("reservation: catalog lookup: %w", err)
	}
	return capacity, nil
}

// snapshot checks the event against the catalog and reads its attendance record, creating the record
// on first use.
func (c *Coordinator) snapshot(ctx context.Context, eventID string) (domain.Snapshot, error) {
	capacity, err := c.catalogCapacity(ctx, eventID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snap, err := c.store.Get(ctx, eventID)
	if err == nil {
		return snap, nil
	}
	if !errors.Is(err, attendancerepo.ErrEventNotFound) {
		return domain.Snapshot{}, c.storageErr("get attendance", err)
	}
	if err := c.store.Ensure(ctx, eventID, capacity); err != nil {
		return domain.Snapshot{}, c.storageErr("ensure attendance", err)
	}
	snap, err = c.store.Get(ctx, eventID)
	if errors.Is(err, attendancerepo.ErrEventNotFound) {
		return domain.Snapshot{}, ErrEventNotFound
	}
	if err != nil {
		return domain.Snapshot{}, c.storageErr("get attendance", err)
	}
	return snap, nil
}

func (c *Coordinator) reject(ctx context.Context, userID, eventID, outcome string, snap domain.Snapshot) {
	c.logAudit(ctx, userID, eventID, audit.ActionRejected, "outcome", outcome)
	telemetry.EmitAsync(c.events, &telemetry.Event{
		Type:      telemetry.EventReservationRejected,
		Source:    "coordinator",
		UserID:    userID,
		EventID:   eventID,
		Outcome:   outcome,
		Attendees: snap.AttendeeCount,
		Capacity:  snap.Capacity,
	})
}

func (c *Coordinator) logAudit(ctx context.Context, userID, eventID, action, key, value string) {
	if c.audit == nil {
		return
	}
	meta, _ := json.Marshal(map[string]string{key: value})
	c.audit.LogEvent(ctx, userID, eventID, action, string(meta))
}

func (c *Coordinator) storageErr(op string, err error) error {
	return fmt.Errorf("reservation: %s: %w", op, err)
}

func normalizeIDs(userID, eventID string) (string, string, error) {
	userID = strings.TrimSpace(userID)
	eventID = strings.TrimSpace(eventID)
	if userID == "" || eventID == "" {
		return "", "", ErrInvalidArgument
	}
	return userID, eventID, nil
}

func outcomeOf(err error) string {
	if errors.Is(err, ErrEventNotFound) {
		return domain.NotFound.String()
	}
	return "error"
}

type coordinatorMetrics struct {
	requests      metric.Int64Counter
	verifications metric.Int64Counter
	cancellations metric.Int64Counter
}

func newCoordinatorMetrics(meter metric.Meter) *coordinatorMetrics {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("")
	}
	m := &coordinatorMetrics{}
	var err error
	if m.requests, err = meter.Int64Counter("rsvp.reservation.requests",
		metric.WithDescription("Reservation requests by outcome")); err != nil {
		log.Printf("reservation: requests counter: %v", err)
		m.requests, _ = noop.NewMeterProvider().Meter("").Int64Counter("rsvp.reservation.requests")
	}
	if m.verifications, err = meter.Int64Counter("rsvp.reservation.verifications",
		metric.WithDescription("Reservation verifications by outcome")); err != nil {
		log.Printf("reservation: verifications counter: %v", err)
		m.verifications, _ = noop.NewMeterProvider().Meter("").Int64Counter("rsvp.reservation.verifications")
	}
	if m.cancellations, err = meter.Int64Counter("rsvp.reservation.cancellations",
		metric.WithDescription("Reservation cancellations by outcome")); err != nil {
		log.Printf("reservation: cancellations counter: %v", err)
		m.cancellations, _ = noop.NewMeterProvider().Meter("").Int64Counter("rsvp.reservation.cancellations")
	}
	return m
}

func (m *coordinatorMetrics) request(ctx context.Context, outcome string) {
	m.requests.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *coordinatorMetrics) verify(ctx context.Context, outcome string) {
	m.verifications.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func (m *coordinatorMetrics) cancel(ctx context.Context, outcome string) {
	m.cancellations.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
