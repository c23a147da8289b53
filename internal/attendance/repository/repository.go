package repository

import (
	"context"
	"errors"

	"event-rsvp/backend/internal/attendance/domain"
)

var (
	// ErrEventNotFound is returned when no attendance record exists for the event.
	ErrEventNotFound = errors.New("attendance: event not found")
	// ErrCapacityBelowAttendance is returned by Resize when the new capacity is below the current attendee count.
	ErrCapacityBelowAttendance = errors.New("attendance: capacity below current attendee count")
	// ErrInvalidCapacity is returned when a capacity is not a positive integer.
	ErrInvalidCapacity = errors.New("attendance: capacity must be at least 1")
)

// Store owns the attendee set and capacity of each event. It is the only writer of membership.
//
// TryAdd is the single enforcement point of the capacity invariant: existence, absence of the user,
// and count < capacity are evaluated and the insert applied as one indivisible step. Implementations
// scope that step per event so that different events never contend.
type Store interface {
	// TryAdd inserts userID into the event's attendee set if the event exists, the user is absent,
	// and a spot is free. Conflicts are reported through the outcome, not as errors.
	TryAdd(ctx context.Context, eventID, userID string) (domain.AddResult, error)
	// Remove releases userID's spot if held. Returns ErrEventNotFound when no record exists.
	Remove(ctx context.Context, eventID, userID string) (domain.RemoveOutcome, error)
	// Get returns a display snapshot. Returns ErrEventNotFound when no record exists.
	Get(ctx context.Context, eventID string) (domain.Snapshot, error)
	// IsMember reports whether userID currently holds a spot. Returns ErrEventNotFound when no record exists.
	IsMember(ctx context.Context, eventID, userID string) (bool, error)
	// Ensure creates the attendance record with the given capacity if it does not exist yet.
	Ensure(ctx context.Context, eventID string, capacity int) error
	// Resize sets a new capacity; it never drops below the current attendee count.
	Resize(ctx context.Context, eventID string, capacity int) error
	// ListAttendees returns the attendee set in join order.
	ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error)
}
