// Package domain holds the attendance record of an event: its capacity and the set of users holding a spot.
package domain

import "time"

// AddOutcome is the result of a conditional membership insert.
type AddOutcome int

const (
	// NotFound means no attendance record exists for the event.
	NotFound AddOutcome = iota
	// Added means the user now holds a spot.
	Added
	// AlreadyMember means the user already held a spot; nothing changed.
	AlreadyMember
	// CapacityExceeded means every spot was taken when the insert was evaluated.
	CapacityExceeded
)

func (o AddOutcome) String() string {
	switch o {
	case Added:
		return "added"
	case AlreadyMember:
		return "already_member"
	case CapacityExceeded:
		return "capacity_exceeded"
	default:
		return "not_found"
	}
}

// RemoveOutcome is the result of removing a membership.
type RemoveOutcome int

const (
	// NotMember means the user held no spot; nothing changed.
	NotMember RemoveOutcome = iota
	// Removed means the user's spot was released.
	Removed
)

func (o RemoveOutcome) String() string {
	if o == Removed {
		return "removed"
	}
	return "not_member"
}

// Snapshot is a read-only view of an event's attendance. It is for display and must never gate a write.
type Snapshot struct {
	EventID       string
	Capacity      int
	AttendeeCount int
}

// Available returns the number of free spots, never negative.
func (s Snapshot) Available() int {
	if n := s.Capacity - s.AttendeeCount; n > 0 {
		return n
	}
	return 0
}

// Full reports whether no spot is free.
func (s Snapshot) Full() bool {
	return s.AttendeeCount >= s.Capacity
}

// AddResult is the outcome of TryAdd together with the attendance observed inside the same atomic step.
// Snapshot is zero when Outcome is NotFound.
type AddResult struct {
	Outcome  AddOutcome
	Snapshot Snapshot
}

// Attendee is one member of an event's attendee set.
type Attendee struct {
	UserID   string
	JoinedAt time.Time
}
