package repository

import (
	"context"
	"sync"
	"time"

	"event-rsvp/backend/internal/attendance/domain"
)

type memoryEvent struct {
	mu       sync.Mutex
	capacity int
	members  map[string]time.Time
	order    []string
}

// MemoryStore is an in-memory Store. Each event carries its own mutex, so TryAdd on one event never
// waits on another; the outer lock only guards the event index.
type MemoryStore struct {
	mu     sync.RWMutex
	events map[string]*memoryEvent
	nowF   func() time.Time
}

// NewMemoryStore returns an empty in-memory attendance store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		events: make(map[string]*memoryEvent),
		nowF:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *MemoryStore) event(eventID string) *memoryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.events[eventID]
}

// TryAdd holds the event's lock across the predicate and the insert.
func (s *MemoryStore) TryAdd(ctx context.Context, eventID, userID string) (domain.AddResult, error) {
	e := s.event(eventID)
	if e == nil {
		return domain.AddResult{Outcome: domain.NotFound}, nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	res := domain.AddResult{Snapshot: domain.Snapshot{EventID: eventID, Capacity: e.capacity}}
	switch {
	case hasMember(e, userID):
		res.Outcome = domain.AlreadyMember
	case len(e.members) >= e.capacity:
		res.Outcome = domain.CapacityExceeded
	default:
		e.members[userID] = s.nowF()
		e.order = append(e.order, userID)
		res.Outcome = domain.Added
	}
	res.Snapshot.AttendeeCount = len(e.members)
	return res, nil
}

func hasMember(e *memoryEvent, userID string) bool {
	_, ok := e.members[userID]
	return ok
}

// Remove releases userID's spot if held.
func (s *MemoryStore) Remove(ctx context.Context, eventID, userID string) (domain.RemoveOutcome, error) {
	e := s.event(eventID)
	if e == nil {
		return domain.NotMember, ErrEventNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if !hasMember(e, userID) {
		return domain.NotMember, nil
	}
	delete(e.members, userID)
	for i, id := range e.order {
		if id == userID {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return domain.Removed, nil
}

// Get returns the event's current capacity and attendee count.
func (s *MemoryStore) Get(ctx context.Context, eventID string) (domain.Snapshot, error) {
	e := s.event(eventID)
	if e == nil {
		return domain.Snapshot{}, ErrEventNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return domain.Snapshot{EventID: eventID, Capacity: e.capacity, AttendeeCount: len(e.members)}, nil
}

// IsMember reports whether userID holds a spot.
func (s *MemoryStore) IsMember(ctx context.Context, eventID, userID string) (bool, error) {
	e := s.event(eventID)
	if e == nil {
		return false, ErrEventNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return hasMember(e, userID), nil
}

// Ensure creates the record if missing; an existing record keeps its capacity.
func (s *MemoryStore) Ensure(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.events[eventID]; ok {
		return nil
	}
	s.events[eventID] = &memoryEvent{capacity: capacity, members: make(map[string]time.Time)}
	return nil
}

// Resize changes the capacity unless it would drop below the attendee count.
func (s *MemoryStore) Resize(ctx context.Context, eventID string, capacity int) error {
	if capacity < 1 {
		return ErrInvalidCapacity
	}
	e := s.event(eventID)
	if e == nil {
		return ErrEventNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if capacity < len(e.members) {
		return ErrCapacityBelowAttendance
	}
	e.capacity = capacity
	return nil
}

// ListAttendees returns attendees in join order.
func (s *MemoryStore) ListAttendees(ctx context.Context, eventID string) ([]domain.Attendee, error) {
	e := s.event(eventID)
	if e == nil {
		return nil, ErrEventNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.Attendee, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, domain.Attendee{UserID: id, JoinedAt: e.members[id]})
	}
	return out, nil
}
