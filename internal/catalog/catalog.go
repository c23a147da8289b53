// Package catalog is the read side of the event catalog: whether an event exists and how many spots it has.
// Titles, descriptions, and images live in the catalog service and are not modeled here.
package catalog

import (
	"context"
	"errors"
	"sync"
)

// ErrEventNotFound is returned when the catalog does not know the event.
var ErrEventNotFound = errors.New("catalog: event not found")

// ErrInvalidCapacity is returned by Upsert when capacity is not a positive integer.
var ErrInvalidCapacity = errors.New("catalog: capacity must be at least 1")

// EventCatalog answers capacity lookups for the reservation core.
type EventCatalog interface {
	GetCapacity(ctx context.Context, eventID string) (int, error)
}

// Event is a catalog entry as seen by this service.
type Event struct {
	ID       string
	Title    string
	Capacity int
}

// MemoryCatalog is an in-memory EventCatalog, used in dev mode and tests.
type MemoryCatalog struct {
	mu     sync.RWMutex
	events map[string]Event
}

// NewMemoryCatalog returns a catalog seeded with event ID → capacity.
func NewMemoryCatalog(seed map[string]int) *MemoryCatalog {
	c := &MemoryCatalog{events: make(map[string]Event, len(seed))}
	for id, capacity := range seed {
		c.events[id] = Event{ID: id, Capacity: capacity}
	}
	return c
}

// GetCapacity returns the event's capacity or ErrEventNotFound.
func (c *MemoryCatalog) GetCapacity(ctx context.Context, eventID string) (int, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.events[eventID]
	if !ok {
		return 0, ErrEventNotFound
	}
	return e.Capacity, nil
}

// Upsert creates or replaces an event.
func (c *MemoryCatalog) Upsert(ctx context.Context, e Event) error {
	if e.Capacity < 1 {
		return ErrInvalidCapacity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events[e.ID] = e
	return nil
}

// Delete removes an event. Deleting an unknown event is a no-op.
func (c *MemoryCatalog) Delete(ctx context.Context, eventID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.events, eventID)
}
