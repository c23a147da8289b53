// Package devotp keeps plain verification codes by challenge ID for dev code mode (DevService GetCode).
// Never enabled in production.
package devotp

import (
	"context"
	"sync"
	"time"
)

// Entry is a dev-visible code and the reservation it was issued for.
type Entry struct {
	UserID  string
	EventID string
	Code    string
}

// Store holds plain codes by challenge ID for dev-only retrieval.
type Store interface {
	// Put stores the code issued to userID for eventID under challengeID until expiresAt. Any other
	// entry for the same user and event is dropped, matching challenge supersession.
	Put(ctx context.Context, challengeID, userID, eventID, code string, expiresAt time.Time)
	// Get returns the entry for challengeID if present and not expired.
	Get(ctx context.Context, challengeID string) (Entry, bool)
	// Delete drops challengeID (e.g. once it is verified).
	Delete(ctx context.Context, challengeID string)
	// Invalidate drops every entry for the user and event (e.g. on cancel).
	Invalidate(ctx context.Context, userID, eventID string)
}

type entry struct {
	Entry
	expiresAt time.Time
}

// MemoryStore is an in-memory Store. Expired entries are dropped on read and on every Put.
type MemoryStore struct {
	mu   sync.Mutex
	m    map[string]entry
	nowF func() time.Time
}

// NewMemoryStore returns a new in-memory dev code store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		m:    make(map[string]entry),
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock replaces the clock used for expiry. For tests.
func (s *MemoryStore) SetClock(nowF func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowF = nowF
}

// Put stores code for challengeID until expiresAt, replacing older codes for the pair.
func (s *MemoryStore) Put(ctx context.Context, challengeID, userID, eventID, code string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowF()
	for id, e := range s.m {
		if !e.expiresAt.After(now) || (e.UserID == userID && e.EventID == eventID) {
			delete(s.m, id)
		}
	}
	s.m[challengeID] = entry{Entry: Entry{UserID: userID, EventID: eventID, Code: code}, expiresAt: expiresAt}
}

// Get returns the entry for challengeID if present and not expired.
func (s *MemoryStore) Get(ctx context.Context, challengeID string) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[challengeID]
	if !ok {
		return Entry{}, false
	}
	if !e.expiresAt.After(s.nowF()) {
		delete(s.m, challengeID)
		return Entry{}, false
	}
	return e.Entry, true
}

// Delete drops challengeID.
func (s *MemoryStore) Delete(ctx context.Context, challengeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, challengeID)
}

// Invalidate drops every entry for userID and eventID.
func (s *MemoryStore) Invalidate(ctx context.Context, userID, eventID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.m {
		if e.UserID == userID && e.EventID == eventID {
			delete(s.m, id)
		}
	}
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}
