package repository

import (
	"context"
	"crypto/subtle"
	"sync"
	"time"

	"event-rsvp/backend/internal/challenge/domain"
)

// MemoryRepository is an in-memory Repository.
type MemoryRepository struct {
	mu   sync.Mutex
	byID map[string]*domain.Challenge
}

// NewMemoryRepository returns an empty in-memory challenge repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]*domain.Challenge)}
}

// Replace stores c and drops older unverified challenges for the pair under one lock.
func (r *MemoryRepository) Replace(ctx context.Context, c *domain.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, mc := range r.byID {
		if mc.UserID == c.UserID && mc.EventID == c.EventID && !mc.Verified {
			delete(r.byID, id)
		}
	}
	stored := *c
	r.byID[c.ID] = &stored
	return nil
}

// FindLive returns a copy of the matching live challenge or nil.
func (r *MemoryRepository) FindLive(ctx context.Context, userID, eventID, codeHash string, now time.Time) (*domain.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, mc := range r.byID {
		if mc.UserID != userID || mc.EventID != eventID {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(mc.CodeHash), []byte(codeHash)) != 1 {
			continue
		}
		if !mc.Live(now) {
			continue
		}
		out := *mc
		return &out, nil
	}
	return nil, nil
}

// MarkVerified sets verified once.
func (r *MemoryRepository) MarkVerified(ctx context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	mc, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if mc.Verified {
		return ErrAlreadyVerified
	}
	mc.Verified = true
	mc.VerifiedAt = &at
	return nil
}

// InvalidateAll deletes unverified challenges for the pair.
func (r *MemoryRepository) InvalidateAll(ctx context.Context, userID, eventID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, mc := range r.byID {
		if mc.UserID == userID && mc.EventID == eventID && !mc.Verified {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// Retire deletes the unverified challenge id.
func (r *MemoryRepository) Retire(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mc, ok := r.byID[id]
	if !ok || mc.Verified {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

// DeleteExpired deletes challenges expiring at or before the given time.
func (r *MemoryRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, mc := range r.byID {
		if !mc.ExpiresAt.After(before) {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored challenges (verified or not).
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
