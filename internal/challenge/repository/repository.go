package repository

import (
	"context"
	"errors"
	"time"

	"event-rsvp/backend/internal/challenge/domain"
)

var (
	// ErrNotFound is returned by MarkVerified when the challenge does not exist.
	ErrNotFound = errors.New("challenge: not found")
	// ErrAlreadyVerified is returned by MarkVerified when the challenge was verified before.
	ErrAlreadyVerified = errors.New("challenge: already verified")
)

// Repository defines persistence for OTP challenges.
type Repository interface {
	// Replace persists c and deletes every older unverified challenge for the same (user, event) pair.
	// Concurrent calls for one pair leave exactly one unverified challenge: the one persisted last.
	Replace(ctx context.Context, c *domain.Challenge) error
	// FindLive returns the unverified challenge for (userID, eventID, codeHash) that expires after now,
	// or nil if there is none.
	FindLive(ctx context.Context, userID, eventID, codeHash string, now time.Time) (*domain.Challenge, error)
	// MarkVerified flips verified from false to true.
	MarkVerified(ctx context.Context, id string, at time.Time) error
	// InvalidateAll deletes every unverified challenge for the pair and returns how many were removed.
	InvalidateAll(ctx context.Context, userID, eventID string) (int64, error)
	// Retire deletes the unverified challenge id and reports whether one was removed. Other challenges for
	// the same pair are untouched.
	Retire(ctx context.Context, id string) (bool, error)
	// DeleteExpired deletes challenges whose expiry is at or before the given time.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// DefaultChallengeTTL is the default challenge expiry.
const DefaultChallengeTTL = 10 * time.Minute
