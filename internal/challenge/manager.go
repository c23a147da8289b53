package challenge

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"event-rsvp/backend/internal/challenge/domain"
	"event-rsvp/backend/internal/challenge/repository"
)

var (
	// ErrNotFound is returned when no live challenge matches, whatever the reason
	// (wrong code, expired, superseded, already verified, or never issued).
	ErrNotFound = errors.New("challenge: no live challenge")
	// ErrAlreadyVerified is returned by MarkVerified on a second call.
	ErrAlreadyVerified = repository.ErrAlreadyVerified
)

// Manager issues, looks up, and retires OTP challenges.
type Manager struct {
	repo     repository.Repository
	ttl      time.Duration
	nowF     func() time.Time
	generate func() (string, error)
}

// NewManager returns a Manager over repo. A non-positive ttl uses repository.DefaultChallengeTTL.
func NewManager(repo repository.Repository, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = repository.DefaultChallengeTTL
	}
	return &Manager{
		repo:     repo,
		ttl:      ttl,
		nowF:     func() time.Time { return time.Now().UTC() },
		generate: GenerateCode,
	}
}

// SetClock replaces the time source used for issue, lookup, and purge.
func (m *Manager) SetClock(nowF func() time.Time) {
	if nowF != nil {
		m.nowF = nowF
	}
}

// TTL returns the challenge lifetime.
func (m *Manager) TTL() time.Duration { return m.ttl }

// Issue creates a fresh challenge for the pair and supersedes any earlier live one.
// The plain code is returned to the caller for delivery and is not stored.
func (m *Manager) Issue(ctx context.Context, userID, eventID string) (*domain.Challenge, string, error) {
	code, err := m.generate()
	if err != nil {
		return nil, "", fmt.Errorf("challenge: generate code: %w", err)
	}
	now := m.nowF()
	c := &domain.Challenge{
		ID:        uuid.New().String(),
		UserID:    userID,
		EventID:   eventID,
		CodeHash:  HashCode(code),
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.repo.Replace(ctx, c); err != nil {
		return nil, "", fmt.Errorf("challenge: persist: %w", err)
	}
	return c, code, nil
}

// FindLive returns the live challenge matching the pair and code, or ErrNotFound.
// It never modifies the challenge, so a wrong guess leaves the real one usable.
func (m *Manager) FindLive(ctx context.Context, userID, eventID, code string) (*domain.Challenge, error) {
	c, err := m.repo.FindLive(ctx, userID, eventID, HashCode(code), m.nowF())
	if err != nil {
		return nil, fmt.Errorf("challenge: lookup: %w", err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

// MarkVerified retires the challenge. Returns ErrAlreadyVerified on a second call and ErrNotFound
// when the challenge does not exist.
func (m *Manager) MarkVerified(ctx context.Context, challengeID string) error {
	err := m.repo.MarkVerified(ctx, challengeID, m.nowF())
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrAlreadyVerified):
		return ErrAlreadyVerified
	default:
		return fmt.Errorf("challenge: mark verified: %w", err)
	}
}

// InvalidateAll removes every pending challenge for the pair.
func (m *Manager) InvalidateAll(ctx context.Context, userID, eventID string) error {
	if _, err := m.repo.InvalidateAll(ctx, userID, eventID); err != nil {
		return fmt.Errorf("challenge: invalidate: %w", err)
	}
	return nil
}

// Retire removes one pending challenge, leaving any newer challenge for the pair live.
func (m *Manager) Retire(ctx context.Context, challengeID string) error {
	if _, err := m.repo.Retire(ctx, challengeID); err != nil {
		return fmt.Errorf("challenge: retire: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired challenges. Expiry is already enforced at lookup; this only reclaims storage.
func (m *Manager) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := m.repo.DeleteExpired(ctx, m.nowF())
	if err != nil {
		return 0, fmt.Errorf("challenge: purge: %w", err)
	}
	return n, nil
}

// RunSweeper calls PurgeExpired every interval until ctx is done. A non-positive interval returns immediately.
func (m *Manager) RunSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := m.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("challenge sweeper: %v", err)
				}
				continue
			}
			if n > 0 {
				log.Printf("challenge sweeper: purged %d expired challenges", n)
			}
		}
	}
}
