package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"event-rsvp/backend/internal/challenge/domain"
)

var suiteNow = time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)

func newChallenge(userID, eventID, hash string, expiresAt time.Time) *domain.Challenge {
	return &domain.Challenge{
		ID:        uuid.NewString(),
		UserID:    userID,
		EventID:   eventID,
		CodeHash:  hash,
		CreatedAt: suiteNow,
		ExpiresAt: expiresAt,
	}
}

// runRepositorySuite exercises behavior shared by every Repository. Each subtest gets a fresh
// namespace from newRepo so user and event IDs never collide with earlier runs.
func runRepositorySuite(t *testing.T, newRepo func(t *testing.T) (Repository, string)) {
	t.Helper()
	ctx := context.Background()
	live := suiteNow.Add(DefaultChallengeTTL)

	t.Run("FindLive_Match", func(t *testing.T) {
		repo, ns := newRepo(t)
		c := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		if err := repo.Replace(ctx, c); err != nil {
			t.Fatalf("Replace: %v", err)
		}
		got, err := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", suiteNow)
		if err != nil {
			t.Fatalf("FindLive: %v", err)
		}
		if got == nil || got.ID != c.ID {
			t.Fatalf("FindLive = %+v, want %s", got, c.ID)
		}
		for _, miss := range []struct{ user, event, hash string }{
			{ns + "u1", ns + "e1", "hash-b"},
			{ns + "u2", ns + "e1", "hash-a"},
			{ns + "u1", ns + "e2", "hash-a"},
		} {
			got, err := repo.FindLive(ctx, miss.user, miss.event, miss.hash, suiteNow)
			if err != nil || got != nil {
				t.Errorf("FindLive(%v) = %+v, %v; want nil", miss, got, err)
			}
		}
	})

	t.Run("FindLive_Expired", func(t *testing.T) {
		repo, ns := newRepo(t)
		c := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		_ = repo.Replace(ctx, c)
		got, err := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", live)
		if err != nil || got != nil {
			t.Errorf("FindLive at expiry = %+v, %v; want nil", got, err)
		}
		got, err = repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", live.Add(-time.Second))
		if err != nil || got == nil {
			t.Errorf("FindLive before expiry = %+v, %v; want challenge", got, err)
		}
	})

	t.Run("Replace_Supersedes", func(t *testing.T) {
		repo, ns := newRepo(t)
		first := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		second := newChallenge(ns+"u1", ns+"e1", "hash-b", live)
		other := newChallenge(ns+"u1", ns+"e2", "hash-a", live)
		for _, c := range []*domain.Challenge{first, other, second} {
			if err := repo.Replace(ctx, c); err != nil {
				t.Fatalf("Replace: %v", err)
			}
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", suiteNow); got != nil {
			t.Errorf("superseded challenge still live: %+v", got)
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-b", suiteNow); got == nil || got.ID != second.ID {
			t.Errorf("FindLive(second) = %+v, want %s", got, second.ID)
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e2", "hash-a", suiteNow); got == nil {
			t.Error("challenge for another event must not be superseded")
		}
	})

	t.Run("Replace_ConcurrentLeavesOne", func(t *testing.T) {
		repo, ns := newRepo(t)
		const n = 10
		hashes := make([]string, n)
		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			hashes[i] = uuid.NewString()
			wg.Add(1)
			go func(h string) {
				defer wg.Done()
				if err := repo.Replace(ctx, newChallenge(ns+"u1", ns+"e1", h, live)); err != nil {
					t.Errorf("Replace: %v", err)
				}
			}(hashes[i])
		}
		wg.Wait()
		liveCount := 0
		for _, h := range hashes {
			if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", h, suiteNow); got != nil {
				liveCount++
			}
		}
		if liveCount != 1 {
			t.Errorf("live challenges = %d, want 1", liveCount)
		}
	})

	t.Run("MarkVerified_OneWay", func(t *testing.T) {
		repo, ns := newRepo(t)
		c := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		_ = repo.Replace(ctx, c)
		if err := repo.MarkVerified(ctx, c.ID, suiteNow); err != nil {
			t.Fatalf("MarkVerified: %v", err)
		}
		if err := repo.MarkVerified(ctx, c.ID, suiteNow); !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("second MarkVerified err = %v, want ErrAlreadyVerified", err)
		}
		if err := repo.MarkVerified(ctx, uuid.NewString(), suiteNow); !errors.Is(err, ErrNotFound) {
			t.Errorf("MarkVerified(unknown) err = %v, want ErrNotFound", err)
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", suiteNow); got != nil {
			t.Error("verified challenge must not be live")
		}
		// A new issue after verification does not resurrect or delete the verified one.
		next := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		_ = repo.Replace(ctx, next)
		if err := repo.MarkVerified(ctx, c.ID, suiteNow); !errors.Is(err, ErrAlreadyVerified) {
			t.Errorf("MarkVerified after reissue err = %v, want ErrAlreadyVerified", err)
		}
	})

	t.Run("InvalidateAll", func(t *testing.T) {
		repo, ns := newRepo(t)
		_ = repo.Replace(ctx, newChallenge(ns+"u1", ns+"e1", "hash-a", live))
		n, err := repo.InvalidateAll(ctx, ns+"u1", ns+"e1")
		if err != nil {
			t.Fatalf("InvalidateAll: %v", err)
		}
		if n != 1 {
			t.Errorf("invalidated = %d, want 1", n)
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", suiteNow); got != nil {
			t.Error("invalidated challenge still live")
		}
		n, _ = repo.InvalidateAll(ctx, ns+"u1", ns+"e1")
		if n != 0 {
			t.Errorf("second InvalidateAll = %d, want 0", n)
		}
	})

	t.Run("Retire", func(t *testing.T) {
		repo, ns := newRepo(t)
		c := newChallenge(ns+"u1", ns+"e1", "hash-a", live)
		other := newChallenge(ns+"u2", ns+"e1", "hash-b", live)
		_ = repo.Replace(ctx, c)
		_ = repo.Replace(ctx, other)

		removed, err := repo.Retire(ctx, c.ID)
		if err != nil {
			t.Fatalf("Retire: %v", err)
		}
		if !removed {
			t.Error("Retire should report the pending challenge as removed")
		}
		if got, _ := repo.FindLive(ctx, ns+"u1", ns+"e1", "hash-a", suiteNow); got != nil {
			t.Error("retired challenge still live")
		}
		if got, _ := repo.FindLive(ctx, ns+"u2", ns+"e1", "hash-b", suiteNow); got == nil {
			t.Error("Retire removed another user's challenge")
		}
		if removed, _ := repo.Retire(ctx, c.ID); removed {
			t.Error("second Retire should remove nothing")
		}

		verified := newChallenge(ns+"u3", ns+"e1", "hash-c", live)
		_ = repo.Replace(ctx, verified)
		_ = repo.MarkVerified(ctx, verified.ID, suiteNow)
		if removed, _ := repo.Retire(ctx, verified.ID); removed {
			t.Error("Retire must not delete a verified challenge")
		}
	})

	t.Run("DeleteExpired", func(t *testing.T) {
		repo, ns := newRepo(t)
		old := newChallenge(ns+"u1", ns+"e1", "hash-a", suiteNow.Add(-time.Minute))
		fresh := newChallenge(ns+"u2", ns+"e1", "hash-b", live)
		_ = repo.Replace(ctx, old)
		_ = repo.Replace(ctx, fresh)
		if _, err := repo.DeleteExpired(ctx, suiteNow); err != nil {
			t.Fatalf("DeleteExpired: %v", err)
		}
		if err := repo.MarkVerified(ctx, old.ID, suiteNow); !errors.Is(err, ErrNotFound) {
			t.Errorf("expired challenge should be gone, MarkVerified err = %v", err)
		}
		if got, _ := repo.FindLive(ctx, ns+"u2", ns+"e1", "hash-b", suiteNow); got == nil {
			t.Error("unexpired challenge must survive DeleteExpired")
		}
	})
}
