package repository

import (
	"context"
	"testing"
	"time"
)

func TestMemoryRepository(t *testing.T) {
	runRepositorySuite(t, func(t *testing.T) (Repository, string) {
		return NewMemoryRepository(), ""
	})
}

func TestMemoryRepository_FindLiveReturnsCopy(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	c := newChallenge("u1", "e1", "hash-a", suiteNow.Add(time.Minute))
	_ = repo.Replace(ctx, c)

	got, _ := repo.FindLive(ctx, "u1", "e1", "hash-a", suiteNow)
	got.Verified = true
	c.Verified = true

	if again, _ := repo.FindLive(ctx, "u1", "e1", "hash-a", suiteNow); again == nil {
		t.Error("mutating returned or caller-owned challenge must not affect stored state")
	}
	if repo.Len() != 1 {
		t.Errorf("Len = %d, want 1", repo.Len())
	}
}
