package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"event-rsvp/backend/internal/attendance/domain"
)

// runStoreSuite exercises behavior every Store implementation must share.
// newStore must return an empty store; event IDs are unique per subtest.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("TryAdd_NotFound", func(t *testing.T) {
		s := newStore(t)
		res, err := s.TryAdd(ctx, "missing", "u1")
		if err != nil {
			t.Fatalf("TryAdd: %v", err)
		}
		if res.Outcome != domain.NotFound {
			t.Errorf("outcome = %v, want not_found", res.Outcome)
		}
	})

	t.Run("TryAdd_Outcomes", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ensure(ctx, "evt-a", 2); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		steps := []struct {
			user  string
			want  domain.AddOutcome
			count int
		}{
			{"u1", domain.Added, 1},
			{"u1", domain.AlreadyMember, 1},
			{"u2", domain.Added, 2},
			{"u3", domain.CapacityExceeded, 2},
			{"u2", domain.AlreadyMember, 2},
		}
		for _, st := range steps {
			res, err := s.TryAdd(ctx, "evt-a", st.user)
			if err != nil {
				t.Fatalf("TryAdd(%s): %v", st.user, err)
			}
			if res.Outcome != st.want {
				t.Errorf("TryAdd(%s) outcome = %v, want %v", st.user, res.Outcome, st.want)
			}
			if res.Snapshot.AttendeeCount != st.count || res.Snapshot.Capacity != 2 {
				t.Errorf("TryAdd(%s) snapshot = %+v, want count %d capacity 2", st.user, res.Snapshot, st.count)
			}
		}
	})

	t.Run("Remove_Idempotent", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ensure(ctx, "evt-r", 1); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		if _, err := s.TryAdd(ctx, "evt-r", "u1"); err != nil {
			t.Fatalf("TryAdd: %v", err)
		}
		out, err := s.Remove(ctx, "evt-r", "u1")
		if err != nil || out != domain.Removed {
			t.Fatalf("Remove = %v, %v; want removed", out, err)
		}
		out, err = s.Remove(ctx, "evt-r", "u1")
		if err != nil || out != domain.NotMember {
			t.Fatalf("second Remove = %v, %v; want not_member", out, err)
		}
		snap, err := s.Get(ctx, "evt-r")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if snap.AttendeeCount != 0 {
			t.Errorf("AttendeeCount = %d, want 0", snap.AttendeeCount)
		}
		// The freed spot is usable again, by the same user or another.
		res, err := s.TryAdd(ctx, "evt-r", "u1")
		if err != nil || res.Outcome != domain.Added {
			t.Fatalf("re-add = %v, %v; want added", res.Outcome, err)
		}
	})

	t.Run("Remove_MissingEvent", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Remove(ctx, "nope", "u1"); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("Remove err = %v, want ErrEventNotFound", err)
		}
	})

	t.Run("Get_IsMember", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.Get(ctx, "nope"); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("Get err = %v, want ErrEventNotFound", err)
		}
		if _, err := s.IsMember(ctx, "nope", "u1"); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("IsMember err = %v, want ErrEventNotFound", err)
		}
		if err := s.Ensure(ctx, "evt-g", 3); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		if _, err := s.TryAdd(ctx, "evt-g", "u1"); err != nil {
			t.Fatalf("TryAdd: %v", err)
		}
		ok, err := s.IsMember(ctx, "evt-g", "u1")
		if err != nil || !ok {
			t.Errorf("IsMember(u1) = %v, %v; want true", ok, err)
		}
		ok, err = s.IsMember(ctx, "evt-g", "u2")
		if err != nil || ok {
			t.Errorf("IsMember(u2) = %v, %v; want false", ok, err)
		}
		snap, err := s.Get(ctx, "evt-g")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if snap.Capacity != 3 || snap.AttendeeCount != 1 || snap.Available() != 2 {
			t.Errorf("snapshot = %+v", snap)
		}
	})

	t.Run("Ensure_KeepsExisting", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ensure(ctx, "evt-e", 0); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("Ensure(0) err = %v, want ErrInvalidCapacity", err)
		}
		if err := s.Ensure(ctx, "evt-e", 2); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		if err := s.Ensure(ctx, "evt-e", 9); err != nil {
			t.Fatalf("second Ensure: %v", err)
		}
		snap, err := s.Get(ctx, "evt-e")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if snap.Capacity != 2 {
			t.Errorf("Capacity = %d, want 2 (first Ensure wins)", snap.Capacity)
		}
	})

	t.Run("Resize", func(t *testing.T) {
		s := newStore(t)
		if err := s.Resize(ctx, "nope", 3); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("Resize missing err = %v, want ErrEventNotFound", err)
		}
		if err := s.Ensure(ctx, "evt-z", 3); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		for _, u := range []string{"u1", "u2"} {
			if _, err := s.TryAdd(ctx, "evt-z", u); err != nil {
				t.Fatalf("TryAdd: %v", err)
			}
		}
		if err := s.Resize(ctx, "evt-z", 1); !errors.Is(err, ErrCapacityBelowAttendance) {
			t.Errorf("Resize(1) err = %v, want ErrCapacityBelowAttendance", err)
		}
		if err := s.Resize(ctx, "evt-z", 0); !errors.Is(err, ErrInvalidCapacity) {
			t.Errorf("Resize(0) err = %v, want ErrInvalidCapacity", err)
		}
		if err := s.Resize(ctx, "evt-z", 2); err != nil {
			t.Fatalf("Resize(2): %v", err)
		}
		res, err := s.TryAdd(ctx, "evt-z", "u3")
		if err != nil || res.Outcome != domain.CapacityExceeded {
			t.Errorf("TryAdd after shrink = %v, %v; want capacity_exceeded", res.Outcome, err)
		}
	})

	t.Run("ListAttendees_JoinOrder", func(t *testing.T) {
		s := newStore(t)
		if _, err := s.ListAttendees(ctx, "nope"); !errors.Is(err, ErrEventNotFound) {
			t.Errorf("ListAttendees err = %v, want ErrEventNotFound", err)
		}
		if err := s.Ensure(ctx, "evt-l", 5); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		for _, u := range []string{"carol", "alice", "bob"} {
			if _, err := s.TryAdd(ctx, "evt-l", u); err != nil {
				t.Fatalf("TryAdd: %v", err)
			}
		}
		got, err := s.ListAttendees(ctx, "evt-l")
		if err != nil {
			t.Fatalf("ListAttendees: %v", err)
		}
		want := []string{"carol", "alice", "bob"}
		if len(got) != len(want) {
			t.Fatalf("len = %d, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i].UserID != want[i] {
				t.Errorf("attendee[%d] = %q, want %q", i, got[i].UserID, want[i])
			}
		}
	})

	t.Run("ConcurrentTryAdd_NeverExceedsCapacity", func(t *testing.T) {
		s := newStore(t)
		const capacity, users = 5, 40
		if err := s.Ensure(ctx, "evt-c", capacity); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		var (
			wg    sync.WaitGroup
			mu    sync.Mutex
			added int
			full  int
		)
		for i := 0; i < users; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				res, err := s.TryAdd(ctx, "evt-c", fmt.Sprintf("user-%d", i))
				if err != nil {
					t.Errorf("TryAdd: %v", err)
					return
				}
				mu.Lock()
				defer mu.Unlock()
				switch res.Outcome {
				case domain.Added:
					added++
				case domain.CapacityExceeded:
					full++
				}
			}(i)
		}
		wg.Wait()
		if added != capacity {
			t.Errorf("added = %d, want %d", added, capacity)
		}
		if full != users-capacity {
			t.Errorf("capacity_exceeded = %d, want %d", full, users-capacity)
		}
		snap, err := s.Get(ctx, "evt-c")
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if snap.AttendeeCount != capacity {
			t.Errorf("AttendeeCount = %d, want %d", snap.AttendeeCount, capacity)
		}
	})

	t.Run("ConcurrentTryAdd_SameUserOnce", func(t *testing.T) {
		s := newStore(t)
		if err := s.Ensure(ctx, "evt-s", 10); err != nil {
			t.Fatalf("Ensure: %v", err)
		}
		var wg sync.WaitGroup
		results := make(chan domain.AddOutcome, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				res, err := s.TryAdd(ctx, "evt-s", "same-user")
				if err != nil {
					t.Errorf("TryAdd: %v", err)
					return
				}
				results <- res.Outcome
			}()
		}
		wg.Wait()
		close(results)
		added := 0
		for o := range results {
			if o == domain.Added {
				added++
			} else if o != domain.AlreadyMember {
				t.Errorf("unexpected outcome %v", o)
			}
		}
		if added != 1 {
			t.Errorf("added = %d, want 1", added)
		}
	})
}
