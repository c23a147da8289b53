package handler

import (
	"context"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	devv1 "event-rsvp/backend/api/dev/v1"
	"event-rsvp/backend/internal/devotp"
	"event-rsvp/backend/internal/server/interceptors"
)

func newStore(t *testing.T) *devotp.MemoryStore {
	t.Helper()
	store := devotp.NewMemoryStore()
	store.Put(context.Background(), "challenge-1", "user-1", "evt-1", "123456", time.Now().UTC().Add(time.Minute))
	return store
}

func TestGetCode_Success(t *testing.T) {
	srv := NewServer(newStore(t))
	ctx := interceptors.WithUserID(context.Background(), "user-1")

	resp, err := srv.GetCode(ctx, &devv1.GetCodeRequest{ChallengeID: "challenge-1"})
	if err != nil {
		t.Fatalf("GetCode: %v", err)
	}
	if resp.GetCode() != "123456" {
		t.Errorf("code = %q, want 123456", resp.GetCode())
	}
	if resp.GetNote() != devCodeNote {
		t.Errorf("note = %q, want %q", resp.GetNote(), devCodeNote)
	}
}

func TestGetCode_Errors(t *testing.T) {
	testCases := []struct {
		name  string
		store devotp.Store
		user  string
		id    string
		code  codes.Code
	}{
		{"empty challenge id", newStore(t), "user-1", "", codes.InvalidArgument},
		{"unauthenticated", newStore(t), "", "challenge-1", codes.Unauthenticated},
		{"missing", newStore(t), "user-1", "nonexistent", codes.NotFound},
		{"other user", newStore(t), "user-2", "challenge-1", codes.NotFound},
		{"nil store", nil, "user-1", "challenge-1", codes.NotFound},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := NewServer(tc.store)
			ctx := context.Background()
			if tc.user != "" {
				ctx = interceptors.WithUserID(ctx, tc.user)
			}
			_, err := srv.GetCode(ctx, &devv1.GetCodeRequest{ChallengeID: tc.id})
			st, ok := status.FromError(err)
			if !ok {
				t.Fatalf("error is not a gRPC status: %v", err)
			}
			if st.Code() != tc.code {
				t.Errorf("status code = %v, want %v", st.Code(), tc.code)
			}
		})
	}
}
