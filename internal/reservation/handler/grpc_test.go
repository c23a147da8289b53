package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	reservationv1 "event-rsvp/backend/api/reservation/v1"
	"event-rsvp/backend/internal/attendance/domain"
	"event-rsvp/backend/internal/reservation/service"
	"event-rsvp/backend/internal/server/interceptors"
)

// fakeReservations returns the configured error from every call.
type fakeReservations struct {
	err        error
	lastUser   string
	lastEvent  string
	lastCode   string
	attendance *service.AttendanceView
}

func (f *fakeReservations) RequestReservation(ctx context.Context, userID, eventID string) (*service.RequestResult, error) {
	f.lastUser, f.lastEvent = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return &service.RequestResult{ChallengeID: "ch-1", ExpiresAt: time.Unix(600, 0).UTC(), ExpiresIn: 10 * time.Minute}, nil
}

func (f *fakeReservations) VerifyReservation(ctx context.Context, userID, eventID, code string) (*service.VerifyResult, error) {
	f.lastUser, f.lastEvent, f.lastCode = userID, eventID, code
	if f.err != nil {
		return nil, f.err
	}
	return &service.VerifyResult{Snapshot: domain.Snapshot{EventID: eventID, Capacity: 2, AttendeeCount: 1}}, nil
}

func (f *fakeReservations) CancelReservation(ctx context.Context, userID, eventID string) error {
	f.lastUser, f.lastEvent = userID, eventID
	return f.err
}

func (f *fakeReservations) Attendance(ctx context.Context, eventID, userID string) (*service.AttendanceView, error) {
	f.lastUser, f.lastEvent = userID, eventID
	if f.err != nil {
		return nil, f.err
	}
	return f.attendance, nil
}

func authed(userID string) context.Context {
	return interceptors.WithUserID(context.Background(), userID)
}

func TestRequestReservation_UsesTokenUser(t *testing.T) {
	fake := &fakeReservations{}
	srv := NewServer(fake)
	resp, err := srv.RequestReservation(authed("user-1"), &reservationv1.RequestReservationRequest{EventID: "evt-1"})
	if err != nil {
		t.Fatalf("RequestReservation: %v", err)
	}
	if fake.lastUser != "user-1" || fake.lastEvent != "evt-1" {
		t.Errorf("called with %q/%q", fake.lastUser, fake.lastEvent)
	}
	if resp.ChallengeID != "ch-1" || resp.ExpiresInSeconds != 600 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestVerifyReservation_ReturnsSnapshot(t *testing.T) {
	fake := &fakeReservations{}
	srv := NewServer(fake)
	resp, err := srv.VerifyReservation(authed("user-1"), &reservationv1.VerifyReservationRequest{EventID: "evt-1", Code: "123456"})
	if err != nil {
		t.Fatalf("VerifyReservation: %v", err)
	}
	if fake.lastCode != "123456" {
		t.Errorf("code = %q", fake.lastCode)
	}
	if resp.AttendeeCount != 1 || resp.Capacity != 2 || resp.EventID != "evt-1" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestGetAttendance_MapsView(t *testing.T) {
	joined := time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC)
	fake := &fakeReservations{attendance: &service.AttendanceView{
		Snapshot:   domain.Snapshot{EventID: "evt-1", Capacity: 3, AttendeeCount: 1},
		Attendees:  []domain.Attendee{{UserID: "user-1", JoinedAt: joined}},
		Registered: true,
	}}
	resp, err := NewServer(fake).GetAttendance(authed("user-1"), &reservationv1.GetAttendanceRequest{EventID: "evt-1"})
	if err != nil {
		t.Fatalf("GetAttendance: %v", err)
	}
	if resp.Available != 2 || !resp.Registered || len(resp.Attendees) != 1 || !resp.Attendees[0].JoinedAt.Equal(joined) {
		t.Errorf("resp = %+v", resp)
	}
}

func TestHandler_ErrorMapping(t *testing.T) {
	testCases := []struct {
		err  error
		code codes.Code
		msg  string
	}{
		{service.ErrInvalidArgument, codes.InvalidArgument, service.ErrInvalidArgument.Error()},
		{service.ErrInvalidCodeFormat, codes.InvalidArgument, service.ErrInvalidCodeFormat.Error()},
		{service.ErrEventNotFound, codes.NotFound, "event not found"},
		{service.ErrAlreadyRegistered, codes.AlreadyExists, "already registered for this event"},
		{service.ErrCapacityExceeded, codes.ResourceExhausted, "event is full"},
		{service.ErrInvalidOrExpiredCode, codes.PermissionDenied, "invalid or expired code"},
		{errors.New("connection reset"), codes.Internal, "internal error"},
	}
	for _, tc := range testCases {
		t.Run(tc.code.String(), func(t *testing.T) {
			srv := NewServer(&fakeReservations{err: tc.err})
			_, err := srv.VerifyReservation(authed("user-1"), &reservationv1.VerifyReservationRequest{EventID: "evt-1", Code: "123456"})
			st, ok := status.FromError(err)
			if !ok {
				t.Fatalf("error is not a gRPC status: %v", err)
			}
			if st.Code() != tc.code {
				t.Errorf("code = %v, want %v", st.Code(), tc.code)
			}
			if st.Message() != tc.msg {
				t.Errorf("message = %q, want %q", st.Message(), tc.msg)
			}
		})
	}
}

func TestHandler_RequiresUser(t *testing.T) {
	srv := NewServer(&fakeReservations{})
	ctx := context.Background()
	calls := []func() error{
		func() error {
			_, err := srv.RequestReservation(ctx, &reservationv1.RequestReservationRequest{EventID: "evt-1"})
			return err
		},
		func() error {
			_, err := srv.VerifyReservation(ctx, &reservationv1.VerifyReservationRequest{EventID: "evt-1", Code: "123456"})
			return err
		},
		func() error {
			_, err := srv.CancelReservation(ctx, &reservationv1.CancelReservationRequest{EventID: "evt-1"})
			return err
		},
		func() error {
			_, err := srv.GetAttendance(ctx, &reservationv1.GetAttendanceRequest{EventID: "evt-1"})
			return err
		},
	}
	for i, call := range calls {
		if code := status.Code(call()); code != codes.Unauthenticated {
			t.Errorf("call %d: code = %v, want Unauthenticated", i, code)
		}
	}
}

func TestHandler_NilService(t *testing.T) {
	_, err := NewServer(nil).CancelReservation(authed("user-1"), &reservationv1.CancelReservationRequest{EventID: "evt-1"})
	if status.Code(err) != codes.Unimplemented {
		t.Errorf("code = %v, want Unimplemented", status.Code(err))
	}
}
