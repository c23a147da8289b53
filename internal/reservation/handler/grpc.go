// Package handler exposes the reservation coordinator as the gRPC ReservationService.
package handler

import (
	"context"
	"errors"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	reservationv1 "event-rsvp/backend/api/reservation/v1"
	"event-rsvp/backend/internal/reservation/service"
	"event-rsvp/backend/internal/server/interceptors"
)

// Reservations is the coordinator surface served over gRPC. *service.Coordinator implements it.
type Reservations interface {
	RequestReservation(ctx context.Context, userID, eventID string) (*service.RequestResult, error)
	VerifyReservation(ctx context.Context, userID, eventID, code string) (*service.VerifyResult, error)
	CancelReservation(ctx context.Context, userID, eventID string) error
	Attendance(ctx context.Context, eventID, userID string) (*service.AttendanceView, error)
}

// Server implements ReservationService. The acting user always comes from the access token.
type Server struct {
	reservationv1.UnimplementedReservationServiceServer
	svc Reservations
}

// NewServer returns a ReservationService server. A nil svc answers Unimplemented.
func NewServer(svc Reservations) *Server {
	return &Server{svc: svc}
}

// RequestReservation issues a verification code for the caller and the given event.
func (s *Server) RequestReservation(ctx context.Context, req *reservationv1.RequestReservationRequest) (*reservationv1.RequestReservationResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method RequestReservation not implemented")
	}
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.RequestReservation(ctx, userID, req.GetEventId())
	if err != nil {
		return nil, toStatus(err)
	}
	return &reservationv1.RequestReservationResponse{
		ChallengeID:      res.ChallengeID,
		ExpiresAt:        res.ExpiresAt,
		ExpiresInSeconds: int64(res.ExpiresIn.Seconds()),
	}, nil
}

// VerifyReservation commits the caller's reservation with the delivered code.
func (s *Server) VerifyReservation(ctx context.Context, req *reservationv1.VerifyReservationRequest) (*reservationv1.VerifyReservationResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method VerifyReservation not implemented")
	}
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	res, err := s.svc.VerifyReservation(ctx, userID, req.GetEventId(), req.GetCode())
	if err != nil {
		return nil, toStatus(err)
	}
	return &reservationv1.VerifyReservationResponse{
		EventID:       res.Snapshot.EventID,
		AttendeeCount: res.Snapshot.AttendeeCount,
		Capacity:      res.Snapshot.Capacity,
	}, nil
}

// CancelReservation releases the caller's spot. It succeeds whether or not the caller held one.
func (s *Server) CancelReservation(ctx context.Context, req *reservationv1.CancelReservationRequest) (*reservationv1.CancelReservationResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method CancelReservation not implemented")
	}
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.svc.CancelReservation(ctx, userID, req.GetEventId()); err != nil {
		return nil, toStatus(err)
	}
	return &reservationv1.CancelReservationResponse{}, nil
}

// GetAttendance returns the event's attendance and whether the caller is registered.
func (s *Server) GetAttendance(ctx context.Context, req *reservationv1.GetAttendanceRequest) (*reservationv1.GetAttendanceResponse, error) {
	if s.svc == nil {
		return nil, status.Error(codes.Unimplemented, "method GetAttendance not implemented")
	}
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	view, err := s.svc.Attendance(ctx, req.GetEventId(), userID)
	if err != nil {
		return nil, toStatus(err)
	}
	resp := &reservationv1.GetAttendanceResponse{
		EventID:       view.Snapshot.EventID,
		Capacity:      view.Snapshot.Capacity,
		AttendeeCount: view.Snapshot.AttendeeCount,
		Available:     view.Snapshot.Available(),
		Attendees:     make([]reservationv1.Attendee, 0, len(view.Attendees)),
		Registered:    view.Registered,
	}
	for _, a := range view.Attendees {
		resp.Attendees = append(resp.Attendees, reservationv1.Attendee{UserID: a.UserID, JoinedAt: a.JoinedAt})
	}
	return resp, nil
}

func requireUser(ctx context.Context) (string, error) {
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == "" {
		return "", status.Error(codes.Unauthenticated, "user context required")
	}
	return userID, nil
}

// toStatus maps coordinator errors to gRPC status. A lost capacity race and a bad code use
// different codes and messages.
func toStatus(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidArgument), errors.Is(err, service.ErrInvalidCodeFormat):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, service.ErrEventNotFound):
		return status.Error(codes.NotFound, "event not found")
	case errors.Is(err, service.ErrAlreadyRegistered):
		return status.Error(codes.AlreadyExists, "already registered for this event")
	case errors.Is(err, service.ErrCapacityExceeded):
		return status.Error(codes.ResourceExhausted, "event is full")
	case errors.Is(err, service.ErrInvalidOrExpiredCode):
		return status.Error(codes.PermissionDenied, "invalid or expired code")
	default:
		log.Printf("reservation: internal error: %v", err)
		return status.Error(codes.Internal, "internal error")
	}
}
