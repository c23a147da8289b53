// Package handler implements the dev-only gRPC DevService (GetCode).
package handler

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	devv1 "event-rsvp/backend/api/dev/v1"
	"event-rsvp/backend/internal/devotp"
	"event-rsvp/backend/internal/server/interceptors"
)

const devCodeNote = "DEV MODE ONLY"

// Server implements DevService. Only registered when dev code mode is enabled and not production.
type Server struct {
	devv1.UnimplementedDevServiceServer
	store devotp.Store
}

// NewServer returns a DevService server that reads codes from the given store.
func NewServer(store devotp.Store) *Server {
	return &Server{store: store}
}

// GetCode returns the plain code for a challenge issued to the caller. A challenge belonging to
// another user is reported as NotFound, same as a missing or expired one.
func (s *Server) GetCode(ctx context.Context, req *devv1.GetCodeRequest) (*devv1.GetCodeResponse, error) {
	challengeID := req.GetChallengeId()
	if challengeID == "" {
		return nil, status.Error(codes.InvalidArgument, "challenge_id is required")
	}
	userID, ok := interceptors.GetUserID(ctx)
	if !ok || userID == "" {
		return nil, status.Error(codes.Unauthenticated, "missing or invalid authorization")
	}
	if s.store == nil {
		return nil, status.Error(codes.NotFound, "code not found or expired")
	}
	e, ok := s.store.Get(ctx, challengeID)
	if !ok || e.UserID != userID {
		return nil, status.Error(codes.NotFound, "code not found or expired")
	}
	return &devv1.GetCodeResponse{
		Code: e.Code,
		Note: devCodeNote,
	}, nil
}
