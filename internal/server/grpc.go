package server

import (
	"google.golang.org/grpc"

	devv1 "event-rsvp/backend/api/dev/v1"
	healthv1 "event-rsvp/backend/api/health/v1"
	reservationv1 "event-rsvp/backend/api/reservation/v1"

	healthhandler "event-rsvp/backend/internal/health/handler"
	reservationhandler "event-rsvp/backend/internal/reservation/handler"
	"event-rsvp/backend/internal/server/interceptors"
	"event-rsvp/backend/internal/telemetry"
)

// Deps holds service dependencies for gRPC handlers.
type Deps struct {
	// Reservations backs ReservationService. If nil, reservation RPCs return Unimplemented.
	Reservations reservationhandler.Reservations
	// HealthChecks are pinged by HealthService for readiness (e.g. Postgres, Redis).
	HealthChecks []healthhandler.Check
	// DevCodeHandler is the dev-only DevService (GetCode). If nil, DevService is not registered.
	// Set only when dev code mode is enabled and not production.
	DevCodeHandler devv1.DevServiceServer
}

// RegisterServices registers every gRPC service with the given server.
//
// Service → handler mapping:
//   - ReservationService → internal/reservation/handler
//   - HealthService      → internal/health/handler
//   - DevService         → internal/devotp/handler (dev code mode only)
func RegisterServices(s grpc.ServiceRegistrar, deps Deps) {
	reservationv1.RegisterReservationServiceServer(s, reservationhandler.NewServer(deps.Reservations))
	healthv1.RegisterHealthServiceServer(s, healthhandler.NewServer(deps.HealthChecks...))
	if deps.DevCodeHandler != nil {
		devv1.RegisterDevServiceServer(s, deps.DevCodeHandler)
	}
}

// PublicMethods are served without a Bearer token.
func PublicMethods() map[string]bool {
	return map[string]bool{
		healthv1.HealthService_HealthCheck_FullMethodName: true,
	}
}

// UnaryInterceptors returns the server's unary chain: authentication first, then per-RPC telemetry.
func UnaryInterceptors(tokens interceptors.AccessValidator, emitter telemetry.EventEmitter) []grpc.UnaryServerInterceptor {
	public := PublicMethods()
	return []grpc.UnaryServerInterceptor{
		interceptors.AuthUnary(tokens, public),
		interceptors.TelemetryUnary(emitter, public),
	}
}
