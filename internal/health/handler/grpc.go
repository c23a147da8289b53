package handler

import (
	"context"
	"log"
	"time"

	healthv1 "event-rsvp/backend/api/health/v1"
)

const checkTimeout = 2 * time.Second

// Pinger checks a dependency (e.g. *sql.DB).
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger (e.g. a Redis client's Ping).
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Check is a named readiness check.
type Check struct {
	Name   string
	Pinger Pinger
}

// Server implements HealthService for readiness/liveness.
type Server struct {
	healthv1.UnimplementedHealthServiceServer
	checks []Check
}

// NewServer returns a Health gRPC server. Checks with a nil Pinger are skipped.
func NewServer(checks ...Check) *Server {
	return &Server{checks: checks}
}

// HealthCheck pings every dependency. A failing dependency reports NOT_SERVING rather than a gRPC error
// so load balancers can read the body.
func (s *Server) HealthCheck(ctx context.Context, req *healthv1.HealthCheckRequest) (*healthv1.HealthCheckResponse, error) {
	resp := &healthv1.HealthCheckResponse{Status: healthv1.ServingStatusServing}
	for _, c := range s.checks {
		if c.Pinger == nil {
			continue
		}
		if resp.Components == nil {
			resp.Components = make(map[string]string, len(s.checks))
		}
		pingCtx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := c.Pinger.PingContext(pingCtx)
		cancel()
		if err != nil {
			log.Printf("health: %s ping failed: %v", c.Name, err)
			resp.Components[c.Name] = "unavailable"
			resp.Status = healthv1.ServingStatusNotServing
			continue
		}
		resp.Components[c.Name] = "ok"
	}
	return resp, nil
}
