package interceptors

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"

	"event-rsvp/backend/internal/telemetry"
)

// TelemetryUnary returns a unary server interceptor that emits an rpc_completed event after each RPC.
// Best-effort: emission is async and never fails the RPC. If emitter is nil, the interceptor no-ops.
// skipMethods is the set of full method names to not emit (e.g. HealthCheck).
func TelemetryUnary(emitter telemetry.EventEmitter, skipMethods map[string]bool) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if emitter == nil || skipMethods[info.FullMethod] {
			return resp, err
		}
		userID, _ := GetUserID(ctx)
		telemetry.EmitAsync(emitter, &telemetry.Event{
			Type:       telemetry.EventRPCCompleted,
			Source:     "grpc_interceptor",
			UserID:     userID,
			Outcome:    status.Code(err).String(),
			Method:     info.FullMethod,
			DurationMs: time.Since(start).Milliseconds(),
		})
		return resp, err
	}
}
