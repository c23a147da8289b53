package otel

import (
	"context"
	"time"

	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"event-rsvp/backend/internal/telemetry"
)

const instrumentationName = "rsvp.reservation"

// recordEmitter is the subset of otellog.Logger used by the adapter.
type recordEmitter interface {
	Emit(ctx context.Context, rec otellog.Record)
}

// NewEventEmitter returns an EventEmitter that sends events as OTel log records via the given LoggerProvider.
// If provider is nil, returns a no-op emitter.
func NewEventEmitter(provider *sdklog.LoggerProvider) telemetry.EventEmitter {
	if provider == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: provider.Logger(instrumentationName)}
}

// NewEventEmitterWithLogger wraps any record sink; used by tests to capture records.
func NewEventEmitterWithLogger(logger recordEmitter) telemetry.EventEmitter {
	if logger == nil {
		return noopEmitter{}
	}
	return &otelEmitter{logger: logger}
}

type noopEmitter struct{}

func (noopEmitter) Emit(context.Context, *telemetry.Event) error { return nil }

type otelEmitter struct {
	logger recordEmitter
}

// Emit converts the event to an OTel log record. Empty fields are not added as attributes.
func (e *otelEmitter) Emit(ctx context.Context, event *telemetry.Event) error {
	if event == nil {
		return nil
	}
	rec := otellog.Record{}
	ts := event.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	rec.SetTimestamp(ts)
	rec.SetEventName(event.Type)
	rec.SetBody(otellog.StringValue(event.Type))
	rec.SetSeverity(severityFor(event.Type))

	addString := func(key, v string) {
		if v != "" {
			rec.AddAttributes(otellog.String(key, v))
		}
	}
	addString("event_type", event.Type)
	addString("source", event.Source)
	addString("user_id", event.UserID)
	addString("event_id", event.EventID)
	addString("challenge_id", event.ChallengeID)
	addString("outcome", event.Outcome)
	addString("rpc.method", event.Method)
	if event.Method != "" {
		rec.AddAttributes(otellog.Int64("duration_ms", event.DurationMs))
	}
	if event.Capacity > 0 {
		rec.AddAttributes(
			otellog.Int("attendees", event.Attendees),
			otellog.Int("capacity", event.Capacity),
		)
	}
	e.logger.Emit(ctx, rec)
	return nil
}

func severityFor(eventType string) otellog.Severity {
	switch eventType {
	case telemetry.EventVerificationFailed, telemetry.EventReservationRejected:
		return otellog.SeverityWarn
	case telemetry.EventNotificationFailed:
		return otellog.SeverityError
	default:
		return otellog.SeverityInfo
	}
}
