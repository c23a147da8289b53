package telemetry

import (
	"context"
	"log"
	"sync"
	"time"
)

const emitTimeout = 5 * time.Second

// inflight counts emits started by EmitAsync that have not returned yet.
var inflight sync.WaitGroup

// EmitAsync emits event from a goroutine bounded by emitTimeout, so a reservation never waits on telemetry.
// A nil emitter or event is a no-op. The emit runs on context.Background(); cancelling the request does not abort it.
func EmitAsync(emitter EventEmitter, event *Event) {
	if emitter == nil || event == nil {
		return
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	inflight.Add(1)
	go func() {
		defer inflight.Done()
		emitCtx, cancel := context.WithTimeout(context.Background(), emitTimeout)
		defer cancel()
		if err := emitter.Emit(emitCtx, event); err != nil {
			log.Printf("telemetry: async emit %s failed: %v", event.Type, err)
		}
	}()
}

// Drain blocks until every in-flight EmitAsync has finished or ctx is done.
// Call it after the gRPC server has stopped and before the OTEL providers shut down.
func Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
