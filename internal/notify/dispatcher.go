package notify

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultTimeout bounds a single send when the dispatcher is built with a non-positive timeout.
const DefaultTimeout = 5 * time.Second

// Dispatcher runs Gateway sends in the background so reservation calls return without waiting on delivery.
// Each send gets its own timeout on a context detached from the request; errors are logged and dropped.
type Dispatcher struct {
	gw      Gateway
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher over gw. A nil gw makes every dispatch a no-op.
func NewDispatcher(gw Gateway, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Dispatcher{gw: gw, timeout: timeout}
}

// DispatchCode sends the verification code without blocking the caller.
func (d *Dispatcher) DispatchCode(userID, eventID, code string) {
	d.dispatch(KindCode, func(ctx context.Context) error {
		return d.gw.SendCode(ctx, userID, eventID, code)
	})
}

// DispatchConfirmation sends the booking confirmation without blocking the caller.
func (d *Dispatcher) DispatchConfirmation(userID, eventID string) {
	d.dispatch(KindConfirmation, func(ctx context.Context) error {
		return d.gw.SendConfirmation(ctx, userID, eventID)
	})
}

func (d *Dispatcher) dispatch(kind Kind, send func(ctx context.Context) error) {
	if d == nil || d.gw == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := send(ctx); err != nil {
			log.Printf("notify: %s send failed: %v", kind, err)
		}
	}()
}

// Wait blocks until every in-flight send has finished. Call during shutdown.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}
