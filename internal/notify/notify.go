// Package notify delivers verification codes and booking confirmations to users.
// Delivery is best-effort: callers never wait on it and a failed send never fails a reservation.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// Gateway sends user-facing notifications. Implementations must not log the code.
type Gateway interface {
	SendCode(ctx context.Context, userID, eventID, code string) error
	SendConfirmation(ctx context.Context, userID, eventID string) error
}

// Kind identifies a notification type on the wire.
type Kind string

const (
	KindCode         Kind = "code"
	KindConfirmation Kind = "confirmation"
)

// ErrUnknownKind is returned by Deliver for a message with an unrecognized kind.
var ErrUnknownKind = errors.New("notify: unknown notification kind")

// Message is the wire form of a notification, shared by the relay and the Kafka queue.
type Message struct {
	Kind    Kind      `json:"kind"`
	UserID  string    `json:"user_id"`
	EventID string    `json:"event_id"`
	Code    string    `json:"code,omitempty"`
	SentAt  time.Time `json:"sent_at"`
}

// DecodeMessage parses a JSON-encoded Message.
func DecodeMessage(payload []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(payload, &m); err != nil {
		return Message{}, fmt.Errorf("notify: decode message: %w", err)
	}
	return m, nil
}

// Deliver routes m to the matching Gateway method.
func Deliver(ctx context.Context, gw Gateway, m Message) error {
	switch m.Kind {
	case KindCode:
		return gw.SendCode(ctx, m.UserID, m.EventID, m.Code)
	case KindConfirmation:
		return gw.SendConfirmation(ctx, m.UserID, m.EventID)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
}

// LogGateway writes a preview line per notification instead of sending it. Used when no relay is configured.
type LogGateway struct{}

// SendCode logs that a code was issued; the code itself is omitted.
func (LogGateway) SendCode(ctx context.Context, userID, eventID, code string) error {
	log.Printf("notify: verification code issued user=%s event=%s", userID, eventID)
	return nil
}

// SendConfirmation logs the booking confirmation.
func (LogGateway) SendConfirmation(ctx context.Context, userID, eventID string) error {
	log.Printf("notify: booking confirmed user=%s event=%s", userID, eventID)
	return nil
}
