// Package kafka queues notifications on a Kafka topic for cmd/worker to deliver.
package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"event-rsvp/backend/internal/notify"
)

const writeTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer implements notify.Gateway by writing notify.Message JSON to a topic, keyed by user ID so one
// user's notifications stay ordered within a partition.
type Producer struct {
	writer messageWriter
	nowF   func() time.Time
}

// NewProducer returns a producer for topic, or nil if brokers or topic are empty. Call Close when shutting down.
func NewProducer(brokers []string, topic string) *Producer {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			BatchTimeout: 50 * time.Millisecond,
		},
		nowF: func() time.Time { return time.Now().UTC() },
	}
}

// SendCode queues a verification code notification.
func (p *Producer) SendCode(ctx context.Context, userID, eventID, code string) error {
	return p.publish(ctx, notify.Message{Kind: notify.KindCode, UserID: userID, EventID: eventID, Code: code})
}

// SendConfirmation queues a booking confirmation.
func (p *Producer) SendConfirmation(ctx context.Context, userID, eventID string) error {
	return p.publish(ctx, notify.Message{Kind: notify.KindConfirmation, UserID: userID, EventID: eventID})
}

func (p *Producer) publish(ctx context.Context, m notify.Message) error {
	if p == nil || p.writer == nil {
		return nil
	}
	m.SentAt = p.nowF()
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return p.writer.WriteMessages(writeCtx, kafka.Message{Key: []byte(m.UserID), Value: payload})
}

// Close closes the Kafka writer. Safe on a nil producer.
func (p *Producer) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
