package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"event-rsvp/backend/internal/notify"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("write without deadline")
	}
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestProducer(w *fakeWriter) *Producer {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Producer{writer: w, nowF: func() time.Time { return fixed }}
}

func TestNewProducer_RequiresBrokersAndTopic(t *testing.T) {
	if NewProducer(nil, "topic") != nil {
		t.Error("NewProducer without brokers should return nil")
	}
	if NewProducer([]string{"localhost:9092"}, "") != nil {
		t.Error("NewProducer without topic should return nil")
	}
	p := NewProducer([]string{"localhost:9092"}, "rsvp-notifications")
	if p == nil {
		t.Fatal("NewProducer returned nil")
	}
	_ = p.Close()
}

func TestProducer_SendCode(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	if err := p.SendCode(context.Background(), "u1", "e1", "123456"); err != nil {
		t.Fatalf("SendCode: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages = %d, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != "u1" {
		t.Errorf("key = %q, want u1", w.msgs[0].Key)
	}
	m, err := notify.DecodeMessage(w.msgs[0].Value)
	if err != nil {
		t.Fatalf("DecodeMessage: %v", err)
	}
	if m.Kind != notify.KindCode || m.Code != "123456" || m.EventID != "e1" || m.SentAt.IsZero() {
		t.Errorf("message = %+v", m)
	}
}

func TestProducer_SendConfirmation(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w)
	if err := p.SendConfirmation(context.Background(), "u1", "e1"); err != nil {
		t.Fatalf("SendConfirmation: %v", err)
	}
	m, _ := notify.DecodeMessage(w.msgs[0].Value)
	if m.Kind != notify.KindConfirmation || m.Code != "" {
		t.Errorf("message = %+v", m)
	}
}

func TestProducer_WriteError(t *testing.T) {
	boom := errors.New("broker unavailable")
	p := newTestProducer(&fakeWriter{err: boom})
	if err := p.SendCode(context.Background(), "u1", "e1", "123456"); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestProducer_NilSafe(t *testing.T) {
	var p *Producer
	if err := p.SendCode(context.Background(), "u1", "e1", "123456"); err != nil {
		t.Errorf("nil SendCode: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
	w := &fakeWriter{}
	if err := newTestProducer(w).Close(); err != nil || !w.closed {
		t.Errorf("Close = %v, closed = %v", err, w.closed)
	}
}

var _ notify.Gateway = (*Producer)(nil)
