// Worker consumes queued notifications from Kafka, delivers them through the relay, and records each delivery in Loki.
// Set KAFKA_BROKERS, NOTIFY_KAFKA_TOPIC, KAFKA_GROUP_ID, and optionally NOTIFY_RELAY_URL and LOKI_URL.
// GRPC_ADDR is required by config but unused (e.g. set to :0).
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"event-rsvp/backend/internal/config"
	"event-rsvp/backend/internal/notify"
	"event-rsvp/backend/internal/notify/relay"
	"event-rsvp/backend/internal/telemetry/loki"
)

const (
	statusDelivered = "delivered"
	statusFailed    = "failed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}

	var gateway notify.Gateway = notify.LogGateway{}
	if cfg.NotifyRelayURL != "" {
		gateway = relay.NewClient(cfg.NotifyRelayAPIKey, cfg.NotifyRelayURL)
	} else {
		log.Println("worker: NOTIFY_RELAY_URL unset; notifications are logged without codes")
	}

	var lokiClient *loki.Client
	if cfg.LokiURL != "" {
		lokiClient = loki.NewClient(cfg.LokiURL)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.NotifyKafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("worker: shutting down...")
		cancel()
	}()

	log.Printf("worker: consuming from %s (group %s)", cfg.NotifyKafkaTopic, cfg.KafkaGroupID)

	timeout := cfg.NotifyTimeoutDuration()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Println("worker: stopped")
				return
			}
			log.Printf("worker: kafka read error: %v", err)
			continue
		}

		m, err := notify.DecodeMessage(msg.Value)
		if err != nil {
			log.Printf("worker: skipping message at offset %d: %v", msg.Offset, err)
			continue
		}

		sendCtx, sendCancel := context.WithTimeout(ctx, timeout)
		sendErr := notify.Deliver(sendCtx, gateway, m)
		sendCancel()

		d := loki.Delivery{
			Kind:      string(m.Kind),
			UserID:    m.UserID,
			EventID:   m.EventID,
			Status:    statusDelivered,
			SentAt:    m.SentAt,
			HandledAt: time.Now().UTC(),
		}
		if sendErr != nil {
			d.Status = statusFailed
			d.Error = sendErr.Error()
			log.Printf("worker: deliver %s to user %s failed: %v", m.Kind, m.UserID, sendErr)
		}

		if lokiClient == nil {
			continue
		}
		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := lokiClient.PushDelivery(pushCtx, d); err != nil {
			log.Printf("worker: loki push failed: %v", err)
		}
		pushCancel()
	}
}
