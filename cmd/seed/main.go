// seed inserts sample events for local testing and syncs their attendance records to the catalog capacity.
// Idempotent: re-running updates titles and capacities in place. Run via go run ./cmd/seed.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	attendancerepo "event-rsvp/backend/internal/attendance/repository"
	"event-rsvp/backend/internal/catalog"
	"event-rsvp/backend/internal/challenge"
	challengerepo "event-rsvp/backend/internal/challenge/repository"
	"event-rsvp/backend/internal/config"
	"event-rsvp/backend/internal/db"
	"event-rsvp/backend/internal/reservation/service"
)

var sampleEvents = []catalog.Event{
	{ID: "evt-go-meetup", Title: "Go Meetup", Capacity: 50},
	{ID: "evt-workshop", Title: "Concurrency Workshop", Capacity: 12},
	{ID: "evt-small-dinner", Title: "Speakers Dinner", Capacity: 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if cfg.DatabaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is not set; the seed writes to the Postgres catalog")
		os.Exit(1)
	}

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer database.Close()

	var store attendancerepo.Store
	switch cfg.AttendanceStore {
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer rdb.Close()
		store = attendancerepo.NewRedisStore(rdb, "")
	case config.StoreMemory:
		log.Fatal("seed: ATTENDANCE_STORE=memory has nothing to seed; use MEMORY_EVENTS instead")
	default:
		store = attendancerepo.NewPostgresStore(database)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	events := catalog.NewPostgresCatalog(database)
	manager := challenge.NewManager(challengerepo.NewPostgresRepository(database), cfg.ChallengeTTLDuration())
	coordinator := service.NewCoordinator(events, store, manager, service.Options{})

	for _, e := range sampleEvents {
		if err := events.Upsert(ctx, e); err != nil {
			log.Fatalf("seed: upsert %s: %v", e.ID, err)
		}
		if err := coordinator.SyncCapacity(ctx, e.ID); err != nil {
			if errors.Is(err, attendancerepo.ErrCapacityBelowAttendance) {
				log.Printf("seed: %s keeps its current capacity: %v", e.ID, err)
				continue
			}
			log.Fatalf("seed: sync %s: %v", e.ID, err)
		}
		log.Printf("seed: %s (%q) capacity %d", e.ID, e.Title, e.Capacity)
	}
	log.Printf("seed: %d events ready", len(sampleEvents))
}
