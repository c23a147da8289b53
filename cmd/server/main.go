package main

import (
	"context"
	"database/sql"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"

	_ "event-rsvp/backend/api/codec"
	attendancerepo "event-rsvp/backend/internal/attendance/repository"
	"event-rsvp/backend/internal/audit"
	auditrepo "event-rsvp/backend/internal/audit/repository"
	"event-rsvp/backend/internal/catalog"
	"event-rsvp/backend/internal/challenge"
	challengerepo "event-rsvp/backend/internal/challenge/repository"
	"event-rsvp/backend/internal/config"
	"event-rsvp/backend/internal/db"
	"event-rsvp/backend/internal/devotp"
	devotphandler "event-rsvp/backend/internal/devotp/handler"
	healthhandler "event-rsvp/backend/internal/health/handler"
	"event-rsvp/backend/internal/notify"
	notifykafka "event-rsvp/backend/internal/notify/kafka"
	"event-rsvp/backend/internal/notify/relay"
	"event-rsvp/backend/internal/reservation/service"
	"event-rsvp/backend/internal/security"
	"event-rsvp/backend/internal/server"
	"event-rsvp/backend/internal/server/interceptors"
	"event-rsvp/backend/internal/telemetry"
	oteltelemetry "event-rsvp/backend/internal/telemetry/otel"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	providers, err := oteltelemetry.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		log.Fatalf("otel: %v", err)
	}
	providers.SetGlobal()
	emitter := oteltelemetry.NewEventEmitter(providers.LoggerProvider)

	var database *sql.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer database.Close()
	}

	var checks []healthhandler.Check
	if database != nil {
		checks = append(checks, healthhandler.Check{Name: "postgres", Pinger: database})
	}

	store, rdb, err := attendanceStore(cfg, database)
	if err != nil {
		log.Fatalf("attendance: %v", err)
	}
	if rdb != nil {
		defer rdb.Close()
		checks = append(checks, healthhandler.Check{
			Name:   "redis",
			Pinger: healthhandler.PingFunc(func(ctx context.Context) error { return rdb.Ping(ctx).Err() }),
		})
	}

	var events catalog.EventCatalog
	var challenges challengerepo.Repository
	var auditLogger audit.AuditLogger
	if database != nil {
		events = catalog.NewPostgresCatalog(database)
		challenges = challengerepo.NewPostgresRepository(database)
		auditLogger = audit.NewLogger(auditrepo.NewPostgresRepository(database), interceptors.ClientIP)
	} else {
		seed, err := cfg.MemoryEventsMap()
		if err != nil {
			log.Fatalf("config: %v", err)
		}
		events = catalog.NewMemoryCatalog(seed)
		challenges = challengerepo.NewMemoryRepository()
		log.Printf("server: DATABASE_URL unset; using in-memory catalog (%d events) and challenges", len(seed))
	}

	manager := challenge.NewManager(challenges, cfg.ChallengeTTLDuration())
	if interval := cfg.SweepInterval(); interval > 0 {
		go manager.RunSweeper(ctx, interval)
	}

	gateway, closeGateway := notificationGateway(cfg)
	defer closeGateway()
	dispatcher := notify.NewDispatcher(gateway, cfg.NotifyTimeoutDuration())

	opts := service.Options{
		Notifier: dispatcher,
		Audit:    auditLogger,
		Events:   emitter,
		Meter:    providers.Meter(),
	}
	deps := server.Deps{HealthChecks: checks}
	if cfg.OTPReturnToClient {
		codes := devotp.NewMemoryStore()
		opts.DevCodes = codes
		deps.DevCodeHandler = devotphandler.NewServer(codes)
		log.Println("server: dev code mode enabled; DevService.GetCode returns issued codes")
	}
	coordinator := service.NewCoordinator(events, store, manager, opts)
	deps.Reservations = coordinator

	var tokens interceptors.AccessValidator
	if cfg.JWTPublicKey != "" {
		pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
		if err != nil {
			log.Fatalf("jwt public key: %v", err)
		}
		verifier, err := security.NewTokenVerifier(pub, cfg.JWTIssuer, cfg.JWTAudience)
		if err != nil {
			log.Fatalf("jwt verifier: %v", err)
		}
		tokens = verifier
	} else {
		log.Println("server: JWT_PUBLIC_KEY unset; reservation calls will be rejected as unauthenticated")
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		log.Fatalf("listen: %v", err)
	}
	defer lis.Close()

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(server.UnaryInterceptors(tokens, emitter)...),
	)
	server.RegisterServices(s, deps)

	go func() {
		log.Printf("gRPC server listening on %s (attendance store: %s)", cfg.GRPCAddr, cfg.AttendanceStore)
		if err := s.Serve(lis); err != nil {
			log.Fatalf("serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("shutting down gRPC server...")
	s.GracefulStop()
	stop()
	dispatcher.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := telemetry.Drain(shutdownCtx); err != nil {
		log.Printf("telemetry drain: %v", err)
	}
	if err := providers.Shutdown(shutdownCtx); err != nil {
		log.Printf("otel shutdown: %v", err)
	}
	log.Println("gRPC server stopped")
}

// attendanceStore builds the configured attendance backend. The Redis client is returned so the caller can
// close it and ping it for readiness.
func attendanceStore(cfg *config.Config, database *sql.DB) (attendancerepo.Store, *redis.Client, error) {
	switch cfg.AttendanceStore {
	case config.StorePostgres:
		return attendancerepo.NewPostgresStore(database), nil, nil
	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		return attendancerepo.NewRedisStore(rdb, ""), rdb, nil
	default:
		return attendancerepo.NewMemoryStore(), nil, nil
	}
}

// notificationGateway prefers the Kafka queue, then the HTTP relay, then log-only delivery.
func notificationGateway(cfg *config.Config) (notify.Gateway, func()) {
	if producer := notifykafka.NewProducer(cfg.KafkaBrokersList(), cfg.NotifyKafkaTopic); producer != nil {
		log.Printf("server: notifications queued on kafka topic %s", cfg.NotifyKafkaTopic)
		return producer, func() {
			if err := producer.Close(); err != nil {
				log.Printf("notify: kafka close: %v", err)
			}
		}
	}
	if cfg.NotifyRelayURL != "" {
		return relay.NewClient(cfg.NotifyRelayAPIKey, cfg.NotifyRelayURL), func() {}
	}
	log.Println("server: no notification gateway configured; notifications are logged without codes")
	return notify.LogGateway{}, func() {}
}
