// Package config loads and validates app config from env and an optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Attendance store backends accepted by ATTENDANCE_STORE.
const (
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreMemory   = "memory"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// GRPCAddr is the address the gRPC server listens on (e.g. :8080).
	GRPCAddr string `mapstructure:"GRPC_ADDR"`
	// DatabaseURL is the Postgres DSN. Empty selects in-memory challenge and catalog stores.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	// AttendanceStore selects the attendance backend: postgres, redis, or memory.
	// Empty means postgres when DATABASE_URL is set, otherwise memory.
	AttendanceStore string `mapstructure:"ATTENDANCE_STORE"`
	// RedisAddr is the Redis address (host:port) used when AttendanceStore is redis.
	RedisAddr string `mapstructure:"REDIS_ADDR"`
	// RedisPassword is the optional Redis password.
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	// RedisDB is the Redis logical database index.
	RedisDB int `mapstructure:"REDIS_DB"`

	// ChallengeTTL is the verification code lifetime (e.g. "10m").
	ChallengeTTL string `mapstructure:"CHALLENGE_TTL"`
	// ChallengeSweepInterval is how often expired challenges are purged; "0" disables the sweeper.
	ChallengeSweepInterval string `mapstructure:"CHALLENGE_SWEEP_INTERVAL"`

	// JWTPublicKey is the PEM-encoded public key (or path to file) of the account service that issues access tokens.
	JWTPublicKey string `mapstructure:"JWT_PUBLIC_KEY"`
	// JWTIssuer is the expected iss claim of access tokens.
	JWTIssuer string `mapstructure:"JWT_ISSUER"`
	// JWTAudience is the expected aud claim of access tokens.
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	// NotifyRelayURL is the HTTP endpoint of the notification relay. Empty means notifications are only logged.
	NotifyRelayURL string `mapstructure:"NOTIFY_RELAY_URL"`
	// NotifyRelayAPIKey is sent as the Authorization header to the relay.
	NotifyRelayAPIKey string `mapstructure:"NOTIFY_RELAY_API_KEY"`
	// NotifyTimeout bounds a single best-effort notification send (e.g. "5s").
	NotifyTimeout string `mapstructure:"NOTIFY_TIMEOUT"`

	// KafkaBrokers is a comma-separated list of Kafka broker addresses. When set, the server queues
	// notifications on Kafka and cmd/worker delivers them.
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// NotifyKafkaTopic is the Kafka topic for queued notifications.
	NotifyKafkaTopic string `mapstructure:"NOTIFY_KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the notification worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is where the worker records notification deliveries (e.g. http://localhost:3100). Optional.
	LokiURL string `mapstructure:"LOKI_URL"`

	// OTLPEndpoint is the OTLP gRPC collector endpoint. Empty disables export.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext to the collector even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTEL_EXPORTER_OTLP_INSECURE"`
	// ServiceName is the OTEL service.name resource attribute.
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`

	// OTPReturnToClient when true enables dev code mode: issued codes are kept for GetCode on DevService.
	// Must not be true when Env is production.
	OTPReturnToClient bool `mapstructure:"OTP_RETURN_TO_CLIENT"`
	// Env is the application environment (e.g. "development", "production").
	Env string `mapstructure:"APP_ENV"`

	// MemoryEvents seeds the in-memory catalog as "id:capacity,id:capacity". Used only without DATABASE_URL.
	MemoryEvents string `mapstructure:"MEMORY_EVENTS"`
}

// Load reads .env (if present), then builds and validates Config from the environment via Viper.
// Missing .env is ignored (e.g. in CI). Env vars override .env. Returns an error if required fields are invalid.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("GRPC_ADDR", ":8080")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("ATTENDANCE_STORE", "")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CHALLENGE_TTL", "10m")
	v.SetDefault("CHALLENGE_SWEEP_INTERVAL", "5m")
	v.SetDefault("JWT_PUBLIC_KEY", "")
	v.SetDefault("JWT_ISSUER", "rsvp-auth")
	v.SetDefault("JWT_AUDIENCE", "rsvp-api")
	v.SetDefault("NOTIFY_RELAY_URL", "")
	v.SetDefault("NOTIFY_RELAY_API_KEY", "")
	v.SetDefault("NOTIFY_TIMEOUT", "5s")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("NOTIFY_KAFKA_TOPIC", "rsvp-notifications")
	v.SetDefault("KAFKA_GROUP_ID", "rsvp-notification-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_INSECURE", false)
	v.SetDefault("OTEL_SERVICE_NAME", "rsvp-backend")
	v.SetDefault("OTP_RETURN_TO_CLIENT", false)
	v.SetDefault("APP_ENV", "")
	v.SetDefault("MEMORY_EVENTS", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.GRPCAddr == "" {
		return nil, errors.New("config: GRPC_ADDR must be set")
	}

	if cfg.OTPReturnToClient && cfg.Env == "production" {
		return nil, errors.New("config: OTP_RETURN_TO_CLIENT must not be true when APP_ENV=production")
	}

	cfg.AttendanceStore = strings.ToLower(strings.TrimSpace(cfg.AttendanceStore))
	if cfg.AttendanceStore == "" {
		if cfg.DatabaseURL != "" {
			cfg.AttendanceStore = StorePostgres
		} else {
			cfg.AttendanceStore = StoreMemory
		}
	}
	switch cfg.AttendanceStore {
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			return nil, errors.New("config: ATTENDANCE_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if cfg.RedisAddr == "" {
			return nil, errors.New("config: ATTENDANCE_STORE=redis requires REDIS_ADDR")
		}
	case StoreMemory:
	default:
		return nil, fmt.Errorf("config: ATTENDANCE_STORE must be postgres, redis, or memory, got %q", cfg.AttendanceStore)
	}

	if _, err := cfg.MemoryEventsMap(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ChallengeTTLDuration parses ChallengeTTL. Returns 10m if unset or invalid.
func (c *Config) ChallengeTTLDuration() time.Duration {
	d, err := time.ParseDuration(c.ChallengeTTL)
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// SweepInterval parses ChallengeSweepInterval. Returns 0 (disabled) for "0" or negative values and 5m if invalid.
func (c *Config) SweepInterval() time.Duration {
	d, err := time.ParseDuration(c.ChallengeSweepInterval)
	if err != nil {
		return 5 * time.Minute
	}
	if d <= 0 {
		return 0
	}
	return d
}

// NotifyTimeoutDuration parses NotifyTimeout. Returns 5s if unset or invalid.
func (c *Config) NotifyTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.NotifyTimeout)
	if err != nil || d <= 0 {
		return 5 * time.Second
	}
	return d
}

// KafkaBrokersList returns Kafka broker addresses from the comma-separated config.
// Used to decide if queued notifications are enabled (non-empty list).
func (c *Config) KafkaBrokersList() []string {
	if c == nil || c.KafkaBrokers == "" {
		return nil
	}
	parts := strings.Split(c.KafkaBrokers, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// MemoryEventsMap parses MemoryEvents into event ID → capacity.
func (c *Config) MemoryEventsMap() (map[string]int, error) {
	out := map[string]int{}
	if c == nil || strings.TrimSpace(c.MemoryEvents) == "" {
		return out, nil
	}
	for _, part := range strings.Split(c.MemoryEvents, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, capStr, ok := strings.Cut(part, ":")
		id = strings.TrimSpace(id)
		if !ok || id == "" {
			return nil, fmt.Errorf("config: MEMORY_EVENTS entry %q must be id:capacity", part)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(capStr))
		if err != nil || capacity < 1 {
			return nil, fmt.Errorf("config: MEMORY_EVENTS entry %q must have a positive capacity", part)
		}
		out[id] = capacity
	}
	return out, nil
}
