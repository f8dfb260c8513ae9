// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a working default; an empty Postgres or
// Kafka setting selects the in-memory fallback for that concern.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "nameledger/pkg/platform/strings"
)

// Config is the full runtime configuration of the server.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Registry  RegistryConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
}

// ServerConfig captures HTTP server level configuration.
type ServerConfig struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// AuthConfig configures token issuing and validation.
type AuthConfig struct {
	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration
}

// RegistryConfig configures registry semantics. A zero DomainPrice keeps the
// service default.
type RegistryConfig struct {
	DomainPrice uint64
}

// PostgresConfig selects the persistent store. An empty URL keeps the
// registry on in-memory stores.
type PostgresConfig struct {
	URL string
}

// RedisConfig configures the rate limit counter backend. An empty URL keeps
// counting in process memory.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures notification publishing. Empty brokers keep
// notifications in the outbox (or memory sink) without a relay.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// RateLimitConfig configures the per-principal request limiter.
type RateLimitConfig struct {
	Enabled bool
	Limit   int64
	Window  time.Duration
}

// AdminConfig guards operational endpoints. An empty token leaves /metrics
// open.
type AdminConfig struct {
	Token string
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: ServerConfig{
			Addr:            getEnv("NAMELEDGER_ADDR", ":8080"),
			ShutdownTimeout: getEnvDuration("NAMELEDGER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			JWTIssuer:     getEnv("JWT_ISSUER", "nameledger"),
			TokenTTL:      getEnvDuration("JWT_TOKEN_TTL", time.Hour),
		},
		Registry: RegistryConfig{
			DomainPrice: getEnvUint("DOMAIN_PRICE", 0),
		},
		Postgres: PostgresConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getEnvInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   getEnv("KAFKA_TOPIC", "nameledger.notifications"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getEnvBool("RATE_LIMIT_ENABLED", true),
			Limit:   int64(getEnvInt("RATE_LIMIT_REQUESTS", 100)),
			Window:  getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Admin: AdminConfig{
			Token: os.Getenv("ADMIN_TOKEN"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvUint(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

// splitList parses a comma-separated list, dropping empty entries and
// duplicates.
func splitList(v string) []string {
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}
