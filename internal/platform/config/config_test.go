package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr :8080, got %q", cfg.Server.Addr)
	}
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected default token TTL 1h, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Registry.DomainPrice != 0 {
		t.Fatalf("expected zero price to defer to the service default, got %d", cfg.Registry.DomainPrice)
	}
	if !cfg.RateLimit.Enabled || cfg.RateLimit.Limit != 100 || cfg.RateLimit.Window != time.Minute {
		t.Fatalf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Kafka.Topic != "nameledger.notifications" {
		t.Fatalf("expected default topic, got %q", cfg.Kafka.Topic)
	}
	if len(cfg.Kafka.Brokers) != 0 {
		t.Fatalf("expected no brokers by default, got %v", cfg.Kafka.Brokers)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("NAMELEDGER_ADDR", ":9090")
	t.Setenv("DOMAIN_PRICE", "750")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092,")
	t.Setenv("RATE_LIMIT_ENABLED", "false")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("JWT_TOKEN_TTL", "not-a-duration")

	cfg := FromEnv()

	if cfg.Server.Addr != ":9090" {
		t.Fatalf("expected overridden addr, got %q", cfg.Server.Addr)
	}
	if cfg.Registry.DomainPrice != 750 {
		t.Fatalf("expected price 750, got %d", cfg.Registry.DomainPrice)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[0] != "broker-1:9092" || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.Kafka.Brokers)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("expected rate limiting disabled")
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Fatalf("expected 30s window, got %s", cfg.RateLimit.Window)
	}
	// Unparseable values fall back to the default rather than failing startup.
	if cfg.Auth.TokenTTL != time.Hour {
		t.Fatalf("expected fallback TTL for bad value, got %s", cfg.Auth.TokenTTL)
	}
}
