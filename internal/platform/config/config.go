package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures process-level configuration so main stays lean.
type Config struct {
	Addr        string
	DatabaseURL string
	Redis       RedisConfig
	Kafka       KafkaConfig
	// AdminJWTKey signs/verifies the bearer tokens for operational endpoints
	// (reminder sweep, stats recompute). End-user auth is out of scope.
	AdminJWTKey string
	Reminders   ReminderConfig
}

// RedisConfig configures the counter-store client.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the optional signature event stream. Empty SeedBrokers
// disables publishing.
type KafkaConfig struct {
	SeedBrokers []string
	Topic       string
}

// ReminderConfig controls the confirmation reminder sweep.
type ReminderConfig struct {
	// SignedBefore is how old an unconfirmed signature must be before the first
	// reminder goes out.
	SignedBefore time.Duration
	// RemindedBefore is the minimum gap between two reminders for one signature.
	RemindedBefore time.Duration
	BatchSize      int
	Concurrency    int
	// SweepInterval enables the in-process background sweep when positive.
	// Zero leaves sweeping to the admin endpoint (external scheduler).
	SweepInterval time.Duration
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Config {
	return Config{
		Addr:        envString("PETITIES_ADDR", ":8080"),
		DatabaseURL: os.Getenv("PETITIES_DATABASE_URL"),
		Redis: RedisConfig{
			URL:          os.Getenv("PETITIES_REDIS_URL"),
			PoolSize:     envInt("PETITIES_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PETITIES_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("PETITIES_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("PETITIES_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("PETITIES_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			SeedBrokers: envList("PETITIES_KAFKA_BROKERS"),
			Topic:       envString("PETITIES_KAFKA_TOPIC", "signature-events"),
		},
		AdminJWTKey: envString("PETITIES_ADMIN_JWT_KEY", "dev-secret-key-change-in-production"),
		Reminders: ReminderConfig{
			SignedBefore:   envDuration("PETITIES_REMINDER_SIGNED_BEFORE", 24*time.Hour),
			RemindedBefore: envDuration("PETITIES_REMINDER_REMINDED_BEFORE", 7*24*time.Hour),
			BatchSize:      envInt("PETITIES_REMINDER_BATCH_SIZE", 200),
			Concurrency:    envInt("PETITIES_REMINDER_CONCURRENCY", 8),
			SweepInterval:  envDuration("PETITIES_REMINDER_SWEEP_INTERVAL", 0),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
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

func envDuration(key string, fallback time.Duration) time.Duration {
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

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
