// Package config loads server configuration from the environment (and an
// optional .env file) using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Server captures process level configuration.
type Server struct {
	Addr           string        `mapstructure:"ENROLLMENT_ADDR"`
	LogLevel       string        `mapstructure:"LOG_LEVEL"`
	RequestTimeout time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	DatabaseURL    string        `mapstructure:"DATABASE_URL"`
	// PlanCatalog is a comma separated list of planId=Plan Name pairs.
	PlanCatalog string `mapstructure:"PLAN_CATALOG"`
	// MetricsAddr serves /metrics on a separate listener when set.
	MetricsAddr string `mapstructure:"METRICS_ADDR"`
	// OTLPEndpoint receives traces over gRPC when set.
	OTLPEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`

	Redis       RedisConfig       `mapstructure:",squash"`
	Idempotency IdempotencyConfig `mapstructure:",squash"`
	Audit       AuditConfig       `mapstructure:",squash"`
}

// RedisConfig configures the shared Redis client. Empty URL disables Redis.
type RedisConfig struct {
	URL          string        `mapstructure:"REDIS_URL"`
	PoolSize     int           `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int           `mapstructure:"REDIS_MIN_IDLE_CONNS"`
	DialTimeout  time.Duration `mapstructure:"REDIS_DIAL_TIMEOUT"`
	ReadTimeout  time.Duration `mapstructure:"REDIS_READ_TIMEOUT"`
	WriteTimeout time.Duration `mapstructure:"REDIS_WRITE_TIMEOUT"`
}

// IdempotencyConfig bounds how long an Idempotency-Key stays bound to a create.
type IdempotencyConfig struct {
	TTL time.Duration `mapstructure:"IDEMPOTENCY_TTL"`
}

// AuditConfig configures the outbox relay. Empty brokers disable the relay.
type AuditConfig struct {
	KafkaBrokers string        `mapstructure:"KAFKA_BROKERS"`
	Topic        string        `mapstructure:"AUDIT_TOPIC"`
	PollInterval time.Duration `mapstructure:"OUTBOX_POLL_INTERVAL"`
	BatchSize    int           `mapstructure:"OUTBOX_BATCH_SIZE"`
}

// Load reads .env (if present) and the environment into a Server config.
// Environment variables override .env values.
func Load() (*Server, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // a missing .env is fine

	v.AutomaticEnv()
	setDefaults(v)

	var cfg Server
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENROLLMENT_ADDR", ":8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PLAN_CATALOG", "")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONNS", 2)
	v.SetDefault("REDIS_DIAL_TIMEOUT", "5s")
	v.SetDefault("REDIS_READ_TIMEOUT", "3s")
	v.SetDefault("REDIS_WRITE_TIMEOUT", "3s")

	v.SetDefault("IDEMPOTENCY_TTL", "24h")

	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("AUDIT_TOPIC", "enrollment-audit")
	v.SetDefault("OUTBOX_POLL_INTERVAL", "2s")
	v.SetDefault("OUTBOX_BATCH_SIZE", 100)
}

func (c *Server) validate() error {
	if c.Addr == "" {
		return errors.New("config: ENROLLMENT_ADDR must be set")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config: REQUEST_TIMEOUT must be positive")
	}
	if c.Idempotency.TTL <= 0 {
		return errors.New("config: IDEMPOTENCY_TTL must be positive")
	}
	if c.Audit.KafkaBrokers != "" && c.DatabaseURL == "" {
		return errors.New("config: KAFKA_BROKERS requires DATABASE_URL (the relay reads the outbox table)")
	}
	return nil
}

// KafkaBrokerList splits KafkaBrokers on commas, dropping blanks.
func (c AuditConfig) KafkaBrokerList() []string {
	return splitList(c.KafkaBrokers)
}

// Plans parses PlanCatalog into planId → plan name.
func (c *Server) Plans() map[string]string {
	plans := make(map[string]string)
	for _, pair := range splitList(c.PlanCatalog) {
		id, name, ok := strings.Cut(pair, "=")
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if !ok || id == "" || name == "" {
			continue
		}
		plans[id] = name
	}
	return plans
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
