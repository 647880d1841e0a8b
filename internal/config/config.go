// Package config loads service configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Storage driver names accepted in STORAGE_DRIVER.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// Config is the full service configuration. Defaults are chosen so the
// service runs with zero environment using the in-memory store.
type Config struct {
	ServerAddress string `env:"SERVER_ADDRESS,default=:8080"`
	LogLevel      string `env:"LOG_LEVEL,default=info"`

	StorageDriver string `env:"STORAGE_DRIVER,default=memory"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	RedisAddress  string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB,default=0"`

	// Semicolon-separated broker list; empty disables event publishing.
	KafkaBrokers []string `env:"KAFKA_BROKERS"`
	KafkaTopic   string   `env:"KAFKA_TOPIC,default=points.ledger.operations"`

	ShutdownTimeoutSeconds int `env:"SHUTDOWN_TIMEOUT_SECONDS,default=10"`
}

// Load reads the .env file if present, then decodes the environment.
func Load() (Config, error) {
	// A missing .env file is not an error; env vars alone are fine.
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode environment: %w", err)
	}

	switch cfg.StorageDriver {
	case DriverMemory, DriverPostgres, DriverRedis:
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.StorageDriver == DriverPostgres && cfg.PostgresDSN == "" {
		return Config{}, fmt.Errorf("STORAGE_DRIVER=postgres requires POSTGRES_DSN")
	}
	if cfg.StorageDriver == DriverRedis && cfg.RedisAddress == "" {
		return Config{}, fmt.Errorf("STORAGE_DRIVER=redis requires REDIS_ADDR")
	}

	return cfg, nil
}
