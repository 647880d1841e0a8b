package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DriverMemory, cfg.StorageDriver)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, 10, cfg.ShutdownTimeoutSeconds)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_ADDRESS", ":9090")
	t.Setenv("STORAGE_DRIVER", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092;broker-b:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ServerAddress)
	assert.Equal(t, DriverRedis, cfg.StorageDriver)
	assert.Equal(t, "localhost:6379", cfg.RedisAddress)
	assert.Equal(t, []string{"broker-a:9092", "broker-b:9092"}, cfg.KafkaBrokers)
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "cassandra")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRequiresDriverSettings(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "postgres")

	_, err := Load()
	assert.Error(t, err)
}
