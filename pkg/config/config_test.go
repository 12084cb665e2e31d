package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_ValoresPorDefecto(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("KAFKA_BROKERS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTP.Port)
	assert.Equal(t, 25, cfg.DB.MaxConns)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoad_DesdeEntorno(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("STORAGE_DRIVER", "MEMORY")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "debug", cfg.App.LogLevel)
}

func TestLoad_DriverInvalido(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_MemoriaFueraDeDesarrollo(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "memory")
	for _, env := range []string{"production", "staging"} {
		t.Setenv("APP_ENV", env)
		_, err := Load()
		require.Error(t, err, env)
		assert.Contains(t, err.Error(), "STORAGE_DRIVER=memory")
	}

	t.Setenv("APP_ENV", "production")
	t.Setenv("STORAGE_DRIVER", "postgres")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoragePostgres, cfg.Storage.Driver)
}

func TestDSN_EscapaPassword(t *testing.T) {
	c := DBConfig{Host: "db", Port: 5432, User: "app", Password: "p@ss/word", DBName: "inv", SSLMode: "disable"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/inv?sslmode=disable", c.DSN())
	assert.Equal(t, c.DSN(), c.ConnectionString())

	c.DatabaseURL = "postgres://otro"
	assert.Equal(t, "postgres://otro", c.ConnectionString())
}
