package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENVIRONMENT", "LOG_LEVEL", "DATABASE_URL", "DB_DRIVER", "REDIS_URL",
		"KAFKA_BROKERS", "KAFKA_TOPIC", "CASDOOR_ENDPOINT", "EXPORT_TTL", "MAX_UPLOAD_MB", "PREDICTOR_TREES", "PREDICTOR_SEED"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 30*time.Minute, cfg.ExportTTL)
	assert.Equal(t, int64(10), cfg.MaxUploadMB)
	assert.Equal(t, int64(10<<20), cfg.MaxUploadBytes())
	assert.Equal(t, 100, cfg.PredictorTrees)
	assert.Equal(t, int64(42), cfg.PredictorSeed)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.Casdoor.Enabled())
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("EXPORT_TTL", "5m")
	t.Setenv("CASDOOR_ENDPOINT", "https://auth.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 5*time.Minute, cfg.ExportTTL)
	assert.True(t, cfg.Casdoor.Enabled())
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"log level", "LOG_LEVEL", "loud"},
		{"ttl", "EXPORT_TTL", "soon"},
		{"upload size", "MAX_UPLOAD_MB", "0"},
		{"driver", "DB_DRIVER", "mysql"},
		{"environment", "ENVIRONMENT", "qa"},
		{"trees", "PREDICTOR_TREES", "many"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
