package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string     `validate:"required,numeric"`
	Environment string     `validate:"oneof=development staging production test"`
	LogLevel    slog.Level `validate:"-"`

	// DatabaseURL empty keeps the run history in memory.
	DatabaseURL string
	DBDriver    string `validate:"oneof=postgres sqlite"`

	// RedisURL empty disables the export store.
	RedisURL  string
	ExportTTL time.Duration `validate:"gt=0"`

	// KafkaBrokers empty publishes report events on an in-process channel.
	KafkaBrokers []string
	KafkaTopic   string `validate:"required"`

	Casdoor CasdoorConfig

	MaxUploadMB    int64 `validate:"min=1,max=512"`
	PredictorTrees int   `validate:"min=1,max=1000"`
	PredictorSeed  int64
}

type CasdoorConfig struct {
	Endpoint     string `validate:"omitempty,url"`
	ClientID     string
	ClientSecret string
	Cert         string
	Organization string
	Application  string
}

// Enabled reports whether bearer token authentication is configured.
func (c CasdoorConfig) Enabled() bool {
	return c.Endpoint != ""
}

// MaxUploadBytes is the request body limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// LoadConfig reads the environment, after loading .env when present.
func LoadConfig() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBDriver:    getEnv("DB_DRIVER", "postgres"),
		RedisURL:    os.Getenv("REDIS_URL"),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "bt-analytics.reports"),
		Casdoor: CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.ExportTTL, err = time.ParseDuration(getEnv("EXPORT_TTL", "30m")); err != nil {
		return nil, fmt.Errorf("invalid EXPORT_TTL: %w", err)
	}
	if cfg.MaxUploadMB, err = strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "10"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_MB: %w", err)
	}
	if cfg.PredictorTrees, err = strconv.Atoi(getEnv("PREDICTOR_TREES", "100")); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_TREES: %w", err)
	}
	if cfg.PredictorSeed, err = strconv.ParseInt(getEnv("PREDICTOR_SEED", "42"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid PREDICTOR_SEED: %w", err)
	}
	cfg.KafkaBrokers = splitList(os.Getenv("KAFKA_BROKERS"))

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
