package pkg

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/SAP-F-2025/bt-analytics-service/internal/config"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/memory"
	pgrepo "github.com/SAP-F-2025/bt-analytics-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories/sqlite"
)

// InitDatabase opens the PostgreSQL connection pool.
func InitDatabase(cfg *config.Config) (*gorm.DB, error) {
	logLevel := gormlogger.Warn
	if cfg.LogLevel <= slog.LevelDebug {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// InitRepository picks the run history backend: PostgreSQL or SQLite when
// DATABASE_URL is set (by DB_DRIVER), memory otherwise.
func InitRepository(cfg *config.Config) (repositories.Repository, error) {
	if cfg.DatabaseURL == "" {
		return memory.NewRepository(), nil
	}

	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.NewRepository(cfg.DatabaseURL)
	default:
		db, err := InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		manager := pgrepo.NewRepositoryManager(pgrepo.RepositoryConfig{DB: db, AutoMigrate: true})
		if err := manager.Initialize(); err != nil {
			return nil, fmt.Errorf("failed to initialize repositories: %w", err)
		}
		return manager.GetRepository(), nil
	}
}

// NewRedisClient connects to REDIS_URL and checks the connection.
func NewRedisClient(cfg *config.Config) (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
