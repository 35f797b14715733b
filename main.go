package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/bt-analytics-service/internal/cache"
	"github.com/SAP-F-2025/bt-analytics-service/internal/config"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/handlers"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
	"github.com/SAP-F-2025/bt-analytics-service/pkg"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	slogLogger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	logger := utils.NewSlogLogger(slogLogger)

	// Initialize run history storage
	repo, err := pkg.InitRepository(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize repository: %v", err)
	}

	// Initialize Redis (if configured) for stored exports
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, exports will not be stored", "error", err)
		}
	}
	var exports *cache.ExportStore
	if redisClient != nil {
		exports = cache.NewExportStore(cache.NewCacheManager(redisClient), cfg.ExportTTL, slogLogger)
	}

	// Initialize event publisher
	eventCtx, stopEvents := context.WithCancel(context.Background())
	defer stopEvents()

	var publisher events.EventPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher, err := events.NewKafkaEventPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, slogLogger)
		if err != nil {
			log.Fatalf("Failed to initialize event publisher: %v", err)
		}
		publisher = kafkaPublisher
	} else {
		channelPublisher, pubSub := events.NewChannelEventPublisher(cfg.KafkaTopic, slogLogger)
		if err := logEvents(eventCtx, pubSub, channelPublisher.Topic(), logger); err != nil {
			log.Fatalf("Failed to subscribe to events: %v", err)
		}
		publisher = channelPublisher
	}

	// Initialize validator
	validator := validator.New()

	// Initialize services
	serviceManager := services.NewDefaultServiceManager(services.ServiceDependencies{
		Repo:      repo,
		Exports:   exports,
		Publisher: publisher,
		Predictor: predict.NewRandomForest(cfg.PredictorTrees, cfg.PredictorSeed),
	}, slogLogger, validator)
	if err := serviceManager.Initialize(context.Background()); err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	// Initialize handlers
	handlerManager := handlers.NewHandlerManager(serviceManager, validator, logger, cfg.Casdoor, cfg.MaxUploadBytes())
	if !cfg.Casdoor.Enabled() {
		logger.Warn("CASDOOR_ENDPOINT not set, report endpoints are unauthenticated")
	}

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadBytes()

	// Setup middleware
	handlers.SetupMiddleware(router, logger)

	// Setup routes
	handlerManager.SetupRoutes(router)

	// Create HTTP server
	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Shutdown services (closes the publisher and the repository)
	if err := serviceManager.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown services", "error", err)
	}
	stopEvents()

	// Close Redis connection
	if redisClient != nil {
		redisClient.Close()
	}

	logger.Info("Server exited")
}

// logEvents drains the in-process topic so report events show up in the
// service log when no broker is configured.
func logEvents(ctx context.Context, pubSub *gochannel.GoChannel, topic string, logger utils.Logger) error {
	messages, err := pubSub.Subscribe(ctx, topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			logger.Info("Report event",
				"event_id", msg.UUID,
				"event_type", msg.Metadata.Get("event_type"),
				"payload", string(msg.Payload))
			msg.Ack()
		}
	}()
	return nil
}
