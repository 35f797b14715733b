package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SAP-F-2025/bt-analytics-service/internal/cache"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	Weekly  ServiceConfig
	Monthly ServiceConfig
	Paper   ServiceConfig
}

type ServiceConfig struct {
	Enabled bool
	// RecordRuns stores a run history entry and publishes a report event
	RecordRuns bool
}

// ServiceDependencies are the infrastructure handles shared by services.
// Exports and Publisher may be nil.
type ServiceDependencies struct {
	Repo      repositories.Repository
	Exports   *cache.ExportStore
	Publisher events.EventPublisher
	Predictor predict.Predictor
}

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	deps      ServiceDependencies
	logger    *slog.Logger
	validator *validator.Validator
	config    ServiceManagerConfig

	// Service instances
	weeklyService  WeeklyReportService
	monthlyService MonthlyReportService
	paperService   PaperReportService
	historyService HistoryService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(deps ServiceDependencies, logger *slog.Logger, validator *validator.Validator, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		deps:      deps,
		logger:    logger,
		validator: validator,
		config:    config,
	}
}

// NewDefaultServiceManager enables every report and records every run
func NewDefaultServiceManager(deps ServiceDependencies, logger *slog.Logger, validator *validator.Validator) ServiceManager {
	config := ServiceManagerConfig{
		Weekly:  ServiceConfig{Enabled: true, RecordRuns: true},
		Monthly: ServiceConfig{Enabled: true, RecordRuns: true},
		Paper:   ServiceConfig{Enabled: true, RecordRuns: true},
	}

	return NewServiceManager(deps, logger, validator, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	if err := sm.config.Validate(); err != nil {
		return err
	}
	if sm.deps.Repo == nil {
		return fmt.Errorf("repository is required")
	}

	sm.logger.Info("Initializing service manager")

	if sm.deps.Predictor == nil {
		sm.deps.Predictor = predict.NewRandomForest(predict.DefaultTrees, predict.DefaultSeed)
	}

	if sm.config.Weekly.Enabled {
		repo, publisher := sm.recording(sm.config.Weekly)
		sm.weeklyService = NewWeeklyReportService(repo, publisher, sm.logger, sm.validator)
		sm.logger.Info("Weekly report service initialized")
	}

	if sm.config.Monthly.Enabled {
		repo, publisher := sm.recording(sm.config.Monthly)
		sm.monthlyService = NewMonthlyReportService(repo, publisher, sm.deps.Predictor, sm.logger, sm.validator)
		sm.logger.Info("Monthly report service initialized")
	}

	if sm.config.Paper.Enabled {
		repo, publisher := sm.recording(sm.config.Paper)
		sm.paperService = NewPaperReportService(repo, publisher, sm.deps.Exports, sm.logger, sm.validator)
		sm.logger.Info("Paper report service initialized",
			"exports_enabled", sm.deps.Exports.Available())
	}

	sm.historyService = NewHistoryService(sm.deps.Repo, sm.logger, sm.validator)

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

// recording returns the run history handles for a service, nil when its
// runs are not recorded.
func (sm *serviceManager) recording(cfg ServiceConfig) (repositories.Repository, events.EventPublisher) {
	if !cfg.RecordRuns {
		return nil, nil
	}
	return sm.deps.Repo, sm.deps.Publisher
}

// Service getters
func (sm *serviceManager) Weekly() WeeklyReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Weekly.Enabled && sm.weeklyService != nil {
		return sm.weeklyService
	}

	panic("weekly report service not enabled or not initialized")
}

func (sm *serviceManager) Monthly() MonthlyReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Monthly.Enabled && sm.monthlyService != nil {
		return sm.monthlyService
	}

	panic("monthly report service not enabled or not initialized")
}

func (sm *serviceManager) Paper() PaperReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Paper.Enabled && sm.paperService != nil {
		return sm.paperService
	}

	panic("paper report service not enabled or not initialized")
}

func (sm *serviceManager) History() HistoryService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	return sm.historyService
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	if err := sm.deps.Repo.Ping(ctx); err != nil {
		return fmt.Errorf("repository health check failed: %w", err)
	}

	if sm.deps.Exports.Available() {
		if err := sm.deps.Exports.HealthCheck(ctx); err != nil {
			return fmt.Errorf("export store health check failed: %w", err)
		}
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	if sm.deps.Publisher != nil {
		if err := sm.deps.Publisher.Close(); err != nil {
			sm.logger.Error("Failed to close event publisher", "error", err)
		}
	}

	if sm.deps.Repo != nil {
		if err := sm.deps.Repo.Close(); err != nil {
			sm.logger.Error("Failed to close repository", "error", err)
		}
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== CONFIGURATION VALIDATION =====

// Validate validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	if !config.Weekly.Enabled && !config.Monthly.Enabled && !config.Paper.Enabled {
		return fmt.Errorf("configuration validation failed: no report service enabled")
	}
	return nil
}
