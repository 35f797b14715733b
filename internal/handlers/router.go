package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/bt-analytics-service/internal/config"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const serviceName = "bt-analytics-service"

type HandlerManager struct {
	reportHandler  *ReportHandler
	historyHandler *HistoryHandler
	authMiddleware *CasdoorAuthMiddleware
	serviceManager services.ServiceManager
	maxUploadBytes int64
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
	maxUploadBytes int64,
) *HandlerManager {
	var authMiddleware *CasdoorAuthMiddleware
	if casdoorConfig.Enabled() {
		authMiddleware = NewCasdoorAuthMiddleware(casdoorConfig)
	}

	return newHandlerManager(serviceManager, validator, logger, authMiddleware, maxUploadBytes)
}

func newHandlerManager(
	serviceManager services.ServiceManager,
	validator *validator.Validator,
	logger utils.Logger,
	authMiddleware *CasdoorAuthMiddleware,
	maxUploadBytes int64,
) *HandlerManager {
	return &HandlerManager{
		reportHandler: NewReportHandler(
			serviceManager.Weekly(),
			serviceManager.Monthly(),
			serviceManager.Paper(),
			validator,
			logger,
		),
		historyHandler: NewHistoryHandler(serviceManager.History(), logger),
		authMiddleware: authMiddleware,
		serviceManager: serviceManager,
		maxUploadBytes: maxUploadBytes,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	v1 := router.Group("/api/v1")
	if hm.authMiddleware != nil {
		// Reports are for teachers and admins only
		v1.Use(hm.authMiddleware.AuthMiddleware())
		v1.Use(hm.authMiddleware.RequireRoleMiddleware(models.RoleTeacher, models.RoleAdmin))
	}

	reports := v1.Group("/reports")
	{
		uploads := reports.Group("")
		if hm.maxUploadBytes > 0 {
			uploads.Use(UploadLimitMiddleware(hm.maxUploadBytes))
		}

		// Weekly accuracy
		uploads.POST("/weekly", hm.reportHandler.WeeklyReport)
		uploads.POST("/weekly/xlsx", hm.reportHandler.WeeklyWorkbook)

		// Monthly aggregate, prediction and trend
		uploads.POST("/monthly", hm.reportHandler.MonthlyReport)
		uploads.POST("/monthly/trend", hm.reportHandler.MonthlyTrend)
		uploads.POST("/monthly/xlsx", hm.reportHandler.MonthlyWorkbook)

		// Question paper scoring
		uploads.POST("/paper", hm.reportHandler.PaperReport)
		uploads.POST("/paper/export", hm.reportHandler.PaperExport)
		uploads.POST("/paper/xlsx", hm.reportHandler.PaperWorkbook)

		reports.GET("/exports/:id", hm.reportHandler.GetExport)
		reports.DELETE("/exports/:id", hm.reportHandler.DeleteExport)

		// Run history
		reports.GET("/runs", hm.historyHandler.ListRuns)
		reports.GET("/runs/:id", hm.historyHandler.GetRun)
	}

	// Health check endpoint
	router.GET("/health", hm.health)
}

func (hm *HandlerManager) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := hm.serviceManager.HealthCheck(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "unhealthy",
			"service": serviceName,
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
	})
}
