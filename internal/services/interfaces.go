package services

import (
	"context"
	"io"
	"time"

	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

type UploadRequest = validator.UploadRequest
type MonthlyReportQuery = validator.MonthlyReportQuery
type RunListQuery = validator.RunListQuery

// ReportRequest is one uploaded spreadsheet plus who asked for the report.
type ReportRequest struct {
	File        UploadRequest
	Data        io.Reader
	RequestedBy string
}

type WeeklyReportResponse struct {
	*models.WeeklyReport
	RunID string `json:"run_id,omitempty"`
}

type MonthlyReportResponse struct {
	*models.MonthlyReport
	Trend []models.TrendPoint `json:"trend,omitempty"`
	RunID string              `json:"run_id,omitempty"`
}

type PaperReportResponse struct {
	*models.PaperReport
	ExportID        string     `json:"export_id,omitempty"`
	ExportExpiresAt *time.Time `json:"export_expires_at,omitempty"`
	RunID           string     `json:"run_id,omitempty"`
}

// FileResponse is a generated download.
type FileResponse struct {
	FileName    string
	ContentType string
	Data        []byte
	// ExpiresAt is set for stored exports.
	ExpiresAt   *time.Time
}

type RunListResponse struct {
	Runs   []*models.ReportRun `json:"runs"`
	Total  int64               `json:"total"`
	Limit  int                 `json:"limit"`
	Offset int                 `json:"offset"`
}

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ===== SERVICE INTERFACES =====

type WeeklyReportService interface {
	Generate(ctx context.Context, req *ReportRequest) (*WeeklyReportResponse, error)
	Workbook(ctx context.Context, req *ReportRequest) (*FileResponse, error)
}

type MonthlyReportService interface {
	Generate(ctx context.Context, req *ReportRequest, query *MonthlyReportQuery) (*MonthlyReportResponse, error)
	Trend(ctx context.Context, req *ReportRequest, student string) ([]models.TrendPoint, error)
	Workbook(ctx context.Context, req *ReportRequest, query *MonthlyReportQuery) (*FileResponse, error)
}

type PaperReportService interface {
	Generate(ctx context.Context, req *ReportRequest) (*PaperReportResponse, error)
	// Export returns the tagged paper as CSV.
	Export(ctx context.Context, req *ReportRequest) (*FileResponse, error)
	Workbook(ctx context.Context, req *ReportRequest) (*FileResponse, error)
	// GetExport fetches a CSV stored by Generate.
	GetExport(ctx context.Context, id string) (*FileResponse, error)
	DeleteExport(ctx context.Context, id string) error
}

type HistoryService interface {
	ListRuns(ctx context.Context, query *RunListQuery) (*RunListResponse, error)
	GetRun(ctx context.Context, id string) (*models.ReportRun, error)
}

// ServiceManager interface for managing all services
type ServiceManager interface {
	Weekly() WeeklyReportService
	Monthly() MonthlyReportService
	Paper() PaperReportService
	History() HistoryService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
