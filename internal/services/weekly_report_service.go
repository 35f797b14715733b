package services

import (
	"context"
	"log/slog"

	"github.com/SAP-F-2025/bt-analytics-service/internal/analytics"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const weeklyWorkbookName = "BT_Weekly_Report.xlsx"

type weeklyReportService struct {
	reportBase
}

func NewWeeklyReportService(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) WeeklyReportService {
	return &weeklyReportService{newReportBase(repo, publisher, logger, v)}
}

func (s *weeklyReportService) build(ctx context.Context, req *ReportRequest) (*models.WeeklyReport, error) {
	t, err := s.readUpload(ctx, req)
	if err != nil {
		return nil, err
	}
	report, err := analytics.BuildWeeklyReport(t)
	if err != nil {
		return nil, wrapServiceError(err)
	}
	return report, nil
}

func (s *weeklyReportService) Generate(ctx context.Context, req *ReportRequest) (*WeeklyReportResponse, error) {
	report, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "Weekly report generated",
		"file_name", req.File.FileName,
		"students", len(report.Rows))

	return &WeeklyReportResponse{
		WeeklyReport: report,
		RunID:        s.runs.record(ctx, models.ReportWeekly, req, len(report.Rows), weeklySummary(report)),
	}, nil
}

func (s *weeklyReportService) Workbook(ctx context.Context, req *ReportRequest) (*FileResponse, error) {
	report, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	return writeWorkbook(weeklyWorkbookName, sheet.Worksheet{
		Name:    "Weekly_Report",
		Table:   analytics.WeeklyTable(report),
		Numeric: analytics.WeeklyNumericColumns(),
		Charts: []sheet.ChartSpec{{
			Kind:           sheet.ColumnChart,
			Title:          "Overall Accuracy by Student",
			CategoryColumn: report.IdentifierColumn,
			ValueColumn:    analytics.ColumnOverallAccuracy,
			LastRow:        -1,
		}},
	})
}

func weeklySummary(report *models.WeeklyReport) map[string]interface{} {
	summary := map[string]interface{}{"students": len(report.Rows)}
	if len(report.Rows) == 0 {
		return summary
	}

	var overall float64
	var levels [6]float64
	for _, r := range report.Rows {
		overall += r.OverallAccuracy
		for i, acc := range r.LevelAccuracy {
			levels[i] += acc
		}
	}
	n := float64(len(report.Rows))
	for i := range levels {
		levels[i] /= n
	}
	summary["mean_overall_accuracy"] = overall / n
	summary["mean_level_accuracy"] = levels
	return summary
}
