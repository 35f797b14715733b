package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/bt-analytics-service/internal/analytics"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/predict"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const monthlyWorkbookName = "BT_Monthly_Report.xlsx"

type monthlyReportService struct {
	reportBase
	predictor predict.Predictor
}

func NewMonthlyReportService(repo repositories.Repository, publisher events.EventPublisher, predictor predict.Predictor, logger *slog.Logger, v *validator.Validator) MonthlyReportService {
	return &monthlyReportService{
		reportBase: newReportBase(repo, publisher, logger, v),
		predictor:  predictor,
	}
}

func (s *monthlyReportService) build(ctx context.Context, req *ReportRequest, query *MonthlyReportQuery) (*models.MonthlyReport, error) {
	if query == nil {
		query = &MonthlyReportQuery{}
	}
	if err := s.validator.Validate(query); err != nil {
		return nil, err
	}

	t, err := s.readUpload(ctx, req)
	if err != nil {
		return nil, err
	}
	report, err := analytics.BuildMonthlyReport(ctx, t, analytics.MonthlyOptions{
		Predict:   query.Predict,
		Predictor: s.predictor,
	})
	if err != nil {
		return nil, wrapServiceError(err)
	}

	for _, w := range report.Warnings {
		s.logger.WarnContext(ctx, "Monthly prediction skipped",
			"file_name", req.File.FileName,
			"warning", w)
	}
	return report, nil
}

func (s *monthlyReportService) Generate(ctx context.Context, req *ReportRequest, query *MonthlyReportQuery) (*MonthlyReportResponse, error) {
	report, err := s.build(ctx, req, query)
	if err != nil {
		return nil, err
	}

	resp := &MonthlyReportResponse{MonthlyReport: report}
	if query != nil && query.Student != "" {
		if resp.Trend, err = analytics.Trend(report, query.Student); err != nil {
			return nil, wrapServiceError(err)
		}
	}

	s.logger.InfoContext(ctx, "Monthly report generated",
		"file_name", req.File.FileName,
		"students", len(report.Rows),
		"predicted", report.Predicted)

	resp.RunID = s.runs.record(ctx, models.ReportMonthly, req, len(report.Rows), monthlySummary(report))
	return resp, nil
}

func (s *monthlyReportService) Trend(ctx context.Context, req *ReportRequest, student string) ([]models.TrendPoint, error) {
	if err := s.validator.Validate(&validator.TrendQuery{Student: student}); err != nil {
		return nil, err
	}

	report, err := s.build(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	points, err := analytics.Trend(report, student)
	if err != nil {
		return nil, wrapServiceError(err)
	}
	return points, nil
}

func (s *monthlyReportService) Workbook(ctx context.Context, req *ReportRequest, query *MonthlyReportQuery) (*FileResponse, error) {
	report, err := s.build(ctx, req, query)
	if err != nil {
		return nil, err
	}

	sheets := []sheet.Worksheet{{
		Name:    "Monthly_Report",
		Table:   analytics.MonthlyTable(report),
		Numeric: analytics.MonthlyNumericColumns(),
		Charts: []sheet.ChartSpec{{
			Kind:           sheet.ColumnChart,
			Title:          "Monthly Average Accuracy",
			CategoryColumn: report.IdentifierColumn,
			ValueColumn:    analytics.ColumnMonthlyAvgAccuracy,
			LastRow:        -1,
		}},
	}}

	if query != nil && query.Student != "" {
		points, err := analytics.Trend(report, query.Student)
		if err != nil {
			return nil, wrapServiceError(err)
		}
		sheets = append(sheets, sheet.Worksheet{
			Name:    "Trend",
			Table:   analytics.TrendTable(points),
			Numeric: []string{analytics.ColumnAccuracy},
			Charts: []sheet.ChartSpec{{
				Kind:           sheet.LineChart,
				Title:          fmt.Sprintf("Trend for %s", query.Student),
				CategoryColumn: analytics.ColumnWeek,
				ValueColumn:    analytics.ColumnAccuracy,
				LastRow:        -1,
			}},
		})
	}

	return writeWorkbook(monthlyWorkbookName, sheets...)
}

func monthlySummary(report *models.MonthlyReport) map[string]interface{} {
	summary := map[string]interface{}{
		"students":  len(report.Rows),
		"predicted": report.Predicted,
	}
	if len(report.Rows) == 0 {
		return summary
	}

	var avg float64
	var support, declining, highRisk int
	for _, r := range report.Rows {
		avg += r.MonthlyAvgAccuracy
		if r.MonthlyAvgAccuracy < 50 {
			support++
		}
		if r.WeekAccuracy[models.MonthlyWeekCount-1] < r.WeekAccuracy[0] {
			declining++
		}
		if r.PredictedLabel != nil && *r.PredictedLabel == models.HighRiskLabel {
			highRisk++
		}
	}
	summary["mean_monthly_accuracy"] = avg / float64(len(report.Rows))
	summary["needs_support"] = support
	summary["declining"] = declining
	if report.Predicted {
		summary["high_risk"] = highRisk
	}
	return summary
}
