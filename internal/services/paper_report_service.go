package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SAP-F-2025/bt-analytics-service/internal/analytics"
	"github.com/SAP-F-2025/bt-analytics-service/internal/cache"
	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const paperWorkbookName = "BT_Analyzed_Question_Paper.xlsx"

type paperReportService struct {
	reportBase
	exports *cache.ExportStore
}

// NewPaperReportService creates the question paper scorer. exports may be
// nil, in which case no export id is handed out.
func NewPaperReportService(repo repositories.Repository, publisher events.EventPublisher, exports *cache.ExportStore, logger *slog.Logger, v *validator.Validator) PaperReportService {
	return &paperReportService{
		reportBase: newReportBase(repo, publisher, logger, v),
		exports:    exports,
	}
}

func (s *paperReportService) build(ctx context.Context, req *ReportRequest) (*sheet.Table, *models.PaperReport, error) {
	t, err := s.readUpload(ctx, req)
	if err != nil {
		return nil, nil, err
	}
	report, err := analytics.BuildPaperReport(t)
	if err != nil {
		return nil, nil, wrapServiceError(err)
	}
	if report.AutoTagged {
		s.logger.InfoContext(ctx, "Question paper auto-tagged", "file_name", req.File.FileName)
	}
	return t, report, nil
}

func (s *paperReportService) Generate(ctx context.Context, req *ReportRequest) (*PaperReportResponse, error) {
	t, report, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	resp := &PaperReportResponse{PaperReport: report}

	if s.exports.Available() {
		file, err := writeCSV(analytics.ExportFileName, analytics.TaggedTable(t, report.Questions))
		if err != nil {
			return nil, err
		}
		export, err := s.exports.Save(ctx, file.FileName, file.ContentType, file.Data)
		if err != nil {
			s.logger.WarnContext(ctx, "Failed to store paper export",
				"error", err,
				"file_name", req.File.FileName)
		} else {
			expires := export.CreatedAt.Add(s.exports.TTL())
			resp.ExportID = export.ID
			resp.ExportExpiresAt = &expires
		}
	}

	s.logger.InfoContext(ctx, "Question paper scored",
		"file_name", req.File.FileName,
		"questions", len(report.Questions),
		"total_score", report.Summary.TotalScore,
		"difficulty", report.Summary.Difficulty.Label)

	resp.RunID = s.runs.record(ctx, models.ReportPaper, req, len(report.Questions), paperSummary(report))
	return resp, nil
}

func (s *paperReportService) Export(ctx context.Context, req *ReportRequest) (*FileResponse, error) {
	t, report, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}
	return writeCSV(analytics.ExportFileName, analytics.TaggedTable(t, report.Questions))
}

func (s *paperReportService) Workbook(ctx context.Context, req *ReportRequest) (*FileResponse, error) {
	t, report, err := s.build(ctx, req)
	if err != nil {
		return nil, err
	}

	return writeWorkbook(paperWorkbookName,
		sheet.Worksheet{
			Name:    "Tagged_Questions",
			Table:   analytics.TaggedTable(t, report.Questions),
			Numeric: []string{analytics.ColumnBTScore},
		},
		sheet.Worksheet{
			Name:    "BT_Summary",
			Table:   analytics.SummaryTable(report.Summary),
			Numeric: analytics.SummaryNumericColumns(),
			Charts: []sheet.ChartSpec{{
				Kind:           sheet.ColumnChart,
				Title:          "BT Score Distribution",
				CategoryColumn: analytics.ColumnBTLevel,
				ValueColumn:    analytics.ColumnTotalScore,
				LastRow:        -1,
			}},
		},
	)
}

func (s *paperReportService) GetExport(ctx context.Context, id string) (*FileResponse, error) {
	if !s.exports.Available() {
		return nil, ErrExportUnavailable
	}

	export, err := s.exports.Load(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrExportNotFound) {
			s.logger.ErrorContext(ctx, "Failed to load export", "error", err, "export_id", id)
		}
		return nil, wrapServiceError(err)
	}
	file := &FileResponse{FileName: export.FileName, ContentType: export.ContentType, Data: export.Data}
	if !export.ExpiresAt.IsZero() {
		file.ExpiresAt = &export.ExpiresAt
	}
	return file, nil
}

func (s *paperReportService) DeleteExport(ctx context.Context, id string) error {
	if !s.exports.Available() {
		return ErrExportUnavailable
	}

	if err := s.exports.Delete(ctx, id); err != nil {
		return wrapServiceError(err)
	}
	s.logger.InfoContext(ctx, "Export deleted", "export_id", id)
	return nil
}

func paperSummary(report *models.PaperReport) map[string]interface{} {
	levels := make(map[string]int, len(report.Summary.Levels))
	for _, l := range report.Summary.Levels {
		levels[string(l.Level)] = l.Count
	}
	return map[string]interface{}{
		"questions":   len(report.Questions),
		"total_score": report.Summary.TotalScore,
		"difficulty":  report.Summary.Difficulty.Label,
		"auto_tagged": report.AutoTagged,
		"levels":      levels,
	}
}
