package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/bt-analytics-service/internal/events"
	"github.com/SAP-F-2025/bt-analytics-service/internal/models"
	"github.com/SAP-F-2025/bt-analytics-service/internal/repositories"
	"github.com/SAP-F-2025/bt-analytics-service/internal/sheet"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

// reportBase is shared by the three report services.
type reportBase struct {
	validator *validator.Validator
	logger    *slog.Logger
	runs      *runRecorder
}

func newReportBase(repo repositories.Repository, publisher events.EventPublisher, logger *slog.Logger, v *validator.Validator) reportBase {
	return reportBase{
		validator: v,
		logger:    logger,
		runs:      &runRecorder{repo: repo, publisher: publisher, logger: logger},
	}
}

// readUpload validates the upload options and parses the spreadsheet.
func (b *reportBase) readUpload(ctx context.Context, req *ReportRequest) (*sheet.Table, error) {
	if req == nil || req.Data == nil {
		return nil, fmt.Errorf("%w: no file uploaded", ErrInvalidInput)
	}
	if err := b.validator.Validate(&req.File); err != nil {
		return nil, err
	}

	t, err := sheet.Read(req.File.FileName, req.Data, sheet.ReadOptions{Sheet: req.File.Sheet})
	if err != nil {
		b.logger.WarnContext(ctx, "Failed to read upload",
			"error", err,
			"file_name", req.File.FileName)
		return nil, wrapServiceError(err)
	}

	b.logger.DebugContext(ctx, "Upload parsed",
		"file_name", req.File.FileName,
		"columns", len(t.Headers),
		"rows", t.Len())
	return t, nil
}

func writeWorkbook(fileName string, sheets ...sheet.Worksheet) (*FileResponse, error) {
	var buf bytes.Buffer
	if err := sheet.WriteXLSX(&buf, sheets); err != nil {
		return nil, fmt.Errorf("failed to build workbook: %w", err)
	}
	return &FileResponse{FileName: fileName, ContentType: ContentTypeXLSX, Data: buf.Bytes()}, nil
}

func writeCSV(fileName string, t *sheet.Table) (*FileResponse, error) {
	var buf bytes.Buffer
	if err := sheet.WriteCSV(&buf, t); err != nil {
		return nil, err
	}
	return &FileResponse{FileName: fileName, ContentType: ContentTypeCSV, Data: buf.Bytes()}, nil
}

// runRecorder stores run history and announces finished reports. Both are
// best-effort: failures are logged and the report is still returned. A nil
// repo or publisher skips that half.
type runRecorder struct {
	repo      repositories.Repository
	publisher events.EventPublisher
	logger    *slog.Logger
}

// record returns the stored run id, or "" when nothing was stored.
func (r *runRecorder) record(ctx context.Context, kind models.ReportKind, req *ReportRequest, rowCount int, summary map[string]interface{}) string {
	if r.repo == nil && r.publisher == nil {
		return ""
	}

	run := &models.ReportRun{
		ID:          uuid.NewString(),
		Kind:        kind,
		SourceName:  req.File.FileName,
		RowCount:    rowCount,
		RequestedBy: req.RequestedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if data, err := json.Marshal(summary); err != nil {
		r.logger.WarnContext(ctx, "Failed to encode run summary", "error", err, "kind", kind)
	} else {
		run.Summary = datatypes.JSON(data)
	}

	stored := false
	if r.repo != nil {
		if err := r.repo.ReportRun().Create(ctx, run); err != nil {
			r.logger.ErrorContext(ctx, "Failed to record report run",
				"error", err,
				"kind", kind,
				"run_id", run.ID)
		} else {
			stored = true
		}
	}

	if r.publisher != nil {
		err := r.publisher.PublishReportGenerated(ctx, &events.ReportGeneratedEvent{
			RunID:       run.ID,
			Kind:        string(kind),
			SourceName:  run.SourceName,
			RowCount:    rowCount,
			Summary:     summary,
			RequestedBy: run.RequestedBy,
		})
		if err != nil {
			r.logger.WarnContext(ctx, "Failed to publish report event",
				"error", err,
				"kind", kind,
				"run_id", run.ID)
		}
	}

	if !stored {
		return ""
	}
	return run.ID
}
