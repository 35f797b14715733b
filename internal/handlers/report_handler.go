package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

type ReportHandler struct {
	BaseHandler
	weekly    services.WeeklyReportService
	monthly   services.MonthlyReportService
	paper     services.PaperReportService
	validator *validator.Validator
}

func NewReportHandler(
	weekly services.WeeklyReportService,
	monthly services.MonthlyReportService,
	paper services.PaperReportService,
	validator *validator.Validator,
	logger utils.Logger,
) *ReportHandler {
	return &ReportHandler{
		BaseHandler: NewBaseHandler(logger),
		weekly:      weekly,
		monthly:     monthly,
		paper:       paper,
		validator:   validator,
	}
}

// withUpload opens the uploaded file for the duration of fn
func (h *ReportHandler) withUpload(c *gin.Context, fn func(req *services.ReportRequest) error) {
	req, closeFile, err := h.readUpload(c)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	defer closeFile()

	if err := fn(req); err != nil {
		h.handleServiceError(c, err)
	}
}

func (h *ReportHandler) bindMonthlyQuery(c *gin.Context) (*services.MonthlyReportQuery, bool) {
	var query services.MonthlyReportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return nil, false
	}
	if err := h.validator.Validate(&query); err != nil {
		h.handleServiceError(c, err)
		return nil, false
	}
	return &query, true
}

// ===== WEEKLY =====

// WeeklyReport computes per-level and overall accuracy for one week
// @Summary Weekly BT accuracy report
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Weekly sheet (.csv or .xlsx)"
// @Param sheet formData string false "Worksheet name"
// @Success 200 {object} services.WeeklyReportResponse
// @Failure 400 {object} ErrorResponse
// @Router /reports/weekly [post]
func (h *ReportHandler) WeeklyReport(c *gin.Context) {
	h.LogRequest(c, "Generating weekly report")

	h.withUpload(c, func(req *services.ReportRequest) error {
		resp, err := h.weekly.Generate(c.Request.Context(), req)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resp)
		return nil
	})
}

// WeeklyWorkbook returns the weekly report as an xlsx workbook
func (h *ReportHandler) WeeklyWorkbook(c *gin.Context) {
	h.LogRequest(c, "Generating weekly workbook")

	h.withUpload(c, func(req *services.ReportRequest) error {
		file, err := h.weekly.Workbook(c.Request.Context(), req)
		if err != nil {
			return err
		}
		sendFile(c, file)
		return nil
	})
}

// ===== MONTHLY =====

// MonthlyReport aggregates four weeks, with optional prediction and trend
// @Summary Monthly BT report
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Monthly sheet (.csv or .xlsx)"
// @Param predict query bool false "Run the label predictor"
// @Param student query string false "Include the weekly trend of this student"
// @Success 200 {object} services.MonthlyReportResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Student not found"
// @Router /reports/monthly [post]
func (h *ReportHandler) MonthlyReport(c *gin.Context) {
	query, ok := h.bindMonthlyQuery(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Generating monthly report", "predict", query.Predict, "student", query.Student)

	h.withUpload(c, func(req *services.ReportRequest) error {
		resp, err := h.monthly.Generate(c.Request.Context(), req, query)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resp)
		return nil
	})
}

// MonthlyTrend returns the W1..W4 accuracy of one student
func (h *ReportHandler) MonthlyTrend(c *gin.Context) {
	var query validator.TrendQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}
	h.LogRequest(c, "Getting monthly trend", "student", query.Student)

	h.withUpload(c, func(req *services.ReportRequest) error {
		points, err := h.monthly.Trend(c.Request.Context(), req, query.Student)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, gin.H{"student": query.Student, "trend": points})
		return nil
	})
}

// MonthlyWorkbook returns the monthly report as an xlsx workbook
func (h *ReportHandler) MonthlyWorkbook(c *gin.Context) {
	query, ok := h.bindMonthlyQuery(c)
	if !ok {
		return
	}
	h.LogRequest(c, "Generating monthly workbook")

	h.withUpload(c, func(req *services.ReportRequest) error {
		file, err := h.monthly.Workbook(c.Request.Context(), req, query)
		if err != nil {
			return err
		}
		sendFile(c, file)
		return nil
	})
}

// ===== QUESTION PAPER =====

// PaperReport tags and scores a question paper
// @Summary Question paper BT scorer
// @Tags reports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Question paper (.csv or .xlsx)"
// @Success 200 {object} services.PaperReportResponse
// @Failure 400 {object} ErrorResponse
// @Router /reports/paper [post]
func (h *ReportHandler) PaperReport(c *gin.Context) {
	h.LogRequest(c, "Scoring question paper")

	h.withUpload(c, func(req *services.ReportRequest) error {
		resp, err := h.paper.Generate(c.Request.Context(), req)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, resp)
		return nil
	})
}

// PaperExport returns the tagged question paper as CSV
func (h *ReportHandler) PaperExport(c *gin.Context) {
	h.LogRequest(c, "Exporting tagged question paper")

	h.withUpload(c, func(req *services.ReportRequest) error {
		file, err := h.paper.Export(c.Request.Context(), req)
		if err != nil {
			return err
		}
		sendFile(c, file)
		return nil
	})
}

// PaperWorkbook returns the tagged paper and its summary as xlsx
func (h *ReportHandler) PaperWorkbook(c *gin.Context) {
	h.LogRequest(c, "Generating question paper workbook")

	h.withUpload(c, func(req *services.ReportRequest) error {
		file, err := h.paper.Workbook(c.Request.Context(), req)
		if err != nil {
			return err
		}
		sendFile(c, file)
		return nil
	})
}

// GetExport downloads a CSV stored by PaperReport
// @Summary Download a stored export
// @Tags reports
// @Produce text/csv
// @Param id path string true "Export ID"
// @Failure 404 {object} ErrorResponse "Export not found or expired"
// @Failure 503 {object} ErrorResponse "Export storage not configured"
// @Router /reports/exports/{id} [get]
func (h *ReportHandler) GetExport(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Downloading export", "export_id", id)

	file, err := h.paper.GetExport(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	sendFile(c, file)
}

// DeleteExport drops a stored CSV before it expires
// @Summary Delete a stored export
// @Tags reports
// @Param id path string true "Export ID"
// @Success 204
// @Failure 404 {object} ErrorResponse "Export not found or expired"
// @Failure 503 {object} ErrorResponse "Export storage not configured"
// @Router /reports/exports/{id} [delete]
func (h *ReportHandler) DeleteExport(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Deleting export", "export_id", id)

	if err := h.paper.DeleteExport(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
