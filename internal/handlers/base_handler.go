package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
	"github.com/SAP-F-2025/bt-analytics-service/internal/validator"
)

const (
	uploadFormField     = "file"
	exportExpiresHeader = "X-Export-Expires-At"
)

// errUploadTooLarge is returned by readUpload when the body limit trips
// while the multipart form is read.
var errUploadTooLarge = errors.New("upload too large")

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// BaseHandler carries the helpers shared by all handlers
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request scoped logger
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	args = append(args, "path", c.FullPath())
	if userID := c.GetString("user_id"); userID != "" {
		args = append(args, "user_id", userID)
	}
	utils.FromContext(c, h.logger).Info(msg, args...)
}

// RespondWithError writes an ErrorResponse and logs server side failures
func (h *BaseHandler) RespondWithError(c *gin.Context, status int, message string, err error) {
	resp := ErrorResponse{Message: message}
	if err != nil {
		resp.Details = err.Error()
		if status >= http.StatusInternalServerError {
			utils.FromContext(c, h.logger).Error(message, "error", err, "status", status)
			resp.Details = nil
		}
	}
	c.JSON(status, resp)
}

// handleServiceError maps service errors onto HTTP responses
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, errUploadTooLarge):
		h.RespondWithError(c, http.StatusRequestEntityTooLarge, "Upload too large", err)
	case errors.Is(err, services.ErrInvalidInput):
		h.RespondWithError(c, http.StatusBadRequest, "Invalid spreadsheet", err)
	case errors.Is(err, services.ErrNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Not found", err)
	case errors.Is(err, services.ErrExportUnavailable):
		h.RespondWithError(c, http.StatusServiceUnavailable, "Export storage is not configured", nil)
	case errors.Is(err, services.ErrUnauthorized):
		h.RespondWithError(c, http.StatusUnauthorized, "Unauthorized", err)
	case errors.Is(err, services.ErrForbidden):
		h.RespondWithError(c, http.StatusForbidden, "Forbidden", err)
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

// readUpload opens the multipart file and wraps it in a report request.
// The caller must close the returned closer.
func (h *BaseHandler) readUpload(c *gin.Context) (*services.ReportRequest, func(), error) {
	header, err := c.FormFile(uploadFormField)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, nil, fmt.Errorf("%w: limit is %d bytes", errUploadTooLarge, maxErr.Limit)
		}
		return nil, nil, fmt.Errorf("%w: multipart field %q is required", services.ErrInvalidInput, uploadFormField)
	}

	f, err := header.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open upload: %w", err)
	}

	req := &services.ReportRequest{
		File: services.UploadRequest{
			FileName: filepath.Base(header.Filename),
			Size:     header.Size,
			Sheet:    c.PostForm("sheet"),
		},
		Data:        f,
		RequestedBy: c.GetString("user_id"),
	}
	return req, func() { f.Close() }, nil
}

// sendFile writes a generated download
func sendFile(c *gin.Context, file *services.FileResponse) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	if file.ExpiresAt != nil {
		c.Header(exportExpiresHeader, file.ExpiresAt.UTC().Format(time.RFC3339))
	}
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
