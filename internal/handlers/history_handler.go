package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SAP-F-2025/bt-analytics-service/internal/services"
	"github.com/SAP-F-2025/bt-analytics-service/internal/utils"
)

type HistoryHandler struct {
	BaseHandler
	service services.HistoryService
}

func NewHistoryHandler(service services.HistoryService, logger utils.Logger) *HistoryHandler {
	return &HistoryHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ListRuns returns the report run history
// @Summary List report runs
// @Tags runs
// @Produce json
// @Param kind query string false "weekly, monthly or paper"
// @Param requested_by query string false "User ID"
// @Param date_from query string false "YYYY-MM-DD"
// @Param date_to query string false "YYYY-MM-DD, inclusive"
// @Param limit query int false "Page size (default: 20, max: 100)"
// @Param offset query int false "Offset"
// @Param sort_order query string false "asc or desc (default)"
// @Success 200 {object} services.RunListResponse
// @Failure 400 {object} ErrorResponse
// @Router /reports/runs [get]
func (h *HistoryHandler) ListRuns(c *gin.Context) {
	h.LogRequest(c, "Listing report runs")

	var query services.RunListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	resp, err := h.service.ListRuns(c.Request.Context(), &query)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetRun returns one report run
func (h *HistoryHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	h.LogRequest(c, "Getting report run", "run_id", id)

	run, err := h.service.GetRun(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, run)
}
