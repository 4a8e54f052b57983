package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentbridge/match-api/internal/models"
	"github.com/talentbridge/match-api/internal/service"
	"github.com/talentbridge/match-api/pkg/response"
)

// StatsHandler exposes the admin statistics and queue inspection endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Get godoc
// @Summary Engine statistics snapshot
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/stats [get]
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.stats.EngineStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil)
}

// Export godoc
// @Summary Export engine statistics
// @Tags Admin
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /admin/stats/export [get]
func (h *StatsHandler) Export(c *gin.Context) {
	format := service.ExportFormat(c.DefaultQuery("format", "csv"))
	body, contentType, err := h.stats.Export(c.Request.Context(), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("engine-stats-%s.%s", time.Now().UTC().Format("20060102-150405"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
}

// Queue godoc
// @Summary Inspect recomputation queue entries
// @Tags Admin
// @Produce json
// @Param status query string false "Queue status" default(PENDING)
// @Param limit query int false "Maximum entries"
// @Success 200 {object} response.Envelope
// @Router /admin/queue [get]
func (h *StatsHandler) Queue(c *gin.Context) {
	status := models.QueueEntryStatus(c.DefaultQuery("status", string(models.QueueStatusPending)))
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}

	entries, err := h.stats.QueueEntries(c.Request.Context(), status, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}
