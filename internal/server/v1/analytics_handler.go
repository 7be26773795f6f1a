package v1

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/analytics"
	"github.com/nulzo/llm-relay/pkg/api"
)

type AnalyticsHandler struct {
	service analytics.Service
}

func NewAnalyticsHandler(service analytics.Service) *AnalyticsHandler {
	return &AnalyticsHandler{
		service: service,
	}
}

// GetUsage returns per-day, per-provider request counts.
func (h *AnalyticsHandler) GetUsage(c *gin.Context) {
	daysStr := c.DefaultQuery("days", "7")
	days, err := strconv.Atoi(daysStr)
	if err != nil || days <= 0 {
		_ = c.Error(api.BadRequestError("Invalid 'days' parameter", api.WithDetails(fmt.Sprintf("expected a positive integer, got %q", daysStr))))
		return
	}

	stats, err := h.service.GetUsageOverview(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(api.InternalError(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"object": "list",
		"data":   stats,
	})
}
