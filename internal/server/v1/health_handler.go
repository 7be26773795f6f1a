package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/status"
)

type StatusHandler struct {
	reporter *status.Reporter
}

func NewStatusHandler(reporter *status.Reporter) *StatusHandler {
	return &StatusHandler{reporter: reporter}
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Health())
}

func (h *StatusHandler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Providers(c.Request.Context()))
}

// Debug exposes credential presence with masked previews. It is only routed
// when debug is enabled in config.
func (h *StatusHandler) Debug(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"credentials": h.reporter.Credentials(),
	})
}
