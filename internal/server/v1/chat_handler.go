package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/internal/gateway"
	"github.com/nulzo/llm-relay/internal/server/validator"
	"github.com/nulzo/llm-relay/pkg/api"
)

type ChatHandler struct {
	service gateway.Service
}

func NewChatHandler(service gateway.Service) *ChatHandler {
	return &ChatHandler{
		service: service,
	}
}

// Chat relays one conversation to the requested provider.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req api.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if validator.IsValidationError(err) {
			fields := validator.ParseValidationError(err)
			_ = c.Error(api.ValidationError(validator.Summarize(fields), fields))
			return
		}
		if validator.IsTypeError(err) {
			fields := validator.ParseTypeError(err)
			_ = c.Error(api.ValidationError(validator.Summarize(fields), fields))
			return
		}
		// syntactically broken bodies are reported as server errors, matching the public contract
		_ = c.Error(api.InternalError(err))
		return
	}

	resp, err := h.service.Chat(c.Request.Context(), &req)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
