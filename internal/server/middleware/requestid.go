package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nulzo/llm-relay/internal/store"
)

const RequestIDHeader = "X-Request-ID"

// RequestID tags each request with an id, reusing a well-formed inbound one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), store.ContextKeyRequestID, id))
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
