package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/nulzo/llm-relay/pkg/api"
	"go.uber.org/zap"
)

// ErrorHandler renders the last error a handler attached with c.Error.
func ErrorHandler(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err

		var apiErr *api.Error
		if !errors.As(err, &apiErr) {
			logger.Error("Unhandled error", zap.Error(err), zap.String("path", c.Request.URL.Path))
			apiErr = api.InternalError(err)
		} else if apiErr.Log != nil && apiErr.Status >= 500 {
			logger.Debug("Internal cause", zap.Error(apiErr.Log), zap.String("path", c.Request.URL.Path))
		}

		c.AbortWithStatusJSON(apiErr.Status, apiErr)
	}
}
