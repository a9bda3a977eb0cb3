package middleware

import (
	"time"

	"opossum/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags each request with an id and logs it once served.
func Logger(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		args := []interface{}{
			c.Request.Method,
			c.Request.URL.Path,
			status,
			time.Since(start),
			c.ClientIP(),
			requestID,
		}
		switch {
		case status >= 500:
			logger.Error("%s %s %d %s %s request_id=%s", args...)
		case status >= 400:
			logger.Warn("%s %s %d %s %s request_id=%s", args...)
		default:
			logger.Info("%s %s %d %s %s request_id=%s", args...)
		}
	}
}
