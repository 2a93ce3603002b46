package middleware

import (
	"context"
	"time"

	"github.com/hansubae/Ghighlights/pkg/logger"
	"github.com/hansubae/Ghighlights/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RequestLoggerMiddleware stamps every request with an ID and logs it on
// completion. The ID travels in the request context and in the
// X-Request-ID response header so log lines can be matched to client
// reports.
func RequestLoggerMiddleware(ctxLogger *logger.ContextLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := context.WithValue(c.Request.Context(), "request_id", requestID)
		if userID, exists := c.Get("user_id"); exists {
			ctx = context.WithValue(ctx, "user_id", userID)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		ctxLogger.LogRequest(
			c.Request.Context(),
			c.Request.Method,
			c.Request.URL.Path,
			c.Writer.Status(),
			time.Since(start).Milliseconds(),
		)
	}
}
