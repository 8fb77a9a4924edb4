package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"tidewater/pkg/logger"
)

// Logger puts a request-scoped logger into the context and logs one line per request.
func Logger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Request = c.Request.WithContext(logger.WithLogger(c.Request.Context(), log))

		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", status,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.String())
		}

		// Caller is only known after Auth has run.
		reqLog := log.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			reqLog.Errorw("http request", fields...)
		case status >= 400:
			reqLog.Warnw("http request", fields...)
		default:
			reqLog.Infow("http request", fields...)
		}
	}
}
