package restapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ZapLoggerMiddleware logs one line per request.
func ZapLoggerMiddleware(l *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		fields := []zap.Field{
			zap.Int("status", c.Writer.Status()),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			l.Error("Request failed", append(fields, zap.String("errors", c.Errors.String()))...)
			return
		}
		switch {
		case c.Writer.Status() >= 500:
			l.Error("Request", fields...)
		case c.Writer.Status() >= 400:
			l.Warn("Request", fields...)
		default:
			l.Info("Request", fields...)
		}
	}
}
