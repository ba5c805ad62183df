package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/metrics"
	"github.com/sirupsen/logrus"
)

// RequestLogMiddleware structured access log plus Prometheus counters
func RequestLogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		requestID := c.GetString("request_id")

		metrics.RecordAPIRequest(method, path, status, latency.Seconds())

		// resolved per request so a logger installed after router setup
		// still receives the access log
		entry := GetLogger().WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     method,
			"path":       path,
			"status":     status,
			"latency":    latency.String(),
			"ip":         c.ClientIP(),
		})

		if status >= 500 {
			entry.Error("API request")
		} else if status >= 400 {
			entry.Warn("API request")
		} else {
			entry.Info("API request")
		}
	}
}
