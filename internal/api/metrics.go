package api

import (
	"github.com/gin-gonic/gin"
	"github.com/rolinkstone/new-talawang-sub001/internal/metrics"
)

// MetricsHandler serves the Prometheus scrape endpoint
func MetricsHandler(c *gin.Context) {
	metrics.Handler().ServeHTTP(c.Writer, c.Request)
}
