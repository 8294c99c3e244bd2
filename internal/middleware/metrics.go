package middleware

import (
	"strconv"
	"time"

	"github.com/dgrad/efintrack/internal/observability/metrics"
	"github.com/gin-gonic/gin"
)

// Metrics records request count and latency per matched route.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.ObserveHTTP(c.Request.Method, c.FullPath(), strconv.Itoa(c.Writer.Status()), time.Since(start))
	}
}
