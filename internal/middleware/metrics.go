package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"bullion/internal/metrics"
)

// Metrics records request counts and latency per route template. Unmatched
// paths share one label to keep cardinality bounded.
func Metrics(recorder metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		recorder.RecordRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
