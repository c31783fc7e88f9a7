package middleware

import (
	"strconv"
	"time"

	"YourTube/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsMiddleware 按路由模板（而不是实际路径）统计，避免ID把标签撑爆
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
