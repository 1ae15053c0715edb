package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seanowww/LyricSync/internal/logging"
	"github.com/seanowww/LyricSync/internal/metrics"
)

// Logger middleware logs request details and records HTTP metrics.
func Logger(log *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		log.LogHTTPRequest(c.Request.Method, path, c.ClientIP(), status, latency)
		metrics.RecordHTTPRequest(c.Request.Method, path, strconv.Itoa(status), latency.Seconds())
	}
}
