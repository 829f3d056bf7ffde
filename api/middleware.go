package api

import (
	"strconv"
	"time"

	"transcriptdedup/logging"
	"transcriptdedup/metrics"

	"github.com/gin-gonic/gin"
)

// requestLogger logs each request through zerolog and records its latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		metrics.RecordAPIRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		evt := logging.Info()
		if status >= 500 {
			evt = logging.Error()
		} else if status >= 400 {
			evt = logging.Warn()
		}
		if len(c.Errors) > 0 {
			evt = evt.Str("errors", c.Errors.String())
		}
		evt.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Str("client_ip", c.ClientIP()).
			Msg("request")
	}
}
