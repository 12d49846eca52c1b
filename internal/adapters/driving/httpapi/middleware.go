package httpapi

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/custodia-labs/geovis/internal/logger"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs each request once it completes. Server errors are
// always logged; everything else only in verbose mode.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		status := c.Writer.Status()
		elapsed := time.Since(start).Round(time.Microsecond)
		id := c.GetString(requestIDKey)

		switch {
		case status >= 500:
			logger.Error("%s %s -> %d (%s) request_id=%s %s",
				c.Request.Method, path, status, elapsed, id, c.Errors.String())
		default:
			logger.Debug("%s %s -> %d (%s) request_id=%s", c.Request.Method, path, status, elapsed, id)
		}
	}
}
