package rest

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/sessionkeeper/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

// unmatchedRoute is the metrics path label for requests no route matched,
// so arbitrary URLs cannot grow the label set.
const unmatchedRoute = "unmatched"

// RequestID tags the request with the caller's X-Request-ID or a fresh one
// and echoes it in the response.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(requestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		c.Set(requestIDHeader, reqID)
		c.Header(requestIDHeader, reqID)
		c.Next()
	}
}

// Logger logs every request and records it in m.
func Logger(logger logging.Logger, m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		status := c.Writer.Status()
		route := c.FullPath()
		path := route
		if route == "" {
			route = unmatchedRoute
			path = c.Request.URL.Path
		}

		reqID, _ := c.Get(requestIDHeader)
		args := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", latency,
			"client_ip", c.ClientIP(),
			"request_id", reqID,
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		ctx := c.Request.Context()
		if status >= http.StatusInternalServerError {
			logger.Error(ctx, "request", args...)
		} else {
			logger.Info(ctx, "request", args...)
		}

		if m != nil {
			m.RequestCount.WithLabelValues(c.Request.Method, route, http.StatusText(status)).Inc()
			m.RequestDuration.WithLabelValues(c.Request.Method, route, http.StatusText(status)).Observe(latency.Seconds())
		}
	}
}

// Recovery turns a handler panic into an opaque 500.
func Recovery(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				reqID, _ := c.Get(requestIDHeader)
				logger.Error(c.Request.Context(), "panic",
					"error", err,
					"path", c.Request.URL.Path,
					"request_id", reqID,
				)
				abortWithError(c, http.StatusInternalServerError, CodeInternal, msgInternal)
			}
		}()
		c.Next()
	}
}

// CORS allows credentialed requests from a single origin. Preflight requests
// are answered with 204.
func CORS(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
