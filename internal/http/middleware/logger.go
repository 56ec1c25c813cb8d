package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"adr.app/ledger/common/logger"
)

// ActorHeader names the caller recorded on audit entries.
const ActorHeader = "X-Actor"

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}

		if actor := c.GetHeader(ActorHeader); actor != "" {
			ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{
				Actor: logger.Ptr(logger.Truncate(actor, 128)),
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		ctx := c.Request.Context()

		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"route", c.FullPath(),
			"status", status,
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			slog.ErrorContext(ctx, "request failed", attrs...)
		case status >= 400:
			slog.WarnContext(ctx, "request error", attrs...)
		default:
			slog.InfoContext(ctx, "request", attrs...)
		}
	}
}

// TraceHeader echoes the request's trace id so callers can correlate
// a write with its audit entry and change message.
func TraceHeader(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if traceID := logger.TraceID(c.Request.Context()); traceID != "" {
			c.Header(name, traceID)
		}
		c.Next()
	}
}
