package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

// RequestLogger writes one line per request once the handler chain returns.
// 5xx logs at error, 4xx at warn.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		status := c.Writer.Status()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		fields := append([]any{
			"method", c.Request.Method,
			"path", route,
			"status", status,
			"duration_ms", time.Since(started).Milliseconds(),
		}, correlationFields(c)...)

		switch {
		case status >= 500:
			if len(c.Errors) > 0 {
				fields = append(fields, "error", c.Errors.Last().Error())
			}
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// correlationFields carries the trace, request and caller ids when known.
func correlationFields(c *gin.Context) []any {
	ctx := c.Request.Context()
	var out []any
	if td := ctxutil.GetTraceData(ctx); td != nil {
		for _, kv := range [][2]string{{"trace_id", td.TraceID}, {"request_id", td.RequestID}} {
			if kv[1] != "" {
				out = append(out, kv[0], kv[1])
			}
		}
	}
	if uid := ctxutil.UserID(ctx); uid != uuid.Nil {
		out = append(out, "user_id", uid.String())
	}
	return out
}
