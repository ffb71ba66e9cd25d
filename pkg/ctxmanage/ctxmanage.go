package ctxmanage

import (
	"context"

	"github.com/gin-gonic/gin"
)

type key string

// TraceIdKey is the context key under which the per-request trace id is stored.
const TraceIdKey key = "traceId"

// GetTraceIdOfRequest returns the trace id set by the Logger middleware,
// or "unknown" when the request skipped the middleware chain.
func GetTraceIdOfRequest(c *gin.Context) string {
	ctx := c.Request.Context()
	traceId, ok := ctx.Value(TraceIdKey).(string)
	if !ok {
		return "unknown"
	}
	return traceId
}

// WithTraceId stores the trace id in the context.
func WithTraceId(ctx context.Context, traceId string) context.Context {
	return context.WithValue(ctx, TraceIdKey, traceId)
}
