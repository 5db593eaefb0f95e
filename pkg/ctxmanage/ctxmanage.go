// Package ctxmanage carries the per-request trace id between middleware
// and handlers.
package ctxmanage

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const TraceIDKey = "trace_id"

// SetTraceIdOfRequest stores a fresh trace id on the request and returns it.
func SetTraceIdOfRequest(c *gin.Context) string {
	traceId := uuid.NewString()
	c.Set(TraceIDKey, traceId)
	return traceId
}

// GetTraceIdOfRequest returns the trace id set by the logger middleware.
// A request that skipped the middleware still gets a usable id.
func GetTraceIdOfRequest(c *gin.Context) string {
	v, ok := c.Get(TraceIDKey)
	if !ok {
		return uuid.NewString()
	}
	traceId, ok := v.(string)
	if !ok || traceId == "" {
		return uuid.NewString()
	}
	return traceId
}
