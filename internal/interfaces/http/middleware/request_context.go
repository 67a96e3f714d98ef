// Package middleware 提供 HTTP 中间件
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	"story-weaver-api/pkg/logger"
)

const (
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-ID"
)

// gin.Context 中的键
const (
	CtxRequestID = "request_id"
	CtxTraceID   = "trace_id"
	CtxSessionID = "session_id"
)

// RequestID 沿用客户端的请求 ID，缺失时生成
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(CtxRequestID, id)
		c.Header(RequestIDHeader, id)
		withLogValue(c, logger.RequestIDKey, id)
		c.Next()
	}
}

// SessionScope 将路径中的会话 ID 写入日志上下文
func SessionScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := c.Param("id"); id != "" && c.FullPath() != "" {
			c.Set(CtxSessionID, id)
			withLogValue(c, logger.SessionIDKey, id)
		}
		c.Next()
	}
}

// Trace OpenTelemetry 追踪
func Trace(serviceName string) gin.HandlerFunc {
	return otelgin.Middleware(serviceName)
}

// TraceContext 将 Span 标识写入日志上下文与响应头
func TraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sc := trace.SpanFromContext(c.Request.Context()).SpanContext()
		if sc.IsValid() {
			traceID := sc.TraceID().String()
			c.Set(CtxTraceID, traceID)
			c.Header(TraceIDHeader, traceID)
			withLogValue(c, logger.TraceIDKey, traceID)
			withLogValue(c, logger.SpanIDKey, sc.SpanID().String())
		}
		c.Next()
	}
}

func withLogValue(c *gin.Context, key logger.ContextKey, value string) {
	c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), key, value))
}
