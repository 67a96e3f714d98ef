package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	apperrors "story-weaver-api/pkg/errors"
	"story-weaver-api/pkg/logger"
)

// Recovery 捕获 panic，返回统一错误信封
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			logger.Error(c.Request.Context(), "panic recovered", fmt.Errorf("%v", r),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"code":     http.StatusInternalServerError,
				"message":  "internal server error",
				"error":    gin.H{"error_code": apperrors.CodeInternalError},
				"trace_id": c.GetString(CtxTraceID),
			})
		}()
		c.Next()
	}
}
