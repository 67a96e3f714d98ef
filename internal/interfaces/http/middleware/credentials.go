package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	// LLMAPIKeyHeader 调用方自带的模型凭证
	LLMAPIKeyHeader = "X-LLM-API-Key"

	llmAPIKeyCtxKey = "llm_api_key"
)

// LLMAPIKey 读取请求头中的模型凭证，缺省时使用服务端配置的凭证
func LLMAPIKey(fallback string) gin.HandlerFunc {
	fallback = strings.TrimSpace(fallback)
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(LLMAPIKeyHeader))
		if key == "" {
			key = fallback
		}
		c.Set(llmAPIKeyCtxKey, key)
		c.Next()
	}
}

// GetLLMAPIKey 获取本次请求的模型凭证
func GetLLMAPIKey(c *gin.Context) string {
	return c.GetString(llmAPIKeyCtxKey)
}
