package port

import (
	"context"

	"story-weaver-api/internal/workflow/prompt"
)

// GenerateRequest 一次单轮生成请求
type GenerateRequest struct {
	Prompt      prompt.PromptID
	Vars        map[string]any
	Temperature float32
	APIKey      string
}

// Generator 文本生成端口：单次请求、单次响应，不重试
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
