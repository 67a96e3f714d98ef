// Package service 定义跨层共享的 LLM 调用上下文
package service

import (
	"context"
	"strings"
)

const unknownLabel = "unknown"

type llmCtxKey string

const (
	llmCtxKeyWorkflow llmCtxKey = "llm_workflow"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
	llmCtxKeyPrompt   llmCtxKey = "llm_prompt"
)

// CallInfo 一次模型调用的归属信息，供回调打点使用
type CallInfo struct {
	Workflow string
	Provider string
	Prompt   string
}

func withValue(ctx context.Context, key llmCtxKey, value string) context.Context {
	if ctx == nil {
		return nil
	}
	v := strings.TrimSpace(value)
	if v == "" {
		return ctx
	}
	return context.WithValue(ctx, key, v)
}

func valueOf(ctx context.Context, key llmCtxKey) string {
	if ctx == nil {
		return unknownLabel
	}
	s, ok := ctx.Value(key).(string)
	if !ok || s == "" {
		return unknownLabel
	}
	return s
}

// WithCallInfo 将调用归属写入 ctx，空字段保持原值
func WithCallInfo(ctx context.Context, info CallInfo) context.Context {
	ctx = withValue(ctx, llmCtxKeyWorkflow, info.Workflow)
	ctx = withValue(ctx, llmCtxKeyProvider, info.Provider)
	return withValue(ctx, llmCtxKeyPrompt, info.Prompt)
}

// CallInfoFromContext 读取调用归属，缺失字段返回 "unknown"
func CallInfoFromContext(ctx context.Context) CallInfo {
	return CallInfo{
		Workflow: valueOf(ctx, llmCtxKeyWorkflow),
		Provider: valueOf(ctx, llmCtxKeyProvider),
		Prompt:   valueOf(ctx, llmCtxKeyPrompt),
	}
}

func WorkflowFromContext(ctx context.Context) string {
	return valueOf(ctx, llmCtxKeyWorkflow)
}

func ProviderFromContext(ctx context.Context) string {
	return valueOf(ctx, llmCtxKeyProvider)
}
