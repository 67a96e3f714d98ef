package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"

	llmctx "story-weaver-api/internal/domain/service"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
)

// EinoGenerator 基于 eino ChatTemplate + ChatModel 的 Generator 实现
type EinoGenerator struct {
	factory  workflowport.ChatModelFactory
	registry *workflowprompt.Registry
	provider string
}

var _ workflowport.Generator = (*EinoGenerator)(nil)

func NewEinoGenerator(factory workflowport.ChatModelFactory, registry *workflowprompt.Registry, provider string) *EinoGenerator {
	if registry == nil {
		registry = workflowprompt.NewRegistry()
	}
	return &EinoGenerator{
		factory:  factory,
		registry: registry,
		provider: strings.TrimSpace(provider),
	}
}

func (g *EinoGenerator) Generate(ctx context.Context, req workflowport.GenerateRequest) (string, error) {
	if g == nil || g.factory == nil {
		return "", fmt.Errorf("llm factory not configured")
	}
	if g.provider == "" {
		return "", fmt.Errorf("provider is required")
	}
	if err := workflowprompt.CheckVars(req.Prompt, req.Vars); err != nil {
		return "", err
	}

	info := llmctx.CallInfo{Provider: g.provider, Prompt: string(req.Prompt)}
	if llmctx.WorkflowFromContext(ctx) == "unknown" {
		info.Workflow = string(req.Prompt)
	}
	ctx = llmctx.WithCallInfo(ctx, info)

	chatModel, err := g.factory.Get(ctx, g.provider, strings.TrimSpace(req.APIKey))
	if err != nil {
		return "", err
	}

	tpl, err := g.registry.ChatTemplate(req.Prompt)
	if err != nil {
		return "", err
	}
	msgs, err := tpl.Format(ctx, req.Vars)
	if err != nil {
		return "", err
	}

	opts := make([]model.Option, 0, 1)
	if req.Temperature > 0 {
		opts = append(opts, model.WithTemperature(req.Temperature))
	}
	outMsg, err := chatModel.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", err
	}
	if outMsg == nil {
		return "", fmt.Errorf("empty llm response")
	}
	return strings.TrimSpace(outMsg.Content), nil
}
