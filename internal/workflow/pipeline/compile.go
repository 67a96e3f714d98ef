// Package pipeline 实现多阶段成稿流水线：大纲 -> 初稿 -> 润色
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	llmctx "story-weaver-api/internal/domain/service"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
	"story-weaver-api/pkg/metrics"
)

type Stage string

const (
	StageOutline Stage = "plot_outline"
	StageDraft   Stage = "story_draft"
	StageRefine  Stage = "story_refine"
)

// Temperatures 各阶段的创造性参数
type Temperatures struct {
	Outline float32
	Draft   float32
	Refine  float32
}

// Narration 风格描述在提示词中使用的字段
type Narration struct {
	NameDisplay string
	Tone        string
	InspiredBy  string
}

type CompileInput struct {
	APIKey string

	Genre   string
	Setting string
	Tone    string

	CharactersSummary      string
	CharactersFullProfiles string
	InitialSceneDirective  string

	Narration                Narration
	DraftSnippetInstruction  string
	RefineSnippetInstruction string
}

type CompileResult struct {
	Outline string
	Draft   string
	Refined string
}

// ProgressFunc 每个阶段完成后回调
type ProgressFunc func(stage Stage, result *CompileResult)

type CompilePipeline struct {
	gen   workflowport.Generator
	temps Temperatures
}

func NewCompilePipeline(gen workflowport.Generator, temps Temperatures) *CompilePipeline {
	return &CompilePipeline{gen: gen, temps: temps}
}

// Run 顺序执行三个阶段，任一阶段出错即中止；阶段输出为空不会中止
func (p *CompilePipeline) Run(ctx context.Context, in *CompileInput, progress ProgressFunc) (*CompileResult, error) {
	if p == nil || p.gen == nil {
		return nil, fmt.Errorf("generator not configured")
	}
	if in == nil {
		return nil, fmt.Errorf("input is nil")
	}
	ctx = llmctx.WithCallInfo(ctx, llmctx.CallInfo{Workflow: "compile"})

	res := &CompileResult{}
	stages := []struct {
		stage  Stage
		prompt workflowprompt.PromptID
		temp   float32
		vars   func() map[string]any
		out    *string
	}{
		{StageOutline, workflowprompt.PromptPlotOutlineV1, p.temps.Outline, func() map[string]any { return outlineVars(in) }, &res.Outline},
		{StageDraft, workflowprompt.PromptStoryDraftV1, p.temps.Draft, func() map[string]any { return draftVars(in, res) }, &res.Draft},
		{StageRefine, workflowprompt.PromptStoryRefineV1, p.temps.Refine, func() map[string]any { return refineVars(in, res) }, &res.Refined},
	}

	for _, s := range stages {
		start := time.Now()
		out, err := p.gen.Generate(ctx, workflowport.GenerateRequest{
			Prompt:      s.prompt,
			Vars:        s.vars(),
			Temperature: s.temp,
			APIKey:      in.APIKey,
		})
		metrics.PipelineStageDuration.WithLabelValues(string(s.stage)).Observe(time.Since(start).Seconds())
		if err != nil {
			return nil, fmt.Errorf("%s stage: %w", s.stage, err)
		}
		*s.out = strings.TrimSpace(out)
		if progress != nil {
			progress(s.stage, res)
		}
	}
	return res, nil
}

func outlineVars(in *CompileInput) map[string]any {
	return map[string]any{
		"genre":              in.Genre,
		"setting":            in.Setting,
		"tone":               in.Tone,
		"characters_summary": in.CharactersSummary,
	}
}

func narrationVars(in *CompileInput, vars map[string]any) map[string]any {
	vars["genre"] = in.Genre
	vars["setting"] = in.Setting
	vars["tone"] = in.Tone
	vars["narration_name_display"] = in.Narration.NameDisplay
	vars["narration_tone"] = in.Narration.Tone
	vars["narration_inspired_by"] = in.Narration.InspiredBy
	vars["characters_full_profiles"] = in.CharactersFullProfiles
	vars["initial_scene_directive"] = in.InitialSceneDirective
	return vars
}

func draftVars(in *CompileInput, res *CompileResult) map[string]any {
	return narrationVars(in, map[string]any{
		"narration_style_snippet_instruction": in.DraftSnippetInstruction,
		"plot_outline":                        res.Outline,
	})
}

func refineVars(in *CompileInput, res *CompileResult) map[string]any {
	return narrationVars(in, map[string]any{
		"narration_style_snippet_instruction": in.RefineSnippetInstruction,
		"plot_outline":                        res.Outline,
		"story_draft":                         res.Draft,
	})
}
