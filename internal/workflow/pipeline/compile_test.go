package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmctx "story-weaver-api/internal/domain/service"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
)

type scriptedGenerator struct {
	replies map[workflowprompt.PromptID]string
	fail    map[workflowprompt.PromptID]error
	calls   []workflowport.GenerateRequest
	ctxs    []context.Context
}

func (g *scriptedGenerator) Generate(ctx context.Context, req workflowport.GenerateRequest) (string, error) {
	g.calls = append(g.calls, req)
	g.ctxs = append(g.ctxs, ctx)
	if err := g.fail[req.Prompt]; err != nil {
		return "", err
	}
	return g.replies[req.Prompt], nil
}

func sampleInput() *CompileInput {
	return &CompileInput{
		APIKey:                   "sk",
		Genre:                    "Fantasy",
		Setting:                  "Not set",
		Tone:                     "Hopeful",
		CharactersSummary:        "Key characters: Zara",
		CharactersFullProfiles:   "Zara (hero)",
		Narration:                Narration{NameDisplay: "Default", Tone: "Clear", InspiredBy: "Classic"},
		DraftSnippetInstruction:  "draft-note",
		RefineSnippetInstruction: "refine-note",
	}
}

func TestCompilePipeline_RunsStagesInOrder(t *testing.T) {
	gen := &scriptedGenerator{replies: map[workflowprompt.PromptID]string{
		workflowprompt.PromptPlotOutlineV1: "1. start",
		workflowprompt.PromptStoryDraftV1:  " draft text ",
		workflowprompt.PromptStoryRefineV1: "refined text",
	}}
	p := NewCompilePipeline(gen, Temperatures{Outline: 0.7, Draft: 0.85, Refine: 0.6})

	var stages []Stage
	res, err := p.Run(context.Background(), sampleInput(), func(stage Stage, _ *CompileResult) {
		stages = append(stages, stage)
	})
	require.NoError(t, err)
	assert.Equal(t, &CompileResult{Outline: "1. start", Draft: "draft text", Refined: "refined text"}, res)
	assert.Equal(t, []Stage{StageOutline, StageDraft, StageRefine}, stages)

	require.Len(t, gen.calls, 3)
	assert.Equal(t, "Key characters: Zara", gen.calls[0].Vars["characters_summary"])
	assert.InDelta(t, 0.7, gen.calls[0].Temperature, 1e-6)
	assert.Equal(t, "1. start", gen.calls[1].Vars["plot_outline"])
	assert.Equal(t, "draft-note", gen.calls[1].Vars["narration_style_snippet_instruction"])
	assert.Equal(t, "draft text", gen.calls[2].Vars["story_draft"])
	assert.Equal(t, "1. start", gen.calls[2].Vars["plot_outline"])
	assert.Equal(t, "refine-note", gen.calls[2].Vars["narration_style_snippet_instruction"])
	for _, c := range gen.calls {
		assert.Equal(t, "sk", c.APIKey)
		require.NoError(t, workflowprompt.CheckVars(c.Prompt, c.Vars))
	}
	assert.Equal(t, "compile", llmctx.WorkflowFromContext(gen.ctxs[0]))
}

func TestCompilePipeline_EmptyStageDoesNotStop(t *testing.T) {
	gen := &scriptedGenerator{replies: map[workflowprompt.PromptID]string{
		workflowprompt.PromptStoryDraftV1: "draft",
	}}
	res, err := NewCompilePipeline(gen, Temperatures{}).Run(context.Background(), sampleInput(), nil)
	require.NoError(t, err)
	assert.Len(t, gen.calls, 3)
	assert.Equal(t, "draft", res.Draft)
	assert.Empty(t, res.Refined)
}

func TestCompilePipeline_ErrorAborts(t *testing.T) {
	gen := &scriptedGenerator{
		replies: map[workflowprompt.PromptID]string{workflowprompt.PromptPlotOutlineV1: "outline"},
		fail:    map[workflowprompt.PromptID]error{workflowprompt.PromptStoryDraftV1: errors.New("boom")},
	}
	res, err := NewCompilePipeline(gen, Temperatures{}).Run(context.Background(), sampleInput(), nil)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "boom")
	assert.Len(t, gen.calls, 2)
}

func TestCompilePipeline_NotConfigured(t *testing.T) {
	_, err := NewCompilePipeline(nil, Temperatures{}).Run(context.Background(), sampleInput(), nil)
	require.Error(t, err)
	_, err = NewCompilePipeline(&scriptedGenerator{}, Temperatures{}).Run(context.Background(), nil, nil)
	require.Error(t, err)
}
