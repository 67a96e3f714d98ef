package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCallInfo_RoundTrip(t *testing.T) {
	ctx := WithCallInfo(context.Background(), CallInfo{Workflow: "story_slide", Provider: " openai ", Prompt: "story_slide_v1"})
	info := CallInfoFromContext(ctx)
	assert.Equal(t, "story_slide", info.Workflow)
	assert.Equal(t, "openai", info.Provider)
	assert.Equal(t, "story_slide_v1", info.Prompt)
	assert.Equal(t, "openai", ProviderFromContext(ctx))
}

func TestCallInfo_Defaults(t *testing.T) {
	info := CallInfoFromContext(context.Background())
	assert.Equal(t, CallInfo{Workflow: "unknown", Provider: "unknown", Prompt: "unknown"}, info)

	//nolint:staticcheck
	assert.Equal(t, "unknown", WorkflowFromContext(nil))
}

func TestWithCallInfo_BlankKeepsOuterValue(t *testing.T) {
	ctx := WithCallInfo(context.Background(), CallInfo{Workflow: "compile"})
	ctx = WithCallInfo(ctx, CallInfo{Workflow: "  ", Prompt: "plot_outline_v1"})
	assert.Equal(t, "compile", WorkflowFromContext(ctx))
	assert.Equal(t, "plot_outline_v1", CallInfoFromContext(ctx).Prompt)
}
