package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	llmctx "story-weaver-api/internal/domain/service"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
)

type stubChatModel struct {
	reply    *schema.Message
	err      error
	lastMsgs []*schema.Message
	lastOpts *model.Options
	lastCtx  context.Context
}

func (m *stubChatModel) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.lastCtx = ctx
	m.lastMsgs = input
	m.lastOpts = model.GetCommonOptions(&model.Options{}, opts...)
	return m.reply, m.err
}

func (m *stubChatModel) Stream(context.Context, []*schema.Message, ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

type stubFactory struct {
	chatModel model.BaseChatModel
	err       error
	name      string
	apiKey    string
}

func (f *stubFactory) Get(_ context.Context, name, apiKey string) (model.BaseChatModel, error) {
	f.name = name
	f.apiKey = apiKey
	return f.chatModel, f.err
}

func TestEinoGenerator_Generate(t *testing.T) {
	cm := &stubChatModel{reply: schema.AssistantMessage("  A passage.  ", nil)}
	factory := &stubFactory{chatModel: cm}
	g := NewEinoGenerator(factory, workflowprompt.NewRegistry(), "openai")

	out, err := g.Generate(context.Background(), workflowport.GenerateRequest{
		Prompt:      workflowprompt.PromptAuthorSnippetV1,
		Vars:        map[string]any{"author_name": "Jane Austen"},
		Temperature: 0.7,
		APIKey:      " sk-test ",
	})
	require.NoError(t, err)
	assert.Equal(t, "A passage.", out)
	assert.Equal(t, "openai", factory.name)
	assert.Equal(t, "sk-test", factory.apiKey)

	require.Len(t, cm.lastMsgs, 2)
	assert.Contains(t, cm.lastMsgs[1].Content, "Jane Austen")
	require.NotNil(t, cm.lastOpts.Temperature)
	assert.InDelta(t, 0.7, *cm.lastOpts.Temperature, 1e-6)

	info := llmctx.CallInfoFromContext(cm.lastCtx)
	assert.Equal(t, "author_snippet_v1", info.Workflow)
	assert.Equal(t, "openai", info.Provider)
}

func TestEinoGenerator_KeepsOuterWorkflow(t *testing.T) {
	cm := &stubChatModel{reply: schema.AssistantMessage("outline", nil)}
	g := NewEinoGenerator(&stubFactory{chatModel: cm}, nil, "openai")

	ctx := llmctx.WithCallInfo(context.Background(), llmctx.CallInfo{Workflow: "compile"})
	_, err := g.Generate(ctx, workflowport.GenerateRequest{
		Prompt: workflowprompt.PromptPlotOutlineV1,
		Vars:   map[string]any{"genre": "g", "setting": "s", "tone": "t", "characters_summary": "c"},
	})
	require.NoError(t, err)
	info := llmctx.CallInfoFromContext(cm.lastCtx)
	assert.Equal(t, "compile", info.Workflow)
	assert.Equal(t, "plot_outline_v1", info.Prompt)
	assert.Nil(t, cm.lastOpts.Temperature)
}

func TestEinoGenerator_Errors(t *testing.T) {
	vars := map[string]any{"author_name": "x"}
	req := workflowport.GenerateRequest{Prompt: workflowprompt.PromptAuthorSnippetV1, Vars: vars}

	_, err := (*EinoGenerator)(nil).Generate(context.Background(), req)
	require.Error(t, err)

	_, err = NewEinoGenerator(&stubFactory{}, nil, "").Generate(context.Background(), req)
	require.Error(t, err)

	_, err = NewEinoGenerator(&stubFactory{err: errors.New("no provider")}, nil, "openai").Generate(context.Background(), req)
	require.EqualError(t, err, "no provider")

	_, err = NewEinoGenerator(&stubFactory{chatModel: &stubChatModel{err: errors.New("rate limited")}}, nil, "openai").Generate(context.Background(), req)
	require.EqualError(t, err, "rate limited")

	_, err = NewEinoGenerator(&stubFactory{chatModel: &stubChatModel{}}, nil, "openai").Generate(context.Background(), req)
	require.EqualError(t, err, "empty llm response")

	_, err = NewEinoGenerator(&stubFactory{chatModel: &stubChatModel{}}, nil, "openai").Generate(context.Background(), workflowport.GenerateRequest{
		Prompt: workflowprompt.PromptAuthorSnippetV1,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "author_name")
}
