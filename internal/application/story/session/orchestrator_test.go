package session

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/character"
	"story-weaver-api/internal/application/story/primer"
	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/internal/domain/repository"
	workflowpipeline "story-weaver-api/internal/workflow/pipeline"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
)

const (
	storyReply    = "The rain fell over the quiet harbor town. Mira walked along the pier, counting the lanterns as they flickered out one by one."
	nonStoryReply = "Great! What genre would you like?"
)

type fakeGenerator struct {
	mu      sync.Mutex
	replies map[workflowprompt.PromptID][]string
	errs    map[workflowprompt.PromptID]error
	calls   []workflowport.GenerateRequest
}

func newFakeGenerator() *fakeGenerator {
	return &fakeGenerator{
		replies: map[workflowprompt.PromptID][]string{},
		errs:    map[workflowprompt.PromptID]error{},
	}
}

func (g *fakeGenerator) reply(id workflowprompt.PromptID, texts ...string) *fakeGenerator {
	g.replies[id] = append(g.replies[id], texts...)
	return g
}

func (g *fakeGenerator) fail(id workflowprompt.PromptID, err error) *fakeGenerator {
	g.errs[id] = err
	return g
}

func (g *fakeGenerator) Generate(_ context.Context, req workflowport.GenerateRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, req)
	if err := g.errs[req.Prompt]; err != nil {
		return "", err
	}
	queue := g.replies[req.Prompt]
	if len(queue) == 0 {
		return "", nil
	}
	g.replies[req.Prompt] = queue[1:]
	return queue[0], nil
}

func (g *fakeGenerator) callsFor(id workflowprompt.PromptID) []workflowport.GenerateRequest {
	var out []workflowport.GenerateRequest
	for _, c := range g.calls {
		if c.Prompt == id {
			out = append(out, c)
		}
	}
	return out
}

type fakeArchiveRepo struct {
	created []*entity.StoryArchive
	err     error
}

func (r *fakeArchiveRepo) Create(_ context.Context, a *entity.StoryArchive) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, a)
	return nil
}

func (r *fakeArchiveRepo) GetByID(context.Context, string) (*entity.StoryArchive, error) {
	return nil, errors.New("not implemented")
}

func (r *fakeArchiveRepo) ListBySession(context.Context, string, repository.Pagination) (*repository.PagedResult[*entity.StoryArchive], error) {
	return nil, errors.New("not implemented")
}

func newTestOrchestrator(gen *fakeGenerator, opts ...Option) *Orchestrator {
	opts = append([]Option{WithCharacterGenerator(character.NewGenerator(rand.New(rand.NewPCG(1, 2))))}, opts...)
	return NewOrchestrator(
		gen,
		workflowpipeline.NewCompilePipeline(gen, workflowpipeline.Temperatures{Outline: 0.7, Draft: 0.85, Refine: 0.6}),
		narration.NewResolver(nil),
		primer.New(primer.DefaultFreshSessionMaxMessages, nil),
		Settings{HistoryLimit: 5, SlideTemperature: 0.9, AuthorTemperature: 0.7},
		opts...,
	)
}

func newKeyedState() *entity.StoryState {
	s := entity.NewStoryState(narration.DefaultDescriptor())
	s.SetUIInput(entity.UIInputAPIKey, "sk-test")
	return s
}

func lastContent(t *testing.T, s *entity.StoryState) string {
	t.Helper()
	m, ok := s.LastMessage()
	require.True(t, ok)
	return m.Content
}

func TestContinueSegment_CredentialsMissing(t *testing.T) {
	gen := newFakeGenerator()
	o := newTestOrchestrator(gen)
	s := entity.NewStoryState(narration.DefaultDescriptor())

	out := o.ContinueSegment(context.Background(), s, "")
	assert.False(t, out.OK)
	assert.Equal(t, msgSlideKeyMissing, lastContent(t, s))
	assert.Empty(t, gen.calls)
}

func TestContinueSegment_StoryReplySetsSlide(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, storyReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	s.Append(entity.RoleUser, "Tell me about the harbor")

	out := o.ContinueSegment(context.Background(), s, "")
	require.True(t, out.OK)
	require.NotNil(t, s.LastStorySlideText)
	assert.Equal(t, storyReply, *s.LastStorySlideText)
	assert.Equal(t, storyReply, lastContent(t, s))

	require.Len(t, gen.calls, 1)
	req := gen.calls[0]
	assert.Equal(t, "sk-test", req.APIKey)
	assert.InDelta(t, 0.9, req.Temperature, 1e-6)
	assert.Equal(t, "Tell me about the harbor", req.Vars["user_input"])
	assert.NotContains(t, req.Vars["chat_history"], "Tell me about the harbor")
	assert.Equal(t, "Not set", req.Vars["genre"])
	assert.Equal(t, character.NoCharactersSummary, req.Vars["characters_full_profiles"])
	assert.Equal(t, "", req.Vars["initial_scene_directive_slide"])
	assert.Contains(t, req.Vars["current_plot_focus_or_user_goal"], "User input is: 'Tell me about the harbor...'")
	require.NoError(t, workflowprompt.CheckVars(req.Prompt, req.Vars))
}

func TestContinueSegment_OverrideKeepsUserMessageInHistory(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	s.Append(entity.RoleUser, "Tell me about the harbor")

	o.ContinueSegment(context.Background(), s, "System Update: something changed")
	req := gen.calls[0]
	assert.Equal(t, "System Update: something changed", req.Vars["user_input"])
	assert.Contains(t, req.Vars["chat_history"], "user: Tell me about the harbor")
}

func TestContinueSegment_FallbackInput(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()

	o.ContinueSegment(context.Background(), s, "")
	assert.Equal(t, fallbackUserInput, gen.calls[0].Vars["user_input"])
}

func TestContinueSegment_NonStoryClearsSlide(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	s.SetLastSlide("Earlier text.")

	out := o.ContinueSegment(context.Background(), s, "anything")
	assert.True(t, out.OK)
	assert.Nil(t, s.LastStorySlideText)
	assert.Equal(t, nonStoryReply, lastContent(t, s))
}

func TestContinueSegment_GeneratorFailureKeepsState(t *testing.T) {
	gen := newFakeGenerator().fail(workflowprompt.PromptStorySlideV1, errors.New("boom"))
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	s.SetLastSlide("Earlier text.")
	before := len(s.Messages)

	out := o.ContinueSegment(context.Background(), s, "go on")
	assert.False(t, out.OK)
	require.Len(t, s.Messages, before+1)
	assert.Equal(t, "Generation error: boom", lastContent(t, s))
	require.NotNil(t, s.LastStorySlideText)
	assert.Equal(t, "Earlier text.", *s.LastStorySlideText)
}

func TestScenario_SpecialVoiceFreshStart(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, storyReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	ctx := context.Background()

	out := o.ChangeNarrationVoice(ctx, s, primer.SpecialVoiceID)
	require.True(t, out.OK)
	assert.Equal(t, primer.SpecialVoiceID, s.NarrationVoiceID)
	require.Len(t, s.Agents, 1)
	assert.Equal(t, primer.DefaultProtagonist().Name, s.Agents[0].Name)
	assert.Equal(t, primer.SessionDefaults.Genre, entity.StringOr(s.Config.Genre, ""))
	assert.Equal(t, primer.SessionDefaults.Setting, entity.StringOr(s.Config.Setting, ""))
	assert.Equal(t, primer.SessionDefaults.Tone, entity.StringOr(s.Config.Tone, ""))
	assert.Equal(t, primer.PrimedAnnouncement, lastContent(t, s))
	assert.Empty(t, gen.calls)

	out = o.HandleUserInput(ctx, s, "start the story.")
	require.True(t, out.OK)
	require.Len(t, gen.calls, 1)
	req := gen.calls[0]
	assert.Equal(t, primer.ForcedStartInput, req.Vars["user_input"])
	assert.Equal(t, primer.InitialSceneDirective, req.Vars["initial_scene_directive_slide"])
	assert.Equal(t, specialFreshPlotFocus, req.Vars["current_plot_focus_or_user_goal"])
	assert.NotNil(t, s.LastStorySlideText)
}

func TestScenario_VoiceChangeReNarratesLastSlide(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, storyReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	s.SetLastSlide("The rain fell...")

	out := o.ChangeNarrationVoice(context.Background(), s, narration.VoiceAnjaliStatic)
	require.True(t, out.OK)
	require.Len(t, gen.calls, 1)

	n := len(s.Messages)
	assert.Equal(t, "✅ Narration voice set to: Anjali (Static). The previous segment will now be re-narrated in this style.", s.Messages[n-2].Content)
	assert.Equal(t, storyReply, s.Messages[n-1].Content)

	req := gen.calls[0]
	assert.Contains(t, req.Vars["user_input"], "re-narrate")
	assert.Equal(t, "The rain fell...", req.Vars["last_story_slide_text"])
	assert.Contains(t, req.Vars["current_plot_focus_or_user_goal"], "re-narration of the previous slide text ('The rain fell...")
	assert.Contains(t, req.Vars["current_plot_focus_or_user_goal"], "'Anjali (Static)'")
	assert.Equal(t, "Anjali (Static)", req.Vars["narration_name_display"])
}

func TestChangeNarrationVoice_Idempotent(t *testing.T) {
	gen := newFakeGenerator()
	o := newTestOrchestrator(gen)
	s := newKeyedState()

	require.True(t, o.ChangeNarrationVoice(context.Background(), s, narration.VoiceAnjaliStatic).OK)
	n := len(s.Messages)
	assert.Contains(t, lastContent(t, s), "This new style will be applied to the next part of the story.")

	out := o.ChangeNarrationVoice(context.Background(), s, narration.VoiceAnjaliStatic)
	assert.False(t, out.OK)
	assert.Equal(t, statusVoiceUnchanged, out.Status)
	assert.Len(t, s.Messages, n)
	assert.Equal(t, narration.VoiceAnjaliStatic, s.NarrationVoiceID)
	assert.Empty(t, gen.calls)
}

func TestEmulateAuthor(t *testing.T) {
	t.Run("credentials missing", func(t *testing.T) {
		o := newTestOrchestrator(newFakeGenerator())
		s := entity.NewStoryState(narration.DefaultDescriptor())
		out := o.EmulateAuthor(context.Background(), s, "Jane Austen")
		assert.False(t, out.OK)
		assert.Equal(t, msgAuthorKeyMissing, lastContent(t, s))
		assert.Equal(t, entity.DefaultVoiceID, s.NarrationVoiceID)
	})

	t.Run("empty name", func(t *testing.T) {
		gen := newFakeGenerator()
		o := newTestOrchestrator(gen)
		s := newKeyedState()
		out := o.EmulateAuthor(context.Background(), s, "  ")
		assert.False(t, out.OK)
		assert.Equal(t, statusAuthorNeeded, lastContent(t, s))
		assert.Empty(t, gen.calls)
		assert.Equal(t, false, s.UIInputs[entity.UIInputClearAuthorInput])
	})

	t.Run("deferred application", func(t *testing.T) {
		gen := newFakeGenerator().reply(workflowprompt.PromptAuthorSnippetV1, "It is a truth universally acknowledged.")
		o := newTestOrchestrator(gen)
		s := newKeyedState()

		out := o.EmulateAuthor(context.Background(), s, "Jane Austen")
		require.True(t, out.OK)
		assert.Equal(t, "custom_jane_austen", s.NarrationVoiceID)
		assert.Equal(t, "Jane Austen (Dynamically Emulated)", s.Config.NarrationStyle.NameDisplay)
		assert.Equal(t, "It is a truth universally acknowledged.", s.Config.NarrationStyle.Snippet())
		assert.Equal(t, "✅ Narration style set to emulate: Jane Austen (Dynamically Emulated). This new style will be applied to the next part of the story. What's next?", lastContent(t, s))
		assert.Equal(t, true, s.UIInputs[entity.UIInputClearAuthorInput])

		require.Len(t, gen.calls, 1)
		assert.Equal(t, "Jane Austen", gen.calls[0].Vars["author_name"])
		assert.InDelta(t, 0.7, gen.calls[0].Temperature, 1e-6)
	})

	t.Run("re-narrates last slide", func(t *testing.T) {
		gen := newFakeGenerator().
			reply(workflowprompt.PromptAuthorSnippetV1, "A snippet.").
			reply(workflowprompt.PromptStorySlideV1, storyReply)
		o := newTestOrchestrator(gen)
		s := newKeyedState()
		s.SetLastSlide("Once upon a time.")

		require.True(t, o.EmulateAuthor(context.Background(), s, "Jane Austen").OK)
		slides := gen.callsFor(workflowprompt.PromptStorySlideV1)
		require.Len(t, slides, 1)
		assert.Contains(t, slides[0].Vars["user_input"], "You MUST re-narrate 'last_story_slide_text'.")
		assert.Contains(t, slides[0].Vars["narration_style_snippet_instruction_slide"], "A snippet.")
	})

	t.Run("generator failure", func(t *testing.T) {
		gen := newFakeGenerator().fail(workflowprompt.PromptAuthorSnippetV1, errors.New("boom"))
		o := newTestOrchestrator(gen)
		s := newKeyedState()

		out := o.EmulateAuthor(context.Background(), s, "Jane Austen")
		assert.False(t, out.OK)
		assert.Equal(t, "Error setting custom author style: boom", lastContent(t, s))
		assert.Equal(t, entity.DefaultVoiceID, s.NarrationVoiceID)
		assert.Equal(t, narration.DefaultDescriptor(), s.Config.NarrationStyle)
		assert.Equal(t, false, s.UIInputs[entity.UIInputClearAuthorInput])
	})

	t.Run("empty snippet", func(t *testing.T) {
		o := newTestOrchestrator(newFakeGenerator())
		s := newKeyedState()
		out := o.EmulateAuthor(context.Background(), s, "Jane Austen")
		assert.False(t, out.OK)
		assert.Equal(t, "Could not generate snippet for Jane Austen.", lastContent(t, s))
		assert.Equal(t, entity.DefaultVoiceID, s.NarrationVoiceID)
		assert.Equal(t, false, s.UIInputs[entity.UIInputClearAuthorInput])
	})
}

func TestUpdateDetails(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	ctx := context.Background()

	out := o.UpdateDetails(ctx, s, "", "", "")
	assert.False(t, out.OK)
	assert.Equal(t, statusNoDetailChanges, out.Status)
	assert.Empty(t, gen.calls)

	out = o.UpdateDetails(ctx, s, "Fantasy", "", "Hopeful")
	require.True(t, out.OK)
	assert.Equal(t, "Fantasy", entity.StringOr(s.Config.Genre, ""))
	assert.Nil(t, s.Config.Setting)
	n := len(s.Messages)
	assert.Equal(t, "✅ Story elements updated: Genre='Fantasy', Setting='N/A', Tone='Hopeful'.", s.Messages[n-2].Content)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].Vars["user_input"], "Genre is now 'Fantasy'")

	out = o.UpdateDetails(ctx, s, "", "", "Hopeful")
	require.True(t, out.OK)
	assert.Nil(t, s.Config.Genre)
}

func TestAddCharacter(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()
	ctx := context.Background()

	out := o.AddCharacter(ctx, s, " ", "rogue")
	assert.False(t, out.OK)
	assert.Equal(t, statusCharacterNeeded, out.Status)
	assert.Empty(t, s.Agents)
	assert.Empty(t, gen.calls)

	s.SetLastSlide("Some slide.")
	out = o.AddCharacter(ctx, s, "Zara", "")
	require.True(t, out.OK)
	require.Len(t, s.Agents, 1)
	assert.Equal(t, character.DefaultRole, s.Agents[0].Role)
	assert.Len(t, s.Agents[0].Traits, 3)
	assert.Equal(t, true, s.UIInputs[entity.UIInputClearCharInputs])
	assert.Nil(t, s.LastStorySlideText)

	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].Vars["user_input"], "New character 'Zara' (character) added.")
	assert.Contains(t, gen.calls[0].Vars["characters_full_profiles"], "Zara is a character")
}

func TestAddCharacterFromText(t *testing.T) {
	gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
	o := newTestOrchestrator(gen)
	s := newKeyedState()

	out := o.AddCharacterFromText(context.Background(), s, "add character: , rogue")
	assert.False(t, out.OK)
	assert.Empty(t, s.Agents)
	assert.True(t, strings.HasPrefix(lastContent(t, s), "⚠️ Error processing 'add character' command:"))

	out = o.AddCharacterFromText(context.Background(), s, "Add Character: Zara , rogue ")
	require.True(t, out.OK)
	require.Len(t, s.Agents, 1)
	assert.Equal(t, "Zara", s.Agents[0].Name)
	assert.Equal(t, "rogue", s.Agents[0].Role)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].Vars["user_input"], "Character 'Zara' (rogue) added via chat.")
}

func TestParseCharacterCommand(t *testing.T) {
	tests := []struct {
		in       string
		name     string
		role     string
		hasError bool
	}{
		{in: "add character: Zara", name: "Zara", role: character.DefaultRole},
		{in: "add character:Zara,rogue", name: "Zara", role: "rogue"},
		{in: "add character: Zara, rogue, extra", name: "Zara", role: "rogue, extra"},
		{in: "add character:", hasError: true},
		{in: "add character", hasError: true},
	}
	for _, tt := range tests {
		name, role, err := parseCharacterCommand(tt.in)
		if tt.hasError {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.name, name)
		assert.Equal(t, tt.role, role)
	}
}

func TestCompileFullStory(t *testing.T) {
	t.Run("credentials missing", func(t *testing.T) {
		o := newTestOrchestrator(newFakeGenerator())
		s := entity.NewStoryState(narration.DefaultDescriptor())
		out := o.CompileFullStory(context.Background(), s)
		assert.False(t, out.OK)
		assert.Equal(t, msgCompileKeyMissing, lastContent(t, s))
	})

	t.Run("success without characters", func(t *testing.T) {
		gen := newFakeGenerator().
			reply(workflowprompt.PromptPlotOutlineV1, "1. Start").
			reply(workflowprompt.PromptStoryDraftV1, "Draft").
			reply(workflowprompt.PromptStoryRefineV1, "Refined story")
		archives := &fakeArchiveRepo{}
		o := newTestOrchestrator(gen, WithArchive(archives))
		s := newKeyedState()
		ctx := WithSessionID(context.Background(), "sess-1")

		out := o.CompileFullStory(ctx, s)
		require.True(t, out.OK)

		outlines := gen.callsFor(workflowprompt.PromptPlotOutlineV1)
		require.Len(t, outlines, 1)
		assert.Equal(t, noCharactersForOutline, outlines[0].Vars["characters_summary"])
		assert.Equal(t, "", gen.callsFor(workflowprompt.PromptStoryDraftV1)[0].Vars["initial_scene_directive"])

		var contents []string
		for _, m := range s.Messages {
			contents = append(contents, m.Content)
		}
		assert.Contains(t, contents, msgCompileStart)
		assert.Contains(t, contents, msgOutlineDone)
		assert.Contains(t, contents, msgDraftDone)
		assert.Equal(t, msgCompileSuccess+"Refined story", lastContent(t, s))

		require.Len(t, archives.created, 1)
		assert.Equal(t, "sess-1", archives.created[0].SessionID)
		assert.Equal(t, "Refined story", archives.created[0].Refined)
	})

	t.Run("falls back to draft", func(t *testing.T) {
		gen := newFakeGenerator().
			reply(workflowprompt.PromptPlotOutlineV1, "1. Start").
			reply(workflowprompt.PromptStoryDraftV1, "Draft")
		o := newTestOrchestrator(gen)
		s := newKeyedState()

		out := o.CompileFullStory(context.Background(), s)
		assert.True(t, out.OK)
		assert.Equal(t, msgRefinedMissing+" Providing draft:\n\nDraft", lastContent(t, s))
	})

	t.Run("no output at all", func(t *testing.T) {
		o := newTestOrchestrator(newFakeGenerator())
		s := newKeyedState()

		out := o.CompileFullStory(context.Background(), s)
		assert.False(t, out.OK)
		assert.Equal(t, msgRefinedMissing+" No draft available.", lastContent(t, s))
	})

	t.Run("special voice primes then rolls back on failure", func(t *testing.T) {
		gen := newFakeGenerator().
			reply(workflowprompt.PromptPlotOutlineV1, "1. Start").
			fail(workflowprompt.PromptStoryDraftV1, errors.New("boom"))
		o := newTestOrchestrator(gen)
		s := newKeyedState()
		s.NarrationVoiceID = primer.SpecialVoiceID

		out := o.CompileFullStory(context.Background(), s)
		assert.False(t, out.OK)
		assert.Contains(t, lastContent(t, s), "Story compilation error:")
		assert.Contains(t, lastContent(t, s), "boom")
		assert.Nil(t, s.Config.Genre)
		assert.Empty(t, s.Agents)

		outlines := gen.callsFor(workflowprompt.PromptPlotOutlineV1)
		require.Len(t, outlines, 1)
		assert.Equal(t, primer.CompileDefaults.Genre, outlines[0].Vars["genre"])
		assert.Equal(t, "Key characters: "+primer.DefaultProtagonist().Name, outlines[0].Vars["characters_summary"])
		assert.Equal(t, primer.InitialSceneDirective, gen.callsFor(workflowprompt.PromptStoryDraftV1)[0].Vars["initial_scene_directive"])
	})
}

func TestRouteFor(t *testing.T) {
	assert.Equal(t, RouteCompile, RouteFor("Please COMPILE STORY now"))
	assert.Equal(t, RouteCompile, RouteFor("show me the full story"))
	assert.Equal(t, RouteCompile, RouteFor("write the story"))
	assert.Equal(t, RouteAddCharacter, RouteFor("Add character: Zara"))
	assert.Equal(t, RouteContinue, RouteFor("add character Zara"))
	assert.Equal(t, RouteContinue, RouteFor("what happens next"))
}

func TestHandleUserInput(t *testing.T) {
	t.Run("empty input", func(t *testing.T) {
		o := newTestOrchestrator(newFakeGenerator())
		s := newKeyedState()
		n := len(s.Messages)
		assert.False(t, o.HandleUserInput(context.Background(), s, "  ").OK)
		assert.Len(t, s.Messages, n)
	})

	t.Run("routes compile", func(t *testing.T) {
		gen := newFakeGenerator().reply(workflowprompt.PromptStoryRefineV1, "Refined")
		o := newTestOrchestrator(gen)
		s := newKeyedState()
		s.SetLastSlide("old")

		require.True(t, o.HandleUserInput(context.Background(), s, "compile story").OK)
		assert.Len(t, gen.callsFor(workflowprompt.PromptPlotOutlineV1), 1)
		assert.Empty(t, gen.callsFor(workflowprompt.PromptStorySlideV1))
		assert.Nil(t, s.LastStorySlideText)
	})

	t.Run("routes add character", func(t *testing.T) {
		gen := newFakeGenerator().reply(workflowprompt.PromptStorySlideV1, nonStoryReply)
		o := newTestOrchestrator(gen)
		s := newKeyedState()

		require.True(t, o.HandleUserInput(context.Background(), s, "add character: Zara, rogue").OK)
		require.Len(t, s.Agents, 1)
		assert.Equal(t, entity.RoleUser, s.Messages[2].Role)
	})
}

func TestVisibleMessages(t *testing.T) {
	s := entity.NewStoryState(narration.DefaultDescriptor())
	s.Append(entity.RoleSystem, "System Update: shown")
	s.Append(entity.RoleUser, "hi")

	got := VisibleMessages(s)
	require.Len(t, got, 3)
	assert.Equal(t, entity.WelcomeAssistantMessage, got[0].Content)
	assert.Equal(t, "System Update: shown", got[1].Content)
	assert.Equal(t, "hi", got[2].Content)
}

func TestLocker_SerializesPerSession(t *testing.T) {
	l := NewLocker()
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		current int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := l.Lock("s1")
			defer unlock()
			mu.Lock()
			current++
			if current > maxSeen {
				maxSeen = current
			}
			mu.Unlock()

			mu.Lock()
			current--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.Len())
}

func TestSessionIDFromContext(t *testing.T) {
	assert.Equal(t, "", SessionIDFromContext(context.Background()))
	assert.Equal(t, "abc", SessionIDFromContext(WithSessionID(context.Background(), "abc")))
}
