package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/character"
	"story-weaver-api/internal/application/story/history"
	"story-weaver-api/internal/application/story/primer"
	"story-weaver-api/internal/domain/entity"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
	"story-weaver-api/pkg/logger"
	"story-weaver-api/pkg/metrics"
	"story-weaver-api/pkg/utils"
)

const notSet = "Not set"

// ContinueSegment 生成下一段内容。override 非空时作为本轮指令，
// 否则使用最新一条用户消息，再否则使用通用的续写指令。
func (o *Orchestrator) ContinueSegment(ctx context.Context, state *entity.StoryState, override string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventContinue, start, out) }()

	apiKey := state.APIKey()
	if apiKey == "" {
		state.Append(entity.RoleAssistant, msgSlideKeyMissing)
		return failed(msgSlideKeyMissing)
	}
	if o.gen == nil {
		msg := "Generation error: generator not configured"
		state.Append(entity.RoleAssistant, msg)
		return failed(msg)
	}

	override = strings.TrimSpace(override)
	chatHistory := history.Window(state.Messages, o.settings.HistoryLimit, override == "")
	userInput := effectiveUserInput(state, override)

	narrationStyle := state.Config.NarrationStyle
	sceneDirective := ""
	plotFocus := fmt.Sprintf("User input is: '%s...'. Analyze this within the context of the chat history. If it's a story continuation, build upon the last AI-generated story segment. If it's a question or command, address it directly.",
		utils.TruncateRunes(userInput, 100))

	switch {
	case primer.IsSpecialVoice(state) && o.primer.IsFreshSession(state):
		sceneDirective = primer.InitialSceneDirective
		plotFocus = specialFreshPlotFocus
		if _, generic := genericStartInputs[strings.ToLower(strings.TrimSpace(userInput))]; generic {
			userInput = primer.ForcedStartInput
		}
		logger.Info(ctx, "initial scene directive applied", "voice_id", state.NarrationVoiceID)
	case strings.Contains(strings.ToLower(userInput), "re-narrate") && state.HasLastSlide():
		plotFocus = fmt.Sprintf("The user has requested a re-narration of the previous slide text ('%s...') due to a style change to '%s'. Re-write ONLY that text.",
			utils.TruncateRunes(*state.LastStorySlideText, 50), narrationStyle.NameDisplay)
	}

	vars := map[string]any{
		"user_input":                      userInput,
		"current_plot_focus_or_user_goal": plotFocus,
		"initial_scene_directive_slide":   sceneDirective,
		"last_story_slide_text":           entity.StringOr(state.LastStorySlideText, ""),
		"chat_history":                    chatHistory,

		"narration_name_display": narrationStyle.NameDisplay,
		"narration_tone":         narrationStyle.Tone,
		"narration_inspired_by":  narrationStyle.InspiredBy,

		"narration_style_snippet_instruction_slide": narration.SnippetInstruction(narrationStyle, narration.TargetSlide),

		"characters_full_profiles": character.Summaries(state.Agents),
		"genre":                    entity.StringOr(state.Config.Genre, notSet),
		"setting":                  entity.StringOr(state.Config.Setting, notSet),
		"tone":                     entity.StringOr(state.Config.Tone, notSet),
	}

	reply, err := o.gen.Generate(ctx, workflowport.GenerateRequest{
		Prompt:      workflowprompt.PromptStorySlideV1,
		Vars:        vars,
		Temperature: o.settings.SlideTemperature,
		APIKey:      apiKey,
	})
	if err != nil {
		logger.Error(ctx, "segment generation failed", err)
		msg := fmt.Sprintf("Generation error: %v", err)
		state.Append(entity.RoleAssistant, msg)
		return failed(msg)
	}

	state.Append(entity.RoleAssistant, reply)
	o.recordSlide(ctx, state, reply)
	return ok()
}

func effectiveUserInput(state *entity.StoryState, override string) string {
	if override != "" {
		return override
	}
	if last, ok := state.LastMessage(); ok && last.Role == entity.RoleUser {
		return last.Content
	}
	return fallbackUserInput
}

// recordSlide 对回复分类，故事正文记为最近段落，否则清除
func (o *Orchestrator) recordSlide(ctx context.Context, state *entity.StoryState, reply string) {
	res := o.classifier.Classify(reply)
	verdict := "not_story"
	if res.IsStory && res.Text != "" {
		verdict = "story"
		state.SetLastSlide(res.Text)
		metrics.StoryWordCount.WithLabelValues("slide").Observe(float64(len(strings.Fields(res.Text))))
	} else {
		state.ClearLastSlide()
	}
	metrics.ClassificationTotal.WithLabelValues(verdict, res.DecidedBy).Inc()
	logger.Debug(ctx, "segment classified", "verdict", verdict, "rule", res.DecidedBy)
}
