package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/domain/entity"
	workflowport "story-weaver-api/internal/workflow/port"
	workflowprompt "story-weaver-api/internal/workflow/prompt"
	"story-weaver-api/pkg/logger"
)

// UpdateDetails 与当前设定逐项比较，有变化时更新并让模型确认；空串表示清除该字段
func (o *Orchestrator) UpdateDetails(ctx context.Context, state *entity.StoryState, genre, setting, tone string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventUpdateDetails, start, out) }()

	updated := false
	apply := func(field **string, value string) {
		if value == entity.StringOr(*field, "") {
			return
		}
		if value == "" {
			*field = nil
		} else {
			*field = entity.StringPtr(value)
		}
		updated = true
	}
	apply(&state.Config.Genre, genre)
	apply(&state.Config.Setting, setting)
	apply(&state.Config.Tone, tone)

	if !updated {
		return failed(statusNoDetailChanges)
	}

	g := entity.StringOr(state.Config.Genre, "N/A")
	s := entity.StringOr(state.Config.Setting, "N/A")
	t := entity.StringOr(state.Config.Tone, "N/A")
	logger.Info(ctx, "story details updated", "genre", g, "setting", s, "tone", t)

	state.Append(entity.RoleAssistant, fmt.Sprintf("✅ Story elements updated: Genre='%s', Setting='%s', Tone='%s'.", g, s, t))
	directive := fmt.Sprintf("System Update: Core story elements have been updated by the user. Genre is now '%s', Setting is '%s', Tone is '%s'. Please acknowledge this change and, based on the current setup state (for example whether characters are defined and whether the initial story elements are complete), ask the next logical question for story setup or await user input to begin the story.", g, s, t)
	o.ContinueSegment(ctx, state, directive)
	return ok()
}

// ChangeNarrationVoice 切换叙事声音；与当前相同时不做任何改动
func (o *Orchestrator) ChangeNarrationVoice(ctx context.Context, state *entity.StoryState, voiceID string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventChangeVoice, start, out) }()

	voiceID = strings.TrimSpace(voiceID)
	if voiceID == "" || voiceID == state.NarrationVoiceID {
		return failed(statusVoiceUnchanged)
	}

	desc := o.resolver.Resolve(ctx, voiceID)
	state.NarrationVoiceID = voiceID
	state.Config.NarrationStyle = desc
	logger.Info(ctx, "narration voice changed", "voice_id", voiceID, "name", desc.NameDisplay)

	announced := o.primer.PrimeIfNeeded(ctx, state)

	confirmation := fmt.Sprintf("✅ Narration voice set to: %s.", desc.NameDisplay)
	directive := fmt.Sprintf("System Directive: Narration style has changed to '%s'.", desc.NameDisplay)
	if state.HasLastSlide() {
		state.Append(entity.RoleAssistant, confirmation+" The previous segment will now be re-narrated in this style.")
		o.ContinueSegment(ctx, state, directive+" You MUST re-narrate the content provided in 'last_story_slide_text' using this new style. Focus ONLY on re-writing the text in the new voice; do NOT add new plot or change core events.")
		return ok()
	}
	if !announced {
		state.Append(entity.RoleAssistant, confirmation+" This new style will be applied to the next part of the story. What would you like to do next?")
	}
	return ok()
}

// EmulateAuthor 让模型生成指定作者风格的示例片段，并以此作为当前叙事风格
func (o *Orchestrator) EmulateAuthor(ctx context.Context, state *entity.StoryState, authorName string) (out Outcome) {
	start := time.Now()
	defer func() {
		// 仅在风格设置成功时清空作者输入框
		state.SetUIInput(entity.UIInputClearAuthorInput, out.OK)
		o.observe(ctx, EventEmulateAuthor, start, out)
	}()

	apiKey := state.APIKey()
	if apiKey == "" {
		state.Append(entity.RoleAssistant, msgAuthorKeyMissing)
		return failed(msgAuthorKeyMissing)
	}
	authorName = strings.TrimSpace(authorName)
	if authorName == "" {
		state.Append(entity.RoleAssistant, statusAuthorNeeded)
		return failed(statusAuthorNeeded)
	}

	state.Append(entity.RoleUser, "System Command: User wants to emulate author: "+authorName)
	state.Append(entity.RoleAssistant, fmt.Sprintf("Attempting to generate a style example for %s...", authorName))

	if o.gen == nil {
		return o.authorFailed(ctx, state, fmt.Errorf("generator not configured"))
	}
	snippet, err := o.gen.Generate(ctx, workflowport.GenerateRequest{
		Prompt:      workflowprompt.PromptAuthorSnippetV1,
		Vars:        map[string]any{"author_name": authorName},
		Temperature: o.settings.AuthorTemperature,
		APIKey:      apiKey,
	})
	if err != nil {
		return o.authorFailed(ctx, state, err)
	}
	if strings.TrimSpace(snippet) == "" {
		msg := fmt.Sprintf("Could not generate snippet for %s.", authorName)
		state.Append(entity.RoleAssistant, msg)
		return failed(msg)
	}

	desc, err := narration.CustomDescriptor(authorName, snippet)
	if err != nil {
		return o.authorFailed(ctx, state, err)
	}
	state.NarrationVoiceID = narration.CustomVoiceID(authorName)
	state.Config.NarrationStyle = desc
	logger.Info(ctx, "custom author style set", "voice_id", state.NarrationVoiceID, "snippet_chars", len(snippet))

	confirmation := fmt.Sprintf("✅ Narration style set to emulate: %s.", desc.NameDisplay)
	directive := fmt.Sprintf("System Directive: Narration style changed to emulate '%s' using a generated snippet.", desc.NameDisplay)
	if state.HasLastSlide() {
		state.Append(entity.RoleAssistant, confirmation+" The previous segment will now be re-narrated.")
		o.ContinueSegment(ctx, state, directive+" You MUST re-narrate 'last_story_slide_text'. Do NOT add new plot.")
		return ok()
	}
	state.Append(entity.RoleAssistant, confirmation+" This new style will be applied to the next part of the story. What's next?")
	return ok()
}

func (o *Orchestrator) authorFailed(ctx context.Context, state *entity.StoryState, err error) Outcome {
	logger.Error(ctx, "author style emulation failed", err)
	msg := fmt.Sprintf("Error setting custom author style: %v", err)
	state.Append(entity.RoleAssistant, msg)
	return failed(msg)
}

// resyncNarration 非自定义风格时按当前 ID 重新解析描述，保持与风格库同步
func (o *Orchestrator) resyncNarration(ctx context.Context, state *entity.StoryState) {
	if narration.IsCustomVoice(state.NarrationVoiceID) {
		return
	}
	state.Config.NarrationStyle = o.resolver.Resolve(ctx, state.NarrationVoiceID)
}
