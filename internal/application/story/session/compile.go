package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/character"
	"story-weaver-api/internal/application/story/primer"
	"story-weaver-api/internal/domain/entity"
	workflowpipeline "story-weaver-api/internal/workflow/pipeline"
	"story-weaver-api/pkg/logger"
	"story-weaver-api/pkg/metrics"
)

// narrativeSnapshot 编译失败时用于回滚的叙事字段
type narrativeSnapshot struct {
	config entity.StoryConfig
	agents []entity.CharacterProfile
}

func takeSnapshot(state *entity.StoryState) narrativeSnapshot {
	return narrativeSnapshot{
		config: state.Config,
		agents: append([]entity.CharacterProfile(nil), state.Agents...),
	}
}

func (s narrativeSnapshot) restore(state *entity.StoryState) {
	state.Config = s.config
	state.Agents = s.agents
}

// CompileFullStory 运行 大纲 -> 初稿 -> 润色 流水线，输出整篇故事
func (o *Orchestrator) CompileFullStory(ctx context.Context, state *entity.StoryState) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventCompile, start, out) }()

	apiKey := state.APIKey()
	if apiKey == "" {
		state.Append(entity.RoleAssistant, msgCompileKeyMissing)
		return failed(msgCompileKeyMissing)
	}

	state.Append(entity.RoleAssistant, msgCompileStart)
	snapshot := takeSnapshot(state)

	if !narration.IsCustomVoice(state.NarrationVoiceID) {
		state.Config.NarrationStyle = o.resolver.Resolve(ctx, state.NarrationVoiceID)
	}
	sceneDirective := ""
	if primer.IsSpecialVoice(state) {
		sceneDirective = primer.InitialSceneDirective
		o.primer.PrimeForCompile(ctx, state)
	}

	in := o.compileInput(state, apiKey, sceneDirective)
	logger.Info(ctx, "story compilation started",
		"voice_id", state.NarrationVoiceID,
		"agents", len(state.Agents),
		"scene_directive", sceneDirective != "",
	)

	if o.pipeline == nil {
		return o.compileFailed(ctx, state, snapshot, fmt.Errorf("compile pipeline not configured"))
	}
	res, err := o.pipeline.Run(ctx, in, func(stage workflowpipeline.Stage, _ *workflowpipeline.CompileResult) {
		switch stage {
		case workflowpipeline.StageOutline:
			state.Append(entity.RoleAssistant, msgOutlineDone)
		case workflowpipeline.StageDraft:
			state.Append(entity.RoleAssistant, msgDraftDone)
		}
	})
	if err != nil {
		return o.compileFailed(ctx, state, snapshot, err)
	}

	if res.Refined == "" {
		msg := msgRefinedMissing
		if res.Draft != "" {
			msg += " Providing draft:\n\n" + res.Draft
		} else {
			msg += " No draft available."
		}
		state.Append(entity.RoleAssistant, msg)
		logger.Warn(ctx, "refined story missing", "has_draft", res.Draft != "")
		if res.Draft == "" {
			return failed(msgRefinedMissing)
		}
		return Outcome{OK: true, Status: msgRefinedMissing}
	}

	state.Append(entity.RoleAssistant, msgCompileSuccess+res.Refined)
	metrics.StoryWordCount.WithLabelValues("compiled").Observe(float64(len(strings.Fields(res.Refined))))
	o.archive(ctx, state, res)
	return ok()
}

func (o *Orchestrator) compileInput(state *entity.StoryState, apiKey, sceneDirective string) *workflowpipeline.CompileInput {
	summary := noCharactersForOutline
	if len(state.Agents) > 0 {
		summary = "Key characters: " + strings.Join(state.AgentNames(), ", ")
	}
	style := state.Config.NarrationStyle
	return &workflowpipeline.CompileInput{
		APIKey:                 apiKey,
		Genre:                  entity.StringOr(state.Config.Genre, notSet),
		Setting:                entity.StringOr(state.Config.Setting, notSet),
		Tone:                   entity.StringOr(state.Config.Tone, notSet),
		CharactersSummary:      summary,
		CharactersFullProfiles: character.Summaries(state.Agents),
		InitialSceneDirective:  sceneDirective,
		Narration: workflowpipeline.Narration{
			NameDisplay: style.NameDisplay,
			Tone:        style.Tone,
			InspiredBy:  style.InspiredBy,
		},
		DraftSnippetInstruction:  narration.SnippetInstruction(style, narration.TargetDraft),
		RefineSnippetInstruction: narration.SnippetInstruction(style, narration.TargetRefinement),
	}
}

func (o *Orchestrator) compileFailed(ctx context.Context, state *entity.StoryState, snapshot narrativeSnapshot, err error) Outcome {
	logger.Error(ctx, "story compilation failed", err)
	snapshot.restore(state)
	msg := fmt.Sprintf("Story compilation error: %v", err)
	state.Append(entity.RoleAssistant, msg)
	return failed(msg)
}

// archive 归档成稿，失败只记录日志
func (o *Orchestrator) archive(ctx context.Context, state *entity.StoryState, res *workflowpipeline.CompileResult) {
	if o.archives == nil {
		return
	}
	record := &entity.StoryArchive{
		ID:               uuid.NewString(),
		SessionID:        SessionIDFromContext(ctx),
		NarrationVoiceID: state.NarrationVoiceID,
		NarrationName:    state.Config.NarrationStyle.NameDisplay,
		Genre:            entity.StringOr(state.Config.Genre, ""),
		Setting:          entity.StringOr(state.Config.Setting, ""),
		Tone:             entity.StringOr(state.Config.Tone, ""),
		CharacterNames:   pq.StringArray(state.AgentNames()),
		Outline:          res.Outline,
		Draft:            res.Draft,
		Refined:          res.Refined,
	}
	if err := o.archives.Create(ctx, record); err != nil {
		logger.Error(ctx, "failed to archive compiled story", err, "archive_id", record.ID)
		return
	}
	logger.Info(ctx, "compiled story archived", "archive_id", record.ID)
}
