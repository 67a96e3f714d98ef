// Package primer 为特殊叙事风格补齐故事默认设定与默认主角
package primer

import (
	"context"
	"fmt"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/classifier"
	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/pkg/logger"
)

// SpecialVoiceID 带开场指令与默认设定的特殊风格
const SpecialVoiceID = narration.VoiceBennetRegency

// SpecialVoiceName 特殊风格的展示名
const SpecialVoiceName = "Bennet (Regency Romance)"

// DefaultFreshSessionMaxMessages 判定新会话的消息条数上限
const DefaultFreshSessionMaxMessages = 5

// Defaults 特殊风格的故事默认设定
type Defaults struct {
	Genre   string
	Setting string
	Tone    string
}

var (
	// SessionDefaults 新会话选择特殊风格时补齐的设定
	SessionDefaults = Defaults{
		Genre:   "Historical Romance (Regency)",
		Setting: "Early 19th Century England, Upper-Class Society",
		Tone:    "Elegant, Introspective, Emotionally Layered",
	}
	// CompileDefaults 整本编译时补齐的设定
	CompileDefaults = Defaults{
		Genre:   "Historical Romance (Regency)",
		Setting: "Early 19th Century England",
		Tone:    "Elegant, Introspective",
	}
)

// 默认主角
const (
	protagonistName     = "Eleanor Vance"
	protagonistRole     = "Lady's Maid (or Governess)"
	protagonistGoal     = "Seek a life of meaning beyond her current station"
	protagonistConflict = "Duty to her employers vs. her own desires and principles"
)

var protagonistTraits = []string{"observant", "intelligent", "quietly yearning"}

// InitialSceneDirective 特殊风格的开场指令
const InitialSceneDirective = `IMPORTANT SCENARIO DIRECTIVE FOR STORY OPENING:
Open the story in a quiet, observed moment inside a grand Regency household. Introduce the protagonist through a small, concrete task that reveals her station and her sharp attention to the people around her. Let a single detail (an overheard remark, a misplaced letter, an unexpected guest) hint at the tension that will drive the story. Keep the prose restrained and precise: no purple prose, no stock phrases of the period, and every object that is lingered on should matter later. End the scene on a moment of quiet emotional weight rather than a plot twist.`

// ForcedStartInput 特殊风格新会话中替换泛化开场输入的系统任务
const ForcedStartInput = "System Task: Initiate the story using the 'Bennet (Regency Romance)' style. Strictly follow the provided 'IMPORTANT SCENARIO DIRECTIVE FOR STORY OPENING' to craft this first scene."

// PrimedAnnouncement 默认主角加入后的提示消息
var PrimedAnnouncement = fmt.Sprintf(
	"For '%s' style, I've set up: %s, a %s. The story will begin per style guidelines. What would you like to happen?",
	SpecialVoiceName, protagonistName, protagonistRole,
)

// ClassifyFunc 判断文本是否为故事正文
type ClassifyFunc func(text string) bool

// Primer 上下文预置器
type Primer struct {
	maxMessages int
	isStory     ClassifyFunc
}

// New 创建预置器
func New(maxMessages int, isStory ClassifyFunc) *Primer {
	if maxMessages <= 0 {
		maxMessages = DefaultFreshSessionMaxMessages
	}
	if isStory == nil {
		isStory = func(text string) bool {
			ok, _ := classifier.Classify(text)
			return ok
		}
	}
	return &Primer{maxMessages: maxMessages, isStory: isStory}
}

// IsSpecialVoice 当前是否为特殊风格
func IsSpecialVoice(state *entity.StoryState) bool {
	return state != nil && state.NarrationVoiceID == SpecialVoiceID
}

// IsFreshSession 消息不超过上限、无最近故事段落、且助手尚未输出过故事正文
func (p *Primer) IsFreshSession(state *entity.StoryState) bool {
	if len(state.Messages) > p.maxMessages || state.LastStorySlideText != nil {
		return false
	}
	for _, msg := range state.Messages {
		if msg.Role == entity.RoleAssistant && p.isStory(msg.Content) {
			return false
		}
	}
	return true
}

// PrimeIfNeeded 特殊风格且为新会话时补齐未设置的字段，必要时加入默认主角。
// 只补不改：用户已设置的字段保持原样。返回是否追加了主角介绍消息。
func (p *Primer) PrimeIfNeeded(ctx context.Context, state *entity.StoryState) bool {
	if !IsSpecialVoice(state) || !p.IsFreshSession(state) {
		return false
	}

	applyDefaults(state, SessionDefaults)
	announced := false
	if len(state.Agents) == 0 {
		p.addProtagonist(state)
		state.Append(entity.RoleAssistant, PrimedAnnouncement)
		announced = true
	}
	logger.Info(ctx, "special narration context primed",
		"genre", entity.StringOr(state.Config.Genre, ""),
		"setting", entity.StringOr(state.Config.Setting, ""),
		"agents", len(state.Agents),
	)
	return announced
}

// PrimeForCompile 整本编译前无条件补齐特殊风格的默认设定与主角
func (p *Primer) PrimeForCompile(ctx context.Context, state *entity.StoryState) {
	if !IsSpecialVoice(state) {
		return
	}
	applyDefaults(state, CompileDefaults)
	if len(state.Agents) == 0 {
		p.addProtagonist(state)
		logger.Info(ctx, "default protagonist added for compilation", "name", protagonistName)
	}
}

func (p *Primer) addProtagonist(state *entity.StoryState) {
	state.AddAgent(DefaultProtagonist())
}

// DefaultProtagonist 特殊风格的默认主角
func DefaultProtagonist() entity.CharacterProfile {
	return entity.CharacterProfile{
		Name:             protagonistName,
		Role:             protagonistRole,
		Traits:           append([]string(nil), protagonistTraits...),
		Goal:             protagonistGoal,
		InternalConflict: protagonistConflict,
	}
}

func applyDefaults(state *entity.StoryState, d Defaults) {
	if entity.StringOr(state.Config.Genre, "") == "" {
		state.Config.Genre = entity.StringPtr(d.Genre)
	}
	if entity.StringOr(state.Config.Setting, "") == "" {
		state.Config.Setting = entity.StringPtr(d.Setting)
	}
	if entity.StringOr(state.Config.Tone, "") == "" {
		state.Config.Tone = entity.StringPtr(d.Tone)
	}
}
