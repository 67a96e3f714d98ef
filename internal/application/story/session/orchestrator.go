// Package session 实现会话编排：把用户事件转换为状态迁移与生成调用
package session

import (
	"context"
	"time"

	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/character"
	"story-weaver-api/internal/application/story/classifier"
	"story-weaver-api/internal/application/story/primer"
	"story-weaver-api/internal/domain/repository"
	workflowpipeline "story-weaver-api/internal/workflow/pipeline"
	workflowport "story-weaver-api/internal/workflow/port"
	"story-weaver-api/pkg/logger"
	"story-weaver-api/pkg/metrics"
)

// DefaultHistoryLimit 每种角色进入历史窗口的最大消息数
const DefaultHistoryLimit = 5

// 事件名，用于日志与指标
const (
	EventUpdateDetails   = "update_details"
	EventChangeVoice     = "change_voice"
	EventEmulateAuthor   = "emulate_author"
	EventAddCharacter    = "add_character"
	EventAddCharacterCmd = "add_character_chat"
	EventContinue        = "continue_segment"
	EventCompile         = "compile_story"
	EventUserInput       = "user_input"
)

// Settings 编排器参数
type Settings struct {
	HistoryLimit      int
	SlideTemperature  float32
	AuthorTemperature float32
}

// Orchestrator 会话编排器；本身无状态，StoryState 由调用方传入并在单次请求内独占
type Orchestrator struct {
	gen        workflowport.Generator
	pipeline   *workflowpipeline.CompilePipeline
	resolver   *narration.Resolver
	primer     *primer.Primer
	characters *character.Generator
	classifier *classifier.Classifier
	archives   repository.ArchiveRepository
	settings   Settings
}

type Option func(*Orchestrator)

// WithArchive 启用成稿归档
func WithArchive(repo repository.ArchiveRepository) Option {
	return func(o *Orchestrator) { o.archives = repo }
}

// WithClassifier 替换默认分类规则
func WithClassifier(c *classifier.Classifier) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.classifier = c
		}
	}
}

// WithCharacterGenerator 替换角色生成器（测试中用于固定随机源）
func WithCharacterGenerator(g *character.Generator) Option {
	return func(o *Orchestrator) {
		if g != nil {
			o.characters = g
		}
	}
}

func NewOrchestrator(
	gen workflowport.Generator,
	pipeline *workflowpipeline.CompilePipeline,
	resolver *narration.Resolver,
	pr *primer.Primer,
	settings Settings,
	opts ...Option,
) *Orchestrator {
	if settings.HistoryLimit <= 0 {
		settings.HistoryLimit = DefaultHistoryLimit
	}
	if pr == nil {
		pr = primer.New(primer.DefaultFreshSessionMaxMessages, nil)
	}
	if resolver == nil {
		resolver = narration.NewResolver(nil)
	}
	o := &Orchestrator{
		gen:        gen,
		pipeline:   pipeline,
		resolver:   resolver,
		primer:     pr,
		characters: character.NewGenerator(nil),
		classifier: classifier.New(),
		settings:   settings,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Resolver 返回风格解析器
func (o *Orchestrator) Resolver() *narration.Resolver {
	return o.resolver
}

// observe 记录事件耗时与结果
func (o *Orchestrator) observe(ctx context.Context, event string, start time.Time, out Outcome) {
	elapsed := time.Since(start)
	metrics.StoryEventTotal.WithLabelValues(event, metrics.StatusLabel(out.OK)).Inc()
	metrics.StoryEventDuration.WithLabelValues(event).Observe(elapsed.Seconds())
	logger.Debug(ctx, "session event handled",
		"event", event,
		"ok", out.OK,
		"status", out.Status,
		"duration_ms", elapsed.Milliseconds(),
	)
}

// WithSessionID 将会话 ID 写入 ctx，日志与归档使用
func WithSessionID(ctx context.Context, id string) context.Context {
	return logger.WithContext(ctx, logger.SessionIDKey, id)
}

// SessionIDFromContext 读取会话 ID
func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(logger.SessionIDKey).(string)
	return id
}
