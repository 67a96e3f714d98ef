package session

import (
	"context"
	"strings"
	"time"

	"story-weaver-api/internal/domain/entity"
)

// Route 用户输入的分流结果
type Route string

const (
	RouteCompile      Route = "compile"
	RouteAddCharacter Route = "add_character"
	RouteContinue     Route = "continue"
)

// RouteFor 按关键词（不区分大小写）判断用户输入的去向
func RouteFor(input string) Route {
	lower := strings.ToLower(input)
	for _, kw := range compileKeywords {
		if strings.Contains(lower, kw) {
			return RouteCompile
		}
	}
	if strings.Contains(lower, addCharacterKeyword) {
		return RouteAddCharacter
	}
	return RouteContinue
}

// HandleUserInput 记录一条用户消息并分派到对应处理器
func (o *Orchestrator) HandleUserInput(ctx context.Context, state *entity.StoryState, input string) (out Outcome) {
	start := time.Now()
	defer func() { o.observe(ctx, EventUserInput, start, out) }()

	input = strings.TrimSpace(input)
	if input == "" {
		return failed("Message is empty.")
	}
	state.Append(entity.RoleUser, input)
	state.ClearLastSlide()

	switch RouteFor(input) {
	case RouteCompile:
		return o.CompileFullStory(ctx, state)
	case RouteAddCharacter:
		return o.AddCharacterFromText(ctx, state, input)
	default:
		o.resyncNarration(ctx, state)
		return o.ContinueSegment(ctx, state, "")
	}
}

// VisibleMessages 返回展示给用户的消息：隐藏系统消息，"System Update:" 开头的除外
func VisibleMessages(state *entity.StoryState) []entity.Message {
	out := make([]entity.Message, 0, len(state.Messages))
	for _, m := range state.Messages {
		if m.Role == entity.RoleSystem && !strings.HasPrefix(m.Content, "System Update:") {
			continue
		}
		out = append(out, m)
	}
	return out
}
