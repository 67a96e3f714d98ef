// Package history 构建纳入生成请求的有界对话记录
package history

import (
	"strings"

	"story-weaver-api/internal/domain/entity"
)

type options struct {
	skipSystem bool
}

// Option 窗口选项
type Option func(*options)

// WithoutSystem 排除系统消息
func WithoutSystem() Option {
	return func(o *options) { o.skipSystem = true }
}

// Window 从最新到最旧收集消息，每个角色最多 perRoleLimit 条，
// 用户与助手都达到上限后停止，最终按时间顺序输出 "<role>: <content>" 行。
// excludeCurrentUser 为 true 且最后一条消息来自用户时跳过该条，
// 用于该条内容已作为本轮输入单独传入的场景。
func Window(messages []entity.Message, perRoleLimit int, excludeCurrentUser bool, opts ...Option) string {
	if perRoleLimit <= 0 || len(messages) == 0 {
		return ""
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	counts := make(map[entity.Role]int, 3)
	picked := make([]entity.Message, 0, perRoleLimit*2)
	start := len(messages) - 1
	if excludeCurrentUser && messages[start].Role == entity.RoleUser {
		start--
	}

	for i := start; i >= 0; i-- {
		if counts[entity.RoleUser] >= perRoleLimit && counts[entity.RoleAssistant] >= perRoleLimit {
			break
		}
		msg := messages[i]
		if msg.Role == entity.RoleSystem && o.skipSystem {
			continue
		}
		if counts[msg.Role] >= perRoleLimit {
			continue
		}
		counts[msg.Role]++
		picked = append(picked, msg)
	}

	lines := make([]string, 0, len(picked))
	for i := len(picked) - 1; i >= 0; i-- {
		lines = append(lines, string(picked[i].Role)+": "+picked[i].Content)
	}
	return strings.Join(lines, "\n")
}
