package history

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"story-weaver-api/internal/domain/entity"
)

func alternating(n int) []entity.Message {
	msgs := make([]entity.Message, 0, n*2)
	for i := 0; i < n; i++ {
		msgs = append(msgs,
			entity.Message{Role: entity.RoleUser, Content: fmt.Sprintf("u%d", i)},
			entity.Message{Role: entity.RoleAssistant, Content: fmt.Sprintf("a%d", i)},
		)
	}
	return msgs
}

func TestWindow_PerRoleLimitChronological(t *testing.T) {
	out := Window(alternating(10), 5, false)
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 10)

	var users, assistants int
	for _, l := range lines {
		switch {
		case strings.HasPrefix(l, "user: "):
			users++
		case strings.HasPrefix(l, "assistant: "):
			assistants++
		}
	}
	assert.Equal(t, 5, users)
	assert.Equal(t, 5, assistants)
	assert.Equal(t, "user: u5", lines[0])
	assert.Equal(t, "assistant: a9", lines[9])
}

func TestWindow_ExcludesCurrentUserTurn(t *testing.T) {
	msgs := append(alternating(2), entity.Message{Role: entity.RoleUser, Content: "now"})

	with := Window(msgs, 5, false)
	assert.True(t, strings.HasSuffix(with, "user: now"))

	without := Window(msgs, 5, true)
	assert.NotContains(t, without, "now")
	assert.True(t, strings.HasSuffix(without, "assistant: a1"))
}

func TestWindow_ExcludeOnlyAppliesToTrailingUserTurn(t *testing.T) {
	msgs := alternating(2)
	assert.Equal(t, Window(msgs, 5, false), Window(msgs, 5, true))
}

func TestWindow_SystemMessagesCountPerRole(t *testing.T) {
	msgs := []entity.Message{
		{Role: entity.RoleSystem, Content: "s0"},
		{Role: entity.RoleSystem, Content: "s1"},
		{Role: entity.RoleUser, Content: "u0"},
		{Role: entity.RoleSystem, Content: "s2"},
		{Role: entity.RoleAssistant, Content: "a0"},
	}

	out := Window(msgs, 2, false)
	assert.Equal(t, "system: s1\nuser: u0\nsystem: s2\nassistant: a0", out)

	noSys := Window(msgs, 2, false, WithoutSystem())
	assert.Equal(t, "user: u0\nassistant: a0", noSys)
}

func TestWindow_Empty(t *testing.T) {
	assert.Empty(t, Window(nil, 5, false))
	assert.Empty(t, Window(alternating(3), 0, false))
}
