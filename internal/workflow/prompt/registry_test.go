package prompt

import (
	"context"
	"regexp"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

func allPromptIDs() []PromptID {
	return []PromptID{
		PromptStorySlideV1,
		PromptAuthorSnippetV1,
		PromptPlotOutlineV1,
		PromptStoryDraftV1,
		PromptStoryRefineV1,
	}
}

func TestTemplatesReferenceExactlyRequiredVars(t *testing.T) {
	for _, id := range allPromptIDs() {
		t.Run(string(id), func(t *testing.T) {
			systemPath, userPath, err := resolvePromptFiles(id)
			require.NoError(t, err)

			seen := map[string]struct{}{}
			for _, p := range []string{systemPath, userPath} {
				text, err := readEmbeddedText(p)
				require.NoError(t, err)
				for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
					seen[m[1]] = struct{}{}
				}
			}

			got := make([]string, 0, len(seen))
			for k := range seen {
				got = append(got, k)
			}
			want := RequiredVars(id)
			sort.Strings(got)
			sort.Strings(want)
			assert.Equal(t, want, got)
		})
	}
}

func TestChatTemplate_FormatsAndCaches(t *testing.T) {
	r := NewRegistry()
	tpl, err := r.ChatTemplate(PromptAuthorSnippetV1)
	require.NoError(t, err)

	again, err := r.ChatTemplate(PromptAuthorSnippetV1)
	require.NoError(t, err)
	assert.Same(t, tpl, again)

	msgs, err := tpl.Format(context.Background(), map[string]any{"author_name": "Jane Austen"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[1].Content, "Jane Austen")
}

func TestChatTemplate_UnknownID(t *testing.T) {
	_, err := NewRegistry().ChatTemplate("nope")
	require.Error(t, err)
}

func TestCheckVars(t *testing.T) {
	err := CheckVars(PromptPlotOutlineV1, map[string]any{"genre": "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "characters_summary")

	require.NoError(t, CheckVars(PromptPlotOutlineV1, map[string]any{
		"genre": "", "setting": "", "tone": "", "characters_summary": "",
	}))
}
