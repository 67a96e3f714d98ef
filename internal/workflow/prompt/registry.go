// Package prompt 管理内嵌的提示词模板
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptStorySlideV1    PromptID = "story_slide_v1"
	PromptAuthorSnippetV1 PromptID = "author_snippet_v1"
	PromptPlotOutlineV1   PromptID = "plot_outline_v1"
	PromptStoryDraftV1    PromptID = "story_draft_v1"
	PromptStoryRefineV1   PromptID = "story_refine_v1"
)

var narrationVars = []string{
	"narration_name_display",
	"narration_tone",
	"narration_inspired_by",
}

// requiredVars 每个模板引用的全部变量
var requiredVars = map[PromptID][]string{
	PromptStorySlideV1: append([]string{
		"user_input",
		"narration_style_snippet_instruction_slide",
		"initial_scene_directive_slide",
		"current_plot_focus_or_user_goal",
		"last_story_slide_text",
		"characters_full_profiles",
		"genre", "setting", "tone",
		"chat_history",
	}, narrationVars...),
	PromptAuthorSnippetV1: {"author_name"},
	PromptPlotOutlineV1:   {"genre", "setting", "tone", "characters_summary"},
	PromptStoryDraftV1: append([]string{
		"initial_scene_directive",
		"genre", "setting", "tone",
		"narration_style_snippet_instruction",
		"characters_full_profiles",
		"plot_outline",
	}, narrationVars...),
	PromptStoryRefineV1: append([]string{
		"story_draft",
		"plot_outline",
		"initial_scene_directive",
		"genre", "setting", "tone",
		"narration_style_snippet_instruction",
		"characters_full_profiles",
	}, narrationVars...),
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]einoprompt.ChatTemplate
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]einoprompt.ChatTemplate),
	}
}

// RequiredVars 返回模板需要的变量名
func RequiredVars(id PromptID) []string {
	return append([]string(nil), requiredVars[id]...)
}

// CheckVars 校验变量是否齐全，缺失变量会导致模板渲染失败
func CheckVars(id PromptID, vars map[string]any) error {
	names, ok := requiredVars[id]
	if !ok {
		return fmt.Errorf("unknown prompt id: %s", id)
	}
	var missing []string
	for _, name := range names {
		if _, ok := vars[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("prompt %s missing variables: %s", id, strings.Join(missing, ", "))
	}
	return nil
}

func (r *Registry) ChatTemplate(id PromptID) (einoprompt.ChatTemplate, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if tpl, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return tpl, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if tpl, ok := r.cache[id]; ok {
		return tpl, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}
	user, err := readEmbeddedText(userPath)
	if err != nil {
		return nil, err
	}

	tpl := einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(system),
		schema.UserMessage(user),
	)
	r.cache[id] = tpl
	return tpl, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	if _, ok := requiredVars[id]; !ok {
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
	base := "templates/" + string(id)
	return base + ".system.txt", base + ".user.txt", nil
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
