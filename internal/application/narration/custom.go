package narration

import (
	"fmt"
	"strings"

	"story-weaver-api/internal/domain/entity"
	"story-weaver-api/pkg/utils"
)

// CustomVoiceID 由作者名生成风格 ID，例如 "Jane Austen" -> "custom_jane_austen"
func CustomVoiceID(authorName string) string {
	name := strings.ToLower(strings.TrimSpace(authorName))
	return CustomPrefix + strings.ReplaceAll(name, " ", "_")
}

// CustomDescriptor 为仿写作者构建风格描述
func CustomDescriptor(authorName, snippet string) (entity.StyleDescriptor, error) {
	authorName = strings.TrimSpace(authorName)
	return entity.NewStyleDescriptor(
		fmt.Sprintf("%s (Dynamically Emulated)", authorName),
		fmt.Sprintf("Emulating style of %s.", authorName),
		fmt.Sprintf("Works of %s & generated snippet.", authorName),
		&snippet,
	)
}

// 示例片段说明适用的生成目标
const (
	TargetSlide      = "next story slide"
	TargetDraft      = "full story draft"
	TargetRefinement = "story refinement"
)

const snippetInstructionRunes = 300

// SnippetInstruction 构建提示词中的风格参考段落
func SnippetInstruction(d entity.StyleDescriptor, target string) string {
	if !d.HasSnippet() {
		return fmt.Sprintf("\n(No specific example snippet provided for the %s; rely on tone and inspiration.)", target)
	}
	excerpt := utils.TruncateRunes(d.Snippet(), snippetInstructionRunes)
	return fmt.Sprintf("\nCRITICAL STYLE REFERENCE (Emulate this style for the %s):\n---\n%s...\n---", target, excerpt)
}
