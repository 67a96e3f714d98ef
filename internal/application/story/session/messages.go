package session

// 面向用户的提示文本
const (
	msgSlideKeyMissing   = "Cannot contact AI: API Key missing."
	msgAuthorKeyMissing  = "Cannot set style: API Key missing."
	msgCompileKeyMissing = "Cannot compile: API Key missing."

	fallbackUserInput = "Continue the story or await my specific instruction based on the history."

	specialFreshPlotFocus = "This is the first story segment with 'Bennet (Regency Romance)' style. Your primary task is to generate an opening scene that STRICTLY follows the 'Initial Scene Directive' provided. Ensure character profiles are integrated."

	statusNoDetailChanges = "No changes in story details."
	statusVoiceUnchanged  = "Narration voice unchanged."
	statusCharacterNeeded = "Character name needed."
	statusAuthorNeeded    = "Author name is empty."

	msgCompileStart   = "Initiating multi-agent story compilation..."
	msgOutlineDone    = "Plot Outline Generated.\nNow generating story draft..."
	msgDraftDone      = "Initial Story Draft Generated.\nNow refining the story..."
	msgRefinedMissing = "Pipeline finished, but refined story missing."
	msgCompileSuccess = "✨ Story compilation complete! Here's your polished story:\n\n"
)

// noCharactersForOutline 大纲阶段无角色时的占位说明
const noCharactersForOutline = "As defined by genre and style directives."

// genericStartInputs 新会话中视为“开始故事”的泛化输入
var genericStartInputs = map[string]struct{}{
	"let's begin.":     {},
	"start the story.": {},
	"ok.":              {},
	"next.":            {},
	"continue.":        {},
}

// 路由关键词
var compileKeywords = []string{"compile story", "full story", "write the story"}

const addCharacterKeyword = "add character:"
