package entity

import (
	"fmt"
	"strings"
)

// UIInputs 中约定的键
const (
	UIInputAPIKey           = "api_key"
	UIInputClearAuthorInput = "clear_author_input"
	UIInputClearCharInputs  = "clear_char_inputs"
)

// 初始会话消息
const (
	WelcomeSystemMessage    = "System Initialized. Welcome to the AI Story Weaver!"
	WelcomeAssistantMessage = "Hello! Let's co-create a story..."
)

// DefaultVoiceID 新会话的默认叙事声音
const DefaultVoiceID = "DEFAULT"

// Message 会话消息
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// StoryConfig 故事核心设定
// Genre/Setting/Tone 为 nil 表示未设置
type StoryConfig struct {
	Genre          *string         `json:"genre"`
	Setting        *string         `json:"setting"`
	Tone           *string         `json:"tone"`
	NarrationStyle StyleDescriptor `json:"narration_style"`
}

// StoryState 单个会话的完整状态，由会话编排器独占
type StoryState struct {
	Messages           []Message          `json:"messages"`
	Agents             []CharacterProfile `json:"agents"`
	Config             StoryConfig        `json:"story_config"`
	NarrationVoiceID   string             `json:"narration_voice_id"`
	LastStorySlideText *string            `json:"last_story_slide_text"`

	// UIInputs 请求级临时数据（凭证、一次性清空标记），不持久化
	UIInputs map[string]any `json:"-"`
}

// NewStoryState 创建初始会话状态
func NewStoryState(defaultStyle StyleDescriptor) *StoryState {
	return &StoryState{
		Messages: []Message{
			{Role: RoleSystem, Content: WelcomeSystemMessage},
			{Role: RoleAssistant, Content: WelcomeAssistantMessage},
		},
		Agents:           []CharacterProfile{},
		Config:           StoryConfig{NarrationStyle: defaultStyle},
		NarrationVoiceID: DefaultVoiceID,
		UIInputs:         map[string]any{},
	}
}

// Append 追加一条消息
func (s *StoryState) Append(role Role, content string) {
	s.Messages = append(s.Messages, Message{Role: role, Content: content})
}

// LastMessage 返回最后一条消息
func (s *StoryState) LastMessage() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// Validate 校验快照中的消息角色，读取持久化状态时调用
func (s *StoryState) Validate() error {
	for i, m := range s.Messages {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d has unknown role %q", i, m.Role)
		}
	}
	return nil
}

// SetLastSlide 记录最近一段被判定为故事正文的内容
func (s *StoryState) SetLastSlide(text string) {
	s.LastStorySlideText = &text
}

// ClearLastSlide 清除最近故事段落
func (s *StoryState) ClearLastSlide() {
	s.LastStorySlideText = nil
}

// HasLastSlide 是否存在可供重述的故事段落
func (s *StoryState) HasLastSlide() bool {
	return s.LastStorySlideText != nil && strings.TrimSpace(*s.LastStorySlideText) != ""
}

// APIKey 从请求级输入中读取凭证
func (s *StoryState) APIKey() string {
	if s.UIInputs == nil {
		return ""
	}
	key, _ := s.UIInputs[UIInputAPIKey].(string)
	return strings.TrimSpace(key)
}

// SetUIInput 写入请求级输入
func (s *StoryState) SetUIInput(key string, value any) {
	if s.UIInputs == nil {
		s.UIInputs = map[string]any{}
	}
	s.UIInputs[key] = value
}

// AddAgent 追加角色，按名称不去重
func (s *StoryState) AddAgent(p CharacterProfile) {
	s.Agents = append(s.Agents, p)
}

// AgentNames 返回全部角色名
func (s *StoryState) AgentNames() []string {
	names := make([]string, 0, len(s.Agents))
	for _, a := range s.Agents {
		names = append(names, a.Name)
	}
	return names
}

// StringOr 返回指针内容，nil 或空白时返回 fallback
func StringOr(p *string, fallback string) string {
	if p == nil || strings.TrimSpace(*p) == "" {
		return fallback
	}
	return *p
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}
