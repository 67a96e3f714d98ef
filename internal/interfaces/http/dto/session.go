package dto

import (
	"story-weaver-api/internal/application/narration"
	"story-weaver-api/internal/application/story/session"
	"story-weaver-api/internal/domain/entity"
)

// MessageRequest 聊天消息请求
type MessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// DetailsRequest 故事设定请求，空串表示清除
type DetailsRequest struct {
	Genre   string `json:"genre"`
	Setting string `json:"setting"`
	Tone    string `json:"tone"`
}

// VoiceRequest 叙事声音切换请求，voice_option 为界面标签，voice_id 优先
type VoiceRequest struct {
	VoiceOption string `json:"voice_option"`
	VoiceID     string `json:"voice_id"`
}

// AuthorRequest 作者仿写请求
type AuthorRequest struct {
	AuthorName string `json:"author_name"`
}

// CharacterRequest 添加角色请求
type CharacterRequest struct {
	Name string `json:"name"`
	Role string `json:"role"`
}

// MessageResponse 会话消息
type MessageResponse struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// StyleResponse 当前叙事风格
type StyleResponse struct {
	NameDisplay string `json:"name_display"`
	Tone        string `json:"tone"`
	InspiredBy  string `json:"inspired_by,omitempty"`
	HasSnippet  bool   `json:"has_snippet"`
}

// CharacterResponse 角色档案
type CharacterResponse struct {
	Name             string   `json:"name"`
	Role             string   `json:"role"`
	Traits           []string `json:"traits"`
	Goal             string   `json:"goal"`
	InternalConflict string   `json:"internal_conflict"`
}

// SessionResponse 会话视图
type SessionResponse struct {
	ID                  string              `json:"id"`
	Messages            []MessageResponse   `json:"messages"`
	Genre               *string             `json:"genre"`
	Setting             *string             `json:"setting"`
	Tone                *string             `json:"tone"`
	NarrationVoiceID    string              `json:"narration_voice_id"`
	NarrationVoiceLabel string              `json:"narration_voice_label,omitempty"`
	NarrationStyle      StyleResponse       `json:"narration_style"`
	Characters          []CharacterResponse `json:"characters"`
	LastStorySlide      *string             `json:"last_story_slide,omitempty"`
}

// ActionResponse 会话操作结果
type ActionResponse struct {
	Success          bool             `json:"success"`
	Status           string           `json:"status,omitempty"`
	ClearAuthorInput bool             `json:"clear_author_input,omitempty"`
	ClearCharInputs  bool             `json:"clear_char_inputs,omitempty"`
	Session          *SessionResponse `json:"session"`
}

// VoiceOptionResponse 可选叙事声音
type VoiceOptionResponse struct {
	Label   string `json:"label"`
	VoiceID string `json:"voice_id"`
}

// NewSessionResponse 由会话状态构建视图，隐藏内部系统消息
func NewSessionResponse(id string, state *entity.StoryState) *SessionResponse {
	visible := session.VisibleMessages(state)
	msgs := make([]MessageResponse, 0, len(visible))
	for _, m := range visible {
		msgs = append(msgs, MessageResponse{Role: string(m.Role), Content: m.Content})
	}

	chars := make([]CharacterResponse, 0, len(state.Agents))
	for _, a := range state.Agents {
		chars = append(chars, CharacterResponse{
			Name:             a.Name,
			Role:             a.Role,
			Traits:           a.Traits,
			Goal:             a.Goal,
			InternalConflict: a.InternalConflict,
		})
	}

	style := state.Config.NarrationStyle
	label, _ := narration.LabelForVoiceID(state.NarrationVoiceID)

	return &SessionResponse{
		ID:                  id,
		Messages:            msgs,
		Genre:               state.Config.Genre,
		Setting:             state.Config.Setting,
		Tone:                state.Config.Tone,
		NarrationVoiceID:    state.NarrationVoiceID,
		NarrationVoiceLabel: label,
		NarrationStyle: StyleResponse{
			NameDisplay: style.NameDisplay,
			Tone:        style.Tone,
			InspiredBy:  style.InspiredBy,
			HasSnippet:  style.HasSnippet(),
		},
		Characters:     chars,
		LastStorySlide: state.LastStorySlideText,
	}
}

// NewActionResponse 由操作结果构建响应
func NewActionResponse(res *session.Result) *ActionResponse {
	flag := func(key string) bool {
		v, _ := res.State.UIInputs[key].(bool)
		return v
	}
	return &ActionResponse{
		Success:          res.Outcome.OK,
		Status:           res.Outcome.Status,
		ClearAuthorInput: flag(entity.UIInputClearAuthorInput),
		ClearCharInputs:  flag(entity.UIInputClearCharInputs),
		Session:          NewSessionResponse(res.SessionID, res.State),
	}
}

// NewVoiceOptionsResponse 列出可选叙事声音
func NewVoiceOptionsResponse() []VoiceOptionResponse {
	out := make([]VoiceOptionResponse, 0, len(narration.VoiceOptions))
	for _, opt := range narration.VoiceOptions {
		out = append(out, VoiceOptionResponse{Label: opt.Label, VoiceID: opt.VoiceID})
	}
	return out
}
