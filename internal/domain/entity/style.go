package entity

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxSnippetRunes 风格示例片段的最大长度
const MaxSnippetRunes = 500

// StyleDescriptor 叙事风格描述，解析后在单次请求内不可变
type StyleDescriptor struct {
	NameDisplay       string  `json:"name_display"`
	Tone              string  `json:"tone"`
	InspiredBy        string  `json:"inspired_by"`
	SourceTextSnippet *string `json:"source_text_snippet,omitempty"`
}

// NewStyleDescriptor 创建并校验风格描述
// 片段超过 MaxSnippetRunes 时截断并追加省略号，空白片段视为无片段
func NewStyleDescriptor(nameDisplay, tone, inspiredBy string, snippet *string) (StyleDescriptor, error) {
	nameDisplay = strings.TrimSpace(nameDisplay)
	tone = strings.TrimSpace(tone)
	if nameDisplay == "" {
		return StyleDescriptor{}, fmt.Errorf("style name_display is required")
	}
	if tone == "" {
		return StyleDescriptor{}, fmt.Errorf("style tone is required for %q", nameDisplay)
	}

	d := StyleDescriptor{
		NameDisplay: nameDisplay,
		Tone:        tone,
		InspiredBy:  strings.TrimSpace(inspiredBy),
	}
	if snippet != nil {
		s := strings.TrimSpace(*snippet)
		if s != "" {
			s = capSnippet(s)
			d.SourceTextSnippet = &s
		}
	}
	return d, nil
}

// MustStyleDescriptor 用于静态注册表，校验失败直接 panic
func MustStyleDescriptor(nameDisplay, tone, inspiredBy string, snippet *string) StyleDescriptor {
	d, err := NewStyleDescriptor(nameDisplay, tone, inspiredBy, snippet)
	if err != nil {
		panic(err)
	}
	return d
}

// HasSnippet 是否带有示例片段
func (d StyleDescriptor) HasSnippet() bool {
	return d.SourceTextSnippet != nil && *d.SourceTextSnippet != ""
}

// Snippet 返回片段内容，无片段时为空串
func (d StyleDescriptor) Snippet() string {
	if d.SourceTextSnippet == nil {
		return ""
	}
	return *d.SourceTextSnippet
}

func capSnippet(s string) string {
	if utf8.RuneCountInString(s) <= MaxSnippetRunes {
		return s
	}
	runes := []rune(s)
	return string(runes[:MaxSnippetRunes]) + "..."
}
