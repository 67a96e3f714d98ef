package narration

import (
	"strings"

	"story-weaver-api/internal/domain/entity"
)

// 固定的叙事声音 ID
const (
	VoiceDefault       = entity.DefaultVoiceID
	VoiceGeet          = "GEET"
	VoiceBennetRegency = "BENNET_REGENCY"
	VoiceAnjaliStatic  = "ANJALI_STATIC"
)

// CustomPrefix 由作者名动态生成的风格 ID 前缀
const CustomPrefix = "custom_"

// VoiceOption 界面可选的叙事声音
type VoiceOption struct {
	Label   string `json:"label"`
	VoiceID string `json:"voice_id"`
}

// VoiceOptions 按展示顺序排列的可选声音
var VoiceOptions = []VoiceOption{
	{Label: "Default (AI's choice)", VoiceID: VoiceDefault},
	{Label: "Geet (Spunky Bollywood Queen)", VoiceID: VoiceGeet},
	{Label: "Bennet (Regency Romance)", VoiceID: VoiceBennetRegency},
	{Label: "Anjali (Romantic, Witty - Static)", VoiceID: VoiceAnjaliStatic},
}

// VoiceIDForLabel 将界面标签映射为声音 ID
func VoiceIDForLabel(label string) (string, bool) {
	label = strings.TrimSpace(label)
	for _, opt := range VoiceOptions {
		if opt.Label == label {
			return opt.VoiceID, true
		}
	}
	return "", false
}

// LabelForVoiceID 将声音 ID 映射为界面标签
func LabelForVoiceID(id string) (string, bool) {
	for _, opt := range VoiceOptions {
		if opt.VoiceID == id {
			return opt.Label, true
		}
	}
	return "", false
}

// IsCustomVoice 是否为作者仿写生成的风格
func IsCustomVoice(id string) bool {
	return strings.HasPrefix(id, CustomPrefix)
}

var anjaliSnippet = "Example: 'Oh, the drama! He looked at her, she looked at him, and the pigeons probably cooed a romantic Bollywood number right on cue.'"

// staticRegistry 远程风格库不可用时的内置风格
var staticRegistry = map[string]entity.StyleDescriptor{
	VoiceDefault: entity.MustStyleDescriptor(
		"Default AI",
		"A neutral, clear, and engaging storytelling voice that adapts to the overall story tone.",
		"General good storytelling practices, clarity, and flow.",
		nil,
	),
	VoiceAnjaliStatic: entity.MustStyleDescriptor(
		"Anjali (Static)",
		"Romantic, fluffy, witty, full of charm and light-hearted banter.",
		"Anuja Chauhan, modern Indian rom-com authors.",
		&anjaliSnippet,
	),
}

// StaticDescriptor 从内置注册表查找风格
func StaticDescriptor(id string) (entity.StyleDescriptor, bool) {
	d, ok := staticRegistry[id]
	return d, ok
}

// DefaultDescriptor 默认风格
func DefaultDescriptor() entity.StyleDescriptor {
	return staticRegistry[VoiceDefault]
}
