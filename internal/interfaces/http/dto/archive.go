package dto

import (
	"time"

	"story-weaver-api/internal/domain/entity"
)

// ArchiveResponse 成稿归档
type ArchiveResponse struct {
	ID               string    `json:"id"`
	SessionID        string    `json:"session_id"`
	NarrationVoiceID string    `json:"narration_voice_id"`
	NarrationName    string    `json:"narration_name"`
	Genre            string    `json:"genre"`
	Setting          string    `json:"setting"`
	Tone             string    `json:"tone"`
	CharacterNames   []string  `json:"character_names"`
	Outline          string    `json:"outline"`
	Draft            string    `json:"draft"`
	Refined          string    `json:"refined"`
	CreatedAt        time.Time `json:"created_at"`
}

// ArchiveListResponse 成稿归档列表
type ArchiveListResponse struct {
	Archives []*ArchiveResponse `json:"archives"`
}

// ToArchiveResponse 实体转换为响应
func ToArchiveResponse(a *entity.StoryArchive) *ArchiveResponse {
	if a == nil {
		return nil
	}
	names := []string(a.CharacterNames)
	if names == nil {
		names = []string{}
	}
	return &ArchiveResponse{
		ID:               a.ID,
		SessionID:        a.SessionID,
		NarrationVoiceID: a.NarrationVoiceID,
		NarrationName:    a.NarrationName,
		Genre:            a.Genre,
		Setting:          a.Setting,
		Tone:             a.Tone,
		CharacterNames:   names,
		Outline:          a.Outline,
		Draft:            a.Draft,
		Refined:          a.Refined,
		CreatedAt:        a.CreatedAt,
	}
}
