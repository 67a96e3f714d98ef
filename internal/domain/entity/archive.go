package entity

import (
	"time"

	"github.com/lib/pq"
)

// StoryArchive 整本编译完成后的成稿归档
type StoryArchive struct {
	ID               string         `json:"id" gorm:"type:uuid;primaryKey"`
	SessionID        string         `json:"session_id" gorm:"type:varchar(64);index;not null"`
	NarrationVoiceID string         `json:"narration_voice_id" gorm:"type:varchar(128)"`
	NarrationName    string         `json:"narration_name" gorm:"type:varchar(255)"`
	Genre            string         `json:"genre" gorm:"type:varchar(255)"`
	Setting          string         `json:"setting" gorm:"type:text"`
	Tone             string         `json:"tone" gorm:"type:varchar(255)"`
	CharacterNames   pq.StringArray `json:"character_names" gorm:"type:text[]"`
	Outline          string         `json:"outline" gorm:"type:text"`
	Draft            string         `json:"draft" gorm:"type:text"`
	Refined          string         `json:"refined" gorm:"type:text"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (StoryArchive) TableName() string {
	return "story_archives"
}
