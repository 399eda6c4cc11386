package lessons

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ScriptLine is one spoken line of a lesson. Sequence numbers are assigned
// after segmentation, strictly increasing from 1 with no gaps, and decide
// playback order.
type ScriptLine struct {
	Sequence     int    `json:"sequence"`
	Text         string `json:"text"`
	LanguageCode string `json:"languageCode"`
}

// Lesson is the persisted record of one generated lesson. Written once at
// generation time and never mutated; audio arrives asynchronously under
// the same code.
type Lesson struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Code      string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Subject   string         `gorm:"column:subject;not null" json:"subject"`
	Total     int            `gorm:"column:total;not null" json:"total"`
	Lines     datatypes.JSON `gorm:"column:lines;type:jsonb" json:"lines"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Lesson) TableName() string { return "lesson" }

// Manifest is the JSON artifact persisted as <code>.json alongside the
// lesson audio, and the synchronous return value of lesson generation.
type Manifest struct {
	Code    string       `json:"code"`
	Name    string       `json:"name"`
	Subject string       `json:"subject"`
	Lines   []ScriptLine `json:"lines"`
	Total   int          `json:"total"`
}
