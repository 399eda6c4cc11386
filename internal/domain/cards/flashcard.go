package cards

import (
	"time"

	"github.com/google/uuid"
)

type CardType string

const (
	CardTypeWord   CardType = "WORD"
	CardTypePhrase CardType = "PHRASE"
)

// Flashcard is one generated study card. Hiragana is the natural key:
// two generations of the same text collapse to one row via the unique
// index, and AudioURL stays nil until the synthesis callback fills it.
type Flashcard struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Hiragana    string     `gorm:"column:hiragana;not null;uniqueIndex" json:"hiragana"`
	Meaning     string     `gorm:"column:meaning;not null" json:"meaning"`
	Type        CardType   `gorm:"column:type;not null" json:"type"`
	Complexity  int        `gorm:"column:complexity;not null;index" json:"complexity"`
	Explanation *string    `gorm:"column:explanation" json:"explanation,omitempty"`
	Reading     string     `gorm:"column:reading" json:"reading,omitempty"`
	AudioURL    *string    `gorm:"column:audio_url" json:"audio_url,omitempty"`
	CreatedAt   time.Time  `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (Flashcard) TableName() string { return "flashcard" }
