package domain

import (
	"github.com/kotobalabs/kotoba-backend/internal/domain/cards"
	"github.com/kotobalabs/kotoba-backend/internal/domain/lessons"
)

type Flashcard = cards.Flashcard
type CardType = cards.CardType

const (
	CardTypeWord   = cards.CardTypeWord
	CardTypePhrase = cards.CardTypePhrase
)

type Lesson = lessons.Lesson
type ScriptLine = lessons.ScriptLine
type LessonManifest = lessons.Manifest

func AllModels() []any {
	return []any{
		&Flashcard{},
		&Lesson{},
	}
}
