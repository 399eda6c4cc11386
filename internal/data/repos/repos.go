package repos

import (
	"github.com/kotobalabs/kotoba-backend/internal/data/repos/cards"
	"github.com/kotobalabs/kotoba-backend/internal/data/repos/lessons"
)

type FlashcardRepo = cards.FlashcardRepo
type LessonRepo = lessons.LessonRepo

var NewFlashcardRepo = cards.NewFlashcardRepo
var NewLessonRepo = lessons.NewLessonRepo
