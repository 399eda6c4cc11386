package app

import (
	"gorm.io/gorm"

	"github.com/kotobalabs/kotoba-backend/internal/data/repos"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type Repos struct {
	Flashcard repos.FlashcardRepo
	Lesson    repos.LessonRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Flashcard: repos.NewFlashcardRepo(db, log),
		Lesson:    repos.NewLessonRepo(db, log),
	}
}
