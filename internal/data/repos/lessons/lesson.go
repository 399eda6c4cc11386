package lessons

import (
	"errors"
	"time"

	"gorm.io/gorm"

	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type LessonRepo interface {
	Create(dbc dbctx.Context, lesson *types.Lesson) error
	GetByCode(dbc dbctx.Context, code string) (*types.Lesson, error)
}

type lessonRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return &lessonRepo{
		db:  db,
		log: baseLog.With("repo", "LessonRepo"),
	}
}

func (r *lessonRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *lessonRepo) Create(dbc dbctx.Context, lesson *types.Lesson) error {
	if lesson == nil {
		return nil
	}
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = time.Now().UTC()
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(lesson).Error
}

func (r *lessonRepo) GetByCode(dbc dbctx.Context, code string) (*types.Lesson, error) {
	if code == "" {
		return nil, nil
	}
	var lesson types.Lesson
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("code = ?", code).
		First(&lesson).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &lesson, nil
}
