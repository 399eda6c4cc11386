package cards

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/dbctx"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

type FlashcardRepo interface {
	Create(dbc dbctx.Context, card *types.Flashcard) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Flashcard, error)
	GetByHiragana(dbc dbctx.Context, hiragana string) (*types.Flashcard, error)
	RecentHiragana(dbc dbctx.Context, complexity int, limit int) ([]string, error)
	ListMissingAudio(dbc dbctx.Context, limit int, offset int) ([]*types.Flashcard, error)
	SetAudioURL(dbc dbctx.Context, id uuid.UUID, url string) error
	SetExplanation(dbc dbctx.Context, id uuid.UUID, explanation string) error
}

type flashcardRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFlashcardRepo(db *gorm.DB, baseLog *logger.Logger) FlashcardRepo {
	return &flashcardRepo{
		db:  db,
		log: baseLog.With("repo", "FlashcardRepo"),
	}
}

func (r *flashcardRepo) conn(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx
	}
	return r.db
}

func (r *flashcardRepo) Create(dbc dbctx.Context, card *types.Flashcard) error {
	if card == nil {
		return nil
	}
	now := time.Now().UTC()
	if card.CreatedAt.IsZero() {
		card.CreatedAt = now
	}
	if card.UpdatedAt.IsZero() {
		card.UpdatedAt = now
	}
	return r.conn(dbc).WithContext(dbc.Ctx).Create(card).Error
}

func (r *flashcardRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Flashcard, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var card types.Flashcard
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("id = ?", id).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *flashcardRepo) GetByHiragana(dbc dbctx.Context, hiragana string) (*types.Flashcard, error) {
	if hiragana == "" {
		return nil, nil
	}
	var card types.Flashcard
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("hiragana = ?", hiragana).
		First(&card).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &card, nil
}

func (r *flashcardRepo) RecentHiragana(dbc dbctx.Context, complexity int, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []string
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Flashcard{}).
		Where("complexity = ?", complexity).
		Order("created_at DESC").
		Limit(limit).
		Pluck("hiragana", &out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flashcardRepo) ListMissingAudio(dbc dbctx.Context, limit int, offset int) ([]*types.Flashcard, error) {
	if limit <= 0 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	var out []*types.Flashcard
	err := r.conn(dbc).WithContext(dbc.Ctx).
		Where("audio_url IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Offset(offset).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *flashcardRepo) SetAudioURL(dbc dbctx.Context, id uuid.UUID, url string) error {
	if id == uuid.Nil || url == "" {
		return nil
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Flashcard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"audio_url":  url,
			"updated_at": time.Now().UTC(),
		}).Error
}

func (r *flashcardRepo) SetExplanation(dbc dbctx.Context, id uuid.UUID, explanation string) error {
	if id == uuid.Nil {
		return nil
	}
	return r.conn(dbc).WithContext(dbc.Ctx).
		Model(&types.Flashcard{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"explanation": explanation,
			"updated_at":  time.Now().UTC(),
		}).Error
}
