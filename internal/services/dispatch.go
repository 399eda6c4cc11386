package services

import (
	"context"
	"fmt"

	types "github.com/kotobalabs/kotoba-backend/internal/domain"
	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

// Bucket folders audio artifacts land in.
const (
	CardAudioFolder   = "audio-cards"
	LessonAudioFolder = "lesson-audios"
)

// DispatchService translates domain entities into synthesis jobs. It owns
// the job key and filename conventions so every producer derives the same
// key for the same logical target.
type DispatchService interface {
	DispatchCard(ctx context.Context, card *types.Flashcard) error
	// DispatchCards submits a job per card and reports how many were
	// accepted. Individual failures do not abort the batch.
	DispatchCards(ctx context.Context, cards []*types.Flashcard) (int, error)
	DispatchLessonLine(ctx context.Context, code string, line types.ScriptLine) error
}

// CardJobKey is the idempotency key for a card's audio.
func CardJobKey(cardID string) string {
	return "card-tts-" + cardID
}

// LessonJobKey is the idempotency key for one lesson line's audio.
func LessonJobKey(code string, sequence int) string {
	return fmt.Sprintf("lesson-tts-%s-%03d", code, sequence)
}

type dispatchService struct {
	log    *logger.Logger
	queue  synthesis.Queue
	voices voice.Map
}

func NewDispatchService(baseLog *logger.Logger, queue synthesis.Queue, voices voice.Map) DispatchService {
	return &dispatchService{
		log:    baseLog.With("service", "DispatchService"),
		queue:  queue,
		voices: voices,
	}
}

func (s *dispatchService) cardJob(card *types.Flashcard) (synthesis.Job, error) {
	profile, err := s.voices.Lookup("ja-JP")
	if err != nil {
		return synthesis.Job{}, err
	}
	id := card.ID.String()
	return synthesis.Job{
		Key:   CardJobKey(id),
		Input: card.Hiragana,
		Voice: profile,
		Output: synthesis.Target{
			Folder:   CardAudioFolder,
			Filename: id + ".mp3",
		},
		Upload: &synthesis.UploadOptions{
			Basepath:    CardAudioFolder,
			ContentType: "audio/mp3",
			Public:      true,
		},
		Routing: synthesis.Routing{
			ReturnChannel: synthesis.ChannelCardTTSCompleted,
			CardID:        id,
		},
		Retry: synthesis.DefaultRetryPolicy(),
	}, nil
}

func (s *dispatchService) DispatchCard(ctx context.Context, card *types.Flashcard) error {
	job, err := s.cardJob(card)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, job)
}

func (s *dispatchService) DispatchCards(ctx context.Context, cards []*types.Flashcard) (int, error) {
	jobs := make([]synthesis.Job, 0, len(cards))
	for _, card := range cards {
		job, err := s.cardJob(card)
		if err != nil {
			return 0, err
		}
		jobs = append(jobs, job)
	}
	return s.queue.EnqueueBulk(ctx, jobs)
}

func (s *dispatchService) DispatchLessonLine(ctx context.Context, code string, line types.ScriptLine) error {
	profile, err := s.voices.Lookup(line.LanguageCode)
	if err != nil {
		return err
	}
	return s.queue.Enqueue(ctx, synthesis.Job{
		Key:   LessonJobKey(code, line.Sequence),
		Input: line.Text,
		Voice: profile,
		Output: synthesis.Target{
			Folder:   LessonAudioFolder + "/" + code,
			Filename: fmt.Sprintf("%s-%03d.mp3", code, line.Sequence),
		},
		Upload: &synthesis.UploadOptions{
			Basepath:    LessonAudioFolder,
			ContentType: "audio/mp3",
			Public:      true,
		},
		Routing: synthesis.Routing{
			ReturnChannel: synthesis.ChannelLessonTTSCompleted,
			LessonCode:    code,
		},
		Retry: synthesis.DefaultRetryPolicy(),
	})
}
