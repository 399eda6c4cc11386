package app

import (
	"fmt"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/reading"
	"github.com/kotobalabs/kotoba-backend/internal/services"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
	"github.com/kotobalabs/kotoba-backend/internal/temporalx"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

type Services struct {
	Dispatch services.DispatchService
	Card     services.CardService
	Lesson   services.LessonService
	Media    services.MediaService
}

func wireServices(log *logger.Logger, cfg Config, clients Clients, reposet Repos) (Services, error) {
	log.Info("Wiring services...")

	voices := voice.DefaultMap()
	if cfg.VoiceMapPath != "" {
		loaded, err := voice.Load(cfg.VoiceMapPath)
		if err != nil {
			return Services{}, fmt.Errorf("load voice map: %w", err)
		}
		voices = loaded
	}

	if clients.Temporal == nil {
		return Services{}, fmt.Errorf("synthesis queue requires TEMPORAL_ADDRESS")
	}
	queue, err := synthesis.NewTemporalQueue(log, clients.Temporal, temporalx.LoadConfig().TaskQueue)
	if err != nil {
		return Services{}, err
	}

	readings, err := reading.NewService(log)
	if err != nil {
		log.Warn("Reading service unavailable; cards will have empty readings", "error", err)
		readings = nil
	}

	dispatch := services.NewDispatchService(log, queue, voices)
	card := services.NewCardService(log, clients.OpenAI, reposet.Flashcard, readings, dispatch, cfg.SweepBatchSize)
	lesson := services.NewLessonService(log, clients.OpenAI, reposet.Lesson, dispatch, clients.Bucket)
	media := services.NewMediaService(log, clients.Bucket, cfg.PresignTTL)

	return Services{
		Dispatch: dispatch,
		Card:     card,
		Lesson:   lesson,
		Media:    media,
	}, nil
}
