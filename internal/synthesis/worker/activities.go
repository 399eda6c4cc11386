package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

// Synthesizer renders text into encoded audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, input string, profile voice.Profile) ([]byte, error)
}

// Uploader stores the rendered artifact and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string, public bool) (string, error)
}

type Activities struct {
	Log    *logger.Logger
	TTS    Synthesizer
	Bucket Uploader
	RDB    *redis.Client
}

// Synthesize renders the job's input, uploads the artifact under
// <folder>/<filename>, and publishes a completion event on the job's
// return channel. Returns the artifact URL.
func (a *Activities) Synthesize(ctx context.Context, job synthesis.Job) (string, error) {
	if a == nil || a.TTS == nil || a.Bucket == nil {
		return "", fmt.Errorf("synthesize: activity not configured")
	}

	audio, err := a.TTS.Synthesize(ctx, job.Input, job.Voice)
	if err != nil {
		return "", fmt.Errorf("synthesize %s: %w", job.Key, err)
	}

	contentType := "audio/mp3"
	public := true
	if job.Upload != nil {
		if job.Upload.ContentType != "" {
			contentType = job.Upload.ContentType
		}
		public = job.Upload.Public
	}

	key := path.Join(job.Output.Folder, job.Output.Filename)
	url, err := a.Bucket.Upload(ctx, key, bytes.NewReader(audio), contentType, public)
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}

	event := synthesis.CompletionEvent{
		JobKey:     job.Key,
		CardID:     job.Routing.CardID,
		LessonCode: job.Routing.LessonCode,
		URL:        url,
	}
	if err := a.publish(ctx, job, event); err != nil {
		// The artifact exists; completion delivery failing is worth a
		// retry of the whole job (the upload is idempotent per key).
		return "", err
	}

	if a.Log != nil {
		a.Log.Info("Synthesis job completed", "job_key", job.Key, "key", key)
	}
	return url, nil
}

// ReportFailure publishes a terminal failure event for a job whose retry
// budget is exhausted. Called by the workflow after the last synthesis
// attempt; the job will not run again until something re-enqueues it.
func (a *Activities) ReportFailure(ctx context.Context, job synthesis.Job, reason string) error {
	if a.Log != nil {
		a.Log.Error("Synthesis job exhausted its retry budget",
			"job_key", job.Key,
			"card_id", job.Routing.CardID,
			"lesson_code", job.Routing.LessonCode,
			"error", reason)
	}
	return a.publish(ctx, job, synthesis.CompletionEvent{
		JobKey:     job.Key,
		CardID:     job.Routing.CardID,
		LessonCode: job.Routing.LessonCode,
		Failed:     true,
		Error:      reason,
	})
}

func (a *Activities) publish(ctx context.Context, job synthesis.Job, event synthesis.CompletionEvent) error {
	channel := strings.TrimSpace(job.Routing.ReturnChannel)
	if channel == "" || a.RDB == nil {
		return nil
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode completion event %s: %w", job.Key, err)
	}
	if err := a.RDB.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish completion %s: %w", job.Key, err)
	}
	return nil
}
