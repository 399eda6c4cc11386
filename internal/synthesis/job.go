// Package synthesis defines the durable TTS job model and the queue
// client that schedules jobs for the synthesis worker.
package synthesis

import (
	"time"

	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

// Return channels completion events are published on.
const (
	ChannelCardTTSCompleted   = "card_tts_completed"
	ChannelLessonTTSCompleted = "lesson_tts_completed"
)

// WorkflowName identifies the synthesis workflow on the task queue.
const WorkflowName = "synthesis_job"

// Target routes the produced audio artifact inside the bucket.
type Target struct {
	Folder   string `json:"folder"`
	Filename string `json:"filename"`
}

// UploadOptions override how the artifact is stored.
type UploadOptions struct {
	Basepath    string `json:"basepath"`
	ContentType string `json:"contentType"`
	Public      bool   `json:"public"`
}

// Routing correlates an asynchronous completion back to the entity that
// requested synthesis.
type Routing struct {
	ReturnChannel string `json:"returnChannel"`
	CardID        string `json:"cardId,omitempty"`
	LessonCode    string `json:"lessonCode,omitempty"`
}

// RetryPolicy bounds how many times a failing job is attempted before it
// is reported as permanently failed.
type RetryPolicy struct {
	MaxAttempts     int32         `json:"maxAttempts"`
	InitialInterval time.Duration `json:"initialInterval"`
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 10, InitialInterval: time.Second}
}

// Job is one synthesis request. Key is the idempotency key: submitting
// the same Key twice yields at most one effective execution.
type Job struct {
	Key     string         `json:"key"`
	Input   string         `json:"input"`
	Voice   voice.Profile  `json:"voice"`
	Output  Target         `json:"output"`
	Upload  *UploadOptions `json:"upload,omitempty"`
	Routing Routing        `json:"routing"`
	Retry   RetryPolicy    `json:"retry"`
}

// CompletionEvent is the payload published on a job's return channel. On
// success URL points at the audio artifact; when the job's retry budget is
// exhausted Failed is set and Error carries the last failure.
type CompletionEvent struct {
	JobKey     string `json:"jobKey"`
	CardID     string `json:"cardId,omitempty"`
	LessonCode string `json:"lessonCode,omitempty"`
	URL        string `json:"url,omitempty"`
	Failed     bool   `json:"failed,omitempty"`
	Error      string `json:"error,omitempty"`
}
