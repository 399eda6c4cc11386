package synthesis

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
	"github.com/kotobalabs/kotoba-backend/internal/voice"
)

type fakeStarter struct {
	mu      sync.Mutex
	started map[string]int
	opts    []temporalsdkclient.StartWorkflowOptions
	failKey string
}

func newFakeStarter() *fakeStarter {
	return &fakeStarter{started: map[string]int{}}
}

func (f *fakeStarter) ExecuteWorkflow(ctx context.Context, options temporalsdkclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (temporalsdkclient.WorkflowRun, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if options.ID == f.failKey {
		return nil, fmt.Errorf("queue unavailable")
	}
	f.opts = append(f.opts, options)
	f.started[options.ID]++
	if f.started[options.ID] > 1 {
		return nil, serviceerror.NewWorkflowExecutionAlreadyStarted("already started", "", "")
	}
	return nil, nil
}

func testJob(key string) Job {
	return Job{
		Key:    key,
		Input:  "こんにちは",
		Voice:  voice.Profile{LanguageCode: "ja-JP", Model: "tts-1", Name: "nova", Format: "mp3"},
		Output: Target{Folder: "audio-cards/", Filename: key + ".mp3"},
		Retry:  DefaultRetryPolicy(),
	}
}

func TestEnqueueSetsIdempotentWorkflowID(t *testing.T) {
	starter := newFakeStarter()
	q := newTemporalQueue(logger.NewNop(), starter, "kotoba-tts")

	if err := q.Enqueue(context.Background(), testJob("card-tts-abc")); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if len(starter.opts) != 1 {
		t.Fatalf("expected 1 start, got %d", len(starter.opts))
	}
	opts := starter.opts[0]
	if opts.ID != "card-tts-abc" {
		t.Fatalf("workflow ID: %q", opts.ID)
	}
	if opts.TaskQueue != "kotoba-tts" {
		t.Fatalf("task queue: %q", opts.TaskQueue)
	}
	if opts.WorkflowIDReusePolicy != enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE {
		t.Fatalf("reuse policy: %v", opts.WorkflowIDReusePolicy)
	}
	if opts.RetryPolicy != nil {
		// The retry budget rides on the job payload and is applied to the
		// synthesis activity; a workflow-level policy would multiply it.
		t.Fatalf("unexpected workflow retry policy: %#v", opts.RetryPolicy)
	}
}

func TestEnqueueDuplicateKeyIsNotAnError(t *testing.T) {
	starter := newFakeStarter()
	q := newTemporalQueue(logger.NewNop(), starter, "kotoba-tts")

	job := testJob("card-tts-dup")
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("first Enqueue: %v", err)
	}
	if err := q.Enqueue(context.Background(), job); err != nil {
		t.Fatalf("second Enqueue should dedup silently: %v", err)
	}
	if len(starter.started) != 1 {
		t.Fatalf("expected 1 distinct workflow, got %d", len(starter.started))
	}
}

func TestEnqueueValidation(t *testing.T) {
	q := newTemporalQueue(logger.NewNop(), newFakeStarter(), "kotoba-tts")
	if err := q.Enqueue(context.Background(), Job{Input: "text"}); err == nil {
		t.Fatal("expected error for missing key")
	}
	if err := q.Enqueue(context.Background(), Job{Key: "k"}); err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestEnqueueBulkPartialFailure(t *testing.T) {
	starter := newFakeStarter()
	starter.failKey = "card-tts-2"
	q := newTemporalQueue(logger.NewNop(), starter, "kotoba-tts")

	jobs := []Job{testJob("card-tts-1"), testJob("card-tts-2"), testJob("card-tts-3")}
	queued, err := q.EnqueueBulk(context.Background(), jobs)
	if queued != 2 {
		t.Fatalf("expected 2 queued, got %d", queued)
	}
	if err == nil {
		t.Fatal("expected joined error for the failed job")
	}
	if _, ok := starter.started["card-tts-1"]; !ok {
		t.Fatal("card-tts-1 not submitted")
	}
	if _, ok := starter.started["card-tts-3"]; !ok {
		t.Fatal("card-tts-3 not submitted despite sibling failure")
	}
}

func TestEnqueueBulkEmpty(t *testing.T) {
	q := newTemporalQueue(logger.NewNop(), newFakeStarter(), "kotoba-tts")
	queued, err := q.EnqueueBulk(context.Background(), nil)
	if queued != 0 || err != nil {
		t.Fatalf("expected no-op, got queued=%d err=%v", queued, err)
	}
}
