// Package worker executes synthesis jobs: TTS rendering, artifact upload,
// and completion publishing. It polls the task queue the dispatch side
// submits to.
package worker

import (
	"fmt"
	"strings"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/kotobalabs/kotoba-backend/internal/synthesis"
)

// Registered activity names.
const (
	ActivitySynthesize    = "synthesize_audio"
	ActivityReportFailure = "report_synthesis_failure"
)

// Workflow runs one synthesis job to completion. The job's retry budget
// is attached to the synthesis activity here; the workflow itself never
// retries, so the budget applies exactly once. After the budget is spent
// the job is reported as a terminal failure on its return channel, never
// retried indefinitely.
func Workflow(ctx workflow.Context, job synthesis.Job) error {
	if strings.TrimSpace(job.Key) == "" {
		job.Key = workflow.GetInfo(ctx).WorkflowExecution.ID
	}
	if strings.TrimSpace(job.Input) == "" {
		return fmt.Errorf("synthesis job %s has no input", job.Key)
	}
	if job.Retry.MaxAttempts <= 0 {
		job.Retry = synthesis.DefaultRetryPolicy()
	}

	synthCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 5 * time.Minute,
		HeartbeatTimeout:    time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    job.Retry.InitialInterval,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    job.Retry.MaxAttempts,
		},
	})

	var url string
	err := workflow.ExecuteActivity(synthCtx, ActivitySynthesize, job).Get(synthCtx, &url)
	if err == nil {
		return nil
	}

	// Budget exhausted. Surface the terminal failure to whoever is
	// listening on the return channel; the report itself gets a small
	// fixed budget so a transient publish failure does not mask the
	// original error.
	reportCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumAttempts:    3,
		},
	})
	_ = workflow.ExecuteActivity(reportCtx, ActivityReportFailure, job, err.Error()).Get(reportCtx, nil)
	return err
}
