package synthesis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.temporal.io/api/enums/v1"
	"go.temporal.io/api/serviceerror"
	temporalsdkclient "go.temporal.io/sdk/client"
	"golang.org/x/sync/errgroup"

	"github.com/kotobalabs/kotoba-backend/internal/pkg/logger"
)

// Queue durably schedules synthesis jobs for the worker. Delivery is
// at-least-once; the Key dedup below makes execution at-most-once
// effective for a given logical target.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// EnqueueBulk submits every job, tolerating partial failure. It
	// returns how many jobs were accepted and the joined error for the
	// rest; callers decide whether a shortfall matters.
	EnqueueBulk(ctx context.Context, jobs []Job) (int, error)
}

// workflowStarter is the slice of the Temporal client the queue needs.
type workflowStarter interface {
	ExecuteWorkflow(ctx context.Context, options temporalsdkclient.StartWorkflowOptions, workflow interface{}, args ...interface{}) (temporalsdkclient.WorkflowRun, error)
}

type temporalQueue struct {
	log       *logger.Logger
	tc        workflowStarter
	taskQueue string
	bulkLimit int
}

func NewTemporalQueue(baseLog *logger.Logger, tc temporalsdkclient.Client, taskQueue string) (Queue, error) {
	if tc == nil {
		return nil, fmt.Errorf("temporal client is not configured")
	}
	return newTemporalQueue(baseLog, tc, taskQueue), nil
}

func newTemporalQueue(baseLog *logger.Logger, tc workflowStarter, taskQueue string) *temporalQueue {
	return &temporalQueue{
		log:       baseLog.With("service", "SynthesisQueue"),
		tc:        tc,
		taskQueue: strings.TrimSpace(taskQueue),
		bulkLimit: 8,
	}
}

func (q *temporalQueue) Enqueue(ctx context.Context, job Job) error {
	if strings.TrimSpace(job.Key) == "" {
		return fmt.Errorf("synthesis job missing key")
	}
	if strings.TrimSpace(job.Input) == "" {
		return fmt.Errorf("synthesis job %s missing input", job.Key)
	}
	if job.Retry.MaxAttempts <= 0 {
		job.Retry = DefaultRetryPolicy()
	}

	// The workflow ID is the job key: a second submission of the same
	// key is rejected by Temporal, which is exactly the dedup the
	// at-most-one-effective-execution contract needs. No workflow-level
	// RetryPolicy: the job's retry budget is applied to the synthesis
	// activity by the workflow, and a workflow retry would multiply it.
	opts := temporalsdkclient.StartWorkflowOptions{
		ID:                    job.Key,
		TaskQueue:             q.taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_REJECT_DUPLICATE,
	}

	_, err := q.tc.ExecuteWorkflow(ctx, opts, WorkflowName, job)
	if err != nil {
		var already *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &already) {
			q.log.Debug("Synthesis job already queued", "job_key", job.Key)
			return nil
		}
		return fmt.Errorf("enqueue synthesis job %s: %w", job.Key, err)
	}
	q.log.Debug("Synthesis job queued", "job_key", job.Key, "filename", job.Output.Filename)
	return nil
}

func (q *temporalQueue) EnqueueBulk(ctx context.Context, jobs []Job) (int, error) {
	if len(jobs) == 0 {
		return 0, nil
	}

	var (
		queued int64
		mu     sync.Mutex
		errs   []error
	)
	g := new(errgroup.Group)
	g.SetLimit(q.bulkLimit)
	for _, job := range jobs {
		job := job
		g.Go(func() error {
			if err := q.Enqueue(ctx, job); err != nil {
				q.log.Warn("Synthesis job submission failed", "job_key", job.Key, "error", err)
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil // siblings keep going; partial success is allowed
			}
			atomic.AddInt64(&queued, 1)
			return nil
		})
	}
	_ = g.Wait()
	return int(queued), errors.Join(errs...)
}
