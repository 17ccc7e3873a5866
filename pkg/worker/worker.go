package worker

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/taskflowhq/taskflow/internal/taskqueue"
	"github.com/taskflowhq/taskflow/pkg/api"
)

// dequeueBackoff spaces retries after the queue itself fails, so a broken
// backend (closed database handle, dropped connection) does not spin the
// loop hot.
const dequeueBackoff = 250 * time.Millisecond

// Runner is the engine surface a worker needs: running a previously created
// pending execution by id.
type Runner interface {
	api.RunnerDirect
}

// Worker pulls execution tasks from a Queue and runs them on an engine.
// Multiple workers may share one queue.
type Worker struct {
	runner Runner
	queue  taskqueue.Queue
}

// New creates a new Worker.
func New(runner Runner, queue taskqueue.Queue) *Worker {
	return &Worker{
		runner: runner,
		queue:  queue,
	}
}

// ProcessOne pulls a single task from the queue and runs it.
// Returns (processed, error):
//   - processed == false, err != nil: nothing processed (ctx cancelled or
//     dequeue failure)
//   - processed == true: a task was processed; err indicates whether the
//     execution itself succeeded at the engine level.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	task, err := w.queue.Dequeue(ctx)
	if err != nil {
		return false, err
	}
	if task == nil {
		return false, nil
	}

	_, runErr := w.runner.RunExecution(ctx, task.ExecutionID)
	return true, runErr
}

// Run processes tasks until the context is cancelled. Engine-level errors on
// individual executions do not stop the loop; the execution record carries
// the failure. Queue failures are logged and retried after a backoff.
func (w *Worker) Run(ctx context.Context) error {
	for {
		processed, err := w.ProcessOne(ctx)
		if err == nil {
			continue
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !processed {
			log.Printf("worker: dequeue failed: %v", err)
			select {
			case <-time.After(dequeueBackoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
