package taskflow

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/taskflowhq/taskflow/internal/engine"
	"github.com/taskflowhq/taskflow/internal/taskqueue"
	"github.com/taskflowhq/taskflow/pkg/worker"
)

// LocalRunner bundles an in-memory Engine, an in-memory task queue, and a
// Worker to provide a simple "local runner" for development and debugging.
//
// Typical usage:
//
//	runner := taskflow.NewLocalRunner(collab)
//	g := taskflow.New("my-flow").Node(...).Edge(...)
//	g.MustRegister(runner.Engine)
//
//	// Synchronous run (no queue/worker involved):
//	rep, err := taskflow.Run(ctx, runner.Engine, g.Name(), input)
//
//	// Asynchronous run:
//	_ = runner.StartWorkers(ctx, 2)
//	pending, _ := runner.Engine.Start(ctx, g.Name(), input)
//	...
//	runner.Stop()
type LocalRunner struct {
	// Engine is the in-memory workflow engine used by this runner.
	Engine AsyncEngine

	// Worker processes queued executions on Engine.
	Worker *worker.Worker

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewLocalRunner constructs a LocalRunner backed by an in-memory engine and
// queue. Intended for local development, tests, and simple single-process
// deployments.
func NewLocalRunner(collab Collaborators) *LocalRunner {
	return NewLocalRunnerWithObserver(collab, nil)
}

// NewLocalRunnerWithObserver is NewLocalRunner with an Observer attached to
// the engine.
func NewLocalRunnerWithObserver(collab Collaborators, obs Observer) *LocalRunner {
	q := taskqueue.NewInMemoryQueue(1024)
	eng := engine.NewEngineWithConfig(engine.Config{
		Collaborators: collab,
		Observer:      obs,
		Queue:         q,
	})

	return &LocalRunner{
		Engine: eng,
		Worker: worker.New(eng, q),
	}
}

// StartWorkers starts 'concurrency' worker goroutines that continuously call
// Worker.ProcessOne(ctx) until the context is cancelled via Stop.
//
// If StartWorkers is called more than once without Stop, it returns an error.
func (r *LocalRunner) StartWorkers(ctx context.Context, concurrency int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.New("taskflow: LocalRunner already started")
	}

	if concurrency <= 0 {
		concurrency = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.running = true

	r.wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func() {
			defer r.wg.Done()

			for {
				processed, err := r.Worker.ProcessOne(ctx)
				if err != nil {
					// Cancellation is a clean shutdown signal.
					if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
						return
					}
					// Log and keep going so a single bad task doesn't kill
					// the worker loop.
					log.Printf("taskflow: local runner worker error: %v", err)
					continue
				}
				if !processed {
					continue
				}
			}
		}()
	}

	return nil
}

// Stop cancels all worker goroutines started by StartWorkers and waits
// for them to exit.
func (r *LocalRunner) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	cancel := r.cancel
	r.running = false
	r.cancel = nil
	r.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}
