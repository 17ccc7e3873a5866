package taskqueue

import (
	"context"
	"time"
)

// defaultBacklog bounds how many pending executions an in-memory queue holds
// before Enqueue blocks. Single-process setups rarely accumulate more than a
// handful of pending runs.
const defaultBacklog = 256

// InMemoryQueue holds pending executions in a buffered channel. Safe for
// concurrent use by one engine and any number of workers; the backlog is
// lost on process exit, durable setups use SQLiteQueue instead.
type InMemoryQueue struct {
	pending chan Task
}

var _ Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates a queue holding up to backlog pending executions.
// A non-positive backlog falls back to defaultBacklog.
func NewInMemoryQueue(backlog int) *InMemoryQueue {
	if backlog <= 0 {
		backlog = defaultBacklog
	}
	return &InMemoryQueue{pending: make(chan Task, backlog)}
}

// Enqueue schedules one pending execution, stamping EnqueuedAt when the
// caller left it zero. It blocks only when the backlog is full.
func (q *InMemoryQueue) Enqueue(ctx context.Context, t Task) error {
	if t.EnqueuedAt.IsZero() {
		t.EnqueuedAt = time.Now()
	}
	select {
	case q.pending <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue hands the oldest pending execution to a worker, blocking until one
// arrives or the context ends.
func (q *InMemoryQueue) Dequeue(ctx context.Context) (*Task, error) {
	select {
	case t := <-q.pending:
		return &t, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len reports the current backlog size.
func (q *InMemoryQueue) Len() int {
	return len(q.pending)
}
