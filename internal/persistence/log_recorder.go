package persistence

import (
	"context"
	"time"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// LogRecorder is an Observer that appends node events and warnings to a
// LogStore, mirroring the per-node execution log the hosting service keeps.
// Store failures are dropped: logging must never fail a run.
type LogRecorder struct {
	api.NoopObserver

	store LogStore
}

// NewLogRecorder creates a LogRecorder writing to the given store.
func NewLogRecorder(store LogStore) *LogRecorder {
	return &LogRecorder{store: store}
}

func (r *LogRecorder) OnNodeCompleted(ctx context.Context, ev api.LogEvent, res api.NodeResult, d time.Duration) {
	_ = r.store.AppendLog(ctx, ev)
}

func (r *LogRecorder) OnWarning(ctx context.Context, ev api.LogEvent) {
	_ = r.store.AppendLog(ctx, ev)
}
