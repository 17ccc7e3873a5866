package taskflow

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestInMemoryEngineWithObserverAndBasicMetrics verifies that:
//   - NewInMemoryEngineWithObserver is usable from the public API
//   - BasicMetrics sees expected run/node counts
//   - The builder and Run helpers work end-to-end without any external infra.
func TestInMemoryEngineWithObserverAndBasicMetrics(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	metrics := &BasicMetrics{}

	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	observer := NewCompositeObserver(
		NewLoggingObserver(logger),
		metrics,
	)

	engine := NewInMemoryEngineWithObserver(Collaborators{}, observer)

	g := New("inmemory-metrics-graph").
		Node("start", NodeTrigger, nil).
		Node("check", NodeCondition, map[string]any{
			"left": "{{input.n}}", "operator": ">", "right": 0,
		}).
		Node("hot", NodeTransform, map[string]any{"input": "{{input.n}}"}).
		Node("cold", NodeTransform, map[string]any{"input": "{{input.n}}"}).
		Edge("start", "check").
		BranchEdge("check", "hot", BranchTrue).
		BranchEdge("check", "cold", BranchFalse)

	require.NoError(t, g.Register(engine), "Register should succeed")

	rep, err := Run(ctx, engine, g.Name(), map[string]any{"n": 3})
	require.NoError(t, err, "Run should succeed")
	require.NotNil(t, rep, "report should not be nil")
	require.Equal(t, StatusCompleted, rep.Status, "run should complete successfully")

	snap := metrics.Snapshot()

	require.Equal(t, int64(1), snap.RunsStarted, "expected exactly 1 run started")
	require.Equal(t, int64(1), snap.RunsCompleted, "expected exactly 1 run completed")
	require.Equal(t, int64(0), snap.RunsFailed, "expected 0 run failures")
	require.Equal(t, int64(0), snap.ActiveRuns, "expected 0 active runs")
	require.Equal(t, int64(3), snap.NodesExecuted, "start, check and hot should execute")
	require.Equal(t, int64(1), snap.NodesSkipped, "the cold branch should be skipped")
}

func TestMetricsCountFailedRuns(t *testing.T) {
	t.Parallel()

	metrics := &BasicMetrics{}
	// No agent gateway, so the ai_agent node fails the run.
	engine := NewInMemoryEngineWithObserver(Collaborators{}, metrics)

	g := New("failing-graph").
		Node("ask", NodeAIAgent, map[string]any{"prompt": "hi"})

	rep, err := RunGraph(context.Background(), engine, g.Build(), nil)
	require.NoError(t, err, "node failures are reported, not returned")
	require.Equal(t, StatusFailed, rep.Status)

	snap := metrics.Snapshot()
	require.Equal(t, int64(1), snap.RunsFailed)
	require.Equal(t, int64(0), snap.ActiveRuns)
}
