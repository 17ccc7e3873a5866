package taskflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func waitForTerminal(t *testing.T, eng Engine, id string) *ExecutionReport {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		rep, err := eng.GetExecution(context.Background(), id)
		require.NoError(t, err)
		if rep.Status == StatusCompleted || rep.Status == StatusFailed {
			return rep
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("execution %s did not finish in time", id)
	return nil
}

func TestLocalRunnerExecutesAsynchronously(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	runner := NewLocalRunner(Collaborators{})

	g := New("async-flow").
		Node("start", NodeTrigger, nil).
		Node("count", NodeTransform, map[string]any{
			"input": "{{input.items}}",
			"steps": []any{map[string]any{"type": "aggregate", "operation": "count"}},
		}).
		Edge("start", "count")

	require.NoError(t, g.Register(runner.Engine))
	require.NoError(t, runner.StartWorkers(ctx, 2))
	defer runner.Stop()

	pending, err := runner.Engine.Start(ctx, g.Name(), map[string]any{
		"items": []any{"a", "b", "c", "d"},
	})
	require.NoError(t, err)
	require.Equal(t, StatusPending, pending.Status)

	rep := waitForTerminal(t, runner.Engine, pending.ID)
	require.Equal(t, StatusCompleted, rep.Status)
	require.Equal(t, 4, rep.FinalState["count"]["transformed_data"])
}

func TestLocalRunnerStartWorkersTwiceFails(t *testing.T) {
	t.Parallel()

	runner := NewLocalRunner(Collaborators{})
	require.NoError(t, runner.StartWorkers(context.Background(), 1))
	defer runner.Stop()

	require.Error(t, runner.StartWorkers(context.Background(), 1))
}

func TestLocalRunnerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	runner := NewLocalRunner(Collaborators{})
	require.NoError(t, runner.StartWorkers(context.Background(), 1))

	runner.Stop()
	runner.Stop()
}
