package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// LogEvent is the structured record emitted for every NodeResult (and every
// resolution warning). Persistence or streaming of events is the host's
// concern; the engine only hands them to the Observer.
type LogEvent struct {
	ExecutionID string         `json:"execution_id"`
	NodeID      string         `json:"node_id"`
	NodeType    NodeType       `json:"node_type"`
	Level       string         `json:"level"`
	Message     string         `json:"message"`
	Data        map[string]any `json:"data,omitempty"`
	At          time.Time      `json:"at"`
}

// Observer receives callbacks from the workflow engine for logging and
// metrics.
//
// Implementations should be fast and non-blocking; heavy work should be done
// asynchronously so as not to delay workflow execution.
type Observer interface {
	// OnRunStart is called once when a run begins, before any node executes.
	OnRunStart(ctx context.Context, rep *ExecutionReport)

	// OnNodeStart is called before a node is dispatched to its executor.
	OnNodeStart(ctx context.Context, executionID string, node Node)

	// OnNodeCompleted is called after a NodeResult is recorded, for
	// successes, failures and branch skips alike.
	OnNodeCompleted(ctx context.Context, ev LogEvent, res NodeResult, duration time.Duration)

	// OnRunCompleted is called when a run reaches StatusCompleted.
	OnRunCompleted(ctx context.Context, rep *ExecutionReport)

	// OnRunFailed is called when a run halts with StatusFailed.
	OnRunFailed(ctx context.Context, rep *ExecutionReport)

	// OnWarning is called for non-fatal events, currently unresolved
	// variable paths.
	OnWarning(ctx context.Context, ev LogEvent)
}

// NoopObserver is an Observer that does nothing.
// It is used as the default when no observer is configured.
type NoopObserver struct{}

func (NoopObserver) OnRunStart(ctx context.Context, rep *ExecutionReport)           {}
func (NoopObserver) OnNodeStart(ctx context.Context, executionID string, node Node) {}
func (NoopObserver) OnNodeCompleted(ctx context.Context, ev LogEvent, res NodeResult, d time.Duration) {
}
func (NoopObserver) OnRunCompleted(ctx context.Context, rep *ExecutionReport) {}
func (NoopObserver) OnRunFailed(ctx context.Context, rep *ExecutionReport)    {}
func (NoopObserver) OnWarning(ctx context.Context, ev LogEvent)               {}

// CompositeObserver fans out events to multiple observers.
type CompositeObserver struct {
	observers []Observer
}

// NewCompositeObserver creates an Observer that forwards events to each
// non-nil observer in obs.
func NewCompositeObserver(obs ...Observer) Observer {
	filtered := make([]Observer, 0, len(obs))
	for _, o := range obs {
		if o != nil {
			filtered = append(filtered, o)
		}
	}
	if len(filtered) == 0 {
		return NoopObserver{}
	}
	if len(filtered) == 1 {
		return filtered[0]
	}
	return &CompositeObserver{observers: filtered}
}

func (c *CompositeObserver) OnRunStart(ctx context.Context, rep *ExecutionReport) {
	for _, o := range c.observers {
		o.OnRunStart(ctx, rep)
	}
}

func (c *CompositeObserver) OnNodeStart(ctx context.Context, executionID string, node Node) {
	for _, o := range c.observers {
		o.OnNodeStart(ctx, executionID, node)
	}
}

func (c *CompositeObserver) OnNodeCompleted(ctx context.Context, ev LogEvent, res NodeResult, d time.Duration) {
	for _, o := range c.observers {
		o.OnNodeCompleted(ctx, ev, res, d)
	}
}

func (c *CompositeObserver) OnRunCompleted(ctx context.Context, rep *ExecutionReport) {
	for _, o := range c.observers {
		o.OnRunCompleted(ctx, rep)
	}
}

func (c *CompositeObserver) OnRunFailed(ctx context.Context, rep *ExecutionReport) {
	for _, o := range c.observers {
		o.OnRunFailed(ctx, rep)
	}
}

func (c *CompositeObserver) OnWarning(ctx context.Context, ev LogEvent) {
	for _, o := range c.observers {
		o.OnWarning(ctx, ev)
	}
}

// LoggingObserver writes structured logs using log/slog.
type LoggingObserver struct {
	Logger *slog.Logger
}

// NewLoggingObserver creates an Observer that logs run / node lifecycle
// events using the provided slog.Logger. If logger is nil, slog.Default()
// is used.
func NewLoggingObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{Logger: logger}
}

func (o *LoggingObserver) OnRunStart(ctx context.Context, rep *ExecutionReport) {
	o.Logger.InfoContext(ctx, "run_start",
		slog.String("graph", rep.GraphName),
		slog.String("execution_id", rep.ID),
	)
}

func (o *LoggingObserver) OnNodeStart(ctx context.Context, executionID string, node Node) {
	o.Logger.DebugContext(ctx, "node_start",
		slog.String("execution_id", executionID),
		slog.String("node_id", node.ID),
		slog.String("node_type", string(node.Type)),
	)
}

func (o *LoggingObserver) OnNodeCompleted(ctx context.Context, ev LogEvent, res NodeResult, d time.Duration) {
	level := slog.LevelInfo
	if res.Status == NodeStatusError {
		level = slog.LevelError
	}
	o.Logger.Log(ctx, level, ev.Message,
		slog.String("execution_id", ev.ExecutionID),
		slog.String("node_id", ev.NodeID),
		slog.String("node_type", string(ev.NodeType)),
		slog.String("status", string(res.Status)),
		slog.Duration("duration", d),
	)
}

func (o *LoggingObserver) OnRunCompleted(ctx context.Context, rep *ExecutionReport) {
	o.Logger.InfoContext(ctx, "run_completed",
		slog.String("graph", rep.GraphName),
		slog.String("execution_id", rep.ID),
	)
}

func (o *LoggingObserver) OnRunFailed(ctx context.Context, rep *ExecutionReport) {
	o.Logger.ErrorContext(ctx, "run_failed",
		slog.String("graph", rep.GraphName),
		slog.String("execution_id", rep.ID),
		slog.Int("errors", len(rep.Errors)),
	)
}

func (o *LoggingObserver) OnWarning(ctx context.Context, ev LogEvent) {
	o.Logger.WarnContext(ctx, ev.Message,
		slog.String("execution_id", ev.ExecutionID),
		slog.String("node_id", ev.NodeID),
		slog.Any("data", ev.Data),
	)
}

// BasicMetrics collects simple counters and aggregate node durations.
// It implements Observer, and can be combined with LoggingObserver via
// NewCompositeObserver.
type BasicMetrics struct {
	NoopObserver

	runsStarted   atomic.Int64
	runsCompleted atomic.Int64
	runsFailed    atomic.Int64
	nodesExecuted atomic.Int64
	nodesSkipped  atomic.Int64
	totalNodeTime atomic.Int64 // nanoseconds
}

// BasicMetricsSnapshot is an immutable snapshot of BasicMetrics.
type BasicMetricsSnapshot struct {
	RunsStarted   int64
	RunsCompleted int64
	RunsFailed    int64
	ActiveRuns    int64

	NodesExecuted   int64
	NodesSkipped    int64
	AvgNodeDuration time.Duration
}

func (m *BasicMetrics) OnRunStart(ctx context.Context, rep *ExecutionReport) {
	m.runsStarted.Add(1)
}

func (m *BasicMetrics) OnRunCompleted(ctx context.Context, rep *ExecutionReport) {
	m.runsCompleted.Add(1)
}

func (m *BasicMetrics) OnRunFailed(ctx context.Context, rep *ExecutionReport) {
	m.runsFailed.Add(1)
}

func (m *BasicMetrics) OnNodeCompleted(ctx context.Context, ev LogEvent, res NodeResult, d time.Duration) {
	switch res.Status {
	case NodeStatusSkipped:
		m.nodesSkipped.Add(1)
	case NodeStatusSuccess:
		m.nodesExecuted.Add(1)
		m.totalNodeTime.Add(d.Nanoseconds())
	case NodeStatusError:
		m.nodesExecuted.Add(1)
	}
}

// Snapshot returns a snapshot of the current metrics.
func (m *BasicMetrics) Snapshot() BasicMetricsSnapshot {
	started := m.runsStarted.Load()
	completed := m.runsCompleted.Load()
	failed := m.runsFailed.Load()
	executed := m.nodesExecuted.Load()
	totalNs := m.totalNodeTime.Load()

	var avg time.Duration
	if executed > 0 {
		avg = time.Duration(totalNs / executed)
	}

	return BasicMetricsSnapshot{
		RunsStarted:     started,
		RunsCompleted:   completed,
		RunsFailed:      failed,
		ActiveRuns:      started - completed - failed,
		NodesExecuted:   executed,
		NodesSkipped:    m.nodesSkipped.Load(),
		AvgNodeDuration: avg,
	}
}
