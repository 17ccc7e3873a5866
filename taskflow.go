package taskflow

import (
	"context"
	"database/sql"

	"github.com/taskflowhq/taskflow/internal/engine"
	"github.com/taskflowhq/taskflow/pkg/api"
)

// Re-export key types so users don't need to dig into pkg/api.

type (
	Engine               = api.Engine
	AsyncEngine          = api.AsyncEngine
	WorkflowGraph        = api.WorkflowGraph
	Node                 = api.Node
	Edge                 = api.Edge
	NodeType             = api.NodeType
	Branch               = api.Branch
	ExecutionReport      = api.ExecutionReport
	ExecutionListOptions = api.ExecutionListOptions
	NodeResult           = api.NodeResult
	NodeError            = api.NodeError
	Warning              = api.Warning
	Status               = api.Status
	NodeStatus           = api.NodeStatus
	Collaborators        = api.Collaborators
	AgentGateway         = api.AgentGateway
	HTTPClient           = api.HTTPClient
	HTTPRequest          = api.HTTPRequest
	HTTPResponse         = api.HTTPResponse
	Mailer               = api.Mailer
	DataStore            = api.DataStore
	NodeExecutor         = api.NodeExecutor
	ExecutorFunc         = api.ExecutorFunc
	Registry             = api.Registry
	LogEvent             = api.LogEvent
	Observer             = api.Observer
	LoggingObserver      = api.LoggingObserver
	BasicMetrics         = api.BasicMetrics
	BasicMetricsSnapshot = api.BasicMetricsSnapshot
	NoopObserver         = api.NoopObserver
	ValidationError      = api.ValidationError
	ConfigError          = api.ConfigError
	ExternalCallError    = api.ExternalCallError
)

// Re-export common helpers.

var (
	NewLoggingObserver   = api.NewLoggingObserver
	NewCompositeObserver = api.NewCompositeObserver
	ParseGraphJSON       = api.ParseGraphJSON
	ParseGraphYAML       = api.ParseGraphYAML
	IsValidationError    = api.IsValidationError
	IsConfigError        = api.IsConfigError
	IsExternalCallError  = api.IsExternalCallError
)

// Re-export node type and status values for convenience.

const (
	NodeTrigger     = api.NodeTrigger
	NodeAIAgent     = api.NodeAIAgent
	NodeHTTPRequest = api.NodeHTTPRequest
	NodeCondition   = api.NodeCondition
	NodeTransform   = api.NodeTransform
	NodeEmail       = api.NodeEmail
	NodeDatabase    = api.NodeDatabase
	NodeDelay       = api.NodeDelay

	BranchNone  = api.BranchNone
	BranchTrue  = api.BranchTrue
	BranchFalse = api.BranchFalse

	StatusPending   = api.StatusPending
	StatusRunning   = api.StatusRunning
	StatusCompleted = api.StatusCompleted
	StatusFailed    = api.StatusFailed

	RunErrorNodeID = api.RunErrorNodeID
)

// Engine constructors
// These wrap the internal/engine package so external callers
// never need to import internal packages.

// NewInMemoryEngine returns an Engine backed entirely by in-memory stores.
func NewInMemoryEngine(collab Collaborators) AsyncEngine {
	return engine.NewInMemoryEngine(collab)
}

// NewInMemoryEngineWithObserver returns an in-memory Engine with the given Observer.
func NewInMemoryEngineWithObserver(collab Collaborators, obs Observer) AsyncEngine {
	return engine.NewInMemoryEngineWithObserver(collab, obs)
}

// NewSQLiteEngine returns an Engine that persists executions and logs
// in a SQLite database. Workflow graphs are kept in-memory.
func NewSQLiteEngine(db *sql.DB, collab Collaborators) (AsyncEngine, error) {
	return engine.NewSQLiteEngine(db, collab)
}

// NewSQLiteEngineWithObserver returns a SQLite-backed Engine with the given Observer.
func NewSQLiteEngineWithObserver(db *sql.DB, collab Collaborators, obs Observer) (AsyncEngine, error) {
	return engine.NewSQLiteEngineWithObserver(db, collab, obs)
}

// NewDefaultRegistry returns the built-in node executor registry wired to
// the given collaborators. Hosts extend it with Register before passing it
// to an engine.
func NewDefaultRegistry(collab Collaborators) *Registry {
	return engine.NewDefaultRegistry(collab)
}

// Convenience helpers that just forward to the underlying Engine.

// Run runs a registered workflow graph synchronously.
func Run(ctx context.Context, eng Engine, name string, input map[string]any) (*ExecutionReport, error) {
	return eng.Run(ctx, name, input)
}

// RunGraph validates and runs an ad-hoc graph without registering it.
func RunGraph(ctx context.Context, eng Engine, g WorkflowGraph, input map[string]any) (*ExecutionReport, error) {
	return eng.RunGraph(ctx, g, input)
}

// GetExecution fetches an execution by ID.
func GetExecution(ctx context.Context, eng Engine, id string) (*ExecutionReport, error) {
	return eng.GetExecution(ctx, id)
}

// ListExecutions lists executions according to the given options.
func ListExecutions(ctx context.Context, eng Engine, opts ExecutionListOptions) ([]*ExecutionReport, error) {
	return eng.ListExecutions(ctx, opts)
}

// ListLogs returns the structured log events recorded for an execution.
func ListLogs(ctx context.Context, eng Engine, executionID string) ([]LogEvent, error) {
	return eng.ListLogs(ctx, executionID)
}
