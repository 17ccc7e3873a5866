// Package taskflow provides a lightweight, embeddable workflow execution
// engine for Go.
//
// Taskflow runs declarative workflow graphs: nodes describe units of work
// (HTTP calls, AI agent invocations, conditions, data transforms, emails,
// database operations, delays) and edges describe the order and branching
// between them. It is designed for backend services that need automation
// pipelines without heavy infrastructure. It runs fully in Go, supports
// in-memory and SQLite persistence, and integrates cleanly into existing
// codebases.
//
// # Core Concepts
//
// The programming model is intentionally small:
//
//  1. WorkflowGraph
//  2. Engine
//  3. Collaborators
//  4. Worker
//  5. LocalRunner
//
// # WorkflowGraph
//
// A WorkflowGraph is pure data: named nodes with typed configurations, and
// edges connecting them. Graphs can be assembled with the fluent
// GraphBuilder, or parsed from JSON or YAML documents produced by visual
// editors:
//
//	g := taskflow.New("enrich-lead").
//	    Node("start", taskflow.NodeTrigger, nil).
//	    Node("fetch", taskflow.NodeHTTPRequest, map[string]any{
//	        "url": "https://api.example.com/leads/{{start.id}}",
//	    }).
//	    Edge("start", "fetch").
//	    Build()
//
// Node configurations reference earlier outputs with {{node_id.path}}
// templates, resolved against the live execution state at dispatch time.
//
// # Engine
//
// The Engine validates and stores graphs, executes them, and records an
// ExecutionReport per run: node results in completion order, errors,
// warnings from unresolved template paths, skipped branches, and the final
// state. Execution is dependency-ordered with branch-aware skipping and
// fail-fast halting.
//
// Engines can be backed by in-memory stores (non-durable, best for tests)
// or SQLite (embedded durability for executions, logs, and queued tasks).
//
// # Collaborators
//
// All side effects flow through injected collaborator interfaces:
// AgentGateway, HTTPClient, Mailer, and DataStore. The collab packages
// supply reference adapters (OpenAI-compatible completions, resty HTTP,
// SMTP, database/sql, Redis); tests substitute fakes. Nodes whose
// collaborator is absent fail individually without taking the engine down.
//
// # Worker
//
// A Worker pulls queued executions and runs them on an engine. Workers run
// asynchronously and can be scaled horizontally; Engine.Start enqueues a
// pending execution and returns immediately with its id.
//
// # LocalRunner
//
// LocalRunner bundles an in-memory engine, queue, and worker into a single
// process-local helper useful for development and unit testing. It is
// intentionally not crash-durable; NewSQLiteBundle is the durable
// equivalent.
//
// For examples, see the /examples directory or the project README.
package taskflow
