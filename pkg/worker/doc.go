// Package worker provides the background worker that drives asynchronously
// started workflow executions.
//
// Workers consume execution tasks from a task queue and run the referenced
// pending execution on an engine. They are lightweight and easy to embed in
// existing services, and multiple workers can safely share one queue to
// scale processing.
//
// Workers are decoupled from any particular persistence backend: the engine
// encapsulates execution state, and the queue delivers work. Most
// applications construct workers via helper functions in the taskflow
// package, which wire engines, queues, and observers together with sensible
// defaults.
package worker
