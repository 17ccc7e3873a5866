package api

import (
	"context"
	"time"
)

// AgentGateway executes a prepared agent input and returns structured
// output. The engine does not know or care whether the other side is a
// language model, a rules engine, or a mock.
type AgentGateway interface {
	Execute(ctx context.Context, input map[string]any) (map[string]any, error)
}

// HTTPRequest is the resolved config an http_request node hands to the HTTP
// collaborator.
type HTTPRequest struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    any
	Timeout time.Duration
}

// HTTPResponse is the collaborator's answer.
type HTTPResponse struct {
	StatusCode int
	Headers    map[string]string
	Body       string
}

// HTTPClient performs HTTP calls on behalf of http_request nodes.
type HTTPClient interface {
	Request(ctx context.Context, req HTTPRequest) (*HTTPResponse, error)
}

// Mailer sends email on behalf of email nodes.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, body string) (sent bool, err error)
}

// DataStore executes data operations on behalf of database nodes. The
// operation vocabulary is store-specific; the engine passes it through
// untouched.
type DataStore interface {
	Execute(ctx context.Context, operation string, params map[string]any) (map[string]any, error)
}

// Collaborators bundles the injected external capabilities. Any field may
// be nil; a node whose collaborator is missing fails with a ConfigError
// result.
type Collaborators struct {
	Agent     AgentGateway
	HTTP      HTTPClient
	Mailer    Mailer
	DataStore DataStore
}
