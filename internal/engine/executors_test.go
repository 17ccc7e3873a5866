package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskflowhq/taskflow/pkg/api"
)

type fakeAgent struct {
	lastConfig map[string]any
	output     map[string]any
	err        error
}

func (f *fakeAgent) Execute(ctx context.Context, config map[string]any) (map[string]any, error) {
	f.lastConfig = config
	return f.output, f.err
}

type fakeHTTP struct {
	lastReq api.HTTPRequest
	resp    *api.HTTPResponse
	err     error
}

func (f *fakeHTTP) Request(ctx context.Context, req api.HTTPRequest) (*api.HTTPResponse, error) {
	f.lastReq = req
	return f.resp, f.err
}

type fakeMailer struct {
	lastTo      []string
	lastSubject string
	sent        bool
	err         error
}

func (f *fakeMailer) Send(ctx context.Context, to []string, subject, body string) (bool, error) {
	f.lastTo = to
	f.lastSubject = subject
	return f.sent, f.err
}

type fakeStore struct {
	lastOp     string
	lastParams map[string]any
	result     map[string]any
	err        error
}

func (f *fakeStore) Execute(ctx context.Context, operation string, params map[string]any) (map[string]any, error) {
	f.lastOp = operation
	f.lastParams = params
	return f.result, f.err
}

// dispatch runs one node through a default registry built from the given
// collaborators, against a fresh state seeded with input.
func dispatch(t *testing.T, collab api.Collaborators, node api.Node, input map[string]any) (map[string]any, error, *api.ExecutionState) {
	t.Helper()
	st := api.NewExecutionState(input)
	out, err := NewDefaultRegistry(collab).Dispatch(context.Background(), node, st)
	return out, err, st
}

func TestTriggerExecutorReturnsEmptyOutput(t *testing.T) {
	out, err, _ := dispatch(t, api.Collaborators{}, api.Node{
		ID: "start", Type: api.NodeTrigger, Config: map[string]any{},
	}, nil)
	if err != nil {
		t.Fatalf("trigger failed: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}

func TestAgentExecutorResolvesConfig(t *testing.T) {
	agent := &fakeAgent{output: map[string]any{"response": "ok"}}
	out, err, _ := dispatch(t, api.Collaborators{Agent: agent}, api.Node{
		ID:   "summarize",
		Type: api.NodeAIAgent,
		Config: map[string]any{
			"prompt": "{{input.text}}",
		},
	}, map[string]any{"text": "hello"})
	if err != nil {
		t.Fatalf("agent dispatch failed: %v", err)
	}
	if agent.lastConfig["prompt"] != "hello" {
		t.Fatalf("expected resolved prompt, got %v", agent.lastConfig)
	}
	if out["response"] != "ok" {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestAgentExecutorWithoutGateway(t *testing.T) {
	_, err, _ := dispatch(t, api.Collaborators{}, api.Node{
		ID: "a", Type: api.NodeAIAgent, Config: map[string]any{"prompt": "x"},
	}, nil)
	if !api.IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing gateway, got %v", err)
	}
}

func TestAgentExecutorWrapsGatewayError(t *testing.T) {
	agent := &fakeAgent{err: errors.New("model unavailable")}
	_, err, _ := dispatch(t, api.Collaborators{Agent: agent}, api.Node{
		ID: "a", Type: api.NodeAIAgent, Config: map[string]any{"prompt": "x"},
	}, nil)
	if !api.IsExternalCallError(err) {
		t.Fatalf("expected ExternalCallError, got %v", err)
	}
}

func TestHTTPExecutorBuildsRequest(t *testing.T) {
	client := &fakeHTTP{resp: &api.HTTPResponse{
		StatusCode: 201,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"id":9}`,
	}}
	out, err, _ := dispatch(t, api.Collaborators{HTTP: client}, api.Node{
		ID:   "create",
		Type: api.NodeHTTPRequest,
		Config: map[string]any{
			"url":     "https://api.example.com/items",
			"method":  "POST",
			"headers": map[string]any{"X-Token": "{{input.token}}"},
			"body":    map[string]any{"name": "thing"},
			"timeout": 5,
		},
	}, map[string]any{"token": "t-1"})
	if err != nil {
		t.Fatalf("http dispatch failed: %v", err)
	}

	if client.lastReq.Method != "POST" || client.lastReq.URL != "https://api.example.com/items" {
		t.Fatalf("unexpected request %+v", client.lastReq)
	}
	if client.lastReq.Headers["X-Token"] != "t-1" {
		t.Fatalf("header template not resolved: %v", client.lastReq.Headers)
	}
	if client.lastReq.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", client.lastReq.Timeout)
	}
	if out["status_code"] != 201 || out["body"] != `{"id":9}` {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestHTTPExecutorDefaults(t *testing.T) {
	client := &fakeHTTP{resp: &api.HTTPResponse{StatusCode: 200}}
	_, err, _ := dispatch(t, api.Collaborators{HTTP: client}, api.Node{
		ID: "get", Type: api.NodeHTTPRequest,
		Config: map[string]any{"url": "https://example.com"},
	}, nil)
	if err != nil {
		t.Fatalf("http dispatch failed: %v", err)
	}
	if client.lastReq.Method != "GET" {
		t.Fatalf("expected default method GET, got %q", client.lastReq.Method)
	}
	if client.lastReq.Timeout != 30*time.Second {
		t.Fatalf("expected default 30s timeout, got %v", client.lastReq.Timeout)
	}
}

func TestHTTPExecutorRequiresURL(t *testing.T) {
	_, err, _ := dispatch(t, api.Collaborators{HTTP: &fakeHTTP{}}, api.Node{
		ID: "get", Type: api.NodeHTTPRequest, Config: map[string]any{},
	}, nil)
	if !api.IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing url, got %v", err)
	}
}

func TestConditionExecutorOutput(t *testing.T) {
	out, err, _ := dispatch(t, api.Collaborators{}, api.Node{
		ID:   "check",
		Type: api.NodeCondition,
		Config: map[string]any{
			"left": "{{input.n}}", "operator": ">", "right": 10,
		},
	}, map[string]any{"n": 12})
	if err != nil {
		t.Fatalf("condition dispatch failed: %v", err)
	}
	if out["condition"] != true || out["left_value"] != 12 {
		t.Fatalf("unexpected output %v", out)
	}
}

func TestTransformExecutorAcceptsBareAndTemplatePaths(t *testing.T) {
	input := map[string]any{"items": []any{1, 2, 3}}
	for _, path := range []string{"input.items", "{{input.items}}"} {
		out, err, _ := dispatch(t, api.Collaborators{}, api.Node{
			ID:   "count",
			Type: api.NodeTransform,
			Config: map[string]any{
				"input": path,
				"steps": []any{map[string]any{"type": "aggregate", "operation": "count"}},
			},
		}, input)
		if err != nil {
			t.Fatalf("transform dispatch (%s) failed: %v", path, err)
		}
		if out["transformed_data"] != 3 {
			t.Fatalf("expected 3, got %v", out["transformed_data"])
		}
	}
}

func TestTransformExecutorTransformationsAlias(t *testing.T) {
	out, err, _ := dispatch(t, api.Collaborators{}, api.Node{
		ID:   "count",
		Type: api.NodeTransform,
		Config: map[string]any{
			"input":           "{{input.items}}",
			"transformations": []any{map[string]any{"type": "aggregate", "operation": "count"}},
		},
	}, map[string]any{"items": []any{"a"}})
	if err != nil {
		t.Fatalf("transform dispatch failed: %v", err)
	}
	if out["transformed_data"] != 1 {
		t.Fatalf("expected 1, got %v", out["transformed_data"])
	}
}

func TestEmailExecutorRecipientForms(t *testing.T) {
	mailer := &fakeMailer{sent: true}
	out, err, _ := dispatch(t, api.Collaborators{Mailer: mailer}, api.Node{
		ID:   "notify",
		Type: api.NodeEmail,
		Config: map[string]any{
			"to":      []any{"a@example.com", "b@example.com"},
			"subject": "hi",
			"body":    "text",
		},
	}, nil)
	if err != nil {
		t.Fatalf("email dispatch failed: %v", err)
	}
	if len(mailer.lastTo) != 2 {
		t.Fatalf("expected 2 recipients, got %v", mailer.lastTo)
	}
	if out["sent"] != true {
		t.Fatalf("unexpected output %v", out)
	}

	// Single-string form.
	_, err, _ = dispatch(t, api.Collaborators{Mailer: mailer}, api.Node{
		ID: "notify", Type: api.NodeEmail,
		Config: map[string]any{"to": "c@example.com", "subject": "hi", "body": "b"},
	}, nil)
	if err != nil {
		t.Fatalf("email dispatch failed: %v", err)
	}
	if len(mailer.lastTo) != 1 || mailer.lastTo[0] != "c@example.com" {
		t.Fatalf("unexpected recipients %v", mailer.lastTo)
	}
}

func TestEmailExecutorRequiresRecipient(t *testing.T) {
	_, err, _ := dispatch(t, api.Collaborators{Mailer: &fakeMailer{}}, api.Node{
		ID: "notify", Type: api.NodeEmail,
		Config: map[string]any{"subject": "hi"},
	}, nil)
	if !api.IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing recipient, got %v", err)
	}
}

func TestDatabaseExecutorPassesThroughResult(t *testing.T) {
	store := &fakeStore{result: map[string]any{"rows": []any{}, "count": 0}}
	out, err, _ := dispatch(t, api.Collaborators{DataStore: store}, api.Node{
		ID:   "load",
		Type: api.NodeDatabase,
		Config: map[string]any{
			"operation": "query",
			"params":    map[string]any{"sql": "SELECT 1"},
		},
	}, nil)
	if err != nil {
		t.Fatalf("database dispatch failed: %v", err)
	}
	if store.lastOp != "query" || out["count"] != 0 {
		t.Fatalf("unexpected op %q / output %v", store.lastOp, out)
	}
}

func TestDatabaseExecutorRequiresOperation(t *testing.T) {
	_, err, _ := dispatch(t, api.Collaborators{DataStore: &fakeStore{}}, api.Node{
		ID: "load", Type: api.NodeDatabase, Config: map[string]any{},
	}, nil)
	if !api.IsConfigError(err) {
		t.Fatalf("expected ConfigError for missing operation, got %v", err)
	}
}

func TestDelayExecutorZeroAndNegative(t *testing.T) {
	for _, d := range []any{0, -5, "junk"} {
		start := time.Now()
		out, err, _ := dispatch(t, api.Collaborators{}, api.Node{
			ID: "wait", Type: api.NodeDelay,
			Config: map[string]any{"duration": d, "unit": "seconds"},
		}, nil)
		if err != nil {
			t.Fatalf("delay dispatch failed: %v", err)
		}
		if time.Since(start) > 100*time.Millisecond {
			t.Fatalf("delay of %v should not block", d)
		}
		_ = out
	}
}

func TestDelayExecutorHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	st := api.NewExecutionState(nil)
	_, err := NewDefaultRegistry(api.Collaborators{}).Dispatch(ctx, api.Node{
		ID: "wait", Type: api.NodeDelay,
		Config: map[string]any{"duration": 30, "unit": "seconds"},
	}, st)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRegistryUnknownTypeAndPanicContainment(t *testing.T) {
	st := api.NewExecutionState(nil)
	reg := NewDefaultRegistry(api.Collaborators{})

	_, err := reg.Dispatch(context.Background(), api.Node{
		ID: "x", Type: "quantum", Config: map[string]any{},
	}, st)
	if !api.IsConfigError(err) {
		t.Fatalf("expected ConfigError for unknown type, got %v", err)
	}

	reg.Register("boom", api.ExecutorFunc(func(ctx context.Context, cfg map[string]any, st *api.ExecutionState) (map[string]any, error) {
		panic("kaboom")
	}))
	_, err = reg.Dispatch(context.Background(), api.Node{
		ID: "x", Type: "boom", Config: map[string]any{},
	}, st)
	if err == nil {
		t.Fatalf("expected panic to surface as error")
	}
}

func TestUnresolvedConfigWarnsAndBindsNil(t *testing.T) {
	agent := &fakeAgent{output: map[string]any{}}
	_, err, st := dispatch(t, api.Collaborators{Agent: agent}, api.Node{
		ID:   "summarize",
		Type: api.NodeAIAgent,
		Config: map[string]any{
			"prompt": "{{missing.value}}",
		},
	}, nil)
	if err != nil {
		t.Fatalf("dispatch failed: %v", err)
	}
	if agent.lastConfig["prompt"] != nil {
		t.Fatalf("expected nil binding, got %v", agent.lastConfig["prompt"])
	}
	if len(st.Warnings) != 1 || st.Warnings[0].NodeID != "summarize" {
		t.Fatalf("expected warning attributed to node, got %v", st.Warnings)
	}
}
