package engine

import (
	"context"
	"time"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// NewDefaultRegistry builds a registry with the built-in executors wired to
// the given collaborators.
func NewDefaultRegistry(collab api.Collaborators) *api.Registry {
	r := api.NewRegistry()
	r.Register(api.NodeTrigger, api.ExecutorFunc(executeTrigger))
	r.Register(api.NodeAIAgent, agentExecutor(collab.Agent))
	r.Register(api.NodeHTTPRequest, httpExecutor(collab.HTTP))
	r.Register(api.NodeCondition, api.ExecutorFunc(executeCondition))
	r.Register(api.NodeTransform, api.ExecutorFunc(executeTransform))
	r.Register(api.NodeEmail, emailExecutor(collab.Mailer))
	r.Register(api.NodeDatabase, databaseExecutor(collab.DataStore))
	r.Register(api.NodeDelay, api.ExecutorFunc(executeDelay))
	return r
}

// resolverFor builds the per-dispatch resolver, attributing warnings to the
// node currently being executed.
func resolverFor(ctx context.Context, state *api.ExecutionState) *resolver {
	nodeID := ""
	if node, ok := api.CurrentNode(ctx); ok {
		nodeID = node.ID
	}
	return newResolver(state, nodeID)
}

// Trigger nodes mark entry points; they carry no behavior of their own.
func executeTrigger(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
	return map[string]any{}, nil
}

func agentExecutor(gateway api.AgentGateway) api.NodeExecutor {
	return api.ExecutorFunc(func(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
		if gateway == nil {
			return nil, api.NewConfigError("no agent gateway configured")
		}
		input := resolverFor(ctx, state).ResolveConfig(cfg)
		output, err := gateway.Execute(ctx, input)
		if err != nil {
			return nil, api.NewExternalCallError("agent", err)
		}
		return output, nil
	})
}

func httpExecutor(client api.HTTPClient) api.NodeExecutor {
	return api.ExecutorFunc(func(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
		if client == nil {
			return nil, api.NewConfigError("no http client configured")
		}
		resolved := resolverFor(ctx, state).ResolveConfig(cfg)

		url := stringify(resolved["url"])
		if url == "" {
			return nil, api.NewConfigError("url is required for http_request")
		}

		method := stringify(resolved["method"])
		if method == "" {
			method = "GET"
		}

		headers := make(map[string]string)
		if h, ok := resolved["headers"].(map[string]any); ok {
			for k, v := range h {
				headers[k] = stringify(v)
			}
		}

		timeout := 30 * time.Second
		if t, ok := toFloat(resolved["timeout"]); ok && t > 0 {
			timeout = time.Duration(t * float64(time.Second))
		}

		resp, err := client.Request(ctx, api.HTTPRequest{
			Method:  method,
			URL:     url,
			Headers: headers,
			Body:    resolved["body"],
			Timeout: timeout,
		})
		if err != nil {
			return nil, api.NewExternalCallError("http", err)
		}

		respHeaders := make(map[string]any, len(resp.Headers))
		for k, v := range resp.Headers {
			respHeaders[k] = v
		}
		return map[string]any{
			"status_code": resp.StatusCode,
			"headers":     respHeaders,
			"body":        resp.Body,
		}, nil
	})
}

// executeCondition evaluates the predicate and exposes the outcome. The
// boolean also drives branch selection downstream; the scheduler reads it
// back from the recorded output.
func executeCondition(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
	result, left, right, err := evaluateCondition(cfg, resolverFor(ctx, state))
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"condition":   result,
		"left_value":  left,
		"right_value": right,
	}, nil
}

func executeTransform(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
	r := resolverFor(ctx, state)

	var data any
	if path, ok := cfg["input"].(string); ok && path != "" {
		data = r.Resolve(pathOrTemplate(path))
	} else {
		data = r.ResolveValue(cfg["input"])
	}

	steps, ok := cfg["steps"].([]any)
	if !ok {
		// The original service called them "transformations".
		steps, _ = cfg["transformations"].([]any)
	}

	out, err := applyTransforms(data, steps)
	if err != nil {
		return nil, err
	}
	return map[string]any{"transformed_data": out}, nil
}

func emailExecutor(mailer api.Mailer) api.NodeExecutor {
	return api.ExecutorFunc(func(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
		if mailer == nil {
			return nil, api.NewConfigError("no mailer configured")
		}
		resolved := resolverFor(ctx, state).ResolveConfig(cfg)

		var to []string
		switch t := resolved["to"].(type) {
		case string:
			if t != "" {
				to = []string{t}
			}
		case []any:
			for _, v := range t {
				to = append(to, stringify(v))
			}
		}
		if len(to) == 0 {
			return nil, api.NewConfigError("email requires at least one recipient")
		}

		subject := stringify(resolved["subject"])
		body := stringify(resolved["body"])

		sent, err := mailer.Send(ctx, to, subject, body)
		if err != nil {
			return nil, api.NewExternalCallError("mailer", err)
		}
		return map[string]any{
			"sent":    sent,
			"to":      resolved["to"],
			"subject": subject,
		}, nil
	})
}

func databaseExecutor(store api.DataStore) api.NodeExecutor {
	return api.ExecutorFunc(func(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
		if store == nil {
			return nil, api.NewConfigError("no datastore configured")
		}
		resolved := resolverFor(ctx, state).ResolveConfig(cfg)

		operation := stringify(resolved["operation"])
		if operation == "" {
			return nil, api.NewConfigError("operation is required for database node")
		}

		params, _ := resolved["params"].(map[string]any)
		result, err := store.Execute(ctx, operation, params)
		if err != nil {
			return nil, api.NewExternalCallError("datastore", err)
		}
		return result, nil
	})
}

var delayUnits = map[string]float64{
	"seconds": 1,
	"minutes": 60,
	"hours":   3600,
}

// executeDelay suspends the current run for duration * unit. Only this run
// is parked; concurrent runs keep going. Cancelling the context aborts the
// wait.
func executeDelay(ctx context.Context, cfg map[string]any, state *api.ExecutionState) (map[string]any, error) {
	duration, _ := toFloat(resolverFor(ctx, state).ResolveValue(cfg["duration"]))

	multiplier := 1.0
	if unit, ok := cfg["unit"].(string); ok {
		if m, known := delayUnits[unit]; known {
			multiplier = m
		}
	}

	seconds := duration * multiplier
	if seconds > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(seconds * float64(time.Second))):
		}
	}

	return map[string]any{"delayed_seconds": seconds}, nil
}
