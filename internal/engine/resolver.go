package engine

import (
	"strconv"
	"strings"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// inputNode is the pseudo-node under which the run's initial input is
// visible to variable references, e.g. {{input.customer_id}}.
const inputNode = "input"

// resolver binds {{path}} references against one run's accumulated
// results. Resolution is permissive: a path that cannot be resolved yields
// nil plus a recorded warning, never an error, because optional fields rely
// on the nil fallback.
type resolver struct {
	state  *api.ExecutionState
	nodeID string
}

func newResolver(state *api.ExecutionState, nodeID string) *resolver {
	return &resolver{state: state, nodeID: nodeID}
}

// Resolve walks a path of the shape node_id[.segment]* and returns the
// value it designates, or nil if any step fails.
func (r *resolver) Resolve(path string) any {
	parts := strings.Split(path, ".")

	var value any
	if parts[0] == inputNode {
		value = r.state.Input
	} else {
		res, ok := r.state.Result(parts[0])
		if !ok {
			r.warn(path, "unknown node id: "+parts[0])
			return nil
		}
		value = res.Output
	}

	for _, part := range parts[1:] {
		switch v := value.(type) {
		case map[string]any:
			next, ok := v[part]
			if !ok {
				r.warn(path, "missing key: "+part)
				return nil
			}
			value = next
		case []any:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 {
				r.warn(path, "invalid index: "+part)
				return nil
			}
			if idx >= len(v) {
				r.warn(path, "index out of range: "+part)
				return nil
			}
			value = v[idx]
		default:
			r.warn(path, "value at "+part+" is not indexable")
			return nil
		}
	}

	return value
}

// ResolveValue applies template detection to a single value. A string of
// the exact form "{{path}}" is replaced wholesale by the resolved value,
// preserving its type; templates embedded inside a larger string are not
// interpolated. Maps and sequences are resolved element-wise so nested
// configs (HTTP headers, agent params) bind too. Everything else passes
// through unchanged.
func (r *resolver) ResolveValue(v any) any {
	switch t := v.(type) {
	case string:
		if path, ok := templatePath(t); ok {
			return r.Resolve(path)
		}
		return t
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = r.ResolveValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = r.ResolveValue(val)
		}
		return out
	default:
		return v
	}
}

// ResolveConfig resolves every value of a node config.
func (r *resolver) ResolveConfig(cfg map[string]any) map[string]any {
	out := make(map[string]any, len(cfg))
	for k, v := range cfg {
		out[k] = r.ResolveValue(v)
	}
	return out
}

func (r *resolver) warn(path, reason string) {
	r.state.AddWarning(api.Warning{NodeID: r.nodeID, Path: path, Reason: reason})
}

// templatePath reports whether s is exactly one {{path}} reference and
// returns the trimmed inner path.
func templatePath(s string) (string, bool) {
	if len(s) < 4 || !strings.HasPrefix(s, "{{") || !strings.HasSuffix(s, "}}") {
		return "", false
	}
	inner := s[2 : len(s)-2]
	if strings.Contains(inner, "{{") || strings.Contains(inner, "}}") {
		return "", false
	}
	inner = strings.TrimSpace(inner)
	if inner == "" {
		return "", false
	}
	return inner, true
}

// pathOrTemplate accepts both a bare path ("nodeA.items") and its template
// spelling ("{{nodeA.items}}"); transform inputs historically used the bare
// form.
func pathOrTemplate(s string) string {
	if inner, ok := templatePath(s); ok {
		return inner
	}
	return strings.TrimSpace(s)
}
