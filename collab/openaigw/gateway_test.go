package openaigw

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

// chatServer fakes the OpenAI chat completions endpoint and returns the given
// reply content for every request.
func chatServer(t *testing.T, reply string, gotReq *map[string]any) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotReq != nil {
			if err := json.NewDecoder(r.Body).Decode(gotReq); err != nil {
				t.Errorf("decode request: %v", err)
			}
		}
		resp := map[string]any{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "test-model",
			"choices": []any{
				map[string]any{
					"index":   0,
					"message": map[string]any{"role": "assistant", "content": reply},
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestGateway_ExecuteReturnsReply(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, "Hello from the model.", &req)
	defer srv.Close()

	gw := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "test-model"})

	out, err := gw.Execute(context.Background(), map[string]any{
		"prompt":        "Say hello",
		"system_prompt": "You are terse.",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if out["response"] != "Hello from the model." || out["model"] != "test-model" {
		t.Fatalf("unexpected output %v", out)
	}
	if _, ok := out["data"]; ok {
		t.Fatalf("plain prose should not produce structured data: %v", out)
	}

	msgs, _ := req["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system + user messages, got %v", req["messages"])
	}
	first, _ := msgs[0].(map[string]any)
	if first["role"] != "system" || first["content"] != "You are terse." {
		t.Fatalf("unexpected system message %v", first)
	}
}

func TestGateway_ExecuteExtractsStructuredReply(t *testing.T) {
	srv := chatServer(t, "Sure!\n```json\n{\"score\": 87, \"tier\": \"hot\"}\n```", nil)
	defer srv.Close()

	gw := New(Config{APIKey: "test-key", BaseURL: srv.URL})

	out, err := gw.Execute(context.Background(), map[string]any{"prompt": "score this lead"})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, ok := out["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected structured data, got %v", out)
	}
	if data["score"] != float64(87) || data["tier"] != "hot" {
		t.Fatalf("unexpected data %v", data)
	}
}

func TestGateway_ExecuteHonorsPerNodeModel(t *testing.T) {
	var req map[string]any
	srv := chatServer(t, "ok", &req)
	defer srv.Close()

	gw := New(Config{APIKey: "test-key", BaseURL: srv.URL, Model: "default-model"})

	out, err := gw.Execute(context.Background(), map[string]any{
		"prompt": "hi",
		"model":  "special-model",
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if req["model"] != "special-model" {
		t.Fatalf("request used model %v", req["model"])
	}
	if out["model"] != "special-model" {
		t.Fatalf("output reported model %v", out["model"])
	}
}

func TestGateway_ExecuteRequiresPrompt(t *testing.T) {
	gw := New(Config{APIKey: "test-key"})
	if _, err := gw.Execute(context.Background(), map[string]any{}); err == nil {
		t.Fatalf("expected error for missing prompt")
	}
}

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name  string
		reply string
		want  map[string]any
		ok    bool
	}{
		{
			name:  "json fence",
			reply: "here you go:\n```json\n{\"a\": 1}\n```\ndone",
			want:  map[string]any{"a": float64(1)},
			ok:    true,
		},
		{
			name:  "bare fence",
			reply: "```\n{\"a\": 1}\n```",
			want:  map[string]any{"a": float64(1)},
			ok:    true,
		},
		{
			name:  "braces in prose",
			reply: "the result is {\"a\": 1} as requested",
			want:  map[string]any{"a": float64(1)},
			ok:    true,
		},
		{
			name:  "no json",
			reply: "just words",
			ok:    false,
		},
		{
			name:  "malformed object",
			reply: "{\"a\": }",
			ok:    false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := extractJSON(tc.reply)
			if ok != tc.ok {
				t.Fatalf("ok=%v, want %v", ok, tc.ok)
			}
			if tc.ok && !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}
