// Package openaigw provides an AgentGateway backed by any OpenAI-compatible
// chat completion endpoint, including local deployments that expose the same
// wire protocol.
package openaigw

import (
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/sashabaranov/go-openai"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Config controls the gateway. BaseURL is optional; when set it points the
// client at a compatible non-OpenAI server.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
}

// Gateway implements api.AgentGateway over a chat completion API.
type Gateway struct {
	client *openai.Client
	cfg    Config
}

var _ api.AgentGateway = (*Gateway)(nil)

// New creates a Gateway from the given configuration.
func New(cfg Config) *Gateway {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = openai.GPT4oMini
	}
	return &Gateway{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

// Execute sends the node's resolved configuration as a prompt and returns
// the model's reply. Recognized config keys: "prompt" (required),
// "system_prompt", "model" (per-node model override).
func (g *Gateway) Execute(ctx context.Context, config map[string]any) (map[string]any, error) {
	prompt, _ := config["prompt"].(string)
	if prompt == "" {
		return nil, fmt.Errorf("agent config requires a prompt")
	}

	model := g.cfg.Model
	if m, ok := config["model"].(string); ok && m != "" {
		model = m
	}

	var messages []openai.ChatCompletionMessage
	if sys, ok := config["system_prompt"].(string); ok && sys != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: sys,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: g.cfg.Temperature,
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no choices returned from completion API")
	}

	content := resp.Choices[0].Message.Content
	out := map[string]any{
		"response": content,
		"model":    model,
	}
	if structured, ok := extractJSON(content); ok {
		out["data"] = structured
	}
	return out, nil
}

// extractJSON pulls a JSON object out of a model reply. Models frequently
// wrap structured output in a ```json fence or surround it with prose, so
// the fence is tried first, then the outermost brace pair.
func extractJSON(reply string) (map[string]any, bool) {
	candidate := reply
	if i := strings.Index(reply, "```json"); i >= 0 {
		rest := reply[i+len("```json"):]
		if j := strings.Index(rest, "```"); j >= 0 {
			candidate = rest[:j]
		}
	} else if i := strings.Index(reply, "```"); i >= 0 {
		rest := reply[i+3:]
		if j := strings.Index(rest, "```"); j >= 0 {
			candidate = rest[:j]
		}
	}

	candidate = strings.TrimSpace(candidate)
	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(candidate[start:end+1]), &out); err != nil {
		return nil, false
	}
	return out, true
}
