package redisstore

import (
	"context"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/taskflowhq/taskflow/pkg/api"
)

const defaultLogChannelPrefix = "taskflow:logs:"

// LogPublisher is an Observer that publishes node events and warnings to a
// per-execution Redis pub/sub channel, giving UIs a live log feed. Publish
// failures are dropped: observation must never fail a run.
type LogPublisher struct {
	api.NoopObserver

	client *redis.Client
	prefix string
}

// NewLogPublisher creates a publisher on the given client. An empty prefix
// falls back to "taskflow:logs:"; the execution id is appended per event.
func NewLogPublisher(client *redis.Client, prefix string) *LogPublisher {
	if prefix == "" {
		prefix = defaultLogChannelPrefix
	}
	return &LogPublisher{client: client, prefix: prefix}
}

func (p *LogPublisher) OnNodeCompleted(ctx context.Context, ev api.LogEvent, res api.NodeResult, d time.Duration) {
	p.publish(ctx, ev)
}

func (p *LogPublisher) OnWarning(ctx context.Context, ev api.LogEvent) {
	p.publish(ctx, ev)
}

func (p *LogPublisher) publish(ctx context.Context, ev api.LogEvent) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return
	}
	_ = p.client.Publish(ctx, p.prefix+ev.ExecutionID, payload).Err()
}
