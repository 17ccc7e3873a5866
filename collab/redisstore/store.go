// Package redisstore provides a Redis-backed DataStore and a pub/sub
// publisher for live log events.
package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// Store implements api.DataStore over Redis. Supported operations:
//
//	"get"  - params: {"key": string}; returns {"value": string|nil, "found": bool}
//	"set"  - params: {"key": string, "value": any, "ttl_seconds": number}
//	"del"  - params: {"key": string}; returns {"deleted": int64}
//	"incr" - params: {"key": string}; returns {"value": int64}
type Store struct {
	client *redis.Client
}

var _ api.DataStore = (*Store)(nil)

// New wraps an existing Redis client. The caller owns the client's lifetime.
func New(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Execute(ctx context.Context, operation string, params map[string]any) (map[string]any, error) {
	key, _ := params["key"].(string)
	if key == "" {
		return nil, fmt.Errorf("%s operation requires a key", operation)
	}

	switch operation {
	case "get":
		val, err := s.client.Get(ctx, key).Result()
		if err == redis.Nil {
			return map[string]any{"value": nil, "found": false}, nil
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"value": val, "found": true}, nil

	case "set":
		var ttl time.Duration
		if secs, ok := params["ttl_seconds"].(float64); ok && secs > 0 {
			ttl = time.Duration(secs * float64(time.Second))
		}
		if err := s.client.Set(ctx, key, fmt.Sprintf("%v", params["value"]), ttl).Err(); err != nil {
			return nil, err
		}
		return map[string]any{"key": key, "stored": true}, nil

	case "del":
		n, err := s.client.Del(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted": n}, nil

	case "incr":
		n, err := s.client.Incr(ctx, key).Result()
		if err != nil {
			return nil, err
		}
		return map[string]any{"value": n}, nil

	default:
		return nil, fmt.Errorf("unsupported datastore operation: %s", operation)
	}
}
