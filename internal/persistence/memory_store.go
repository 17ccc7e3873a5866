package persistence

import (
	"context"
	"sync"

	"github.com/taskflowhq/taskflow/pkg/api"
)

// InMemoryStore is a simple, goroutine-safe implementation of
// ExecutionStore and LogStore backed by maps.
type InMemoryStore struct {
	mu         sync.RWMutex
	executions map[string]*api.ExecutionReport
	order      []string
	logs       map[string][]api.LogEvent
}

// NewInMemoryStore creates a new InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		executions: make(map[string]*api.ExecutionReport),
		logs:       make(map[string][]api.LogEvent),
	}
}

// Ensure InMemoryStore implements the interfaces.
var _ ExecutionStore = (*InMemoryStore)(nil)

var _ LogStore = (*InMemoryStore)(nil)

func (s *InMemoryStore) SaveExecution(rep *api.ExecutionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.executions[rep.ID]; !ok {
		s.order = append(s.order, rep.ID)
	}
	copied := *rep
	s.executions[rep.ID] = &copied
	return nil
}

func (s *InMemoryStore) UpdateExecution(rep *api.ExecutionReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.executions[rep.ID]; !ok {
		return api.ErrExecutionNotFound
	}
	copied := *rep
	s.executions[rep.ID] = &copied
	return nil
}

func (s *InMemoryStore) GetExecution(id string) (*api.ExecutionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rep, ok := s.executions[id]
	if !ok {
		return nil, api.ErrExecutionNotFound
	}
	copied := *rep
	return &copied, nil
}

func (s *InMemoryStore) ListExecutions(filter ExecutionFilter) ([]*api.ExecutionReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*api.ExecutionReport
	for _, id := range s.order {
		rep := s.executions[id]
		if filter.GraphName != "" && rep.GraphName != filter.GraphName {
			continue
		}
		if filter.Status != "" && rep.Status != filter.Status {
			continue
		}
		copied := *rep
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) AppendLog(ctx context.Context, ev api.LogEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.logs[ev.ExecutionID] = append(s.logs[ev.ExecutionID], ev)
	return nil
}

func (s *InMemoryStore) ListLogs(ctx context.Context, executionID string) ([]api.LogEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := s.logs[executionID]
	out := make([]api.LogEvent, len(events))
	copy(out, events)
	return out, nil
}
