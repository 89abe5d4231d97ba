package audit

import (
	"context"
	"sync"
)

// InMemoryStore keeps tests and the default deployment lightweight. Offsets
// start at 1 and never repeat.
type InMemoryStore struct {
	mu     sync.RWMutex
	events []Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, event Event) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.Offset = int64(len(s.events)) + 1
	s.events = append(s.events, event)
	return event.Offset, nil
}

func (s *InMemoryStore) ListFrom(_ context.Context, offset int64, limit int) ([]Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if offset < 1 {
		offset = 1
	}
	start := int(offset) - 1
	if start >= len(s.events) {
		return []Event{}, nil
	}
	out := append([]Event{}, s.events[start:]...)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
