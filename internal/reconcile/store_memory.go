package reconcile

import (
	"context"
	"sort"
	"sync"
)

// InMemoryStore keeps the default deployment and tests lightweight. Reads
// return deep copies, so an in-flight merge never leaks a partially updated
// record to verification readers.
type InMemoryStore struct {
	mu    sync.RWMutex
	draws map[Key]CanonicalDraw
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{draws: make(map[Key]CanonicalDraw)}
}

func (s *InMemoryStore) Get(_ context.Context, key Key) (CanonicalDraw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if draw, ok := s.draws[key]; ok {
		return draw.clone(), nil
	}
	return CanonicalDraw{}, ErrNotFound
}

func (s *InMemoryStore) Put(_ context.Context, draw CanonicalDraw) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws[draw.Key()] = draw.clone()
	return nil
}

func (s *InMemoryStore) ListByGame(_ context.Context, game string, limit int) ([]CanonicalDraw, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []CanonicalDraw
	for key, draw := range s.draws {
		if key.Game == game {
			out = append(out, draw.clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
