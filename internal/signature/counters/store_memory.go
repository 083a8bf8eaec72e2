package counters

import (
	"context"
	"sync"
)

// InMemoryStore is a mutex-guarded counter store for unit tests and local
// development without Redis.
type InMemoryStore struct {
	mu     sync.Mutex
	values map[string]int64
	scores map[string]map[string]float64
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]int64),
		scores: make(map[string]map[string]float64),
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *InMemoryStore) Set(_ context.Context, key string, value int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *InMemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key]++
	return s.values[key], nil
}

func (s *InMemoryStore) ZIncrBy(_ context.Context, key, member string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.scores[key]
	if !ok {
		set = make(map[string]float64)
		s.scores[key] = set
	}
	set[member] += delta
	return nil
}

// Score returns member's score in the scored set at key. Test helper.
func (s *InMemoryStore) Score(key, member string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scores[key][member]
}
