package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the default single-instance backend: a mutex-guarded map
// with TTL-based sweeping.
type MemoryStore struct {
	ttl    time.Duration
	mu     sync.RWMutex
	states map[string]*GameState
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:    ttl,
		states: make(map[string]*GameState),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (*GameState, error) {
	s.mu.RLock()
	state, ok := s.states[key]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	if time.Since(state.UpdatedAt) > s.ttl {
		s.mu.Lock()
		delete(s.states, key)
		s.mu.Unlock()
		return nil, ErrNotFound
	}
	copied := *state
	copied.AskedQuestions = append([]string(nil), state.AskedQuestions...)
	return &copied, nil
}

func (s *MemoryStore) Save(_ context.Context, key string, state *GameState) error {
	state.UpdatedAt = time.Now()
	copied := *state
	copied.AskedQuestions = append([]string(nil), state.AskedQuestions...)
	s.mu.Lock()
	s.states[key] = &copied
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.states, key)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Sweep(_ context.Context) int {
	cutoff := time.Now().Add(-s.ttl)
	removed := 0
	s.mu.Lock()
	for key, state := range s.states {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.states, key)
			removed++
		}
	}
	s.mu.Unlock()
	return removed
}
