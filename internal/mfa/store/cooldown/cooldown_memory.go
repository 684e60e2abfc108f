// Package cooldown throttles repeated actions per key, such as sending a new
// MFA code to the same user.
package cooldown

import (
	"context"
	"sync"
	"time"
)

// InMemoryStore holds cooldown deadlines in process memory.
type InMemoryStore struct {
	mu       sync.Mutex
	deadline map[string]time.Time
	now      func() time.Time
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{deadline: make(map[string]time.Time), now: time.Now}
}

// Acquire starts a cooldown for key unless one is already running.
func (s *InMemoryStore) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if until, ok := s.deadline[key]; ok && now.Before(until) {
		return false, nil
	}
	s.deadline[key] = now.Add(ttl)
	// Drop finished entries while the lock is held anyway.
	for k, until := range s.deadline {
		if !now.Before(until) {
			delete(s.deadline, k)
		}
	}
	return true, nil
}

// Release ends the cooldown for key early.
func (s *InMemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deadline, key)
	return nil
}
