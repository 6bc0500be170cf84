// Package memory is a process-local repository.Store used by tests and
// single-process development runs. Nothing survives a restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/iamasit07/simpage/backend/internal/repository"
)

var _ repository.Store = (*Store)(nil)

type entry struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

type Store struct {
	mu    sync.Mutex
	data  map[string]entry
	clock func() time.Time
}

// NewStore returns an empty store. A nil clock means time.Now.
func NewStore(clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{data: make(map[string]entry), clock: clock}
}

func (s *Store) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	if s.expired(e) {
		delete(s.data, key)
		return "", repository.ErrNotFound
	}
	return e.value, nil
}

func (s *Store) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = s.clock().Add(ttl)
	}
	s.data[key] = e
	return nil
}

func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

// TTL returns the remaining lifetime of key, 0 for keys without expiry and
// -1 when the key does not exist.
func (s *Store) TTL(key string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[key]
	if !ok || s.expired(e) {
		return -1
	}
	if e.expiresAt.IsZero() {
		return 0
	}
	return e.expiresAt.Sub(s.clock())
}

// Keys returns the live keys with the given prefix.
func (s *Store) Keys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var keys []string
	for k, e := range s.data {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix && !s.expired(e) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (s *Store) expired(e entry) bool {
	return !e.expiresAt.IsZero() && !s.clock().Before(e.expiresAt)
}
