// Package memory provides a volatile SecureStore for tests and ephemeral sessions.
package memory

import (
	"context"
	"sync"

	"github.com/iudanet/identitykeeper/internal/client/storage"
)

// Store implements storage.SecureStore backed by a map.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

var _ storage.SecureStore = (*Store)(nil)

// New returns an empty in-memory store.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

// Read returns a copy of the stored value.
func (s *Store) Read(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[key]
	if !ok {
		return nil, storage.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

// Write stores a copy of value.
func (s *Store) Write(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	s.values[key] = append([]byte(nil), value...)
	s.mu.Unlock()
	return nil
}

// Remove deletes key.
func (s *Store) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.values, key)
	s.mu.Unlock()
	return nil
}

// Has reports whether key exists. Useful for tests.
func (s *Store) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}
