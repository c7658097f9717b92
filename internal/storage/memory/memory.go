// Package memory implements an in-memory key-value store for development and testing.
package memory

import (
	"context"
	"sync"

	"github.com/dtroode/storefront/internal/model"
)

// Store keeps values in a map guarded by a mutex.
type Store struct {
	mu   sync.Mutex
	data map[string]string
}

var _ model.KVStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (s *Store) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	return nil
}

// Delete removes key.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}
