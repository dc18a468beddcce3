// Package memstore provides an in-memory key/value capability. It backs
// scenarios that exercise storage behavior without a real backend.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/vk/picklerun/internal/adapter"
)

// Store is the live capability implementation handed to step handlers.
type Store struct {
	mu   sync.Mutex
	data map[string]string
}

// NewStore creates a store, optionally pre-populated with seed entries.
func NewStore(seed map[string]string) *Store {
	s := &Store{data: make(map[string]string, len(seed))}
	for k, v := range seed {
		s.data[k] = v
	}
	return s
}

// Put stores a value under key, replacing any previous value.
func (s *Store) Put(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
}

// Get returns the value under key, if present.
func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok
}

// Delete removes the entry under key.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
}

// Len reports the number of entries held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data)
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
}

// Module implements the adapter.Provider interface for this package.
type Module struct{}

// RegisterAdapters wires the memstore adapter into the capability registry.
func (m *Module) RegisterAdapters(r *adapter.Registry) {
	r.Register(&adapter.Adapter{
		Name:    "memstore",
		Create:  create,
		Cleanup: cleanup,
	})
}

// create builds a store from the interface configuration. A "seed" table of
// string values becomes the initial contents.
func create(ctx context.Context, config map[string]any) (any, error) {
	seed := map[string]string{}
	if raw, ok := config["seed"]; ok {
		entries, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("memstore seed must be an object of strings, got %T", raw)
		}
		for k, v := range entries {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("memstore seed value %q must be a string, got %T", k, v)
			}
			seed[k] = s
		}
	}
	return NewStore(seed), nil
}

func cleanup(ctx context.Context, impl any) error {
	store, ok := impl.(*Store)
	if !ok {
		return fmt.Errorf("memstore cleanup got %T, want *memstore.Store", impl)
	}
	store.Clear()
	return nil
}
