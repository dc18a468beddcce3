package adapter

import "sync"

// Capability is one provisioned backend handle, keyed by the interface it
// serves (or interface.subject when the capability is per-actor).
type Capability struct {
	Key        string
	Impl       any
	Adapter    *Adapter
	Persistent bool
}

// Store holds live capabilities. The executor keeps one per scenario for
// ephemeral capabilities and one per suite for persistent ones.
type Store struct {
	mu    sync.Mutex
	caps  map[string]*Capability
	order []string
}

// NewStore creates an empty capability store.
func NewStore() *Store {
	return &Store{caps: make(map[string]*Capability)}
}

// Get returns the capability under key, if present.
func (s *Store) Get(key string) (*Capability, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.caps[key]
	return c, ok
}

// Put stores a capability under its key, recording insertion order for
// teardown.
func (s *Store) Put(c *Capability) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.caps[c.Key]; !exists {
		s.order = append(s.order, c.Key)
	}
	s.caps[c.Key] = c
}

// Drain empties the store and returns the capabilities in reverse insertion
// order, so later capabilities tear down before the ones they may depend
// on.
func (s *Store) Drain() []*Capability {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*Capability, 0, len(s.caps))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.caps[s.order[i]])
	}
	s.caps = make(map[string]*Capability)
	s.order = nil
	return out
}

// Len reports how many capabilities are held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.caps)
}
