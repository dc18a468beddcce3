// Package adapter provides the capability adapter registry. An adapter
// knows how to provision a live capability (an HTTP client, a store handle,
// a device session) for an interface, and how to tear it down again.
package adapter

import (
	"context"
	"fmt"
	"log/slog"
)

// Adapter provisions capabilities for one backend. Cleanup is optional;
// adapters whose capabilities hold nothing leave it nil.
type Adapter struct {
	Name    string
	Create  func(ctx context.Context, config map[string]any) (any, error)
	Cleanup func(ctx context.Context, impl any) error
}

// Provider is the interface module packs implement to contribute adapters.
type Provider interface {
	RegisterAdapters(r *Registry)
}

// Registry holds the adapters of a single application instance.
type Registry struct {
	adapters map[string]*Adapter
}

// NewRegistry creates and initializes a new adapter Registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]*Adapter)}
}

// Register stores an adapter. Adapter names are wired at compile time by
// module packs, so a collision is a programming error.
func (r *Registry) Register(a *Adapter) {
	if _, exists := r.adapters[a.Name]; exists {
		panic(fmt.Sprintf("adapter with name '%s' already registered", a.Name))
	}
	slog.Debug("Registering capability adapter.", "name", a.Name)
	r.adapters[a.Name] = a
}

// Get returns the named adapter, or nil when none is registered.
func (r *Registry) Get(name string) *Adapter {
	return r.adapters[name]
}

// CreateCapability provisions one capability through the named adapter.
func (r *Registry) CreateCapability(ctx context.Context, name string, config map[string]any) (any, error) {
	a := r.Get(name)
	if a == nil {
		return nil, fmt.Errorf("no adapter registered under %q", name)
	}
	impl, err := a.Create(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("adapter %q: %w", name, err)
	}
	return impl, nil
}
