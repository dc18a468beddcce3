package registry

import (
	"log/slog"

	"github.com/vk/picklerun/internal/loc"
)

// Module is the interface step definition packs implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry holds the step definitions of a single application instance, in
// registration order.
type Registry struct {
	defs        []*StepDefinition
	bySignature map[string]*StepDefinition
}

// New creates and initializes a new Registry instance.
func New() *Registry {
	r := &Registry{}
	r.Clear()
	return r
}

// Register compiles, validates, and stores one step definition. The pattern
// source text is the definition's signature: registering the same text
// twice fails with a DuplicateStepError naming both locations.
func (r *Registry) Register(pattern string, handler any, location loc.Location, meta *Metadata) (*StepDefinition, error) {
	if existing, ok := r.bySignature[pattern]; ok {
		return nil, &DuplicateStepError{Pattern: pattern, First: existing.Location, Second: location}
	}

	def, err := newDefinition(pattern, handler, location, meta)
	if err != nil {
		return nil, err
	}

	if meta != nil && meta.Interface != "" && meta.SVO == nil {
		slog.Warn("Step definition names an interface but has no svo mapping; semantic validation will skip it.",
			"pattern", pattern, "interface", meta.Interface)
	}

	slog.Debug("Registering step definition.", "pattern", pattern, "id", def.ID)
	r.defs = append(r.defs, def)
	r.bySignature[pattern] = def
	return def, nil
}

// MustRegister is Register for module init paths, where a bad definition is
// a programming error.
func (r *Registry) MustRegister(pattern string, handler any, location loc.Location, meta *Metadata) *StepDefinition {
	def, err := r.Register(pattern, handler, location, meta)
	if err != nil {
		panic(err)
	}
	return def
}

// Clear drops every definition. The suite runner rebuilds the registry
// before each run so stale definitions cannot leak between runs.
func (r *Registry) Clear() {
	r.defs = nil
	r.bySignature = make(map[string]*StepDefinition)
}

// All returns the definitions in registration order. The slice is a copy;
// the definitions are shared.
func (r *Registry) All() []*StepDefinition {
	out := make([]*StepDefinition, len(r.defs))
	copy(out, r.defs)
	return out
}

// FindByPattern returns the definition registered under the exact pattern
// source text, or nil.
func (r *Registry) FindByPattern(pattern string) *StepDefinition {
	return r.bySignature[pattern]
}

// Len reports how many definitions are registered.
func (r *Registry) Len() int {
	return len(r.defs)
}
