// Package macro implements reusable step sequences. A macro registry maps
// step patterns to lists of step templates; expansion rewrites matching
// pickle steps into a synthetic wrapper followed by the generated steps.
package macro

import (
	"fmt"
	"regexp"

	"github.com/vk/picklerun/internal/loc"
)

// Macro is one reusable sequence: a full-text pattern over step text and
// the templates the match expands into. Templates reference the pattern's
// captures as $1..$n.
type Macro struct {
	Name        string
	Source      string
	Pattern     *regexp.Regexp
	Description string
	Steps       []string
	Location    loc.Location
}

// Match runs the macro's pattern against full step text.
func (m *Macro) Match(text string) ([]string, bool) {
	sub := m.Pattern.FindStringSubmatch(text)
	if sub == nil {
		return nil, false
	}
	return sub[1:], true
}

// Registry holds the loaded macros in load order.
type Registry struct {
	macros []*Macro
	byName map[string]*Macro
}

// NewRegistry creates an empty macro registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Macro)}
}

// Add compiles and stores one macro. Names are unique across every loaded
// registry file.
func (r *Registry) Add(name, pattern, description string, steps []string, location loc.Location) error {
	if existing, ok := r.byName[name]; ok {
		return fmt.Errorf("macro %q at %s already defined at %s", name, location, existing.Location)
	}
	if len(steps) == 0 {
		return fmt.Errorf("macro %q at %s has no steps", name, location)
	}

	compiled, err := regexp.Compile("^(?:" + pattern + ")$")
	if err != nil {
		return fmt.Errorf("macro %q at %s has an invalid pattern: %w", name, location, err)
	}

	m := &Macro{
		Name:        name,
		Source:      pattern,
		Pattern:     compiled,
		Description: description,
		Steps:       steps,
		Location:    location,
	}
	r.macros = append(r.macros, m)
	r.byName[name] = m
	return nil
}

// All returns the macros in load order.
func (r *Registry) All() []*Macro {
	out := make([]*Macro, len(r.macros))
	copy(out, r.macros)
	return out
}

// Len reports how many macros are loaded.
func (r *Registry) Len() int {
	return len(r.macros)
}

// match finds every macro whose pattern covers the step text, in load
// order.
func (r *Registry) match(text string) []*Macro {
	var out []*Macro
	for _, m := range r.macros {
		if _, ok := m.Match(text); ok {
			out = append(out, m)
		}
	}
	return out
}
