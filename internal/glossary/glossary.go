// Package glossary holds the project vocabulary (subjects and per-interface
// verb sets), the interface configuration, and the semantic validation of
// extracted SVOI instances against them.
package glossary

import (
	"sort"

	"github.com/vk/picklerun/internal/svo"
)

// SubjectInfo describes one known actor.
type SubjectInfo struct {
	Description string
}

// VerbInfo describes one known action of an interface type.
type VerbInfo struct {
	Description string
}

// Glossary is the vocabulary steps are validated against. Verbs are grouped
// by interface type, not by interface instance: every "web" interface
// shares the same verb set.
type Glossary struct {
	Subjects map[svo.Keyword]SubjectInfo
	Verbs    map[svo.Keyword]map[svo.Keyword]VerbInfo
}

// New returns an empty glossary ready to be merged into.
func New() *Glossary {
	return &Glossary{
		Subjects: make(map[svo.Keyword]SubjectInfo),
		Verbs:    make(map[svo.Keyword]map[svo.Keyword]VerbInfo),
	}
}

// Merge overlays another glossary onto this one. Overlay entries win on
// collision; verb sets merge per interface type.
func (g *Glossary) Merge(overlay *Glossary) {
	if overlay == nil {
		return
	}
	for name, info := range overlay.Subjects {
		g.Subjects[name] = info
	}
	for ifaceType, verbs := range overlay.Verbs {
		set, ok := g.Verbs[ifaceType]
		if !ok {
			set = make(map[svo.Keyword]VerbInfo, len(verbs))
			g.Verbs[ifaceType] = set
		}
		for verb, info := range verbs {
			set[verb] = info
		}
	}
}

// SubjectNames returns the known subjects in sorted order.
func (g *Glossary) SubjectNames() []string {
	return sortedKeys(g.Subjects)
}

// VerbNames returns the verbs of one interface type in sorted order.
func (g *Glossary) VerbNames(ifaceType svo.Keyword) []string {
	return sortedKeys(g.Verbs[ifaceType])
}

func sortedKeys[V any](m map[svo.Keyword]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, string(k))
	}
	sort.Strings(out)
	return out
}

// InterfaceConfig describes one configured interface: its type (which picks
// the verb set), the adapter that provisions capabilities for it, whether
// those capabilities outlive a scenario, and free-form adapter settings.
type InterfaceConfig struct {
	Type       svo.Keyword
	Adapter    string
	Persistent bool
	Config     map[string]any
}

// Interfaces maps interface names to their configuration.
type Interfaces map[svo.Keyword]InterfaceConfig

// Names returns the configured interface names in sorted order.
func (i Interfaces) Names() []string {
	return sortedKeys(i)
}
