// Package ctxsteps defines steps that read and write the scenario context
// directly, with no capability behind them. They cover the common "remember
// a value for a later step" pattern without forcing a store interface on
// scenarios that only need scratch state.
package ctxsteps

import (
	"fmt"

	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register wires the context step definitions into the registry.
func (m *Module) Register(r *registry.Registry) {
	src := loc.Location{URI: "modules/ctxsteps"}

	r.MustRegister(`the value "([^"]*)" is remembered as "([^"]*)"`, remember, src, nil)
	r.MustRegister(`the remembered "([^"]*)" equals "([^"]*)"`, checkRemembered, src, nil)
	r.MustRegister(`nothing is remembered as "([^"]*)"`, checkForgotten, src, nil)
	r.MustRegister(`the remembered "([^"]*)" is forgotten`, forget, src, nil)
}

// key namespaces remembered values so the pack never collides with entries
// other packs write into the shared context.
func key(name string) string { return "remembered." + name }

func remember(sc map[string]any, value, name string) (map[string]any, error) {
	sc[key(name)] = value
	return sc, nil
}

func checkRemembered(sc map[string]any, name, want string) error {
	got, ok := sc[key(name)]
	if !ok {
		return fmt.Errorf("nothing is remembered as %q", name)
	}
	if got != any(want) {
		return fmt.Errorf("remembered %q holds %v, expected %q", name, got, want)
	}
	return nil
}

func checkForgotten(sc map[string]any, name string) error {
	if got, ok := sc[key(name)]; ok {
		return fmt.Errorf("%q is remembered as %v", name, got)
	}
	return nil
}

func forget(sc map[string]any, name string) (map[string]any, error) {
	delete(sc, key(name))
	return sc, nil
}
