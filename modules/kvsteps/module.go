// Package kvsteps defines steps that drive a key/value store through the
// "store" interface. The memstore adapter provides the usual backend.
package kvsteps

import (
	"fmt"
	"strconv"

	"github.com/vk/picklerun/internal/executor"
	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/internal/svo"
	"github.com/vk/picklerun/modules/memstore"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register wires the key/value step definitions into the registry.
func (m *Module) Register(r *registry.Registry) {
	src := loc.Location{URI: "modules/kvsteps"}

	r.MustRegister(`(\w+) stores "([^"]*)" under "([^"]*)"`, storeValue, src, &registry.Metadata{
		Interface: "store",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("stores"), Object: svo.Ref(3)},
	})
	r.MustRegister(`(\w+) reads "([^"]*)" and sees "([^"]*)"`, readValue, src, &registry.Metadata{
		Interface: "store",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("reads"), Object: svo.Ref(2)},
	})
	r.MustRegister(`(\w+) deletes "([^"]*)"`, deleteValue, src, &registry.Metadata{
		Interface: "store",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("deletes"), Object: svo.Ref(2)},
	})
	r.MustRegister(`(\w+) holds (\d+) entries`, countEntries, src, &registry.Metadata{
		Interface: "store",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("holds"), Object: svo.Ref(2)},
	})
	r.MustRegister(`(\w+) clears the store`, clearStore, src, &registry.Metadata{
		Interface: "store",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("clears")},
	})
}

// mismatchError reports a failed read expectation, with the comparison as a
// structured payload for reporters.
type mismatchError struct {
	key      string
	expected string
	actual   string
	found    bool
}

func (e *mismatchError) Error() string {
	if !e.found {
		return fmt.Sprintf("key %q not found", e.key)
	}
	return fmt.Sprintf("key %q holds %q, expected %q", e.key, e.actual, e.expected)
}

func (e *mismatchError) ErrorPayload() any {
	return map[string]any{"key": e.key, "expected": e.expected, "actual": e.actual, "found": e.found}
}

func storeFor(sc map[string]any, subject string) (*memstore.Store, error) {
	impl, ok := executor.CapabilityFor(sc, "store", subject)
	if !ok {
		return nil, fmt.Errorf("no live store capability for %q", subject)
	}
	store, ok := impl.(*memstore.Store)
	if !ok {
		return nil, fmt.Errorf("store capability for %q is %T, want *memstore.Store", subject, impl)
	}
	return store, nil
}

func storeValue(sc map[string]any, who, value, key string) error {
	store, err := storeFor(sc, who)
	if err != nil {
		return err
	}
	store.Put(key, value)
	return nil
}

func readValue(sc map[string]any, who, key, expected string) error {
	store, err := storeFor(sc, who)
	if err != nil {
		return err
	}
	actual, ok := store.Get(key)
	if !ok {
		return &mismatchError{key: key, expected: expected}
	}
	if actual != expected {
		return &mismatchError{key: key, expected: expected, actual: actual, found: true}
	}
	return nil
}

func deleteValue(sc map[string]any, who, key string) error {
	store, err := storeFor(sc, who)
	if err != nil {
		return err
	}
	store.Delete(key)
	return nil
}

func countEntries(sc map[string]any, who, count string) error {
	store, err := storeFor(sc, who)
	if err != nil {
		return err
	}
	want, err := strconv.Atoi(count)
	if err != nil {
		return fmt.Errorf("entry count %q is not a number: %w", count, err)
	}
	if got := store.Len(); got != want {
		return fmt.Errorf("store holds %d entries, expected %d", got, want)
	}
	return nil
}

func clearStore(sc map[string]any, who string) error {
	store, err := storeFor(sc, who)
	if err != nil {
		return err
	}
	store.Clear()
	return nil
}
