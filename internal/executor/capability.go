package executor

import (
	"context"
	"fmt"

	"github.com/vk/picklerun/internal/adapter"
	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/svo"
)

// CapabilityKey is the reserved scenario context entry under which the
// executor exposes live capability implementations to handlers, indexed by
// provisioning key. The executor re-attaches it whenever a handler returns
// a replacement context.
const CapabilityKey = "runtime.capabilities"

// provisionKey derives the store key for a step's capability. Steps whose
// SVOI names a subject get a per-actor capability; the rest share one per
// interface.
func provisionKey(s *svo.SVOI) string {
	if s.Subject == "" {
		return string(s.Interface)
	}
	return string(s.Interface) + "." + string(s.Subject)
}

// CapabilityFor looks up a live capability in a scenario context the way
// the executor keys them: per-subject first, then interface-wide. Step
// packs use it instead of hand-deriving keys.
func CapabilityFor(scenario map[string]any, iface, subject string) (any, bool) {
	caps, ok := scenario[CapabilityKey].(map[string]any)
	if !ok {
		return nil, false
	}
	if subject != "" {
		if impl, ok := caps[iface+"."+string(svo.Normalize(subject))]; ok {
			return impl, true
		}
	}
	impl, ok := caps[iface]
	return impl, ok
}

// ensureCapability returns the live capability serving the step, creating
// it through the configured adapter on first use. Persistent interfaces go
// to the suite store and outlive the scenario; everything else lands in the
// scenario store and is destroyed with it.
func (e *Executor) ensureCapability(ctx context.Context, s *svo.SVOI, scenarioCaps *adapter.Store) (*adapter.Capability, error) {
	key := provisionKey(s)
	if c, ok := e.persistent.Get(key); ok {
		return c, nil
	}
	if c, ok := scenarioCaps.Get(key); ok {
		return c, nil
	}

	cfg, ok := e.ifaces[s.Interface]
	if !ok {
		return nil, fmt.Errorf("no interface configuration for %q", s.Interface)
	}
	a := e.adapters.Get(cfg.Adapter)
	if a == nil {
		return nil, fmt.Errorf("interface %q: no adapter registered under %q", s.Interface, cfg.Adapter)
	}

	impl, err := a.Create(ctx, cfg.Config)
	if err != nil {
		return nil, fmt.Errorf("adapter %q: %w", a.Name, err)
	}
	ctxlog.FromContext(ctx).Info("✅ Capability provisioned", "key", key, "adapter", a.Name, "persistent", cfg.Persistent)

	c := &adapter.Capability{Key: key, Impl: impl, Adapter: a, Persistent: cfg.Persistent}
	if cfg.Persistent {
		e.persistent.Put(c)
	} else {
		scenarioCaps.Put(c)
	}
	return c, nil
}

// teardownCapabilities destroys every capability in the store, newest
// first. Failures are collected for the result and logged, never
// escalated: teardown runs after the verdict is already decided.
func (e *Executor) teardownCapabilities(ctx context.Context, store *adapter.Store) []error {
	logger := ctxlog.FromContext(ctx)
	var errs []error
	for _, c := range store.Drain() {
		if c.Adapter == nil || c.Adapter.Cleanup == nil {
			continue
		}
		logger.Info("🔥 Destroying capability", "key", c.Key, "adapter", c.Adapter.Name)
		if err := c.Adapter.Cleanup(ctx, c.Impl); err != nil {
			logger.Warn("Capability cleanup failed.", "key", c.Key, "error", err)
			errs = append(errs, fmt.Errorf("capability %q: %w", c.Key, err))
		}
	}
	return errs
}
