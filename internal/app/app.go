package app

import (
	"io"
	"log/slog"

	"github.com/vk/picklerun/internal/adapter"
	"github.com/vk/picklerun/internal/config"
	"github.com/vk/picklerun/internal/registry"
)

// App holds the fully initialized application state: the logger, the step
// definition registry, and the capability adapter registry.
type App struct {
	out      io.Writer
	logger   *slog.Logger
	cfg      config.Config
	registry *registry.Registry
	adapters *adapter.Registry
}

// New creates a fully initialized App instance from a validated
// configuration. When no modules are passed it registers the compiled-in
// step packs; tests pass their own to run against a controlled registry.
func New(outW io.Writer, cfg config.Config, modules ...registry.Module) *App {
	logger := newLogger(cfg.Log, outW)
	logger.Debug("Logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)

	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("Step definitions registered", "count", reg.Len())

	adapters := adapter.NewRegistry()
	for _, prov := range coreAdapters {
		prov.RegisterAdapters(adapters)
	}
	logger.Debug("Capability adapters registered")

	return &App{
		out:      outW,
		logger:   logger,
		cfg:      cfg,
		registry: reg,
		adapters: adapters,
	}
}

// Registry exposes the step definition registry, primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}
