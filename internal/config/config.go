// Package config holds the runner's own settings: where to find pickles,
// vocabulary, and macros, how to log, how strictly to enforce semantic
// issues, and whether to publish step events.
//
// Settings come from an optional TOML file overlaid on built-in defaults;
// the CLI applies its flag overrides on top of the loaded value.
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/vk/picklerun/internal/glossary"
)

// Config is the fully resolved runner configuration.
type Config struct {
	Paths       Paths
	Log         Log
	Enforcement Enforcement
	Events      Events
	Run         Run
}

// Paths lists the inputs of a run. Each entry may be a file or a directory;
// directories are walked for the matching extensions.
type Paths struct {
	Pickles  []string
	Glossary []string
	Macros   []string
}

// Log selects the slog handler.
type Log struct {
	Level  string // debug, info, warn, error
	Format string // text, json
}

// Enforcement sets semantic issue severities by issue type. Unlisted types
// fall back to Default.
type Enforcement struct {
	Default  string
	Severity map[string]string
}

// Events configures the socket.io reporting bus. Disabled by default; a
// run never fails because the bus is unreachable.
type Events struct {
	Enabled            bool
	URL                string
	Path               string
	Namespace          string
	Event              string
	TimeoutSeconds     int
	InsecureSkipVerify bool
}

// Run holds per-invocation knobs.
type Run struct {
	ID     string // auto-generated when empty
	DryRun bool   // compile and validate, execute nothing
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Paths: Paths{Pickles: []string{"features"}},
		Log:   Log{Level: "info", Format: "text"},
		Enforcement: Enforcement{
			Default: "warn",
		},
		Events: Events{
			Path:           "/socket.io",
			Namespace:      "/",
			Event:          "step",
			TimeoutSeconds: 10,
		},
	}
}

// fileConfig is the TOML wire shape. It stays separate from Config so the
// overlay can distinguish "absent" from "zero".
type fileConfig struct {
	Paths struct {
		Pickles  []string `toml:"pickles"`
		Glossary []string `toml:"glossary"`
		Macros   []string `toml:"macros"`
	} `toml:"paths"`
	Log struct {
		Level  string `toml:"level"`
		Format string `toml:"format"`
	} `toml:"log"`
	Enforcement struct {
		Default  string            `toml:"default"`
		Severity map[string]string `toml:"severity"`
	} `toml:"enforcement"`
	Events struct {
		Enabled            bool   `toml:"enabled"`
		URL                string `toml:"url"`
		Path               string `toml:"path"`
		Namespace          string `toml:"namespace"`
		Event              string `toml:"event"`
		TimeoutSeconds     int    `toml:"timeout_seconds"`
		InsecureSkipVerify bool   `toml:"insecure_skip_verify"`
	} `toml:"events"`
	Run struct {
		ID     string `toml:"id"`
		DryRun bool   `toml:"dry_run"`
	} `toml:"run"`
}

// Load reads a TOML file and overlays it on the defaults. Only keys the
// file actually defines override; everything else keeps its default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load runner config %q: %w", path, err)
	}

	if meta.IsDefined("paths", "pickles") {
		cfg.Paths.Pickles = raw.Paths.Pickles
	}
	if meta.IsDefined("paths", "glossary") {
		cfg.Paths.Glossary = raw.Paths.Glossary
	}
	if meta.IsDefined("paths", "macros") {
		cfg.Paths.Macros = raw.Paths.Macros
	}
	if meta.IsDefined("log", "level") {
		cfg.Log.Level = strings.TrimSpace(raw.Log.Level)
	}
	if meta.IsDefined("log", "format") {
		cfg.Log.Format = strings.TrimSpace(raw.Log.Format)
	}
	if meta.IsDefined("enforcement", "default") {
		cfg.Enforcement.Default = strings.TrimSpace(raw.Enforcement.Default)
	}
	if meta.IsDefined("enforcement", "severity") {
		cfg.Enforcement.Severity = raw.Enforcement.Severity
	}
	if meta.IsDefined("events", "enabled") {
		cfg.Events.Enabled = raw.Events.Enabled
	}
	if meta.IsDefined("events", "url") {
		cfg.Events.URL = strings.TrimSpace(raw.Events.URL)
	}
	if meta.IsDefined("events", "path") {
		cfg.Events.Path = strings.TrimSpace(raw.Events.Path)
	}
	if meta.IsDefined("events", "namespace") {
		cfg.Events.Namespace = strings.TrimSpace(raw.Events.Namespace)
	}
	if meta.IsDefined("events", "event") {
		cfg.Events.Event = strings.TrimSpace(raw.Events.Event)
	}
	if meta.IsDefined("events", "timeout_seconds") {
		cfg.Events.TimeoutSeconds = raw.Events.TimeoutSeconds
	}
	if meta.IsDefined("events", "insecure_skip_verify") {
		cfg.Events.InsecureSkipVerify = raw.Events.InsecureSkipVerify
	}
	if meta.IsDefined("run", "id") {
		cfg.Run.ID = strings.TrimSpace(raw.Run.ID)
	}
	if meta.IsDefined("run", "dry_run") {
		cfg.Run.DryRun = raw.Run.DryRun
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load runner config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the runner cannot act on.
func (c Config) Validate() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log format %q is not one of text, json", c.Log.Format)
	}
	if err := validSeverity(c.Enforcement.Default); err != nil {
		return fmt.Errorf("enforcement default: %w", err)
	}
	for issueType, sev := range c.Enforcement.Severity {
		if err := validSeverity(sev); err != nil {
			return fmt.Errorf("enforcement severity for %q: %w", issueType, err)
		}
	}
	if c.Events.Enabled && strings.TrimSpace(c.Events.URL) == "" {
		return fmt.Errorf("events are enabled but no url is set")
	}
	if c.Events.TimeoutSeconds < 0 {
		return fmt.Errorf("events timeout must not be negative, got %d", c.Events.TimeoutSeconds)
	}
	return nil
}

func validSeverity(s string) error {
	if s != string(glossary.SeverityWarn) && s != string(glossary.SeverityError) {
		return fmt.Errorf("severity %q is not one of warn, error", s)
	}
	return nil
}

// GlossaryEnforcement compiles the string-typed settings down to the
// validator's enforcement table: the default severity fills every
// vocabulary issue type, then per-type overrides win.
func (c Config) GlossaryEnforcement() glossary.Enforcement {
	e := glossary.Enforcement{}
	def := glossary.Severity(c.Enforcement.Default)
	for _, t := range []glossary.IssueType{
		glossary.IssueUnknownSubject,
		glossary.IssueUnknownVerb,
		glossary.IssueUnknownInterface,
	} {
		e[t] = def
	}
	for issueType, sev := range c.Enforcement.Severity {
		e[glossary.IssueType(issueType)] = glossary.Severity(sev)
	}
	return e
}
