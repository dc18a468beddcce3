package testutil

import "github.com/vk/picklerun/internal/config"

// WithDryRun makes the harness compile and validate without executing.
func WithDryRun() func(*config.Config) {
	return func(c *config.Config) { c.Run.DryRun = true }
}

// WithEnforcement overrides the default severity for vocabulary issues.
func WithEnforcement(severity string) func(*config.Config) {
	return func(c *config.Config) { c.Enforcement.Default = severity }
}

// WithRunID pins the identifier stamped on published events.
func WithRunID(id string) func(*config.Config) {
	return func(c *config.Config) { c.Run.ID = id }
}
