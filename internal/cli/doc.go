// Package cli is responsible for parsing command-line arguments, validating
// user input, and handling process-level concerns like exit codes. Flags
// are merged over the optional TOML config file, which in turn overlays the
// built-in defaults.
package cli
