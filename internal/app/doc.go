// Package app wires the runner together: logging, the step definition and
// adapter registries, vocabulary and pickle loading, compilation, and
// execution. It owns the exit-code policy; main only translates codes into
// process exits.
package app
