// Package registry provides the central "glue" between step patterns and
// compiled Go handlers.
//
// The Registry stores step definitions: a regular expression over step
// text, the Go function that implements the step, its declared arity, and
// optional subject-verb-object metadata used for semantic validation.
//
// The registry is populated once at startup by module packs and is
// read-only afterwards; binding and execution never mutate it.
package registry
