// Package svo models the subject-verb-object-interface mapping a step
// definition may declare and extracts concrete instances of it from matched
// steps. Extraction is pure: no I/O, no registry access, no policy.
package svo

import "strings"

// Keyword is a vocabulary token in canonical form: trimmed, lowercased,
// inner whitespace collapsed to single dashes. Keywords compare
// structurally, so two spellings of the same token are equal once
// normalized.
type Keyword string

// Normalize converts free text to keyword form. It is idempotent: applying
// it to an already canonical keyword returns the same keyword.
func Normalize(text string) Keyword {
	fields := strings.Fields(strings.ToLower(text))
	return Keyword(strings.Join(fields, "-"))
}

// Value is one slot of a template: either a literal or a 1-indexed
// reference to a capture group of the step pattern. The zero Value means
// the slot is absent.
type Value struct {
	ref int
	lit any
}

// Lit returns a literal template value.
func Lit(v any) Value { return Value{lit: v} }

// Ref returns a positional reference to the n-th capture group, 1-indexed.
func Ref(n int) Value { return Value{ref: n} }

// IsZero reports whether the slot is absent.
func (v Value) IsZero() bool { return v.ref == 0 && v.lit == nil }

// Template is the declared subject-verb-object-interface mapping of a step
// definition. Object is optional; the other slots are required for the
// mapping to be meaningful.
type Template struct {
	Subject   Value
	Verb      Value
	Object    Value
	Interface Value
}

// SVOI is one extracted instance: who acts, how, on what, through which
// interface. Subject is normalized; Verb and Interface carry the template
// value as written; Object keeps whatever shape the template produced.
type SVOI struct {
	Subject   Keyword
	Verb      Keyword
	Object    any
	Interface Keyword
}

// HasObject reports whether the instance carries an object slot.
func (s *SVOI) HasObject() bool { return s != nil && s.Object != nil }
