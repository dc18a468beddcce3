// Package binder resolves pickle steps against the step definition registry
// and produces the run plans the executor consumes. Binding is a pure
// planning pass: it never invokes handlers and never mutates the registry.
package binder

import (
	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/pickle"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/internal/svo"
)

// Status classifies the binding outcome of one step. The value is terminal:
// nothing downstream re-resolves or upgrades it.
type Status string

const (
	// StatusMatched means exactly one definition matched the full step text.
	StatusMatched Status = "matched"
	// StatusUndefined means no definition matched.
	StatusUndefined Status = "undefined"
	// StatusAmbiguous means two or more definitions matched. Ambiguity always
	// blocks; there is no tie-breaking.
	StatusAmbiguous Status = "ambiguous"
	// StatusSynthetic marks steps produced by macro expansion, which bypass
	// matching entirely.
	StatusSynthetic Status = "synthetic"
)

// DefinitionSummary identifies a step definition in diagnostics without
// dragging the handler along.
type DefinitionSummary struct {
	ID       string
	Source   string
	Location loc.Location
}

// Summarize extracts the reportable identity of a definition.
func Summarize(def *registry.StepDefinition) DefinitionSummary {
	return DefinitionSummary{ID: def.ID, Source: def.Source, Location: def.Location}
}

// Match is the payload of a successfully matched step: the winning
// definition, the ordered captures, the arity verdict, and the extracted
// SVOI instance when the definition declares one. ExtractErr records a
// failed extraction; it blocks the suite the same way a structural
// mismatch does.
type Match struct {
	Definition *registry.StepDefinition
	Captures   []string
	ArityOK    bool
	SVOI       *svo.SVOI
	ExtractErr error
}

// BoundStep pairs a pickle step with its binding outcome. Exactly one of
// Match (matched) and Candidates (ambiguous) is populated.
type BoundStep struct {
	Step       pickle.Step
	Status     Status
	Match      *Match
	Candidates []DefinitionSummary
}

// RunPlan is one scenario ready for execution. Runnable is computed once at
// bind time from step structure alone: every step is synthetic or matched
// with compatible arity.
type RunPlan struct {
	Pickle   pickle.Pickle
	Steps    []BoundStep
	Runnable bool
}

// ID returns the plan's pickle identity.
func (p *RunPlan) ID() string { return p.Pickle.ID }

// Suite is the bound form of a whole run: the plans in input order, the
// aggregated diagnostics, and the overall verdict. Runnable is false as
// soon as any step has a binding issue or any semantic issue carries error
// severity.
type Suite struct {
	Plans       []RunPlan
	Runnable    bool
	Diagnostics Diagnostics
}
