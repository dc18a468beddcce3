package binder

import (
	"fmt"

	"github.com/vk/picklerun/internal/glossary"
	"github.com/vk/picklerun/internal/loc"
)

// UndefinedStep reports a step no definition matched.
type UndefinedStep struct {
	PickleID string
	StepText string
	Location loc.Location
}

func (u UndefinedStep) String() string {
	return fmt.Sprintf("undefined step %q (%s)", u.StepText, u.Location)
}

// AmbiguousStep reports a step more than one definition matched.
type AmbiguousStep struct {
	PickleID   string
	StepText   string
	Location   loc.Location
	Candidates []DefinitionSummary
}

func (a AmbiguousStep) String() string {
	s := fmt.Sprintf("ambiguous step %q (%s) matches %d definitions:", a.StepText, a.Location, len(a.Candidates))
	for _, c := range a.Candidates {
		s += fmt.Sprintf("\n  - %q (%s)", c.Source, c.Location)
	}
	return s
}

// ArityMismatch reports a matched step whose handler cannot accept the
// captures the pattern produced.
type ArityMismatch struct {
	PickleID      string
	StepText      string
	Location      loc.Location
	Definition    DefinitionSummary
	DeclaredArity int
	Captures      int
}

func (m ArityMismatch) String() string {
	return fmt.Sprintf("step %q (%s): handler for %q declares %d parameter(s) but the pattern captures %d value(s); want %d or %d",
		m.StepText, m.Location, m.Definition.Source, m.DeclaredArity, m.Captures, m.Captures, m.Captures+1)
}

// Counts summarizes a suite's diagnostics for logs and reports.
type Counts struct {
	Undefined    int
	Ambiguous    int
	InvalidArity int
	SVOWarnings  int
	SVOErrors    int
}

// Diagnostics aggregates every finding of a bind pass, ordered by plan and
// then by step position within the plan.
type Diagnostics struct {
	Undefined    []UndefinedStep
	Ambiguous    []AmbiguousStep
	InvalidArity []ArityMismatch
	SVOIssues    []glossary.Issue
	Counts       Counts
}

// Empty reports whether the bind pass found nothing at all to say.
func (d *Diagnostics) Empty() bool {
	return d.Counts == Counts{}
}

// Blocking reports whether any finding prevents execution: structural
// issues always do, semantic issues only at error severity.
func (d *Diagnostics) Blocking() bool {
	return d.Counts.Undefined > 0 ||
		d.Counts.Ambiguous > 0 ||
		d.Counts.InvalidArity > 0 ||
		d.Counts.SVOErrors > 0
}

// Lines renders every finding as human-readable text, in diagnostic order.
func (d *Diagnostics) Lines() []string {
	var out []string
	for _, u := range d.Undefined {
		out = append(out, u.String())
	}
	for _, a := range d.Ambiguous {
		out = append(out, a.String())
	}
	for _, m := range d.InvalidArity {
		out = append(out, m.String())
	}
	for _, issue := range d.SVOIssues {
		out = append(out, fmt.Sprintf("[%s] %s", issue.Severity, glossary.FormatIssue(issue)))
	}
	return out
}
