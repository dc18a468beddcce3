// Package pickle defines the compiled scenario model consumed by the
// runtime. Pickles arrive fully parsed from an external front end; nothing
// in this package reads feature text.
package pickle

import "github.com/vk/picklerun/internal/loc"

// Pickle is one executable scenario: an ordered list of steps with the
// identity needed to report results against the source document.
type Pickle struct {
	ID    string
	Name  string
	URI   string
	Steps []Step
}

// Step is a single scenario step. Synthetic steps are produced by macro
// expansion and never match step definitions; a synthetic step with a
// MacroRef child count is a wrapper whose result rolls up from the steps
// that follow it.
type Step struct {
	Text      string
	Location  loc.Location
	Argument  *Argument
	Synthetic bool
	Macro     *MacroRef
}

// MacroRef ties a step to the macro that produced it. On a wrapper step
// ChildCount is the number of generated steps that follow; on a generated
// step it is zero.
type MacroRef struct {
	Name       string
	ChildCount int
}

// Wrapper reports whether the step stands in for an expanded macro
// invocation.
func (s Step) Wrapper() bool {
	return s.Synthetic && s.Macro != nil && s.Macro.ChildCount > 0
}

// Argument is the optional block argument attached to a step. Exactly one
// of Table or Doc is set.
type Argument struct {
	Table [][]string
	Doc   *DocString
}

// DocString is a free-form text block argument.
type DocString struct {
	MediaType string
	Content   string
}
