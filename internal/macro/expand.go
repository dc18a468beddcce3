package macro

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/pickle"
)

// maxDepth bounds macro-in-macro expansion. Templates that keep producing
// macro invocations past this depth are treated as a definition error.
const maxDepth = 8

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// Expand rewrites every macro-invoking step into a synthetic wrapper
// followed by the generated steps. Steps no macro matches pass through
// untouched. The first failure aborts the whole pass: a partially expanded
// suite must never reach the binder.
//
// A wrapper's child count is the flattened number of steps generated for
// it, including steps produced by nested macros, so the executor can roll
// the wrapper's result up from the span that follows it.
func Expand(ctx context.Context, pickles []pickle.Pickle, reg *Registry) ([]pickle.Pickle, error) {
	logger := ctxlog.FromContext(ctx)

	out := make([]pickle.Pickle, 0, len(pickles))
	expanded := 0
	for _, p := range pickles {
		steps := make([]pickle.Step, 0, len(p.Steps))
		for _, step := range p.Steps {
			flat, wasMacro, err := expandStep(step, reg, 0)
			if err != nil {
				return nil, fmt.Errorf("pickle %q: %w", p.ID, err)
			}
			if wasMacro {
				expanded++
			}
			steps = append(steps, flat...)
		}
		p.Steps = steps
		out = append(out, p)
	}

	if expanded > 0 {
		logger.Debug("Macro expansion complete.", "invocations", expanded)
	}
	return out, nil
}

// expandStep returns the flattened steps one input step becomes: either the
// step itself, or a wrapper plus its generated span.
func expandStep(step pickle.Step, reg *Registry, depth int) ([]pickle.Step, bool, error) {
	if step.Synthetic {
		return []pickle.Step{step}, false, nil
	}

	matches := reg.match(step.Text)
	switch len(matches) {
	case 0:
		return []pickle.Step{step}, false, nil
	case 1:
		// Expanded below.
	default:
		return nil, false, fmt.Errorf("step %q (%s) matches %d macros; macro patterns must be unambiguous",
			step.Text, step.Location, len(matches))
	}

	if depth >= maxDepth {
		return nil, false, fmt.Errorf("step %q (%s) exceeds macro nesting depth %d",
			step.Text, step.Location, maxDepth)
	}
	if step.Argument != nil {
		return nil, false, fmt.Errorf("step %q (%s) invokes a macro but carries a block argument; macros take captures only",
			step.Text, step.Location)
	}

	m := matches[0]
	captures, _ := m.Match(step.Text)

	var children []pickle.Step
	for _, tpl := range m.Steps {
		text, err := substitute(tpl, captures)
		if err != nil {
			return nil, false, fmt.Errorf("macro %q step %q: %w", m.Name, tpl, err)
		}

		child := pickle.Step{
			Text:     text,
			Location: step.Location,
			Macro:    &pickle.MacroRef{Name: m.Name},
		}
		flat, _, err := expandStep(child, reg, depth+1)
		if err != nil {
			return nil, false, err
		}
		children = append(children, flat...)
	}

	wrapper := pickle.Step{
		Text:      step.Text,
		Location:  step.Location,
		Synthetic: true,
		Macro:     &pickle.MacroRef{Name: m.Name, ChildCount: len(children)},
	}
	return append([]pickle.Step{wrapper}, children...), true, nil
}

// substitute replaces $1..$n in a template with the wrapper's captures.
func substitute(template string, captures []string) (string, error) {
	var substErr error
	out := placeholderRe.ReplaceAllStringFunc(template, func(ref string) string {
		n, err := strconv.Atoi(ref[1:])
		if err != nil || n < 1 || n > len(captures) {
			if substErr == nil {
				substErr = fmt.Errorf("placeholder %s out of range: pattern captures %d value(s)", ref, len(captures))
			}
			return ref
		}
		return captures[n-1]
	})
	return out, substErr
}
