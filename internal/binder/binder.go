package binder

import (
	"context"

	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/glossary"
	"github.com/vk/picklerun/internal/pickle"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/internal/svo"
)

// Candidate is one definition whose pattern matched a step's full text.
type Candidate struct {
	Definition *registry.StepDefinition
	Captures   []string
}

// Options carries the vocabulary a bind pass validates against. A nil
// Glossary disables semantic validation; binding issues are reported either
// way.
type Options struct {
	Glossary    *glossary.Glossary
	Interfaces  glossary.Interfaces
	Enforcement glossary.Enforcement
}

// MatchStep runs every definition's pattern against the step text and
// returns all full-text matches in registration order. Zero, one, and many
// results are all legitimate outcomes; the caller decides what they mean.
func MatchStep(text string, defs []*registry.StepDefinition) []Candidate {
	var out []Candidate
	for _, def := range defs {
		if captures, ok := def.Match(text); ok {
			out = append(out, Candidate{Definition: def, Captures: captures})
		}
	}
	return out
}

// BindStep resolves one step to its binding outcome. Synthetic steps bypass
// matching. A unique match is checked for arity compatibility (the handler
// declares either exactly the captured values or one extra leading
// parameter for the scenario context) and, when the definition carries an
// SVO template, extraction runs and its failure is recorded on the match.
func BindStep(step pickle.Step, defs []*registry.StepDefinition) BoundStep {
	if step.Synthetic {
		return BoundStep{Step: step, Status: StatusSynthetic}
	}

	candidates := MatchStep(step.Text, defs)
	switch len(candidates) {
	case 0:
		return BoundStep{Step: step, Status: StatusUndefined}
	case 1:
		// Fall through to the match path below.
	default:
		summaries := make([]DefinitionSummary, len(candidates))
		for i, c := range candidates {
			summaries[i] = Summarize(c.Definition)
		}
		return BoundStep{Step: step, Status: StatusAmbiguous, Candidates: summaries}
	}

	def := candidates[0].Definition
	captures := candidates[0].Captures
	match := &Match{
		Definition: def,
		Captures:   captures,
		ArityOK:    def.Arity == len(captures) || def.Arity == len(captures)+1,
	}

	if def.Meta != nil && def.Meta.SVO != nil {
		inst, err := svo.Extract(def.Meta.SVO, captures)
		if err != nil {
			match.ExtractErr = err
		} else {
			match.SVOI = inst
		}
	}

	return BoundStep{Step: step, Status: StatusMatched, Match: match}
}

// BindPickle binds every step of one pickle and computes the plan's
// structural verdict: runnable iff every step is synthetic or matched with
// compatible arity. The verdict is computed here, once; nothing downstream
// recomputes it.
func BindPickle(p pickle.Pickle, defs []*registry.StepDefinition) RunPlan {
	plan := RunPlan{Pickle: p, Steps: make([]BoundStep, 0, len(p.Steps)), Runnable: true}
	for _, step := range p.Steps {
		bound := BindStep(step, defs)
		if !stepRunnable(bound) {
			plan.Runnable = false
		}
		plan.Steps = append(plan.Steps, bound)
	}
	return plan
}

func stepRunnable(b BoundStep) bool {
	if b.Status == StatusSynthetic {
		return true
	}
	return b.Status == StatusMatched && b.Match.ArityOK
}

// BindSuite binds every pickle and aggregates diagnostics in plan order,
// then step order. When opts carries a glossary, each extracted SVOI is
// validated and the issues are stamped with enforcement severities. The
// suite is runnable only with zero binding issues and zero error-severity
// semantic issues.
func BindSuite(ctx context.Context, pickles []pickle.Pickle, defs []*registry.StepDefinition, opts Options) *Suite {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Binding suite.", "pickles", len(pickles), "definitions", len(defs))

	suite := &Suite{Plans: make([]RunPlan, 0, len(pickles))}
	d := &suite.Diagnostics

	for _, p := range pickles {
		plan := BindPickle(p, defs)
		suite.Plans = append(suite.Plans, plan)

		for _, bound := range plan.Steps {
			collectStep(d, p.ID, bound, opts)
		}
	}

	suite.Runnable = !d.Blocking()

	logger.Info("Suite bound.",
		"plans", len(suite.Plans),
		"runnable", suite.Runnable,
		"undefined", d.Counts.Undefined,
		"ambiguous", d.Counts.Ambiguous,
		"invalid_arity", d.Counts.InvalidArity,
		"svo_warnings", d.Counts.SVOWarnings,
		"svo_errors", d.Counts.SVOErrors,
	)
	return suite
}

func collectStep(d *Diagnostics, pickleID string, bound BoundStep, opts Options) {
	switch bound.Status {
	case StatusUndefined:
		d.Undefined = append(d.Undefined, UndefinedStep{
			PickleID: pickleID,
			StepText: bound.Step.Text,
			Location: bound.Step.Location,
		})
		d.Counts.Undefined++

	case StatusAmbiguous:
		d.Ambiguous = append(d.Ambiguous, AmbiguousStep{
			PickleID:   pickleID,
			StepText:   bound.Step.Text,
			Location:   bound.Step.Location,
			Candidates: bound.Candidates,
		})
		d.Counts.Ambiguous++

	case StatusMatched:
		if !bound.Match.ArityOK {
			d.InvalidArity = append(d.InvalidArity, ArityMismatch{
				PickleID:      pickleID,
				StepText:      bound.Step.Text,
				Location:      bound.Step.Location,
				Definition:    Summarize(bound.Match.Definition),
				DeclaredArity: bound.Match.Definition.Arity,
				Captures:      len(bound.Match.Captures),
			})
			d.Counts.InvalidArity++
		}
		collectSVO(d, bound, opts)
	}
}

func collectSVO(d *Diagnostics, bound BoundStep, opts Options) {
	if bound.Match.ExtractErr != nil {
		issue := glossary.Issue{
			Type:     glossary.IssueExtractionFailed,
			Detail:   bound.Match.ExtractErr.Error(),
			StepText: bound.Step.Text,
			Location: bound.Step.Location,
			Severity: glossary.SeverityError,
		}
		d.SVOIssues = append(d.SVOIssues, issue)
		d.Counts.SVOErrors++
		return
	}

	if bound.Match.SVOI == nil || opts.Glossary == nil {
		return
	}

	res := glossary.Validate(opts.Glossary, opts.Interfaces, bound.Match.SVOI)
	for _, issue := range opts.Enforcement.Apply(res.Issues) {
		issue.StepText = bound.Step.Text
		issue.Location = bound.Step.Location
		d.SVOIssues = append(d.SVOIssues, issue)
		if issue.Severity == glossary.SeverityError {
			d.Counts.SVOErrors++
		} else {
			d.Counts.SVOWarnings++
		}
	}
}
