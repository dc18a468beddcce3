package glossary

import (
	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/svo"
)

// IssueType names one kind of semantic finding.
type IssueType string

const (
	IssueUnknownSubject     IssueType = "unknown-subject"
	IssueUnknownVerb        IssueType = "unknown-verb"
	IssueUnknownInterface   IssueType = "unknown-interface"
	IssueExtractionFailed   IssueType = "extraction-failed"
	IssueProvisioningFailed IssueType = "provisioning-failed"
)

// Severity is assigned by the caller, not by Validate: whether an unknown
// verb merely warns or blocks the run is enforcement policy, not a property
// of the vocabulary.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// Issue is one semantic or structural finding against a step.
type Issue struct {
	Type       IssueType
	Value      string
	Scope      string
	Detail     string
	Known      []string
	Suggestion string
	StepText   string
	Location   loc.Location
	Severity   Severity
}

// Result is the outcome of validating one SVOI instance.
type Result struct {
	Valid  bool
	Issues []Issue
}

// Validate checks one extracted instance against the vocabulary. The three
// checks are independent and all of them run: subject in the glossary, verb
// in the verb set of the step's interface type, interface configured. The
// verb check is skipped when the interface type cannot be resolved, since
// there is no set to check against. Issues come back without severity.
func Validate(g *Glossary, ifaces Interfaces, inst *svo.SVOI) Result {
	if inst == nil {
		return Result{Valid: true}
	}

	var issues []Issue

	if _, ok := g.Subjects[inst.Subject]; !ok {
		known := g.SubjectNames()
		issues = append(issues, Issue{
			Type:       IssueUnknownSubject,
			Value:      string(inst.Subject),
			Known:      known,
			Suggestion: suggest(string(inst.Subject), known),
		})
	}

	cfg, ifaceKnown := ifaces[inst.Interface]

	if ifaceKnown {
		if _, ok := g.Verbs[cfg.Type][inst.Verb]; !ok {
			known := g.VerbNames(cfg.Type)
			issues = append(issues, Issue{
				Type:       IssueUnknownVerb,
				Value:      string(inst.Verb),
				Scope:      string(cfg.Type),
				Known:      known,
				Suggestion: suggest(string(inst.Verb), known),
			})
		}
	}

	if !ifaceKnown {
		known := ifaces.Names()
		issues = append(issues, Issue{
			Type:       IssueUnknownInterface,
			Value:      string(inst.Interface),
			Known:      known,
			Suggestion: suggest(string(inst.Interface), known),
		})
	}

	return Result{Valid: len(issues) == 0, Issues: issues}
}

// Enforcement maps issue types to the severity the run treats them with.
// Unlisted types default to warn; extraction failures are structural and
// always block regardless of policy.
type Enforcement map[IssueType]Severity

// SeverityFor resolves the effective severity of an issue type.
func (e Enforcement) SeverityFor(t IssueType) Severity {
	if t == IssueExtractionFailed {
		return SeverityError
	}
	if s, ok := e[t]; ok {
		return s
	}
	return SeverityWarn
}

// Apply stamps enforcement severities onto a slice of issues.
func (e Enforcement) Apply(issues []Issue) []Issue {
	for i := range issues {
		issues[i].Severity = e.SeverityFor(issues[i].Type)
	}
	return issues
}
