package binder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/picklerun/internal/glossary"
	"github.com/vk/picklerun/internal/loc"
	"github.com/vk/picklerun/internal/pickle"
	"github.com/vk/picklerun/internal/registry"
	"github.com/vk/picklerun/internal/svo"
)

func defAt(t *testing.T, r *registry.Registry, pattern string, handler any, line int, meta *registry.Metadata) *registry.StepDefinition {
	t.Helper()
	def, err := r.Register(pattern, handler, loc.Location{URI: "steps/pack.go", Line: line}, meta)
	require.NoError(t, err)
	return def
}

func step(text string, line int) pickle.Step {
	return pickle.Step{Text: text, Location: loc.Location{URI: "f.feature", Line: line}}
}

func onePickle(id string, steps ...pickle.Step) pickle.Pickle {
	return pickle.Pickle{ID: id, Name: id, URI: "f.feature", Steps: steps}
}

func TestMatchStep_RegistrationOrder(t *testing.T) {
	t.Parallel()
	r := registry.New()
	second := defAt(t, r, `I have .+`, func() {}, 2, nil)
	first := defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)

	got := MatchStep("I have 5 cukes", r.All())
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].Definition.ID)
	assert.Equal(t, first.ID, got[1].Definition.ID)
	assert.Equal(t, []string{"5"}, got[1].Captures)
}

func TestBindStep_Undefined(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)

	bound := BindStep(step("I have no idea", 3), r.All())
	assert.Equal(t, StatusUndefined, bound.Status)
	assert.Nil(t, bound.Match)
}

func TestBindStep_Matched(t *testing.T) {
	t.Parallel()
	r := registry.New()
	def := defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)

	bound := BindStep(step("I have 5 cukes", 3), r.All())
	require.Equal(t, StatusMatched, bound.Status)
	require.NotNil(t, bound.Match)
	assert.Equal(t, def.ID, bound.Match.Definition.ID)
	assert.Equal(t, []string{"5"}, bound.Match.Captures)
	assert.True(t, bound.Match.ArityOK)
}

func TestBindStep_AmbiguousAlwaysBlocks(t *testing.T) {
	t.Parallel()
	r := registry.New()
	// Both match; one even has the "right" arity. No tie-breaking happens.
	defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)
	defAt(t, r, `I have .+`, func() {}, 2, nil)

	bound := BindStep(step("I have 5 cukes", 3), r.All())
	require.Equal(t, StatusAmbiguous, bound.Status)
	assert.Nil(t, bound.Match)
	require.Len(t, bound.Candidates, 2)
	assert.Equal(t, `I have (\d+) cukes`, bound.Candidates[0].Source)
	assert.Equal(t, `I have .+`, bound.Candidates[1].Source)
}

func TestBindStep_ArityRule(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name    string
		handler any
		ok      bool
	}{
		{"captures only", func(a, b string) {}, true},
		{"context plus captures", func(sc map[string]any, a, b string) {}, true},
		{"too few", func(a string) {}, false},
		{"too many", func(sc map[string]any, a, b, c string) {}, false},
		{"zero for two captures", func() {}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := registry.New()
			defAt(t, r, `(\w+) meets (\w+)`, tc.handler, 1, nil)

			bound := BindStep(step("alice meets bob", 2), r.All())
			require.Equal(t, StatusMatched, bound.Status)
			assert.Equal(t, tc.ok, bound.Match.ArityOK)
		})
	}
}

func TestBindStep_SyntheticBypassesMatching(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `user logs in`, func() {}, 1, nil)

	// Even though the text would match, synthetic steps never bind.
	s := pickle.Step{
		Text:      "user logs in",
		Synthetic: true,
		Macro:     &pickle.MacroRef{Name: "login", ChildCount: 2},
	}
	bound := BindStep(s, r.All())
	assert.Equal(t, StatusSynthetic, bound.Status)
	assert.Nil(t, bound.Match)
}

func TestBindStep_ExtractsSVOI(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks (.+)`, func(who, what string) {}, 1, &registry.Metadata{
		Interface: "checkout",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("click"), Object: svo.Ref(2)},
	})

	bound := BindStep(step("Alice clicks #submit", 2), r.All())
	require.Equal(t, StatusMatched, bound.Status)
	require.NotNil(t, bound.Match.SVOI)
	assert.Equal(t, svo.Keyword("alice"), bound.Match.SVOI.Subject)
	assert.Equal(t, svo.Keyword("click"), bound.Match.SVOI.Verb)
	assert.Equal(t, "#submit", bound.Match.SVOI.Object)
	assert.Equal(t, svo.Keyword("checkout"), bound.Match.SVOI.Interface)
	assert.NoError(t, bound.Match.ExtractErr)
}

func TestBindStep_ExtractionFailureRecorded(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks`, func(who string) {}, 1, &registry.Metadata{
		Interface: "checkout",
		// Placeholder $4 cannot resolve: the pattern captures one value.
		SVO: &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("click"), Object: svo.Ref(4)},
	})

	bound := BindStep(step("alice clicks", 2), r.All())
	require.Equal(t, StatusMatched, bound.Status)
	assert.True(t, bound.Match.ArityOK)
	assert.Nil(t, bound.Match.SVOI)
	require.Error(t, bound.Match.ExtractErr)
}

func TestBindPickle_Runnable(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)
	defAt(t, r, `I eat (\d+)`, func(sc map[string]any, n string) any { return nil }, 2, nil)

	plan := BindPickle(onePickle("p1",
		step("I have 5 cukes", 1),
		step("I eat 2", 2),
	), r.All())

	assert.True(t, plan.Runnable)
	assert.Equal(t, "p1", plan.ID())
	require.Len(t, plan.Steps, 2)
}

func TestBindPickle_UndefinedBlocksPlan(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 1, nil)

	plan := BindPickle(onePickle("p1",
		step("I have 5 cukes", 1),
		step("I do something unheard of", 2),
	), r.All())

	assert.False(t, plan.Runnable)
}

func TestBindPickle_ArityMismatchBlocksPlan(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func() {}, 1, nil) // 0 params, 1 capture

	plan := BindPickle(onePickle("p1", step("I have 5 cukes", 1)), r.All())
	assert.False(t, plan.Runnable)
}

func TestBindSuite_DiagnosticsOrder(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `known step`, func() {}, 1, nil)

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("first mystery", 1), step("known step", 2), step("second mystery", 3)),
		onePickle("p2", step("third mystery", 1)),
	}, r.All(), Options{})

	require.Len(t, suite.Diagnostics.Undefined, 3)
	assert.Equal(t, "first mystery", suite.Diagnostics.Undefined[0].StepText)
	assert.Equal(t, "second mystery", suite.Diagnostics.Undefined[1].StepText)
	assert.Equal(t, "third mystery", suite.Diagnostics.Undefined[2].StepText)
	assert.Equal(t, "p2", suite.Diagnostics.Undefined[2].PickleID)
	assert.Equal(t, 3, suite.Diagnostics.Counts.Undefined)
	assert.False(t, suite.Runnable)
}

func TestBindSuite_CleanSuiteIsRunnable(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `all good`, func() {}, 1, nil)

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("all good", 1)),
	}, r.All(), Options{})

	assert.True(t, suite.Runnable)
	assert.True(t, suite.Diagnostics.Empty())
	require.Len(t, suite.Plans, 1)
	assert.True(t, suite.Plans[0].Runnable)
}

func svoOptions() Options {
	g := glossary.New()
	g.Subjects["alice"] = glossary.SubjectInfo{}
	g.Verbs["web"] = map[svo.Keyword]glossary.VerbInfo{"click": {}}
	return Options{
		Glossary:   g,
		Interfaces: glossary.Interfaces{"checkout": {Type: "web", Adapter: "http"}},
	}
}

func TestBindSuite_SVOWarningsDoNotBlock(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks`, func(who string) {}, 1, &registry.Metadata{
		Interface: "checkout",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("click")},
	})

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("bob clicks", 1)), // bob is not in the glossary
	}, r.All(), svoOptions())

	require.Len(t, suite.Diagnostics.SVOIssues, 1)
	issue := suite.Diagnostics.SVOIssues[0]
	assert.Equal(t, glossary.IssueUnknownSubject, issue.Type)
	assert.Equal(t, glossary.SeverityWarn, issue.Severity)
	assert.Equal(t, "bob clicks", issue.StepText)
	assert.Equal(t, 1, suite.Diagnostics.Counts.SVOWarnings)
	// Warnings never block.
	assert.True(t, suite.Runnable)
}

func TestBindSuite_SVOErrorBlocks(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks`, func(who string) {}, 1, &registry.Metadata{
		Interface: "checkout",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("click")},
	})

	opts := svoOptions()
	opts.Enforcement = glossary.Enforcement{glossary.IssueUnknownSubject: glossary.SeverityError}

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("bob clicks", 1)),
	}, r.All(), opts)

	assert.Equal(t, 1, suite.Diagnostics.Counts.SVOErrors)
	assert.False(t, suite.Runnable)
	// The plan itself is structurally sound; the suite verdict is what blocks.
	assert.True(t, suite.Plans[0].Runnable)
}

func TestBindSuite_ExtractionFailureBlocks(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks`, func(who string) {}, 1, &registry.Metadata{
		Interface: "checkout",
		SVO:       &svo.Template{Subject: svo.Ref(9), Verb: svo.Lit("click")},
	})

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("alice clicks", 1)),
	}, r.All(), svoOptions())

	require.Len(t, suite.Diagnostics.SVOIssues, 1)
	issue := suite.Diagnostics.SVOIssues[0]
	assert.Equal(t, glossary.IssueExtractionFailed, issue.Type)
	assert.Equal(t, glossary.SeverityError, issue.Severity)
	assert.Contains(t, issue.Detail, "out of range")
	assert.False(t, suite.Runnable)
}

func TestBindSuite_NoGlossarySkipsValidation(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `(\w+) clicks`, func(who string) {}, 1, &registry.Metadata{
		Interface: "nowhere",
		SVO:       &svo.Template{Subject: svo.Ref(1), Verb: svo.Lit("zap")},
	})

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("bob clicks", 1)),
	}, r.All(), Options{})

	assert.Empty(t, suite.Diagnostics.SVOIssues)
	assert.True(t, suite.Runnable)
}

func TestBindSuite_StepsWithoutSVOSkippedSilently(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `plain step`, func() {}, 1, nil)

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("plain step", 1)),
	}, r.All(), svoOptions())

	assert.Empty(t, suite.Diagnostics.SVOIssues)
	assert.True(t, suite.Runnable)
}

func TestBindSuite_AmbiguousDiagnosticListsCandidates(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func(n string) {}, 10, nil)
	defAt(t, r, `I have .+`, func() {}, 20, nil)

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("I have 5 cukes", 1)),
	}, r.All(), Options{})

	require.Len(t, suite.Diagnostics.Ambiguous, 1)
	amb := suite.Diagnostics.Ambiguous[0]
	require.Len(t, amb.Candidates, 2)
	assert.Equal(t, 10, amb.Candidates[0].Location.Line)
	assert.Equal(t, 20, amb.Candidates[1].Location.Line)
	assert.False(t, suite.Runnable)
}

func TestBindSuite_InvalidArityDiagnostic(t *testing.T) {
	t.Parallel()
	r := registry.New()
	defAt(t, r, `I have (\d+) cukes`, func(a, b, c string) {}, 1, nil)

	suite := BindSuite(context.Background(), []pickle.Pickle{
		onePickle("p1", step("I have 5 cukes", 4)),
	}, r.All(), Options{})

	require.Len(t, suite.Diagnostics.InvalidArity, 1)
	m := suite.Diagnostics.InvalidArity[0]
	assert.Equal(t, 3, m.DeclaredArity)
	assert.Equal(t, 1, m.Captures)
	assert.Contains(t, m.String(), "want 1 or 2")
	assert.False(t, suite.Runnable)
}
