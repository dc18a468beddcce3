// Package executor runs bound scenario plans. It owns the scenario context
// and the capability stores; handlers only ever see the context value they
// are passed.
//
// The core loop is deliberately single threaded. Scenario state is a plain
// map owned by one goroutine, and scenarios run strictly in plan order, so
// no step ever observes another scenario's state.
package executor

import (
	"context"

	"github.com/vk/picklerun/internal/adapter"
	"github.com/vk/picklerun/internal/binder"
	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/events"
	"github.com/vk/picklerun/internal/glossary"
)

// Options configures an Executor. Every field has a usable zero default.
type Options struct {
	Adapters   *adapter.Registry
	Interfaces glossary.Interfaces
	Sink       events.Sink
	RunID      string
}

// Executor executes run plans sequentially, one scenario at a time.
type Executor struct {
	adapters   *adapter.Registry
	ifaces     glossary.Interfaces
	sink       events.Sink
	runID      string
	persistent *adapter.Store
}

// New creates an Executor. Persistent capabilities are scoped to the
// Executor instance: one suite, one store.
func New(opts Options) *Executor {
	e := &Executor{
		adapters:   opts.Adapters,
		ifaces:     opts.Interfaces,
		sink:       opts.Sink,
		runID:      opts.RunID,
		persistent: adapter.NewStore(),
	}
	if e.adapters == nil {
		e.adapters = adapter.NewRegistry()
	}
	if e.sink == nil {
		e.sink = events.NopSink{}
	}
	return e
}

// ExecuteSuite runs every plan in order. A failing scenario never stops the
// suite; fail-fast applies within a scenario only. Suite-lived capabilities
// are destroyed after the last scenario.
func (e *Executor) ExecuteSuite(ctx context.Context, plans []binder.RunPlan) SuiteResult {
	logger := ctxlog.FromContext(ctx)
	logger.Info("🚀 Starting suite execution", "scenarios", len(plans), "run_id", e.runID)

	result := SuiteResult{Passed: true}
	for i := range plans {
		sc := e.ExecuteScenario(ctx, &plans[i], nil)
		result.add(sc)
		if sc.Status != StatusPassed {
			result.Passed = false
		}
	}
	result.CleanupErrors = e.teardownCapabilities(ctx, e.persistent)

	logger.Info("🏁 Suite finished",
		"passed", result.Counts.Passed,
		"failed", result.Counts.Failed,
		"pending", result.Counts.Pending,
		"skipped", result.Counts.Skipped)
	return result
}

// ExecuteScenario runs one plan against a fresh scenario context (or the
// given initial one). The first step that does not pass skips the rest.
// Wrapper steps are never invoked: their status is rolled up from the span
// of steps their macro generated.
func (e *Executor) ExecuteScenario(ctx context.Context, plan *binder.RunPlan, initial map[string]any) ScenarioResult {
	logger := ctxlog.FromContext(ctx).With("pickle_id", plan.ID(), "scenario", plan.Pickle.Name)
	ctx = ctxlog.WithLogger(ctx, logger)

	res := ScenarioResult{
		PickleID: plan.ID(),
		Name:     plan.Pickle.Name,
		URI:      plan.Pickle.URI,
		Steps:    make([]StepResult, len(plan.Steps)),
	}

	if !plan.Runnable {
		logger.Warn("Scenario has unresolved steps, skipping.")
		for i := range plan.Steps {
			res.Steps[i] = skippedResult(plan.Steps[i])
		}
		res.Status = StatusSkipped
		return res
	}

	logger.Info("▶️ Starting scenario")

	scenario := initial
	if scenario == nil {
		scenario = map[string]any{}
	}
	caps := adapter.NewStore()
	capIndex := map[string]any{}
	scenario[CapabilityKey] = capIndex

	failed := false
	for i := range plan.Steps {
		b := &plan.Steps[i]
		r := StepResult{
			Text:      b.Step.Text,
			Location:  b.Step.Location,
			Synthetic: b.Step.Synthetic,
			Wrapper:   b.Step.Wrapper(),
		}

		switch {
		case failed:
			r.Status = StatusSkipped

		case r.Wrapper:
			// Status is rolled up from the child span after the loop.

		case b.Status == binder.StatusSynthetic:
			// Synthetic steps without a child span have nothing to invoke.
			r.Status = StatusPassed

		default:
			if b.Match.SVOI != nil {
				e.emit(ctx, plan, b)
				if b.Match.SVOI.Interface != "" {
					c, err := e.ensureCapability(ctx, b.Match.SVOI, caps)
					if err != nil {
						logger.Error("🔥 Capability provisioning failed", "step", b.Step.Text, "error", err)
						r.Status = StatusFailed
						r.Err = &StepError{Type: FailureProvisioning, Message: err.Error()}
						res.Steps[i] = r
						failed = true
						continue
					}
					capIndex[c.Key] = c.Impl
				}
			}

			logger.Debug("▶️ Invoking step", "text", b.Step.Text)
			inv := InvokeStep(ctx, b.Match, scenario)
			scenario = inv.Scenario
			if scenario == nil {
				scenario = map[string]any{}
			}
			scenario[CapabilityKey] = capIndex

			r.Status = inv.Status
			r.Err = inv.Err
			switch inv.Status {
			case StatusFailed:
				logger.Error("🔥 Step failed", "text", b.Step.Text, "error", inv.Err.Message)
				failed = true
			case StatusPending:
				logger.Info("Step pending.", "text", b.Step.Text)
				failed = true
			}
		}
		res.Steps[i] = r
	}

	// Inner wrappers sit after their enclosing wrapper, so walking backwards
	// resolves them before the spans that contain them are read.
	for i := len(plan.Steps) - 1; i >= 0; i-- {
		st := plan.Steps[i].Step
		if !st.Wrapper() || res.Steps[i].Status == StatusSkipped {
			continue
		}
		end := i + 1 + st.Macro.ChildCount
		if end > len(res.Steps) {
			end = len(res.Steps)
		}
		res.Steps[i].Status = rollup(res.Steps[i+1 : end])
	}

	res.Status = scenarioStatus(plan.Steps, res.Steps)
	res.CleanupErrors = e.teardownCapabilities(ctx, caps)

	logger.Info("🏁 Scenario finished", "status", res.Status)
	return res
}

func (e *Executor) emit(ctx context.Context, plan *binder.RunPlan, b *binder.BoundStep) {
	s := b.Match.SVOI
	ev := events.Event{
		RunID:     e.runID,
		PickleID:  plan.ID(),
		StepText:  b.Step.Text,
		Location:  b.Step.Location,
		Subject:   string(s.Subject),
		Verb:      string(s.Verb),
		Object:    s.Object,
		Interface: string(s.Interface),
	}
	if cfg, ok := e.ifaces[s.Interface]; ok {
		ev.InterfaceType = string(cfg.Type)
	}
	e.sink.Emit(ctx, ev)
}

// rollup folds a wrapper's child span into one status: a failure anywhere
// fails the wrapper, otherwise a pending child leaves it pending.
func rollup(span []StepResult) StepStatus {
	pendingSeen := false
	for _, r := range span {
		switch r.Status {
		case StatusFailed:
			return StatusFailed
		case StatusPending:
			pendingSeen = true
		}
	}
	if pendingSeen {
		return StatusPending
	}
	return StatusPassed
}

// scenarioStatus derives the scenario verdict from its non-wrapper steps.
// Wrappers are bookkeeping; counting them would double-weigh their span.
func scenarioStatus(steps []binder.BoundStep, results []StepResult) StepStatus {
	pendingSeen, skippedSeen := false, false
	for i := range results {
		if steps[i].Step.Wrapper() {
			continue
		}
		switch results[i].Status {
		case StatusFailed:
			return StatusFailed
		case StatusPending:
			pendingSeen = true
		case StatusSkipped:
			skippedSeen = true
		}
	}
	if pendingSeen {
		return StatusPending
	}
	if skippedSeen {
		return StatusSkipped
	}
	return StatusPassed
}

func skippedResult(b binder.BoundStep) StepResult {
	return StepResult{
		Text:      b.Step.Text,
		Location:  b.Step.Location,
		Synthetic: b.Step.Synthetic,
		Wrapper:   b.Step.Wrapper(),
		Status:    StatusSkipped,
	}
}
