package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/vk/picklerun/internal/binder"
	"github.com/vk/picklerun/internal/compiler"
	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/events"
	"github.com/vk/picklerun/internal/executor"
	"github.com/vk/picklerun/internal/glossary"
	"github.com/vk/picklerun/internal/pickle"
)

// Exit codes of the runner. Planning failures (unloadable inputs, macro
// errors, a suite that is not runnable) exit with ExitBlocked so CI can
// tell "the tests failed" from "the tests never ran".
const (
	ExitPassed  = 0
	ExitFailed  = 1
	ExitBlocked = 2
	ExitCrashed = 3
)

// Run executes the full pipeline: load vocabulary and pickles, compile,
// and execute. It returns the process exit code; the error, when set,
// explains a blocked run and has already been decided as ExitBlocked.
func (a *App) Run(ctx context.Context) (int, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)

	gloss, ifaces, err := a.loadVocabulary(ctx)
	if err != nil {
		return ExitBlocked, err
	}

	pickles, err := a.loadPickles(ctx)
	if err != nil {
		return ExitBlocked, err
	}
	if len(pickles) == 0 {
		a.logger.Warn("No pickles found, nothing to execute.", "paths", a.cfg.Paths.Pickles)
		fmt.Fprintln(a.out, "No scenarios found.")
		return ExitPassed, nil
	}

	comp := &compiler.Compiler{
		Macros: compiler.MacroOptions{
			Enabled:       len(a.cfg.Paths.Macros) > 0,
			RegistryPaths: a.cfg.Paths.Macros,
		},
		Bind: binder.Options{
			Glossary:    gloss,
			Interfaces:  ifaces,
			Enforcement: a.cfg.GlossaryEnforcement(),
		},
	}
	result := comp.Compile(ctx, pickles, a.registry.All())
	if result.MacroErr != nil {
		return ExitBlocked, fmt.Errorf("macro expansion failed: %w", result.MacroErr)
	}

	a.reportDiagnostics(result.Diagnostics)
	if !result.Runnable {
		return ExitBlocked, errors.New("suite is not runnable; fix the reported issues")
	}

	if a.cfg.Run.DryRun {
		a.logger.Info("Dry run requested, skipping execution.")
		fmt.Fprintf(a.out, "Dry run: %d scenario(s) compiled, suite is runnable.\n", len(result.Plans))
		return ExitPassed, nil
	}

	sink := a.buildSink(ctx)
	defer sink.Close()

	exec := executor.New(executor.Options{
		Adapters:   a.adapters,
		Interfaces: ifaces,
		Sink:       sink,
		RunID:      a.runID(),
	})
	suite := exec.ExecuteSuite(ctx, result.Plans)

	a.writeSummary(suite)
	if !suite.Passed {
		return ExitFailed, nil
	}
	return ExitPassed, nil
}

// loadVocabulary merges every configured vocabulary path. With no paths
// configured it returns nils, which disables semantic validation.
func (a *App) loadVocabulary(ctx context.Context) (*glossary.Glossary, glossary.Interfaces, error) {
	if len(a.cfg.Paths.Glossary) == 0 {
		a.logger.Debug("No vocabulary paths configured; semantic validation disabled.")
		return nil, nil, nil
	}

	merged := glossary.New()
	ifaces := make(glossary.Interfaces)
	for _, path := range a.cfg.Paths.Glossary {
		g, i, err := glossary.LoadPath(ctx, path)
		if err != nil {
			return nil, nil, err
		}
		merged.Merge(g)
		for name, cfg := range i {
			ifaces[name] = cfg
		}
	}

	a.logger.Debug("Vocabulary loaded",
		"subjects", len(merged.Subjects),
		"interfaces", len(ifaces))
	return merged, ifaces, nil
}

func (a *App) loadPickles(ctx context.Context) ([]pickle.Pickle, error) {
	logger := ctxlog.FromContext(ctx)

	var out []pickle.Pickle
	for _, path := range a.cfg.Paths.Pickles {
		batch, err := pickle.Load(path)
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}

	logger.Debug("Pickles loaded", "count", len(out))
	return out, nil
}

// reportDiagnostics prints the compile findings to the runner's output.
// Warnings and errors share one report; severities are already stamped.
func (a *App) reportDiagnostics(d binder.Diagnostics) {
	if d.Empty() {
		return
	}
	for _, line := range d.Lines() {
		fmt.Fprintln(a.out, line)
	}
}

// buildSink connects the configured event sink. Publishing is best-effort:
// any failure here degrades to a NopSink and the run proceeds.
func (a *App) buildSink(ctx context.Context) events.Sink {
	if !a.cfg.Events.Enabled {
		return events.NopSink{}
	}

	target, err := url.Parse(a.cfg.Events.URL)
	if err != nil {
		a.logger.Warn("Event sink URL is invalid, continuing without publishing.",
			"url", a.cfg.Events.URL, "error", err)
		return events.NopSink{}
	}
	if a.cfg.Events.Path != "" {
		target.Path = a.cfg.Events.Path
	}

	sink, err := events.NewSocketSink(ctx, events.SocketConfig{
		URL:                target.String(),
		Namespace:          a.cfg.Events.Namespace,
		EventName:          a.cfg.Events.Event,
		ConnectTimeout:     time.Duration(a.cfg.Events.TimeoutSeconds) * time.Second,
		InsecureSkipVerify: a.cfg.Events.InsecureSkipVerify,
	})
	if err != nil {
		a.logger.Warn("Event sink unavailable, continuing without publishing.", "error", err)
		return events.NopSink{}
	}
	return sink
}

func (a *App) runID() string {
	if a.cfg.Run.ID != "" {
		return a.cfg.Run.ID
	}
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}

// writeSummary prints the human-readable run report: one line per scenario,
// failure details indented beneath, and the aggregate tally last.
func (a *App) writeSummary(suite executor.SuiteResult) {
	fmt.Fprintln(a.out)
	for _, sc := range suite.Scenarios {
		fmt.Fprintf(a.out, "%-8s %s (%s)\n", sc.Status, sc.Name, sc.PickleID)
		for _, st := range sc.Steps {
			if st.Err == nil {
				continue
			}
			fmt.Fprintf(a.out, "    %s\n        %s\n", st.Text, st.Err)
		}
	}

	c := suite.Counts
	fmt.Fprintf(a.out, "\n%d scenarios: %d passed, %d failed, %d pending, %d skipped\n",
		c.Total(), c.Passed, c.Failed, c.Pending, c.Skipped)

	cleanups := len(suite.CleanupErrors)
	for _, sc := range suite.Scenarios {
		cleanups += len(sc.CleanupErrors)
	}
	if cleanups > 0 {
		fmt.Fprintf(a.out, "%d cleanup failure(s) recorded; see the log for details.\n", cleanups)
	}
}
