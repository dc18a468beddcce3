// Package compiler turns parsed pickles into executable run plans: optional
// macro expansion first, then binding. It owns the sequencing and nothing
// else; matching and validation live in the binder.
package compiler

import (
	"context"

	"github.com/vk/picklerun/internal/binder"
	"github.com/vk/picklerun/internal/ctxlog"
	"github.com/vk/picklerun/internal/macro"
	"github.com/vk/picklerun/internal/pickle"
	"github.com/vk/picklerun/internal/registry"
)

// MacroOptions controls the expansion pass.
type MacroOptions struct {
	Enabled       bool
	RegistryPaths []string
}

// Compiler configures a compile pass. PostBind, when set, runs after a
// successful bind and may inspect the suite before it is returned; the
// default is no hook.
type Compiler struct {
	Macros   MacroOptions
	Bind     binder.Options
	PostBind func(*binder.Suite)
}

// Result is the outcome of one compile pass. MacroErr is set when loading
// or applying macro registries failed; the result then carries no plans and
// is not runnable.
type Result struct {
	Plans       []binder.RunPlan
	Runnable    bool
	Diagnostics binder.Diagnostics
	MacroErr    error
}

// Compile produces the run plans for a suite. With macros disabled the
// pickles bind as-is. With macros enabled the registries load and the
// expansion pass runs first; either failing aborts compilation before any
// binding happens, so a broken macro registry never yields half-bound
// plans.
func (c *Compiler) Compile(ctx context.Context, pickles []pickle.Pickle, defs []*registry.StepDefinition) Result {
	logger := ctxlog.FromContext(ctx)

	if c.Macros.Enabled {
		reg, err := macro.LoadPaths(ctx, c.Macros.RegistryPaths)
		if err != nil {
			logger.Error("Macro registry load failed.", "error", err)
			return Result{MacroErr: err}
		}

		expanded, err := macro.Expand(ctx, pickles, reg)
		if err != nil {
			logger.Error("Macro expansion failed.", "error", err)
			return Result{MacroErr: err}
		}
		pickles = expanded
	}

	suite := binder.BindSuite(ctx, pickles, defs, c.Bind)

	if c.PostBind != nil {
		c.PostBind(suite)
	}

	return Result{
		Plans:       suite.Plans,
		Runnable:    suite.Runnable,
		Diagnostics: suite.Diagnostics,
	}
}
