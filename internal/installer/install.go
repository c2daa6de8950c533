// Package installer turns a toolchain request into an ordered pipeline of
// steps (prerequisites, acquisition, build, registration, shell integration)
// and runs it.
package installer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"runtime"
	"time"

	"compiler-setup/internal/config"
	"compiler-setup/internal/logger"
	"compiler-setup/internal/modulefile"
	"compiler-setup/internal/pipeline"
	"compiler-setup/internal/runner"
	"compiler-setup/internal/shellrc"
	"compiler-setup/internal/state"
	"compiler-setup/internal/toolchain"
)

// Installer provisions toolchains. The zero value is not usable; build one
// with New and override fields in tests.
type Installer struct {
	Config   config.Config
	Layout   toolchain.Layout
	Runner   runner.Runner
	Executor *pipeline.Executor
	Client   *http.Client
	// Progress receives download progress; nil disables it.
	Progress io.Writer
	// Home is used to write $HOME-relative paths into the shell profile.
	Home string
	Now  func() time.Time
}

// New creates an Installer that runs real commands.
func New(cfg config.Config, layout toolchain.Layout, r runner.Runner) *Installer {
	home, _ := os.UserHomeDir()
	return &Installer{
		Config:   cfg,
		Layout:   layout,
		Runner:   r,
		Executor: pipeline.NewExecutor(),
		Client:   http.DefaultClient,
		Progress: terminalProgress(),
		Home:     home,
		Now:      time.Now,
	}
}

// Result summarises a completed run.
type Result struct {
	Plan           toolchain.Plan
	ModuleFile     string
	ProfileChanged bool
}

// variant is what a toolchain family contributes to the shared pipeline: the
// expensive steps that produce the installation, and the module descriptor
// that activates it.
type variant struct {
	steps  func(in *Installer, p toolchain.Plan) []pipeline.Step
	module func(p toolchain.Plan) modulefile.Descriptor
}

var variants = map[toolchain.Family]variant{
	toolchain.GCC:   {steps: gccSteps, module: gccModule},
	toolchain.LLVM:  {steps: llvmSteps, module: llvmModule},
	toolchain.AOCC:  {steps: aoccSteps, module: aoccModule},
	toolchain.Intel: {steps: intelSteps, module: intelModule},
}

// Steps returns the full ordered pipeline for plan. When the plan says the
// toolchain is already installed only registration and shell integration
// remain. res is filled in by the registration steps as they run.
func (in *Installer) Steps(plan toolchain.Plan, res *Result) ([]pipeline.Step, error) {
	v, ok := variants[plan.Request.Family]
	if !ok {
		return nil, fmt.Errorf("no installer for toolchain family %q", plan.Request.Family)
	}

	var steps []pipeline.Step
	if !plan.Skip {
		steps = append(steps, v.steps(in, plan)...)
	}
	steps = append(steps,
		in.registerModuleStep(v.module(plan), res),
		in.shellProfileStep(res),
	)
	return steps, nil
}

// Install plans req and runs its pipeline. Any failing step aborts the run
// with a *pipeline.StepError; nothing after it, including registration, runs.
func (in *Installer) Install(ctx context.Context, req toolchain.Request) (Result, error) {
	plan := toolchain.NewPlan(req, in.Layout)
	res := Result{Plan: plan}

	if plan.Skip {
		logger.Info("[INFO] %s version %s is already installed in %s.\n", req.Family.Title(), req.Version, plan.InstallDir)
	} else {
		logger.Info("[INFO] Installing %s version %s into %s\n", req.Family.Title(), req.Version, plan.InstallDir)
	}

	steps, err := in.Steps(plan, &res)
	if err != nil {
		return res, err
	}
	if err := in.Executor.Run(ctx, steps); err != nil {
		return res, err
	}

	in.recordState(plan, res.ModuleFile)
	return res, nil
}

// DryRun reports the plan for req and the steps Install would execute.
func (in *Installer) DryRun(ctx context.Context, req toolchain.Request) (toolchain.Plan, []string, error) {
	plan := toolchain.NewPlan(req, in.Layout)
	steps, err := in.Steps(plan, &Result{Plan: plan})
	if err != nil {
		return plan, nil, err
	}
	return plan, in.Executor.Describe(ctx, steps), nil
}

// recordState updates the installation ledger. The ledger is informational,
// so a failure here is reported but does not fail the run.
func (in *Installer) recordState(plan toolchain.Plan, moduleFile string) {
	if in.Layout.StateFile == "" {
		return
	}
	st, err := state.LoadState(in.Layout.StateFile)
	if err != nil {
		logger.Warn("[WARN] Not recording installation: %v\n", err)
		return
	}
	st.Record(state.ToolchainState{
		Family:      string(plan.Request.Family),
		Version:     plan.Request.Version,
		InstallDir:  plan.InstallDir,
		ModuleFile:  moduleFile,
		InstalledAt: in.Now().UTC(),
	})
	if err := state.SaveState(in.Layout.StateFile, st); err != nil {
		logger.Warn("[WARN] Not recording installation: %v\n", err)
	}
}

func (in *Installer) registerModuleStep(d modulefile.Descriptor, res *Result) pipeline.Step {
	return pipeline.Step{
		Name: "register-module",
		Action: func(context.Context) error {
			path, err := modulefile.Register(in.Layout.ModuleRoot, d)
			if err != nil {
				return err
			}
			res.ModuleFile = path
			return nil
		},
	}
}

func (in *Installer) shellProfileStep(res *Result) pipeline.Step {
	return pipeline.Step{
		Name: "update-shell-profile",
		Action: func(context.Context) error {
			profile := shellrc.Profile{Path: in.Layout.ShellProfile, Home: in.Home}
			changed, err := profile.EnsureModulePath(in.Layout.ModuleRoot)
			if err != nil {
				return err
			}
			res.ProfileChanged = changed
			if changed {
				logger.Info("[INFO] Please run 'source %s' or restart your terminal to update your environment.\n", in.Layout.ShellProfile)
			}
			return nil
		},
	}
}

// jobs is the parallelism handed to make/cmake.
func (in *Installer) jobs() int {
	if in.Config.Build.Jobs > 0 {
		return in.Config.Build.Jobs
	}
	return runtime.NumCPU()
}
