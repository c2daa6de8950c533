// Package pipeline runs an ordered list of side-effecting steps and stops at
// the first failure. There is no retry and no rollback: whatever a failed
// step left on disk stays there, and the next run's existence checks decide
// what has to be redone.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"compiler-setup/internal/logger"
)

// Step is one named unit of work. SkipIf, when set, is evaluated right before
// the step would run; returning true omits the step.
type Step struct {
	Name   string
	Action func(ctx context.Context) error
	SkipIf func(ctx context.Context) bool
}

// StepError reports which step failed and why.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %q failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Executor runs step lists.
type Executor struct {
	now func() time.Time
}

// NewExecutor creates an Executor.
func NewExecutor() *Executor {
	return &Executor{now: time.Now}
}

// Run executes steps strictly in order. The first failing step aborts the run
// and is returned as a *StepError; later steps never execute.
func (e *Executor) Run(ctx context.Context, steps []Step) error {
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}

		if step.SkipIf != nil && step.SkipIf(ctx) {
			logger.Info("[INFO] (%d/%d) %s: already satisfied, skipping\n", i+1, len(steps), step.Name)
			continue
		}

		logger.Step("[STEP] (%d/%d) %s\n", i+1, len(steps), step.Name)
		start := e.now()
		if err := step.Action(ctx); err != nil {
			return &StepError{Step: step.Name, Err: err}
		}
		logger.Debug("[DEBUG] %s finished in %s\n", step.Name, e.now().Sub(start).Round(time.Millisecond))
	}
	return nil
}

// Describe returns the names of the steps Run would execute right now,
// evaluating SkipIf but never an Action.
func (e *Executor) Describe(ctx context.Context, steps []Step) []string {
	var names []string
	for _, step := range steps {
		if step.SkipIf != nil && step.SkipIf(ctx) {
			continue
		}
		names = append(names, step.Name)
	}
	return names
}
