package runner

import (
	"context"
	"strings"
	"sync"
)

// Fake is a Runner for tests. It records every command, succeeds by default
// and can be scripted to fail or to produce side effects (for example, a fake
// `make install` that drops bin/gcc into the prefix).
type Fake struct {
	mu       sync.Mutex
	calls    []Command
	failures map[string]Result
	hooks    map[string]func(Command) error
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		failures: make(map[string]Result),
		hooks:    make(map[string]func(Command) error),
	}
}

// FailWhen makes any command whose rendered line starts with prefix exit with
// the given code and stderr.
func (f *Fake) FailWhen(prefix string, exitCode int, stderr string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[prefix] = Result{ExitCode: exitCode, Stderr: stderr}
}

// OnRun registers fn to run whenever a command whose rendered line starts with
// prefix is executed. An error from fn is returned from Run.
func (f *Fake) OnRun(prefix string, fn func(Command) error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hooks[prefix] = fn
}

// Run records cmd and returns the scripted outcome.
func (f *Fake) Run(_ context.Context, cmd Command) (Result, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	var hook func(Command) error
	line := cmd.String()
	for prefix, fn := range f.hooks {
		if strings.HasPrefix(line, prefix) {
			hook = fn
			break
		}
	}
	var failure *Result
	for prefix, res := range f.failures {
		if strings.HasPrefix(line, prefix) {
			r := res
			failure = &r
			break
		}
	}
	f.mu.Unlock()

	if failure != nil {
		return *failure, nil
	}
	if hook != nil {
		if err := hook(cmd); err != nil {
			return Result{}, err
		}
	}
	return Result{}, nil
}

// Calls returns a copy of the recorded commands in order.
func (f *Fake) Calls() []Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Command, len(f.calls))
	copy(out, f.calls)
	return out
}

// Lines returns the recorded commands rendered as strings.
func (f *Fake) Lines() []string {
	calls := f.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.String()
	}
	return out
}

// Ran reports whether any recorded command starts with prefix.
func (f *Fake) Ran(prefix string) bool {
	for _, line := range f.Lines() {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

var _ Runner = (*Fake)(nil)
