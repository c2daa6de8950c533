// Package runner wraps external commands (apt, make, cmake, git, vendor
// installers) behind a small interface so the installation pipeline can be
// exercised with a fake.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"compiler-setup/internal/logger"
)

// stderrTail bounds how much child stderr is kept for error messages.
const stderrTail = 4096

// Command is one external process invocation.
type Command struct {
	Dir  string
	Name string
	Args []string
}

// String renders the command the way a user would type it.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result is the outcome of a command that was started.
type Result struct {
	ExitCode int
	Stderr   string
}

// Success returns true if the command exited with code 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner executes external commands. A non-zero exit is reported through
// Result, not as an error; the error is reserved for commands that could not
// be started at all.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Check runs cmd and converts any failure, including a non-zero exit, into an
// error carrying the command line and the tail of its stderr.
func Check(ctx context.Context, r Runner, cmd Command) error {
	logger.Debug("[DEBUG] Running command: %s (dir=%q)\n", cmd, cmd.Dir)
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", cmd, err)
	}
	if !res.Success() {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			return fmt.Errorf("%s: exit status %d", cmd, res.ExitCode)
		}
		return fmt.Errorf("%s: exit status %d: %s", cmd, res.ExitCode, msg)
	}
	return nil
}

// Available reports whether name resolves in a POSIX shell. Shell functions
// such as environment-modules' `module` count, which exec.LookPath would miss.
func Available(ctx context.Context, r Runner, name string) bool {
	res, err := r.Run(ctx, Command{Name: "sh", Args: []string{"-c", "command -v " + name}})
	return err == nil && res.Success()
}

// ExecRunner runs commands as child processes. Child stdout and stderr are
// streamed to Stdout and Stderr (the terminal by default) because builds run
// for hours and their progress is the only feedback the user gets.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns an ExecRunner attached to the process' stdout/stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Run starts the command and waits for it. There is no timeout: a hung child
// blocks until ctx is cancelled.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	tail := &tailBuffer{limit: stderrTail}
	c.Stdout = r.Stdout
	if r.Stderr != nil {
		c.Stderr = io.MultiWriter(r.Stderr, tail)
	} else {
		c.Stderr = tail
	}

	err := c.Run()
	res := Result{Stderr: tail.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, err
	}
	return res, nil
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	limit int
	buf   []byte
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.limit; over > 0 {
		b.buf = b.buf[over:]
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	return string(b.buf)
}

var _ Runner = (*ExecRunner)(nil)
