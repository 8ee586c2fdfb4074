// Package process runs external JVM tools (javac, java) behind an interface
// so that stages can be tested with fake runners.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// ErrToolNotFound indicates the executable is not on PATH.
var ErrToolNotFound = errors.New("tool not found")

// Command describes one external invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs.
func (c Command) String() string {
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}

// Result holds captured output and the exit code of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Combined returns stdout followed by stderr.
func (r Result) Combined() string {
	switch {
	case r.Stdout == "":
		return r.Stderr
	case r.Stderr == "":
		return r.Stdout
	default:
		return r.Stdout + "\n" + r.Stderr
	}
}

// Runner executes commands. A non-zero exit is reported in Result.ExitCode
// with a nil error; err is reserved for failures to start or cancellation.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// ExecRunner invokes binaries from PATH.
type ExecRunner struct{}

// Run executes cmd and captures its output. The process is killed when ctx is canceled.
func (ExecRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if _, err := exec.LookPath(cmd.Name); err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrToolNotFound, cmd.Name, err)
	}

	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr
	slog.Debug("Running external tool", "command", cmd.String(), "dir", cmd.Dir)

	err := c.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, fmt.Errorf("run %s: %w", cmd.Name, err)
	}
	return res, nil
}

// FakeRunner records commands and returns canned results. Handler, when set,
// is called for every command.
type FakeRunner struct {
	Commands []Command
	Handler  func(cmd Command) (Result, error)
}

// Run implements Runner.
func (f *FakeRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	f.Commands = append(f.Commands, cmd)
	if f.Handler == nil {
		return Result{}, nil
	}
	return f.Handler(cmd)
}
