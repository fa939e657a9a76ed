// Package process runs external executables (git, npm, pnpm, yarn) with the
// invoking terminal attached and reports the outcome as a tagged Result, so
// callers sequence steps without depending on os/exec directly.
package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes one executable invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String returns the command line as typed in a shell.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Status tags the outcome of a Run.
type Status int

const (
	StatusSucceeded Status = iota
	StatusExitFailure
	StatusSpawnFailure
)

func (s Status) String() string {
	switch s {
	case StatusSucceeded:
		return "succeeded"
	case StatusExitFailure:
		return "exit-failure"
	case StatusSpawnFailure:
		return "spawn-failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of running a Command.
type Result struct {
	Command  Command
	Status   Status
	ExitCode int
	// Cause is the start error for StatusSpawnFailure.
	Cause error
}

// OK reports whether the process exited with status 0.
func (r Result) OK() bool {
	return r.Status == StatusSucceeded
}

// Err returns nil on success, *ExitError on a non-zero exit and *SpawnError
// when the executable could not be started.
func (r Result) Err() error {
	switch r.Status {
	case StatusSucceeded:
		return nil
	case StatusExitFailure:
		return &ExitError{Command: r.Command, Code: r.ExitCode}
	default:
		return &SpawnError{Command: r.Command, Err: r.Cause}
	}
}

// ExitError reports a process that ran and exited with a non-zero status.
type ExitError struct {
	Command Command
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with code %d", e.Command.Name, e.Code)
}

// SpawnError reports an executable that could not be started.
type SpawnError struct {
	Command Command
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("starting %s: %v", e.Command.Name, e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// Runner executes commands synchronously.
type Runner interface {
	// Run executes cmd with the terminal's standard streams attached.
	Run(ctx context.Context, cmd Command) Result
	// Output executes cmd and returns its captured stdout.
	Output(ctx context.Context, cmd Command) ([]byte, Result)
}

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	// Stdin, Stdout and Stderr default to the process's own streams.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// Env holds KEY=VALUE pairs set on top of the inherited environment.
	Env []string
}

// NewExecRunner returns an ExecRunner that adds env to every child.
func NewExecRunner(env []string) *ExecRunner {
	return &ExecRunner{Env: env}
}

// Run spawns cmd and waits for it. No timeout is applied.
func (r *ExecRunner) Run(ctx context.Context, cmd Command) Result {
	c := r.command(ctx, cmd)
	c.Stdin = r.stdin()
	c.Stdout = r.stdout()
	c.Stderr = r.stderr()
	return resultOf(cmd, c.Run())
}

// Output spawns cmd with stdout captured; stderr still goes to the terminal.
func (r *ExecRunner) Output(ctx context.Context, cmd Command) ([]byte, Result) {
	var buf bytes.Buffer
	c := r.command(ctx, cmd)
	c.Stdout = &buf
	c.Stderr = r.stderr()
	err := c.Run()
	return buf.Bytes(), resultOf(cmd, err)
}

func (r *ExecRunner) command(ctx context.Context, cmd Command) *exec.Cmd {
	// #nosec G204 -- the executable is git or a recognized package manager.
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(r.Env) > 0 {
		env := os.Environ()
		for _, kv := range r.Env {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				continue
			}
			env = setEnv(env, key, value)
		}
		c.Env = env
	}
	return c
}

func (r *ExecRunner) stdin() io.Reader {
	if r.Stdin != nil {
		return r.Stdin
	}
	return os.Stdin
}

func (r *ExecRunner) stdout() io.Writer {
	if r.Stdout != nil {
		return r.Stdout
	}
	return os.Stdout
}

func (r *ExecRunner) stderr() io.Writer {
	if r.Stderr != nil {
		return r.Stderr
	}
	return os.Stderr
}

func resultOf(cmd Command, err error) Result {
	if err == nil {
		return Result{Command: cmd, Status: StatusSucceeded}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{Command: cmd, Status: StatusExitFailure, ExitCode: exitErr.ExitCode()}
	}
	return Result{Command: cmd, Status: StatusSpawnFailure, ExitCode: -1, Cause: err}
}

// setEnv sets or replaces an environment variable in the env slice.
func setEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
