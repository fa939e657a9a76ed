// Package processtest provides a scripted process.Runner for tests.
package processtest

import (
	"context"
	"sync"

	"github.com/rudylauu/template-next-15/internal/process"
)

// Handler reacts to a command. It returns captured stdout (used by Output)
// and the result. A nil Handler means the command succeeds silently.
type Handler func(cmd process.Command) ([]byte, process.Result)

// Fake records every command and answers with the first matching handler,
// keyed by executable name, then by "name subcommand".
type Fake struct {
	mu       sync.Mutex
	Handlers map[string]Handler
	Calls    []process.Command
}

// New returns an empty Fake.
func New() *Fake {
	return &Fake{Handlers: make(map[string]Handler)}
}

// On registers h for key ("git", "git clone", "npm", ...).
func (f *Fake) On(key string, h Handler) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Handlers[key] = h
	return f
}

// Run implements process.Runner.
func (f *Fake) Run(_ context.Context, cmd process.Command) process.Result {
	_, res := f.dispatch(cmd)
	return res
}

// Output implements process.Runner.
func (f *Fake) Output(_ context.Context, cmd process.Command) ([]byte, process.Result) {
	return f.dispatch(cmd)
}

func (f *Fake) dispatch(cmd process.Command) ([]byte, process.Result) {
	f.mu.Lock()
	f.Calls = append(f.Calls, cmd)
	var h Handler
	if len(cmd.Args) > 0 {
		h = f.Handlers[cmd.Name+" "+cmd.Args[0]]
	}
	if h == nil {
		h = f.Handlers[cmd.Name]
	}
	f.mu.Unlock()

	if h == nil {
		return nil, Succeed(cmd)
	}
	return h(cmd)
}

// Names returns the executed command lines in order.
func (f *Fake) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}

// CallsTo returns the recorded invocations of the named executable.
func (f *Fake) CallsTo(name string) []process.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []process.Command
	for _, c := range f.Calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Succeed is a successful result for cmd.
func Succeed(cmd process.Command) process.Result {
	return process.Result{Command: cmd, Status: process.StatusSucceeded}
}

// Exit is a non-zero exit result for cmd.
func Exit(cmd process.Command, code int) process.Result {
	return process.Result{Command: cmd, Status: process.StatusExitFailure, ExitCode: code}
}

// Fail returns a Handler that always exits with code.
func Fail(code int) Handler {
	return func(cmd process.Command) ([]byte, process.Result) {
		return nil, Exit(cmd, code)
	}
}

// Print returns a Handler that succeeds with out on stdout.
func Print(out string) Handler {
	return func(cmd process.Command) ([]byte, process.Result) {
		return []byte(out), Succeed(cmd)
	}
}
