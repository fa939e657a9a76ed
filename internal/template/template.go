// Package template fetches the project template with a shallow git clone
// into a temporary directory and resolves which directory holds the
// content to scaffold.
package template

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rudylauu/template-next-15/internal/process"
)

// tempPattern names the temporary clone directories.
const tempPattern = "tmpl-"

// CloneError reports a failed template clone.
type CloneError struct {
	Repo   string
	Branch string
	// ExitCode is git's exit status, or -1 when git could not be started.
	ExitCode int
	Err      error
}

func (e *CloneError) Error() string {
	var spawn *process.SpawnError
	if errors.As(e.Err, &spawn) {
		return fmt.Sprintf("cloning %s (branch %s): %v", e.Repo, e.Branch, e.Err)
	}
	return fmt.Sprintf("cloning %s (branch %s): git exited with code %d", e.Repo, e.Branch, e.ExitCode)
}

func (e *CloneError) Unwrap() error {
	return e.Err
}

// Source is a fetched template.
type Source struct {
	// Dir is the uniquely-named temporary directory; the caller removes it.
	Dir string
	// Root is the directory whose direct children form the scaffold.
	Root string
	// Nested is true when Root is a single directory inside Dir.
	Nested bool
}

// Cleanup removes the temporary directory recursively.
func (s *Source) Cleanup() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		return fmt.Errorf("removing temporary template %s: %w", s.Dir, err)
	}
	return nil
}

// Fetcher clones templates with git.
type Fetcher struct {
	Runner process.Runner
	// TempRoot is the parent of the temporary directory; empty means os.TempDir().
	TempRoot string
	// Stdout receives progress lines; nil discards them.
	Stdout io.Writer
}

// Fetch shallow-clones branch of repo into a new temporary directory and
// detects single-directory nesting. On failure the temporary directory is
// removed and a *CloneError is returned for git failures.
func (f *Fetcher) Fetch(ctx context.Context, repo, branch string) (*Source, error) {
	tmp, err := os.MkdirTemp(f.TempRoot, tempPattern)
	if err != nil {
		return nil, fmt.Errorf("creating temporary directory: %w", err)
	}

	f.printf("Cloning template from %s (branch: %s)...\n", repo, branch)

	res := f.Runner.Run(ctx, CloneCommand(repo, branch, tmp))
	if !res.OK() {
		_ = os.RemoveAll(tmp)
		return nil, &CloneError{Repo: repo, Branch: branch, ExitCode: res.ExitCode, Err: res.Err()}
	}

	root, nested, err := ResolveRoot(tmp)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, err
	}
	if nested {
		f.printf("Using nested repository directory: %s\n", root)
	}

	return &Source{Dir: tmp, Root: root, Nested: nested}, nil
}

// CloneCommand builds the depth-1 single-branch clone of repo into dest.
func CloneCommand(repo, branch, dest string) process.Command {
	return process.Command{
		Name: "git",
		Args: []string{"clone", "--depth", "1", "--branch", branch, repo, dest},
	}
}

// ResolveRoot returns the only entry of dir when dir contains exactly one
// entry and it is a directory; otherwise dir itself.
func ResolveRoot(dir string) (string, bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", false, fmt.Errorf("reading cloned template %s: %w", dir, err)
	}
	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(dir, entries[0].Name()), true, nil
	}
	return dir, false, nil
}

func (f *Fetcher) printf(format string, args ...any) {
	if f.Stdout == nil {
		return
	}
	fmt.Fprintf(f.Stdout, format, args...)
}
