package content

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rudylauu/template-next-15/internal/platform"
)

// excludedNames are top-level template entries never copied into a project.
var excludedNames = map[string]bool{
	"node_modules":      true,
	".git":              true,
	".next":             true,
	"cli":               true,
	"dist":              true,
	"package-lock.json": true,
	".DS_Store":         true,
	"Thumbs.db":         true,
}

// excludedSuffix excludes log files by name.
const excludedSuffix = ".log"

// prunedNames are removed from the project root after copying in case they
// arrived through a path the exclude list did not cover.
var prunedNames = []string{".git", "cli", "node_modules", ".next"}

// Policy selects how Copy reacts to a failing entry.
type Policy int

const (
	// BestEffort records a failing entry and continues with the rest.
	BestEffort Policy = iota
	// Strict stops at the first failing entry.
	Strict
)

// EntryError reports a top-level template entry that could not be copied.
type EntryError struct {
	Name string
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("copying %s: %v", e.Name, e.Err)
}

func (e *EntryError) Unwrap() error {
	return e.Err
}

// Report lists what Copy did with each top-level entry.
type Report struct {
	Copied   []string
	Excluded []string
	Failed   []*EntryError
}

// ShouldExclude returns true if a top-level entry named name must not be copied.
func ShouldExclude(name string) bool {
	return excludedNames[name] || strings.HasSuffix(name, excludedSuffix)
}

// Copy copies the direct entries of root into target, skipping excluded
// names. Entries are copied recursively; existing files are overwritten.
// With BestEffort a failing entry is recorded in the report and the rest
// are still copied. With Strict the first failure is returned.
// Failing to list root is always returned as an error.
func Copy(root, target string, policy Policy, log io.Writer) (*Report, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("reading template root %s: %w", root, err)
	}

	report := &Report{}
	for _, entry := range entries {
		name := entry.Name()
		if ShouldExclude(name) {
			logf(log, "Excluding: %s\n", name)
			report.Excluded = append(report.Excluded, name)
			continue
		}

		src := filepath.Join(root, name)
		dst := filepath.Join(target, name)
		if err := copyPath(src, dst); err != nil {
			entryErr := &EntryError{Name: name, Err: err}
			report.Failed = append(report.Failed, entryErr)
			if policy == Strict {
				return report, entryErr
			}
			continue
		}
		logf(log, "Copied: %s\n", name)
		report.Copied = append(report.Copied, name)
	}

	return report, nil
}

// Prune removes .git, cli, node_modules and .next from the target root and
// returns the names that were present.
func Prune(target string, log io.Writer) ([]string, error) {
	var removed []string
	for _, name := range prunedNames {
		path := filepath.Join(target, name)
		if _, err := os.Lstat(path); err != nil {
			continue
		}
		logf(log, "Cleaning: %s\n", name)
		if err := os.RemoveAll(path); err != nil {
			return removed, fmt.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}

// copyPath copies a file, symlink or directory tree from src to dst.
func copyPath(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}

	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return copySymlink(src, dst)
	case info.IsDir():
		return copyDir(src, dst, info.Mode())
	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode())
	default:
		// Sockets, devices and pipes have no place in a template.
		return nil
	}
}

// copyDir recursively copies src to dst, creating dst if absent.
func copyDir(src, dst string, mode os.FileMode) error {
	if err := os.MkdirAll(dst, mode.Perm()|0700); err != nil {
		return err
	}

	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := copyPath(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}

	return platform.Chmod(dst, mode.Perm())
}

// copyFile copies a single file from src to dst, preserving permissions.
func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode.Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return platform.Chmod(dst, mode.Perm())
}

// copySymlink recreates the link at dst, replacing whatever is there.
func copySymlink(src, dst string) error {
	link, err := os.Readlink(src)
	if err != nil {
		return err
	}
	return platform.Symlink(link, dst)
}

func logf(w io.Writer, format string, args ...any) {
	if w == nil {
		return
	}
	fmt.Fprintf(w, format, args...)
}
