package scaffold

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rudylauu/template-next-15/internal/branding"
	"github.com/rudylauu/template-next-15/internal/content"
	"github.com/rudylauu/template-next-15/internal/manifest"
	"github.com/rudylauu/template-next-15/internal/options"
	"github.com/rudylauu/template-next-15/internal/process"
	"github.com/rudylauu/template-next-15/internal/target"
	"github.com/rudylauu/template-next-15/internal/template"
	"github.com/rudylauu/template-next-15/internal/toolcheck"
)

// StepStatus tags the outcome of an optional post-copy step.
type StepStatus int

const (
	StepSkipped StepStatus = iota
	StepSucceeded
	StepFailed
)

func (s StepStatus) String() string {
	switch s {
	case StepSkipped:
		return "skipped"
	case StepSucceeded:
		return "succeeded"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// StepResult records whether a step ran and how it ended.
type StepResult struct {
	Status StepStatus
	Err    error
}

// Result holds the outcome of a scaffold run.
type Result struct {
	TargetDir string
	// Nested is true when the template content sat in a single directory.
	Nested   bool
	Copy     *content.Report
	Pruned   []string
	Manifest *manifest.PatchResult
	Git      StepResult
	Install  StepResult
	Warnings []string
}

// Scaffolder creates projects from a git template.
type Scaffolder struct {
	Runner process.Runner
	// WorkDir resolves relative project names; empty means the process cwd.
	WorkDir string
	// TempRoot is where the template is cloned; empty means os.TempDir().
	TempRoot   string
	CopyPolicy content.Policy
	// CommitMessage defaults to the branding commit message.
	CommitMessage string
	Stdout        io.Writer
	Stderr        io.Writer
	// Quiet suppresses progress lines; warnings still go to Stderr.
	Quiet bool
}

// New returns a Scaffolder using runner and the process's standard streams.
func New(runner process.Runner) *Scaffolder {
	return &Scaffolder{
		Runner:     runner,
		CopyPolicy: content.BestEffort,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

// Run creates opts.ProjectName. A returned error means the run stopped
// early; the target directory, if already created, is left in place.
func (s *Scaffolder) Run(ctx context.Context, opts options.Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	dir, err := target.Prepare(s.WorkDir, opts.ProjectName, opts.Force)
	if err != nil {
		return nil, err
	}
	res := &Result{TargetDir: dir}

	fetcher := &template.Fetcher{Runner: s.Runner, TempRoot: s.TempRoot, Stdout: s.progress()}
	src, err := fetcher.Fetch(ctx, opts.RepositoryURL, opts.Branch)
	if err != nil {
		return res, err
	}
	res.Nested = src.Nested

	report, copyErr := content.Copy(src.Root, dir, s.CopyPolicy, s.progress())
	if err := src.Cleanup(); err != nil {
		s.warn(res, "%v", err)
	}
	res.Copy = report
	if copyErr != nil {
		return res, copyErr
	}
	for _, failed := range report.Failed {
		s.warn(res, "%v", failed)
	}

	pruned, err := content.Prune(dir, s.progress())
	res.Pruned = pruned
	if err != nil {
		s.warn(res, "%v", err)
	}

	res.Manifest = manifest.Patch(dir, opts.ProjectName)
	switch res.Manifest.Status {
	case manifest.PatchFailed:
		s.warn(res, "Could not update %s: %v", manifest.FileName, res.Manifest.Err)
	case manifest.PatchApplied:
		for _, issue := range res.Manifest.Issues {
			s.warn(res, "%s: %s", manifest.FileName, issue)
		}
	}

	if opts.Git {
		res.Git = s.initGit(ctx, dir)
		if res.Git.Status == StepFailed {
			s.warn(res, "Could not initialize git: %v", res.Git.Err)
		}
	}

	if opts.Install {
		for _, w := range toolcheck.CheckEngines(ctx, s.Runner, manifest.Engines(dir)) {
			s.warn(res, "%s", w)
		}
		res.Install = s.install(ctx, dir, opts.PackageManager)
		if res.Install.Status == StepFailed {
			s.warn(res, "Dependency installation failed, run %q manually: %v",
				opts.PackageManager.InstallCommand(), res.Install.Err)
		}
	}

	return res, nil
}

// initGit runs init, add and commit, stopping at the first failure.
func (s *Scaffolder) initGit(ctx context.Context, dir string) StepResult {
	msg := s.CommitMessage
	if msg == "" {
		msg = branding.CommitMessage()
	}

	for _, args := range [][]string{
		{"init"},
		{"add", "."},
		{"commit", "-m", msg},
	} {
		r := s.Runner.Run(ctx, process.Command{Name: "git", Args: args, Dir: dir})
		if !r.OK() {
			return StepResult{Status: StepFailed, Err: r.Err()}
		}
	}
	return StepResult{Status: StepSucceeded}
}

func (s *Scaffolder) install(ctx context.Context, dir string, pm options.PackageManager) StepResult {
	s.printf("Installing dependencies with %s...\n", pm)
	r := s.Runner.Run(ctx, process.Command{Name: pm.String(), Args: pm.InstallArgs(), Dir: dir})
	if !r.OK() {
		return StepResult{Status: StepFailed, Err: r.Err()}
	}
	return StepResult{Status: StepSucceeded}
}

func (s *Scaffolder) warn(res *Result, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	res.Warnings = append(res.Warnings, msg)
	if s.Stderr != nil {
		fmt.Fprintf(s.Stderr, "[WARN] %s\n", msg)
	}
}

func (s *Scaffolder) printf(format string, args ...any) {
	if w := s.progress(); w != nil {
		fmt.Fprintf(w, format, args...)
	}
}

// progress is nil in quiet mode; the content and template packages treat a
// nil writer as discard.
func (s *Scaffolder) progress() io.Writer {
	if s.Quiet {
		return nil
	}
	return s.Stdout
}
