package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/rudylauu/template-next-15/internal/branding"
	"github.com/rudylauu/template-next-15/internal/config"
	"github.com/rudylauu/template-next-15/internal/content"
	"github.com/rudylauu/template-next-15/internal/options"
	"github.com/rudylauu/template-next-15/internal/process"
	"github.com/rudylauu/template-next-15/internal/scaffold"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

// app holds what the root command needs at run time.
type app struct {
	stdout  io.Writer
	stderr  io.Writer
	workDir string
	// tempRoot is passed to the scaffolder; empty means os.TempDir().
	tempRoot string
	runner   process.Runner
	defaults options.Options
	// loadConfig makes the command read config and .env once flags are
	// parsed, so --help and --version work with a broken config.
	loadConfig bool
}

// rootFlags mirrors the command-line flags before they are folded into
// options.Options.
type rootFlags struct {
	noInstall bool
	noGit     bool
	pm        string
	force     bool
	repo      string
	branch    string
	quiet     bool
	strict    bool
}

func newRootCmd(a *app) *cobra.Command {
	f := &rootFlags{}

	cmd := &cobra.Command{
		Use:   branding.CLIName() + " <project-name> [flags]",
		Short: branding.Description(),
		Long: branding.DisplayName() + ` creates a new project from a git template: it clones the template,
copies its contents into <project-name>, sets the package.json name, then
optionally initializes git and installs dependencies.`,
		Example: fmt.Sprintf(`  %[1]s myapp
  %[1]s myapp --pm=pnpm --no-git
  %[1]s myapp --repo=https://github.com/acme/starter.git --branch=dev`, branding.CLIName()),
		Version:       versionString(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if !a.loadConfig {
				return nil
			}
			return a.configure()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := f.options(cmd.Flags(), args, a.defaults)
			if err != nil {
				return err
			}

			s := scaffold.New(a.runner)
			s.WorkDir = a.workDir
			s.TempRoot = a.tempRoot
			s.Stdout = cmd.OutOrStdout()
			s.Stderr = cmd.ErrOrStderr()
			s.Quiet = f.quiet
			if f.strict {
				s.CopyPolicy = content.Strict
			}

			res, err := s.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), opts, res)
			return nil
		},
	}

	// Help shows the built-in defaults; config values apply to flags left unset.
	d := options.Defaults()
	flags := cmd.Flags()
	flags.BoolVar(&f.noInstall, "no-install", !d.Install, "Skip dependency installation")
	flags.BoolVar(&f.noGit, "no-git", !d.Git, "Skip git initialization")
	flags.StringVar(&f.pm, "pm", d.PackageManager.String(), "Package manager: "+pmList())
	flags.BoolVar(&f.force, "force", false, "Overwrite the target directory if it already exists")
	flags.StringVar(&f.repo, "repo", d.RepositoryURL, "Git URL of the template repository")
	flags.StringVar(&f.branch, "branch", d.Branch, "Template branch to clone")
	flags.BoolVarP(&f.quiet, "quiet", "q", false, "Only print warnings, errors and the final summary")
	flags.BoolVar(&f.strict, "strict", false, "Abort on the first template entry that fails to copy")
	flags.SortFlags = false

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &options.UsageError{Msg: err.Error()}
	})
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	cmd.SetVersionTemplate("{{.Version}}\n")

	return cmd
}

// options folds the flags set on the command line over defaults. An
// unrecognized --pm value keeps the default package manager.
func (f *rootFlags) options(flags *pflag.FlagSet, args []string, defaults options.Options) (options.Options, error) {
	opts := defaults
	if len(args) > 0 {
		opts.ProjectName = args[0]
	}
	if flags.Changed("no-install") {
		opts.Install = !f.noInstall
	}
	if flags.Changed("no-git") {
		opts.Git = !f.noGit
	}
	opts.Force = f.force
	if flags.Changed("pm") {
		if pm, ok := options.ParsePackageManager(f.pm); ok {
			opts.PackageManager = pm
		}
	}
	if flags.Changed("repo") && f.repo != "" {
		opts.RepositoryURL = f.repo
	}
	if flags.Changed("branch") && f.branch != "" {
		opts.Branch = f.branch
	}
	return opts, opts.Validate()
}

func pmList() string {
	names := make([]string, len(options.PackageManagers))
	for i, pm := range options.PackageManagers {
		names[i] = pm.String()
	}
	return strings.Join(names, "|")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	return execute(os.Args[1:], os.Stdout, os.Stderr)
}

func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr, defaults: options.Defaults(), loadConfig: true}
	return run(newRootCmd(a), args, stderr)
}

// configure loads user defaults and the child process environment.
func (a *app) configure() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.defaults = cfg.Defaults()

	env, err := config.ProcessEnv()
	if err != nil {
		return err
	}
	a.runner = process.NewExecRunner(env)
	return nil
}

// run executes cmd with args and reports a failure on stderr. Usage errors
// are followed by the usage text.
func run(cmd *cobra.Command, args []string, stderr io.Writer) error {
	cmd.InitDefaultHelpFlag()
	cmd.InitDefaultVersionFlag()
	cmd.SetArgs(dropUnknownFlags(cmd.Flags(), args))
	err := cmd.ExecuteContext(context.Background())
	if err == nil {
		return nil
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var usage *options.UsageError
	if errors.As(err, &usage) {
		fmt.Fprint(stderr, cmd.UsageString())
	}
	return err
}

// dropUnknownFlags removes flags the command does not define. pflag would
// otherwise take the token after an unknown "--flag" as its value and lose
// the project name. Everything after "--" is kept.
func dropUnknownFlags(flags *pflag.FlagSet, args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if len(arg) < 2 || arg[0] != '-' {
			out = append(out, arg)
			continue
		}

		known, takesNext := lookupFlag(flags, arg)
		if !known {
			continue
		}
		out = append(out, arg)
		if takesNext && i+1 < len(args) {
			i++
			out = append(out, args[i])
		}
	}
	return out
}

// lookupFlag reports whether arg names only defined flags and whether its
// value is the next token ("--pm pnpm", "-o out").
func lookupFlag(flags *pflag.FlagSet, arg string) (known, takesNext bool) {
	if strings.HasPrefix(arg, "--") {
		name, _, hasValue := strings.Cut(arg[2:], "=")
		f := flags.Lookup(name)
		if f == nil {
			return false, false
		}
		return true, !hasValue && f.NoOptDefVal == ""
	}

	// Shorthand cluster such as -q or -qh; a value flag ends the cluster.
	shorts, _, hasValue := strings.Cut(arg[1:], "=")
	for i := 0; i < len(shorts); i++ {
		f := flags.ShorthandLookup(shorts[i : i+1])
		if f == nil {
			return false, false
		}
		if f.NoOptDefVal == "" {
			return true, i == len(shorts)-1 && !hasValue
		}
	}
	return true, false
}
