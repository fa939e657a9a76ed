// Package options defines the immutable record produced by argument parsing
// and consumed by every scaffolding step.
package options

import (
	"fmt"

	"github.com/rudylauu/template-next-15/internal/branding"
)

// PackageManager identifies the tool used to install dependencies.
type PackageManager string

// Recognized package managers. The first one is the default.
const (
	NPM  PackageManager = "npm"
	PNPM PackageManager = "pnpm"
	Yarn PackageManager = "yarn"
)

// PackageManagers lists the recognized values in display order.
var PackageManagers = []PackageManager{NPM, PNPM, Yarn}

// ParsePackageManager returns the package manager named s and whether s is
// one of the recognized values.
func ParsePackageManager(s string) (PackageManager, bool) {
	for _, pm := range PackageManagers {
		if string(pm) == s {
			return pm, true
		}
	}
	return "", false
}

// String returns the executable name.
func (pm PackageManager) String() string {
	return string(pm)
}

// InstallArgs returns the arguments that install dependencies. Yarn installs
// when invoked without a subcommand.
func (pm PackageManager) InstallArgs() []string {
	if pm == Yarn {
		return []string{}
	}
	return []string{"install"}
}

// InstallCommand returns the install command line as shown to users.
func (pm PackageManager) InstallCommand() string {
	if pm == Yarn {
		return "yarn"
	}
	return string(pm) + " install"
}

// RunCommand returns the command line that runs a package.json script.
func (pm PackageManager) RunCommand(script string) string {
	return string(pm) + " run " + script
}

// Options is the validated configuration of one scaffolding run.
type Options struct {
	ProjectName    string
	Force          bool
	Install        bool
	Git            bool
	PackageManager PackageManager
	RepositoryURL  string
	Branch         string
}

// Defaults returns the options used when no flag or config value overrides them.
func Defaults() Options {
	return Options{
		Install:        true,
		Git:            true,
		PackageManager: NPM,
		RepositoryURL:  branding.TemplateRepoURL(),
		Branch:         branding.DefaultBranch(),
	}
}

// Validate checks the project name. It must run before any filesystem mutation.
func (o Options) Validate() error {
	if o.ProjectName == "" || o.ProjectName == "." {
		return &UsageError{Msg: "you must specify the project name ('.' is not accepted)"}
	}
	if _, ok := ParsePackageManager(string(o.PackageManager)); !ok {
		return &UsageError{Msg: fmt.Sprintf("unsupported package manager %q", o.PackageManager)}
	}
	return nil
}

// UsageError reports an invalid invocation. It is raised before any mutation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}
