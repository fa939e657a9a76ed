// Package branding provides compile-time identity values for the CLI.
//
// Forks edit branding.yaml next to this file before building; Go's
// //go:embed bakes it into the binary so the default template repository,
// branch, commit message and environment prefix travel with the executable.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName         string `yaml:"cli_name"`
	DisplayName     string `yaml:"display_name"`
	Description     string `yaml:"description"`
	HomeDir         string `yaml:"home_dir"`
	EnvPrefix       string `yaml:"env_prefix"`
	TemplateRepoURL string `yaml:"template_repo_url"`
	DefaultBranch   string `yaml:"default_branch"`
	CommitMessage   string `yaml:"commit_message"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:         "create-template-next-15",
			DisplayName:     "template-next-15",
			Description:     "Create a new Next.js 15 project from a template repository",
			HomeDir:         ".create-template-next-15",
			EnvPrefix:       "TEMPLATE_NEXT",
			TemplateRepoURL: "https://github.com/rudylauu/template-next-15.git",
			DefaultBranch:   "main",
			CommitMessage:   "Initialize from template-next-15",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "create-template-next-15").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable template name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME.
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "TEMPLATE_NEXT").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// TemplateRepoURL returns the default git URL the template is cloned from.
func TemplateRepoURL() string { load(); return defaults.TemplateRepoURL }

// DefaultBranch returns the branch cloned when --branch is not given.
func DefaultBranch() string { load(); return defaults.DefaultBranch }

// CommitMessage returns the message of the initial commit in new projects.
func CommitMessage() string { load(); return defaults.CommitMessage }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("repo") → "TEMPLATE_NEXT_REPO".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
