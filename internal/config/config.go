package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/rudylauu/template-next-15/internal/branding"
	"github.com/rudylauu/template-next-15/internal/options"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"

	// envFileName holds extra variables for spawned git and package-manager processes.
	envFileName = ".env"
)

// Config keys.
const (
	KeyRepo    = "repo"
	KeyBranch  = "branch"
	KeyPM      = "pm"
	KeyInstall = "install"
	KeyGit     = "git"
)

// Dir returns the config directory. <PREFIX>_HOME overrides ~/<home_dir>.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnvFilePath returns the path of the env file applied to child processes.
func EnvFilePath() string {
	return filepath.Join(Dir(), envFileName)
}

// Config exposes user-level defaults layered as env > file > branding.
type Config struct {
	v *viper.Viper
}

// Load reads the config file (if present) and binds <PREFIX>_* environment
// variables. A missing config file is not an error; a malformed one is.
func Load() (*Config, error) {
	return LoadFile(FilePath())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType(fileType)
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()

	defaults := options.Defaults()
	v.SetDefault(KeyRepo, defaults.RepositoryURL)
	v.SetDefault(KeyBranch, defaults.Branch)
	v.SetDefault(KeyPM, defaults.PackageManager.String())
	v.SetDefault(KeyInstall, defaults.Install)
	v.SetDefault(KeyGit, defaults.Git)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)
}

// Defaults returns the option defaults after applying the config layers.
// An unrecognized package manager in config keeps the built-in default.
func (c *Config) Defaults() options.Options {
	o := options.Defaults()
	if v := c.v.GetString(KeyRepo); v != "" {
		o.RepositoryURL = v
	}
	if v := c.v.GetString(KeyBranch); v != "" {
		o.Branch = v
	}
	if pm, ok := options.ParsePackageManager(c.v.GetString(KeyPM)); ok {
		o.PackageManager = pm
	}
	o.Install = c.v.GetBool(KeyInstall)
	o.Git = c.v.GetBool(KeyGit)
	return o
}

// ProcessEnv reads the env file next to the config and returns its entries
// as sorted KEY=VALUE pairs. A missing file yields nil.
func ProcessEnv() ([]string, error) {
	return readEnvFile(EnvFilePath())
}

func readEnvFile(path string) ([]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	sort.Strings(env)
	return env, nil
}
