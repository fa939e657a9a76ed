package toolcheck

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"

	"github.com/rudylauu/template-next-15/internal/process"
)

// versionPattern finds the first dotted version in --version output, e.g.
// "v20.11.1", "10.2.4" or "git version 2.43.0".
var versionPattern = regexp.MustCompile(`v?\d+\.\d+(?:\.\d+)?(?:-[0-9A-Za-z.-]+)?`)

// Probe runs "<name> --version" and parses the reported version.
func Probe(ctx context.Context, runner process.Runner, name string) (*semver.Version, error) {
	out, res := runner.Output(ctx, process.Command{Name: name, Args: []string{"--version"}})
	if err := res.Err(); err != nil {
		return nil, err
	}
	return ParseVersion(string(out))
}

// ParseVersion extracts a semantic version from free-form tool output.
// A leading "v" is tolerated.
func ParseVersion(output string) (*semver.Version, error) {
	match := versionPattern.FindString(output)
	if match == "" {
		return nil, fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	v, err := semver.NewVersion(strings.TrimPrefix(match, "v"))
	if err != nil {
		return nil, fmt.Errorf("parsing version %q: %w", match, err)
	}
	return v, nil
}

// CheckEngines compares the installed node with engines["node"] and returns
// a warning when node is missing or too old. Other engine keys are ignored.
func CheckEngines(ctx context.Context, runner process.Runner, engines map[string]string) []string {
	constraint, ok := engines["node"]
	if !ok || strings.TrimSpace(constraint) == "" {
		return nil
	}
	if w := checkEngine(ctx, runner, "node", constraint); w != "" {
		return []string{w}
	}
	return nil
}

func checkEngine(ctx context.Context, runner process.Runner, name, constraint string) string {
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return fmt.Sprintf("engines.%s: cannot parse constraint %q: %v", name, constraint, err)
	}

	v, err := Probe(ctx, runner, name)
	if err != nil {
		return fmt.Sprintf("%s not found (template requires %s): %v", name, constraint, err)
	}

	if ok, errs := c.Validate(v); !ok {
		reason := ""
		if len(errs) > 0 {
			reason = ": " + errs[0].Error()
		}
		return fmt.Sprintf("%s %s does not satisfy %q%s", name, v, constraint, reason)
	}
	return ""
}
