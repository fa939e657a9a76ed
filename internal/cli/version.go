package cli

import (
	"fmt"

	"github.com/rudylauu/template-next-15/internal/branding"
)

// versionString is printed by --version.
func versionString() string {
	return fmt.Sprintf("%s version %s (commit: %s, built: %s)",
		branding.CLIName(), buildVersion, buildCommit, buildDate)
}
