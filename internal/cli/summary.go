package cli

import (
	"fmt"
	"io"

	"github.com/rudylauu/template-next-15/internal/options"
	"github.com/rudylauu/template-next-15/internal/scaffold"
)

// printSummary writes the success banner with the next commands to run.
func printSummary(w io.Writer, opts options.Options, res *scaffold.Result) {
	pm := opts.PackageManager

	fmt.Fprintf(w, "\nDone! Project created in: %s\n", opts.ProjectName)
	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "Completed with %d warning(s); see above.\n", len(res.Warnings))
	}

	fmt.Fprintln(w, "\nNext steps:")
	fmt.Fprintf(w, "  cd %s\n", opts.ProjectName)
	if res.Install.Status != scaffold.StepSucceeded {
		fmt.Fprintf(w, "  %s\n", pm.InstallCommand())
	}
	fmt.Fprintf(w, "  %s\n", pm.RunCommand("dev"))

	fmt.Fprintln(w, "\nTo push to GitHub:")
	if res.Git.Status != scaffold.StepSucceeded {
		fmt.Fprintln(w, "  git init && git add . && git commit -m \"Initial commit\"")
	}
	fmt.Fprintln(w, "  git remote add origin <your-repo-url>")
	fmt.Fprintln(w, "  git push -u origin main")
}
