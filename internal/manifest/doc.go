// Package manifest rewrites the name of a scaffolded project's package.json
// and checks the result against npm's package-name rules. Patching is
// best-effort: a missing or malformed manifest never aborts a run, and the
// outcome is reported as a PatchResult status instead.
package manifest
