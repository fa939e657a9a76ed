// Package scaffold runs the project creation pipeline: prepare the target
// directory, fetch the template, copy its contents, patch package.json, and
// optionally initialize git and install dependencies. Failures up to and
// including the copy abort the run; later steps degrade to warnings.
package scaffold
