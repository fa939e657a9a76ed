// Package content copies a fetched template's top-level entries into a new
// project directory, skipping a fixed denylist (dependency folders, build
// output, VCS metadata, OS junk and log files). Copying is best-effort per
// entry by default so one unreadable file does not block the scaffold.
package content
