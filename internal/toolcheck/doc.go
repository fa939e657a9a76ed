// Package toolcheck probes installed executables for their version and
// compares them with the engine constraints a template declares in its
// package.json. Every finding is a warning; nothing here stops a run.
package toolcheck
