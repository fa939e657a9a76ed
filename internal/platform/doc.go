// Package platform hides the filesystem differences that matter when a
// template is copied: Windows has no Unix permission bits and may refuse to
// create symlinks without developer mode.
package platform
