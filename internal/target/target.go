// Package target prepares the directory a new project is scaffolded into.
// Prepare is the single point past which destructive operations on the
// target path are permitted.
package target

import (
	"fmt"
	"os"
	"path/filepath"
)

// DirPerm is the permission used for created directories.
const DirPerm = 0755

// ExistsError reports a target path that already exists while force is off.
type ExistsError struct {
	Name string
	Path string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("directory %q already exists; use another name or --force", e.Name)
}

// Resolve returns name as an absolute path, relative to workDir when name
// is not already absolute.
func Resolve(workDir, name string) (string, error) {
	if filepath.IsAbs(name) {
		return filepath.Clean(name), nil
	}
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		workDir = wd
	}
	return filepath.Abs(filepath.Join(workDir, name))
}

// Prepare resolves name against workDir and creates it. An existing entry
// is refused with *ExistsError unless force is set, in which case it is
// removed recursively first. Missing parents are created.
func Prepare(workDir, name string, force bool) (string, error) {
	dir, err := Resolve(workDir, name)
	if err != nil {
		return "", err
	}

	if _, err := os.Lstat(dir); err == nil {
		if !force {
			return "", &ExistsError{Name: name, Path: dir}
		}
		// RemoveAll tolerates the entry disappearing in between.
		if err := os.RemoveAll(dir); err != nil {
			return "", fmt.Errorf("removing existing directory %s: %w", dir, err)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("inspecting %s: %w", dir, err)
	}

	if err := os.MkdirAll(dir, DirPerm); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return dir, nil
}
