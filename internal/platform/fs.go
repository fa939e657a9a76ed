package platform

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
)

// Chmod sets permission bits; a no-op on Windows.
func Chmod(path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return os.Chmod(path, mode)
}

// Symlink creates link pointing at target, replacing whatever exists at
// link. On Windows, when symlinks are not permitted and target resolves to
// a regular file, the file is copied to link instead.
func Symlink(target, link string) error {
	if _, err := os.Lstat(link); err == nil {
		if err := os.RemoveAll(link); err != nil {
			return err
		}
	}

	err := os.Symlink(target, link)
	if err == nil || runtime.GOOS != "windows" {
		return err
	}

	if copyErr := copyLinkTarget(target, link); copyErr != nil {
		return fmt.Errorf("symlink %s: %w (copy fallback: %v)", link, err, copyErr)
	}
	return nil
}

// copyLinkTarget copies the regular file target refers to. Relative targets
// resolve against the directory holding link.
func copyLinkTarget(target, link string) error {
	src := target
	if !filepath.IsAbs(src) {
		src = filepath.Join(filepath.Dir(link), target)
	}

	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(link, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
