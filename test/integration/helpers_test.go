//go:build integration

package integration_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // TEMPLATE_NEXT_HOME: config.yaml and .env
	WorkDir string // where projects are created
	TempDir string // parent of temporary clones
	RepoURL string // file:// URL of the template repository
}

// setupTestEnv requires git, creates a template repository and points the
// config directory at a temp dir. Git identity comes from the environment
// so no global git config is needed.
func setupTestEnv(t *testing.T, files map[string]string) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}

	env := &testEnv{
		HomeDir: t.TempDir(),
		WorkDir: t.TempDir(),
		TempDir: t.TempDir(),
	}

	t.Setenv("TEMPLATE_NEXT_HOME", env.HomeDir)
	t.Setenv("GIT_AUTHOR_NAME", "Integration Test")
	t.Setenv("GIT_AUTHOR_EMAIL", "test@example.com")
	t.Setenv("GIT_COMMITTER_NAME", "Integration Test")
	t.Setenv("GIT_COMMITTER_EMAIL", "test@example.com")
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	repo := filepath.Join(t.TempDir(), "template")
	for rel, body := range files {
		writeFile(t, filepath.Join(repo, filepath.FromSlash(rel)), body)
	}
	git(t, repo, "init", "--quiet", "--initial-branch=main")
	git(t, repo, "add", ".")
	git(t, repo, "commit", "--quiet", "-m", "template")

	env.RepoURL = "file://" + filepath.ToSlash(repo)
	return env
}

// git runs git in dir and returns its trimmed stdout.
func git(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %s: %v", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected %s to exist: %v", path, err)
	}
}

func assertNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Lstat(path); err == nil {
		t.Errorf("expected %s to be absent", path)
	}
}
