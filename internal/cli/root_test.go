package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudylauu/template-next-15/internal/options"
	"github.com/rudylauu/template-next-15/internal/process"
	"github.com/rudylauu/template-next-15/internal/process/processtest"
	"github.com/rudylauu/template-next-15/internal/target"
	"github.com/rudylauu/template-next-15/internal/template"
)

const testRepo = "https://example.com/template-next-15.git"

// harness runs the root command against a fake runner in temp directories.
type harness struct {
	app    *app
	fake   *processtest.Fake
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		fake:   processtest.New().On("git clone", cloneTemplate(t)),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
	}
	defaults := options.Defaults()
	defaults.RepositoryURL = testRepo
	h.app = &app{
		stdout:   h.stdout,
		stderr:   h.stderr,
		workDir:  t.TempDir(),
		tempRoot: t.TempDir(),
		runner:   h.fake,
		defaults: defaults,
	}
	return h
}

func (h *harness) run(args ...string) error {
	// cobra falls back to os.Args when given nil.
	if args == nil {
		args = []string{}
	}
	return run(newRootCmd(h.app), args, h.stderr)
}

func (h *harness) projectDir(name string) string {
	return filepath.Join(h.app.workDir, name)
}

func TestHelpExitsCleanly(t *testing.T) {
	for _, args := range [][]string{
		{"--help"},
		{"-h"},
		{"myapp", "--no-git", "-h"},
	} {
		h := newHarness(t)

		require.NoError(t, h.run(args...), "args %v", args)
		assert.Contains(t, h.stdout.String(), "--no-install")
		assert.Contains(t, h.stdout.String(), "--pm string")
		assert.Empty(t, h.fake.Calls)
		assert.NoDirExists(t, h.projectDir("myapp"))
	}
}

func TestMissingProjectName(t *testing.T) {
	for _, args := range [][]string{
		{},
		{"."},
		{"--no-git"},
	} {
		h := newHarness(t)

		err := h.run(args...)

		var usage *options.UsageError
		require.ErrorAs(t, err, &usage, "args %v", args)
		assert.Contains(t, h.stderr.String(), "Error: you must specify the project name")
		assert.Contains(t, h.stderr.String(), "Usage:")
		assert.Empty(t, h.fake.Calls)

		entries, err := os.ReadDir(h.app.workDir)
		require.NoError(t, err)
		assert.Empty(t, entries, "no filesystem writes on usage errors")
	}
}

func TestDefaultRun(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp"))

	names := h.fake.Names()
	require.Len(t, names, 5)
	assert.Contains(t, names[0], "git clone --depth 1 --branch main "+testRepo)
	assert.Equal(t, []string{"git init", "git add .", "git commit -m Initialize from template-next-15", "npm install"}, names[1:])

	pkg, err := os.ReadFile(filepath.Join(h.projectDir("myapp"), "package.json"))
	require.NoError(t, err)
	assert.Contains(t, string(pkg), `"name": "myapp"`)

	out := h.stdout.String()
	assert.Contains(t, out, "Done! Project created in: myapp")
	assert.Contains(t, out, "  cd myapp\n")
	assert.Contains(t, out, "  npm run dev\n")
	assert.NotContains(t, out, "  npm install\n", "install already ran")
	assert.Contains(t, out, "git remote add origin <your-repo-url>")
}

func TestNoGitNoInstallPnpm(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp", "--no-git", "--no-install", "--pm=pnpm"))

	require.Len(t, h.fake.Calls, 1)
	assert.Equal(t, "clone", h.fake.Calls[0].Args[0])
	assert.FileExists(t, filepath.Join(h.projectDir("myapp"), "package.json"))

	out := h.stdout.String()
	assert.Contains(t, out, "  pnpm install\n")
	assert.Contains(t, out, "  pnpm run dev\n")
}

func TestFlagsBeforeProjectName(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--no-git", "--no-install", "myapp"))

	assert.DirExists(t, h.projectDir("myapp"))
	assert.Len(t, h.fake.Calls, 1)
}

func TestUnknownFlagsAreIgnored(t *testing.T) {
	for _, args := range [][]string{
		{"myapp", "--verbose", "--template=foo", "--no-git", "--no-install"},
		{"--verbose", "myapp", "--no-git", "--no-install"},
		{"-x", "myapp", "--no-git", "--no-install"},
		{"--no-git", "-qx", "myapp", "--no-install"},
	} {
		h := newHarness(t)

		require.NoError(t, h.run(args...), "args %v", args)
		assert.DirExists(t, h.projectDir("myapp"), "args %v", args)
		assert.Len(t, h.fake.Calls, 1)
	}
}

func TestDropUnknownFlags(t *testing.T) {
	flags := newRootCmd(newHarness(t).app).Flags()

	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"--verbose", "myapp"}, []string{"myapp"}},
		{[]string{"--pm", "pnpm", "myapp"}, []string{"--pm", "pnpm", "myapp"}},
		{[]string{"--pm=pnpm", "--x=1", "myapp"}, []string{"--pm=pnpm", "myapp"}},
		{[]string{"--no-git", "myapp"}, []string{"--no-git", "myapp"}},
		{[]string{"-q", "-z", "myapp"}, []string{"-q", "myapp"}},
		{[]string{"myapp", "--", "--verbose"}, []string{"myapp", "--", "--verbose"}},
		{[]string{"-", "myapp"}, []string{"-", "myapp"}},
		{[]string{"myapp", "--branch"}, []string{"myapp", "--branch"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, dropUnknownFlags(flags, tt.args), "args %v", tt.args)
	}
}

func TestBrokenConfigDoesNotBlockHelp(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("TEMPLATE_NEXT_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("repo: [unclosed\n"), 0644))

	for _, args := range [][]string{{"--help"}, {"--version"}} {
		var stdout, stderr bytes.Buffer
		require.NoError(t, execute(args, &stdout, &stderr), "args %v", args)
		assert.NotEmpty(t, stdout.String())
		assert.Empty(t, stderr.String())
	}

	var stdout, stderr bytes.Buffer
	err := execute([]string{"myapp"}, &stdout, &stderr)
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "reading config file")
}

func TestRepeatedFlagLastWins(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp", "--no-git", "--pm=yarn", "--pm=pnpm", "--branch=one", "--branch=two"))

	assert.Contains(t, h.fake.Names()[0], "--branch two ")
	assert.Len(t, h.fake.CallsTo("pnpm"), 1)
	assert.Empty(t, h.fake.CallsTo("yarn"))
}

func TestUnknownPackageManagerKeepsDefault(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp", "--no-git", "--pm=bun"))

	assert.Len(t, h.fake.CallsTo("npm"), 1)
	assert.Empty(t, h.fake.CallsTo("bun"))
}

func TestRepoAndBranchFlags(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp", "--no-git", "--no-install", "--repo=https://example.com/x.git", "--branch=dev"))

	args := h.fake.Calls[0].Args
	assert.Equal(t, []string{"clone", "--depth", "1", "--branch", "dev", "https://example.com/x.git"}, args[:6])
}

func TestCloneFailureExitsWithError(t *testing.T) {
	h := newHarness(t)
	h.fake.On("git clone", processtest.Fail(128))

	err := h.run("myapp", "--branch=dev", "--repo=https://example.com/x.git")

	var cloneErr *template.CloneError
	require.ErrorAs(t, err, &cloneErr)
	assert.Contains(t, h.stderr.String(), "code 128")
	assert.NotContains(t, h.stderr.String(), "Usage:")
	assert.DirExists(t, h.projectDir("myapp"))
}

func TestExistingDirectory(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.MkdirAll(h.projectDir("existing-dir"), 0755))

	err := h.run("existing-dir")

	var exists *target.ExistsError
	require.ErrorAs(t, err, &exists)
	assert.Contains(t, h.stderr.String(), `Error: directory "existing-dir" already exists`)
	assert.Empty(t, h.fake.Calls)
}

func TestForceFlag(t *testing.T) {
	h := newHarness(t)
	dir := h.projectDir("myapp")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.txt"), []byte("old"), 0644))

	require.NoError(t, h.run("myapp", "--force", "--no-git", "--no-install"))

	assert.NoFileExists(t, filepath.Join(dir, "old.txt"))
	assert.FileExists(t, filepath.Join(dir, "package.json"))
}

func TestSubcommandNamesAreProjectNames(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("version", "--no-git", "--no-install"))

	assert.DirExists(t, h.projectDir("version"))
}

func TestVersionFlag(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("--version"))

	assert.Contains(t, h.stdout.String(), "create-template-next-15 version dev")
	assert.Empty(t, h.fake.Calls)
}

func TestMissingFlagValueIsUsageError(t *testing.T) {
	h := newHarness(t)

	err := h.run("myapp", "--pm")

	var usage *options.UsageError
	require.ErrorAs(t, err, &usage)
	assert.Contains(t, h.stderr.String(), "Usage:")
	assert.Empty(t, h.fake.Calls)
}

func TestConfigDefaultsApply(t *testing.T) {
	h := newHarness(t)
	h.app.defaults.PackageManager = options.Yarn
	h.app.defaults.Git = false

	require.NoError(t, h.run("myapp"))

	assert.Empty(t, h.fake.CallsTo("git")[1:], "git init disabled by config")
	yarn := h.fake.CallsTo("yarn")
	require.Len(t, yarn, 1)
	assert.Empty(t, yarn[0].Args)
	assert.Contains(t, h.stdout.String(), "  yarn run dev\n")
}

func TestPostStepWarningsStillSucceed(t *testing.T) {
	h := newHarness(t)
	h.fake.On("npm", processtest.Fail(1))

	require.NoError(t, h.run("myapp", "--no-git"))

	assert.Contains(t, h.stderr.String(), "[WARN] Dependency installation failed")
	assert.Contains(t, h.stdout.String(), "Completed with 1 warning(s)")
	assert.Contains(t, h.stdout.String(), "  npm install\n")
}

func TestQuietFlag(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("myapp", "-q", "--no-git", "--no-install"))

	out := h.stdout.String()
	assert.NotContains(t, out, "Cloning template")
	assert.NotContains(t, out, "Copied:")
	assert.Contains(t, out, "Done! Project created in: myapp")
}

func TestEveryFlagIsDocumented(t *testing.T) {
	cmd := newRootCmd(newHarness(t).app)

	var names []string
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		names = append(names, f.Name)
		assert.NotEmpty(t, f.Usage, "flag --%s has no usage text", f.Name)
	})
	for _, want := range []string{"no-install", "no-git", "pm", "force", "repo", "branch"} {
		assert.Contains(t, names, want)
	}
}

// ─── Test Helpers ──────────────────────────────────────────────────

// cloneTemplate writes a small Next.js-like template into the clone
// destination, the last argument of git clone.
func cloneTemplate(t *testing.T) processtest.Handler {
	t.Helper()
	files := map[string]string{
		".git/HEAD":        "ref: refs/heads/main",
		"package.json":     `{"name":"template-next-15","private":true}`,
		"src/app/page.tsx": "export default function Page() {}",
	}
	return func(cmd process.Command) ([]byte, process.Result) {
		dest := cmd.Args[len(cmd.Args)-1]
		for rel, body := range files {
			path := filepath.Join(dest, filepath.FromSlash(rel))
			require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
			require.NoError(t, os.WriteFile(path, []byte(body), 0644))
		}
		return nil, processtest.Succeed(cmd)
	}
}
