package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/internal/cli"
	"github.com/yaklabco/astrewrite/pkg/fsutil"
)

const (
	testSource = "func f() {\n    x();\n}\n"
	testOutput = "func f() {\n    x();\n    log();\n}\n"

	testScript = `ops:
  - op: insert
    list: /decls/0/body/stmts
    source: "log();"
  - op: track
    target: /decls/0/body/stmts/0
    name: first
`
)

// fixture is a temp directory holding a config file, an edit script and
// one source file.
type fixture struct {
	dir    string
	config string
	script string
	source string
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	dir := t.TempDir()
	f := fixture{
		dir:    dir,
		config: filepath.Join(dir, ".astrewrite.yml"),
		script: filepath.Join(dir, "edits.yml"),
		source: filepath.Join(dir, "main.cy"),
	}
	require.NoError(t, os.WriteFile(f.config, []byte("style:\n  indent_width: 4\n"), 0o644))
	require.NoError(t, os.WriteFile(f.script, []byte(testScript), 0o644))
	require.NoError(t, os.WriteFile(f.source, []byte(testSource), 0o644))
	return f
}

func (f fixture) read(t *testing.T, path string) string {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

// execute runs the root command with colors off and the fixture's config.
func execute(t *testing.T, f fixture, args ...string) (string, string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(testInfo())

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--color", "never", "--config", f.config}, args...))

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestIntegration_ApplyDiff(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, stderr, err := execute(t, f, "apply", f.script, f.source)
	require.NoError(t, err)

	assert.Contains(t, stdout, "--- a/")
	assert.Contains(t, stdout, "+++ b/")
	assert.Contains(t, stdout, "+    log();\n")
	assert.Contains(t, stderr, "1 file changed, 1 insertion(+)")

	assert.Equal(t, testSource, f.read(t, f.source), "dry run must not write")
}

func TestIntegration_ApplyText(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, _, err := execute(t, f, "apply", f.script, f.source, "--format", "text")
	require.NoError(t, err)

	assert.Equal(t, testOutput, stdout)
}

func TestIntegration_ApplyJSON(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, _, err := execute(t, f, "apply", f.script, f.source, "--format", "json")
	require.NoError(t, err)

	var out struct {
		Files []struct {
			Changed bool                      `json:"changed"`
			Output  string                    `json:"output"`
			Tracked map[string]map[string]int `json:"tracked"`
		} `json:"files"`
		Summary struct {
			FilesChanged int `json:"filesChanged"`
		} `json:"summary"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))

	require.Len(t, out.Files, 1)
	assert.True(t, out.Files[0].Changed)
	assert.Equal(t, testOutput, out.Files[0].Output)
	assert.Equal(t, map[string]int{"offset": 15, "length": 4}, out.Files[0].Tracked["first"])
	assert.Equal(t, 1, out.Summary.FilesChanged)
}

func TestIntegration_ApplyWriteAndRestore(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := execute(t, f, "apply", f.script, f.source, "--write", "--format", "summary")
	require.NoError(t, err)

	assert.Equal(t, testOutput, f.read(t, f.source))
	assert.Equal(t, testSource, f.read(t, fsutil.BackupPath(f.source)))

	_, _, err = execute(t, f, "restore", f.source)
	require.NoError(t, err)

	assert.Equal(t, testSource, f.read(t, f.source))
	_, err = os.Stat(fsutil.BackupPath(f.source))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIntegration_ApplyWriteNoBackups(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := execute(t, f, "apply", f.script, f.source, "--write", "--no-backups")
	require.NoError(t, err)

	assert.Equal(t, testOutput, f.read(t, f.source))
	_, err = os.Stat(fsutil.BackupPath(f.source))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestIntegration_ApplyCheck(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := execute(t, f, "apply", f.script, f.source, "--check")
	require.ErrorIs(t, err, cli.ErrChangesPending)
	assert.Equal(t, cli.ExitChangesPending, cli.ExitCodeFromError(err))
}

func TestIntegration_ApplyFileError(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	bad := filepath.Join(f.dir, "bad.cy")
	require.NoError(t, os.WriteFile(bad, []byte("func {\n"), 0o644))

	stdout, stderr, err := execute(t, f, "apply", f.script, f.source, bad)
	require.ErrorIs(t, err, cli.ErrRewriteFailed)

	assert.Contains(t, stdout, "+    log();\n", "good files are still reported")
	assert.Contains(t, stderr, "bad.cy")
	assert.Contains(t, stderr, "error")
}

func TestIntegration_ApplyConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		args func(f fixture) []string
	}{
		{
			name: "missing script",
			args: func(f fixture) []string {
				return []string{"apply", filepath.Join(f.dir, "nope.yml"), f.source}
			},
		},
		{
			name: "unknown format",
			args: func(f fixture) []string {
				return []string{"apply", f.script, f.source, "--format", "xml"}
			},
		},
		{
			name: "unknown language",
			args: func(f fixture) []string {
				return []string{"apply", f.script, f.source, "--language", "cobol"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t)
			_, _, err := execute(t, f, tt.args(f)...)
			require.ErrorIs(t, err, cli.ErrConfig)
			assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
		})
	}
}

func TestIntegration_UnknownFlag(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := execute(t, f, "apply", f.script, "--no-such-flag")
	require.Error(t, err)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCodeFromError(err))
}

func TestIntegration_Dump(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	t.Run("text", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, f, "dump", f.source)
		require.NoError(t, err)
		assert.Contains(t, stdout, "/decls/0/body/stmts/0")
		assert.Contains(t, stdout, "expr_stmt 2:5 [15:19)")
		assert.Contains(t, stdout, "name=f")
	})

	t.Run("json", func(t *testing.T) {
		t.Parallel()

		stdout, _, err := execute(t, f, "dump", f.source, "--format", "json")
		require.NoError(t, err)

		var nodes []struct {
			Path   string         `json:"path"`
			Kind   string         `json:"kind"`
			Line   int            `json:"line"`
			Column int            `json:"column"`
			Attrs  map[string]any `json:"attrs"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &nodes))
		require.NotEmpty(t, nodes)

		assert.Equal(t, "/", nodes[0].Path)
		assert.Equal(t, "file", nodes[0].Kind)
		assert.Equal(t, "/decls/0", nodes[1].Path)
		assert.Equal(t, "func", nodes[1].Kind)
		assert.Equal(t, "f", nodes[1].Attrs["name"])
	})

	t.Run("bad format", func(t *testing.T) {
		t.Parallel()

		_, _, err := execute(t, f, "dump", f.source, "--format", "yaml")
		require.ErrorIs(t, err, cli.ErrConfig)
	})
}

func TestIntegration_LanguagesJSON(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, _, err := execute(t, f, "languages", "--format", "json")
	require.NoError(t, err)

	var langs []struct {
		Name       string   `json:"name"`
		Extensions []string `json:"extensions"`
		Kinds      int      `json:"kinds"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &langs))
	require.Len(t, langs, 2)

	assert.Equal(t, "curly", langs[0].Name)
	assert.Contains(t, langs[0].Extensions, ".cy")
	assert.Positive(t, langs[0].Kinds)
	assert.Equal(t, "markdown", langs[1].Name)
	assert.Contains(t, langs[1].Extensions, ".md")
}

func TestIntegration_Config(t *testing.T) {
	t.Parallel()

	f := newFixture(t)

	stdout, _, err := execute(t, f, "config")
	require.NoError(t, err)
	assert.Contains(t, stdout, "# Loaded from:")
	assert.Contains(t, stdout, f.config)
	assert.Contains(t, stdout, "indent_width: 4")

	stdout, _, err = execute(t, f, "config", "--env")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ASTREWRITE_INDENT_WIDTH")
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	target := filepath.Join(f.dir, "generated.yml")

	_, _, err := execute(t, f, "init", "--output", target)
	require.NoError(t, err)
	assert.Contains(t, f.read(t, target), "indent_width: 4")

	_, _, err = execute(t, f, "init", "--output", target)
	require.Error(t, err, "existing file needs --force")

	_, _, err = execute(t, f, "init", "--output", target, "--force", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, f.read(t, target), `"indent_width": 4`)
}

func TestIntegration_RestoreWithoutBackup(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	_, _, err := execute(t, f, "restore", f.source)
	require.ErrorIs(t, err, cli.ErrNoBackup)
}

func TestIntegration_Version(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, _, err := execute(t, f, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test-version")
	assert.Contains(t, stdout, "test-commit")
}

func TestIntegration_Help(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	stdout, _, err := execute(t, f, "apply", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Usage:")
	assert.Contains(t, stdout, "apply <script> [paths...]")
	assert.Contains(t, stdout, "--write")
	assert.Contains(t, stdout, "Global Flags:")
}
