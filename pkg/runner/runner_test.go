package runner_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/pkg/config"
	"github.com/yaklabco/astrewrite/pkg/fsutil"
	"github.com/yaklabco/astrewrite/pkg/runner"
	"github.com/yaklabco/astrewrite/pkg/script"
)

const appendLog = `ops:
  - op: insert
    list: /decls/0/body/stmts
    source: "log();"
  - op: track
    target: /decls/0/body/stmts/0
    name: first
`

func mustScript(t *testing.T, yml string) *script.Script {
	t.Helper()

	s, err := script.Parse([]byte(yml))
	require.NoError(t, err)
	return s
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func read(t *testing.T, path string) string {
	t.Helper()

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(got)
}

func TestRun_NoScript(t *testing.T) {
	t.Parallel()

	_, err := runner.Run(context.Background(), runner.Options{WorkingDir: t.TempDir()})
	assert.ErrorIs(t, err, runner.ErrScriptFailure)
}

func TestRun_NoFiles(t *testing.T) {
	t.Parallel()

	result, err := runner.Run(context.Background(), runner.Options{
		WorkingDir: t.TempDir(),
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Files)
	assert.Equal(t, 0, result.Stats.FilesDiscovered)
}

func TestRun_DryRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a := writeFile(t, dir, "a.cy", "func a() {\n    x();\n}\n")
	b := writeFile(t, dir, "b.cy", "func b() {\n    y();\n}\n")

	result, err := runner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Jobs:       2,
		Verify:     true,
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)

	require.Len(t, result.Files, 2)
	assert.Equal(t, a, result.Files[0].Path)
	assert.Equal(t, b, result.Files[1].Path)

	first := result.Files[0].Result
	require.NotNil(t, first)
	assert.Equal(t, "curly", first.Language)
	assert.Equal(t, "func a() {\n    x();\n    log();\n}\n", string(first.Output))
	assert.True(t, first.Changed())
	assert.False(t, first.Written)

	span, ok := first.Tracked["first"]
	require.True(t, ok)
	assert.Equal(t, "x();", string(first.Output[span.Offset:span.End()]))

	assert.Equal(t, runner.Stats{
		FilesDiscovered: 2,
		FilesProcessed:  2,
		FilesChanged:    2,
		EditsTotal:      len(first.Edits) + len(result.Files[1].Result.Edits),
	}, result.Stats)

	// Dry run leaves files alone.
	assert.Equal(t, "func a() {\n    x();\n}\n", read(t, a))
}

func TestRun_Write(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "main.cy", "func main() {\n    x();\n}\n")

	cfg := config.NewConfig()
	cfg.Write = true

	result, err := runner.Run(context.Background(), runner.Options{
		Paths:      []string{"main.cy"},
		WorkingDir: dir,
		Config:     cfg,
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 1)

	fr := result.Files[0].Result
	require.NotNil(t, fr)
	assert.True(t, fr.Written)
	assert.Equal(t, fsutil.BackupPath(path), fr.BackupPath)
	assert.Equal(t, 1, result.Stats.FilesWritten)

	assert.Equal(t, "func main() {\n    x();\n    log();\n}\n", read(t, path))
	assert.Equal(t, "func main() {\n    x();\n}\n", read(t, fr.BackupPath))
}

func TestRun_WriteWithoutBackup(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := writeFile(t, dir, "main.cy", "func main() {\n    x();\n}\n")

	cfg := config.NewConfig()
	cfg.Write = true
	cfg.NoBackups = true

	result, err := runner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Config:     cfg,
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)
	assert.Empty(t, result.Files[0].Result.BackupPath)

	_, err = os.Stat(fsutil.BackupPath(path))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestRun_FileErrorsDoNotStopRun(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "bad.cy", "func {\n")
	writeFile(t, dir, "empty.cy", "")
	good := writeFile(t, dir, "good.cy", "func g() {\n    x();\n}\n")

	result, err := runner.Run(context.Background(), runner.Options{
		WorkingDir: dir,
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)
	require.Len(t, result.Files, 3)

	assert.ErrorIs(t, result.Files[0].Error, runner.ErrParseFailure)
	assert.ErrorIs(t, result.Files[1].Error, runner.ErrScriptFailure)
	assert.Equal(t, good, result.Files[2].Path)
	require.NoError(t, result.Files[2].Error)

	assert.True(t, result.HasErrors())
	assert.True(t, result.HasChanges())
	assert.Equal(t, 2, result.Stats.FilesErrored)
	assert.Equal(t, 1, result.Stats.FilesProcessed)
	assert.True(t, runner.IsFileError(result.Files[0].Error))
}

func TestRun_LanguageOverride(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "func n() {\n    x();\n}\n")

	cfg := config.NewConfig()
	cfg.Language = "curly"

	result, err := runner.Run(context.Background(), runner.Options{
		Paths:      []string{"notes.txt"},
		WorkingDir: dir,
		Config:     cfg,
		Script:     mustScript(t, appendLog),
	})
	require.NoError(t, err)
	require.NoError(t, result.Files[0].Error)
	assert.Equal(t, "curly", result.Files[0].Result.Language)
}

func TestProcessContent_Style(t *testing.T) {
	t.Parallel()

	cfg := config.NewConfig()
	cfg.Style.IndentWidth = 2

	src := "func f() {\n}\n"
	res, err := runner.ProcessContent(context.Background(), "f.cy", []byte(src), runner.Options{
		Config: cfg,
		Script: mustScript(t, "ops:\n  - op: insert\n    list: /decls/0/body/stmts\n    source: \"a();\"\n"),
	})
	require.NoError(t, err)
	assert.Equal(t, "func f() {\n  a();\n}\n", string(res.Output))
}

func TestProcessContent_Unchanged(t *testing.T) {
	t.Parallel()

	src := "func f() {\n    a();\n}\n"
	res, err := runner.ProcessContent(context.Background(), "f.cy", []byte(src), runner.Options{
		Script: mustScript(t, "ops:\n  - op: track\n    target: /decls/0\n    name: f\n"),
	})
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Empty(t, res.Edits)
	assert.Equal(t, src, string(res.Output))
}

func TestProcessFile_Missing(t *testing.T) {
	t.Parallel()

	_, err := runner.ProcessFile(context.Background(), filepath.Join(t.TempDir(), "nope.cy"), runner.Options{
		Script: mustScript(t, appendLog),
	})
	assert.ErrorIs(t, err, runner.ErrFileNotFound)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.cy", "func a() {}\n")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, runner.Options{
		WorkingDir: dir,
		Script:     mustScript(t, appendLog),
	})
	assert.ErrorIs(t, err, context.Canceled)
}
