package pretty_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astrewrite/internal/ui/pretty"
	"github.com/yaklabco/astrewrite/pkg/runner"
	"github.com/yaklabco/astrewrite/pkg/textedit"
)

func sampleResult() *runner.Result {
	return &runner.Result{
		Files: []runner.FileOutcome{
			{
				Path: "/work/a.cy",
				Result: &runner.FileResult{
					Path:     "/work/a.cy",
					Language: "curly",
					Original: []byte("a();\n"),
					Output:   []byte("a();\nb();\n"),
					Edits:    []textedit.TextEdit{{StartOffset: 5, EndOffset: 5, NewText: "b();\n"}},
					Tracked:  map[string]textedit.Span{"second": {Offset: 5, Length: 4}, "first": {Offset: 0, Length: 4}},
				},
			},
			{
				Path: "/work/b.cy",
				Result: &runner.FileResult{
					Path:     "/work/b.cy",
					Language: "curly",
					Original: []byte("x();\n"),
					Output:   []byte("x();\n"),
				},
			},
			{
				Path:  "/work/c.cy",
				Error: errors.New("parse failure: unexpected '}'"),
			},
		},
	}
}

func TestStatusOf(t *testing.T) {
	t.Parallel()

	result := sampleResult()
	assert.Equal(t, pretty.StatusChanged, pretty.StatusOf(result.Files[0]))
	assert.Equal(t, pretty.StatusUnchanged, pretty.StatusOf(result.Files[1]))
	assert.Equal(t, pretty.StatusError, pretty.StatusOf(result.Files[2]))

	result.Files[0].Result.Written = true
	assert.Equal(t, pretty.StatusWritten, pretty.StatusOf(result.Files[0]))
}

func TestTableFormatter_Rows(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0, "/work")
	rows := formatter.Rows(sampleResult())
	require.Len(t, rows, 3)

	assert.Equal(t, pretty.TableRow{File: "a.cy", Language: "curly", Edits: 1, Status: pretty.StatusChanged}, rows[0])
	assert.Equal(t, "b.cy", rows[1].File)
	assert.Equal(t, pretty.StatusError, rows[2].Status)
	assert.Contains(t, rows[2].Detail, "parse failure")
}

func TestTableFormatter_FormatTable(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 80, "/work")
	out := formatter.FormatTable(sampleResult())

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 7, out)
	assert.Contains(t, lines[0], "FILE")
	assert.Contains(t, lines[0], "STATUS")
	assert.True(t, strings.HasPrefix(lines[1], "===="))
	assert.Contains(t, lines[2], "a.cy")
	assert.Contains(t, lines[2], "changed")
	assert.Contains(t, lines[4], "error: parse failure")
	assert.Contains(t, lines[6], "Legend")

	for _, line := range lines[:6] {
		assert.LessOrEqual(t, len(line), 80, "line wider than terminal: %q", line)
	}
}

func TestTableFormatter_Empty(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0, "")
	assert.Empty(t, formatter.FormatTable(nil))
	assert.Empty(t, formatter.FormatTable(&runner.Result{}))
}

func TestTableFormatter_FormatTracked(t *testing.T) {
	t.Parallel()

	formatter := pretty.NewTableFormatter(pretty.NewStyles(false), false, 0, "/work")
	out := formatter.FormatTracked(sampleResult().Files[0])

	assert.Equal(t, "a.cy\n  first   1:1  0+4\n  second  2:1  5+4\n", out)
	assert.Empty(t, formatter.FormatTracked(sampleResult().Files[1]))
}

func TestFormatSummaryOneLine(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	tests := []struct {
		name  string
		stats runner.Stats
		want  string
	}{
		{
			name:  "no changes",
			stats: runner.Stats{FilesProcessed: 3},
			want:  "No changes (3 files processed)\n",
		},
		{
			name:  "pending",
			stats: runner.Stats{FilesProcessed: 2, FilesChanged: 1, EditsTotal: 1},
			want:  "1 edit in 1 file\n",
		},
		{
			name:  "written with errors",
			stats: runner.Stats{FilesProcessed: 2, FilesChanged: 2, FilesWritten: 2, FilesErrored: 1, EditsTotal: 5},
			want:  "5 edits in 2 files, 2 written, 1 error\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, styles.FormatSummaryOneLine(tt.stats))
		})
	}
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	out := styles.FormatSummary(runner.Stats{FilesDiscovered: 2, FilesProcessed: 2, FilesChanged: 1, EditsTotal: 3})
	assert.Contains(t, out, "Files changed:")
	assert.NotContains(t, out, "Files failed:")
	assert.Contains(t, out, "--write")

	out = styles.FormatSummary(runner.Stats{FilesProcessed: 1, FilesErrored: 1})
	assert.Contains(t, out, "Files failed:")
	assert.Contains(t, out, "Rewrite failed")
}

func TestFormatFileError(t *testing.T) {
	t.Parallel()

	styles := pretty.NewStyles(false)

	assert.Equal(t, "a.cy: error: boom\n", styles.FormatFileError("a.cy", errors.New("boom")))

	joined := errors.Join(errors.New("op 0 (remove): no match"), errors.New("op 2 (move): no match"))
	assert.Equal(t,
		"a.cy: error\n  op 0 (remove): no match\n  op 2 (move): no match\n",
		styles.FormatFileError("a.cy", joined))
}
