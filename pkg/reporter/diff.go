package reporter

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/yaklabco/astrewrite/internal/ui/pretty"
	"github.com/yaklabco/astrewrite/pkg/runner"
)

// FileDiff is the unified diff of one rewritten file.
type FileDiff struct {
	// Path is the display path used in the headers.
	Path string

	// Hunks is the diff body without the ---/+++ headers.
	Hunks string

	Additions int
	Deletions int
}

// HasChanges reports whether the diff has any hunk.
func (d *FileDiff) HasChanges() bool {
	return d.Additions > 0 || d.Deletions > 0
}

// Diff computes the line diff between original and output.
func Diff(path string, original, output []byte, context int) (*FileDiff, error) {
	a := splitLines(original)
	b := splitLines(output)

	fd := &FileDiff{Path: path}
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		switch op.Tag {
		case 'r':
			fd.Deletions += op.I2 - op.I1
			fd.Additions += op.J2 - op.J1
		case 'd':
			fd.Deletions += op.I2 - op.I1
		case 'i':
			fd.Additions += op.J2 - op.J1
		}
	}
	if !fd.HasChanges() {
		return fd, nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        a,
		B:        b,
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  context,
	})
	if err != nil {
		return nil, fmt.Errorf("diff %s: %w", path, err)
	}

	// Drop the ---/+++ lines; the reporter writes styled headers itself.
	for range 2 {
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[i+1:]
		}
	}
	fd.Hunks = text
	return fd, nil
}

// splitLines splits content after each newline. Unlike difflib.SplitLines it
// does not add an empty last line when content ends in a newline.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	lines := strings.SplitAfter(string(content), "\n")
	if last := lines[len(lines)-1]; last == "" {
		return lines[:len(lines)-1]
	}
	lines[len(lines)-1] += "\n"
	return lines
}

// DiffReporter formats results as unified diffs in GitHub style.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
	errOut io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	errOut := opts.ErrorWriter
	if errOut == nil {
		errOut = opts.Writer
	}
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
		errOut: errOut,
	}
}

// Report implements Reporter.
func (r *DiffReporter) Report(ctx context.Context, result *runner.Result) (int, error) {
	if result == nil {
		return 0, nil
	}

	var filesWithDiffs, totalAdditions, totalDeletions int

	for _, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return filesWithDiffs, fmt.Errorf("report cancelled: %w", err)
		}

		path := relativePath(file.Path, r.opts.WorkingDir)
		if file.Error != nil {
			fmt.Fprint(r.errOut, r.styles.FormatFileError(path, file.Error))
			continue
		}
		if file.Result == nil || !file.Result.Changed() {
			continue
		}

		diff, err := Diff(path, file.Result.Original, file.Result.Output, r.opts.ContextLines)
		if err != nil {
			return filesWithDiffs, err
		}
		if !diff.HasChanges() {
			continue
		}

		filesWithDiffs++
		totalAdditions += diff.Additions
		totalDeletions += diff.Deletions
		r.writeDiff(diff)
	}

	if filesWithDiffs > 0 && r.opts.ShowSummary {
		r.writeSummary(filesWithDiffs, totalAdditions, totalDeletions)
	}

	return filesWithDiffs, nil
}

func (r *DiffReporter) writeDiff(diff *FileDiff) {
	header := fmt.Sprintf("diff --git a/%s b/%s", diff.Path, diff.Path)
	fmt.Fprintln(r.out, r.styles.DiffHeader.Render(header))
	fmt.Fprintln(r.out, r.styles.DiffRemove.Render("--- a/"+diff.Path))
	fmt.Fprintln(r.out, r.styles.DiffAdd.Render("+++ b/"+diff.Path))

	for line := range strings.SplitSeq(strings.TrimSuffix(diff.Hunks, "\n"), "\n") {
		r.writeDiffLine(line)
	}
}

func (r *DiffReporter) writeDiffLine(line string) {
	var styled string

	switch {
	case strings.HasPrefix(line, "@@"):
		styled = r.styles.DiffHunk.Render(line)
	case strings.HasPrefix(line, "+"):
		styled = r.styles.DiffAdd.Render(line)
	case strings.HasPrefix(line, "-"):
		styled = r.styles.DiffRemove.Render(line)
	default:
		styled = r.styles.DiffContext.Render(line)
	}

	fmt.Fprintln(r.out, styled)
}

func (r *DiffReporter) writeSummary(files, additions, deletions int) {
	var parts []string

	fileWord := "files"
	if files == 1 {
		fileWord = "file"
	}
	parts = append(parts, fmt.Sprintf("%d %s changed", files, fileWord))

	if additions > 0 {
		insertionWord := "insertions"
		if additions == 1 {
			insertionWord = "insertion"
		}
		parts = append(parts, r.styles.DiffAdd.Render(fmt.Sprintf("%d %s(+)", additions, insertionWord)))
	}

	if deletions > 0 {
		deletionWord := "deletions"
		if deletions == 1 {
			deletionWord = "deletion"
		}
		parts = append(parts, r.styles.DiffRemove.Render(fmt.Sprintf("%d %s(-)", deletions, deletionWord)))
	}

	fmt.Fprintln(r.errOut, strings.Join(parts, ", "))
}
