// Package reporter renders the results of a rewrite run.
package reporter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/yaklabco/astrewrite/pkg/runner"
)

// Reporter formats and writes rewrite results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of changed files and any write error.
	Report(ctx context.Context, result *runner.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	defaults := DefaultOptions()
	if opts.Writer == nil {
		opts.Writer = defaults.Writer
	}
	if opts.ErrorWriter == nil {
		opts.ErrorWriter = defaults.ErrorWriter
	}
	if opts.ContextLines <= 0 {
		opts.ContextLines = defaults.ContextLines
	}

	format := opts.Format
	if format == "" {
		format = FormatDiff
	}

	switch format {
	case FormatDiff:
		return NewDiffReporter(opts), nil
	case FormatText:
		return NewTextReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatSummary:
		return NewSummaryReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}

// relativePath shows path relative to workingDir, or to the process working
// directory when workingDir is empty. Paths that would need more than two
// "../" steps are shown by base name.
func relativePath(path, workingDir string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(path)
	}
	base := workingDir
	if base == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return filepath.Base(path)
		}
		base = cwd
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		return filepath.Base(path)
	}
	if strings.Count(rel, "..") > 2 {
		return filepath.Base(path)
	}
	return filepath.ToSlash(rel)
}
