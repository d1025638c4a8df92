package reporter

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/astrewrite/internal/ui/pretty"
	"github.com/yaklabco/astrewrite/pkg/runner"
)

// TextReporter writes the rewritten content of each file. With more than one
// file, each is preceded by a "==> path <==" header.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
	errOut io.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	errOut := opts.ErrorWriter
	if errOut == nil {
		errOut = opts.Writer
	}
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(pretty.IsColorEnabled(opts.Color, errOut)),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
		errOut: errOut,
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(ctx context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	headers := len(result.Files) > 1
	var changed int

	for i, file := range result.Files {
		if err := ctx.Err(); err != nil {
			return changed, fmt.Errorf("report cancelled: %w", err)
		}

		path := relativePath(file.Path, r.opts.WorkingDir)
		if file.Error != nil {
			fmt.Fprint(r.errOut, r.styles.FormatFileError(path, file.Error))
			continue
		}
		if file.Result == nil {
			continue
		}
		if file.Result.Changed() {
			changed++
		}

		if headers {
			if i > 0 {
				fmt.Fprintln(r.bw)
			}
			fmt.Fprintf(r.bw, "==> %s <==\n", path)
		}
		if _, err := r.bw.Write(file.Result.Output); err != nil {
			return changed, fmt.Errorf("write %s: %w", path, err)
		}
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.errOut, r.styles.FormatSummaryOneLine(result.Stats))
	}

	return changed, nil
}
