package reporter

import (
	"io"
	"os"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// DefaultContextLines is the number of unchanged lines shown around a diff hunk.
const DefaultContextLines = 3

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// ErrorWriter receives per-file errors and trailing summaries, so that
	// Writer carries only the diff or content (typically os.Stderr).
	ErrorWriter io.Writer

	// Format specifies the output format.
	Format Format

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// ShowTracked lists tracked ranges in summary output.
	ShowTracked bool

	// Compact uses minified JSON.
	Compact bool

	// ContextLines is the diff context size. Zero means DefaultContextLines.
	ContextLines int

	// WorkingDir is the directory to make paths relative to.
	// If empty, the process working directory is used.
	WorkingDir string
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:       os.Stdout,
		ErrorWriter:  os.Stderr,
		Format:       FormatDiff,
		Color:        "auto",
		ShowSummary:  true,
		ContextLines: DefaultContextLines,
	}
}
