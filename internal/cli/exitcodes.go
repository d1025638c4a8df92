package cli

import (
	"errors"
	"io/fs"

	"github.com/yaklabco/astrewrite/pkg/runner"
)

// Exit codes for astrewrite.
const (
	// ExitSuccess indicates every file was rewritten (or needed no change).
	ExitSuccess = 0

	// ExitRewriteErrors indicates at least one file could not be rewritten.
	ExitRewriteErrors = 1

	// ExitChangesPending indicates --check found files that would change.
	ExitChangesPending = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration or edit script errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Signal errors returned by commands only to select an exit code.
var (
	// ErrRewriteFailed is returned when some files could not be rewritten.
	ErrRewriteFailed = errors.New("rewrite failed for some files")

	// ErrChangesPending is returned by --check when files would change.
	ErrChangesPending = errors.New("files would be changed")

	// ErrConfig wraps configuration and edit script errors.
	ErrConfig = errors.New("configuration error")

	// ErrUsage wraps command-line parsing errors.
	ErrUsage = errors.New("invalid usage")
)

// ExitCodeFromResult determines the exit code of a run. With check set,
// unwritten changes count as a failure.
func ExitCodeFromResult(result *runner.Result, check bool) int {
	if result == nil {
		return ExitSuccess
	}
	if result.HasErrors() {
		return ExitRewriteErrors
	}
	if check && result.Stats.FilesChanged > result.Stats.FilesWritten {
		return ExitChangesPending
	}
	return ExitSuccess
}

// ExitCodeFromError maps an error returned by a command to an exit code.
func ExitCodeFromError(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrRewriteFailed):
		return ExitRewriteErrors
	case errors.Is(err, ErrChangesPending):
		return ExitChangesPending
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig):
		return ExitConfigError
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, runner.ErrFileNotFound),
		errors.Is(err, runner.ErrPermissionDenied):
		return ExitIOError
	default:
		return ExitInternalError
	}
}

// IsSignal reports whether err only carries an exit code and needs no log line.
func IsSignal(err error) bool {
	return errors.Is(err, ErrRewriteFailed) || errors.Is(err, ErrChangesPending)
}
