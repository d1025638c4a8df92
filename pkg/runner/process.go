package runner

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astrewrite/internal/logging"
	"github.com/yaklabco/astrewrite/pkg/fsutil"
	"github.com/yaklabco/astrewrite/pkg/lang"
	"github.com/yaklabco/astrewrite/pkg/rewrite"
	"github.com/yaklabco/astrewrite/pkg/script"
)

// Errors for categorizing per-file failures.
var (
	// ErrFileNotFound indicates the file does not exist.
	ErrFileNotFound = errors.New("file not found")

	// ErrPermissionDenied indicates a permission error.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrParseFailure indicates the file did not parse.
	ErrParseFailure = errors.New("parse failure")

	// ErrScriptFailure indicates the edit script could not be applied.
	ErrScriptFailure = errors.New("script failure")

	// ErrVerifyFailure indicates the rewritten output no longer parses.
	ErrVerifyFailure = errors.New("rewritten output does not parse")

	// ErrWriteFailure indicates the rewritten content could not be committed.
	ErrWriteFailure = errors.New("write failure")
)

// ProcessFile reads path, applies the script and, when the config asks for
// it, writes the result back.
//
// The steps are:
//  1. Read the file and snapshot its state.
//  2. Rewrite the content in memory (see ProcessContent).
//  3. Commit the output if writing is enabled, refusing to overwrite a
//     file that changed since step 1.
func ProcessFile(ctx context.Context, path string, opts Options) (*FileResult, error) {
	content, snap, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, categorizeError(err)
	}

	result, err := ProcessContent(ctx, path, content, opts)
	if err != nil {
		return nil, err
	}

	cfg := opts.effectiveConfig()
	if !cfg.Write || !result.Changed() {
		return result, nil
	}

	commit, err := fsutil.Commit(ctx, snap, content, result.Output, fsutil.CommitOptions{
		Backup: cfg.BackupsEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWriteFailure, err)
	}
	result.Written = commit.Written
	result.BackupPath = commit.BackupPath

	loggerFor(ctx, opts).Debug("file written",
		logging.FieldPath, path,
		"backup", commit.BackupPath)

	return result, nil
}

// ProcessContent applies the script to content without touching the disk.
func ProcessContent(ctx context.Context, path string, content []byte, opts Options) (*FileResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("processing cancelled: %w", err)
	}
	if opts.Script == nil {
		return nil, fmt.Errorf("%w: no script", ErrScriptFailure)
	}

	cfg := opts.effectiveConfig()
	logger := loggerFor(ctx, opts)

	binding, err := lang.ForFile(path, content, cfg.Language)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	tree, err := binding.Parse(path, content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailure, err)
	}

	rw := rewrite.New(tree, binding.Formatter,
		rewrite.WithOptions(cfg.Style),
		rewrite.WithLogger(logger))

	if err := opts.Script.Run(rw, script.FragmentParser(binding.ParseFragment)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptFailure, err)
	}

	rewritten, err := rw.Rewrite()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptFailure, err)
	}

	output, err := rewritten.Apply(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScriptFailure, err)
	}

	result := &FileResult{
		Path:     path,
		Language: binding.Name,
		Original: content,
		Output:   output,
		Edits:    rewritten.Edits.Leaves(),
		Tracked:  rewritten.Tracked(),
	}

	if opts.Verify && result.Changed() {
		if _, err := binding.Parse(path, output); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrVerifyFailure, err)
		}
	}

	logger.Debug("file rewritten",
		logging.FieldPath, path,
		logging.FieldLanguage, binding.Name,
		logging.FieldEdits, len(result.Edits))

	return result, nil
}

func loggerFor(ctx context.Context, opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return logging.FromContext(ctx)
}

func categorizeError(err error) error {
	switch {
	case errors.Is(err, fsutil.ErrNotFound) || errors.Is(err, os.ErrNotExist):
		return fmt.Errorf("%w: %w", ErrFileNotFound, err)
	case errors.Is(err, fsutil.ErrPermissionDenied) || errors.Is(err, os.ErrPermission):
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	default:
		return err
	}
}

// IsFileError reports whether err is one of the per-file error kinds.
func IsFileError(err error) bool {
	return errors.Is(err, ErrFileNotFound) ||
		errors.Is(err, ErrPermissionDenied) ||
		errors.Is(err, ErrParseFailure) ||
		errors.Is(err, ErrScriptFailure) ||
		errors.Is(err, ErrVerifyFailure) ||
		errors.Is(err, ErrWriteFailure)
}

