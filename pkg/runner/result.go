package runner

import (
	"bytes"

	"github.com/yaklabco/astrewrite/pkg/textedit"
)

// FileResult is the rewrite of a single file.
type FileResult struct {
	// Path is the file that was rewritten.
	Path string

	// Language is the name of the binding that parsed the file.
	Language string

	// Original is the content as read.
	Original []byte

	// Output is the rewritten content. It equals Original when the script
	// made no textual change.
	Output []byte

	// Edits are the flat text edits that turn Original into Output.
	Edits []textedit.TextEdit

	// Tracked maps tracked names to their ranges in Output.
	Tracked map[string]textedit.Span

	// Written is true if Output was committed to disk.
	Written bool

	// BackupPath is set when a backup of Original was created.
	BackupPath string
}

// Changed reports whether the rewrite changed any text.
func (fr *FileResult) Changed() bool {
	return !bytes.Equal(fr.Original, fr.Output)
}

// FileOutcome pairs a discovered path with its result or error.
type FileOutcome struct {
	// Path is the file path that was processed.
	Path string

	// Result is nil if the file could not be processed.
	Result *FileResult

	// Error is set if the file could not be processed.
	Error error
}

// Stats captures aggregate information about a run.
type Stats struct {
	// FilesDiscovered is the total number of files found during discovery.
	FilesDiscovered int

	// FilesProcessed is the number of files rewritten without error.
	FilesProcessed int

	// FilesChanged is the number of files whose text changed.
	FilesChanged int

	// FilesWritten is the number of files committed to disk.
	FilesWritten int

	// FilesErrored is the number of files that encountered errors.
	FilesErrored int

	// EditsTotal is the number of text edits across all files.
	EditsTotal int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered by path.
	Files []FileOutcome

	// Stats contains aggregate statistics for the run.
	Stats Stats
}

// HasErrors reports whether any file failed.
func (r *Result) HasErrors() bool {
	return r != nil && r.Stats.FilesErrored > 0
}

// HasChanges reports whether any file changed.
func (r *Result) HasChanges() bool {
	return r != nil && r.Stats.FilesChanged > 0
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)

	if outcome.Error != nil {
		r.Stats.FilesErrored++
		return
	}
	if outcome.Result == nil {
		return
	}

	r.Stats.FilesProcessed++
	r.Stats.EditsTotal += len(outcome.Result.Edits)
	if outcome.Result.Changed() {
		r.Stats.FilesChanged++
	}
	if outcome.Result.Written {
		r.Stats.FilesWritten++
	}
}
