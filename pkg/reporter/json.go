package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/astrewrite/pkg/runner"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string           `json:"version"`
	Files   []JSONFileResult `json:"files"`
	Summary JSONSummary      `json:"summary"`
}

// JSONFileResult represents a single file's results.
type JSONFileResult struct {
	Path     string               `json:"path"`
	Language string               `json:"language,omitempty"`
	Changed  bool                 `json:"changed"`
	Written  bool                 `json:"written,omitempty"`
	Backup   string               `json:"backup,omitempty"`
	Edits    []JSONEdit           `json:"edits"`
	Tracked  map[string]JSONRange `json:"tracked,omitempty"`
	Output   *string              `json:"output,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// JSONEdit is a flat text edit over the original content.
type JSONEdit struct {
	StartOffset int    `json:"startOffset"`
	EndOffset   int    `json:"endOffset"`
	NewText     string `json:"newText"`
}

// JSONRange is a tracked range in the rewritten content.
type JSONRange struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	FilesDiscovered int `json:"filesDiscovered"`
	FilesProcessed  int `json:"filesProcessed"`
	FilesChanged    int `json:"filesChanged"`
	FilesWritten    int `json:"filesWritten"`
	FilesErrored    int `json:"filesErrored"`
	Edits           int `json:"edits"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *runner.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := r.buildOutput(result)

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(output); err != nil {
		return 0, fmt.Errorf("encode JSON: %w", err)
	}

	return output.Summary.FilesChanged, nil
}

func (r *JSONReporter) buildOutput(result *runner.Result) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Files:   make([]JSONFileResult, 0),
	}
	if result == nil {
		return output
	}

	output.Summary = JSONSummary{
		FilesDiscovered: result.Stats.FilesDiscovered,
		FilesProcessed:  result.Stats.FilesProcessed,
		FilesChanged:    result.Stats.FilesChanged,
		FilesWritten:    result.Stats.FilesWritten,
		FilesErrored:    result.Stats.FilesErrored,
		Edits:           result.Stats.EditsTotal,
	}

	output.Files = make([]JSONFileResult, 0, len(result.Files))
	for _, file := range result.Files {
		fileResult := JSONFileResult{
			Path:  relativePath(file.Path, r.opts.WorkingDir),
			Edits: make([]JSONEdit, 0),
		}

		if file.Error != nil {
			fileResult.Error = file.Error.Error()
		}

		if fr := file.Result; fr != nil {
			fileResult.Language = fr.Language
			fileResult.Changed = fr.Changed()
			fileResult.Written = fr.Written
			if fr.BackupPath != "" {
				fileResult.Backup = relativePath(fr.BackupPath, r.opts.WorkingDir)
			}

			for _, edit := range fr.Edits {
				fileResult.Edits = append(fileResult.Edits, JSONEdit{
					StartOffset: edit.StartOffset,
					EndOffset:   edit.EndOffset,
					NewText:     edit.NewText,
				})
			}

			if len(fr.Tracked) > 0 {
				fileResult.Tracked = make(map[string]JSONRange, len(fr.Tracked))
				for name, span := range fr.Tracked {
					fileResult.Tracked[name] = JSONRange{Offset: span.Offset, Length: span.Length}
				}
			}

			if fileResult.Changed && !fr.Written {
				out := string(fr.Output)
				fileResult.Output = &out
			}
		}

		output.Files = append(output.Files, fileResult)
	}

	return output
}
