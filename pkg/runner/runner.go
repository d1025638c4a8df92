package runner

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/yaklabco/astrewrite/internal/logging"
)

// Run discovers files under opts.Paths and rewrites them concurrently.
// Outcomes are returned in path order regardless of completion order.
// A failing file does not stop the run; its error is kept in its outcome.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Script == nil {
		return nil, fmt.Errorf("%w: no script", ErrScriptFailure)
	}

	files, err := Discover(ctx, opts)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Files: make([]FileOutcome, 0, len(files)),
	}
	result.Stats.FilesDiscovered = len(files)

	logger := loggerFor(ctx, opts)
	logger.Debug("files discovered", logging.FieldFilesDiscovered, len(files))

	if len(files) == 0 {
		return result, nil
	}

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	jobs = min(jobs, len(files))

	// Each worker owns the slots of the indexes it receives.
	outcomes := make([]FileOutcome, len(files))
	finished := make([]bool, len(files))
	indexes := make(chan int)

	var wg sync.WaitGroup
	for range jobs {
		wg.Go(func() {
			for i := range indexes {
				outcomes[i] = processOne(ctx, files[i], opts)
				finished[i] = true
			}
		})
	}

feed:
	for i := range files {
		select {
		case <-ctx.Done():
			break feed
		case indexes <- i:
		}
	}
	close(indexes)
	wg.Wait()

	for i, outcome := range outcomes {
		if finished[i] {
			result.accumulate(outcome)
		}
	}

	logger.Debug("run finished",
		logging.FieldFilesProcessed, result.Stats.FilesProcessed,
		logging.FieldFilesChanged, result.Stats.FilesChanged,
		logging.FieldFilesErrored, result.Stats.FilesErrored)

	if ctx.Err() != nil {
		return result, fmt.Errorf("run cancelled: %w", ctx.Err())
	}

	return result, nil
}

func processOne(ctx context.Context, path string, opts Options) FileOutcome {
	outcome := FileOutcome{Path: path}
	outcome.Result, outcome.Error = ProcessFile(ctx, path, opts)
	if outcome.Error != nil {
		loggerFor(ctx, opts).Debug("file failed", logging.FieldPath, path, logging.FieldError, outcome.Error)
	}
	return outcome
}
