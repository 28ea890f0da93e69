// Package workspace applies the display-name transform to files on disk:
// batch runs over a directory tree and a watcher for incremental runs.
package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// Runner processes a whole directory tree in parallel.
//
// The pipeline has two phases:
//  1. discovery walks the tree with doublestar include/exclude patterns
//  2. a WorkerPool transforms each file and a collector folds the results
//     into RunStats
//
// A failing file is recorded in RunStats.Errors and never stops the run.
type Runner struct {
	processor *Processor
	logger    *slog.Logger
}

// NewRunner creates a runner around processor.
func NewRunner(processor *Processor, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{processor: processor, logger: logger}
}

// Run discovers and processes the files under root. It returns an error only
// when discovery fails or ctx is canceled.
func (r *Runner) Run(ctx context.Context, root string, opts Options, progress ProgressCallback) (*RunStats, error) {
	start := time.Now()
	stats := &RunStats{StartTime: start}

	files, err := Discover(root, opts, r.logger)
	if err != nil {
		return nil, fmt.Errorf("file discovery failed: %w", err)
	}
	stats.FilesDiscovered = len(files)
	stats.DiscoveryTimeMs = time.Since(start).Milliseconds()

	r.logger.Debug("file discovery complete",
		"root", root,
		"files_found", len(files),
		"duration_ms", stats.DiscoveryTimeMs)

	if len(files) > 0 {
		if err := r.process(ctx, files, opts.Workers, stats, progress); err != nil {
			return stats, err
		}
	}

	stats.TotalTimeMs = time.Since(start).Milliseconds()
	r.logger.Info("run complete",
		"mode", opts.Mode.String(),
		"files", stats.FilesProcessed,
		"changed", stats.FilesChanged,
		"failed", stats.FilesFailed,
		"labels", stats.LabelsInserted,
		"duration_ms", stats.TotalTimeMs)
	return stats, nil
}

func (r *Runner) process(ctx context.Context, files []string, workers int, stats *RunStats, progress ProgressCallback) error {
	pool := NewWorkerPool(ctx, workers, r.processor, r.logger)
	stats.WorkerCount = pool.numWorkers
	pool.Start()

	type changedFile struct {
		jobID int
		path  string
	}
	var changed []changedFile
	total := len(files)

	// The collector must run before jobs are submitted, or Submit blocks once
	// the result channels fill up.
	done := make(chan struct{})
	go func() {
		defer close(done)
		results, errs := pool.Results(), pool.Errors()
		count := 0
		for results != nil || errs != nil {
			select {
			case res, ok := <-results:
				if !ok {
					results = nil
					continue
				}
				stats.FilesProcessed++
				if res.Result.Changed {
					stats.FilesChanged++
					stats.LabelsInserted += len(res.Result.Labels)
					changed = append(changed, changedFile{jobID: res.JobID, path: res.FilePath})
				}
				if res.Written {
					stats.FilesWritten++
				}
				count++
				if progress != nil {
					progress(count, total, res.FilePath)
				}

			case fe, ok := <-errs:
				if !ok {
					errs = nil
					continue
				}
				stats.FilesFailed++
				stats.Errors = append(stats.Errors, fe)
				r.logger.Warn("file processing failed", "file", fe.FilePath, "error", fe.Error)
				count++
				if progress != nil {
					progress(count, total, fe.FilePath)
				}
			}
		}
	}()

	var submitErr error
	for i, file := range files {
		if err := pool.Submit(FileJob{FilePath: file, JobID: i}); err != nil {
			submitErr = err
			break
		}
	}
	pool.Stop()
	<-done

	sort.Slice(changed, func(i, j int) bool { return changed[i].jobID < changed[j].jobID })
	for _, c := range changed {
		stats.Changed = append(stats.Changed, c.path)
	}
	sort.Slice(stats.Errors, func(i, j int) bool { return stats.Errors[i].FilePath < stats.Errors[j].FilePath })

	if submitErr != nil {
		return fmt.Errorf("submit jobs: %w", submitErr)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return nil
}
