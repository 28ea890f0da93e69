package workspace

import (
	"time"

	"github.com/gnana997/displayname/pkg/transformer"
)

// Mode selects what the runner does with a changed file.
type Mode int

const (
	// ModeWrite rewrites changed files in place.
	ModeWrite Mode = iota
	// ModeCheck only reports files that would change.
	ModeCheck
)

func (m Mode) String() string {
	if m == ModeCheck {
		return "check"
	}
	return "write"
}

// DefaultInclude matches every source extension the parser handles.
var DefaultInclude = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts}"}

// DefaultExclude skips dependency and build output directories.
var DefaultExclude = []string{
	"**/node_modules",
	"**/.git",
	"**/dist",
	"**/build",
	"**/.next",
	"**/coverage",
}

// Options configures discovery and processing.
type Options struct {
	// Include patterns are doublestar globs relative to the root. Empty means DefaultInclude.
	Include []string
	// Exclude patterns prune whole directories when they match one.
	Exclude []string
	Mode    Mode
	// Workers is the number of files processed at once. 0 picks util.GetOptimalPoolSize.
	Workers int
	// DebounceMs delays watch-mode processing after the last event for a file.
	DebounceMs int
}

// DefaultOptions returns write mode over all source files.
func DefaultOptions() Options {
	return Options{
		Include:    DefaultInclude,
		Exclude:    DefaultExclude,
		Mode:       ModeWrite,
		DebounceMs: 200,
	}
}

// FileJob is a file queued for processing.
type FileJob struct {
	FilePath string
	JobID    int
}

// FileResult is the outcome for one processed file.
type FileResult struct {
	FilePath string
	Result   *transformer.Result
	// Written is set when the file was rewritten on disk.
	Written bool
	JobID   int
}

// FileError records a failure for one file. It never aborts a run.
type FileError struct {
	FilePath string
	Error    error
}

// ProgressCallback is called after each processed file.
type ProgressCallback func(done, total int, filePath string)

// RunStats summarizes a run.
type RunStats struct {
	FilesDiscovered int
	FilesProcessed  int
	FilesChanged    int
	FilesWritten    int
	FilesFailed     int
	LabelsInserted  int
	WorkerCount     int

	// Changed lists the files that changed or would change, in discovery order.
	Changed []string
	Errors  []FileError

	StartTime       time.Time
	DiscoveryTimeMs int64
	TotalTimeMs     int64
}

// HasChanges reports whether any file changed or would change.
func (s *RunStats) HasChanges() bool {
	return s.FilesChanged > 0
}
