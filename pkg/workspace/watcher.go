package workspace

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/gnana997/displayname/pkg/parser"
)

// ResultHandler receives the outcome of every file the watcher processes.
// Exactly one of res and err is meaningful.
type ResultHandler func(res FileResult, err error)

// Watcher re-runs the transform on source files as they change.
//
// Events for the same file are debounced, so an editor's burst of writes
// results in one transform. The watcher's own rewrites produce one more
// event, which is a no-op because the transform is idempotent.
type Watcher struct {
	watcher   *fsnotify.Watcher
	processor *Processor
	options   Options
	onResult  ResultHandler
	logger    *slog.Logger
	root      string

	debounceTimers map[string]*time.Timer
	debounceMu     sync.Mutex
	inflight       sync.WaitGroup

	stopChan chan struct{}
	stopped  bool
	mu       sync.Mutex
}

// NewWatcher creates a watcher. onResult may be nil.
func NewWatcher(processor *Processor, options Options, onResult ResultHandler, logger *slog.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if options.DebounceMs <= 0 {
		options.DebounceMs = 200
	}
	if len(options.Include) == 0 {
		options.Include = DefaultInclude
	}

	return &Watcher{
		watcher:        w,
		processor:      processor,
		options:        options,
		onResult:       onResult,
		logger:         logger,
		debounceTimers: make(map[string]*time.Timer),
		stopChan:       make(chan struct{}),
	}, nil
}

// Start watches root and every directory below it that is not excluded,
// then handles events in the background until Stop.
func (fw *Watcher) Start(root string) error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return errors.New("watcher already stopped")
	}
	fw.root = root
	fw.mu.Unlock()

	if err := fw.addTree(root); err != nil {
		return err
	}

	fw.logger.Info("file watcher started", "root", root)
	go fw.eventLoop()
	return nil
}

// Run starts the watcher and blocks until ctx is done, then stops it.
func (fw *Watcher) Run(ctx context.Context, root string) error {
	if err := fw.Start(root); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return fw.Stop()
	})
	return g.Wait()
}

func (fw *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && fw.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := fw.watcher.Add(path); err != nil {
			if path == root {
				return fmt.Errorf("watch %s: %w", path, err)
			}
			fw.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// Stop stops the watcher and waits for running transforms. Pending
// debounced events are dropped. Safe to call more than once.
func (fw *Watcher) Stop() error {
	fw.mu.Lock()
	if fw.stopped {
		fw.mu.Unlock()
		return nil
	}
	fw.stopped = true
	close(fw.stopChan)
	fw.mu.Unlock()

	fw.debounceMu.Lock()
	for path, timer := range fw.debounceTimers {
		if timer.Stop() {
			fw.inflight.Done()
		}
		delete(fw.debounceTimers, path)
	}
	fw.debounceMu.Unlock()

	err := fw.watcher.Close()
	fw.inflight.Wait()
	fw.logger.Info("file watcher stopped")
	return err
}

func (fw *Watcher) eventLoop() {
	for {
		select {
		case <-fw.stopChan:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleEvent(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Error("file watcher error", "error", err)
		}
	}
}

func (fw *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if fw.shouldIgnore(path) {
		return
	}

	if event.Has(fsnotify.Create) {
		// New directories need their own watch.
		if err := fw.watchIfDir(path); err != nil {
			fw.logger.Warn("failed to watch new directory", "path", path, "error", err)
		}
	}

	if !fw.matches(path) {
		return
	}
	fw.logger.Debug("file event", "op", event.Op.String(), "file", path)

	switch {
	case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
		fw.debounce(path)
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		fw.cancel(path)
	}
}

func (fw *Watcher) watchIfDir(path string) error {
	fw.mu.Lock()
	stopped := fw.stopped
	fw.mu.Unlock()
	if stopped {
		return nil
	}
	if ok, _ := isDir(path); !ok {
		return nil
	}
	return fw.addTree(path)
}

// debounce schedules processing of path after the debounce delay, replacing
// any timer already pending for it.
func (fw *Watcher) debounce(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	fw.mu.Lock()
	stopped := fw.stopped
	fw.mu.Unlock()
	if stopped {
		return
	}

	if timer, ok := fw.debounceTimers[path]; ok {
		if timer.Stop() {
			fw.inflight.Done()
		}
	}

	fw.inflight.Add(1)
	fw.debounceTimers[path] = time.AfterFunc(
		time.Duration(fw.options.DebounceMs)*time.Millisecond,
		func() {
			defer fw.inflight.Done()

			fw.debounceMu.Lock()
			delete(fw.debounceTimers, path)
			fw.debounceMu.Unlock()

			fw.process(path)
		},
	)
}

func (fw *Watcher) cancel(path string) {
	fw.debounceMu.Lock()
	defer fw.debounceMu.Unlock()

	if timer, ok := fw.debounceTimers[path]; ok {
		if timer.Stop() {
			fw.inflight.Done()
		}
		delete(fw.debounceTimers, path)
	}
}

func (fw *Watcher) process(path string) {
	res, err := fw.processor.ProcessFile(context.Background(), path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		fw.logger.Warn("failed to process file", "file", path, "error", err)
	} else if res.Written {
		fw.logger.Debug("file rewritten", "file", path, "labels", len(res.Result.Labels))
	}

	if fw.onResult != nil {
		fw.onResult(res, err)
	}
}

// matches reports whether path is a source file selected by the include patterns.
func (fw *Watcher) matches(path string) bool {
	if !parser.IsSourceFile(path) {
		return false
	}
	return matchAny(fw.options.Include, fw.rel(path))
}

func (fw *Watcher) shouldIgnore(path string) bool {
	switch filepath.Base(path) {
	case "node_modules", ".git", "dist", "build", ".next":
		return true
	}
	return matchAny(fw.options.Exclude, fw.rel(path))
}

func (fw *Watcher) rel(path string) string {
	fw.mu.Lock()
	root := fw.root
	fw.mu.Unlock()

	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}

// Stats returns watcher statistics.
func (fw *Watcher) Stats() WatcherStats {
	fw.debounceMu.Lock()
	pending := len(fw.debounceTimers)
	fw.debounceMu.Unlock()

	fw.mu.Lock()
	running := !fw.stopped
	fw.mu.Unlock()

	return WatcherStats{PendingFiles: pending, IsRunning: running}
}

// WatcherStats contains watcher statistics.
type WatcherStats struct {
	PendingFiles int
	IsRunning    bool
}
