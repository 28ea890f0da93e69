package util

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/edsrzf/mmap-go"
)

// FileCache maps source files read-only for the workspace runner.
//
// A mapping reflects later writes to the file, and truncating a mapped file
// makes reads past the new end fault. Callers that rewrite a file must copy
// its bytes with Bytes and Release the entry before writing.
//
// Thread-safe: lookups take a read lock, loads and releases an exclusive one.
type FileCache interface {
	// Get returns the mapped file, loading it on first access.
	Get(filePath string) (*MappedFile, error)

	// Bytes returns a private copy of the file contents. The copy stays valid
	// after Release and after the file changes on disk.
	Bytes(filePath string) ([]byte, error)

	// Release unmaps one file. Releasing an unknown path is a no-op.
	Release(filePath string) error

	// Size returns number of currently cached files.
	Size() int

	// Stats returns current cache metrics.
	Stats() FileCacheStats

	// Close unmaps all files. The cache stays usable afterwards.
	Close() error
}

// FileCacheConfig controls FileCache behavior.
type FileCacheConfig struct {
	// MaxFiles caps simultaneously mapped files. 0 means unlimited.
	MaxFiles int

	// MaxMemoryMB caps mapped address space, not resident memory. 0 means unlimited.
	MaxMemoryMB int

	// EnableMetrics turns on hit/miss counters.
	EnableMetrics bool

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// DefaultFileCacheConfig returns the limits used by the CLI. Each worker
// releases its file when done, so the limits only bound bursts.
func DefaultFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{
		MaxFiles:      4096,
		MaxMemoryMB:   1024,
		EnableMetrics: true,
	}
}

// UnboundedFileCacheConfig returns a config with no limits.
func UnboundedFileCacheConfig() *FileCacheConfig {
	return &FileCacheConfig{EnableMetrics: true}
}

// ErrCacheFull is returned by Get when loading a file would exceed a limit.
var ErrCacheFull = errors.New("file cache limit reached")

// MappedFile represents a memory-mapped file.
type MappedFile struct {
	Path string

	// Data is the mapped region, or a heap copy when mmap failed. Nil for empty files.
	Data mmap.MMap

	// File is nil for heap-backed entries.
	File *os.File

	Size     int64
	ModTime  time.Time
	MappedAt time.Time

	heap bool
}

// FileCacheStats tracks cache performance metrics.
type FileCacheStats struct {
	FilesLoaded   int64
	FilesReleased int64
	FilesCached   int
	CacheHits     int64
	CacheMisses   int64
	MmapFailures  int64
	TotalMappedMB float64
}

// NewFileCache creates a new FileCache with the given config.
// If config is nil, uses DefaultFileCacheConfig().
func NewFileCache(config *FileCacheConfig) FileCache {
	if config == nil {
		config = DefaultFileCacheConfig()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &fileCacheImpl{
		config: config,
		cache:  make(map[string]*MappedFile),
		logger: logger,
	}
}

type fileCacheImpl struct {
	config *FileCacheConfig
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]*MappedFile

	statsMu sync.Mutex
	stats   FileCacheStats
}

func (fc *fileCacheImpl) Get(filePath string) (*MappedFile, error) {
	fc.mu.RLock()
	mf, ok := fc.cache[filePath]
	fc.mu.RUnlock()
	if ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}

	fc.mu.Lock()
	defer fc.mu.Unlock()

	if mf, ok := fc.cache[filePath]; ok {
		fc.record(func(s *FileCacheStats) { s.CacheHits++ })
		return mf, nil
	}
	fc.record(func(s *FileCacheStats) { s.CacheMisses++ })

	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("stat %q: %w", filePath, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%q is a directory", filePath)
	}
	if err := fc.checkLimitsLocked(stat.Size()); err != nil {
		return nil, err
	}

	mf, err = fc.load(filePath)
	if err != nil {
		return nil, err
	}
	fc.cache[filePath] = mf
	fc.record(func(s *FileCacheStats) { s.FilesLoaded++ })
	return mf, nil
}

func (fc *fileCacheImpl) Bytes(filePath string) ([]byte, error) {
	mf, err := fc.Get(filePath)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(mf.Data))
	copy(out, mf.Data)
	return out, nil
}

// checkLimitsLocked must be called while holding mu.
func (fc *fileCacheImpl) checkLimitsLocked(newFileSize int64) error {
	if fc.config.MaxFiles > 0 && len(fc.cache) >= fc.config.MaxFiles {
		return fmt.Errorf("%w: %d files (limit %d)", ErrCacheFull, len(fc.cache), fc.config.MaxFiles)
	}
	if fc.config.MaxMemoryMB > 0 && newFileSize > 0 {
		current := fc.totalMappedMBLocked()
		next := float64(newFileSize) / (1024 * 1024)
		if current+next >= float64(fc.config.MaxMemoryMB) {
			return fmt.Errorf("%w: %.2f MB + %.2f MB (limit %d MB)",
				ErrCacheFull, current, next, fc.config.MaxMemoryMB)
		}
	}
	return nil
}

// load maps a file, falling back to a heap copy when mmap fails.
func (fc *fileCacheImpl) load(filePath string) (*MappedFile, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", filePath, err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat %q: %w", filePath, err)
	}

	mf := &MappedFile{
		Path:     filePath,
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		MappedAt: time.Now(),
	}

	// zero-length mappings are rejected by the OS
	if stat.Size() == 0 {
		file.Close()
		mf.heap = true
		return mf, nil
	}

	data, err := mmap.Map(file, mmap.RDONLY, 0)
	if err != nil {
		fc.logger.Warn("mmap failed, reading file instead",
			"file", filePath,
			"size", stat.Size(),
			"error", err)
		file.Close()

		buf, readErr := os.ReadFile(filePath)
		if readErr != nil {
			return nil, fmt.Errorf("read %q after mmap failure (%v): %w", filePath, err, readErr)
		}
		fc.record(func(s *FileCacheStats) { s.MmapFailures++ })
		mf.Data = mmap.MMap(buf)
		mf.Size = int64(len(buf))
		mf.heap = true
		return mf, nil
	}

	mf.Data = data
	mf.File = file
	return mf, nil
}

func (fc *fileCacheImpl) Release(filePath string) error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	mf, ok := fc.cache[filePath]
	if !ok {
		return nil
	}
	delete(fc.cache, filePath)
	fc.record(func(s *FileCacheStats) { s.FilesReleased++ })
	return unmap(mf)
}

func unmap(mf *MappedFile) error {
	var errs []error
	if !mf.heap && mf.Data != nil {
		if err := mf.Data.Unmap(); err != nil {
			errs = append(errs, fmt.Errorf("unmap %q: %w", mf.Path, err))
		}
	}
	if mf.File != nil {
		if err := mf.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %q: %w", mf.Path, err))
		}
	}
	return errors.Join(errs...)
}

func (fc *fileCacheImpl) Size() int {
	fc.mu.RLock()
	defer fc.mu.RUnlock()
	return len(fc.cache)
}

func (fc *fileCacheImpl) Stats() FileCacheStats {
	fc.mu.RLock()
	cached := len(fc.cache)
	mapped := fc.totalMappedMBLocked()
	fc.mu.RUnlock()

	fc.statsMu.Lock()
	defer fc.statsMu.Unlock()
	stats := fc.stats
	stats.FilesCached = cached
	stats.TotalMappedMB = mapped
	return stats
}

// totalMappedMBLocked must be called while holding mu.
func (fc *fileCacheImpl) totalMappedMBLocked() float64 {
	var total int64
	for _, mf := range fc.cache {
		total += mf.Size
	}
	return float64(total) / (1024 * 1024)
}

func (fc *fileCacheImpl) Close() error {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	var errs []error
	for path, mf := range fc.cache {
		if err := unmap(mf); err != nil {
			fc.logger.Warn("failed to release file", "path", path, "error", err)
			errs = append(errs, err)
		}
	}
	fc.cache = make(map[string]*MappedFile)

	fc.statsMu.Lock()
	fc.logger.Debug("file cache closed",
		"files_loaded", fc.stats.FilesLoaded,
		"files_released", fc.stats.FilesReleased,
		"cache_hits", fc.stats.CacheHits,
		"mmap_failures", fc.stats.MmapFailures)
	fc.statsMu.Unlock()

	return errors.Join(errs...)
}

func (fc *fileCacheImpl) record(update func(*FileCacheStats)) {
	if !fc.config.EnableMetrics {
		return
	}
	fc.statsMu.Lock()
	update(&fc.stats)
	fc.statsMu.Unlock()
}
