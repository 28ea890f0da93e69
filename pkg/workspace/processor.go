package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gnana997/displayname/pkg/transformer"
	"github.com/gnana997/displayname/pkg/util"
)

// Processor transforms single files on disk. It is shared by the runner's
// workers and the watcher.
type Processor struct {
	engine *transformer.Engine
	files  util.FileCache
	mode   Mode
	logger *slog.Logger
}

// NewProcessor creates a Processor. A nil cache gets a default FileCache.
func NewProcessor(engine *transformer.Engine, files util.FileCache, mode Mode, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if files == nil {
		cfg := util.DefaultFileCacheConfig()
		cfg.Logger = logger
		files = util.NewFileCache(cfg)
	}
	return &Processor{engine: engine, files: files, mode: mode, logger: logger}
}

// ProcessFile transforms one file. In write mode a changed file is rewritten
// in place; the mapping is released first so the rewrite never races a
// mapped read.
func (p *Processor) ProcessFile(ctx context.Context, filePath string) (FileResult, error) {
	fr := FileResult{FilePath: filePath}

	src, err := p.files.Bytes(filePath)
	if err != nil {
		return fr, fmt.Errorf("read file: %w", err)
	}
	if err := p.files.Release(filePath); err != nil {
		p.logger.Warn("release mapping", "file", filePath, "error", err)
	}

	res, err := p.engine.Transform(ctx, filePath, src)
	if err != nil {
		return fr, err
	}
	fr.Result = res

	if !res.Changed || p.mode == ModeCheck {
		return fr, nil
	}

	if err := writeFileAtomic(filePath, res.Code); err != nil {
		return fr, fmt.Errorf("write file: %w", err)
	}
	fr.Written = true

	p.logger.Info("labeled components",
		"file", filePath,
		"labels", len(res.Labels))
	return fr, nil
}

// Close releases cached mappings.
func (p *Processor) Close() error {
	return p.files.Close()
}

// writeFileAtomic replaces path through a temp file in the same directory,
// keeping the original permissions.
func writeFileAtomic(path string, data []byte) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
