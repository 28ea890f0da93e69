// Package transformer runs the display-name pipeline on one source buffer:
// parse, resolve scopes, insert labels, generate text.
package transformer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/gnana997/displayname/pkg/codegen"
	"github.com/gnana997/displayname/pkg/displayname"
	"github.com/gnana997/displayname/pkg/parser"
	"github.com/gnana997/displayname/pkg/resolver"
)

var (
	// ErrUnsupportedLanguage is returned for file names without a JS/TS extension.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrParse is returned when the source has syntax errors and
	// Options.AllowErrors is false.
	ErrParse = errors.New("source contains syntax errors")
)

// DefaultCacheSize is the number of results kept when Options.CacheSize is 0.
const DefaultCacheSize = 512

// Options configures an Engine.
type Options struct {
	// ModuleLevelOnly restricts labeling to program and namespace bodies.
	ModuleLevelOnly bool
	// AllowErrors transforms sources with syntax errors instead of failing.
	// Statements the parser could not recover are left untouched.
	AllowErrors bool
	// CacheSize bounds the result cache. Negative disables caching.
	CacheSize int
}

// Result is the outcome of transforming one buffer.
type Result struct {
	FileName  string
	Language  parser.Language
	Code      []byte
	Changed   bool
	HasErrors bool
	Labels    []displayname.Label
	Skipped   []displayname.Candidate
	Duration  time.Duration
}

// Stats contains engine usage statistics.
type Stats struct {
	Transforms  int64
	Changed     int64
	CacheHits   int64
	CacheMisses int64
	Evictions   int64
	Cached      int
}

type cacheKey struct {
	hash [sha256.Size]byte
	lang parser.Language
	tsx  bool
}

// Engine is safe for concurrent use. Results are cached by content hash, so
// re-running on unchanged sources (watch mode, repeated MCP calls) skips parsing.
type Engine struct {
	parser *parser.ParserManager
	cache  *lru.Cache[cacheKey, *Result]
	opts   Options
	logger *slog.Logger

	transforms  atomic.Int64
	changed     atomic.Int64
	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
	evictions   atomic.Int64
}

// New creates an Engine. Close releases its parsers.
func New(opts Options, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		parser: parser.NewParserManager(logger),
		opts:   opts,
		logger: logger,
	}

	size := opts.CacheSize
	if size == 0 {
		size = DefaultCacheSize
	}
	if size > 0 {
		cache, err := lru.NewWithEvict(size, func(key cacheKey, value *Result) {
			e.evictions.Add(1)
			logger.Debug("evicting cached result", "file", value.FileName)
		})
		if err != nil {
			e.parser.Close()
			return nil, fmt.Errorf("create result cache: %w", err)
		}
		e.cache = cache
	}

	return e, nil
}

func (e *Engine) passOptions() []displayname.Option {
	if e.opts.ModuleLevelOnly {
		return []displayname.Option{displayname.WithModuleLevelOnly()}
	}
	return nil
}

// parse checks the language, parses and resolves src.
func (e *Engine) parse(ctx context.Context, fileName string, src []byte) (*parser.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if parser.DetectLanguage(fileName) == parser.LanguageUnknown {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedLanguage, fileName)
	}

	doc, err := e.parser.ParseDocument(src, fileName)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", fileName, err)
	}
	if doc.HasErrors && !e.opts.AllowErrors {
		return nil, fmt.Errorf("%w: %s", ErrParse, fileName)
	}

	resolver.Resolve(doc.Program)
	return doc, nil
}

// Transform inserts displayName labels into src. fileName selects the
// grammar; it does not need to exist on disk. The slices of the returned
// Result are shared with the cache and must not be modified.
func (e *Engine) Transform(ctx context.Context, fileName string, src []byte) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.transforms.Add(1)
	start := time.Now()

	key := cacheKey{
		hash: sha256.Sum256(src),
		lang: parser.DetectLanguage(fileName),
		tsx:  parser.IsTSXFile(fileName),
	}
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.cacheHits.Add(1)
			res := *cached
			res.FileName = fileName
			res.Duration = time.Since(start)
			return &res, nil
		}
		e.cacheMisses.Add(1)
	}

	doc, err := e.parse(ctx, fileName, src)
	if err != nil {
		return nil, err
	}

	report := displayname.Apply(doc.Program, e.passOptions()...)

	var code []byte
	if report.Changed() {
		code, err = codegen.Generate(src, doc.Program)
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", fileName, err)
		}
		e.changed.Add(1)
	} else {
		// The cache outlives the caller's buffer.
		code = slices.Clone(src)
	}

	res := &Result{
		FileName:  fileName,
		Language:  doc.Language,
		Code:      code,
		Changed:   report.Changed(),
		HasErrors: doc.HasErrors,
		Labels:    report.Labels,
		Skipped:   report.Skipped,
		Duration:  time.Since(start),
	}
	if e.cache != nil {
		cached := *res
		e.cache.Add(key, &cached)
	}

	e.logger.Debug("transformed source",
		"file", fileName,
		"labels", len(res.Labels),
		"skipped", len(res.Skipped),
		"duration", res.Duration)
	return res, nil
}

// Candidates lists the component bindings the pass would label in src,
// including ones that already carry a label.
func (e *Engine) Candidates(ctx context.Context, fileName string, src []byte) ([]displayname.Candidate, error) {
	doc, err := e.parse(ctx, fileName, src)
	if err != nil {
		return nil, err
	}
	return displayname.FindCandidates(doc.Program, e.passOptions()...), nil
}

// Options returns the engine configuration.
func (e *Engine) Options() Options {
	return e.opts
}

// Stats returns engine usage statistics.
func (e *Engine) Stats() Stats {
	s := Stats{
		Transforms:  e.transforms.Load(),
		Changed:     e.changed.Load(),
		CacheHits:   e.cacheHits.Load(),
		CacheMisses: e.cacheMisses.Load(),
		Evictions:   e.evictions.Load(),
	}
	if e.cache != nil {
		s.Cached = e.cache.Len()
	}
	return s
}

// Close releases the parser pools.
func (e *Engine) Close() error {
	if e.cache != nil {
		e.cache.Purge()
	}
	return e.parser.Close()
}
