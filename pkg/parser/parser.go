package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
	ts_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	ts_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/gnana997/displayname/pkg/ast"
)

// poolKey uniquely identifies a parser pool (language + TSX variant)
type poolKey struct {
	lang  Language
	isTSX bool
}

// ParserManager manages tree-sitter parsers for JavaScript and TypeScript with
// lazy initialization and thread-safe concurrent access.
//
// Memory Management:
// - Parser pools are created lazily on first use per grammar
// - ParserManager owns parser pool instances and must be closed via Close()
// - Callers of Parse own the returned Tree and must call tree.Close()
// - ParseDocument closes its tree itself; the returned ast.Program holds no C memory
//
// Thread Safety:
// - Multiple goroutines can parse the same grammar simultaneously
// - Pool creation is synchronized with write locks
//
// Example:
//
//	manager := NewParserManager(logger)
//	defer manager.Close()
//
//	doc, err := manager.ParseDocument([]byte("export const A = () => <div />;"), "a.jsx")
//	if err != nil {
//	    return err
//	}
type ParserManager struct {
	// pools stores parser pools per grammar (lazily initialized)
	pools map[poolKey]*parserPool

	// mutex provides thread-safe access to pools map and stats
	mutex sync.RWMutex

	logger *slog.Logger

	stats struct {
		parsesCalled int
	}
}

// NewParserManager creates a new ParserManager instance.
//
// The returned manager must be closed via Close() to free resources.
func NewParserManager(logger *slog.Logger) *ParserManager {
	if logger == nil {
		logger = slog.Default()
	}

	return &ParserManager{
		pools:  make(map[poolKey]*parserPool),
		logger: logger,
	}
}

// Parse parses source code using the specified language grammar.
//
// The isTSX parameter is only relevant for TypeScript - it enables JSX support.
// The JavaScript grammar always accepts JSX.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (pm *ParserManager) Parse(source []byte, lang Language, isTSX bool) (*ts.Tree, error) {
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("cannot parse unknown language")
	}

	pm.mutex.Lock()
	pm.stats.parsesCalled++
	pm.mutex.Unlock()

	pool, err := pm.getOrCreatePool(lang, isTSX)
	if err != nil {
		return nil, fmt.Errorf("failed to get pool for %s: %w", lang, err)
	}

	parser, err := pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire parser: %w", err)
	}

	tree := parser.Parse(source, nil)

	// Release parser back to pool immediately
	pool.release(parser)

	if tree == nil {
		return nil, fmt.Errorf("parser.Parse returned nil tree")
	}

	// Partial trees are still returned; callers decide whether errors are fatal.
	if tree.RootNode().HasError() {
		pm.logger.Warn("parse tree contains errors",
			"language", lang.String(),
			"tsx", isTSX)
	}

	return tree, nil
}

// ParseFile parses a file by detecting its grammar from the file path.
//
// Returns a Tree that MUST be closed by the caller via tree.Close().
func (pm *ParserManager) ParseFile(source []byte, filePath string) (*ts.Tree, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}

	return pm.Parse(source, lang, IsTSXFile(filePath))
}

// Document is a source file converted into the display-name syntax tree.
type Document struct {
	Path      string
	Language  Language
	TSX       bool
	Program   *ast.Program
	HasErrors bool
}

// ParseDocument parses a file and converts the concrete tree into an
// *ast.Program. The tree-sitter tree is closed before returning.
func (pm *ParserManager) ParseDocument(source []byte, filePath string) (*Document, error) {
	lang := DetectLanguage(filePath)
	if lang == LanguageUnknown {
		return nil, fmt.Errorf("unsupported file extension: %s", filePath)
	}
	isTSX := IsTSXFile(filePath)

	tree, err := pm.Parse(source, lang, isTSX)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	return &Document{
		Path:      filePath,
		Language:  lang,
		TSX:       isTSX,
		Program:   Build(tree, source),
		HasErrors: tree.RootNode().HasError(),
	}, nil
}

// Close releases all parser pool resources.
//
// MUST be called when ParserManager is no longer needed to avoid memory leaks.
// After Close(), the ParserManager cannot be used.
func (pm *ParserManager) Close() error {
	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	created := 0
	for _, pool := range pm.pools {
		created += pool.getCreatedCount()
	}
	pm.logger.Info("closing ParserManager",
		"parsers_created", created,
		"parses_called", pm.stats.parsesCalled)

	for key, pool := range pm.pools {
		if pool != nil {
			pool.close()
			pm.logger.Debug("closed parser pool",
				"language", key.lang.String(),
				"isTSX", key.isTSX)
		}
	}

	pm.pools = make(map[poolKey]*parserPool)

	return nil
}

// getOrCreatePool returns an existing parser pool or creates a new one.
// Thread-safe using double-checked locking pattern.
func (pm *ParserManager) getOrCreatePool(lang Language, isTSX bool) (*parserPool, error) {
	key := poolKey{lang: lang, isTSX: isTSX && lang == LanguageTypeScript}

	pm.mutex.RLock()
	pool, exists := pm.pools[key]
	pm.mutex.RUnlock()

	if exists {
		return pool, nil
	}

	pm.mutex.Lock()
	defer pm.mutex.Unlock()

	if pool, exists = pm.pools[key]; exists {
		return pool, nil
	}

	langPtr, err := pm.GetLanguagePointer(key.lang, key.isTSX)
	if err != nil {
		return nil, err
	}

	poolSize := getDefaultPoolSize()
	pool = newParserPool(key.lang, langPtr, key.isTSX, poolSize, pm.logger)
	pm.pools[key] = pool

	pm.logger.Debug("created new parser pool",
		"language", key.lang.String(),
		"isTSX", key.isTSX,
		"maxSize", poolSize)

	return pool, nil
}

// GetLanguagePointer returns the unsafe.Pointer to the tree-sitter language grammar.
// The isTSX parameter is only relevant for TypeScript (enables JSX support).
func (pm *ParserManager) GetLanguagePointer(lang Language, isTSX bool) (unsafe.Pointer, error) {
	switch lang {
	case LanguageTypeScript:
		if isTSX {
			return ts_typescript.LanguageTSX(), nil
		}
		return ts_typescript.LanguageTypescript(), nil

	case LanguageJavaScript:
		return ts_javascript.Language(), nil

	default:
		return nil, fmt.Errorf("unsupported language: %s", lang.String())
	}
}

// GetStats returns parser usage statistics.
func (pm *ParserManager) GetStats() ParserStats {
	pm.mutex.RLock()
	defer pm.mutex.RUnlock()

	totalParsers := 0
	for _, pool := range pm.pools {
		totalParsers += pool.getCreatedCount()
	}

	return ParserStats{
		ParsersCreated: totalParsers,
		ParsesCalled:   pm.stats.parsesCalled,
	}
}

// ParserStats contains parser usage statistics.
type ParserStats struct {
	// ParsersCreated is the total number of parser instances created
	ParsersCreated int

	// ParsesCalled is the total number of Parse() calls
	ParsesCalled int
}
