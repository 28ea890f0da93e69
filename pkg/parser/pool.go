package parser

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// parserPool hands out tree-sitter parsers bound to one grammar.
//
// Parsers are created lazily up to maxSize; after that acquire blocks until a
// parser is released. A tree-sitter parser is not safe for concurrent use, so
// each parse holds its parser exclusively for the duration of Parse.
type parserPool struct {
	idle    chan *ts.Parser
	grammar unsafe.Pointer
	lang    Language
	isTSX   bool
	maxSize int

	// mutex protects created
	mutex   sync.Mutex
	created int

	logger *slog.Logger
}

func newParserPool(lang Language, grammar unsafe.Pointer, isTSX bool, maxSize int, logger *slog.Logger) *parserPool {
	return &parserPool{
		idle:    make(chan *ts.Parser, maxSize),
		grammar: grammar,
		lang:    lang,
		isTSX:   isTSX,
		maxSize: maxSize,
		logger:  logger,
	}
}

// acquire returns an idle parser, creating one while the pool is below maxSize.
func (p *parserPool) acquire() (*ts.Parser, error) {
	select {
	case parser := <-p.idle:
		return parser, nil
	default:
	}

	p.mutex.Lock()
	if p.created >= p.maxSize {
		p.mutex.Unlock()
		return <-p.idle, nil
	}

	parser := ts.NewParser()
	if parser == nil {
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to create parser")
	}
	if err := parser.SetLanguage(ts.NewLanguage(p.grammar)); err != nil {
		parser.Close()
		p.mutex.Unlock()
		return nil, fmt.Errorf("failed to set language: %w", err)
	}
	p.created++
	created := p.created
	p.mutex.Unlock()

	p.logger.Debug("created parser in pool",
		"language", p.lang.String(),
		"isTSX", p.isTSX,
		"pool_size", created)
	return parser, nil
}

// release returns a parser for reuse. It never blocks.
func (p *parserPool) release(parser *ts.Parser) {
	if parser == nil {
		return
	}

	select {
	case p.idle <- parser:
	default:
		parser.Close()
		p.logger.Warn("parser pool full, closing excess parser",
			"language", p.lang.String())
	}
}

// close releases all idle parsers. The pool cannot be used afterwards.
func (p *parserPool) close() {
	close(p.idle)

	count := 0
	for parser := range p.idle {
		if parser != nil {
			parser.Close()
			count++
		}
	}

	p.logger.Debug("closed parser pool",
		"language", p.lang.String(),
		"isTSX", p.isTSX,
		"parsers_closed", count)
}

func (p *parserPool) getCreatedCount() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.created
}
