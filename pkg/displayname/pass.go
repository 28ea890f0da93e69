package displayname

import (
	"slices"

	"github.com/gnana997/displayname/pkg/ast"
)

// Option configures Transform, Apply and FindCandidates.
type Option func(*options)

type options struct {
	moduleLevelOnly bool
}

// WithModuleLevelOnly limits the pass to the program body and TypeScript
// namespace bodies. By default every statement list is processed, including
// function bodies and plain blocks, so a component-shaped binding inside a
// test callback gets labeled too. The Babel and SWC displayName plugins only
// search module items; this option matches them.
func WithModuleLevelOnly() Option {
	return func(o *options) { o.moduleLevelOnly = true }
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) visits(b *ast.Block) bool {
	return !o.moduleLevelOnly || b.Kind.ModuleLevel()
}

// Label is one inserted displayName statement.
type Label struct {
	Candidate
	// Block is the kind of statement list the label was inserted into.
	Block ast.BlockKind
	// Anchor is the span of the statement the label follows.
	Anchor ast.Span
	// Index is the label's position in its list after insertion.
	Index int
}

// Report lists what one run of the pass did.
type Report struct {
	Labels []Label
	// Skipped holds candidates whose name was already labeled in their list.
	Skipped []Candidate
}

// Changed reports whether any statement was inserted.
func (r *Report) Changed() bool {
	return len(r.Labels) > 0
}

// Transform inserts displayName labels into prog and returns it. A nil
// program or body is returned as is.
func Transform(prog *ast.Program, opts ...Option) *ast.Program {
	Apply(prog, opts...)
	return prog
}

// Apply runs the pass over prog in place and reports the inserted labels.
func Apply(prog *ast.Program, opts ...Option) *Report {
	report := &Report{}
	if prog == nil || prog.Body == nil {
		return report
	}

	o := newOptions(opts)
	ast.WalkBlocks(prog, func(b *ast.Block) {
		if o.visits(b) {
			insertLabels(b, report)
		}
	})
	return report
}

// insertLabels runs extract, scan and insert on one statement list.
func insertLabels(b *ast.Block, report *Report) {
	candidates := ExtractCandidates(b.Stmts)
	if len(candidates) == 0 {
		return
	}
	labeled := ScanExistingLabels(b.Stmts)

	anchors := make([]ast.Span, len(b.Stmts))
	for i, s := range b.Stmts {
		anchors[i] = s.Span()
	}

	inserted := 0
	for _, c := range candidates {
		if labeled.Has(c.Name) {
			report.Skipped = append(report.Skipped, c)
			continue
		}

		at := c.Pos + 1 + inserted
		if at > len(b.Stmts) {
			at = len(b.Stmts)
		}
		b.Stmts = slices.Insert(b.Stmts, at, ast.Stmt(LabelStatement(c)))
		inserted++

		report.Labels = append(report.Labels, Label{
			Candidate: c,
			Block:     b.Kind,
			Anchor:    anchors[c.Pos],
			Index:     at,
		})
	}
}

// FindCandidates lists the candidates of every statement list the pass would
// visit, without modifying prog. Lists are reported children first.
func FindCandidates(prog *ast.Program, opts ...Option) []Candidate {
	if prog == nil || prog.Body == nil {
		return nil
	}

	o := newOptions(opts)
	var out []Candidate
	ast.WalkBlocks(prog, func(b *ast.Block) {
		if o.visits(b) {
			out = append(out, ExtractCandidates(b.Stmts)...)
		}
	})
	return out
}
