package codegen

import (
	"bytes"
	"fmt"
	"slices"
	"sort"

	"github.com/gnana997/displayname/pkg/ast"
)

// Edit inserts Text at byte offset Pos of the original source.
type Edit struct {
	Pos  int
	Text string
}

// Edits computes the insertions that turn src into the text of prog. Every
// synthesized statement (one with ast.DummySpan) is placed on a new line after
// the nearest preceding original statement of its list, with that statement's
// indentation. Edits are returned in ascending Pos order; edits sharing a Pos
// keep tree order.
func Edits(src []byte, prog *ast.Program) ([]Edit, error) {
	if prog == nil || prog.Body == nil {
		return nil, nil
	}

	newline := "\n"
	if bytes.Contains(src, []byte("\r\n")) {
		newline = "\r\n"
	}

	var (
		edits []Edit
		err   error
	)
	ast.WalkBlocks(prog, func(b *ast.Block) {
		if err != nil {
			return
		}
		var anchor ast.Stmt
		for _, s := range b.Stmts {
			if !s.Span().IsDummy() {
				anchor = s
				continue
			}

			var e Edit
			e, err = insertion(src, b, anchor, s, newline)
			if err != nil {
				return
			}
			edits = append(edits, e)
		}
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].Pos < edits[j].Pos })
	return edits, nil
}

func insertion(src []byte, b *ast.Block, anchor, stmt ast.Stmt, newline string) (Edit, error) {
	text, err := Print(src, stmt)
	if err != nil {
		return Edit{}, err
	}

	if anchor == nil {
		// no original statement before it: open the list
		pos := b.Loc.Lo
		if b.Kind != ast.BlockProgram {
			pos++ // after `{`
		}
		if pos < 0 || pos > len(src) {
			return Edit{}, fmt.Errorf("block span [%d,%d) outside source", b.Loc.Lo, b.Loc.Hi)
		}
		if b.Kind == ast.BlockProgram {
			return Edit{Pos: pos, Text: text + newline}, nil
		}
		return Edit{Pos: pos, Text: newline + text}, nil
	}

	loc := anchor.Span()
	if loc.Lo < 0 || loc.Hi > len(src) || loc.Lo > loc.Hi {
		return Edit{}, fmt.Errorf("anchor span [%d,%d) outside source of %d bytes", loc.Lo, loc.Hi, len(src))
	}
	return Edit{
		Pos:  insertPos(src, loc.Hi),
		Text: newline + indentOf(src, loc.Lo) + text,
	}, nil
}

// insertPos moves an insertion point past trailing blanks and comments that
// end on the same line, so `a(); // note` keeps its comment.
func insertPos(src []byte, pos int) int {
	i := pos
	for i < len(src) {
		switch c := src[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '\n' || c == '\r':
			return i
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' && src[i] != '\r' {
				i++
			}
			return i
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			end := bytes.Index(src[i+2:], []byte("*/"))
			if end < 0 {
				return pos
			}
			comment := src[i : i+2+end+2]
			if bytes.ContainsAny(comment, "\r\n") {
				return pos
			}
			i += len(comment)
		default:
			return pos
		}
	}
	return i
}

// indentOf returns the leading blanks of the line containing pos.
func indentOf(src []byte, pos int) string {
	start := bytes.LastIndexByte(src[:pos], '\n') + 1
	end := start
	for end < len(src) && (src[end] == ' ' || src[end] == '\t') {
		end++
	}
	return string(src[start:end])
}

// ApplyEdits returns src with edits applied. Edits must be sorted by Pos.
func ApplyEdits(src []byte, edits []Edit) ([]byte, error) {
	if !slices.IsSortedFunc(edits, func(a, b Edit) int { return a.Pos - b.Pos }) {
		return nil, fmt.Errorf("edits are not sorted by position")
	}

	size := len(src)
	for _, e := range edits {
		size += len(e.Text)
	}
	out := make([]byte, 0, size)

	last := 0
	for _, e := range edits {
		if e.Pos < last || e.Pos > len(src) {
			return nil, fmt.Errorf("edit at %d outside source of %d bytes", e.Pos, len(src))
		}
		out = append(out, src[last:e.Pos]...)
		out = append(out, e.Text...)
		last = e.Pos
	}
	return append(out, src[last:]...), nil
}

// Generate returns the source text of prog, which must have been parsed from
// src and modified only by inserting synthesized statements.
func Generate(src []byte, prog *ast.Program) ([]byte, error) {
	edits, err := Edits(src, prog)
	if err != nil {
		return nil, err
	}
	if len(edits) == 0 {
		return slices.Clone(src), nil
	}
	return ApplyEdits(src, edits)
}
