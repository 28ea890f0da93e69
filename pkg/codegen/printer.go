// Package codegen writes transformed trees back to source text.
//
// Original nodes are never reprinted: Generate copies the input bytes and
// splices the text of synthesized statements in after their anchors, so
// formatting, comments and everything the tree does not model survive.
package codegen

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/gnana997/displayname/pkg/ast"
)

// Print renders n. Nodes with a source span are copied from src; synthesized
// nodes are printed in canonical form, e.g. `Foo.displayName = "Foo";`.
func Print(src []byte, n ast.Node) (string, error) {
	var sb strings.Builder
	if err := printNode(&sb, src, n); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func printNode(sb *strings.Builder, src []byte, n ast.Node) error {
	if n == nil {
		return fmt.Errorf("cannot print nil node")
	}
	if loc := n.Span(); !loc.IsDummy() && src != nil {
		if loc.Lo > loc.Hi || loc.Hi > len(src) {
			return fmt.Errorf("span [%d,%d) outside source of %d bytes", loc.Lo, loc.Hi, len(src))
		}
		sb.Write(src[loc.Lo:loc.Hi])
		return nil
	}

	switch n := n.(type) {
	case *ast.SExpr:
		if err := printNode(sb, src, n.Expr); err != nil {
			return err
		}
		sb.WriteByte(';')

	case *ast.EAssign:
		if err := printNode(sb, src, n.Target); err != nil {
			return err
		}
		sb.WriteString(" ")
		sb.WriteString(string(n.Op))
		sb.WriteString(" ")
		return printNode(sb, src, n.Value)

	case *ast.EMember:
		if err := printNode(sb, src, n.Object); err != nil {
			return err
		}
		switch {
		case n.Computed:
			if n.Optional {
				sb.WriteString("?.")
			}
			sb.WriteByte('[')
			if err := printNode(sb, src, n.Index); err != nil {
				return err
			}
			sb.WriteByte(']')
		case n.Optional:
			sb.WriteString("?.")
			sb.WriteString(n.Prop.Name)
		default:
			sb.WriteByte('.')
			sb.WriteString(n.Prop.Name)
		}

	case *ast.EIdent:
		sb.WriteString(n.Name)

	case *ast.EString:
		sb.WriteString(QuoteString(n.Value))

	default:
		return fmt.Errorf("no canonical form for synthesized %T", n)
	}
	return nil
}

// QuoteString returns s as a double-quoted JavaScript string literal.
// Printable characters, including non-ASCII, are kept verbatim.
func QuoteString(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			sb.WriteString(`\"`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\r':
			sb.WriteString(`\r`)
		case '\t':
			sb.WriteString(`\t`)
		case '\u2028', '\u2029', utf8.RuneError:
			sb.WriteString(unicodeEscape(r))
		default:
			if r < 0x20 || r == 0x7f {
				sb.WriteString(unicodeEscape(r))
				continue
			}
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}

func unicodeEscape(r rune) string {
	hex := strconv.FormatInt(int64(r), 16)
	return `\u` + strings.Repeat("0", 4-len(hex)) + hex
}
