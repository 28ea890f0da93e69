package displayname

import "github.com/gnana997/displayname/pkg/ast"

// CandidateKind is the declaration shape a candidate was found in.
type CandidateKind uint8

const (
	KindVariable CandidateKind = iota
	KindFunction
	KindDefaultFunction
)

func (k CandidateKind) String() string {
	switch k {
	case KindFunction:
		return "function"
	case KindDefaultFunction:
		return "default-function"
	default:
		return "variable"
	}
}

// Candidate is a binding eligible for a displayName label.
type Candidate struct {
	// Pos is the index of the originating statement in its list at scan time.
	Pos   int
	Name  string
	Scope ast.ScopeID
	Kind  CandidateKind
	// Exported is set for `export` and `export default` declarations.
	Exported bool
	// Span covers the binding identifier.
	Span ast.Span
}

// ExtractCandidates returns the candidates declared directly in list, ordered
// by statement position and then by declarator order. Statements nested in
// functions or blocks are not inspected as declarations.
func ExtractCandidates(list []ast.Stmt) []Candidate {
	var out []Candidate
	for i, stmt := range list {
		out = appendStmtCandidates(out, i, stmt, false)
	}
	return out
}

func appendStmtCandidates(out []Candidate, pos int, stmt ast.Stmt, exported bool) []Candidate {
	switch s := stmt.(type) {
	case *ast.SVar:
		for _, d := range s.Decls {
			if c, ok := declaratorCandidate(d); ok {
				c.Pos, c.Exported = pos, exported
				out = append(out, c)
			}
		}

	case *ast.SFunction:
		if c, ok := functionCandidate(s.Fn, KindFunction); ok {
			c.Pos, c.Exported = pos, exported
			out = append(out, c)
		}

	case *ast.SExportDecl:
		return appendStmtCandidates(out, pos, s.Decl, true)

	case *ast.SExportDefault:
		// Only a named function has a binding to label; arbitrary default
		// expressions are skipped.
		if fn, ok := s.Value.(*ast.EFunction); ok {
			if c, ok := functionCandidate(fn.Fn, KindDefaultFunction); ok {
				c.Pos, c.Exported = pos, true
				out = append(out, c)
			}
		}
	}
	return out
}

func declaratorCandidate(d *ast.Declarator) (Candidate, bool) {
	id, ok := d.BindingIdent()
	if !ok {
		return Candidate{}, false
	}

	switch d.Init.(type) {
	case *ast.EJSXElement, *ast.EJSXFragment, *ast.EParen, *ast.EObject:
		return Candidate{}, false
	}
	if !IsComponentProducing(d) {
		return Candidate{}, false
	}

	return Candidate{Name: id.Name, Scope: id.Scope, Kind: KindVariable, Span: id.Loc}, true
}

func functionCandidate(fn *ast.Fn, kind CandidateKind) (Candidate, bool) {
	if fn == nil || fn.Name == nil || fn.Name.Name == "" {
		return Candidate{}, false
	}
	if !IsComponentProducing(fn.Body) {
		return Candidate{}, false
	}
	return Candidate{Name: fn.Name.Name, Scope: fn.Name.Scope, Kind: kind, Span: fn.Name.Loc}, true
}
