package displayname

import "github.com/gnana997/displayname/pkg/ast"

// displayNameProp is the property the pass assigns.
const displayNameProp = "displayName"

// LabelSet holds the names that already carry a displayName assignment in one
// statement list.
type LabelSet map[string]struct{}

// Has reports whether name is labeled.
func (s LabelSet) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// ScanExistingLabels collects X from every top-level `X.displayName = ...`
// statement in list. Compound assignments and computed members do not count.
// The match is by name, regardless of scope.
func ScanExistingLabels(list []ast.Stmt) LabelSet {
	set := make(LabelSet)
	for _, stmt := range list {
		if name, ok := LabelTarget(stmt); ok {
			set[name] = struct{}{}
		}
	}
	return set
}

// LabelTarget returns X when stmt has the shape `X.displayName = <value>`.
func LabelTarget(stmt ast.Stmt) (string, bool) {
	es, ok := stmt.(*ast.SExpr)
	if !ok {
		return "", false
	}
	assign, ok := es.Expr.(*ast.EAssign)
	if !ok || assign.Op != ast.AssignEq {
		return "", false
	}
	member, ok := assign.Target.(*ast.EMember)
	if !ok || member.Computed || member.Prop.Name != displayNameProp {
		return "", false
	}
	obj, ok := member.Object.(*ast.EIdent)
	if !ok {
		return "", false
	}
	return obj.Name, true
}

// LabelStatement builds `Name.displayName = "Name";` for c. The reference to
// Name carries c.Scope so it binds to the labeled declaration. All synthesized
// nodes carry ast.DummySpan.
func LabelStatement(c Candidate) *ast.SExpr {
	return &ast.SExpr{
		Loc: ast.DummySpan,
		Expr: &ast.EAssign{
			Loc: ast.DummySpan,
			Op:  ast.AssignEq,
			Target: &ast.EMember{
				Loc:    ast.DummySpan,
				Object: &ast.EIdent{Ident: ast.Ident{Loc: ast.DummySpan, Name: c.Name, Scope: c.Scope}},
				Prop:   ast.Ident{Loc: ast.DummySpan, Name: displayNameProp},
			},
			Value: &ast.EString{Loc: ast.DummySpan, Value: c.Name},
		},
	}
}
