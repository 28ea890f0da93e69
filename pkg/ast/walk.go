package ast

// Children returns the direct child nodes of n in source order. Nil children
// are omitted. Identifiers stored as plain Ident values (function names, member
// properties) are not nodes and are not returned.
func Children(n Node) []Node {
	var out []Node
	add := func(c Node) {
		if c == nil || isNilNode(c) {
			return
		}
		out = append(out, c)
	}

	switch n := n.(type) {
	case *Program:
		if n.Body != nil {
			add(n.Body)
		}
	case *Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *SVar:
		for _, d := range n.Decls {
			add(d)
		}
	case *Declarator:
		add(n.Name)
		add(n.Init)
	case *SFunction:
		add(n.Fn)
	case *Fn:
		for _, p := range n.Params {
			add(p)
		}
		add(n.Body)
	case *SClass:
		for _, c := range n.Children {
			add(c)
		}
	case *SExportDecl:
		add(n.Decl)
	case *SExportDefault:
		add(n.Value)
	case *SExpr:
		add(n.Expr)
	case *SImport:
	case *SOther:
		for _, c := range n.Children {
			add(c)
		}
	case *EIdent, *EString:
	case *EMember:
		add(n.Object)
		if n.Computed {
			add(n.Index)
		}
	case *ECall:
		add(n.Callee)
		for _, a := range n.Args {
			add(a)
		}
	case *ETaggedTemplate:
		add(n.Tag)
		if n.Quasi != nil {
			add(n.Quasi)
		}
	case *ETemplate:
		for _, e := range n.Exprs {
			add(e)
		}
	case *EJSXElement:
		for _, c := range n.Children {
			add(c)
		}
	case *EJSXFragment:
		for _, c := range n.Children {
			add(c)
		}
	case *EParen:
		add(n.Inner)
	case *EObject:
		for _, c := range n.Children {
			add(c)
		}
	case *EAssign:
		add(n.Target)
		add(n.Value)
	case *EArrow:
		add(n.Fn)
	case *EFunction:
		add(n.Fn)
	case *EOther:
		for _, c := range n.Children {
			add(c)
		}
	}
	return out
}

// isNilNode catches typed nil pointers stored in interface fields.
func isNilNode(n Node) bool {
	switch n := n.(type) {
	case *Block:
		return n == nil
	case *Fn:
		return n == nil
	case *Declarator:
		return n == nil
	case *ETemplate:
		return n == nil
	}
	return false
}

// Inspect traverses the tree rooted at n in depth-first pre-order, calling f
// for each node. If f returns false, the children of that node are skipped.
func Inspect(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
}

// WalkBlocks calls f for every Block under n, children before parents. The
// callback may rewrite the Stmts of the block it receives; nodes it inserts are
// not visited.
func WalkBlocks(n Node, f func(*Block)) {
	if n == nil {
		return
	}
	for _, c := range Children(n) {
		WalkBlocks(c, f)
	}
	if b, ok := n.(*Block); ok {
		f(b)
	}
}

// IsModuleItem reports whether s makes the enclosing file an ES module.
func IsModuleItem(s Stmt) bool {
	switch s := s.(type) {
	case *SImport, *SExportDecl, *SExportDefault:
		return true
	case *SOther:
		return s.Kind == "export_statement"
	}
	return false
}
