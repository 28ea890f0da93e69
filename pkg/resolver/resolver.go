// Package resolver attaches lexical scope tokens to identifiers.
//
// Resolve is a two-step walk per scope: declarations are hoisted into the
// scope first (var to the nearest function scope, let/const/class/function to
// the enclosing block), then every identifier in the scope is looked up through
// the scope chain and stamped with the id of the scope that declares it.
// Identifiers that no scope declares keep ast.Unresolved.
//
// The pass only needs to tell same-named bindings apart. It does not model
// TDZ, with statements, sloppy-mode block functions or TypeScript type space.
package resolver

import "github.com/gnana997/displayname/pkg/ast"

// Info describes the scopes created by Resolve.
type Info struct {
	// parents[id] is the enclosing scope of id; parents[0] is unused.
	parents []ast.ScopeID
}

// Scopes returns the number of scopes created.
func (in *Info) Scopes() int {
	return len(in.parents) - 1
}

// Parent returns the enclosing scope of id, or ast.Unresolved for the program scope.
func (in *Info) Parent(id ast.ScopeID) ast.ScopeID {
	if int(id) <= 0 || int(id) >= len(in.parents) {
		return ast.Unresolved
	}
	return in.parents[id]
}

// Encloses reports whether inner is outer or nested inside it.
func (in *Info) Encloses(outer, inner ast.ScopeID) bool {
	for id := inner; id != ast.Unresolved; id = in.Parent(id) {
		if id == outer {
			return true
		}
	}
	return false
}

type scope struct {
	id     ast.ScopeID
	parent *scope
	names  map[string]struct{}
}

func (s *scope) declare(name string) {
	if name != "" {
		s.names[name] = struct{}{}
	}
}

func (s *scope) lookup(name string) ast.ScopeID {
	for sc := s; sc != nil; sc = sc.parent {
		if _, ok := sc.names[name]; ok {
			return sc.id
		}
	}
	return ast.Unresolved
}

type resolver struct {
	info *Info
	cur  *scope
}

// Resolve stamps every identifier in prog with its scope token. Running it
// again reassigns the same ids.
func Resolve(prog *ast.Program) *Info {
	r := &resolver{info: &Info{parents: []ast.ScopeID{ast.Unresolved}}}
	if prog == nil || prog.Body == nil {
		return r.info
	}

	r.push()
	hoistVars(prog.Body, r.cur)
	declareLexical(prog.Body.Stmts, r.cur)
	r.stmts(prog.Body.Stmts)
	r.pop()
	return r.info
}

func (r *resolver) push() {
	id := ast.ScopeID(len(r.info.parents))
	parent := ast.Unresolved
	if r.cur != nil {
		parent = r.cur.id
	}
	r.info.parents = append(r.info.parents, parent)
	r.cur = &scope{id: id, parent: r.cur, names: make(map[string]struct{})}
}

func (r *resolver) pop() {
	r.cur = r.cur.parent
}

func (r *resolver) stmts(list []ast.Stmt) {
	for _, s := range list {
		r.visit(s)
	}
}

func (r *resolver) ident(id *ast.Ident) {
	if id != nil {
		id.Scope = r.cur.lookup(id.Name)
	}
}

func (r *resolver) visit(n ast.Node) {
	switch n := n.(type) {
	case nil:
		return

	case *ast.Block:
		r.push()
		declareLexical(n.Stmts, r.cur)
		r.stmts(n.Stmts)
		r.pop()

	case *ast.EIdent:
		r.ident(&n.Ident)

	case *ast.SImport:
		for _, name := range n.Names {
			r.ident(name)
		}

	case *ast.SFunction:
		r.ident(n.Fn.Name)
		r.function(n.Fn.Params, n.Fn.Body)

	case *ast.SExportDefault:
		// export default function Name() {} binds Name in the module scope
		if fn, ok := n.Value.(*ast.EFunction); ok && fn.Fn.Name != nil {
			r.ident(fn.Fn.Name)
			r.function(fn.Fn.Params, fn.Fn.Body)
			return
		}
		r.visit(n.Value)

	case *ast.EFunction:
		// A named function expression sees its own name in a scope of its own.
		if n.Fn.Name != nil {
			r.push()
			r.cur.declare(n.Fn.Name.Name)
			r.ident(n.Fn.Name)
			r.function(n.Fn.Params, n.Fn.Body)
			r.pop()
			return
		}
		r.function(n.Fn.Params, n.Fn.Body)

	case *ast.EArrow:
		r.function(n.Fn.Params, n.Fn.Body)

	case *ast.SClass:
		r.ident(n.Name)
		for _, c := range n.Children {
			r.visit(c)
		}

	case *ast.EOther:
		switch n.Kind {
		case "method_definition":
			r.method(n.Children)
		case "catch_clause":
			r.push()
			for _, c := range n.Children {
				if e, ok := c.(ast.Expr); ok {
					for _, id := range PatternNames(e) {
						r.cur.declare(id.Name)
					}
				}
			}
			r.children(n)
			r.pop()
		default:
			r.children(n)
		}

	case *ast.SOther:
		switch n.Kind {
		case "for_statement", "for_in_statement":
			r.push()
			var decls []ast.Stmt
			for _, c := range n.Children {
				if s, ok := c.(*ast.SVar); ok && s.Kind != ast.VarVar {
					decls = append(decls, s)
				}
			}
			declareLexical(decls, r.cur)
			r.children(n)
			r.pop()
		default:
			r.children(n)
		}

	default:
		r.children(n)
	}
}

func (r *resolver) children(n ast.Node) {
	for _, c := range ast.Children(n) {
		r.visit(c)
	}
}

// function resolves parameters and body in a fresh function scope. A block
// body shares that scope instead of opening a nested one.
func (r *resolver) function(params []ast.Expr, body ast.Node) {
	r.push()
	defer r.pop()

	for _, p := range params {
		for _, id := range PatternNames(p) {
			r.cur.declare(id.Name)
		}
	}
	if blk, ok := body.(*ast.Block); ok && blk != nil {
		hoistVars(blk, r.cur)
		declareLexical(blk.Stmts, r.cur)
	}

	for _, p := range params {
		r.visit(p)
	}
	if blk, ok := body.(*ast.Block); ok {
		if blk != nil {
			r.stmts(blk.Stmts)
		}
		return
	}
	r.visit(body)
}

// method handles class methods, which the tree keeps as generic nodes:
// a name, a formal_parameters node and a function body block.
func (r *resolver) method(children []ast.Node) {
	var params []ast.Expr
	var body ast.Node
	for _, c := range children {
		switch c := c.(type) {
		case *ast.Block:
			body = c
		case *ast.EOther:
			if c.Kind == "formal_parameters" {
				for _, p := range c.Children {
					if e, ok := p.(ast.Expr); ok {
						params = append(params, e)
					}
				}
				continue
			}
			// computed method names are evaluated in the class scope
			r.visit(c)
		}
	}
	r.function(params, body)
}

// declareLexical declares the block-scoped bindings of one statement list.
func declareLexical(list []ast.Stmt, s *scope) {
	for _, st := range list {
		declareStmt(st, s)
	}
}

func declareStmt(st ast.Stmt, s *scope) {
	switch st := st.(type) {
	case *ast.SVar:
		if st.Kind == ast.VarVar {
			return
		}
		for _, d := range st.Decls {
			for _, id := range PatternNames(d.Name) {
				s.declare(id.Name)
			}
		}
	case *ast.SFunction:
		if st.Fn.Name != nil {
			s.declare(st.Fn.Name.Name)
		}
	case *ast.SClass:
		if st.Name != nil {
			s.declare(st.Name.Name)
		}
	case *ast.SExportDecl:
		declareStmt(st.Decl, s)
	case *ast.SExportDefault:
		switch v := st.Value.(type) {
		case *ast.EFunction:
			if v.Fn.Name != nil {
				s.declare(v.Fn.Name.Name)
			}
		case *ast.SClass:
			if v.Name != nil {
				s.declare(v.Name.Name)
			}
		}
	case *ast.SImport:
		for _, id := range st.Names {
			s.declare(id.Name)
		}
	}
}

// hoistVars declares every `var` binding under n that belongs to the function
// whose body is n. Nested functions and classes are not entered.
func hoistVars(n ast.Node, s *scope) {
	ast.Inspect(n, func(c ast.Node) bool {
		switch c := c.(type) {
		case *ast.Fn, *ast.SClass:
			return false
		case *ast.EOther:
			return c.Kind != "method_definition"
		case *ast.SVar:
			if c.Kind == ast.VarVar {
				for _, d := range c.Decls {
					for _, id := range PatternNames(d.Name) {
						s.declare(id.Name)
					}
				}
			}
		}
		return true
	})
}

// PatternNames returns the identifiers a binding pattern declares, in source
// order. Default values and computed keys inside the pattern are skipped.
func PatternNames(e ast.Expr) []*ast.Ident {
	var out []*ast.Ident
	collectPattern(e, &out)
	return out
}

func collectPattern(n ast.Node, out *[]*ast.Ident) {
	switch n := n.(type) {
	case *ast.EIdent:
		*out = append(*out, &n.Ident)
	case *ast.EOther:
		switch n.Kind {
		case "object_pattern", "array_pattern", "rest_pattern":
			for _, c := range n.Children {
				collectPattern(c, out)
			}
		case "assignment_pattern", "object_assignment_pattern":
			if len(n.Children) > 0 {
				collectPattern(n.Children[0], out)
			}
		case "pair_pattern":
			if len(n.Children) > 0 {
				collectPattern(n.Children[len(n.Children)-1], out)
			}
		case "required_parameter", "optional_parameter":
			for _, c := range n.Children {
				if isPattern(c) {
					collectPattern(c, out)
					return
				}
			}
		}
	}
}

func isPattern(n ast.Node) bool {
	switch n := n.(type) {
	case *ast.EIdent:
		return true
	case *ast.EOther:
		switch n.Kind {
		case "object_pattern", "array_pattern", "rest_pattern", "assignment_pattern":
			return true
		}
	}
	return false
}
