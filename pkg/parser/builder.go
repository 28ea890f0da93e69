package parser

import (
	"strings"

	ts "github.com/tree-sitter/go-tree-sitter"

	"github.com/gnana997/displayname/pkg/ast"
)

// Builder converts a tree-sitter concrete syntax tree into an *ast.Program.
//
// Statement and expression kinds the display-name pass inspects are mapped to
// dedicated ast variants. Everything else becomes ast.SOther / ast.EOther with
// its named children converted recursively, so nothing below an unrecognized
// construct is lost to later traversals.
//
// Builder does not retain the tree; the returned program only references the
// source through byte spans.
type Builder struct {
	source []byte
}

// NewBuilder creates a builder for the given source buffer.
func NewBuilder(source []byte) *Builder {
	return &Builder{source: source}
}

// Build converts a parsed tree. The tree may contain ERROR nodes; they are
// kept as opaque statements or expressions.
func Build(tree *ts.Tree, source []byte) *ast.Program {
	return NewBuilder(source).Build(tree.RootNode())
}

// Build converts the root `program` node.
func (b *Builder) Build(root *ts.Node) *ast.Program {
	body := &ast.Block{Loc: b.span(root), Kind: ast.BlockProgram}
	for _, c := range b.namedChildren(root) {
		body.Stmts = append(body.Stmts, b.stmt(c))
	}

	prog := &ast.Program{Loc: body.Loc, Kind: ast.ProgramScript, Body: body}
	for _, s := range body.Stmts {
		if ast.IsModuleItem(s) {
			prog.Kind = ast.ProgramModule
			break
		}
	}
	return prog
}

// stmt converts a node found in statement position.
func (b *Builder) stmt(n *ts.Node) ast.Stmt {
	switch n.Kind() {
	case "lexical_declaration", "variable_declaration":
		return b.varDecl(n)
	case "function_declaration", "generator_function_declaration":
		return &ast.SFunction{Loc: b.span(n), Fn: b.fn(n)}
	case "class_declaration", "abstract_class_declaration":
		return b.classDecl(n)
	case "export_statement":
		return b.exportStmt(n)
	case "expression_statement":
		inner := b.firstNamed(n)
		if inner == nil {
			return &ast.SOther{Loc: b.span(n), Kind: n.Kind()}
		}
		return &ast.SExpr{Loc: b.span(n), Expr: b.expr(inner)}
	case "import_statement":
		return b.importStmt(n)
	case "statement_block":
		return b.block(n, ast.BlockStatement)
	}
	return &ast.SOther{Loc: b.span(n), Kind: n.Kind(), Children: b.children(n)}
}

func (b *Builder) varDecl(n *ts.Node) *ast.SVar {
	v := &ast.SVar{Loc: b.span(n), Kind: ast.VarVar}
	if n.Kind() == "lexical_declaration" {
		if kind := n.ChildByFieldName("kind"); kind != nil {
			switch kind.Utf8Text(b.source) {
			case "let":
				v.Kind = ast.VarLet
			case "const":
				v.Kind = ast.VarConst
			}
		}
	}
	for _, c := range b.namedChildren(n) {
		if c.Kind() != "variable_declarator" {
			continue
		}
		d := &ast.Declarator{Loc: b.span(c)}
		if name := c.ChildByFieldName("name"); name != nil {
			d.Name = b.expr(name)
		}
		if value := c.ChildByFieldName("value"); value != nil {
			d.Init = b.expr(value)
		}
		v.Decls = append(v.Decls, d)
	}
	return v
}

func (b *Builder) classDecl(n *ts.Node) *ast.SClass {
	c := &ast.SClass{Loc: b.span(n)}
	name := n.ChildByFieldName("name")
	if name != nil {
		c.Name = b.ident(name)
	}
	for _, child := range b.namedChildren(n) {
		if name != nil && child.StartByte() == name.StartByte() && child.Kind() == name.Kind() {
			continue
		}
		c.Children = append(c.Children, b.node(child, n.Kind()))
	}
	return c
}

// exportStmt maps the export forms:
//
//	export <declaration>               -> SExportDecl
//	export default function Name() {}  -> SExportDefault{EFunction}
//	export default <expression>        -> SExportDefault
//	export { a, b } / export * from    -> SOther
func (b *Builder) exportStmt(n *ts.Node) ast.Stmt {
	loc := b.span(n)
	decl := n.ChildByFieldName("declaration")
	value := n.ChildByFieldName("value")

	if b.hasToken(n, "default") {
		target := decl
		if target == nil {
			target = value
		}
		switch {
		case target == nil:
		case target.Kind() == "function_declaration" || target.Kind() == "generator_function_declaration":
			return &ast.SExportDefault{Loc: loc, Value: b.expr(target)}
		default:
			return &ast.SExportDefault{Loc: loc, Value: b.node(target, n.Kind())}
		}
	}
	if decl != nil {
		return &ast.SExportDecl{Loc: loc, Decl: b.stmt(decl)}
	}
	return &ast.SOther{Loc: loc, Kind: n.Kind(), Children: b.children(n)}
}

func (b *Builder) importStmt(n *ts.Node) *ast.SImport {
	imp := &ast.SImport{Loc: b.span(n)}
	if src := n.ChildByFieldName("source"); src != nil {
		imp.Source = stringContent(src.Utf8Text(b.source))
	}
	for _, c := range b.namedChildren(n) {
		if c.Kind() == "import_clause" {
			imp.Names = append(imp.Names, b.importBindings(c)...)
		}
	}
	return imp
}

// importBindings collects the local names an import clause binds.
func (b *Builder) importBindings(n *ts.Node) []*ast.Ident {
	var names []*ast.Ident
	for _, c := range b.namedChildren(n) {
		switch c.Kind() {
		case "identifier":
			names = append(names, b.ident(c))
		case "namespace_import":
			if id := b.firstNamedOfKind(c, "identifier"); id != nil {
				names = append(names, b.ident(id))
			}
		case "named_imports":
			for _, spec := range b.namedChildren(c) {
				if spec.Kind() != "import_specifier" {
					continue
				}
				local := spec.ChildByFieldName("alias")
				if local == nil {
					local = spec.ChildByFieldName("name")
				}
				if local != nil && local.Kind() == "identifier" {
					names = append(names, b.ident(local))
				}
			}
		}
	}
	return names
}

func (b *Builder) block(n *ts.Node, kind ast.BlockKind) *ast.Block {
	blk := &ast.Block{Loc: b.span(n), Kind: kind}
	for _, c := range b.namedChildren(n) {
		blk.Stmts = append(blk.Stmts, b.stmt(c))
	}
	return blk
}

// fn converts any function-like node: declarations, expressions and arrows.
func (b *Builder) fn(n *ts.Node) *ast.Fn {
	f := &ast.Fn{Loc: b.span(n)}
	if name := n.ChildByFieldName("name"); name != nil {
		f.Name = b.ident(name)
	}
	if param := n.ChildByFieldName("parameter"); param != nil {
		f.Params = []ast.Expr{b.expr(param)}
	} else if params := n.ChildByFieldName("parameters"); params != nil {
		for _, p := range b.namedChildren(params) {
			f.Params = append(f.Params, b.expr(p))
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		if body.Kind() == "statement_block" {
			f.Body = b.block(body, ast.BlockFunction)
		} else {
			f.Body = b.expr(body)
		}
	}
	f.Async = b.hasToken(n, "async")
	f.Generator = b.hasToken(n, "*")
	return f
}

// expr converts a node found in expression (or pattern) position.
func (b *Builder) expr(n *ts.Node) ast.Expr {
	loc := b.span(n)
	switch n.Kind() {
	case "identifier", "shorthand_property_identifier", "shorthand_property_identifier_pattern":
		return &ast.EIdent{Ident: *b.ident(n)}

	case "member_expression":
		m := &ast.EMember{Loc: loc, Optional: b.hasOptionalChain(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			m.Object = b.expr(obj)
		}
		if prop := n.ChildByFieldName("property"); prop != nil {
			m.Prop = *b.ident(prop)
		}
		return m

	case "subscript_expression":
		m := &ast.EMember{Loc: loc, Computed: true, Optional: b.hasOptionalChain(n)}
		if obj := n.ChildByFieldName("object"); obj != nil {
			m.Object = b.expr(obj)
		}
		if idx := n.ChildByFieldName("index"); idx != nil {
			m.Index = b.expr(idx)
		}
		return m

	case "call_expression":
		return b.call(n)

	case "template_string":
		return b.template(n)

	case "jsx_element":
		return b.jsxElement(n)

	case "jsx_self_closing_element":
		el := &ast.EJSXElement{Loc: loc}
		if name := n.ChildByFieldName("name"); name != nil {
			el.Tag = name.Utf8Text(b.source)
		}
		el.Children = b.childrenExcept(n, n.ChildByFieldName("name"))
		return el

	case "jsx_fragment":
		return &ast.EJSXFragment{Loc: loc, Children: b.children(n)}

	case "parenthesized_expression":
		inner := b.firstNamed(n)
		if inner == nil {
			return &ast.EOther{Loc: loc, Kind: n.Kind()}
		}
		return &ast.EParen{Loc: loc, Inner: b.expr(inner)}

	case "object":
		return &ast.EObject{Loc: loc, Children: b.children(n)}

	case "assignment_expression", "augmented_assignment_expression":
		a := &ast.EAssign{Loc: loc, Op: ast.AssignEq}
		if op := n.ChildByFieldName("operator"); op != nil {
			a.Op = ast.AssignOp(op.Utf8Text(b.source))
		}
		if left := n.ChildByFieldName("left"); left != nil {
			a.Target = b.expr(left)
		}
		if right := n.ChildByFieldName("right"); right != nil {
			a.Value = b.expr(right)
		}
		return a

	case "string":
		return &ast.EString{Loc: loc, Value: stringContent(n.Utf8Text(b.source))}

	case "arrow_function":
		return &ast.EArrow{Fn: b.fn(n)}

	case "function_expression", "function", "generator_function",
		"function_declaration", "generator_function_declaration":
		return &ast.EFunction{Fn: b.fn(n)}
	}

	return &ast.EOther{Loc: loc, Kind: n.Kind(), Children: b.children(n)}
}

// call converts call_expression. A template string in argument position is a
// tagged template: styled.div`...`.
func (b *Builder) call(n *ts.Node) ast.Expr {
	loc := b.span(n)
	fn := n.ChildByFieldName("function")
	args := n.ChildByFieldName("arguments")

	var callee ast.Expr
	if fn != nil {
		callee = b.expr(fn)
	} else {
		callee = &ast.EOther{Loc: loc, Kind: "missing"}
	}

	if args != nil && args.Kind() == "template_string" {
		return &ast.ETaggedTemplate{Loc: loc, Tag: callee, Quasi: b.template(args)}
	}

	c := &ast.ECall{Loc: loc, Callee: callee, Optional: b.hasOptionalChain(n)}
	if args != nil {
		for _, a := range b.namedChildren(args) {
			c.Args = append(c.Args, b.expr(a))
		}
	}
	return c
}

func (b *Builder) template(n *ts.Node) *ast.ETemplate {
	t := &ast.ETemplate{Loc: b.span(n)}
	for _, c := range b.namedChildren(n) {
		if c.Kind() != "template_substitution" {
			continue
		}
		if inner := b.firstNamed(c); inner != nil {
			t.Exprs = append(t.Exprs, b.expr(inner))
		}
	}
	return t
}

// jsxElement converts <Tag>...</Tag>. Newer grammars express fragments as a
// jsx_element whose opening tag has no name.
func (b *Builder) jsxElement(n *ts.Node) ast.Expr {
	loc := b.span(n)
	open := n.ChildByFieldName("open_tag")

	var tag string
	var children []ast.Node
	if open != nil {
		name := open.ChildByFieldName("name")
		if name != nil {
			tag = name.Utf8Text(b.source)
		}
		children = append(children, b.childrenExcept(open, name)...)
	}
	for _, c := range b.namedChildren(n) {
		switch c.Kind() {
		case "jsx_opening_element", "jsx_closing_element", "jsx_text":
			continue
		}
		children = append(children, b.node(c, n.Kind()))
	}

	if open != nil && tag == "" {
		return &ast.EJSXFragment{Loc: loc, Children: children}
	}
	return &ast.EJSXElement{Loc: loc, Tag: tag, Children: children}
}

// node converts a child of a generic construct, choosing statement, block or
// expression conversion from its kind. parentKind decides what a nested
// statement_block belongs to.
func (b *Builder) node(n *ts.Node, parentKind string) ast.Node {
	kind := n.Kind()
	switch {
	case kind == "statement_block":
		return b.block(n, blockKindFor(parentKind))
	case isStatementKind(kind):
		return b.stmt(n)
	}
	return b.expr(n)
}

func blockKindFor(parentKind string) ast.BlockKind {
	switch parentKind {
	case "internal_module", "module":
		return ast.BlockNamespace
	case "method_definition", "class_static_block":
		return ast.BlockFunction
	}
	return ast.BlockStatement
}

func isStatementKind(kind string) bool {
	return strings.HasSuffix(kind, "_statement") || strings.HasSuffix(kind, "_declaration")
}

func (b *Builder) children(n *ts.Node) []ast.Node {
	return b.childrenExcept(n, nil)
}

func (b *Builder) childrenExcept(n *ts.Node, skip *ts.Node) []ast.Node {
	var out []ast.Node
	parentKind := n.Kind()
	for _, c := range b.namedChildren(n) {
		if skip != nil && c.StartByte() == skip.StartByte() && c.EndByte() == skip.EndByte() && c.Kind() == skip.Kind() {
			continue
		}
		out = append(out, b.node(c, parentKind))
	}
	return out
}

// namedChildren returns the named children of n without comments.
func (b *Builder) namedChildren(n *ts.Node) []*ts.Node {
	count := uint(n.NamedChildCount())
	out := make([]*ts.Node, 0, count)
	for i := uint(0); i < count; i++ {
		c := n.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "comment", "hash_bang_line", "html_comment":
			continue
		}
		out = append(out, c)
	}
	return out
}

func (b *Builder) firstNamed(n *ts.Node) *ts.Node {
	children := b.namedChildren(n)
	if len(children) == 0 {
		return nil
	}
	return children[0]
}

func (b *Builder) firstNamedOfKind(n *ts.Node, kind string) *ts.Node {
	for _, c := range b.namedChildren(n) {
		if c.Kind() == kind {
			return c
		}
	}
	return nil
}

// hasToken reports whether n has a direct anonymous child with the given text,
// e.g. the `default` of an export or the `async` of a function.
func (b *Builder) hasToken(n *ts.Node, token string) bool {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && !c.IsNamed() && c.Kind() == token {
			return true
		}
	}
	return false
}

func (b *Builder) hasOptionalChain(n *ts.Node) bool {
	for i := uint(0); i < uint(n.ChildCount()); i++ {
		c := n.Child(i)
		if c != nil && (c.Kind() == "optional_chain" || c.Kind() == "?.") {
			return true
		}
	}
	return false
}

func (b *Builder) ident(n *ts.Node) *ast.Ident {
	return &ast.Ident{Loc: b.span(n), Name: n.Utf8Text(b.source)}
}

func (b *Builder) span(n *ts.Node) ast.Span {
	return ast.Span{Lo: int(n.StartByte()), Hi: int(n.EndByte())}
}

// stringContent strips the surrounding quotes of a string literal.
func stringContent(text string) string {
	if len(text) >= 2 {
		return text[1 : len(text)-1]
	}
	return text
}
