// Package ast defines the syntax tree the display-name pass operates on.
//
// The tree is a closed set of statement and expression variants. Shapes the
// pass recognizes get their own struct; every other construct is kept as an
// SOther or EOther node that still carries its converted children, so nested
// statement lists and JSX stay reachable by a full traversal.
//
// Every node records the byte range it was parsed from. Nodes created by a
// transform carry DummySpan instead.
package ast

// Span is a half-open byte range [Lo, Hi) into the parsed source.
type Span struct {
	Lo int
	Hi int
}

// DummySpan marks a node that has no source origin.
var DummySpan = Span{Lo: -1, Hi: -1}

// IsDummy reports whether the span belongs to a synthesized node.
func (s Span) IsDummy() bool {
	return s.Lo < 0
}

// ScopeID identifies the lexical scope an identifier is bound in. Two
// identifiers with the same name and the same ScopeID refer to the same binding.
type ScopeID uint32

// Unresolved is the scope of identifiers that do not resolve to any
// declaration in the tree (globals, or trees that were never resolved).
const Unresolved ScopeID = 0

// Ident is a name together with its scope token.
type Ident struct {
	Loc   Span
	Name  string
	Scope ScopeID
}

// Node is implemented by every tree node.
type Node interface {
	Span() Span
}

// Stmt is implemented by statement variants.
type Stmt interface {
	Node
	isStmt()
}

// Expr is implemented by expression variants.
type Expr interface {
	Node
	isExpr()
}

// ProgramKind distinguishes ES modules from classic scripts.
type ProgramKind uint8

const (
	ProgramScript ProgramKind = iota
	ProgramModule
)

func (k ProgramKind) String() string {
	if k == ProgramModule {
		return "module"
	}
	return "script"
}

// Program is the root of a parsed file.
type Program struct {
	Loc  Span
	Kind ProgramKind
	Body *Block
}

func (p *Program) Span() Span { return p.Loc }

// BlockKind tells what construct owns a statement list.
type BlockKind uint8

const (
	// BlockProgram is the top-level list of a module or script.
	BlockProgram BlockKind = iota
	// BlockNamespace is the body of a TypeScript namespace or ambient module.
	BlockNamespace
	// BlockFunction is the body of a function, method or arrow function.
	BlockFunction
	// BlockStatement is any other braced list: if/for/try bodies, bare blocks, class static blocks.
	BlockStatement
)

func (k BlockKind) String() string {
	switch k {
	case BlockProgram:
		return "program"
	case BlockNamespace:
		return "namespace"
	case BlockFunction:
		return "function"
	default:
		return "block"
	}
}

// ModuleLevel reports whether statements in this list are module items.
func (k BlockKind) ModuleLevel() bool {
	return k == BlockProgram || k == BlockNamespace
}

// Block is an ordered statement list. It is also a statement itself when it
// appears as a bare `{ ... }`.
type Block struct {
	Loc   Span
	Kind  BlockKind
	Stmts []Stmt
}

// VarKind is the declaration keyword of a variable statement.
type VarKind uint8

const (
	VarVar VarKind = iota
	VarLet
	VarConst
	VarUsing
)

func (k VarKind) String() string {
	switch k {
	case VarLet:
		return "let"
	case VarConst:
		return "const"
	case VarUsing:
		return "using"
	default:
		return "var"
	}
}

// Declarator is one `name = init` entry of a variable statement. Name is an
// *EIdent for simple bindings and an EOther pattern for destructuring.
type Declarator struct {
	Loc  Span
	Name Expr
	Init Expr // nil when absent
}

func (d *Declarator) Span() Span { return d.Loc }

// BindingIdent returns the declared identifier when the binding target is a
// plain identifier.
func (d *Declarator) BindingIdent() (*EIdent, bool) {
	id, ok := d.Name.(*EIdent)
	return id, ok
}

// Fn is the shared part of function declarations, function expressions and
// arrow functions.
type Fn struct {
	Loc       Span
	Name      *Ident // nil for anonymous functions and arrows
	Params    []Expr
	Body      Node // *Block, or an Expr for concise arrow bodies
	Async     bool
	Generator bool
}

func (f *Fn) Span() Span { return f.Loc }

type (
	// SVar is `var`, `let`, `const` or `using` with one or more declarators.
	SVar struct {
		Loc   Span
		Kind  VarKind
		Decls []*Declarator
	}

	// SFunction is a function declaration.
	SFunction struct {
		Loc Span
		Fn  *Fn
	}

	// SClass is a class declaration.
	SClass struct {
		Loc      Span
		Name     *Ident
		Children []Node
	}

	// SExportDecl is `export <declaration>`.
	SExportDecl struct {
		Loc  Span
		Decl Stmt
	}

	// SExportDefault is `export default <value>`. A named or anonymous
	// `export default function` is an *EFunction value.
	SExportDefault struct {
		Loc   Span
		Value Node
	}

	// SExpr is an expression statement.
	SExpr struct {
		Loc  Span
		Expr Expr
	}

	// SImport is an import declaration. Names are the local bindings it introduces.
	SImport struct {
		Loc    Span
		Names  []*Ident
		Source string
	}

	// SOther is any statement the pass has no dedicated shape for.
	SOther struct {
		Loc      Span
		Kind     string
		Children []Node
	}
)

func (s *Block) Span() Span          { return s.Loc }
func (s *SVar) Span() Span           { return s.Loc }
func (s *SFunction) Span() Span      { return s.Loc }
func (s *SClass) Span() Span         { return s.Loc }
func (s *SExportDecl) Span() Span    { return s.Loc }
func (s *SExportDefault) Span() Span { return s.Loc }
func (s *SExpr) Span() Span          { return s.Loc }
func (s *SImport) Span() Span        { return s.Loc }
func (s *SOther) Span() Span         { return s.Loc }

func (*Block) isStmt()          {}
func (*SVar) isStmt()           {}
func (*SFunction) isStmt()      {}
func (*SClass) isStmt()         {}
func (*SExportDecl) isStmt()    {}
func (*SExportDefault) isStmt() {}
func (*SExpr) isStmt()          {}
func (*SImport) isStmt()        {}
func (*SOther) isStmt()         {}

// AssignOp is the operator of an assignment expression.
type AssignOp string

// AssignEq is plain assignment. Compound operators keep their source text.
const AssignEq AssignOp = "="

type (
	// EIdent is an identifier reference or simple binding target.
	EIdent struct {
		Ident
	}

	// EMember is `obj.prop` or, when Computed, `obj[index]`.
	EMember struct {
		Loc      Span
		Object   Expr
		Prop     Ident // set when !Computed
		Index    Expr  // set when Computed
		Computed bool
		Optional bool
	}

	// ECall is a call expression.
	ECall struct {
		Loc      Span
		Callee   Expr
		Args     []Expr
		Optional bool
	}

	// ETaggedTemplate is tag`...`.
	ETaggedTemplate struct {
		Loc   Span
		Tag   Expr
		Quasi *ETemplate
	}

	// ETemplate is a template literal; Exprs are its substitutions.
	ETemplate struct {
		Loc   Span
		Exprs []Expr
	}

	// EJSXElement is <Tag ...>...</Tag> or <Tag ... />. Children holds
	// attribute values and nested children in source order.
	EJSXElement struct {
		Loc      Span
		Tag      string
		Children []Node
	}

	// EJSXFragment is <>...</>.
	EJSXFragment struct {
		Loc      Span
		Children []Node
	}

	// EParen is a parenthesized expression.
	EParen struct {
		Loc   Span
		Inner Expr
	}

	// EObject is an object literal.
	EObject struct {
		Loc      Span
		Children []Node
	}

	// EAssign is an assignment, plain or compound.
	EAssign struct {
		Loc    Span
		Op     AssignOp
		Target Expr
		Value  Expr
	}

	// EString is a string literal. Value holds the text between the quotes.
	EString struct {
		Loc   Span
		Value string
	}

	// EArrow is an arrow function.
	EArrow struct {
		Fn *Fn
	}

	// EFunction is a function expression.
	EFunction struct {
		Fn *Fn
	}

	// EOther is any expression, pattern or sub-construct without a dedicated shape.
	EOther struct {
		Loc      Span
		Kind     string
		Children []Node
	}
)

func (e *EIdent) Span() Span          { return e.Loc }
func (e *EMember) Span() Span         { return e.Loc }
func (e *ECall) Span() Span           { return e.Loc }
func (e *ETaggedTemplate) Span() Span { return e.Loc }
func (e *ETemplate) Span() Span       { return e.Loc }
func (e *EJSXElement) Span() Span     { return e.Loc }
func (e *EJSXFragment) Span() Span    { return e.Loc }
func (e *EParen) Span() Span          { return e.Loc }
func (e *EObject) Span() Span         { return e.Loc }
func (e *EAssign) Span() Span         { return e.Loc }
func (e *EString) Span() Span         { return e.Loc }
func (e *EArrow) Span() Span          { return e.Fn.Loc }
func (e *EFunction) Span() Span       { return e.Fn.Loc }
func (e *EOther) Span() Span          { return e.Loc }

func (*EIdent) isExpr()          {}
func (*EMember) isExpr()         {}
func (*ECall) isExpr()           {}
func (*ETaggedTemplate) isExpr() {}
func (*ETemplate) isExpr()       {}
func (*EJSXElement) isExpr()     {}
func (*EJSXFragment) isExpr()    {}
func (*EParen) isExpr()          {}
func (*EObject) isExpr()         {}
func (*EAssign) isExpr()         {}
func (*EString) isExpr()         {}
func (*EArrow) isExpr()          {}
func (*EFunction) isExpr()       {}
func (*EOther) isExpr()          {}
