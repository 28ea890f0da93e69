package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnana997/displayname/pkg/ast"
)

func buildProgram(t *testing.T, source, fileName string) *ast.Program {
	t.Helper()
	manager := newTestManager()
	t.Cleanup(func() { _ = manager.Close() })

	doc, err := manager.ParseDocument([]byte(source), fileName)
	require.NoError(t, err)
	require.False(t, doc.HasErrors, "fixture should parse cleanly")
	return doc.Program
}

func TestBuildVariableDeclarations(t *testing.T) {
	prog := buildProgram(t, "const A = () => <div/>, b = 1;\nlet { c } = obj;\nvar d;\n", "vars.jsx")
	require.Len(t, prog.Body.Stmts, 3)
	assert.Equal(t, ast.ProgramScript, prog.Kind)

	first, ok := prog.Body.Stmts[0].(*ast.SVar)
	require.True(t, ok)
	assert.Equal(t, ast.VarConst, first.Kind)
	require.Len(t, first.Decls, 2)

	name, ok := first.Decls[0].BindingIdent()
	require.True(t, ok)
	assert.Equal(t, "A", name.Name)
	arrow, ok := first.Decls[0].Init.(*ast.EArrow)
	require.True(t, ok)
	assert.IsType(t, &ast.EJSXElement{}, arrow.Fn.Body)

	second := prog.Body.Stmts[1].(*ast.SVar)
	assert.Equal(t, ast.VarLet, second.Kind)
	_, ok = second.Decls[0].BindingIdent()
	assert.False(t, ok, "destructuring is not a simple binding")

	third := prog.Body.Stmts[2].(*ast.SVar)
	assert.Equal(t, ast.VarVar, third.Kind)
	assert.Nil(t, third.Decls[0].Init)
}

func TestBuildExports(t *testing.T) {
	source := `export const Button = () => <button/>;
export function Card() { return null; }
export default function App() { return <main/>; }
`
	prog := buildProgram(t, source, "exports.jsx")
	require.Len(t, prog.Body.Stmts, 3)
	assert.Equal(t, ast.ProgramModule, prog.Kind)

	decl, ok := prog.Body.Stmts[0].(*ast.SExportDecl)
	require.True(t, ok)
	assert.IsType(t, &ast.SVar{}, decl.Decl)

	decl, ok = prog.Body.Stmts[1].(*ast.SExportDecl)
	require.True(t, ok)
	fn, ok := decl.Decl.(*ast.SFunction)
	require.True(t, ok)
	assert.Equal(t, "Card", fn.Fn.Name.Name)

	def, ok := prog.Body.Stmts[2].(*ast.SExportDefault)
	require.True(t, ok)
	efn, ok := def.Value.(*ast.EFunction)
	require.True(t, ok, "export default function is a function value, got %T", def.Value)
	require.NotNil(t, efn.Fn.Name)
	assert.Equal(t, "App", efn.Fn.Name.Name)
}

func TestBuildDisplayNameAssignment(t *testing.T) {
	prog := buildProgram(t, `Foo.displayName = "Foo";`, "label.js")
	require.Len(t, prog.Body.Stmts, 1)

	stmt, ok := prog.Body.Stmts[0].(*ast.SExpr)
	require.True(t, ok)
	assign, ok := stmt.Expr.(*ast.EAssign)
	require.True(t, ok)
	assert.Equal(t, ast.AssignEq, assign.Op)

	member, ok := assign.Target.(*ast.EMember)
	require.True(t, ok)
	assert.False(t, member.Computed)
	assert.Equal(t, "displayName", member.Prop.Name)
	assert.Equal(t, "Foo", member.Object.(*ast.EIdent).Name)

	value, ok := assign.Value.(*ast.EString)
	require.True(t, ok)
	assert.Equal(t, "Foo", value.Value)
}

func TestBuildCompoundAssignmentKeepsOperator(t *testing.T) {
	prog := buildProgram(t, "count += 1;", "op.js")
	assign := prog.Body.Stmts[0].(*ast.SExpr).Expr.(*ast.EAssign)
	assert.Equal(t, ast.AssignOp("+="), assign.Op)
}

func TestBuildTaggedTemplate(t *testing.T) {
	prog := buildProgram(t, "const Box = styled.div`color: ${c};`;", "styled.js")
	decl := prog.Body.Stmts[0].(*ast.SVar).Decls[0]

	tagged, ok := decl.Init.(*ast.ETaggedTemplate)
	require.True(t, ok, "got %T", decl.Init)
	tag, ok := tagged.Tag.(*ast.EMember)
	require.True(t, ok)
	assert.Equal(t, "styled", tag.Object.(*ast.EIdent).Name)
	assert.Equal(t, "div", tag.Prop.Name)
	require.NotNil(t, tagged.Quasi)
	assert.Len(t, tagged.Quasi.Exprs, 1)
}

func TestBuildJSXShapes(t *testing.T) {
	source := `const A = <>text</>;
const B = (<div/>);
const C = { a: <span/> };
const D = <Panel title="x"><Item /></Panel>;
`
	prog := buildProgram(t, source, "jsx.jsx")
	require.Len(t, prog.Body.Stmts, 4)

	init := func(i int) ast.Expr { return prog.Body.Stmts[i].(*ast.SVar).Decls[0].Init }

	assert.IsType(t, &ast.EJSXFragment{}, init(0))

	paren, ok := init(1).(*ast.EParen)
	require.True(t, ok)
	assert.IsType(t, &ast.EJSXElement{}, paren.Inner)

	assert.IsType(t, &ast.EObject{}, init(2))

	el, ok := init(3).(*ast.EJSXElement)
	require.True(t, ok)
	assert.Equal(t, "Panel", el.Tag)

	var nested []string
	ast.Inspect(el, func(n ast.Node) bool {
		if j, ok := n.(*ast.EJSXElement); ok && j != el {
			nested = append(nested, j.Tag)
		}
		return true
	})
	assert.Equal(t, []string{"Item"}, nested)
}

func TestBuildCalls(t *testing.T) {
	prog := buildProgram(t, `const Ctx = React.createContext(null);`+"\n"+`render(jsx("div", {}));`, "calls.js")

	call, ok := prog.Body.Stmts[0].(*ast.SVar).Decls[0].Init.(*ast.ECall)
	require.True(t, ok)
	callee := call.Callee.(*ast.EMember)
	assert.Equal(t, "createContext", callee.Prop.Name)
	assert.Len(t, call.Args, 1)

	outer := prog.Body.Stmts[1].(*ast.SExpr).Expr.(*ast.ECall)
	inner, ok := outer.Args[0].(*ast.ECall)
	require.True(t, ok)
	assert.Equal(t, "jsx", inner.Callee.(*ast.EIdent).Name)
	assert.Equal(t, "div", inner.Args[0].(*ast.EString).Value)
}

func TestBuildImports(t *testing.T) {
	source := `import React, { useState as useS, memo } from "react";
import * as styled from "styled-components";
import "./side-effect.css";
`
	prog := buildProgram(t, source, "imports.js")
	assert.Equal(t, ast.ProgramModule, prog.Kind)

	var names []string
	var sources []string
	for _, s := range prog.Body.Stmts {
		imp, ok := s.(*ast.SImport)
		require.True(t, ok)
		sources = append(sources, imp.Source)
		for _, n := range imp.Names {
			names = append(names, n.Name)
		}
	}
	assert.Equal(t, []string{"React", "useS", "memo", "styled"}, names)
	assert.Equal(t, []string{"react", "styled-components", "./side-effect.css"}, sources)
}

func TestBuildBlockKinds(t *testing.T) {
	source := `namespace UI {
  export const A = () => <div/>;
}
function outer() {
  if (x) {
    const B = () => <p/>;
  }
}
`
	prog := buildProgram(t, source, "kinds.tsx")

	kinds := map[ast.BlockKind]int{}
	ast.WalkBlocks(prog, func(b *ast.Block) { kinds[b.Kind]++ })

	assert.Equal(t, 1, kinds[ast.BlockProgram])
	assert.Equal(t, 1, kinds[ast.BlockNamespace])
	assert.Equal(t, 1, kinds[ast.BlockFunction])
	assert.Equal(t, 1, kinds[ast.BlockStatement])
}

func TestBuildSpansCoverSource(t *testing.T) {
	source := "const A = 1;\nfunction B() {}\n"
	prog := buildProgram(t, source, "spans.js")

	first := prog.Body.Stmts[0].Span()
	second := prog.Body.Stmts[1].Span()
	assert.Equal(t, "const A = 1;", source[first.Lo:first.Hi])
	assert.Equal(t, "function B() {}", source[second.Lo:second.Hi])
	assert.False(t, first.IsDummy())
}

func TestBuildSkipsComments(t *testing.T) {
	prog := buildProgram(t, "// header\nconst A = 1; /* trailing */\n", "comments.js")
	assert.Len(t, prog.Body.Stmts, 1)
}
