// Package ast defines the surface syntax tree produced by the Python
// lexer/parser. It mirrors the Python grammar subset named in the
// specification's data model: modules, functions, classes, statements,
// expressions, and type annotations. Nothing here is typed yet — that is
// the HIR's job (internal/hir) after lowering (internal/lower).
package ast

import "fmt"

// Pos is a source location. File is interned per parse so spans stay cheap
// to copy.
type Pos struct {
	File   string
	Line   int
	Column int
	Offset int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a start/end source range.
type Span struct {
	Start Pos
	End   Pos
}

// Node is the base interface every AST node satisfies.
type Node interface {
	Position() Pos
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// TypeExpr is a syntactic type annotation (e.g. `list[int]`, `X | Y`,
// `"Foo"` forward reference). It is resolved to a semantic types.Type
// during lowering.
type TypeExpr interface {
	Node
	typeExprNode()
	String() string
}

// Pattern is a `match` pattern.
type Pattern interface {
	Node
	patternNode()
}

// File is a complete parsed source file — the atomic unit of translation
// (spec.md §6: "Files are treated atomically").
type File struct {
	Path  string
	Body  []Stmt
	Pos   Pos
}

func (f *File) Position() Pos { return f.Pos }
