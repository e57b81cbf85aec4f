package ast

import "strings"

// Syntactic type annotations. These are resolved to semantic types.Type
// values during lowering (internal/lower); here they only record what the
// programmer wrote.

// NameType is a bare or module-qualified name: `int`, `module.Name`.
type NameType struct {
	Qualifier string // "" if unqualified
	Name      string
	Pos       Pos
}

func (n *NameType) Position() Pos  { return n.Pos }
func (n *NameType) typeExprNode()  {}
func (n *NameType) String() string {
	if n.Qualifier == "" {
		return n.Name
	}
	return n.Qualifier + "." + n.Name
}

// SubscriptType is a generic instantiation: `list[int]`, `dict[str, int]`,
// `Optional[X]`.
type SubscriptType struct {
	Base TypeExpr
	Args []TypeExpr
	Pos  Pos
}

func (s *SubscriptType) Position() Pos { return s.Pos }
func (s *SubscriptType) typeExprNode() {}
func (s *SubscriptType) String() string {
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Base.String() + "[" + strings.Join(parts, ", ") + "]"
}

// UnionType is `X | Y | ...` (PEP 604 pipe-union, spec.md §4.2).
type UnionType struct {
	Options []TypeExpr
	Pos     Pos
}

func (u *UnionType) Position() Pos { return u.Pos }
func (u *UnionType) typeExprNode() {}
func (u *UnionType) String() string {
	parts := make([]string, len(u.Options))
	for i, o := range u.Options {
		parts[i] = o.String()
	}
	return strings.Join(parts, " | ")
}

// TupleTypeExpr is `tuple[X, Y, Z]` written out positionally, kept
// distinct from SubscriptType because its arity is part of the type.
type TupleTypeExpr struct {
	Elements []TypeExpr
	Pos      Pos
}

func (t *TupleTypeExpr) Position() Pos { return t.Pos }
func (t *TupleTypeExpr) typeExprNode() {}
func (t *TupleTypeExpr) String() string {
	parts := make([]string, len(t.Elements))
	for i, e := range t.Elements {
		parts[i] = e.String()
	}
	return "tuple[" + strings.Join(parts, ", ") + "]"
}

// CallableType is `Callable[[X, Y], Z]`.
type CallableType struct {
	Params []TypeExpr
	Return TypeExpr
	Pos    Pos
}

func (c *CallableType) Position() Pos { return c.Pos }
func (c *CallableType) typeExprNode() {}
func (c *CallableType) String() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = p.String()
	}
	return "Callable[[" + strings.Join(parts, ", ") + "], " + c.Return.String() + "]"
}

// ForwardRefType is a string-literal annotation, e.g. `"Foo"`. Lowering
// re-lexes/re-parses Contents to recover the real TypeExpr (spec.md §4.2).
type ForwardRefType struct {
	Contents string
	Pos      Pos
}

func (f *ForwardRefType) Position() Pos  { return f.Pos }
func (f *ForwardRefType) typeExprNode()  {}
func (f *ForwardRefType) String() string { return f.Contents }
