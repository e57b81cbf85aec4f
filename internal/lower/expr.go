package lower

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

// lowerExpr translates one ast.Expr into its hir.Expr counterpart. No
// produced node carries a type yet (TypeOf is nil until C3 sets one);
// literals are not typed here either.
func (l *Lowerer) lowerExpr(e ast.Expr) hir.Expr {
	if e == nil {
		return nil
	}
	switch ex := e.(type) {
	case *ast.Name:
		return &hir.Ident{Node: l.node(ex.Pos), Name: ex.Value}

	case *ast.Literal:
		return l.lowerLiteral(ex)

	case *ast.BinOp:
		return &hir.BinOp{Node: l.node(ex.Pos), Op: ex.Op, Left: l.lowerExpr(ex.Left), Right: l.lowerExpr(ex.Right)}

	case *ast.UnaryOp:
		return &hir.UnaryOp{Node: l.node(ex.Pos), Op: ex.Op, X: l.lowerExpr(ex.X)}

	case *ast.CompareChain:
		operands := []hir.Expr{l.lowerExpr(ex.Left)}
		ops := make([]string, len(ex.Ops))
		for i, step := range ex.Ops {
			ops[i] = step.Op
			operands = append(operands, l.lowerExpr(step.Right))
		}
		return &hir.CompareChain{Node: l.node(ex.Pos), Operands: operands, Ops: ops}

	case *ast.BoolOp:
		vals := make([]hir.Expr, len(ex.Values))
		for i, v := range ex.Values {
			vals[i] = l.lowerExpr(v)
		}
		return &hir.BoolOp{Node: l.node(ex.Pos), Op: ex.Op, Operands: vals}

	case *ast.Call:
		args := make([]hir.Expr, len(ex.Args))
		for i, a := range ex.Args {
			args[i] = l.lowerExpr(a)
		}
		kws := make([]hir.Keyword, len(ex.Keywords))
		for i, k := range ex.Keywords {
			kws[i] = hir.Keyword{Name: k.Name, Value: l.lowerExpr(k.Value)}
		}
		return &hir.Call{
			Node: l.node(ex.Pos), Func: l.lowerExpr(ex.Func), Args: args,
			Keywords: kws, StarArgs: l.lowerExpr(ex.StarArgs),
		}

	case *ast.Attribute:
		return &hir.Attribute{Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value), Attr: ex.Attr}

	case *ast.Index:
		return &hir.Index{Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value), Index: l.lowerExpr(ex.Index)}

	case *ast.Slice:
		return &hir.Slice{
			Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value),
			Start: l.lowerExpr(ex.Start), Stop: l.lowerExpr(ex.Stop), Step: l.lowerExpr(ex.Step),
		}

	case *ast.ContainerLit:
		return l.lowerContainerLit(ex)

	case *ast.Comprehension:
		return l.lowerComprehension(ex)

	case *ast.Lambda:
		params := make([]*hir.Param, len(ex.Params))
		for i, p := range ex.Params {
			params[i] = l.lowerParam(p)
		}
		return &hir.Lambda{Node: l.node(ex.Pos), Params: params, Body: l.lowerExpr(ex.Body)}

	case *ast.FString:
		return l.lowerFString(ex)

	case *ast.CondExpr:
		return &hir.CondExpr{
			Node: l.node(ex.Pos), Cond: l.lowerExpr(ex.Cond),
			Then: l.lowerExpr(ex.Body), Else: l.lowerExpr(ex.Or),
		}

	case *ast.NamedExpr:
		return &hir.NamedExpr{Node: l.node(ex.Pos), Name: ex.Name, Value: l.lowerExpr(ex.Value)}

	case *ast.Await:
		return &hir.Await{Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value)}

	case *ast.Yield:
		return &hir.Yield{Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value), From: ex.YieldFrom}

	case *ast.Starred:
		return &hir.Starred{Node: l.node(ex.Pos), Value: l.lowerExpr(ex.Value)}

	default:
		l.unsupported(e.Position(), fmt.Sprintf("expression kind %T", e))
		return &hir.Ident{Node: l.synthetic(), Name: "<unsupported>"}
	}
}

func (l *Lowerer) lowerLiteral(lit *ast.Literal) *hir.Literal {
	kind, val := litKindAndValue(lit)
	return &hir.Literal{Node: l.node(lit.Pos), Kind: kind, Value: val}
}

func litKindAndValue(lit *ast.Literal) (hir.LitKind, string) {
	switch lit.Kind {
	case ast.LitInt:
		return hir.LitInt, fmt.Sprint(lit.Value)
	case ast.LitFloat:
		return hir.LitFloat, fmt.Sprint(lit.Value)
	case ast.LitString:
		return hir.LitString, fmt.Sprint(lit.Value)
	case ast.LitBytes:
		return hir.LitBytes, fmt.Sprint(lit.Value)
	case ast.LitBool:
		return hir.LitBool, fmt.Sprint(lit.Value)
	default:
		return hir.LitNone, "None"
	}
}

func (l *Lowerer) lowerContainerLit(c *ast.ContainerLit) *hir.ContainerLit {
	kind := containerKind(c.Kind)
	out := &hir.ContainerLit{Node: l.node(c.Pos), Kind: kind}
	if c.Kind == ast.ContainerDict {
		for i := range c.Keys {
			out.Entries = append(out.Entries, hir.DictEntry{Key: l.lowerExpr(c.Keys[i]), Value: l.lowerExpr(c.Values[i])})
		}
		return out
	}
	for _, v := range c.Values {
		out.Elems = append(out.Elems, l.lowerExpr(v))
	}
	return out
}

func containerKind(k ast.ContainerKind) hir.ContainerKind {
	switch k {
	case ast.ContainerList:
		return hir.ContainerList
	case ast.ContainerSet:
		return hir.ContainerSet
	case ast.ContainerDict:
		return hir.ContainerDict
	case ast.ContainerTuple:
		return hir.ContainerTuple
	default:
		return hir.ContainerFrozenset
	}
}

// lowerComprehension translates a comprehension clause by clause,
// keeping the nested-clauses shape rather than unrolling it to
// imperative loops — C6 re-expands Comprehension into a Rust iterator chain
// (.filter().map()/.collect()) directly from this shape.
func (l *Lowerer) lowerComprehension(c *ast.Comprehension) *hir.Comprehension {
	clauses := make([]hir.CompFor, len(c.Clauses))
	for i, cl := range c.Clauses {
		filters := make([]hir.Expr, len(cl.Filters))
		for j, f := range cl.Filters {
			filters[j] = l.lowerExpr(f)
		}
		clauses[i] = hir.CompFor{Target: l.lowerExpr(cl.Target), Iter: l.lowerExpr(cl.Iter), Filters: filters}
	}
	out := &hir.Comprehension{
		Node: l.node(c.Pos), Kind: compKind(c.Kind),
		Element: l.lowerExpr(c.Elt), Value: l.lowerExpr(c.Key), Clauses: clauses,
	}
	return out
}

func compKind(k ast.CompKind) hir.CompKind {
	switch k {
	case ast.CompList:
		return hir.CompList
	case ast.CompSet:
		return hir.CompSet
	case ast.CompDict:
		return hir.CompDict
	default:
		return hir.CompGenerator
	}
}

// lowerFString translates an already-split f-string's parts one by one;
// splitting itself happened in the lexer/parser (splitFStringParts), so
// lowering only needs to recurse into each embedded expression part.
func (l *Lowerer) lowerFString(f *ast.FString) *hir.FString {
	parts := make([]hir.FStringPart, len(f.Parts))
	for i, p := range f.Parts {
		parts[i] = hir.FStringPart{Literal: p.Literal, Expr: l.lowerExpr(p.Expr), Format: p.Format}
	}
	return &hir.FString{Node: l.node(f.Pos), Parts: parts}
}
