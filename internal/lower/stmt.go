package lower

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

func (l *Lowerer) lowerParam(p *ast.Param) *hir.Param {
	return &hir.Param{
		Node: l.node(p.Pos), Name: p.Name, Type: l.lowerType(p.Type),
		Default: l.lowerExpr(p.Default), Kind: paramKind(p.Kind),
	}
}

func paramKind(k ast.ParamKind) hir.ParamKind {
	switch k {
	case ast.ParamStarArgs:
		return hir.ParamStarArgs
	case ast.ParamStarKwargs:
		return hir.ParamStarKwargs
	default:
		return hir.ParamPositional
	}
}

func (l *Lowerer) lowerBody(body []ast.Stmt) []hir.Stmt {
	out := make([]hir.Stmt, 0, len(body))
	for _, s := range body {
		if ls := l.lowerStmt(s); ls != nil {
			out = append(out, ls)
		}
	}
	return out
}

// lowerStmt translates one ast.Stmt; returns nil for statements that
// carry no run-time meaning after lowering (a bare docstring ExprStmt).
func (l *Lowerer) lowerStmt(s ast.Stmt) hir.Stmt {
	switch st := s.(type) {
	case *ast.Assign:
		targets := make([]hir.Expr, len(st.Targets))
		for i, t := range st.Targets {
			targets[i] = l.lowerExpr(t)
		}
		return &hir.Assign{Node: l.node(st.Pos), Targets: targets, Value: l.lowerExpr(st.Value)}

	case *ast.AnnAssign:
		// An annotated assignment lowers to a plain Assign and the
		// annotation is discarded: the target's type comes only from C3's
		// inference of the assigned value. A bare annotation with no value
		// lowers to Pass.
		if st.Value == nil {
			return &hir.Pass{Node: l.node(st.Pos)}
		}
		return &hir.Assign{Node: l.node(st.Pos), Targets: []hir.Expr{l.lowerExpr(st.Target)}, Value: l.lowerExpr(st.Value)}

	case *ast.AugAssign:
		return &hir.AugAssign{Node: l.node(st.Pos), Target: l.lowerExpr(st.Target), Op: st.Op, Value: l.lowerExpr(st.Value)}

	case *ast.If:
		return &hir.If{Node: l.node(st.Pos), Cond: l.lowerExpr(st.Cond), Body: l.lowerBody(st.Then), Else: l.lowerBody(st.Else)}

	case *ast.While:
		return &hir.While{Node: l.node(st.Pos), Cond: l.lowerExpr(st.Cond), Body: l.lowerBody(st.Body), Else: l.lowerBody(st.Else)}

	case *ast.For:
		return &hir.For{Node: l.node(st.Pos), Target: l.lowerExpr(st.Target), Iter: l.lowerExpr(st.Iter), Body: l.lowerBody(st.Body), Else: l.lowerBody(st.Else)}

	case *ast.Try:
		handlers := make([]hir.ExceptHandler, len(st.Handlers))
		for i, h := range st.Handlers {
			var excType hir.Type
			if h.Type != nil {
				excType = &hir.TNominal{Name: h.Type.Value}
			}
			handlers[i] = hir.ExceptHandler{Node: l.node(h.Pos), ExcType: excType, Name: h.Name, Body: l.lowerBody(h.Body)}
		}
		return &hir.Try{Node: l.node(st.Pos), Body: l.lowerBody(st.Body), Handlers: handlers, Else: l.lowerBody(st.Else), Finally: l.lowerBody(st.Finally)}

	case *ast.With:
		items := make([]hir.WithItem, len(st.Items))
		for i, it := range st.Items {
			items[i] = hir.WithItem{Context: l.lowerExpr(it.Context), Target: l.lowerExpr(it.Target)}
		}
		return &hir.With{Node: l.node(st.Pos), Items: items, Body: l.lowerBody(st.Body)}

	case *ast.Raise:
		return &hir.Raise{Node: l.node(st.Pos), Exc: l.lowerExpr(st.Exc)}

	case *ast.Return:
		return &hir.Return{Node: l.node(st.Pos), Value: l.lowerExpr(st.Value)}

	case *ast.Break:
		return &hir.Break{Node: l.node(st.Pos)}

	case *ast.Continue:
		return &hir.Continue{Node: l.node(st.Pos)}

	case *ast.Pass:
		return &hir.Pass{Node: l.node(st.Pos)}

	case *ast.Import:
		return &hir.ImportStmt{Node: l.node(st.Pos), Target: l.lowerImport(st)}

	case *ast.FuncDecl:
		return &hir.FuncDeclStmt{Node: l.node(st.Pos), Fn: l.lowerFuncDecl(st, hir.ReceiverNone)}

	case *ast.ClassDecl:
		return &hir.ClassDeclStmt{Node: l.node(st.Pos), Cls: l.lowerClassDecl(st)}

	case *ast.GlobalDecl:
		return &hir.GlobalDecl{Node: l.node(st.Pos), Names: append([]string{}, st.Names...)}

	case *ast.NonlocalDecl:
		return &hir.NonlocalDecl{Node: l.node(st.Pos), Names: append([]string{}, st.Names...)}

	case *ast.ExprStmt:
		if _, isDocstring := st.Value.(*ast.Literal); isDocstring {
			return nil
		}
		return &hir.ExprStmt{Node: l.node(st.Pos), Value: l.lowerExpr(st.Value)}

	case *ast.Match:
		cases := make([]hir.MatchCase, len(st.Cases))
		for i, c := range st.Cases {
			cases[i] = hir.MatchCase{Pattern: l.lowerPattern(c.Pattern), Guard: l.lowerExpr(c.Guard), Body: l.lowerBody(c.Body)}
		}
		return &hir.Match{Node: l.node(st.Pos), Subject: l.lowerExpr(st.Subject), Cases: cases}

	default:
		l.unsupported(s.Position(), fmt.Sprintf("statement kind %T", s))
		return &hir.Pass{Node: l.synthetic()}
	}
}
