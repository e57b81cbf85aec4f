package borrow

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

// moveSite records where an owned parameter was passed by value to
// another call, a candidate point for the "insert a clone at the earlier
// move site" remediation of spec.md §4.4.
type moveSite struct {
	call    *hir.Call
	argIdx  int
	stmtIdx int
}

// analyzeUseAfterMove implements spec.md §4.4's use-after-move pass: scan
// a function's top-level statements in order; once an owned parameter is
// passed by value to another call (a move), any later top-level
// statement that reads the same name is a use-after-move. The policy is
// to insert a clone at the earlier move site rather than reject the
// program (this simplified pass treats every type as clonable, matching
// C6's auto-derive(Clone) on every generated struct/dataclass; no type
// is treated as non-clonable, so this pass never raises a hard error).
func (a *Analyzer) analyzeUseAfterMove(fn *hir.Function, usages map[string]*usage) {
	owned := map[string]bool{}
	for _, p := range fn.Params {
		if p.Borrow == hir.BorrowOwned {
			owned[p.Name] = true
		}
	}
	if len(owned) == 0 {
		return
	}

	moved := map[string]*moveSite{}
	for i, s := range fn.Body {
		// Record moves introduced at this statement...
		forEachCallArg(s, func(call *hir.Call, idx int, arg hir.Expr) {
			id, ok := arg.(*hir.Ident)
			if !ok || !owned[id.Name] {
				return
			}
			if existing, already := moved[id.Name]; already {
				a.flagUseAfterMove(fn, id.Name, usages[id.Name])
				a.insertClone(existing)
				return
			}
			moved[id.Name] = &moveSite{call: call, argIdx: idx, stmtIdx: i}
		})
		// ...then check whether this same statement reads a name moved at
		// an earlier statement (a strictly later use).
		for name, site := range moved {
			if site.stmtIdx == i {
				continue
			}
			if stmtReadsName(s, name) {
				a.flagUseAfterMove(fn, name, usages[name])
				a.insertClone(site)
			}
		}
	}
}

func (a *Analyzer) flagUseAfterMove(fn *hir.Function, name string, u *usage) {
	var span diag.Span
	a.diags = a.diags.Add(diag.New(diag.OwnUseAfterMove, diag.PhaseBorrow,
		fmt.Sprintf("%s: %q is used after being moved; inserting an explicit clone at the move site", fn.Name, name),
		&span).WithFix("clone the value at its earlier move site", 0.9))
}

// insertClone rewrites the moved argument in place to an explicit
// `.clone()` call, a synthetic node with no direct source counterpart.
func (a *Analyzer) insertClone(site *moveSite) {
	arg := site.call.Args[site.argIdx]
	if _, already := arg.(*hir.Call); already {
		if call, ok := arg.(*hir.Call); ok {
			if attr, ok := call.Func.(*hir.Attribute); ok && attr.Attr == "clone" {
				return // already cloned from a prior flag
			}
		}
	}
	clone := &hir.Call{
		Node: hir.Node{Synthetic: true},
		Func: &hir.Attribute{Node: hir.Node{Synthetic: true}, Value: arg, Attr: "clone"},
	}
	site.call.Args[site.argIdx] = clone
}

func forEachCallArg(s hir.Stmt, visit func(call *hir.Call, idx int, arg hir.Expr)) {
	var walk func(hir.Expr)
	walk = func(e hir.Expr) {
		if e == nil {
			return
		}
		if call, ok := e.(*hir.Call); ok {
			for i, arg := range call.Args {
				visit(call, i, arg)
				walk(arg)
			}
			return
		}
		switch ex := e.(type) {
		case *hir.BinOp:
			walk(ex.Left)
			walk(ex.Right)
		case *hir.Attribute:
			walk(ex.Value)
		}
	}
	switch st := s.(type) {
	case *hir.Assign:
		walk(st.Value)
	case *hir.ExprStmt:
		walk(st.Value)
	case *hir.Return:
		walk(st.Value)
	}
}

func stmtReadsName(s hir.Stmt, name string) bool {
	found := false
	var walk func(hir.Expr)
	walk = func(e hir.Expr) {
		if e == nil || found {
			return
		}
		switch ex := e.(type) {
		case *hir.Ident:
			if ex.Name == name {
				found = true
			}
		case *hir.BinOp:
			walk(ex.Left)
			walk(ex.Right)
		case *hir.Call:
			for _, a := range ex.Args {
				walk(a)
			}
		case *hir.Attribute:
			walk(ex.Value)
		}
	}
	switch st := s.(type) {
	case *hir.Assign:
		walk(st.Value)
	case *hir.ExprStmt:
		walk(st.Value)
	case *hir.Return:
		walk(st.Value)
	}
	return found
}
