package borrow

import "github.com/pyrs-lang/pyrs/internal/hir"

// collectUsage walks body once, populating mutated/escapes for every name
// present in usages (spec.md §4.4 steps 1-2).
func collectUsage(body []hir.Stmt, usages map[string]*usage) {
	var visitStmt func(hir.Stmt)
	var visitExpr func(hir.Expr)

	markMutated := func(name string) {
		if u, ok := usages[name]; ok {
			u.mutated = true
		}
	}
	markEscapes := func(name string) {
		if u, ok := usages[name]; ok {
			u.escapes = true
		}
	}

	// namesIn calls mark for every name that e is (or directly contains),
	// used for the positions that spec.md §4.4 step 2 treats as escaping:
	// returned, stored into a returned/outer structure, or passed as a bare
	// identifier argument to another call (conservatively treated as
	// "passed as-owned", since without whole-program analysis we cannot
	// prove the callee only borrows).
	var namesIn func(hir.Expr, func(string))
	namesIn = func(e hir.Expr, mark func(string)) {
		switch ex := e.(type) {
		case *hir.Ident:
			mark(ex.Name)
		case *hir.ContainerLit:
			for _, el := range ex.Elems {
				namesIn(el, mark)
			}
			for _, entry := range ex.Entries {
				namesIn(entry.Value, mark)
			}
		case *hir.Starred:
			namesIn(ex.Value, mark)
		case *hir.CondExpr:
			namesIn(ex.Then, mark)
			namesIn(ex.Else, mark)
		}
	}

	visitExpr = func(e hir.Expr) {
		if e == nil {
			return
		}
		switch ex := e.(type) {
		case *hir.Call:
			if attr, ok := ex.Func.(*hir.Attribute); ok {
				if recv, ok := attr.Value.(*hir.Ident); ok && mutatingMethods[attr.Attr] {
					markMutated(recv.Name)
				}
			}
			for _, arg := range ex.Args {
				// A bare-identifier argument is conservatively treated as
				// "passed as-owned to another function" per spec.md §4.4
				// step 2, unless it's the receiver of a known mutating call
				// (handled above). Copy-class values are not exempt: classify
				// checks escape before copy-class, so they become owned too.
				namesIn(arg, markEscapes)
				visitExpr(arg)
			}
			for _, kw := range ex.Keywords {
				visitExpr(kw.Value)
			}
			visitExpr(ex.StarArgs)
		case *hir.BinOp:
			visitExpr(ex.Left)
			visitExpr(ex.Right)
		case *hir.UnaryOp:
			visitExpr(ex.X)
		case *hir.CompareChain:
			for _, o := range ex.Operands {
				visitExpr(o)
			}
		case *hir.BoolOp:
			for _, o := range ex.Operands {
				visitExpr(o)
			}
		case *hir.Attribute:
			visitExpr(ex.Value)
		case *hir.Index:
			visitExpr(ex.Value)
			visitExpr(ex.Index)
		case *hir.Slice:
			visitExpr(ex.Value)
			visitExpr(ex.Start)
			visitExpr(ex.Stop)
			visitExpr(ex.Step)
		case *hir.ContainerLit:
			for _, el := range ex.Elems {
				visitExpr(el)
			}
			for _, entry := range ex.Entries {
				visitExpr(entry.Key)
				visitExpr(entry.Value)
			}
		case *hir.Comprehension:
			visitExpr(ex.Element)
			visitExpr(ex.Value)
			for _, c := range ex.Clauses {
				visitExpr(c.Iter)
				for _, f := range c.Filters {
					visitExpr(f)
				}
			}
		case *hir.CondExpr:
			visitExpr(ex.Cond)
			visitExpr(ex.Then)
			visitExpr(ex.Else)
		case *hir.NamedExpr:
			visitExpr(ex.Value)
		case *hir.Await:
			visitExpr(ex.Value)
		case *hir.Yield:
			// A value yielded from a generator outlives the call that drove
			// it to this point (spec.md §4.4: "yielded from a generator").
			namesIn(ex.Value, markEscapes)
			visitExpr(ex.Value)
		case *hir.Starred:
			visitExpr(ex.Value)
		}
	}

	visitStmt = func(s hir.Stmt) {
		switch st := s.(type) {
		case *hir.Assign:
			visitExpr(st.Value)
			for _, target := range st.Targets {
				switch tgt := target.(type) {
				case *hir.Attribute:
					// `obj.field = x` mutates obj in place...
					if recv, ok := tgt.Value.(*hir.Ident); ok {
						markMutated(recv.Name)
					}
					// ...and stores x into obj, which escapes the statement's
					// lexical scope if obj itself outlives it (conservatively:
					// always, since fields are not scope-local).
					namesIn(st.Value, markEscapes)
				case *hir.Index:
					if recv, ok := tgt.Value.(*hir.Ident); ok {
						markMutated(recv.Name)
					}
				}
			}
		case *hir.AugAssign:
			if id, ok := st.Target.(*hir.Ident); ok {
				markMutated(id.Name)
			}
			visitExpr(st.Value)
		case *hir.If:
			visitExpr(st.Cond)
			for _, b := range st.Body {
				visitStmt(b)
			}
			for _, b := range st.Else {
				visitStmt(b)
			}
		case *hir.While:
			visitExpr(st.Cond)
			for _, b := range st.Body {
				visitStmt(b)
			}
			for _, b := range st.Else {
				visitStmt(b)
			}
		case *hir.For:
			visitExpr(st.Iter)
			for _, b := range st.Body {
				visitStmt(b)
			}
			for _, b := range st.Else {
				visitStmt(b)
			}
		case *hir.Try:
			for _, b := range st.Body {
				visitStmt(b)
			}
			for _, h := range st.Handlers {
				for _, b := range h.Body {
					visitStmt(b)
				}
			}
			for _, b := range st.Else {
				visitStmt(b)
			}
			for _, b := range st.Finally {
				visitStmt(b)
			}
		case *hir.With:
			for _, item := range st.Items {
				visitExpr(item.Context)
			}
			for _, b := range st.Body {
				visitStmt(b)
			}
		case *hir.Return:
			namesIn(st.Value, markEscapes)
			visitExpr(st.Value)
		case *hir.Raise:
			visitExpr(st.Exc)
		case *hir.ExprStmt:
			visitExpr(st.Value)
		case *hir.Match:
			visitExpr(st.Subject)
			for _, arm := range st.Cases {
				visitExpr(arm.Guard)
				for _, b := range arm.Body {
					visitStmt(b)
				}
			}
		}
	}

	for _, s := range body {
		visitStmt(s)
	}
}

// analyzeClosureEscapes promotes any free variable captured by a Lambda
// to escaped status, since the closure may outlive the enclosing scope
// (spec.md §4.4 escape analysis: "captured in a returned closure"). Full
// alias/lifetime tracking of the closure itself is out of scope for a
// per-function pass. Only captured parameters are affected (they become
// owned); the closure itself is not marked, and C6 never emits a `move`
// closure.
func analyzeClosureEscapes(fn *hir.Function) {
	paramNames := make(map[string]bool, len(fn.Params))
	for _, p := range fn.Params {
		paramNames[p.Name] = true
	}
	var visitExpr func(hir.Expr)
	visitExpr = func(e hir.Expr) {
		switch ex := e.(type) {
		case *hir.Lambda:
			bound := make(map[string]bool)
			for _, p := range ex.Params {
				bound[p.Name] = true
			}
			markCapturedFreeVars(ex.Body, bound, paramNames, fn)
		case *hir.BinOp:
			visitExpr(ex.Left)
			visitExpr(ex.Right)
		case *hir.Call:
			for _, a := range ex.Args {
				visitExpr(a)
			}
		}
	}
	var visitStmt func(hir.Stmt)
	visitStmt = func(s hir.Stmt) {
		switch st := s.(type) {
		case *hir.Assign:
			visitExpr(st.Value)
		case *hir.Return:
			visitExpr(st.Value)
		case *hir.ExprStmt:
			visitExpr(st.Value)
		case *hir.If:
			for _, b := range st.Body {
				visitStmt(b)
			}
			for _, b := range st.Else {
				visitStmt(b)
			}
		case *hir.For:
			for _, b := range st.Body {
				visitStmt(b)
			}
		case *hir.While:
			for _, b := range st.Body {
				visitStmt(b)
			}
		}
	}
	for _, s := range fn.Body {
		visitStmt(s)
	}
}

func markCapturedFreeVars(e hir.Expr, bound, paramNames map[string]bool, fn *hir.Function) {
	if id, ok := e.(*hir.Ident); ok {
		if bound[id.Name] {
			return
		}
		for _, p := range fn.Params {
			if p.Name == id.Name {
				p.Borrow = hir.BorrowOwned
			}
		}
		return
	}
	if bin, ok := e.(*hir.BinOp); ok {
		markCapturedFreeVars(bin.Left, bound, paramNames, fn)
		markCapturedFreeVars(bin.Right, bound, paramNames, fn)
	}
}
