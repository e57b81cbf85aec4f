package types

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

// Checker runs the local constraint solver of spec.md §4.3(a) over one
// module at a time: for each function, walk the body and emit equality
// constraints from operator usage, literal kinds, control-flow joins,
// collection homogeneity, and return statements; unify with an occurs
// check; on failure back off to the dynamic sentinel at the narrowest
// node that still preserves the remainder of the function. Grounded on
// the teacher's typechecker_core.go/inference.go walk-and-constrain
// shape, retargeted from Core/ANF nodes to hir.Expr/hir.Stmt.
type Checker struct {
	u       *Unifier
	sub     Substitution
	diags   diag.List
	fresh   int
}

// NewChecker creates a Checker with an empty substitution.
func NewChecker() *Checker {
	return &Checker{u: NewUnifier(), sub: Substitution{}, diags: nil}
}

// Diagnostics returns every diagnostic accumulated across all
// CheckFunction calls so far.
func (c *Checker) Diagnostics() diag.List { return c.diags }

// freshVar mints a new, uniquely-named type variable.
func (c *Checker) freshVar() *hir.TVar {
	c.fresh++
	return &hir.TVar{Name: fmt.Sprintf("t%d", c.fresh)}
}

// unify attempts to unify a and b, recording a TYP001/TYP002 diagnostic
// and degrading to the dynamic sentinel on failure rather than aborting
// (spec.md §8: "Totality of phases").
func (c *Checker) unify(a, b hir.Type, span diag.Span) hir.Type {
	sub, err := c.u.Unify(a, b, c.sub)
	if err != nil {
		code := diag.TypUnifyConflict
		if isOccursErr(err) {
			code = diag.TypOccursCheck
		}
		c.diags = c.diags.Add(diag.New(code, diag.PhaseType, err.Error(), &span))
		return &hir.TDynamic{}
	}
	c.sub = sub
	return ApplySubstitution(c.sub, a)
}

func isOccursErr(err error) bool {
	s := err.Error()
	return len(s) >= 12 && s[:12] == "occurs check"
}

// CheckModule runs local inference over every function in mod, in
// declaration order (deterministic per spec.md §8).
func (c *Checker) CheckModule(mod *hir.Module) {
	env := NewEnv(nil)
	for _, cls := range mod.Classes {
		env.Set(cls.Name, &hir.TNominal{Name: cls.Name})
		for _, m := range cls.Methods {
			c.CheckFunction(m, env)
		}
	}
	for _, fn := range mod.Functions {
		c.CheckFunction(fn, env)
	}
	c.Finalize(mod)
}

// CheckFunction infers types through one function body.
func (c *Checker) CheckFunction(fn *hir.Function, outer *Env) {
	env := outer.Child()
	for _, p := range fn.Params {
		if p.Type == nil {
			p.Type = c.freshVar()
		}
		env.Set(p.Name, p.Type)
	}
	if fn.ReturnType == nil {
		fn.ReturnType = c.freshVar()
	}
	env.Set(fn.Name, &hir.TFunc{Params: paramTypes(fn.Params), Return: fn.ReturnType})

	for _, s := range fn.Body {
		c.checkStmt(s, env, fn)
	}
}

func paramTypes(params []*hir.Param) []hir.Type {
	out := make([]hir.Type, len(params))
	for i, p := range params {
		out[i] = p.Type
	}
	return out
}

func (c *Checker) checkStmt(s hir.Stmt, env *Env, fn *hir.Function) {
	switch st := s.(type) {
	case *hir.Assign:
		vt := c.checkExpr(st.Value, env)
		for _, target := range st.Targets {
			if id, ok := target.(*hir.Ident); ok {
				if existing, ok := env.Get(id.Name); ok {
					vt = c.unify(existing, vt, id.Position())
				}
				env.Set(id.Name, vt)
				id.SetType(vt)
			} else {
				c.checkExpr(target, env)
			}
		}
	case *hir.AugAssign:
		tt := c.checkExpr(st.Target, env)
		vt := c.checkExpr(st.Value, env)
		c.unify(tt, vt, st.Position())
	case *hir.If:
		ct := c.checkExpr(st.Cond, env)
		c.unify(ct, &hir.TPrimitive{Kind: hir.PrimBool}, st.Cond.Position())
		for _, b := range st.Body {
			c.checkStmt(b, env.Child(), fn)
		}
		for _, b := range st.Else {
			c.checkStmt(b, env.Child(), fn)
		}
	case *hir.While:
		ct := c.checkExpr(st.Cond, env)
		c.unify(ct, &hir.TPrimitive{Kind: hir.PrimBool}, st.Cond.Position())
		for _, b := range st.Body {
			c.checkStmt(b, env.Child(), fn)
		}
		for _, b := range st.Else {
			c.checkStmt(b, env.Child(), fn)
		}
	case *hir.For:
		it := c.checkExpr(st.Iter, env)
		elem := c.elementTypeOf(it)
		loopEnv := env.Child()
		if id, ok := st.Target.(*hir.Ident); ok {
			loopEnv.Set(id.Name, elem)
			id.SetType(elem)
		}
		for _, b := range st.Body {
			c.checkStmt(b, loopEnv, fn)
		}
		for _, b := range st.Else {
			c.checkStmt(b, env.Child(), fn)
		}
	case *hir.Try:
		for _, b := range st.Body {
			c.checkStmt(b, env.Child(), fn)
		}
		for _, h := range st.Handlers {
			henv := env.Child()
			if h.Name != "" && h.ExcType != nil {
				henv.Set(h.Name, h.ExcType)
			}
			for _, b := range h.Body {
				c.checkStmt(b, henv, fn)
			}
		}
		for _, b := range st.Else {
			c.checkStmt(b, env.Child(), fn)
		}
		for _, b := range st.Finally {
			c.checkStmt(b, env.Child(), fn)
		}
	case *hir.With:
		wenv := env.Child()
		for _, item := range st.Items {
			ct := c.checkExpr(item.Context, wenv)
			if id, ok := item.Target.(*hir.Ident); ok {
				wenv.Set(id.Name, ct)
				id.SetType(ct)
			}
		}
		for _, b := range st.Body {
			c.checkStmt(b, wenv, fn)
		}
	case *hir.Return:
		if st.Value != nil {
			vt := c.checkExpr(st.Value, env)
			fn.ReturnType = c.unify(fn.ReturnType, vt, st.Position())
		} else {
			fn.ReturnType = c.unify(fn.ReturnType, &hir.TPrimitive{Kind: hir.PrimUnit}, st.Position())
		}
	case *hir.Raise:
		if st.Exc != nil {
			c.checkExpr(st.Exc, env)
		}
	case *hir.ExprStmt:
		c.checkExpr(st.Value, env)
	case *hir.Match:
		c.checkExpr(st.Subject, env)
		for _, arm := range st.Cases {
			aenv := env.Child()
			if arm.Guard != nil {
				c.checkExpr(arm.Guard, aenv)
			}
			for _, b := range arm.Body {
				c.checkStmt(b, aenv, fn)
			}
		}
	case *hir.FuncDeclStmt:
		c.CheckFunction(st.Fn, env)
	default:
		// Break/Continue/Pass/ImportStmt/ClassDeclStmt/Global/Nonlocal carry
		// no type information to collect.
	}
}

// elementTypeOf returns the iteration element type of a sequence/set/map
// type, falling back to a fresh variable (resolved later, or defaulted to
// dynamic) for anything else.
func (c *Checker) elementTypeOf(t hir.Type) hir.Type {
	switch tt := ApplySubstitution(c.sub, t).(type) {
	case *hir.TSeq:
		if tt.Elem != nil {
			return tt.Elem
		}
		return c.freshVar()
	case *hir.TSet:
		return tt.Elem
	case *hir.TMap:
		return tt.Key
	default:
		return c.freshVar()
	}
}

func (c *Checker) checkExpr(e hir.Expr, env *Env) hir.Type {
	if e == nil {
		return &hir.TPrimitive{Kind: hir.PrimUnit}
	}
	var t hir.Type
	switch ex := e.(type) {
	case *hir.Literal:
		t = literalType(ex)
	case *hir.Ident:
		if bound, ok := env.Get(ex.Name); ok {
			t = bound
		} else {
			t = c.freshVar()
			env.Set(ex.Name, t)
		}
	case *hir.BinOp:
		lt := c.checkExpr(ex.Left, env)
		rt := c.checkExpr(ex.Right, env)
		t = c.binOpType(ex.Op, lt, rt, ex.Position())
	case *hir.UnaryOp:
		t = c.checkExpr(ex.X, env)
	case *hir.CompareChain:
		for _, o := range ex.Operands {
			c.checkExpr(o, env)
		}
		t = &hir.TPrimitive{Kind: hir.PrimBool}
	case *hir.BoolOp:
		for _, o := range ex.Operands {
			ot := c.checkExpr(o, env)
			c.unify(ot, &hir.TPrimitive{Kind: hir.PrimBool}, ex.Position())
		}
		t = &hir.TPrimitive{Kind: hir.PrimBool}
	case *hir.Call:
		t = c.checkCall(ex, env)
	case *hir.Attribute:
		c.checkExpr(ex.Value, env)
		t = c.freshVar()
	case *hir.Index:
		vt := c.checkExpr(ex.Value, env)
		c.checkExpr(ex.Index, env)
		t = c.elementTypeOf(vt)
	case *hir.Slice:
		vt := c.checkExpr(ex.Value, env)
		if ex.Start != nil {
			c.checkExpr(ex.Start, env)
		}
		if ex.Stop != nil {
			c.checkExpr(ex.Stop, env)
		}
		if ex.Step != nil {
			c.checkExpr(ex.Step, env)
		}
		t = vt
	case *hir.ContainerLit:
		t = c.checkContainer(ex, env)
	case *hir.Comprehension:
		t = c.checkComprehension(ex, env)
	case *hir.Lambda:
		lenv := env.Child()
		for _, p := range ex.Params {
			if p.Type == nil {
				p.Type = c.freshVar()
			}
			lenv.Set(p.Name, p.Type)
		}
		bt := c.checkExpr(ex.Body, lenv)
		t = &hir.TFunc{Params: paramTypes(ex.Params), Return: bt}
	case *hir.FString:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.checkExpr(part.Expr, env)
			}
		}
		t = &hir.TText{Mode: hir.TextOwned}
	case *hir.CondExpr:
		c.checkExpr(ex.Cond, env)
		tt := c.checkExpr(ex.Then, env)
		et := c.checkExpr(ex.Else, env)
		t = c.unify(tt, et, ex.Position())
	case *hir.NamedExpr:
		vt := c.checkExpr(ex.Value, env)
		env.Set(ex.Name, vt)
		t = vt
	case *hir.Await:
		t = c.checkExpr(ex.Value, env)
	case *hir.Yield:
		if ex.Value != nil {
			t = c.checkExpr(ex.Value, env)
		} else {
			t = &hir.TPrimitive{Kind: hir.PrimUnit}
		}
	case *hir.Starred:
		t = c.checkExpr(ex.Value, env)
	default:
		t = &hir.TDynamic{}
	}
	e.SetType(t)
	return t
}

func literalType(l *hir.Literal) hir.Type {
	switch l.Kind {
	case hir.LitInt:
		return DefaultInt()
	case hir.LitFloat:
		return &hir.TPrimitive{Kind: hir.PrimFloat64}
	case hir.LitBool:
		return &hir.TPrimitive{Kind: hir.PrimBool}
	case hir.LitString:
		return &hir.TText{Mode: hir.TextOwned}
	case hir.LitBytes:
		return &hir.TSeq{Kind: hir.SeqVec, Elem: &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width8, Unsigned: true}}
	case hir.LitNone:
		return &hir.TOption{Elem: &hir.TDynamic{}}
	default:
		return &hir.TDynamic{}
	}
}

func (c *Checker) binOpType(op string, l, r hir.Type, span diag.Span) hir.Type {
	switch op {
	case "//":
		return FloorDivResultType(l, r)
	case "**":
		return PowResultType(l, r)
	case "/":
		return TrueDivResultType(l, r)
	case "+", "-", "*", "%", "@":
		lp, lok := ApplySubstitution(c.sub, l).(*hir.TPrimitive)
		rp, rok := ApplySubstitution(c.sub, r).(*hir.TPrimitive)
		if lok && rok {
			if widened, ok := Widen(lp, rp); ok {
				return widened
			}
		}
		return c.unify(l, r, span)
	case "&", "|", "^", "<<", ">>":
		return c.unify(l, r, span)
	default:
		return c.unify(l, r, span)
	}
}

func (c *Checker) checkCall(call *hir.Call, env *Env) hir.Type {
	ft := c.checkExpr(call.Func, env)
	for _, a := range call.Args {
		c.checkExpr(a, env)
	}
	for _, kw := range call.Keywords {
		if kw.Value != nil {
			c.checkExpr(kw.Value, env)
		}
	}
	if call.StarArgs != nil {
		c.checkExpr(call.StarArgs, env)
	}
	if fn, ok := ApplySubstitution(c.sub, ft).(*hir.TFunc); ok {
		return fn.Return
	}
	return c.freshVar()
}

func (c *Checker) checkContainer(lit *hir.ContainerLit, env *Env) hir.Type {
	switch lit.Kind {
	case hir.ContainerDict:
		var kt, vt hir.Type
		for _, entry := range lit.Entries {
			if entry.Key == nil {
				if entry.Value != nil {
					c.checkExpr(entry.Value, env)
				}
				continue
			}
			ekt := c.checkExpr(entry.Key, env)
			evt := c.checkExpr(entry.Value, env)
			if kt == nil {
				kt, vt = ekt, evt
			} else {
				kt = c.unify(kt, ekt, entry.Key.Position())
				vt = c.unify(vt, evt, entry.Value.Position())
			}
		}
		if kt == nil {
			kt, vt = c.freshVar(), c.freshVar()
		}
		return &hir.TMap{Key: kt, Value: vt}
	case hir.ContainerTuple:
		elems := make([]hir.Type, len(lit.Elems))
		for i, e := range lit.Elems {
			elems[i] = c.checkExpr(e, env)
		}
		return &hir.TSeq{Kind: hir.SeqTuple, Elems: elems}
	case hir.ContainerSet, hir.ContainerFrozenset:
		var elem hir.Type
		for _, e := range lit.Elems {
			et := c.checkExpr(e, env)
			if elem == nil {
				elem = et
			} else {
				elem = c.unify(elem, et, e.Position())
			}
		}
		if elem == nil {
			elem = c.freshVar()
		}
		return &hir.TSet{Elem: elem}
	default: // list
		var elem hir.Type
		for _, e := range lit.Elems {
			et := c.checkExpr(e, env)
			if elem == nil {
				elem = et
			} else {
				elem = c.unify(elem, et, e.Position())
			}
		}
		if elem == nil {
			elem = c.freshVar()
		}
		return &hir.TSeq{Kind: hir.SeqVec, Elem: elem}
	}
}

func (c *Checker) checkComprehension(comp *hir.Comprehension, env *Env) hir.Type {
	cenv := env.Child()
	for _, clause := range comp.Clauses {
		it := c.checkExpr(clause.Iter, cenv)
		elem := c.elementTypeOf(it)
		if id, ok := clause.Target.(*hir.Ident); ok {
			cenv.Set(id.Name, elem)
			id.SetType(elem)
		}
		for _, f := range clause.Filters {
			c.checkExpr(f, cenv)
		}
	}
	elemT := c.checkExpr(comp.Element, cenv)
	switch comp.Kind {
	case hir.CompSet:
		return &hir.TSet{Elem: elemT}
	case hir.CompDict:
		valT := c.checkExpr(comp.Value, cenv)
		return &hir.TMap{Key: elemT, Value: valT}
	case hir.CompGenerator:
		return &hir.TNominal{Name: "Iterator", Args: []hir.Type{elemT}}
	default:
		return &hir.TSeq{Kind: hir.SeqVec, Elem: elemT}
	}
}

// Finalize applies the accumulated substitution to every expression in
// mod so no node is left carrying an unresolved TVar (spec.md §8: "Type
// completeness" — after C3, either a concrete type or the dynamic
// sentinel). Any TVar still unresolved after substitution degrades to
// the dynamic sentinel here.
func (c *Checker) Finalize(mod *hir.Module) {
	for _, fn := range mod.Functions {
		c.finalizeFunction(fn)
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			c.finalizeFunction(m)
		}
	}
}

func (c *Checker) finalizeFunction(fn *hir.Function) {
	for _, p := range fn.Params {
		p.Type = c.settle(p.Type)
	}
	fn.ReturnType = c.settle(fn.ReturnType)
	for _, s := range fn.Body {
		c.finalizeStmt(s)
	}
}

func (c *Checker) settle(t hir.Type) hir.Type {
	resolved := ApplySubstitution(c.sub, t)
	if _, stillVar := resolved.(*hir.TVar); stillVar {
		return &hir.TDynamic{}
	}
	return resolved
}

func (c *Checker) finalizeStmt(s hir.Stmt) {
	switch st := s.(type) {
	case *hir.Assign:
		c.finalizeExpr(st.Value)
		for _, t := range st.Targets {
			c.finalizeExpr(t)
		}
	case *hir.AugAssign:
		c.finalizeExpr(st.Target)
		c.finalizeExpr(st.Value)
	case *hir.If:
		c.finalizeExpr(st.Cond)
		for _, b := range st.Body {
			c.finalizeStmt(b)
		}
		for _, b := range st.Else {
			c.finalizeStmt(b)
		}
	case *hir.While:
		c.finalizeExpr(st.Cond)
		for _, b := range st.Body {
			c.finalizeStmt(b)
		}
		for _, b := range st.Else {
			c.finalizeStmt(b)
		}
	case *hir.For:
		c.finalizeExpr(st.Target)
		c.finalizeExpr(st.Iter)
		for _, b := range st.Body {
			c.finalizeStmt(b)
		}
		for _, b := range st.Else {
			c.finalizeStmt(b)
		}
	case *hir.Try:
		for _, b := range st.Body {
			c.finalizeStmt(b)
		}
		for _, h := range st.Handlers {
			for _, b := range h.Body {
				c.finalizeStmt(b)
			}
		}
		for _, b := range st.Else {
			c.finalizeStmt(b)
		}
		for _, b := range st.Finally {
			c.finalizeStmt(b)
		}
	case *hir.With:
		for _, item := range st.Items {
			c.finalizeExpr(item.Context)
			if item.Target != nil {
				c.finalizeExpr(item.Target)
			}
		}
		for _, b := range st.Body {
			c.finalizeStmt(b)
		}
	case *hir.Return:
		if st.Value != nil {
			c.finalizeExpr(st.Value)
		}
	case *hir.Raise:
		if st.Exc != nil {
			c.finalizeExpr(st.Exc)
		}
	case *hir.ExprStmt:
		c.finalizeExpr(st.Value)
	case *hir.Match:
		c.finalizeExpr(st.Subject)
		for _, arm := range st.Cases {
			if arm.Guard != nil {
				c.finalizeExpr(arm.Guard)
			}
			for _, b := range arm.Body {
				c.finalizeStmt(b)
			}
		}
	case *hir.FuncDeclStmt:
		c.finalizeFunction(st.Fn)
	}
}

func (c *Checker) finalizeExpr(e hir.Expr) {
	if e == nil {
		return
	}
	e.SetType(c.settle(e.TypeOf()))
	switch ex := e.(type) {
	case *hir.BinOp:
		c.finalizeExpr(ex.Left)
		c.finalizeExpr(ex.Right)
	case *hir.UnaryOp:
		c.finalizeExpr(ex.X)
	case *hir.CompareChain:
		for _, o := range ex.Operands {
			c.finalizeExpr(o)
		}
	case *hir.BoolOp:
		for _, o := range ex.Operands {
			c.finalizeExpr(o)
		}
	case *hir.Call:
		c.finalizeExpr(ex.Func)
		for _, a := range ex.Args {
			c.finalizeExpr(a)
		}
		for _, kw := range ex.Keywords {
			if kw.Value != nil {
				c.finalizeExpr(kw.Value)
			}
		}
		if ex.StarArgs != nil {
			c.finalizeExpr(ex.StarArgs)
		}
	case *hir.Attribute:
		c.finalizeExpr(ex.Value)
	case *hir.Index:
		c.finalizeExpr(ex.Value)
		c.finalizeExpr(ex.Index)
	case *hir.Slice:
		c.finalizeExpr(ex.Value)
		if ex.Start != nil {
			c.finalizeExpr(ex.Start)
		}
		if ex.Stop != nil {
			c.finalizeExpr(ex.Stop)
		}
		if ex.Step != nil {
			c.finalizeExpr(ex.Step)
		}
	case *hir.ContainerLit:
		for _, el := range ex.Elems {
			c.finalizeExpr(el)
		}
		for _, entry := range ex.Entries {
			if entry.Key != nil {
				c.finalizeExpr(entry.Key)
			}
			c.finalizeExpr(entry.Value)
		}
	case *hir.Comprehension:
		c.finalizeExpr(ex.Element)
		if ex.Value != nil {
			c.finalizeExpr(ex.Value)
		}
		for _, clause := range ex.Clauses {
			c.finalizeExpr(clause.Target)
			c.finalizeExpr(clause.Iter)
			for _, f := range clause.Filters {
				c.finalizeExpr(f)
			}
		}
	case *hir.Lambda:
		c.finalizeExpr(ex.Body)
	case *hir.FString:
		for _, part := range ex.Parts {
			if part.Expr != nil {
				c.finalizeExpr(part.Expr)
			}
		}
	case *hir.CondExpr:
		c.finalizeExpr(ex.Cond)
		c.finalizeExpr(ex.Then)
		c.finalizeExpr(ex.Else)
	case *hir.NamedExpr:
		c.finalizeExpr(ex.Value)
	case *hir.Await:
		c.finalizeExpr(ex.Value)
	case *hir.Yield:
		if ex.Value != nil {
			c.finalizeExpr(ex.Value)
		}
	case *hir.Starred:
		c.finalizeExpr(ex.Value)
	}
}
