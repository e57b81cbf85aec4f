package codegen

import (
	"fmt"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/dtree"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

// emitBlock emits a statement list at the given indent level.
func (e *Emitter) emitBlock(out *strings.Builder, body []hir.Stmt, depth int) {
	for _, s := range body {
		e.emitStmt(out, s, depth)
	}
}

// emitStmt is C6's structural-recursion dispatch over hir.Stmt (spec.md
// §4.6: "Statements. Control flow maps directly").
func (e *Emitter) emitStmt(out *strings.Builder, s hir.Stmt, depth int) {
	ind := indent(depth)
	switch st := s.(type) {
	case *hir.Assign:
		e.emitAssign(out, st, depth)
	case *hir.AugAssign:
		rust := binOpRust[st.Op]
		if rust == "" {
			rust = st.Op
		}
		fmt.Fprintf(out, "%s%s %s= %s;\n", ind, e.emitExpr(st.Target), rust, e.emitExpr(st.Value))
	case *hir.If:
		fmt.Fprintf(out, "%sif %s {\n", ind, e.emitExpr(st.Cond))
		e.emitBlock(out, st.Body, depth+1)
		if len(st.Else) > 0 {
			fmt.Fprintf(out, "%s} else {\n", ind)
			e.emitBlock(out, st.Else, depth+1)
		}
		fmt.Fprintf(out, "%s}\n", ind)
	case *hir.While:
		fmt.Fprintf(out, "%swhile %s {\n", ind, e.emitExpr(st.Cond))
		e.emitBlock(out, st.Body, depth+1)
		fmt.Fprintf(out, "%s}\n", ind)
		if len(st.Else) > 0 {
			e.emitBlock(out, st.Else, depth)
		}
	case *hir.For:
		e.emitFor(out, st, depth)
	case *hir.Try:
		e.emitTry(out, st, depth)
	case *hir.With:
		e.emitWith(out, st, depth)
	case *hir.Raise:
		e.emitRaise(out, st, depth)
	case *hir.Return:
		if st.Value == nil {
			fmt.Fprintf(out, "%sreturn;\n", ind)
		} else {
			fmt.Fprintf(out, "%sreturn %s;\n", ind, e.emitExpr(st.Value))
		}
	case *hir.Break:
		fmt.Fprintf(out, "%sbreak;\n", ind)
	case *hir.Continue:
		fmt.Fprintf(out, "%scontinue;\n", ind)
	case *hir.Pass:
		// no Rust analog needed; `pass` (and unsupported `del`) contributes nothing
	case *hir.ImportStmt:
		// No direct Rust statement form: `use` lines are synthesized from
		// the symbols C5 actually resolves at call sites, not from the
		// Python import statement's textual position (spec.md §4.6).
	case *hir.FuncDeclStmt:
		e.emitFunction(out, st.Fn, depth)
	case *hir.ClassDeclStmt:
		e.emitClass(out, st.Cls)
	case *hir.GlobalDecl, *hir.NonlocalDecl:
		// scoping declarations have no Rust surface form; the binder's
		// actual storage (closure capture vs. module const) is decided by
		// C4's escape analysis, already reflected in Borrow/ownership.
	case *hir.ExprStmt:
		fmt.Fprintf(out, "%s%s;\n", ind, e.emitExpr(st.Value))
	case *hir.Match:
		e.emitMatch(out, st, depth)
	default:
		e.report(diag.GenEmissionStub, diag.PhaseCodegen, "emission stub: unsupported statement node", nil)
		fmt.Fprintf(out, "%stodo!(/* %T */);\n", ind, s)
	}
}

func (e *Emitter) emitAssign(out *strings.Builder, a *hir.Assign, depth int) {
	ind := indent(depth)
	val := e.emitExpr(a.Value)
	for _, t := range a.Targets {
		if id, ok := t.(*hir.Ident); ok {
			fmt.Fprintf(out, "%slet mut %s = %s;\n", ind, id.Name, val)
			continue
		}
		fmt.Fprintf(out, "%s%s = %s;\n", ind, e.emitExpr(t), val)
	}
}

// emitFor maps a `for` loop to a numeric range when the iterable is a
// `range(...)` call, and to `.iter()` over the container otherwise;
// `.iter_mut()` and `.into_iter()` are never chosen.
func (e *Emitter) emitFor(out *strings.Builder, f *hir.For, depth int) {
	ind := indent(depth)
	target := e.emitExpr(f.Target)
	if call, ok := f.Iter.(*hir.Call); ok {
		if id, ok := call.Func.(*hir.Ident); ok && id.Name == "range" {
			fmt.Fprintf(out, "%sfor %s in %s {\n", ind, target, e.emitRange(call))
			e.emitBlock(out, f.Body, depth+1)
			fmt.Fprintf(out, "%s}\n", ind)
			if len(f.Else) > 0 {
				e.emitBlock(out, f.Else, depth)
			}
			return
		}
	}
	method := e.iterMethodFor(f.Target)
	fmt.Fprintf(out, "%sfor %s in %s.%s() {\n", ind, target, e.emitExpr(f.Iter), method)
	e.emitBlock(out, f.Body, depth+1)
	fmt.Fprintf(out, "%s}\n", ind)
	if len(f.Else) > 0 {
		e.emitBlock(out, f.Else, depth)
	}
}

// iterMethodFor returns the iteration method for a for-loop's container.
// It always returns "iter"; the target's ownership use is not consulted.
func (e *Emitter) iterMethodFor(target hir.Expr) string {
	return "iter"
}

// emitRange renders `range(n)` / `range(a, b)` / `range(a, b, step)` as
// a Rust exclusive range expression (spec.md §4.6: "emitted as a numeric
// range with the exclusive upper bound").
func (e *Emitter) emitRange(call *hir.Call) string {
	args := call.Args
	switch len(args) {
	case 1:
		return fmt.Sprintf("0..%s", e.emitExpr(args[0]))
	case 2:
		return fmt.Sprintf("%s..%s", e.emitExpr(args[0]), e.emitExpr(args[1]))
	case 3:
		return fmt.Sprintf("(%s..%s).step_by((%s) as usize)", e.emitExpr(args[0]), e.emitExpr(args[1]), e.emitExpr(args[2]))
	default:
		return "0..0"
	}
}

func (e *Emitter) emitWith(out *strings.Builder, w *hir.With, depth int) {
	ind := indent(depth)
	for _, item := range w.Items {
		if item.Target != nil {
			fmt.Fprintf(out, "%slet mut %s = %s;\n", ind, e.emitExpr(item.Target), e.emitExpr(item.Context))
		} else {
			fmt.Fprintf(out, "%slet _guard = %s;\n", ind, e.emitExpr(item.Context))
		}
	}
	fmt.Fprintf(out, "%s{\n", ind)
	e.emitBlock(out, w.Body, depth+1)
	fmt.Fprintf(out, "%s}\n", ind)
}

// emitRaise lowers `raise` into the matching result-sum error arm
// (spec.md §4.6: "Exception handling ... return type lifted into a
// result sum type").
func (e *Emitter) emitRaise(out *strings.Builder, r *hir.Raise, depth int) {
	ind := indent(depth)
	if r.Exc == nil {
		// Bare re-raise: only valid inside an except handler, where the
		// bound name is the in-scope error value (spec.md §4.2 dunder/
		// handler binding). Emitted as-is; an out-of-handler bare raise is
		// a lowering-time rejection (spec.md §4.2), not a codegen concern.
		fmt.Fprintf(out, "%sreturn Err(__err);\n", ind)
		return
	}
	variant := raiseVariantName(r.Exc)
	if call, ok := r.Exc.(*hir.Call); ok && len(call.Args) > 0 {
		fmt.Fprintf(out, "%sreturn Err(Error::%s(%s));\n", ind, variant, e.emitExpr(call.Args[0]))
		return
	}
	// Every collected error variant carries one String field (errors.go's
	// assignErrorUnion), so a bare `raise Foo` still needs a message arg.
	fmt.Fprintf(out, "%sreturn Err(Error::%s(String::new()));\n", ind, variant)
}

func raiseVariantName(exc hir.Expr) string {
	switch v := exc.(type) {
	case *hir.Call:
		return raiseVariantName(v.Func)
	case *hir.Ident:
		return v.Name
	case *hir.Attribute:
		return v.Attr
	default:
		return "Unknown"
	}
}

// emitTry lowers a try/except/else/finally statement to a Rust block
// matching on the Result of its fallible body, with `except E as name`
// arms as match arms binding name. The `finally` body is emitted once,
// after the match, so it runs only when control falls out of the match;
// a `return` inside an except arm or the else body skips it.
func (e *Emitter) emitTry(out *strings.Builder, t *hir.Try, depth int) {
	ind := indent(depth)
	hasFinally := len(t.Finally) > 0
	if hasFinally {
		fmt.Fprintf(out, "%s{\n", ind)
		depth++
		ind = indent(depth)
	}

	fmt.Fprintf(out, "%smatch (|| -> Result<(), Error> {\n", ind)
	e.emitBlock(out, t.Body, depth+1)
	fmt.Fprintf(out, "%s    Ok(())\n", ind)
	fmt.Fprintf(out, "%s})() {\n", ind)
	fmt.Fprintf(out, "%s    Ok(()) => {\n", ind)
	e.emitBlock(out, t.Else, depth+2)
	fmt.Fprintf(out, "%s    }\n", ind)
	for _, h := range t.Handlers {
		pat := "_err"
		if h.ExcType != nil {
			pat = variantPattern(h.ExcType, h.Name)
		} else if h.Name != "" {
			pat = h.Name
		}
		fmt.Fprintf(out, "%s    Err(%s) => {\n", ind, pat)
		e.emitBlock(out, h.Body, depth+2)
		fmt.Fprintf(out, "%s    }\n", ind)
	}
	fmt.Fprintf(out, "%s}\n", ind)

	if hasFinally {
		e.emitBlock(out, t.Finally, depth)
		depth--
		fmt.Fprintf(out, "%s}\n", indent(depth))
	}
}

func variantPattern(excType hir.Type, name string) string {
	variant := "Unknown"
	if nom, ok := excType.(*hir.TNominal); ok {
		variant = nom.Name
	}
	if name == "" {
		return fmt.Sprintf("Error::%s(..)", variant)
	}
	return fmt.Sprintf("Error::%s(%s)", variant, name)
}

// emitMatch emits a match statement as a Rust `match` with one arm per
// source case, in source order. internal/dtree's decision tree is built
// only to check exhaustiveness (SPEC_FULL §10).
func (e *Emitter) emitMatch(out *strings.Builder, m *hir.Match, depth int) {
	ind := indent(depth)
	tree := dtree.NewCompiler(m.Cases).Compile()
	if !dtree.IsExhaustive(tree) {
		e.report(diag.LowNonExhaustiveMatch, diag.PhaseCodegen, "non-exhaustive match statement", nil)
	}
	fmt.Fprintf(out, "%smatch %s {\n", ind, e.emitExpr(m.Subject))
	for _, c := range m.Cases {
		guard := ""
		if c.Guard != nil {
			guard = fmt.Sprintf(" if %s", e.emitExpr(c.Guard))
		}
		fmt.Fprintf(out, "%s    %s%s => {\n", ind, e.emitPattern(c.Pattern), guard)
		e.emitBlock(out, c.Body, depth+2)
		fmt.Fprintf(out, "%s    }\n", ind)
	}
	if !dtree.IsExhaustive(tree) {
		fmt.Fprintf(out, "%s    _ => {}\n", ind)
	}
	fmt.Fprintf(out, "%s}\n", ind)
}

// emitPattern renders an hir.Pattern as Rust match-pattern syntax.
func (e *Emitter) emitPattern(p hir.Pattern) string {
	switch pat := p.(type) {
	case *hir.WildcardPattern:
		return "_"
	case *hir.LiteralPattern:
		return e.emitLiteral(pat.Value)
	case *hir.SequencePattern:
		parts := make([]string, len(pat.Elements))
		for i, el := range pat.Elements {
			parts[i] = e.emitPattern(el)
		}
		if pat.Rest != "" {
			parts = append(parts, pat.Rest+" @ ..")
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *hir.MappingPattern:
		return "_ /* mapping pattern */"
	case *hir.ClassPattern:
		parts := make([]string, len(pat.Positional))
		for i, el := range pat.Positional {
			parts[i] = e.emitPattern(el)
		}
		return fmt.Sprintf("%s(%s)", pat.ClassName, strings.Join(parts, ", "))
	case *hir.OrPattern:
		parts := make([]string, len(pat.Alternatives))
		for i, alt := range pat.Alternatives {
			parts[i] = e.emitPattern(alt)
		}
		return strings.Join(parts, " | ")
	case *hir.BindPattern:
		if pat.Sub == nil {
			return pat.Name
		}
		return fmt.Sprintf("%s @ %s", pat.Name, e.emitPattern(pat.Sub))
	default:
		return "_"
	}
}
