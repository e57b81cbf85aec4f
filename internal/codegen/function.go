package codegen

import (
	"fmt"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

// emitFunction emits one function or method (spec.md §4.6). A generator
// function is redirected to emitGenerator's state-machine lowering; an
// async function gets `async fn`; a function with a non-nil ErrorUnion
// gets its return type wrapped in Result.
func (e *Emitter) emitFunction(out *strings.Builder, fn *hir.Function, depth int) {
	ind := indent(depth)
	if fn.Doc != "" {
		for _, line := range strings.Split(strings.TrimSpace(fn.Doc), "\n") {
			fmt.Fprintf(out, "%s/// %s\n", ind, strings.TrimSpace(line))
		}
	}
	for _, meta := range fn.OpaqueMetadata {
		fmt.Fprintf(out, "%s// decorator (opaque): %s\n", ind, meta)
	}

	if fn.IsGenerator {
		e.emitGenerator(out, fn, depth)
		return
	}

	sig := e.signature(fn)
	fmt.Fprintf(out, "%s%s {\n", ind, sig)
	e.emitFunctionBody(out, fn, depth+1)
	fmt.Fprintf(out, "%s}\n\n", ind)
}

// signature renders a function's `pub [async] fn name<lifetimes>(params) -> RetType`
// header, honoring receiver classification (spec.md §4.6: "each method
// receives a receiver matching its classification").
func (e *Emitter) signature(fn *hir.Function) string {
	var b strings.Builder
	b.WriteString("pub ")
	if fn.IsAsync {
		b.WriteString("async ")
	}
	b.WriteString("fn ")
	b.WriteString(fn.Name)

	lifetimes := lifetimeParams(fn)
	if len(lifetimes) > 0 {
		b.WriteString("<" + strings.Join(lifetimes, ", ") + ">")
	}
	b.WriteString("(")

	var params []string
	switch fn.Receiver {
	case hir.ReceiverShared:
		params = append(params, "&self")
	case hir.ReceiverExclusive:
		params = append(params, "&mut self")
	case hir.ReceiverOwned:
		params = append(params, "self")
	}
	for _, p := range fn.Params {
		if p.Kind == hir.ParamStarArgs {
			params = append(params, fmt.Sprintf("%s: &[%s]", p.Name, e.rustType(p.Type)))
			continue
		}
		if p.Kind == hir.ParamStarKwargs {
			params = append(params, fmt.Sprintf("%s: HashMap<String, %s>", p.Name, e.rustType(p.Type)))
			continue
		}
		params = append(params, fmt.Sprintf("%s: %s", p.Name, e.paramType(p)))
	}
	b.WriteString(strings.Join(params, ", "))
	b.WriteString(")")

	ret := e.returnType(fn)
	if ret != "()" || fn.ErrorUnion != nil {
		b.WriteString(" -> " + ret)
	}
	return b.String()
}

// returnType renders fn's return type, wrapped in Result<T, Error> when
// C6's exception-to-result lowering assigned an ErrorUnion (spec.md
// §4.6).
func (e *Emitter) returnType(fn *hir.Function) string {
	base := e.rustType(fn.ReturnType)
	if fn.ErrorUnion == nil {
		return base
	}
	return fmt.Sprintf("Result<%s, Error>", base)
}

func (e *Emitter) emitFunctionBody(out *strings.Builder, fn *hir.Function, depth int) {
	e.emitBlock(out, fn.Body, depth)
	if fn.ErrorUnion != nil && !endsInReturn(fn.Body) {
		fmt.Fprintf(out, "%sOk(%s)\n", indent(depth), zeroValueTrailer(fn.ReturnType))
	}
}

// endsInReturn reports whether body's last statement is a Return,
// If-with-both-branches-returning, or a Raise (spec.md §4.6: "result
// wrapping of trailing expressions" text-fix has nothing to do when the
// function already exits explicitly on every path).
func endsInReturn(body []hir.Stmt) bool {
	if len(body) == 0 {
		return false
	}
	switch st := body[len(body)-1].(type) {
	case *hir.Return, *hir.Raise:
		return true
	case *hir.If:
		return endsInReturn(st.Body) && endsInReturn(st.Else)
	default:
		return false
	}
}

func zeroValueTrailer(t hir.Type) string {
	if _, ok := t.(*hir.TPrimitive); ok {
		return "Default::default()"
	}
	return "()"
}
