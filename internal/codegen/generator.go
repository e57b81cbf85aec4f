package codegen

import (
	"fmt"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

// emitGenerator compiles a generator function to a state machine (spec.md
// §4.6): a generated record type holding the parameters, the loop
// variable and a `__stop` flag, and a single `next` operation (here,
// Rust's Iterator::next) implementing the transitions. There is no
// separate resume-tag field and no live-variable analysis: the state
// fields are fixed by that shape. A loop enclosing the yields becomes the
// explicit transition the concrete scenario in spec.md §8 names.
//
// Only the single-enclosing-loop shape (spec.md §8 scenario 5: `for i in
// range(n): yield i * i`) gets a structural state-machine translation;
// any other generator body degrades to an emission stub with a
// diagnostic (spec.md §4.6: "Failure semantics") rather than attempting
// a general CPS transform the corpus gives no grounding for.
func (e *Emitter) emitGenerator(out *strings.Builder, fn *hir.Function, depth int) {
	ind := indent(depth)
	stateName := exportedStateName(fn.Name)
	itemType := e.generatorItemType(fn)

	loop, ok := soleEnclosingForLoop(fn.Body)
	if !ok {
		e.report(diag.GenEmissionStub, diag.PhaseCodegen, "emission stub: generator body shape not supported by the state-machine lowering", nil)
		fmt.Fprintf(out, "%spub struct %s;\n\n", ind, stateName)
		fmt.Fprintf(out, "%simpl Iterator for %s {\n", ind, stateName)
		fmt.Fprintf(out, "%s    type Item = %s;\n", ind, itemType)
		fmt.Fprintf(out, "%s    fn next(&mut self) -> Option<Self::Item> {\n", ind)
		fmt.Fprintf(out, "%s        todo!(/* unsupported generator body */)\n", ind)
		fmt.Fprintf(out, "%s    }\n%s}\n\n", ind, ind)
		fmt.Fprintf(out, "%spub fn %s(%s) -> %s { %s { %s } }\n\n", ind, fn.Name, e.paramList(fn), stateName, stateName, e.paramInitList(fn))
		return
	}

	rangeArgs := loop.Iter.(*hir.Call).Args
	start, stop := "0", ""
	switch len(rangeArgs) {
	case 1:
		stop = e.emitExpr(rangeArgs[0])
	case 2, 3:
		start = e.emitExpr(rangeArgs[0])
		stop = e.emitExpr(rangeArgs[1])
	}
	target := e.emitExpr(loop.Target)
	yieldExpr := e.emitExpr(soleYieldValue(loop.Body))

	fmt.Fprintf(out, "%spub struct %s {\n", ind, stateName)
	for _, p := range fn.Params {
		fmt.Fprintf(out, "%s    %s: %s,\n", ind, p.Name, e.rustType(p.Type))
	}
	fmt.Fprintf(out, "%s    %s: i64,\n", ind, target)
	fmt.Fprintf(out, "%s    __stop: i64,\n", ind)
	fmt.Fprintf(out, "%s}\n\n", ind)

	fmt.Fprintf(out, "%simpl Iterator for %s {\n", ind, stateName)
	fmt.Fprintf(out, "%s    type Item = %s;\n", ind, itemType)
	fmt.Fprintf(out, "%s    fn next(&mut self) -> Option<Self::Item> {\n", ind)
	fmt.Fprintf(out, "%s        if self.%s >= self.__stop {\n", ind, target)
	fmt.Fprintf(out, "%s            return None;\n", ind)
	fmt.Fprintf(out, "%s        }\n", ind)
	fmt.Fprintf(out, "%s        let %s = self.%s;\n", ind, target, target)
	fmt.Fprintf(out, "%s        self.%s += 1;\n", ind, target)
	fmt.Fprintf(out, "%s        Some(%s)\n", ind, yieldExpr)
	fmt.Fprintf(out, "%s    }\n", ind)
	fmt.Fprintf(out, "%s}\n\n", ind)

	fmt.Fprintf(out, "%spub fn %s(%s) -> %s {\n", ind, fn.Name, e.paramList(fn), stateName)
	fmt.Fprintf(out, "%s    %s { %s, %s: %s, __stop: %s }\n", ind, stateName, e.paramInitList(fn), target, start, stop)
	fmt.Fprintf(out, "%s}\n\n", ind)
}

func exportedStateName(fnName string) string {
	parts := strings.Split(fnName, "_")
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]) + p[1:])
	}
	b.WriteString("State")
	return b.String()
}

func (e *Emitter) generatorItemType(fn *hir.Function) string {
	if opt, ok := fn.ReturnType.(*hir.TOption); ok {
		return e.rustType(opt.Elem)
	}
	if seq, ok := fn.ReturnType.(*hir.TSeq); ok && seq.Elem != nil {
		return e.rustType(seq.Elem)
	}
	return e.rustType(fn.ReturnType)
}

func (e *Emitter) paramList(fn *hir.Function) string {
	parts := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		parts[i] = fmt.Sprintf("%s: %s", p.Name, e.rustType(p.Type))
	}
	return strings.Join(parts, ", ")
}

func (e *Emitter) paramInitList(fn *hir.Function) string {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Name
	}
	return strings.Join(names, ", ")
}

// soleEnclosingForLoop reports whether body is exactly one `for ... in
// range(...): yield ...` loop (spec.md §8 scenario 5's shape), the one
// generator body shape this lowering compiles structurally.
func soleEnclosingForLoop(body []hir.Stmt) (*hir.For, bool) {
	if len(body) != 1 {
		return nil, false
	}
	loop, ok := body[0].(*hir.For)
	if !ok {
		return nil, false
	}
	call, ok := loop.Iter.(*hir.Call)
	if !ok {
		return nil, false
	}
	id, ok := call.Func.(*hir.Ident)
	if !ok || id.Name != "range" {
		return nil, false
	}
	if _, ok := soleYieldValueOK(loop.Body); !ok {
		return nil, false
	}
	return loop, true
}

func soleYieldValue(body []hir.Stmt) hir.Expr {
	v, _ := soleYieldValueOK(body)
	return v
}

// soleYieldValueOK extracts the single yielded expression from a loop
// body of the shape `yield <expr>` (as an ExprStmt wrapping a Yield),
// the only generator-body shape soleEnclosingForLoop accepts.
func soleYieldValueOK(body []hir.Stmt) (hir.Expr, bool) {
	if len(body) != 1 {
		return nil, false
	}
	es, ok := body[0].(*hir.ExprStmt)
	if !ok {
		return nil, false
	}
	y, ok := es.Value.(*hir.Yield)
	if !ok || y.Value == nil || y.From {
		return nil, false
	}
	return y.Value, true
}
