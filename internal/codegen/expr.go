package codegen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
	"github.com/pyrs-lang/pyrs/internal/rustlib"
	"github.com/pyrs-lang/pyrs/internal/types"
)

// binOpRust maps a spec.md §3 binary operator token to its Rust spelling
// where the two agree; floor-div, power, and matrix-mul need structural
// handling (emitBinOp) rather than a 1:1 token rename.
var binOpRust = map[string]string{
	"+": "+", "-": "-", "*": "*", "/": "/", "%": "%",
	"&": "&", "|": "|", "^": "^", "<<": "<<", ">>": ">>",
	"<": "<", "<=": "<=", ">": ">", ">=": ">=", "==": "==", "!=": "!=",
}

// emitExpr is C6's structural-recursion dispatch over hir.Expr, one
// switch arm per variant (spec.md §4.6), grounded on the teacher's
// eval_evaluator.go single-Eval-entry-point shape.
func (e *Emitter) emitExpr(expr hir.Expr) string {
	switch ex := expr.(type) {
	case *hir.Literal:
		return e.emitLiteral(ex)
	case *hir.Ident:
		return ex.Name
	case *hir.BinOp:
		return e.emitBinOp(ex)
	case *hir.UnaryOp:
		return e.emitUnaryOp(ex)
	case *hir.CompareChain:
		return e.emitCompareChain(ex)
	case *hir.BoolOp:
		return e.emitBoolOp(ex)
	case *hir.Call:
		return e.emitCall(ex)
	case *hir.Attribute:
		return fmt.Sprintf("%s.%s", e.emitExpr(ex.Value), ex.Attr)
	case *hir.Index:
		return e.emitIndex(ex)
	case *hir.Slice:
		return e.emitSlice(ex)
	case *hir.ContainerLit:
		return e.emitContainerLit(ex)
	case *hir.Comprehension:
		return e.emitComprehension(ex)
	case *hir.Lambda:
		return e.emitLambda(ex)
	case *hir.FString:
		return e.emitFString(ex)
	case *hir.CondExpr:
		return fmt.Sprintf("if %s { %s } else { %s }", e.emitExpr(ex.Cond), e.emitExpr(ex.Then), e.emitExpr(ex.Else))
	case *hir.NamedExpr:
		return fmt.Sprintf("{ %s = %s; %s }", ex.Name, e.emitExpr(ex.Value), ex.Name)
	case *hir.Await:
		return e.emitExpr(ex.Value) + ".await"
	case *hir.Yield:
		if ex.Value == nil {
			return "/* yield */"
		}
		return fmt.Sprintf("/* yield %s */", e.emitExpr(ex.Value))
	case *hir.Starred:
		return "..." + e.emitExpr(ex.Value)
	default:
		e.report(diag.GenEmissionStub, diag.PhaseCodegen, "emission stub: unsupported expression node", nil)
		return fmt.Sprintf("todo!(/* %T */)", expr)
	}
}

func (e *Emitter) emitLiteral(lit *hir.Literal) string {
	switch lit.Kind {
	case hir.LitInt:
		return lit.Value
	case hir.LitFloat:
		if !strings.ContainsAny(lit.Value, ".eE") {
			return lit.Value + ".0"
		}
		return lit.Value
	case hir.LitBool:
		return lit.Value
	case hir.LitString:
		return strconv.Quote(lit.Value) + ".to_string()"
	case hir.LitBytes:
		return fmt.Sprintf("b%s", strconv.Quote(lit.Value))
	default:
		return "None"
	}
}

// emitBinOp handles the 15 binary-operator variants of spec.md §3,
// giving floor-division, power, and matrix-multiplication structural
// translations rather than a direct token rename (spec.md §4.6).
func (e *Emitter) emitBinOp(b *hir.BinOp) string {
	l, r := e.emitExpr(b.Left), e.emitExpr(b.Right)
	switch b.Op {
	case "//":
		return e.emitFloorDiv(b, l, r)
	case "/":
		return e.emitTrueDiv(b, l, r)
	case "**":
		return e.emitPow(b, l, r)
	case "@":
		return fmt.Sprintf("%s.dot(&%s)", l, r)
	case "in":
		return fmt.Sprintf("%s.contains(&%s)", r, l)
	case "not in":
		return fmt.Sprintf("!%s.contains(&%s)", r, l)
	default:
		if rust, ok := binOpRust[b.Op]; ok {
			return fmt.Sprintf("(%s %s %s)", l, rust, r)
		}
		e.report(diag.GenEmissionStub, diag.PhaseCodegen, "emission stub: unmapped binary operator "+b.Op, nil)
		return fmt.Sprintf("todo!(/* %s %s %s */)", l, b.Op, r)
	}
}

// emitFloorDiv emits Python-semantics floor division (rounds toward
// negative infinity) per spec.md §4.3. Rust's `div_euclid` only agrees
// with floor division when the divisor is positive — for a negative
// divisor it rounds toward the divisor's sign instead, e.g. 7i64 //
// -2 is -4 in Python but 7i64.div_euclid(-2) is -3 — so the Euclidean
// quotient needs an off-by-one correction whenever the remainder is
// non-zero and the divisor is negative.
func (e *Emitter) emitFloorDiv(b *hir.BinOp, l, r string) string {
	if isFloatType(b.Left.TypeOf()) || isFloatType(b.Right.TypeOf()) {
		return fmt.Sprintf("(%s / %s).floor()", l, r)
	}
	if types.NeedsSignCorrection(b.Left.TypeOf(), b.Right.TypeOf()) {
		// Sign-correction prelude (spec.md §4.3): Rust won't let a
		// division mix signed and unsigned operands at all, so coerce
		// both into a common signed representation up front rather than
		// guess which side to widen.
		l = fmt.Sprintf("(%s as i64)", l)
		r = fmt.Sprintf("(%s as i64)", r)
	}
	return fmt.Sprintf(
		"{ let __fd_l = %s; let __fd_r = %s; let __fd_q = __fd_l.div_euclid(__fd_r); let __fd_rem = __fd_l.rem_euclid(__fd_r); if __fd_rem != 0 && __fd_r < 0 { __fd_q - 1 } else { __fd_q } }",
		l, r)
}

// emitTrueDiv emits Python's `/`, which always yields a float even for
// two integer operands (spec.md §4.3), unlike Rust's `/` which truncates
// between integers.
func (e *Emitter) emitTrueDiv(b *hir.BinOp, l, r string) string {
	lf, rf := isFloatType(b.Left.TypeOf()), isFloatType(b.Right.TypeOf())
	if lf && rf {
		return fmt.Sprintf("(%s / %s)", l, r)
	}
	if !lf {
		l = fmt.Sprintf("(%s as f64)", l)
	}
	if !rf {
		r = fmt.Sprintf("(%s as f64)", r)
	}
	return fmt.Sprintf("(%s / %s)", l, r)
}

// emitPow emits exponentiation with the widening method matching the
// operand kind (spec.md §4.3: "power on integers widens").
func (e *Emitter) emitPow(b *hir.BinOp, l, r string) string {
	if isFloatType(b.Left.TypeOf()) {
		return fmt.Sprintf("%s.powf(%s)", l, r)
	}
	return fmt.Sprintf("%s.pow(%s as u32)", l, r)
}

func isFloatType(t hir.Type) bool {
	p, ok := t.(*hir.TPrimitive)
	return ok && (p.Kind == hir.PrimFloat32 || p.Kind == hir.PrimFloat64)
}

func (e *Emitter) emitUnaryOp(u *hir.UnaryOp) string {
	x := e.emitExpr(u.X)
	switch u.Op {
	case "not":
		return fmt.Sprintf("!%s", x)
	case "-":
		return fmt.Sprintf("-%s", x)
	case "+":
		return x
	case "~":
		return fmt.Sprintf("!%s", x)
	default:
		return x
	}
}

// emitCompareChain lowers `a < b < c` to a conjunction of pairwise
// comparisons, each operand evaluated exactly once via let-bound
// intermediates (spec.md §4.2).
func (e *Emitter) emitCompareChain(c *hir.CompareChain) string {
	if len(c.Operands) < 2 {
		if len(c.Operands) == 1 {
			return e.emitExpr(c.Operands[0])
		}
		return "true"
	}
	names := make([]string, len(c.Operands))
	var prelude strings.Builder
	for i, op := range c.Operands {
		names[i] = fmt.Sprintf("__cmp%d", i)
		fmt.Fprintf(&prelude, "let %s = %s; ", names[i], e.emitExpr(op))
	}
	var parts []string
	for i, op := range c.Ops {
		rust := binOpRust[op]
		if rust == "" {
			rust = op
		}
		parts = append(parts, fmt.Sprintf("%s %s %s", names[i], rust, names[i+1]))
	}
	return fmt.Sprintf("{ %s%s }", prelude.String(), strings.Join(parts, " && "))
}

func (e *Emitter) emitBoolOp(b *hir.BoolOp) string {
	op := "&&"
	if b.Op == "or" {
		op = "||"
	}
	parts := make([]string, len(b.Operands))
	for i, o := range b.Operands {
		parts[i] = e.emitExpr(o)
	}
	return "(" + strings.Join(parts, " "+op+" ") + ")"
}

func (e *Emitter) emitIndex(ix *hir.Index) string {
	return fmt.Sprintf("%s[%s]", e.emitExpr(ix.Value), e.emitIndexOperand(ix.Index))
}

// emitIndexOperand casts an index expression to usize when its own
// inferred type isn't already an unsigned pointer-width integer (spec.md
// §4.3: container indices default to usize).
func (e *Emitter) emitIndexOperand(ix hir.Expr) string {
	text := e.emitExpr(ix)
	if p, ok := ix.TypeOf().(*hir.TPrimitive); ok && p.Kind == hir.PrimInt && p.Unsigned {
		return text
	}
	return fmt.Sprintf("(%s) as usize", text)
}

func (e *Emitter) emitSlice(s *hir.Slice) string {
	start, stop := "", ""
	if s.Start != nil {
		start = e.emitIndexOperand(s.Start)
	}
	if s.Stop != nil {
		stop = e.emitIndexOperand(s.Stop)
	}
	if s.Step != nil {
		return fmt.Sprintf("%s.iter().skip(%s).step_by(%s as usize).collect::<Vec<_>>()", e.emitExpr(s.Value), orZero(start), e.emitIndexOperand(s.Step))
	}
	return fmt.Sprintf("%s[%s..%s]", e.emitExpr(s.Value), start, stop)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func (e *Emitter) emitContainerLit(c *hir.ContainerLit) string {
	switch c.Kind {
	case hir.ContainerList:
		return e.emitVecLit(c.Elems)
	case hir.ContainerTuple:
		parts := make([]string, len(c.Elems))
		for i, el := range c.Elems {
			parts[i] = e.emitExpr(el)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case hir.ContainerSet, hir.ContainerFrozenset:
		if len(c.Elems) == 0 {
			return "HashSet::new()"
		}
		return fmt.Sprintf("HashSet::from([%s])", e.emitElemList(c.Elems))
	case hir.ContainerDict:
		if len(c.Entries) == 0 {
			return "HashMap::new()"
		}
		parts := make([]string, len(c.Entries))
		for i, ent := range c.Entries {
			parts[i] = fmt.Sprintf("(%s, %s)", e.emitExpr(ent.Key), e.emitExpr(ent.Value))
		}
		return fmt.Sprintf("HashMap::from([%s])", strings.Join(parts, ", "))
	default:
		return "()"
	}
}

func (e *Emitter) emitVecLit(elems []hir.Expr) string {
	if len(elems) == 0 {
		return "Vec::new()"
	}
	return fmt.Sprintf("vec![%s]", e.emitElemList(elems))
}

func (e *Emitter) emitElemList(elems []hir.Expr) string {
	parts := make([]string, len(elems))
	for i, el := range elems {
		parts[i] = e.emitExpr(el)
	}
	return strings.Join(parts, ", ")
}

// emitComprehension emits a list/set/dict/generator comprehension
// directly as a Rust iterator chain when C2 retained it (rather than
// desugaring to explicit loops) — spec.md §3/§4.2.
func (e *Emitter) emitComprehension(c *hir.Comprehension) string {
	if len(c.Clauses) == 0 {
		return "std::iter::empty().collect::<Vec<_>>()"
	}
	first := c.Clauses[0]
	chain := fmt.Sprintf("%s.into_iter()", e.emitExpr(first.Iter))
	for _, f := range first.Filters {
		chain = fmt.Sprintf("%s.filter(|%s| %s)", chain, e.emitExpr(first.Target), e.emitExpr(f))
	}
	for _, clause := range c.Clauses[1:] {
		chain = fmt.Sprintf("%s.flat_map(|%s| %s.into_iter())", chain, e.emitExpr(first.Target), e.emitExpr(clause.Iter))
		for _, f := range clause.Filters {
			chain = fmt.Sprintf("%s.filter(|%s| %s)", chain, e.emitExpr(clause.Target), e.emitExpr(f))
		}
	}
	switch c.Kind {
	case hir.CompDict:
		return fmt.Sprintf("%s.map(|%s| (%s, %s)).collect::<HashMap<_, _>>()", chain, e.emitExpr(first.Target), e.emitExpr(c.Element), e.emitExpr(c.Value))
	case hir.CompSet:
		return fmt.Sprintf("%s.map(|%s| %s).collect::<HashSet<_>>()", chain, e.emitExpr(first.Target), e.emitExpr(c.Element))
	case hir.CompGenerator:
		return fmt.Sprintf("%s.map(|%s| %s)", chain, e.emitExpr(first.Target), e.emitExpr(c.Element))
	default:
		return fmt.Sprintf("%s.map(|%s| %s).collect::<Vec<_>>()", chain, e.emitExpr(first.Target), e.emitExpr(c.Element))
	}
}

func (e *Emitter) emitLambda(l *hir.Lambda) string {
	names := make([]string, len(l.Params))
	for i, p := range l.Params {
		names[i] = p.Name
	}
	return fmt.Sprintf("|%s| %s", strings.Join(names, ", "), e.emitExpr(l.Body))
}

// emitFString renders f-string literal/expression parts as a `format!`
// call (spec.md §3: "f-strings → a list of literal and expression
// parts").
func (e *Emitter) emitFString(f *hir.FString) string {
	var fmtStr strings.Builder
	var args []string
	for _, part := range f.Parts {
		if part.Expr == nil {
			fmtStr.WriteString(strings.ReplaceAll(part.Literal, "{", "{{"))
			continue
		}
		spec := part.Format
		if spec != "" {
			fmtStr.WriteString("{:" + spec + "}")
		} else {
			fmtStr.WriteString("{}")
		}
		args = append(args, e.emitExpr(part.Expr))
	}
	if len(args) == 0 {
		return strconv.Quote(fmtStr.String()) + ".to_string()"
	}
	return fmt.Sprintf("format!(%s, %s)", strconv.Quote(fmtStr.String()), strings.Join(args, ", "))
}

// emitCall dispatches a call expression either to a bare-identifier
// callee (consulting C5's registry for module-qualified symbols via
// Attribute-form callees) or to an arbitrary callee expression.
func (e *Emitter) emitCall(c *hir.Call) string {
	args := make([]string, 0, len(c.Args))
	for _, a := range c.Args {
		args = append(args, e.emitExpr(a))
	}
	for _, kw := range c.Keywords {
		args = append(args, e.emitExpr(kw.Value))
	}

	if attr, ok := c.Func.(*hir.Attribute); ok {
		if module, ok := identModule(attr.Value); ok {
			return e.emitMappedCall(module, attr.Attr, nil, args, c)
		}
		recv := e.emitExpr(attr.Value)
		return e.emitMappedCall("", attr.Attr, &recv, args, c)
	}
	if id, ok := c.Func.(*hir.Ident); ok {
		return e.emitMappedCall("builtins", id.Name, nil, args, c)
	}
	return fmt.Sprintf("(%s)(%s)", e.emitExpr(c.Func), strings.Join(args, ", "))
}

// identModule reports whether e looks like a bare module reference
// (`math`, `os.path`) so emitCall can resolve `math.sqrt(x)` through C5
// rather than treating `math` as a receiver value.
func identModule(e hir.Expr) (string, bool) {
	switch v := e.(type) {
	case *hir.Ident:
		return v.Name, true
	case *hir.Attribute:
		if base, ok := identModule(v.Value); ok {
			return base + "." + v.Attr, true
		}
	}
	return "", false
}

// emitMappedCall resolves (module, symbol) through C5 and renders the
// call as a method call on a receiver when the Mapping's AsMethod is
// set, otherwise as a call of its Rust path, falling back to an
// emission stub with a diagnostic on a registry miss (spec.md §4.5,
// §4.6, §7).
func (e *Emitter) emitMappedCall(module, symbol string, recv *string, args []string, call *hir.Call) string {
	mapping, stubDiag := rustlib.Resolve(e.registry, module, symbol, nil)
	if stubDiag != nil {
		e.diags = e.diags.Add(stubDiag)
	}
	if mapping.Stub {
		name := symbol
		if module != "" {
			name = module + "." + symbol
		}
		return fmt.Sprintf("todo!(/* missing mapping: %s(%s) */)", name, strings.Join(args, ", "))
	}
	e.addImport(mapping.UseStmt)

	target := mapping.Path
	if mapping.AsMethod {
		receiver := ""
		callArgs := args
		if recv != nil {
			receiver = *recv
		} else if mapping.ReverseOne && len(args) > 0 {
			receiver = args[0]
			callArgs = args[1:]
		} else if len(args) > 0 {
			receiver = args[0]
			callArgs = args[1:]
		}
		method := target
		if i := strings.LastIndex(method, "::"); i >= 0 {
			method = method[i+2:]
		}
		return fmt.Sprintf("%s.%s(%s)", receiver, method, strings.Join(callArgs, ", "))
	}
	if strings.HasSuffix(target, "!") {
		return fmt.Sprintf("%s(%s)", target, strings.Join(args, ", "))
	}
	return fmt.Sprintf("%s(%s)", target, strings.Join(args, ", "))
}
