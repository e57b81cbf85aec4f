// Package codegen implements C6: HIR→Rust emission (spec.md §4.6).
// Grounded on the teacher's internal/eval/eval_evaluator.go structural-
// recursion dispatch — one switch arm per Core node kind driving a single
// Eval entry point — retargeted here from *evaluating* HIR to *emitting*
// Rust text, and on internal/dtree's decision-tree compiler, used here to
// check match exhaustiveness (SPEC_FULL §10).
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
	"github.com/pyrs-lang/pyrs/internal/rustlib"
)

// Emitter holds the state accumulated while emitting one hir.Module:
// collected diagnostics, the deduplicated import set, and a counter for
// naming synthetic generator-state types.
type Emitter struct {
	registry *rustlib.Registry
	diags    diag.List

	imports   map[string]bool // UseStmt text -> seen; importOrd keeps first-seen order
	importOrd []string

	genCounter  int
	usesDynamic bool
}

// NewEmitter creates an Emitter that resolves external symbols through
// reg (C5).
func NewEmitter(reg *rustlib.Registry) *Emitter {
	return &Emitter{registry: reg, imports: make(map[string]bool)}
}

// Diagnostics returns every diagnostic accumulated while emitting.
func (e *Emitter) Diagnostics() diag.List { return e.diags }

func (e *Emitter) addImport(useStmt string) {
	if useStmt == "" || e.imports[useStmt] {
		return
	}
	e.imports[useStmt] = true
	e.importOrd = append(e.importOrd, useStmt)
}

func (e *Emitter) report(code diag.Code, phase, msg string, span *diag.Span) {
	e.diags = e.diags.Add(diag.New(code, phase, msg, span))
}

// EmitModule is C6's top-level entry: structural recursion over mod
// produces a complete Rust source string, consulting the ownership
// table (already recorded on each hir.Param/hir.Function by C4) and the
// module-mapping registry (C5). Imports are synthesized, deduplicated,
// and unused ones dropped (spec.md §4.6) before the post-emission
// text-fix pipeline runs to a fixed point (spec.md §8: idempotence).
func EmitModule(mod *hir.Module, reg *rustlib.Registry) (string, diag.List) {
	e := NewEmitter(reg)

	assignErrorUnions(mod)

	var body strings.Builder

	errVariants := collectErrorVariants(mod)
	e.emitErrorEnum(&body, errVariants)

	for _, c := range mod.Constants {
		e.emitConst(&body, c)
	}
	for _, al := range mod.Aliases {
		fmt.Fprintf(&body, "pub type %s = %s;\n\n", al.Name, e.rustType(al.Type))
	}
	for _, cls := range mod.Classes {
		e.emitClass(&body, cls)
	}
	for _, fn := range mod.Functions {
		e.emitFunction(&body, fn, 0)
	}

	bodyText := body.String()
	usedImports := e.dedupAndPruneImports(bodyText)

	var out strings.Builder
	for _, im := range usedImports {
		out.WriteString(im)
		out.WriteByte('\n')
	}
	if len(usedImports) > 0 {
		out.WriteByte('\n')
	}
	if e.usesDynamic {
		out.WriteString(dynSentinelPrelude)
		out.WriteByte('\n')
	}
	out.WriteString(bodyText)

	final := RunTextFixes(out.String())
	return final, e.diags
}

// dedupAndPruneImports returns e.importOrd sorted alphabetically, dropping
// any `use` line whose bound symbol never textually appears in body
// (spec.md §4.6: "a post-pass removes unused imports").
func (e *Emitter) dedupAndPruneImports(body string) []string {
	out := make([]string, 0, len(e.importOrd))
	for _, im := range e.importOrd {
		sym := lastSegment(im)
		if sym == "" || strings.Contains(body, sym) {
			out = append(out, im)
		}
	}
	sort.Strings(out) // deterministic ordering independent of traversal order (spec.md §8: determinism)
	return out
}

// lastSegment extracts the bound identifier from a `use a::b::C;` line
// so dedupAndPruneImports can check it actually appears in the body.
func lastSegment(useStmt string) string {
	s := strings.TrimSuffix(strings.TrimSpace(useStmt), ";")
	s = strings.TrimPrefix(s, "use ")
	if i := strings.LastIndex(s, "::"); i >= 0 {
		s = s[i+2:]
	}
	return strings.TrimSpace(s)
}

func indent(n int) string { return strings.Repeat("    ", n) }

func (e *Emitter) emitConst(out *strings.Builder, c *hir.Const) {
	fmt.Fprintf(out, "pub const %s: %s = %s;\n\n", strings.ToUpper(c.Name), e.rustType(c.Type), e.emitExpr(c.Value))
}
