package codegen

import "github.com/pyrs-lang/pyrs/internal/hir"

// dynSentinelType is the concrete Rust type name standing in for
// hir.TDynamic at emission time: a tagged, runtime-dispatched late-bound
// value container (spec.md §9: "Dynamic sentinel ... operations over it
// compile to a tagged value with runtime dispatch"). hir.TDynamic.String()
// returns the internal placeholder "Dyn"; emission renders it as this
// generated support type instead.
const dynSentinelType = "PyDynamic"

// dynSentinelPrelude is the generated runtime support type backing
// dynSentinelType, emitted once per file the first time inference backs
// off to the dynamic sentinel (spec.md §9: "its density per function is
// a measurable output" — the type itself stays a single tagged enum so
// that density stays visible as call sites on one concrete type, not
// scattered ad hoc unions).
const dynSentinelPrelude = `#[derive(Debug, Clone)]
pub enum PyDynamic {
    Int(i64),
    Float(f64),
    Bool(bool),
    Str(String),
    None,
    List(Vec<PyDynamic>),
}
`

// rustType renders t as Rust source syntax. Every variant but TDynamic
// already formats correctly via hir.Type.String(); TDynamic alone needs
// substituting its internal placeholder for the generated runtime type.
func (e *Emitter) rustType(t hir.Type) string {
	if t == nil {
		return "()"
	}
	if _, ok := t.(*hir.TDynamic); ok {
		e.usesDynamic = true
		return dynSentinelType
	}
	if nom, ok := t.(*hir.TNominal); ok && containsDynamic(nom.Args) {
		e.usesDynamic = true
	}
	return t.String()
}

func containsDynamic(ts []hir.Type) bool {
	for _, t := range ts {
		if _, ok := t.(*hir.TDynamic); ok {
			return true
		}
	}
	return false
}

// paramType renders a parameter's type honoring the borrow strategy C4
// assigned (spec.md §4.4): owned/copy pass the bare type, shared/
// exclusive wrap it in a reference with the assigned lifetime slot.
func (e *Emitter) paramType(p *hir.Param) string {
	base := e.rustType(p.Type)
	switch p.Borrow {
	case hir.BorrowShared:
		return refType(base, p.Lifetime, false)
	case hir.BorrowExclusive:
		return refType(base, p.Lifetime, true)
	default:
		return base
	}
}

func refType(base, lifetime string, mut bool) string {
	lt := lifetime
	if lt != "" {
		lt += " "
	}
	if mut {
		return "&" + lt + "mut " + base
	}
	return "&" + lt + base
}

// lifetimeParams collects the distinct lifetime slots used across fn's
// parameters and return type, in first-seen order, for the generic
// parameter list on the emitted function signature.
func lifetimeParams(fn *hir.Function) []string {
	seen := map[string]bool{}
	var out []string
	add := func(lt string) {
		if lt != "" && !seen[lt] {
			seen[lt] = true
			out = append(out, lt)
		}
	}
	for _, p := range fn.Params {
		add(p.Lifetime)
	}
	if ref, ok := fn.ReturnType.(*hir.TRef); ok {
		add(ref.Lifetime)
	}
	return out
}
