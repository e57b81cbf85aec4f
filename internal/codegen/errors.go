package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

// assignErrorUnions implements spec.md §4.6's exception-to-result
// lowering at the granularity this emitter needs: every function or
// method whose own body contains a `raise` or declares an `except`
// handler gets its ErrorUnion set to the closed enumeration of exception
// kinds named at its raise sites and handler clauses, so its return type
// can be lifted into Result<T, Error>. Raises are not traced through the
// call graph: a caller of such a function is not lifted.
func assignErrorUnions(mod *hir.Module) {
	for _, fn := range mod.Functions {
		assignErrorUnion(fn)
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			assignErrorUnion(m)
		}
	}
}

func assignErrorUnion(fn *hir.Function) {
	names := map[string]bool{}
	var order []string
	collectExceptionNames(fn.Body, names, &order)
	if len(order) == 0 {
		return
	}
	sort.Strings(order)
	variants := make([]hir.SumVariant, len(order))
	for i, n := range order {
		variants[i] = hir.SumVariant{Name: n, Fields: []hir.Type{&hir.TText{Mode: hir.TextOwned}}}
	}
	fn.ErrorUnion = &hir.SumType{Name: fn.Name + "Error", Variants: variants}
}

// collectExceptionNames walks body (not descending into nested function
// or class definitions, which have their own independent error unions)
// recording every raised exception's variant name and every `except`
// clause's declared type name.
func collectExceptionNames(body []hir.Stmt, seen map[string]bool, order *[]string) {
	add := func(name string) {
		if name == "" {
			return
		}
		if !seen[name] {
			seen[name] = true
			*order = append(*order, name)
		}
	}
	for _, s := range body {
		switch st := s.(type) {
		case *hir.Raise:
			if st.Exc != nil {
				add(raiseVariantName(st.Exc))
			}
		case *hir.If:
			collectExceptionNames(st.Body, seen, order)
			collectExceptionNames(st.Else, seen, order)
		case *hir.While:
			collectExceptionNames(st.Body, seen, order)
			collectExceptionNames(st.Else, seen, order)
		case *hir.For:
			collectExceptionNames(st.Body, seen, order)
			collectExceptionNames(st.Else, seen, order)
		case *hir.With:
			collectExceptionNames(st.Body, seen, order)
		case *hir.Try:
			collectExceptionNames(st.Body, seen, order)
			for _, h := range st.Handlers {
				if h.ExcType != nil {
					if nom, ok := h.ExcType.(*hir.TNominal); ok {
						add(nom.Name)
					}
				}
				collectExceptionNames(h.Body, seen, order)
			}
			collectExceptionNames(st.Else, seen, order)
			collectExceptionNames(st.Finally, seen, order)
		}
	}
}

// collectErrorVariants merges every function's ErrorUnion across mod
// into one closed enumeration (spec.md §4.6: "a closed enumeration of
// raised kinds derived from raise sites and the declared handlers"),
// keyed by variant name so the same exception kind raised in two
// functions becomes one Rust enum variant.
func collectErrorVariants(mod *hir.Module) []hir.SumVariant {
	seen := map[string]hir.SumVariant{}
	var order []string
	add := func(su *hir.SumType) {
		if su == nil {
			return
		}
		for _, v := range su.Variants {
			if _, ok := seen[v.Name]; !ok {
				order = append(order, v.Name)
			}
			seen[v.Name] = v
		}
	}
	for _, fn := range mod.Functions {
		add(fn.ErrorUnion)
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			add(m.ErrorUnion)
		}
	}
	sort.Strings(order)
	out := make([]hir.SumVariant, 0, len(order))
	for _, name := range order {
		out = append(out, seen[name])
	}
	return out
}

// emitErrorEnum emits the closed `Error` sum type backing every
// exception-to-result lowering in the module (spec.md §4.6), plus the
// Display/std::error::Error impls a `?`-propagating Result type needs to
// compile cleanly.
func (e *Emitter) emitErrorEnum(out *strings.Builder, variants []hir.SumVariant) {
	if len(variants) == 0 {
		return
	}
	out.WriteString("#[derive(Debug)]\npub enum Error {\n")
	for _, v := range variants {
		if len(v.Fields) == 0 {
			fmt.Fprintf(out, "    %s,\n", v.Name)
			continue
		}
		fields := make([]string, len(v.Fields))
		for i, f := range v.Fields {
			fields[i] = e.rustType(f)
		}
		fmt.Fprintf(out, "    %s(%s),\n", v.Name, strings.Join(fields, ", "))
	}
	out.WriteString("}\n\n")

	out.WriteString("impl std::fmt::Display for Error {\n")
	out.WriteString("    fn fmt(&self, f: &mut std::fmt::Formatter<'_>) -> std::fmt::Result {\n")
	out.WriteString("        write!(f, \"{:?}\", self)\n")
	out.WriteString("    }\n}\n\n")
	out.WriteString("impl std::error::Error for Error {}\n\n")
}
