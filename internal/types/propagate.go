package types

import "github.com/pyrs-lang/pyrs/internal/hir"

// MaxPropagationIterations caps the inter-procedural fixed-point loop
// (spec.md §4.3(b): "iterating until fixed point or an iteration cap").
const MaxPropagationIterations = 16

// Propagate runs spec.md §4.3(b)'s inter-procedural propagation:
// argument types observed at call sites are widened into parameter
// types, and a function's collected return-type observations are widened
// into its declared return type, iterating over the call graph's SCCs
// (callees before callers, so a single pass already sees its callees'
// latest types) until nothing changes or the iteration cap is hit.
func Propagate(mod *hir.Module, g *CallGraph) {
	sccs := g.SCCs()
	for iter := 0; iter < MaxPropagationIterations; iter++ {
		changed := false
		for _, comp := range sccs {
			for _, name := range comp {
				fn := g.funcs[name]
				if fn == nil {
					continue
				}
				if propagateCallSites(fn, g) {
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}
}

// propagateCallSites scans fn's body for calls to known functions and
// widens the callee's parameter types with the argument types observed
// here, and widens fn's own return type with every Return it contains.
// Returns true if any type changed.
func propagateCallSites(fn *hir.Function, g *CallGraph) bool {
	changed := false
	var visit func(hir.Stmt)
	var visitExpr func(hir.Expr)
	visitExpr = func(e hir.Expr) {
		call, ok := e.(*hir.Call)
		if !ok {
			return
		}
		id, ok := call.Func.(*hir.Ident)
		if ok {
			if callee := g.funcs[id.Name]; callee != nil {
				for i, arg := range call.Args {
					if i >= len(callee.Params) {
						break
					}
					if widenInto(&callee.Params[i].Type, arg.TypeOf()) {
						changed = true
					}
				}
			}
		}
	}
	visit = func(s hir.Stmt) {
		switch st := s.(type) {
		case *hir.Return:
			if st.Value != nil {
				visitExpr(st.Value)
				if widenInto(&fn.ReturnType, st.Value.TypeOf()) {
					changed = true
				}
			}
		case *hir.Assign:
			visitExpr(st.Value)
		case *hir.ExprStmt:
			visitExpr(st.Value)
		case *hir.If:
			for _, b := range st.Body {
				visit(b)
			}
			for _, b := range st.Else {
				visit(b)
			}
		case *hir.While:
			for _, b := range st.Body {
				visit(b)
			}
		case *hir.For:
			for _, b := range st.Body {
				visit(b)
			}
		case *hir.Try:
			for _, b := range st.Body {
				visit(b)
			}
			for _, h := range st.Handlers {
				for _, b := range h.Body {
					visit(b)
				}
			}
		}
	}
	for _, s := range fn.Body {
		visit(s)
	}
	return changed
}

// widenInto merges observed into *slot, widening to a sum type (closed
// union) when two or three distinct branches have been seen, and to the
// dynamic sentinel beyond that (spec.md §4.3(b)). Returns true if *slot
// changed.
func widenInto(slot *hir.Type, observed hir.Type) bool {
	if observed == nil {
		return false
	}
	if *slot == nil {
		*slot = observed
		return true
	}
	if hir.Equal(*slot, observed) {
		return false
	}
	if _, isDyn := (*slot).(*hir.TDynamic); isDyn {
		return false
	}
	variants := collectVariants(*slot)
	if !containsType(variants, observed) {
		variants = append(variants, observed)
	}
	if len(variants) <= 3 {
		sum := &hir.SumType{Name: "Widened", Variants: make([]hir.SumVariant, len(variants))}
		for i, v := range variants {
			sum.Variants[i] = hir.SumVariant{Name: variantName(i), Fields: []hir.Type{v}}
		}
		*slot = sum
		return true
	}
	*slot = &hir.TDynamic{}
	return true
}

func collectVariants(t hir.Type) []hir.Type {
	if sum, ok := t.(*hir.SumType); ok && sum.Name == "Widened" {
		out := make([]hir.Type, len(sum.Variants))
		for i, v := range sum.Variants {
			if len(v.Fields) == 1 {
				out[i] = v.Fields[0]
			}
		}
		return out
	}
	return []hir.Type{t}
}

func containsType(types []hir.Type, t hir.Type) bool {
	for _, existing := range types {
		if hir.Equal(existing, t) {
			return true
		}
	}
	return false
}

func variantName(i int) string {
	names := []string{"A", "B", "C", "D"}
	if i < len(names) {
		return names[i]
	}
	return "X"
}
