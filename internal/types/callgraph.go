package types

import "github.com/pyrs-lang/pyrs/internal/hir"

// CallGraph maps a function name to the set of function names it calls
// directly, built by a single walk over each function body.
type CallGraph struct {
	edges map[string]map[string]bool
	funcs map[string]*hir.Function
	order []string
}

// BuildCallGraph walks every top-level function and method in mod,
// recording direct call edges by callee name (spec.md §4.3(b): "Build a
// call graph over the module").
func BuildCallGraph(mod *hir.Module) *CallGraph {
	g := &CallGraph{edges: make(map[string]map[string]bool), funcs: make(map[string]*hir.Function)}
	add := func(fn *hir.Function) {
		g.funcs[fn.Name] = fn
		g.order = append(g.order, fn.Name)
		g.edges[fn.Name] = make(map[string]bool)
	}
	for _, fn := range mod.Functions {
		add(fn)
	}
	for _, cls := range mod.Classes {
		for _, m := range cls.Methods {
			add(m)
		}
	}
	for name, fn := range g.funcs {
		walkCalls(fn.Body, g.edges[name])
	}
	return g
}

func walkCalls(body []hir.Stmt, out map[string]bool) {
	var visitExpr func(hir.Expr)
	visitExpr = func(e hir.Expr) {
		if e == nil {
			return
		}
		if call, ok := e.(*hir.Call); ok {
			if id, ok := call.Func.(*hir.Ident); ok {
				out[id.Name] = true
			}
			for _, a := range call.Args {
				visitExpr(a)
			}
			for _, kw := range call.Keywords {
				visitExpr(kw.Value)
			}
			visitExpr(call.StarArgs)
			return
		}
		switch ex := e.(type) {
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
		case *hir.ContainerLit:
			for _, el := range ex.Elems {
				visitExpr(el)
			}
			for _, entry := range ex.Entries {
				visitExpr(entry.Key)
				visitExpr(entry.Value)
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
			visitExpr(ex.Value)
		case *hir.Starred:
			visitExpr(ex.Value)
		}
	}
	var visitStmt func(hir.Stmt)
	visitStmt = func(s hir.Stmt) {
		switch st := s.(type) {
		case *hir.Assign:
			visitExpr(st.Value)
		case *hir.AugAssign:
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
		case *hir.For:
			visitExpr(st.Iter)
			for _, b := range st.Body {
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
			for _, b := range st.Finally {
				visitStmt(b)
			}
		case *hir.Return:
			visitExpr(st.Value)
		case *hir.ExprStmt:
			visitExpr(st.Value)
		}
	}
	for _, s := range body {
		visitStmt(s)
	}
}

// SCCs returns the call graph's strongly connected components in reverse
// topological order (callees before callers), via Tarjan's algorithm —
// required because a call graph can be cyclic through recursion, unlike
// the module-import graph internal/link/topo.go assumes acyclic (SPEC_FULL
// §7).
func (g *CallGraph) SCCs() [][]string {
	index := 0
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	var result [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for w := range g.edges[v] {
			if _, ok := g.funcs[w]; !ok {
				continue // external/unknown callee, not part of this module's graph
			}
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			result = append(result, comp)
		}
	}

	for _, name := range g.order {
		if _, seen := indices[name]; !seen {
			strongconnect(name)
		}
	}
	return result
}
