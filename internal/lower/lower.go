// Package lower implements C2's second half: translating internal/ast
// (the Python surface syntax) into internal/hir (the typed-ground-truth
// tree C3 onward operates on). It is grounded on the teacher's
// internal/elaborate package's shape — a single-pass, mutually recursive
// tree-to-tree translator that resolves surface sugar (comprehensions,
// chained comparisons, walrus, f-strings) into a smaller core form, here
// producing HIR rather than AILANG's ANF core.
package lower

import (
	"strings"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
	"github.com/pyrs-lang/pyrs/internal/sid"
)

// Lowerer holds the per-file state needed while translating one ast.File:
// a SID source for fresh node identity and the accumulated diagnostics
// for unsupported constructs (spec.md §7).
type Lowerer struct {
	sids        *sid.Source
	diags       diag.List
	tvarCounter int
}

// New creates a Lowerer.
func New() *Lowerer { return &Lowerer{sids: sid.NewSource()} }

// Diagnostics returns every diagnostic recorded so far.
func (l *Lowerer) Diagnostics() diag.List { return l.diags }

func (l *Lowerer) node(p ast.Pos) hir.Node {
	return hir.Node{NodeID: l.sids.Next(), Span: toSpan(p)}
}

func (l *Lowerer) synthetic() hir.Node {
	return hir.Node{NodeID: l.sids.Next(), Synthetic: true}
}

func toSpan(p ast.Pos) diag.Span {
	return diag.Span{File: p.File, Line: p.Line, Column: p.Column}
}

func (l *Lowerer) unsupported(p ast.Pos, what string) {
	l.diags = l.diags.Add(diag.New(diag.LowUnsupportedConstruct, diag.PhaseLower,
		"unsupported construct: "+what, &diag.Span{File: p.File, Line: p.Line, Column: p.Column}))
}

// LowerFile translates a whole ast.File into an hir.Module (spec.md §6:
// "Files are translated atomically").
func LowerFile(file *ast.File) (*hir.Module, diag.List) {
	l := New()
	mod := &hir.Module{
		Node: l.node(file.Pos),
		Path: file.Path,
	}
	for _, s := range file.Body {
		l.lowerModuleStmt(mod, s)
	}
	return mod, l.diags
}

// lowerModuleStmt dispatches a top-level statement into the Module's
// Imports/Aliases/Constants/Classes/Functions buckets. There is no
// module init body: a bare top-level expression is dropped, and any
// other statement kind is reported as unsupported.
func (l *Lowerer) lowerModuleStmt(mod *hir.Module, s ast.Stmt) {
	switch st := s.(type) {
	case *ast.Import:
		mod.Imports = append(mod.Imports, l.lowerImport(st))
	case *ast.FuncDecl:
		mod.Functions = append(mod.Functions, l.lowerFuncDecl(st, hir.ReceiverNone))
	case *ast.ClassDecl:
		mod.Classes = append(mod.Classes, l.lowerClassDecl(st))
	case *ast.Assign:
		if len(st.Targets) == 1 {
			if name, ok := st.Targets[0].(*ast.Name); ok {
				mod.Constants = append(mod.Constants, &hir.Const{
					Node: l.node(st.Pos), Name: name.Value, Value: l.lowerExpr(st.Value),
				})
				return
			}
		}
		l.unsupported(st.Pos, "module-level destructuring assignment")
	case *ast.AnnAssign:
		if name, ok := st.Target.(*ast.Name); ok {
			mod.Aliases = append(mod.Aliases, &hir.TypeAlias{
				Node: l.node(st.Pos), Name: name.Value, Type: l.lowerType(st.Type),
			})
		}
	case *ast.ExprStmt:
		// Bare module-level expressions (docstrings, etc.) carry no
		// translation target; dropped silently, matching spec.md §4.2's
		// treatment of docstrings as metadata, not executable code.
	default:
		l.unsupported(s.Position(), "top-level statement kind")
	}
}

func (l *Lowerer) lowerImport(im *ast.Import) *hir.Import {
	alias := ""
	for _, a := range im.Aliases {
		alias = a
		break
	}
	return &hir.Import{
		Node:   l.node(im.Pos),
		Module: im.Module,
		Names:  append([]string{}, im.Names...),
		Alias:  alias,
	}
}

// isDunder reports whether name is a Python dunder method (spec.md §4.2:
// "dunder methods beyond a small supported set are filtered, not
// translated"), excluding the handful C6 knows how to special-case.
func isDunder(name string) bool {
	if !strings.HasPrefix(name, "__") || !strings.HasSuffix(name, "__") {
		return false
	}
	switch name {
	case "__init__", "__repr__", "__eq__", "__hash__", "__len__":
		return false
	}
	return true
}
