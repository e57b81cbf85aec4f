package types

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/hir"
)

func i64() *hir.TPrimitive { return &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64} }

func TestUnifyPrimitivesEqual(t *testing.T) {
	u := NewUnifier()
	sub, err := u.Unify(i64(), i64(), Substitution{})
	require.NoError(t, err)
	require.NotNil(t, sub)
}

func TestUnifyVarBindsSubstitution(t *testing.T) {
	u := NewUnifier()
	v := &hir.TVar{Name: "a"}
	sub, err := u.Unify(v, i64(), Substitution{})
	require.NoError(t, err)
	require.Equal(t, "i64", sub["a"].String())
}

func TestUnifyOccursCheckFails(t *testing.T) {
	u := NewUnifier()
	v := &hir.TVar{Name: "a"}
	seq := &hir.TSeq{Kind: hir.SeqVec, Elem: v}
	_, err := u.Unify(v, seq, Substitution{})
	require.Error(t, err)
}

func TestUnifyFunctionArityMismatch(t *testing.T) {
	u := NewUnifier()
	f1 := &hir.TFunc{Params: []hir.Type{i64()}, Return: i64()}
	f2 := &hir.TFunc{Params: []hir.Type{i64(), i64()}, Return: i64()}
	_, err := u.Unify(f1, f2, Substitution{})
	require.Error(t, err)
}

func TestWidenMixedIntFloat(t *testing.T) {
	w, ok := Widen(i64(), &hir.TPrimitive{Kind: hir.PrimFloat64})
	require.True(t, ok)
	require.Equal(t, "f64", w.String())
}

func TestWidenMixedSignedness(t *testing.T) {
	signed := i64()
	unsigned := &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64, Unsigned: true}
	w, ok := Widen(signed, unsigned)
	require.True(t, ok)
	require.False(t, w.Unsigned)
	require.True(t, NeedsSignCorrection(signed, unsigned))
}

// TestTrueDivResultTypeAlwaysFloat covers spec.md §4.3: Python `/`
// always produces a float, even for two plain ints.
func TestTrueDivResultTypeAlwaysFloat(t *testing.T) {
	got := TrueDivResultType(i64(), i64())
	require.Equal(t, "f64", got.String())
}

func TestResolveTypePriorityLadder(t *testing.T) {
	annotated := i64()
	candidates := []Candidate{
		{Type: &hir.TDynamic{}, Source: SourceDynamic},
		{Type: &hir.TPrimitive{Kind: hir.PrimFloat64}, Source: SourceHeuristic},
		{Type: annotated, Source: SourceAnnotation},
		{Type: &hir.TPrimitive{Kind: hir.PrimBool}, Source: SourceConstraint},
	}
	require.Equal(t, annotated, ResolveType(candidates))
}

func TestResolveTypeEmptyIsDynamic(t *testing.T) {
	got := ResolveType(nil)
	_, ok := got.(*hir.TDynamic)
	require.True(t, ok)
}

func TestCheckFunctionAddSimpleTypesAreInferred(t *testing.T) {
	fn := &hir.Function{
		Name: "add",
		Params: []*hir.Param{
			{Name: "a", Type: i64()},
			{Name: "b", Type: i64()},
		},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.BinOp{Op: "+", Left: &hir.Ident{Name: "a"}, Right: &hir.Ident{Name: "b"}}},
		},
	}
	mod := &hir.Module{Functions: []*hir.Function{fn}}
	c := NewChecker()
	c.CheckModule(mod)
	require.Empty(t, c.Diagnostics())
	require.Equal(t, "i64", fn.ReturnType.String())

	ret := fn.Body[0].(*hir.Return)
	bin := ret.Value.(*hir.BinOp)
	require.Equal(t, "i64", bin.TypeOf().String())
}

// TestCheckFunctionTrueDivWidensToFloat covers spec.md §4.3: `a / b`
// between two ints must infer a float result, not stay int like `+`.
func TestCheckFunctionTrueDivWidensToFloat(t *testing.T) {
	fn := &hir.Function{
		Name: "half",
		Params: []*hir.Param{
			{Name: "a", Type: i64()},
			{Name: "b", Type: i64()},
		},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.BinOp{Op: "/", Left: &hir.Ident{Name: "a"}, Right: &hir.Ident{Name: "b"}}},
		},
	}
	mod := &hir.Module{Functions: []*hir.Function{fn}}
	c := NewChecker()
	c.CheckModule(mod)
	require.Empty(t, c.Diagnostics())
	require.Equal(t, "f64", fn.ReturnType.String())
}

// TestTypeCompleteness is spec.md §8's "Type completeness" property: after
// C3, no expression carries an unresolved type variable.
func TestTypeCompleteness(t *testing.T) {
	fn := &hir.Function{
		Name: "identity",
		Params: []*hir.Param{
			{Name: "x"}, // no annotation: starts as a TVar, never constrained
		},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Ident{Name: "x"}},
		},
	}
	mod := &hir.Module{Functions: []*hir.Function{fn}}
	c := NewChecker()
	c.CheckModule(mod)

	require.NotNil(t, fn.Params[0].Type)
	_, stillVar := fn.Params[0].Type.(*hir.TVar)
	require.False(t, stillVar, "unresolved type variables must degrade to the dynamic sentinel")
}

func TestUnifyConflictEmitsDiagnosticAndDegradesToDynamic(t *testing.T) {
	fn := &hir.Function{
		Name: "bad",
		Params: []*hir.Param{
			{Name: "x", Type: &hir.TText{Mode: hir.TextOwned}},
		},
		ReturnType: i64(),
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Ident{Name: "x"}},
		},
	}
	mod := &hir.Module{Functions: []*hir.Function{fn}}
	c := NewChecker()
	c.CheckModule(mod)

	require.NotEmpty(t, c.Diagnostics())
	require.Equal(t, diag.PhaseType, c.Diagnostics()[0].Phase)
	_, isDynamic := fn.ReturnType.(*hir.TDynamic)
	require.True(t, isDynamic)
}

func TestCallGraphSCCHandlesRecursion(t *testing.T) {
	even := &hir.Function{Name: "is_even", Body: []hir.Stmt{
		&hir.Return{Value: &hir.Call{Func: &hir.Ident{Name: "is_odd"}}},
	}}
	odd := &hir.Function{Name: "is_odd", Body: []hir.Stmt{
		&hir.Return{Value: &hir.Call{Func: &hir.Ident{Name: "is_even"}}},
	}}
	mod := &hir.Module{Functions: []*hir.Function{even, odd}}
	g := BuildCallGraph(mod)
	sccs := g.SCCs()

	found := false
	for _, comp := range sccs {
		if len(comp) == 2 {
			found = true
		}
	}
	require.True(t, found, "mutually recursive functions must land in the same SCC")
}

func TestPropagateWidensParameterFromCallSite(t *testing.T) {
	callee := &hir.Function{
		Name:   "identity",
		Params: []*hir.Param{{Name: "x"}},
		Body:   []hir.Stmt{&hir.Return{Value: &hir.Ident{Name: "x"}}},
	}
	caller := &hir.Function{
		Name: "caller",
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.Call{
				Func: &hir.Ident{Name: "identity"},
				Args: []hir.Expr{&hir.Literal{Kind: hir.LitInt, Value: "1"}},
			}},
		},
	}
	mod := &hir.Module{Functions: []*hir.Function{callee, caller}}
	c := NewChecker()
	c.CheckModule(mod)

	g := BuildCallGraph(mod)
	Propagate(mod, g)
	require.NotNil(t, callee.Params[0].Type)
}
