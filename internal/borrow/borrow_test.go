package borrow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

func i64() *hir.TPrimitive { return &hir.TPrimitive{Kind: hir.PrimInt, Width: hir.Width64} }

func strSeq() *hir.TSeq {
	return &hir.TSeq{Kind: hir.SeqVec, Elem: &hir.TText{Mode: hir.TextOwned}}
}

// TestAddBothParamsAreCopy is spec.md §8 scenario 1: add(a, b) where both
// parameters are scalar ints classifies both as copy.
func TestAddBothParamsAreCopy(t *testing.T) {
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
	a := NewAnalyzer()
	a.AnalyzeFunction(fn)

	require.Equal(t, hir.BorrowCopy, fn.Params[0].Borrow)
	require.Equal(t, hir.BorrowCopy, fn.Params[1].Borrow)
}

// TestPushMutatesExclusiveXOwnsValue is spec.md §8 scenario 2: push(xs, x)
// where xs.append(x) classifies xs as exclusive-borrow and x as owned:
// x is passed as a bare argument to append, which the escape analysis
// treats as escaping, so it becomes owned whatever its type.
func TestPushMutatesExclusiveXOwnsValue(t *testing.T) {
	fn := &hir.Function{
		Name: "push",
		Params: []*hir.Param{
			{Name: "xs", Type: strSeq()},
			{Name: "x", Type: &hir.TText{Mode: hir.TextOwned}},
		},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: &hir.Call{
				Func: &hir.Attribute{Value: &hir.Ident{Name: "xs"}, Attr: "append"},
				Args: []hir.Expr{&hir.Ident{Name: "x"}},
			}},
		},
	}
	a := NewAnalyzer()
	a.AnalyzeFunction(fn)

	require.Equal(t, hir.BorrowExclusive, fn.Params[0].Borrow, "xs is mutated via append and never escapes")
	require.Equal(t, hir.BorrowOwned, fn.Params[1].Borrow, "x is passed as a bare argument to append, conservatively treated as escaping")
}

// TestFirstReadsSharedBorrow is spec.md §8 scenario 3: first(xs) which only
// reads xs (e.g. via indexing) classifies xs as shared-borrow.
func TestFirstReadsSharedBorrow(t *testing.T) {
	fn := &hir.Function{
		Name: "first",
		Params: []*hir.Param{
			{Name: "xs", Type: strSeq()},
		},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Value: &hir.Ident{Name: "xs"}, Index: &hir.Literal{Kind: hir.LitInt, Value: "0"}}},
		},
	}
	a := NewAnalyzer()
	a.AnalyzeFunction(fn)

	require.Equal(t, hir.BorrowShared, fn.Params[0].Borrow)
}

// TestOwnershipWellFormedness is spec.md §8's "Ownership well-formedness"
// property: every parameter ends up with exactly one of the four resolved
// borrow strategies, never BorrowUnresolved.
func TestOwnershipWellFormedness(t *testing.T) {
	fn := &hir.Function{
		Name: "mix",
		Params: []*hir.Param{
			{Name: "a", Type: i64()},
			{Name: "xs", Type: strSeq()},
			{Name: "s", Type: &hir.TText{Mode: hir.TextOwned}},
		},
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Ident{Name: "a"}},
		},
	}
	a := NewAnalyzer()
	a.AnalyzeFunction(fn)

	for _, p := range fn.Params {
		require.NotEqual(t, hir.BorrowUnresolved, p.Borrow, "param %s must be classified", p.Name)
	}
}

// TestLifetimeElisionSingleBorrowedInputAndOutput covers spec.md §4.4's
// elision rule: one borrowed parameter plus a borrowed return type share a
// single lifetime slot.
func TestLifetimeElisionSingleBorrowedInputAndOutput(t *testing.T) {
	refType := &hir.TRef{Of: &hir.TText{Mode: hir.TextBorrowed}}
	fn := &hir.Function{
		Name: "first",
		Params: []*hir.Param{
			{Name: "xs", Type: strSeq()},
		},
		ReturnType: refType,
		Body: []hir.Stmt{
			&hir.Return{Value: &hir.Index{Value: &hir.Ident{Name: "xs"}, Index: &hir.Literal{Kind: hir.LitInt, Value: "0"}}},
		},
	}
	a := NewAnalyzer()
	a.AnalyzeFunction(fn)

	require.Equal(t, "'a", fn.Params[0].Lifetime)
	require.Equal(t, "'a", refType.Lifetime)
}

// TestUseAfterMoveInsertsClone exercises the use-after-move pass: an owned
// parameter passed by value to one call and then read again in a later
// statement gets an explicit .clone() inserted at the earlier move site.
func TestUseAfterMoveInsertsClone(t *testing.T) {
	moveCall := &hir.Call{
		Func: &hir.Ident{Name: "consume"},
		Args: []hir.Expr{&hir.Ident{Name: "s"}},
	}
	fn := &hir.Function{
		Name: "roundtrip",
		Params: []*hir.Param{
			{Name: "s", Type: &hir.TText{Mode: hir.TextOwned}},
		},
		Body: []hir.Stmt{
			&hir.ExprStmt{Value: moveCall},
			&hir.Return{Value: &hir.Ident{Name: "s"}},
		},
	}
	a := NewAnalyzer()
	// Force s to classify as owned so the use-after-move pass has a
	// candidate: mark it escaping via a Return of the bare identifier.
	a.AnalyzeFunction(fn)

	require.Equal(t, hir.BorrowOwned, fn.Params[0].Borrow)
	clonedArg, ok := moveCall.Args[0].(*hir.Call)
	require.True(t, ok, "the moved argument should be rewritten to an explicit clone call")
	attr, ok := clonedArg.Func.(*hir.Attribute)
	require.True(t, ok)
	require.Equal(t, "clone", attr.Attr)
	require.NotEmpty(t, a.Diagnostics())
}
