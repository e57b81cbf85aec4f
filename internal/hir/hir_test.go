package hir

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrs-lang/pyrs/internal/diag"
	"github.com/pyrs-lang/pyrs/internal/sid"
)

func TestTypeStringRendering(t *testing.T) {
	i64 := &TPrimitive{Kind: PrimInt, Width: Width64}
	require.Equal(t, "i64", i64.String())

	u32 := &TPrimitive{Kind: PrimInt, Width: Width32, Unsigned: true}
	require.Equal(t, "u32", u32.String())

	vec := &TSeq{Kind: SeqVec, Elem: i64}
	require.Equal(t, "Vec<i64>", vec.String())

	opt := &TOption{Elem: vec}
	require.Equal(t, "Option<Vec<i64>>", opt.String())

	ref := &TRef{Of: vec, Lifetime: "'a", Mut: true}
	require.Equal(t, "&'a mut Vec<i64>", ref.String())

	sum := &SumType{Name: "AddError", Variants: []SumVariant{
		{Name: "Overflow"},
		{Name: "Mismatch", Fields: []Type{&TText{Mode: TextOwned}}},
	}}
	require.Contains(t, sum.String(), "Overflow")
	require.Contains(t, sum.String(), "Mismatch(String)")
}

func TestIsCopyClass(t *testing.T) {
	require.True(t, IsCopyClass(&TPrimitive{Kind: PrimInt, Width: Width64}))
	require.False(t, IsCopyClass(&TSeq{Kind: SeqVec, Elem: &TPrimitive{Kind: PrimInt}}))
	require.True(t, IsCopyClass(&TRef{Of: &TSeq{}}))
}

func TestEqualUsesStructuralComparison(t *testing.T) {
	a := &TPrimitive{Kind: PrimInt, Width: Width64}
	b := &TPrimitive{Kind: PrimInt, Width: Width64}
	require.True(t, Equal(a, b))
	require.False(t, Equal(a, &TPrimitive{Kind: PrimInt, Width: Width32}))
}

func TestExprNodesCarryTypeAndPosition(t *testing.T) {
	src := sid.NewSource()
	n := Node{NodeID: src.Next(), Span: diag.Span{File: "a.py", Line: 1, Column: 1}}

	lit := &Literal{Node: n, Kind: LitInt, Value: "1"}
	require.Nil(t, lit.TypeOf())
	lit.SetType(&TPrimitive{Kind: PrimInt, Width: Width64})
	require.Equal(t, "i64", lit.TypeOf().String())
	require.True(t, lit.ID().Valid())
	require.Equal(t, "a.py:1:1", lit.Position().String())

	var e Expr = lit
	_, ok := e.(*Literal)
	require.True(t, ok)
}

func TestStmtAndPatternVariantsImplementSealedInterfaces(t *testing.T) {
	var stmts []Stmt = []Stmt{
		&Assign{}, &AugAssign{}, &If{}, &While{}, &For{}, &Try{}, &With{},
		&Raise{}, &Return{}, &Break{}, &Continue{}, &Pass{}, &ImportStmt{},
		&FuncDeclStmt{}, &ClassDeclStmt{}, &GlobalDecl{}, &NonlocalDecl{},
		&ExprStmt{}, &Match{},
	}
	require.Len(t, stmts, 19)

	var patterns []Pattern = []Pattern{
		&WildcardPattern{}, &LiteralPattern{}, &SequencePattern{},
		&MappingPattern{}, &ClassPattern{}, &OrPattern{}, &BindPattern{},
	}
	require.Len(t, patterns, 7)
}

func TestModuleConstruction(t *testing.T) {
	fn := &Function{
		Name: "add",
		Params: []*Param{
			{Name: "a", Type: &TPrimitive{Kind: PrimInt, Width: Width64}},
			{Name: "b", Type: &TPrimitive{Kind: PrimInt, Width: Width64}},
		},
		ReturnType: &TPrimitive{Kind: PrimInt, Width: Width64},
		Body: []Stmt{
			&Return{Value: &BinOp{Op: "+", Left: &Ident{Name: "a"}, Right: &Ident{Name: "b"}}},
		},
	}
	mod := &Module{Path: "add.py", Functions: []*Function{fn}}
	require.Len(t, mod.Functions, 1)
	require.Equal(t, "add", mod.Functions[0].Name)
	ret, ok := mod.Functions[0].Body[0].(*Return)
	require.True(t, ok)
	bin, ok := ret.Value.(*BinOp)
	require.True(t, ok)
	require.Equal(t, "+", bin.Op)
}
