package dtree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyrs-lang/pyrs/internal/hir"
)

func litPattern(kind hir.LitKind, v string) *hir.LiteralPattern {
	return &hir.LiteralPattern{Value: &hir.Literal{Kind: kind, Value: v}}
}

func TestCompileSwitchesOnLiteralColumn(t *testing.T) {
	cases := []hir.MatchCase{
		{Pattern: litPattern(hir.LitInt, "0"), Body: []hir.Stmt{&hir.Pass{}}},
		{Pattern: litPattern(hir.LitInt, "1"), Body: []hir.Stmt{&hir.Pass{}}},
		{Pattern: &hir.WildcardPattern{}, Body: []hir.Stmt{&hir.Pass{}}},
	}
	tree := NewCompiler(cases).Compile()
	sw, ok := tree.(*SwitchNode)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	require.NotNil(t, sw.Default)
	require.True(t, IsExhaustive(tree))
}

func TestCompileNonExhaustiveHasFailNode(t *testing.T) {
	cases := []hir.MatchCase{
		{Pattern: litPattern(hir.LitInt, "0"), Body: []hir.Stmt{&hir.Pass{}}},
	}
	tree := NewCompiler(cases).Compile()
	require.False(t, IsExhaustive(tree))
}

func TestOrPatternFlattensToSameArm(t *testing.T) {
	cases := []hir.MatchCase{
		{
			Pattern: &hir.OrPattern{Alternatives: []hir.Pattern{
				litPattern(hir.LitInt, "0"),
				litPattern(hir.LitInt, "1"),
			}},
			Body: []hir.Stmt{&hir.Pass{}},
		},
		{Pattern: &hir.WildcardPattern{}, Body: []hir.Stmt{&hir.Pass{}}},
	}
	tree := NewCompiler(cases).Compile()
	sw, ok := tree.(*SwitchNode)
	require.True(t, ok)
	require.Len(t, sw.Cases, 2)
	for _, sub := range sw.Cases {
		leaf, ok := sub.(*LeafNode)
		require.True(t, ok)
		require.Equal(t, 0, leaf.ArmIndex)
	}
}

func TestClassPatternSpecializesPositionalFields(t *testing.T) {
	cases := []hir.MatchCase{
		{
			Pattern: &hir.ClassPattern{
				ClassName:  "Point",
				Positional: []hir.Pattern{litPattern(hir.LitInt, "0"), &hir.WildcardPattern{}},
			},
			Body: []hir.Stmt{&hir.Pass{}},
		},
		{Pattern: &hir.WildcardPattern{}, Body: []hir.Stmt{&hir.Pass{}}},
	}
	tree := NewCompiler(cases).Compile()
	sw, ok := tree.(*SwitchNode)
	require.True(t, ok)
	require.Contains(t, sw.Cases, "ctor:Point")
}
