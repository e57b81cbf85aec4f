package diag

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReportWrapAndAsReport(t *testing.T) {
	r := New(TypUnifyConflict, PhaseType, "cannot unify int and str", &Span{File: "a.py", Line: 3, Column: 5})
	err := Wrap(r)
	require.Error(t, err)

	got, ok := AsReport(err)
	require.True(t, ok)
	require.Equal(t, r, got)

	wrapped := errors.New("context: " + err.Error())
	_, ok = AsReport(wrapped)
	require.False(t, ok)
}

func TestReportToJSONDeterministic(t *testing.T) {
	r := New(MapMissingSymbol, PhaseMapping, "no mapping for itertools.chain", nil).
		WithData(map[string]any{"module": "itertools", "symbol": "chain"}).
		WithFix("add a user override entry", 0.5)

	first, err := r.ToJSON(true)
	require.NoError(t, err)
	second, err := r.ToJSON(true)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Contains(t, first, `"schema":"pyrs.diag/v1"`)
}

func TestCodeKind(t *testing.T) {
	require.Equal(t, "parse-failure", ParFailure.Kind())
	require.Equal(t, "unsupported-construct", LowUnsupportedConstruct.Kind())
	require.Equal(t, "type-conflict", TypOccursCheck.Kind())
	require.Equal(t, "ownership-conflict", OwnUseAfterMove.Kind())
	require.Equal(t, "missing-mapping", MapMissingSymbol.Kind())
	require.Equal(t, "emission-stub", GenEmissionStub.Kind())
}

func TestListAddPreservesOrder(t *testing.T) {
	var l List
	l = l.Add(New(ParFailure, PhaseParse, "bad token", nil))
	l = l.Add(New(LowUnsupportedConstruct, PhaseLower, "exec() unsupported", nil))
	require.True(t, l.HasErrors())
	require.Len(t, l, 2)
	require.Equal(t, ParFailure, l[0].Code)
	require.Equal(t, LowUnsupportedConstruct, l[1].Code)
}
