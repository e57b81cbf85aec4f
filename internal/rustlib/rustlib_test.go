package rustlib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCoreLookupMathSqrt is spec.md §8 scenario 6: math.sqrt maps to a
// registered Rust mapping.
func TestCoreLookupMathSqrt(t *testing.T) {
	r := NewRegistry()
	m, ok := r.Lookup("math", "sqrt")
	require.True(t, ok)
	require.Equal(t, "f64::sqrt", m.Path)
	require.True(t, m.AsMethod)
}

// TestLibraryMappingPriority is spec.md §8's "Library-mapping priority"
// property: a user override for the same module.symbol always wins over
// an extension entry, which always wins over core, regardless of the
// order tiers were registered in.
func TestLibraryMappingPriority(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(TierExtension, Mapping{Module: "math", Symbol: "sqrt", Path: "my_crate::sqrt"}))
	m, ok := r.Lookup("math", "sqrt")
	require.True(t, ok)
	require.Equal(t, "my_crate::sqrt", m.Path, "extension tier must beat core")

	require.NoError(t, r.Register(TierUser, Mapping{Module: "math", Symbol: "sqrt", Path: "user_override::sqrt"}))
	m, ok = r.Lookup("math", "sqrt")
	require.True(t, ok)
	require.Equal(t, "user_override::sqrt", m.Path, "user tier must beat extension")
}

func TestRegisterAfterFreezeFails(t *testing.T) {
	r := NewRegistry()
	r.Freeze()
	err := r.Register(TierUser, Mapping{Module: "x", Symbol: "y", Path: "z"})
	require.Error(t, err)
}

func TestResolveMissingSymbolReturnsStubAndDiagnostic(t *testing.T) {
	r := NewRegistry()
	m, report := Resolve(r, "itertools", "chain", nil)
	require.True(t, m.Stub)
	require.NotNil(t, report)
	require.Equal(t, "missing-mapping", report.Code.Kind())
}

func TestResolveHitReturnsNoDiagnostic(t *testing.T) {
	r := NewRegistry()
	_, report := Resolve(r, "math", "sqrt", nil)
	require.Nil(t, report)
}

func TestParseYAMLRoundTrips(t *testing.T) {
	data := []byte(`
mappings:
  - module: itertools
    symbol: chain
    path: std::iter::Iterator::chain
    as_method: true
`)
	ms, err := ParseYAML(data)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, "itertools", ms[0].Module)
	require.True(t, ms[0].AsMethod)
}
