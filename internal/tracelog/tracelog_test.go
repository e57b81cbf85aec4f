package tracelog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTracerRecordsTimingsInOrder(t *testing.T) {
	var buf bytes.Buffer
	tr := New(&buf)

	tr.Start("lower")
	tr.End("lower")
	tr.Start("type")
	tr.End("type")

	require.Equal(t, []string{"lower", "type"}, tr.Order())
	require.Contains(t, tr.Timings, "lower")
	require.Contains(t, tr.Timings, "type")
	require.NotEmpty(t, buf.String())
}

func TestTracerSilentWithoutWriter(t *testing.T) {
	tr := New(nil)
	tr.Start("codegen")
	tr.End("codegen")
	require.Len(t, tr.Order(), 1)
}

func TestTracerEndWithoutStartIsNoop(t *testing.T) {
	tr := New(nil)
	tr.End("never-started")
	require.Empty(t, tr.Timings)
}
