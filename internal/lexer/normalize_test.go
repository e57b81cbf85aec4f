package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeStripsBOM(t *testing.T) {
	src := append([]byte{0xEF, 0xBB, 0xBF}, []byte("x = 1\n")...)
	got := Normalize(src)
	require.Equal(t, "x = 1\n", string(got))
}

func TestNormalizeNFC(t *testing.T) {
	// "é" as e + combining acute (NFD) should normalize to the composed form.
	decomposed := []byte("café")
	got := Normalize(decomposed)
	require.Equal(t, "café", string(got))
}

func TestNormalizeIdempotent(t *testing.T) {
	src := []byte("x = 1\n")
	require.Equal(t, Normalize(src), Normalize(Normalize(src)))
}
