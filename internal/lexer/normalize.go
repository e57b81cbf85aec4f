package lexer

import (
	"bytes"

	"golang.org/x/text/unicode/norm"
)

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// Normalize prepares raw source bytes for tokenizing: it strips a leading
// UTF-8 byte-order mark and applies Unicode NFC normalization so that
// lexically equivalent Python source (e.g. "café" composed vs. decomposed)
// produces an identical token stream regardless of the encoding the file
// happened to be saved in. Performed once at the lexer boundary to avoid
// repeated normalization passes deeper in the pipeline.
func Normalize(src []byte) []byte {
	src = bytes.TrimPrefix(src, bomUTF8)
	if !norm.NFC.IsNormal(src) {
		src = norm.NFC.Bytes(src)
	}
	return src
}
