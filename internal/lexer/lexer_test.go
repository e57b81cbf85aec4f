package lexer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func allTokens(t *testing.T, src string) []Token {
	t.Helper()
	l := New(string(Normalize([]byte(src))), "test.py")
	var toks []Token
	for {
		tok := l.NextToken()
		toks = append(toks, tok)
		if tok.Type == EOF {
			break
		}
	}
	return toks
}

func types(toks []Token) []TokenType {
	out := make([]TokenType, len(toks))
	for i, t := range toks {
		out[i] = t.Type
	}
	return out
}

func TestSimpleAssignment(t *testing.T) {
	toks := allTokens(t, "x = 1\n")
	require.Equal(t, []TokenType{IDENT, ASSIGN, INT, NEWLINE, EOF}, types(toks))
}

func TestIndentDedent(t *testing.T) {
	src := "def f():\n    return 1\nx = 2\n"
	toks := allTokens(t, src)
	got := types(toks)
	require.Contains(t, got, INDENT)
	require.Contains(t, got, DEDENT)
}

func TestFloorDivAndPower(t *testing.T) {
	toks := allTokens(t, "a // b ** c\n")
	require.Equal(t, []TokenType{IDENT, DOUBLESLASH, IDENT, DOUBLESTAR, IDENT, NEWLINE, EOF}, types(toks))
}

func TestWalrus(t *testing.T) {
	toks := allTokens(t, "if (n := len(a)) > 0:\n    pass\n")
	require.Contains(t, types(toks), WALRUS)
}

func TestFStringPrefix(t *testing.T) {
	toks := allTokens(t, `f"hello {name}"` + "\n")
	require.Equal(t, STRING, toks[0].Type)
	require.True(t, toks[0].IsFString)
}

func TestRawString(t *testing.T) {
	toks := allTokens(t, `r"\d+"` + "\n")
	require.Equal(t, STRING, toks[0].Type)
	require.True(t, toks[0].IsRaw)
	require.Equal(t, `\d+`, toks[0].Literal)
}

func TestBracketsSuppressNewline(t *testing.T) {
	src := "x = [\n    1,\n    2,\n]\n"
	toks := allTokens(t, src)
	got := types(toks)
	// Only one NEWLINE (after the closing bracket's line), none inside.
	count := 0
	for _, tt := range got {
		if tt == NEWLINE {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestBlankAndCommentLinesDoNotAffectIndent(t *testing.T) {
	src := "def f():\n    x = 1\n\n    # a comment\n    return x\n"
	toks := allTokens(t, src)
	got := types(toks)
	indentCount, dedentCount := 0, 0
	for _, tt := range got {
		if tt == INDENT {
			indentCount++
		}
		if tt == DEDENT {
			dedentCount++
		}
	}
	require.Equal(t, 1, indentCount)
	require.Equal(t, 1, dedentCount)
}
