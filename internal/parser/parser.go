// Package parser builds an internal/ast syntax tree from a token stream
// produced by internal/lexer. Expression parsing is Pratt-style (operator
// precedence climbing keyed off the token type) grounded on the same
// shape as the reference front end's expression parser; statement parsing
// is a straightforward recursive-descent dispatch over leading keyword.
package parser

import (
	"fmt"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

// ParseError is a single parse failure with source position.
type ParseError struct {
	Pos     ast.Pos
	Message string
}

func (e ParseError) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Message) }

// Parser consumes a token stream and produces an *ast.File.
type Parser struct {
	l    *lexer.Lexer
	file string

	cur  lexer.Token
	peek lexer.Token

	errors []error
}

// New creates a Parser over l. filename is recorded on every ast.Pos.
func New(l *lexer.Lexer, filename string) *Parser {
	p := &Parser{l: l, file: filename}
	p.advance()
	p.advance()
	return p
}

// Errors returns accumulated parse errors (spec.md §7: parse failure is
// fatal for the file, so the caller treats a non-empty slice as fatal).
func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) advance() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos(t lexer.Token) ast.Pos {
	return ast.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

func (p *Parser) curPos() ast.Pos { return p.pos(p.cur) }

func (p *Parser) curIs(tt lexer.TokenType) bool  { return p.cur.Type == tt }
func (p *Parser) peekIs(tt lexer.TokenType) bool { return p.peek.Type == tt }

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, ParseError{Pos: p.curPos(), Message: fmt.Sprintf(format, args...)})
}

// expect asserts the current token and advances past it, recording a parse
// error and returning false if it didn't match — callers use this to
// decide whether to attempt resynchronization.
func (p *Parser) expect(tt lexer.TokenType, what string) bool {
	if !p.curIs(tt) {
		p.errorf("expected %s, got %q", what, p.cur.Literal)
		return false
	}
	p.advance()
	return true
}

// skipNewlines consumes any run of blank logical-line NEWLINEs, which are
// legal between statements (e.g. blank lines inside a block).
func (p *Parser) skipNewlines() {
	for p.curIs(lexer.NEWLINE) {
		p.advance()
	}
}

// ParseTypeExprString re-lexes and parses a standalone type annotation
// written as a forward-reference string literal (e.g. `"Foo"`,
// `"list[Foo]"`), used by the lowering pass to recover the real TypeExpr
// a forward reference defers (spec.md §4.2: "lowering re-lexes the string
// contents as a type expression").
func ParseTypeExprString(src, filename string) (ast.TypeExpr, error) {
	l := lexer.New(src, filename)
	p := New(l, filename)
	te := p.parseTypeExpr()
	if len(p.errors) > 0 {
		return nil, p.errors[0]
	}
	return te, nil
}

// ParseFile parses an entire source file as a sequence of top-level
// statements (spec.md §6: a file is the atomic unit of translation).
func (p *Parser) ParseFile() *ast.File {
	start := p.curPos()
	f := &ast.File{Path: p.file, Pos: start}
	p.skipNewlines()
	for !p.curIs(lexer.EOF) {
		p.parseStatementsInto(&f.Body)
		p.skipNewlines()
	}
	return f
}
