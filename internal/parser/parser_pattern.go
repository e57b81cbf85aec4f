package parser

import (
	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

// tryParseMatch attempts to parse a `match subject: case ...` statement.
// It consumes `match` and always reports ok=true; when the subject is not
// followed by ':' it records a parse error and returns a nil statement.
func (p *Parser) tryParseMatch() (ast.Stmt, bool) {
	start := p.curPos()
	p.advance() // match
	subject := p.parseExprList()
	if !p.curIs(lexer.COLON) {
		p.errorf("expected ':' after match subject")
		return nil, true
	}
	p.advance()
	p.expect(lexer.NEWLINE, "newline")
	p.expect(lexer.INDENT, "indented case block")

	m := &ast.Match{Subject: subject, Pos: start}
	for p.curIs(lexer.CASE) {
		m.Cases = append(m.Cases, p.parseCase())
	}
	if p.curIs(lexer.DEDENT) {
		p.advance()
	}
	return m, true
}

func (p *Parser) parseCase() *ast.MatchCase {
	start := p.curPos()
	p.advance() // case
	pat := p.parsePattern()
	var guard ast.Expr
	if p.curIs(lexer.IF) {
		p.advance()
		guard = p.parseExpr(LOWEST)
	}
	body := p.parseBlock()
	return &ast.MatchCase{Pattern: pat, Guard: guard, Body: body, Pos: start}
}

func (p *Parser) parsePattern() ast.Pattern {
	first := p.parseOrPatternAtom()
	if !p.curIs(lexer.PIPE) {
		return first
	}
	alts := []ast.Pattern{first}
	for p.curIs(lexer.PIPE) {
		p.advance()
		alts = append(alts, p.parseOrPatternAtom())
	}
	return &ast.OrPattern{Alternatives: alts, Pos: first.Position()}
}

// parseOrPatternAtom parses one pattern term, including a trailing
// `as name` capture binding.
func (p *Parser) parseOrPatternAtom() ast.Pattern {
	base := p.parsePatternAtom()
	if p.curIs(lexer.AS) {
		p.advance()
		name := p.cur.Literal
		p.expect(lexer.IDENT, "capture name")
		return &ast.BindPattern{Name: name, Sub: base, Pos: base.Position()}
	}
	return base
}

func (p *Parser) parsePatternAtom() ast.Pattern {
	start := p.curPos()
	switch p.cur.Type {
	case lexer.IDENT:
		if p.cur.Literal == "_" {
			p.advance()
			return &ast.WildcardPattern{Pos: start}
		}
		name := p.cur.Literal
		// A name followed by `(` or `.` is a class pattern; otherwise a
		// bare capture binding (spec.md pattern grammar follows PEP 634).
		if p.peekIs(lexer.LPAREN) || p.peekIs(lexer.DOT) {
			return p.parseClassPattern()
		}
		p.advance()
		return &ast.BindPattern{Name: name, Pos: start}
	case lexer.INT, lexer.FLOAT, lexer.STRING, lexer.TRUE, lexer.FALSE, lexer.NONE, lexer.MINUS:
		lit := p.parseExpr(UNARY)
		if l, ok := lit.(*ast.Literal); ok {
			return &ast.LiteralPattern{Value: l, Pos: start}
		}
		if u, ok := lit.(*ast.UnaryOp); ok {
			if l, ok := u.X.(*ast.Literal); ok {
				return &ast.LiteralPattern{Value: l, Pos: start}
			}
		}
		p.errorf("invalid literal pattern")
		return &ast.WildcardPattern{Pos: start}
	case lexer.LBRACKET:
		return p.parseSequencePattern(lexer.LBRACKET, lexer.RBRACKET)
	case lexer.LPAREN:
		return p.parseSequencePattern(lexer.LPAREN, lexer.RPAREN)
	case lexer.LBRACE:
		return p.parseMappingPattern()
	case lexer.STAR:
		p.advance()
		name := p.cur.Literal
		p.expect(lexer.IDENT, "rest-capture name")
		return &ast.BindPattern{Name: "*" + name, Pos: start}
	default:
		p.errorf("unexpected token %q in pattern", p.cur.Literal)
		p.advance()
		return &ast.WildcardPattern{Pos: start}
	}
}

func (p *Parser) parseSequencePattern(open, close lexer.TokenType) ast.Pattern {
	start := p.curPos()
	p.advance() // open
	var elems []ast.Pattern
	rest := ""
	for !p.curIs(close) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.STAR) {
			p.advance()
			if p.cur.Literal != "_" {
				rest = p.cur.Literal
			}
			p.expect(lexer.IDENT, "rest-capture name")
		} else {
			elems = append(elems, p.parsePattern())
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(close, "closing bracket")
	return &ast.SequencePattern{Elements: elems, Rest: rest, Pos: start}
}

func (p *Parser) parseMappingPattern() ast.Pattern {
	start := p.curPos()
	p.advance() // {
	var entries []ast.MappingEntry
	rest := ""
	for !p.curIs(lexer.RBRACE) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.DOUBLESTAR) {
			p.advance()
			rest = p.cur.Literal
			p.expect(lexer.IDENT, "rest-capture name")
		} else {
			key := p.parseExpr(UNARY)
			p.expect(lexer.COLON, "':'")
			val := p.parsePattern()
			entries = append(entries, ast.MappingEntry{Key: key, Pattern: val})
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE, "'}'")
	return &ast.MappingPattern{Entries: entries, Rest: rest, Pos: start}
}

func (p *Parser) parseClassPattern() ast.Pattern {
	start := p.curPos()
	name := p.parseDottedName()
	p.expect(lexer.LPAREN, "'('")
	var positional []ast.Pattern
	keyword := map[string]ast.Pattern{}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.IDENT) && p.peekIs(lexer.ASSIGN) {
			kwName := p.cur.Literal
			p.advance()
			p.advance()
			keyword[kwName] = p.parsePattern()
		} else {
			positional = append(positional, p.parsePattern())
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')'")
	return &ast.ClassPattern{ClassName: name, Positional: positional, Keyword: keyword, Pos: start}
}
