package parser

import (
	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

// parseTypeExpr parses a syntactic type annotation: a name, a subscripted
// generic, a `|`-union, a tuple type, a `Callable[[...], ...]` type, or a
// forward-reference string literal. Lowering (internal/lower) re-lexes a
// ForwardRefType's Contents to recover its real shape once every name in
// the module is visible.
func (p *Parser) parseTypeExpr() ast.TypeExpr {
	first := p.parseTypeAtom()
	if !p.curIs(lexer.PIPE) {
		return first
	}
	options := []ast.TypeExpr{first}
	for p.curIs(lexer.PIPE) {
		p.advance()
		options = append(options, p.parseTypeAtom())
	}
	return &ast.UnionType{Options: options, Pos: first.Position()}
}

func (p *Parser) parseTypeAtom() ast.TypeExpr {
	start := p.curPos()
	if p.curIs(lexer.STRING) {
		contents := p.cur.Literal
		p.advance()
		return &ast.ForwardRefType{Contents: contents, Pos: start}
	}
	if p.curIs(lexer.NONE) {
		p.advance()
		return &ast.NameType{Name: "None", Pos: start}
	}

	name := p.cur.Literal
	p.expect(lexer.IDENT, "type name")
	qualifier := ""
	for p.curIs(lexer.DOT) {
		p.advance()
		qualifier = name
		name = p.cur.Literal
		p.expect(lexer.IDENT, "type name")
	}

	if name == "Callable" && p.curIs(lexer.LBRACKET) {
		return p.parseCallableType(start)
	}

	var base ast.TypeExpr = &ast.NameType{Qualifier: qualifier, Name: name, Pos: start}
	if !p.curIs(lexer.LBRACKET) {
		return base
	}

	p.advance() // [
	if name == "tuple" || name == "Tuple" {
		var elems []ast.TypeExpr
		for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.ELLIPSIS) {
				p.advance()
				continue
			}
			elems = append(elems, p.parseTypeExpr())
			if p.curIs(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBRACKET, "']'")
		return &ast.TupleTypeExpr{Elements: elems, Pos: start}
	}

	var args []ast.TypeExpr
	for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseTypeExpr())
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RBRACKET, "']'")
	return &ast.SubscriptType{Base: base, Args: args, Pos: start}
}

func (p *Parser) parseCallableType(start ast.Pos) ast.TypeExpr {
	p.advance() // [
	var params []ast.TypeExpr
	if p.curIs(lexer.LBRACKET) {
		p.advance()
		for !p.curIs(lexer.RBRACKET) && !p.curIs(lexer.EOF) {
			params = append(params, p.parseTypeExpr())
			if p.curIs(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RBRACKET, "']'")
	} else if p.curIs(lexer.ELLIPSIS) {
		p.advance()
	}
	p.expect(lexer.COMMA, "','")
	ret := p.parseTypeExpr()
	p.expect(lexer.RBRACKET, "']'")
	return &ast.CallableType{Params: params, Return: ret, Pos: start}
}
