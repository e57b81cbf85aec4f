package parser

import (
	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

// parseBlock parses an indented suite: `:` NEWLINE INDENT stmt+ DEDENT, or
// (for single-line suites like `if x: y`) a single simple-statement list.
func (p *Parser) parseBlock() []ast.Stmt {
	if !p.expect(lexer.COLON, "':'") {
		return nil
	}
	var body []ast.Stmt
	if p.curIs(lexer.NEWLINE) {
		p.advance()
		if !p.expect(lexer.INDENT, "indented block") {
			return nil
		}
		for !p.curIs(lexer.DEDENT) && !p.curIs(lexer.EOF) {
			if p.curIs(lexer.NEWLINE) {
				p.advance()
				continue
			}
			p.parseStatementsInto(&body)
		}
		if p.curIs(lexer.DEDENT) {
			p.advance()
		}
		return body
	}
	// Single-line suite: simple_stmt (';' simple_stmt)* NEWLINE
	p.parseSimpleStatementLineInto(&body)
	return body
}

// parseStatementsInto parses the next statement and appends it (or, for a
// semicolon-chained simple-statement line, all of them) to body.
func (p *Parser) parseStatementsInto(body *[]ast.Stmt) {
	switch p.cur.Type {
	case lexer.DEF:
		*body = append(*body, p.parseFuncDecl(nil, false))
	case lexer.ASYNC:
		p.advance()
		if p.curIs(lexer.DEF) {
			*body = append(*body, p.parseFuncDecl(nil, true))
			return
		}
		p.errorf("expected 'def' after 'async'")
	case lexer.CLASS:
		*body = append(*body, p.parseClassDecl(nil))
	case lexer.AT:
		*body = append(*body, p.parseDecorated())
	case lexer.IF:
		*body = append(*body, p.parseIf())
	case lexer.WHILE:
		*body = append(*body, p.parseWhile())
	case lexer.FOR:
		*body = append(*body, p.parseFor())
	case lexer.TRY:
		*body = append(*body, p.parseTry())
	case lexer.WITH:
		*body = append(*body, p.parseWith())
	case lexer.MATCH:
		if stmt, ok := p.tryParseMatch(); ok {
			*body = append(*body, stmt)
			return
		}
		p.parseSimpleStatementLineInto(body)
	default:
		p.parseSimpleStatementLineInto(body)
	}
}

// parseDecorated parses one-or-more `@decorator` lines followed by the
// function/class they apply to.
func (p *Parser) parseDecorated() ast.Stmt {
	var decorators []*ast.Decorator
	for p.curIs(lexer.AT) {
		decPos := p.curPos()
		p.advance()
		name := p.parseDottedName()
		var args []ast.Expr
		if p.curIs(lexer.LPAREN) {
			args = p.parseCallArgs()
		}
		decorators = append(decorators, &ast.Decorator{Name: name, Args: args, Pos: decPos})
		if p.curIs(lexer.NEWLINE) {
			p.advance()
		}
	}
	switch p.cur.Type {
	case lexer.DEF:
		return p.parseFuncDecl(decorators, false)
	case lexer.ASYNC:
		p.advance()
		return p.parseFuncDecl(decorators, true)
	case lexer.CLASS:
		return p.parseClassDecl(decorators)
	default:
		p.errorf("expected function or class definition after decorator")
		return nil
	}
}

func (p *Parser) parseDottedName() string {
	name := p.cur.Literal
	p.advance()
	for p.curIs(lexer.DOT) {
		p.advance()
		name += "." + p.cur.Literal
		p.advance()
	}
	return name
}

func (p *Parser) parseCallArgs() []ast.Expr {
	p.advance() // (
	var args []ast.Expr
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		args = append(args, p.parseExpr(LOWEST))
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')'")
	return args
}

// parseFuncDecl parses `def name(params) -> ret: body`.
func (p *Parser) parseFuncDecl(decorators []*ast.Decorator, isAsync bool) ast.Stmt {
	start := p.curPos()
	p.advance() // def
	name := p.cur.Literal
	p.expect(lexer.IDENT, "function name")
	params := p.parseParams()
	var ret ast.TypeExpr
	if p.curIs(lexer.ARROW) {
		p.advance()
		ret = p.parseTypeExpr()
	}
	body := p.parseBlock()
	return &ast.FuncDecl{
		Name: name, Params: params, ReturnType: ret,
		Decorators: decorators, Body: body, IsAsync: isAsync, Pos: start,
	}
}

func (p *Parser) parseParams() []*ast.Param {
	p.expect(lexer.LPAREN, "'('")
	var params []*ast.Param
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		kind := ast.ParamPositional
		if p.curIs(lexer.STAR) {
			p.advance()
			kind = ast.ParamStarArgs
		} else if p.curIs(lexer.DOUBLESTAR) {
			p.advance()
			kind = ast.ParamStarKwargs
		}
		paramPos := p.curPos()
		paramName := p.cur.Literal
		p.expect(lexer.IDENT, "parameter name")
		var typ ast.TypeExpr
		if p.curIs(lexer.COLON) {
			p.advance()
			typ = p.parseTypeExpr()
		}
		var def ast.Expr
		if p.curIs(lexer.ASSIGN) {
			p.advance()
			def = p.parseExpr(LOWEST)
		}
		params = append(params, &ast.Param{Name: paramName, Type: typ, Default: def, Kind: kind, Pos: paramPos})
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')'")
	return params
}

// parseClassDecl parses `class Name(Base1, Base2): body`.
func (p *Parser) parseClassDecl(decorators []*ast.Decorator) ast.Stmt {
	start := p.curPos()
	p.advance() // class
	name := p.cur.Literal
	p.expect(lexer.IDENT, "class name")
	var bases []ast.Expr
	if p.curIs(lexer.LPAREN) {
		p.advance()
		for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
			bases = append(bases, p.parseExpr(LOWEST))
			if p.curIs(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
		p.expect(lexer.RPAREN, "')'")
	}
	body := p.parseBlock()
	return &ast.ClassDecl{Name: name, Bases: bases, Decorators: decorators, Body: body, Pos: start}
}

func (p *Parser) parseIf() ast.Stmt {
	start := p.curPos()
	p.advance() // if
	cond := p.parseExpr(LOWEST)
	then := p.parseBlock()
	var elseBody []ast.Stmt
	if p.curIs(lexer.ELIF) {
		elseBody = []ast.Stmt{p.parseElif()}
	} else if p.curIs(lexer.ELSE) {
		p.advance()
		elseBody = p.parseBlock()
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBody, Pos: start}
}

func (p *Parser) parseElif() ast.Stmt {
	start := p.curPos()
	p.advance() // elif
	cond := p.parseExpr(LOWEST)
	then := p.parseBlock()
	var elseBody []ast.Stmt
	if p.curIs(lexer.ELIF) {
		elseBody = []ast.Stmt{p.parseElif()}
	} else if p.curIs(lexer.ELSE) {
		p.advance()
		elseBody = p.parseBlock()
	}
	return &ast.If{Cond: cond, Then: then, Else: elseBody, Pos: start}
}

func (p *Parser) parseWhile() ast.Stmt {
	start := p.curPos()
	p.advance()
	cond := p.parseExpr(LOWEST)
	body := p.parseBlock()
	var elseBody []ast.Stmt
	if p.curIs(lexer.ELSE) {
		p.advance()
		elseBody = p.parseBlock()
	}
	return &ast.While{Cond: cond, Body: body, Else: elseBody, Pos: start}
}

func (p *Parser) parseFor() ast.Stmt {
	start := p.curPos()
	p.advance() // for
	target := p.parseTargetList()
	p.expect(lexer.IN, "'in'")
	iter := p.parseExpr(LOWEST)
	body := p.parseBlock()
	var elseBody []ast.Stmt
	if p.curIs(lexer.ELSE) {
		p.advance()
		elseBody = p.parseBlock()
	}
	return &ast.For{Target: target, Iter: iter, Body: body, Else: elseBody, Pos: start}
}

// parseTargetList parses an assignment/for/comprehension target, handling
// `a, b` tuple-unpacking targets without requiring surrounding parens.
func (p *Parser) parseTargetList() ast.Expr {
	first := p.parseExpr(PREC_COMPARE_OR_HIGHER)
	if !p.curIs(lexer.COMMA) {
		return first
	}
	elems := []ast.Expr{first}
	pos := first.Position()
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.IN) || p.curIs(lexer.ASSIGN) || p.curIs(lexer.COLON) {
			break
		}
		elems = append(elems, p.parseExpr(PREC_COMPARE_OR_HIGHER))
	}
	return &ast.ContainerLit{Kind: ast.ContainerTuple, Values: elems, Pos: pos}
}

func (p *Parser) parseTry() ast.Stmt {
	start := p.curPos()
	p.advance() // try
	body := p.parseBlock()
	var handlers []*ast.ExceptHandler
	for p.curIs(lexer.EXCEPT) {
		hPos := p.curPos()
		p.advance()
		var excType *ast.Name
		var boundName string
		if !p.curIs(lexer.COLON) {
			e := p.parseExpr(PREC_COMPARE_OR_HIGHER)
			if n, ok := e.(*ast.Name); ok {
				excType = n
			}
			if p.curIs(lexer.AS) {
				p.advance()
				boundName = p.cur.Literal
				p.expect(lexer.IDENT, "exception bind name")
			}
		}
		hBody := p.parseBlock()
		handlers = append(handlers, &ast.ExceptHandler{Type: excType, Name: boundName, Body: hBody, Pos: hPos})
	}
	var elseBody, finallyBody []ast.Stmt
	if p.curIs(lexer.ELSE) {
		p.advance()
		elseBody = p.parseBlock()
	}
	if p.curIs(lexer.FINALLY) {
		p.advance()
		finallyBody = p.parseBlock()
	}
	return &ast.Try{Body: body, Handlers: handlers, Else: elseBody, Finally: finallyBody, Pos: start}
}

func (p *Parser) parseWith() ast.Stmt {
	start := p.curPos()
	p.advance() // with
	var items []ast.WithItem
	for {
		ctx := p.parseExpr(PREC_COMPARE_OR_HIGHER)
		var target ast.Expr
		if p.curIs(lexer.AS) {
			p.advance()
			target = p.parseExpr(PREC_COMPARE_OR_HIGHER)
		}
		items = append(items, ast.WithItem{Context: ctx, Target: target})
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	body := p.parseBlock()
	return &ast.With{Items: items, Body: body, Pos: start}
}

// parseSimpleStatementLineInto parses one logical line made of one-or-more
// semicolon-separated simple statements, terminated by NEWLINE, appending
// each to body.
func (p *Parser) parseSimpleStatementLineInto(body *[]ast.Stmt) {
	*body = append(*body, p.parseSimpleStatement())
	for p.curIs(lexer.SEMICOLON) {
		p.advance()
		if p.curIs(lexer.NEWLINE) || p.curIs(lexer.EOF) {
			break
		}
		*body = append(*body, p.parseSimpleStatement())
	}
	if p.curIs(lexer.NEWLINE) {
		p.advance()
	}
}

func (p *Parser) parseSimpleStatement() ast.Stmt {
	start := p.curPos()
	switch p.cur.Type {
	case lexer.PASS:
		p.advance()
		return &ast.Pass{Pos: start}
	case lexer.BREAK:
		p.advance()
		return &ast.Break{Pos: start}
	case lexer.CONTINUE:
		p.advance()
		return &ast.Continue{Pos: start}
	case lexer.RETURN:
		p.advance()
		if p.curIs(lexer.NEWLINE) || p.curIs(lexer.SEMICOLON) || p.curIs(lexer.EOF) {
			return &ast.Return{Pos: start}
		}
		return &ast.Return{Value: p.parseExprList(), Pos: start}
	case lexer.RAISE:
		p.advance()
		if p.curIs(lexer.NEWLINE) || p.curIs(lexer.EOF) {
			return &ast.Raise{Pos: start}
		}
		exc := p.parseExpr(LOWEST)
		var cause ast.Expr
		if p.curIs(lexer.FROM) {
			p.advance()
			cause = p.parseExpr(LOWEST)
		}
		return &ast.Raise{Exc: exc, Cause: cause, Pos: start}
	case lexer.IMPORT:
		return p.parseImport()
	case lexer.FROM:
		return p.parseFromImport()
	case lexer.GLOBAL:
		p.advance()
		return &ast.GlobalDecl{Names: p.parseNameList(), Pos: start}
	case lexer.NONLOCAL:
		p.advance()
		return &ast.NonlocalDecl{Names: p.parseNameList(), Pos: start}
	case lexer.DEL:
		p.advance()
		_ = p.parseExprList()
		return &ast.Pass{Pos: start} // deletion has no Rust analog; parsed as a no-op Pass, with no diagnostic
	default:
		return p.parseExprOrAssignStatement()
	}
}

func (p *Parser) parseNameList() []string {
	var names []string
	names = append(names, p.cur.Literal)
	p.expect(lexer.IDENT, "name")
	for p.curIs(lexer.COMMA) {
		p.advance()
		names = append(names, p.cur.Literal)
		p.expect(lexer.IDENT, "name")
	}
	return names
}

func (p *Parser) parseImport() ast.Stmt {
	start := p.curPos()
	p.advance() // import
	mod := p.parseDottedName()
	alias := ""
	if p.curIs(lexer.AS) {
		p.advance()
		alias = p.cur.Literal
		p.advance()
	}
	imp := &ast.Import{Module: mod, Pos: start}
	if alias != "" {
		imp.Aliases = map[string]string{mod: alias}
	}
	return imp
}

func (p *Parser) parseFromImport() ast.Stmt {
	start := p.curPos()
	p.advance() // from
	mod := p.parseDottedName()
	p.expect(lexer.IMPORT, "'import'")
	var names []string
	aliases := map[string]string{}
	paren := p.curIs(lexer.LPAREN)
	if paren {
		p.advance()
	}
	if p.curIs(lexer.STAR) {
		p.advance()
	} else {
		for {
			name := p.cur.Literal
			p.expect(lexer.IDENT, "imported name")
			names = append(names, name)
			if p.curIs(lexer.AS) {
				p.advance()
				aliases[name] = p.cur.Literal
				p.advance()
			}
			if p.curIs(lexer.COMMA) {
				p.advance()
				continue
			}
			break
		}
	}
	if paren {
		p.expect(lexer.RPAREN, "')'")
	}
	return &ast.Import{Module: mod, Names: names, Aliases: aliases, Pos: start}
}

// parseExprList parses a comma-separated expression list used for
// `return a, b` (builds an implicit tuple for multiple values).
func (p *Parser) parseExprList() ast.Expr {
	first := p.parseExpr(LOWEST)
	if !p.curIs(lexer.COMMA) {
		return first
	}
	elems := []ast.Expr{first}
	pos := first.Position()
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.NEWLINE) || p.curIs(lexer.EOF) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	return &ast.ContainerLit{Kind: ast.ContainerTuple, Values: elems, Pos: pos}
}

// parseExprOrAssignStatement parses either a bare expression statement or
// an assignment (including chained `a = b = expr`, augmented assignment,
// and annotated assignment).
func (p *Parser) parseExprOrAssignStatement() ast.Stmt {
	start := p.curPos()
	first := p.parseTargetList()

	if p.curIs(lexer.COLON) {
		p.advance()
		typ := p.parseTypeExpr()
		var value ast.Expr
		if p.curIs(lexer.ASSIGN) {
			p.advance()
			value = p.parseExprList()
		}
		return &ast.AnnAssign{Target: first, Type: typ, Value: value, Pos: start}
	}

	if op, ok := augAssignOp(p.cur.Type); ok {
		p.advance()
		value := p.parseExprList()
		return &ast.AugAssign{Target: first, Op: op, Value: value, Pos: start}
	}

	if p.curIs(lexer.ASSIGN) {
		targets := []ast.Expr{first}
		var value ast.Expr
		for p.curIs(lexer.ASSIGN) {
			p.advance()
			value = p.parseExprList()
			if p.curIs(lexer.ASSIGN) {
				targets = append(targets, value)
			}
		}
		return &ast.Assign{Targets: targets, Value: value, Pos: start}
	}

	return &ast.ExprStmt{Value: first, Pos: start}
}

func augAssignOp(tt lexer.TokenType) (string, bool) {
	switch tt {
	case lexer.PLUS_EQ:
		return "+", true
	case lexer.MINUS_EQ:
		return "-", true
	case lexer.STAR_EQ:
		return "*", true
	case lexer.SLASH_EQ:
		return "/", true
	case lexer.DOUBLESLASH_EQ:
		return "//", true
	case lexer.PERCENT_EQ:
		return "%", true
	case lexer.DOUBLESTAR_EQ:
		return "**", true
	case lexer.AMP_EQ:
		return "&", true
	case lexer.PIPE_EQ:
		return "|", true
	case lexer.CARET_EQ:
		return "^", true
	case lexer.LSHIFT_EQ:
		return "<<", true
	case lexer.RSHIFT_EQ:
		return ">>", true
	}
	return "", false
}
