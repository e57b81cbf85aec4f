package parser

import (
	"strconv"
	"strings"

	"github.com/pyrs-lang/pyrs/internal/ast"
	"github.com/pyrs-lang/pyrs/internal/lexer"
)

// Precedence levels, lowest to highest. Pratt-style: parseExpr(prec) keeps
// consuming infix/postfix operators while the upcoming operator binds
// tighter than prec.
const (
	LOWEST = iota
	TERNARY
	LAMBDA_PREC
	OR_PREC
	AND_PREC
	NOT_PREC
	COMPARE
	BITOR
	BITXOR
	BITAND
	SHIFT
	ADD
	MUL
	UNARY
	POWER
	POSTFIX
)

// PREC_COMPARE_OR_HIGHER is passed by statement-level callers (for-target,
// with-item, except-type) that need an expression without consuming a
// trailing keyword the comparison/boolean grammar would otherwise eat
// (`in`, `as`, `:`).
const PREC_COMPARE_OR_HIGHER = COMPARE

var precedences = map[lexer.TokenType]int{
	lexer.IF:          TERNARY,
	lexer.OR:          OR_PREC,
	lexer.AND:         AND_PREC,
	lexer.NOT:         NOT_PREC, // `not in`
	lexer.LT:          COMPARE,
	lexer.GT:          COMPARE,
	lexer.LE:          COMPARE,
	lexer.GE:          COMPARE,
	lexer.EQ:          COMPARE,
	lexer.NEQ:         COMPARE,
	lexer.IN:          COMPARE,
	lexer.IS:          COMPARE,
	lexer.PIPE:        BITOR,
	lexer.CARET:       BITXOR,
	lexer.AMP:         BITAND,
	lexer.LSHIFT:      SHIFT,
	lexer.RSHIFT:      SHIFT,
	lexer.PLUS:        ADD,
	lexer.MINUS:       ADD,
	lexer.STAR:        MUL,
	lexer.SLASH:       MUL,
	lexer.DOUBLESLASH: MUL,
	lexer.PERCENT:     MUL,
	lexer.AT:          MUL,
	lexer.DOUBLESTAR:  POWER,
	lexer.LPAREN:      POSTFIX,
	lexer.LBRACKET:    POSTFIX,
	lexer.DOT:         POSTFIX,
}

func (p *Parser) peekPrecedence() int {
	if pr, ok := precedences[p.peek.Type]; ok {
		return pr
	}
	return LOWEST
}

// parseExpr is the Pratt entry point: parses a prefix expression, then
// repeatedly extends it with infix/postfix operators whose precedence
// exceeds prec.
func (p *Parser) parseExpr(prec int) ast.Expr {
	left := p.parsePrefix()
	if left == nil {
		return nil
	}
	for !p.curIs(lexer.NEWLINE) && !p.curIs(lexer.EOF) && prec < p.curPrecedenceOfNext() {
		left = p.parseInfix(left)
	}
	return left
}

// curPrecedenceOfNext inspects the current token (not peek) because after
// parsePrefix, p.cur is already positioned on the operator that would
// extend the expression (parsePrefix leaves cur on the token after the
// primary it consumed).
func (p *Parser) curPrecedenceOfNext() int {
	if pr, ok := precedences[p.cur.Type]; ok {
		return pr
	}
	if p.curIs(lexer.NOT) && p.peekIs(lexer.IN) {
		return COMPARE
	}
	if p.curIs(lexer.IS) {
		return COMPARE
	}
	return LOWEST
}

func (p *Parser) parsePrefix() ast.Expr {
	start := p.curPos()
	switch p.cur.Type {
	case lexer.IDENT:
		n := &ast.Name{Value: p.cur.Literal, Pos: start}
		p.advance()
		return n
	case lexer.MATCH:
		// `match` is a soft keyword; outside statement position it is a
		// plain identifier (e.g. a variable or method named match).
		n := &ast.Name{Value: "match", Pos: start}
		p.advance()
		return n
	case lexer.CASE:
		n := &ast.Name{Value: "case", Pos: start}
		p.advance()
		return n
	case lexer.INT:
		lit := p.cur.Literal
		p.advance()
		v, _ := strconv.ParseInt(strings.ReplaceAll(lit, "_", ""), 0, 64)
		return &ast.Literal{Kind: ast.LitInt, Value: v, Pos: start}
	case lexer.FLOAT:
		lit := p.cur.Literal
		p.advance()
		v, _ := strconv.ParseFloat(strings.TrimRight(strings.ReplaceAll(lit, "_", ""), "jJ"), 64)
		return &ast.Literal{Kind: ast.LitFloat, Value: v, Pos: start}
	case lexer.STRING:
		return p.parseStringLiteral()
	case lexer.TRUE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Value: true, Pos: start}
	case lexer.FALSE:
		p.advance()
		return &ast.Literal{Kind: ast.LitBool, Value: false, Pos: start}
	case lexer.NONE:
		p.advance()
		return &ast.Literal{Kind: ast.LitNone, Value: nil, Pos: start}
	case lexer.ELLIPSIS:
		p.advance()
		return &ast.Literal{Kind: ast.LitNone, Value: "...", Pos: start}
	case lexer.LPAREN:
		return p.parseParenOrTupleOrGenerator()
	case lexer.LBRACKET:
		return p.parseListOrListComp()
	case lexer.LBRACE:
		return p.parseDictOrSetOrComp()
	case lexer.MINUS, lexer.PLUS, lexer.TILDE:
		op := p.cur.Literal
		p.advance()
		x := p.parseExpr(UNARY)
		return &ast.UnaryOp{Op: op, X: x, Pos: start}
	case lexer.NOT:
		p.advance()
		x := p.parseExpr(NOT_PREC)
		return &ast.UnaryOp{Op: "not", X: x, Pos: start}
	case lexer.STAR:
		p.advance()
		v := p.parseExpr(UNARY)
		return &ast.Starred{Value: v, Pos: start}
	case lexer.LAMBDA:
		return p.parseLambda()
	case lexer.AWAIT:
		p.advance()
		v := p.parseExpr(UNARY)
		return &ast.Await{Value: v, Pos: start}
	case lexer.YIELD:
		return p.parseYield()
	default:
		p.errorf("unexpected token %q in expression", p.cur.Literal)
		p.advance()
		return nil
	}
}

func (p *Parser) parseInfix(left ast.Expr) ast.Expr {
	start := left.Position()
	switch p.cur.Type {
	case lexer.LPAREN:
		return p.parseCall(left)
	case lexer.LBRACKET:
		return p.parseSubscript(left)
	case lexer.DOT:
		p.advance()
		attr := p.cur.Literal
		p.expect(lexer.IDENT, "attribute name")
		return &ast.Attribute{Value: left, Attr: attr, Pos: start}
	case lexer.IF:
		p.advance()
		cond := p.parseExpr(OR_PREC)
		p.expect(lexer.ELSE, "'else'")
		orExpr := p.parseExpr(TERNARY)
		return &ast.CondExpr{Body: left, Cond: cond, Or: orExpr, Pos: start}
	case lexer.OR:
		return p.parseBoolOp(left, "or", OR_PREC)
	case lexer.AND:
		return p.parseBoolOp(left, "and", AND_PREC)
	case lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.EQ, lexer.NEQ, lexer.IN, lexer.IS, lexer.NOT:
		return p.parseCompareChain(left)
	case lexer.PIPE, lexer.CARET, lexer.AMP, lexer.LSHIFT, lexer.RSHIFT,
		lexer.PLUS, lexer.MINUS, lexer.STAR, lexer.SLASH, lexer.DOUBLESLASH,
		lexer.PERCENT, lexer.AT, lexer.DOUBLESTAR:
		opType := p.cur.Type
		op := p.cur.Literal
		prec := precedences[opType]
		p.advance()
		rightPrec := prec
		if opType == lexer.DOUBLESTAR {
			rightPrec = prec - 1 // power is right-associative
		}
		right := p.parseExpr(rightPrec)
		return &ast.BinOp{Op: op, Left: left, Right: right, Pos: start}
	default:
		return left
	}
}

func (p *Parser) parseBoolOp(left ast.Expr, op string, prec int) ast.Expr {
	start := left.Position()
	values := []ast.Expr{left}
	for (op == "or" && p.curIs(lexer.OR)) || (op == "and" && p.curIs(lexer.AND)) {
		p.advance()
		values = append(values, p.parseExpr(prec))
	}
	return &ast.BoolOp{Op: op, Values: values, Pos: start}
}

func (p *Parser) parseCompareChain(left ast.Expr) ast.Expr {
	start := left.Position()
	var ops []ast.CompareOp
	for {
		op, ok := p.parseCompareOpToken()
		if !ok {
			break
		}
		right := p.parseExpr(COMPARE)
		ops = append(ops, ast.CompareOp{Op: op, Right: right})
		if !p.isCompareOpStart() {
			break
		}
	}
	return &ast.CompareChain{Left: left, Ops: ops, Pos: start}
}

func (p *Parser) isCompareOpStart() bool {
	switch p.cur.Type {
	case lexer.LT, lexer.GT, lexer.LE, lexer.GE, lexer.EQ, lexer.NEQ, lexer.IN, lexer.IS, lexer.NOT:
		return true
	}
	return false
}

func (p *Parser) parseCompareOpToken() (string, bool) {
	switch p.cur.Type {
	case lexer.LT:
		p.advance()
		return "<", true
	case lexer.GT:
		p.advance()
		return ">", true
	case lexer.LE:
		p.advance()
		return "<=", true
	case lexer.GE:
		p.advance()
		return ">=", true
	case lexer.EQ:
		p.advance()
		return "==", true
	case lexer.NEQ:
		p.advance()
		return "!=", true
	case lexer.IN:
		p.advance()
		return "in", true
	case lexer.NOT:
		p.advance()
		p.expect(lexer.IN, "'in' after 'not'")
		return "not in", true
	case lexer.IS:
		p.advance()
		if p.curIs(lexer.NOT) {
			p.advance()
			return "is not", true
		}
		return "is", true
	}
	return "", false
}

func (p *Parser) parseCall(fn ast.Expr) ast.Expr {
	start := fn.Position()
	p.advance() // (
	call := &ast.Call{Func: fn, Pos: start}
	for !p.curIs(lexer.RPAREN) && !p.curIs(lexer.EOF) {
		if p.curIs(lexer.STAR) {
			p.advance()
			call.StarArgs = p.parseExpr(LOWEST)
		} else if p.curIs(lexer.DOUBLESTAR) {
			p.advance()
			v := p.parseExpr(LOWEST)
			call.Keywords = append(call.Keywords, ast.Keyword{Name: "", Value: v})
		} else if p.curIs(lexer.IDENT) && p.peekIs(lexer.ASSIGN) {
			name := p.cur.Literal
			p.advance()
			p.advance()
			v := p.parseExpr(LOWEST)
			call.Keywords = append(call.Keywords, ast.Keyword{Name: name, Value: v})
		} else {
			arg := p.parseExpr(LOWEST)
			if forClauses, ok := p.tryParseCompFor(); ok {
				call.Args = append(call.Args, &ast.Comprehension{
					Kind: ast.CompGenerator, Elt: arg, Clauses: forClauses, Pos: arg.Position(),
				})
			} else {
				call.Args = append(call.Args, arg)
			}
		}
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.RPAREN, "')'")
	return call
}

func (p *Parser) parseSubscript(value ast.Expr) ast.Expr {
	start := value.Position()
	p.advance() // [
	var start_, stop, step ast.Expr
	isSlice := false

	if !p.curIs(lexer.COLON) {
		start_ = p.parseExpr(LOWEST)
	}
	if p.curIs(lexer.COLON) {
		isSlice = true
		p.advance()
		if !p.curIs(lexer.COLON) && !p.curIs(lexer.RBRACKET) {
			stop = p.parseExpr(LOWEST)
		}
		if p.curIs(lexer.COLON) {
			p.advance()
			if !p.curIs(lexer.RBRACKET) {
				step = p.parseExpr(LOWEST)
			}
		}
	}
	p.expect(lexer.RBRACKET, "']'")
	if isSlice {
		return &ast.Slice{Value: value, Start: start_, Stop: stop, Step: step, Pos: start}
	}
	return &ast.Index{Value: value, Index: start_, Pos: start}
}

// parseParenOrTupleOrGenerator handles `(expr)`, `()`, `(a, b)`, and
// `(x for x in y)` generator expressions, disambiguated after parsing the
// first element.
func (p *Parser) parseParenOrTupleOrGenerator() ast.Expr {
	start := p.curPos()
	p.advance() // (
	if p.curIs(lexer.RPAREN) {
		p.advance()
		return &ast.ContainerLit{Kind: ast.ContainerTuple, Pos: start}
	}
	first := p.parseExprAllowStarNamed()
	if clauses, ok := p.tryParseCompFor(); ok {
		p.expect(lexer.RPAREN, "')'")
		return &ast.Comprehension{Kind: ast.CompGenerator, Elt: first, Clauses: clauses, Pos: start}
	}
	if p.curIs(lexer.COMMA) {
		elems := []ast.Expr{first}
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RPAREN) {
				break
			}
			elems = append(elems, p.parseExprAllowStarNamed())
		}
		p.expect(lexer.RPAREN, "')'")
		return &ast.ContainerLit{Kind: ast.ContainerTuple, Values: elems, Pos: start}
	}
	p.expect(lexer.RPAREN, "')'")
	return first
}

// parseExprAllowStarNamed parses a full expression, additionally permitting
// a bare walrus `name := value` (used as the lead element of parenthesized
// and comprehension expressions).
func (p *Parser) parseExprAllowStarNamed() ast.Expr {
	if p.curIs(lexer.IDENT) && p.peekIs(lexer.WALRUS) {
		start := p.curPos()
		name := p.cur.Literal
		p.advance()
		p.advance()
		v := p.parseExpr(LOWEST)
		return &ast.NamedExpr{Name: name, Value: v, Pos: start}
	}
	return p.parseExpr(LOWEST)
}

func (p *Parser) parseListOrListComp() ast.Expr {
	start := p.curPos()
	p.advance() // [
	if p.curIs(lexer.RBRACKET) {
		p.advance()
		return &ast.ContainerLit{Kind: ast.ContainerList, Pos: start}
	}
	first := p.parseExprAllowStarNamed()
	if clauses, ok := p.tryParseCompFor(); ok {
		p.expect(lexer.RBRACKET, "']'")
		return &ast.Comprehension{Kind: ast.CompList, Elt: first, Clauses: clauses, Pos: start}
	}
	elems := []ast.Expr{first}
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExprAllowStarNamed())
	}
	p.expect(lexer.RBRACKET, "']'")
	return &ast.ContainerLit{Kind: ast.ContainerList, Values: elems, Pos: start}
}

func (p *Parser) parseDictOrSetOrComp() ast.Expr {
	start := p.curPos()
	p.advance() // {
	if p.curIs(lexer.RBRACE) {
		p.advance()
		return &ast.ContainerLit{Kind: ast.ContainerDict, Pos: start}
	}
	if p.curIs(lexer.DOUBLESTAR) {
		p.advance()
		v := p.parseExpr(LOWEST)
		lit := &ast.ContainerLit{Kind: ast.ContainerDict, Pos: start}
		lit.Keys = append(lit.Keys, nil)
		lit.Values = append(lit.Values, v) // dict-unpack spread marked by nil key
		for p.curIs(lexer.COMMA) {
			p.advance()
			p.parseDictEntryInto(lit)
		}
		p.expect(lexer.RBRACE, "'}'")
		return lit
	}
	firstKey := p.parseExprAllowStarNamed()
	if p.curIs(lexer.COLON) {
		p.advance()
		firstVal := p.parseExpr(LOWEST)
		if clauses, ok := p.tryParseCompFor(); ok {
			p.expect(lexer.RBRACE, "'}'")
			return &ast.Comprehension{Kind: ast.CompDict, Key: firstKey, Elt: firstVal, Clauses: clauses, Pos: start}
		}
		lit := &ast.ContainerLit{Kind: ast.ContainerDict, Pos: start}
		lit.Keys = append(lit.Keys, firstKey)
		lit.Values = append(lit.Values, firstVal)
		for p.curIs(lexer.COMMA) {
			p.advance()
			if p.curIs(lexer.RBRACE) {
				break
			}
			p.parseDictEntryInto(lit)
		}
		p.expect(lexer.RBRACE, "'}'")
		return lit
	}
	// Set literal or set comprehension.
	if clauses, ok := p.tryParseCompFor(); ok {
		p.expect(lexer.RBRACE, "'}'")
		return &ast.Comprehension{Kind: ast.CompSet, Elt: firstKey, Clauses: clauses, Pos: start}
	}
	lit := &ast.ContainerLit{Kind: ast.ContainerSet, Pos: start}
	lit.Values = append(lit.Values, firstKey)
	for p.curIs(lexer.COMMA) {
		p.advance()
		if p.curIs(lexer.RBRACE) {
			break
		}
		lit.Values = append(lit.Values, p.parseExprAllowStarNamed())
	}
	p.expect(lexer.RBRACE, "'}'")
	return lit
}

func (p *Parser) parseDictEntryInto(lit *ast.ContainerLit) {
	if p.curIs(lexer.DOUBLESTAR) {
		p.advance()
		v := p.parseExpr(LOWEST)
		lit.Keys = append(lit.Keys, nil)
		lit.Values = append(lit.Values, v)
		return
	}
	k := p.parseExpr(LOWEST)
	p.expect(lexer.COLON, "':'")
	v := p.parseExpr(LOWEST)
	lit.Keys = append(lit.Keys, k)
	lit.Values = append(lit.Values, v)
}

// tryParseCompFor parses a chain of `for ... in ... (if ...)*` comprehension
// clauses if the current token starts one; returns ok=false (no input
// consumed) otherwise.
func (p *Parser) tryParseCompFor() ([]ast.CompFor, bool) {
	if !p.curIs(lexer.FOR) && !(p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
		return nil, false
	}
	var clauses []ast.CompFor
	for p.curIs(lexer.FOR) || (p.curIs(lexer.ASYNC) && p.peekIs(lexer.FOR)) {
		if p.curIs(lexer.ASYNC) {
			p.advance()
		}
		p.advance() // for
		target := p.parseTargetList()
		p.expect(lexer.IN, "'in'")
		iter := p.parseExpr(OR_PREC)
		var filters []ast.Expr
		for p.curIs(lexer.IF) {
			p.advance()
			filters = append(filters, p.parseExpr(OR_PREC))
		}
		clauses = append(clauses, ast.CompFor{Target: target, Iter: iter, Filters: filters})
	}
	return clauses, true
}

func (p *Parser) parseLambda() ast.Expr {
	start := p.curPos()
	p.advance() // lambda
	var params []*ast.Param
	for !p.curIs(lexer.COLON) && !p.curIs(lexer.EOF) {
		kind := ast.ParamPositional
		if p.curIs(lexer.STAR) {
			p.advance()
			kind = ast.ParamStarArgs
		} else if p.curIs(lexer.DOUBLESTAR) {
			p.advance()
			kind = ast.ParamStarKwargs
		}
		pPos := p.curPos()
		name := p.cur.Literal
		p.expect(lexer.IDENT, "parameter name")
		var def ast.Expr
		if p.curIs(lexer.ASSIGN) {
			p.advance()
			def = p.parseExpr(TERNARY)
		}
		params = append(params, &ast.Param{Name: name, Default: def, Kind: kind, Pos: pPos})
		if p.curIs(lexer.COMMA) {
			p.advance()
			continue
		}
		break
	}
	p.expect(lexer.COLON, "':'")
	body := p.parseExpr(TERNARY)
	return &ast.Lambda{Params: params, Body: body, Pos: start}
}

func (p *Parser) parseYield() ast.Expr {
	start := p.curPos()
	p.advance() // yield
	if p.curIs(lexer.FROM) {
		p.advance()
		v := p.parseExpr(LOWEST)
		return &ast.Yield{Value: v, YieldFrom: true, Pos: start}
	}
	if p.curIs(lexer.NEWLINE) || p.curIs(lexer.RPAREN) || p.curIs(lexer.EOF) {
		return &ast.Yield{Pos: start}
	}
	return &ast.Yield{Value: p.parseExprList(), Pos: start}
}

// parseStringLiteral handles both plain strings and f-strings, splitting an
// f-string's `{expr[!conv][:format]}` runs into literal/expression parts
// (spec.md §4.2) by re-lexing/re-parsing each braced run with a fresh
// Parser over the embedded source.
func (p *Parser) parseStringLiteral() ast.Expr {
	start := p.curPos()
	tok := p.cur
	p.advance()
	if !tok.IsFString {
		kind := ast.LitString
		if tok.IsBytes {
			kind = ast.LitBytes
		}
		return &ast.Literal{Kind: kind, Value: tok.Literal, Pos: start}
	}
	return &ast.FString{Parts: splitFStringParts(tok.Literal, tok.File, tok.Line), Pos: start}
}

func splitFStringParts(src, file string, line int) []ast.FStringPart {
	var parts []ast.FStringPart
	var lit strings.Builder
	runes := []rune(src)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		if ch == '{' && i+1 < len(runes) && runes[i+1] == '{' {
			lit.WriteRune('{')
			i += 2
			continue
		}
		if ch == '}' && i+1 < len(runes) && runes[i+1] == '}' {
			lit.WriteRune('}')
			i += 2
			continue
		}
		if ch == '{' {
			if lit.Len() > 0 {
				parts = append(parts, ast.FStringPart{Literal: lit.String()})
				lit.Reset()
			}
			depth := 1
			j := i + 1
			for j < len(runes) && depth > 0 {
				if runes[j] == '{' {
					depth++
				} else if runes[j] == '}' {
					depth--
					if depth == 0 {
						break
					}
				}
				j++
			}
			inner := string(runes[i+1 : j])
			exprSrc, format := splitFormatSpec(inner)
			sub := New(lexer.New(exprSrc, file), file)
			expr := sub.parseExpr(LOWEST)
			parts = append(parts, ast.FStringPart{Expr: expr, Format: format})
			i = j + 1
			continue
		}
		lit.WriteRune(ch)
		i++
	}
	if lit.Len() > 0 {
		parts = append(parts, ast.FStringPart{Literal: lit.String()})
	}
	return parts
}

// splitFormatSpec separates `expr!r:format` into the expression source and
// trailing format spec, ignoring colons nested inside brackets.
func splitFormatSpec(inner string) (string, string) {
	stripConv := func(s string) string {
		s = strings.TrimSpace(s)
		if n := len(s); n >= 2 && s[n-2] == '!' && strings.ContainsRune("rsa", rune(s[n-1])) {
			s = s[:n-2]
		}
		return strings.TrimSpace(s)
	}
	depth := 0
	for i, r := range inner {
		switch r {
		case '[', '(', '{':
			depth++
		case ']', ')', '}':
			depth--
		case ':':
			if depth == 0 {
				return stripConv(inner[:i]), inner[i+1:]
			}
		}
	}
	return stripConv(inner), ""
}
