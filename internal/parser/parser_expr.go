package parser

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/lexer"
)

// Precedence tiers, lowest to highest binding power.
const (
	LOWEST int = iota
	ORPREC
	ANDPREC
	EQUALS
	RELATIONAL
	RANGEPREC
	SUM
	PRODUCT
	CAST
	PREFIX
	POSTFIX // ?, !, ., (, [
)

func tokenPrecedence(t lexer.TokenType) int {
	switch t {
	case lexer.CATCH:
		return LOWEST + 1
	case lexer.OR:
		return ORPREC
	case lexer.AND:
		return ANDPREC
	case lexer.EQ, lexer.NEQ:
		return EQUALS
	case lexer.LT, lexer.GT, lexer.LTE, lexer.GTE:
		return RELATIONAL
	case lexer.DOTDOT:
		return RANGEPREC
	case lexer.PLUS, lexer.MINUS:
		return SUM
	case lexer.STAR, lexer.SLASH, lexer.PERCENT:
		return PRODUCT
	case lexer.AS:
		return CAST
	case lexer.QUESTION, lexer.BANG, lexer.DOT, lexer.LPAREN, lexer.LBRACKET:
		return POSTFIX
	default:
		return LOWEST
	}
}

// parseExpr is the Pratt entry point: parse a prefix expression, then
// keep folding in infix/postfix operators that bind tighter than
// precedence.
func (p *Parser) parseExpr(precedence int) ast.Expr {
	prefix, ok := p.prefixParseFns[p.curToken.Type]
	if !ok {
		p.errorf("unexpected token %s (%q) in expression", p.curToken.Type, p.curToken.Literal)
		pos := p.curPos()
		p.nextToken()
		return &ast.Literal{Kind: ast.IntLit, Value: int64(0), Pos: pos}
	}
	left := prefix()

	for precedence < tokenPrecedence(p.curToken.Type) {
		if p.curTokenIs(lexer.CATCH) {
			left = p.parseCatchExpr(left)
			continue
		}
		infix, ok := p.infixParseFns[p.curToken.Type]
		if !ok {
			return left
		}
		left = infix(left)
	}
	return left
}

func (p *Parser) parseIdentifierOrCallOrStruct() ast.Expr {
	pos := p.curPos()
	name := p.curToken.Literal
	p.nextToken()

	if p.curTokenIs(lexer.LPAREN) {
		p.nextToken() // consume '('
		args := p.parseExprList(lexer.RPAREN)
		p.nextToken() // consume ')'
		return &ast.FreeCall{Callee: name, Args: args, Pos: pos}
	}
	if isCapitalized(name) && p.curTokenIs(lexer.LBRACE) {
		return p.parseStructLiteral(name, pos)
	}
	return &ast.Identifier{Name: name, Pos: pos}
}

// parseSelfExpr treats `self` as an ordinary identifier reference
// inside a method body; the receiver binding itself is established
// separately, by parseSelfReceiver, when the method's parameter list
// is parsed.
func (p *Parser) parseSelfExpr() ast.Expr {
	pos := p.curPos()
	p.nextToken()
	return &ast.Identifier{Name: "self", Pos: pos}
}

func isCapitalized(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}

func (p *Parser) parseStructLiteral(className string, pos ast.Pos) ast.Expr {
	p.nextToken() // consume '{'
	var fields []ast.StructFieldInit
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		fname := p.curToken.Literal
		p.nextToken()
		p.expectPeekNoAdvanceColon()
		fields = append(fields, ast.StructFieldInit{Name: fname, Value: p.parseExpr(LOWEST)})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return &ast.StructLit{ClassName: className, Fields: fields, Pos: pos}
}

func (p *Parser) parseExprList(end lexer.TokenType) []ast.Expr {
	var list []ast.Expr
	for !p.curTokenIs(end) && !p.curTokenIs(lexer.EOF) {
		list = append(list, p.parseExpr(LOWEST))
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	return list
}

func (p *Parser) parseIntLiteral() ast.Expr {
	pos := p.curPos()
	v := parseIntValue(p.curToken.Literal)
	p.nextToken()
	return &ast.Literal{Kind: ast.IntLit, Value: v, Pos: pos}
}

func (p *Parser) parseFloatLiteral() ast.Expr {
	pos := p.curPos()
	v := parseFloatValue(p.curToken.Literal)
	p.nextToken()
	return &ast.Literal{Kind: ast.FloatLit, Value: v, Pos: pos}
}

func (p *Parser) parseStringLiteral() ast.Expr {
	pos := p.curPos()
	v := p.curToken.Literal
	p.nextToken()
	return &ast.Literal{Kind: ast.StringLit, Value: v, Pos: pos}
}

func (p *Parser) parseBoolLiteral() ast.Expr {
	pos := p.curPos()
	v := p.curTokenIs(lexer.TRUE)
	p.nextToken()
	return &ast.Literal{Kind: ast.BoolLit, Value: v, Pos: pos}
}

func (p *Parser) parseNoneLiteral() ast.Expr {
	pos := p.curPos()
	p.nextToken()
	return &ast.Literal{Kind: ast.NoneLit, Value: nil, Pos: pos}
}

func (p *Parser) parseUnaryExpr() ast.Expr {
	pos := p.curPos()
	op := p.curToken.Literal
	p.nextToken()
	x := p.parseExpr(PREFIX)
	return &ast.UnaryOp{Op: op, X: x, Pos: pos}
}

func (p *Parser) parseGroupedExpr() ast.Expr {
	p.nextToken() // consume '('
	x := p.parseExpr(LOWEST)
	if !p.curTokenIs(lexer.RPAREN) {
		p.errorf("expected ')' to close grouped expression")
	}
	p.nextToken() // consume ')'
	return x
}

// parseBracketLiteral disambiguates `[]`, `[e1, e2]` (array) and
// `[k1: v1, ...]` (map).
func (p *Parser) parseBracketLiteral() ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '['
	if p.curTokenIs(lexer.RBRACKET) {
		p.nextToken()
		return &ast.ArrayLit{Pos: pos}
	}
	first := p.parseExpr(LOWEST)
	if p.curTokenIs(lexer.COLON) {
		p.nextToken()
		val := p.parseExpr(LOWEST)
		entries := []ast.MapEntry{{Key: first, Value: val}}
		for p.curTokenIs(lexer.COMMA) {
			p.nextToken()
			if p.curTokenIs(lexer.RBRACKET) {
				break
			}
			k := p.parseExpr(LOWEST)
			p.expectPeekNoAdvanceColon()
			v := p.parseExpr(LOWEST)
			entries = append(entries, ast.MapEntry{Key: k, Value: v})
		}
		p.nextToken() // consume ']'
		return &ast.MapLit{Entries: entries, Pos: pos}
	}
	elems := []ast.Expr{first}
	for p.curTokenIs(lexer.COMMA) {
		p.nextToken()
		if p.curTokenIs(lexer.RBRACKET) {
			break
		}
		elems = append(elems, p.parseExpr(LOWEST))
	}
	p.nextToken() // consume ']'
	return &ast.ArrayLit{Elems: elems, Pos: pos}
}

func (p *Parser) parseSetLiteral() ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '{'
	var elems []ast.Expr
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		elems = append(elems, p.parseExpr(LOWEST))
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return &ast.SetLit{Elems: elems, Pos: pos}
}

// parseLambda parses `fn(params) Ret? => expr` or `fn(params) Ret? { block }`.
func (p *Parser) parseLambda() ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume 'fn'
	if !p.expectPeekIfNot(lexer.LPAREN) {
		return &ast.LambdaExpr{Pos: pos}
	}
	p.nextToken() // consume '('
	params := p.parseParams()
	p.nextToken() // consume ')'

	var ret ast.TypeExpr
	if !p.curTokenIs(lexer.FARROW) && !p.curTokenIs(lexer.LBRACE) {
		ret = p.parseType()
	}

	var body ast.Expr
	if p.curTokenIs(lexer.FARROW) {
		p.nextToken() // consume '=>'
		body = p.parseExpr(LOWEST)
	} else {
		body = p.parseBlock()
	}
	return &ast.LambdaExpr{Params: params, Return: ret, Body: body, Pos: pos}
}

func (p *Parser) parseSpawnExpr() ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume 'spawn'
	callee := p.curToken.Literal
	p.nextToken()
	if !p.expectPeekIfNot(lexer.LPAREN) {
		return &ast.SpawnExpr{Callee: callee, Pos: pos}
	}
	p.nextToken() // consume '('
	args := p.parseExprList(lexer.RPAREN)
	p.nextToken() // consume ')'
	return &ast.SpawnExpr{Callee: callee, Args: args, Pos: pos}
}

// parseMatchExpr parses `match scrutinee { pattern => body, ... }`.
// MatchStmt doubles as an expression (ast.Stmt and ast.Expr).
func (p *Parser) parseMatchExpr() ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume 'match'
	scrutinee := p.parseExpr(LOWEST)
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.MatchStmt{Scrutinee: scrutinee, Pos: pos}
	}
	p.nextToken() // consume '{'
	var arms []*ast.MatchArm
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		armPos := p.curPos()
		pat := p.parsePattern()
		if !p.expectPeekIfNot(lexer.FARROW) {
			break
		}
		p.nextToken() // consume '=>'
		body := p.parseExpr(LOWEST)
		arms = append(arms, &ast.MatchArm{Pattern: pat, Body: body, Pos: armPos})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return &ast.MatchStmt{Scrutinee: scrutinee, Arms: arms, Pos: pos}
}

func (p *Parser) parseBinaryExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	op := p.curToken.Literal
	prec := tokenPrecedence(p.curToken.Type)
	p.nextToken()
	right := p.parseExpr(prec)
	return &ast.BinaryOp{Op: op, Left: left, Right: right, Pos: pos}
}

func (p *Parser) parseRangeExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '..'
	hi := p.parseExpr(RANGEPREC)
	return &ast.RangeExpr{Lo: left, Hi: hi, Pos: pos}
}

func (p *Parser) parseCastExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume 'as'
	typ := p.parseType()
	return &ast.CastExpr{X: left, Type: typ, Pos: pos}
}

func (p *Parser) parseNullPropagate(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '?'
	return &ast.NullPropagate{X: left, Pos: pos}
}

func (p *Parser) parseErrorPropagate(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '!'
	return &ast.ErrorPropagate{X: left, Pos: pos}
}

func (p *Parser) parseFieldOrMethod(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '.'
	name := p.curToken.Literal
	p.nextToken()
	if p.curTokenIs(lexer.LPAREN) {
		p.nextToken() // consume '('
		args := p.parseExprList(lexer.RPAREN)
		p.nextToken() // consume ')'
		return &ast.MethodCall{Target: left, Method: name, Args: args, Pos: pos}
	}
	return &ast.FieldAccess{Target: left, Field: name, Pos: pos}
}

// parseCallOfExpr handles a call applied to a non-identifier callee,
// e.g. `(f)(x)` or a method-call result invoked again.
func (p *Parser) parseCallOfExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '('
	args := p.parseExprList(lexer.RPAREN)
	p.nextToken() // consume ')'
	if id, ok := left.(*ast.Identifier); ok {
		return &ast.FreeCall{Callee: id.Name, Args: args, Pos: pos}
	}
	return &ast.MethodCall{Target: left, Method: "call", Args: args, Pos: pos}
}

func (p *Parser) parseIndexExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume '['
	key := p.parseExpr(LOWEST)
	if !p.curTokenIs(lexer.RBRACKET) {
		p.errorf("expected ']' to close index expression")
	}
	p.nextToken() // consume ']'
	return &ast.IndexExpr{Target: left, Key: key, Pos: pos}
}

// parseCatchExpr parses `expr catch ident { block }` or the shorthand
// `expr catch default`.
func (p *Parser) parseCatchExpr(left ast.Expr) ast.Expr {
	pos := p.curPos()
	p.nextToken() // consume 'catch'
	if p.curTokenIs(lexer.IDENT) && p.peekTokenIs(lexer.LBRACE) {
		ident := p.curToken.Literal
		p.nextToken() // consume ident
		handler := p.parseBlock()
		return &ast.CatchExpr{X: left, Ident: ident, Handler: handler, Pos: pos}
	}
	def := p.parseExpr(LOWEST + 1)
	return &ast.CatchExpr{X: left, Default: def, Pos: pos}
}

// parseInterpString splits a raw INTERP token body into literal and
// `${expr}` segments, parsing each embedded expression with a fresh
// sub-parser over just that span.
func (p *Parser) parseInterpString() ast.Expr {
	pos := p.curPos()
	raw := p.curToken.Literal
	p.nextToken()

	var parts []ast.InterpPart
	var lit []byte
	i := 0
	for i < len(raw) {
		if raw[i] == '\\' && i+1 < len(raw) {
			lit = append(lit, unescapeByte(raw[i+1]))
			i += 2
			continue
		}
		if raw[i] == '$' && i+1 < len(raw) && raw[i+1] == '{' {
			if len(lit) > 0 {
				parts = append(parts, ast.InterpPart{Literal: string(lit)})
				lit = nil
			}
			depth := 1
			j := i + 2
			for j < len(raw) && depth > 0 {
				switch raw[j] {
				case '{':
					depth++
				case '}':
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			sub := raw[i+2 : j]
			parts = append(parts, ast.InterpPart{Expr: parseSubExpr(sub, p.file)})
			i = j + 1
			continue
		}
		lit = append(lit, raw[i])
		i++
	}
	if len(lit) > 0 {
		parts = append(parts, ast.InterpPart{Literal: string(lit)})
	}
	return &ast.InterpString{Parts: parts, Pos: pos}
}

func unescapeByte(b byte) byte {
	switch b {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	default:
		return b
	}
}

func parseSubExpr(src, file string) ast.Expr {
	sub := New(lexer.New(src, file), file)
	return sub.parseExpr(LOWEST)
}
