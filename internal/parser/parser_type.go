package parser

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/lexer"
)

// parseType parses a type expression, then wraps it in NullableType if
// followed by a postfix `?`.
func (p *Parser) parseType() ast.TypeExpr {
	base := p.parseBaseType()
	if p.curTokenIs(lexer.QUESTION) {
		pos := p.curPos()
		p.nextToken()
		return &ast.NullableType{Inner: base, Pos: pos}
	}
	return base
}

func (p *Parser) parseBaseType() ast.TypeExpr {
	pos := p.curPos()
	switch p.curToken.Type {
	case lexer.LBRACKET:
		p.nextToken() // consume '['
		elem := p.parseType()
		if p.curTokenIs(lexer.COLON) {
			p.nextToken()
			val := p.parseType()
			if !p.curTokenIs(lexer.RBRACKET) {
				p.errorf("expected ']' to close map type")
			}
			p.nextToken()
			return &ast.MapType{Key: elem, Value: val, Pos: pos}
		}
		if !p.curTokenIs(lexer.RBRACKET) {
			p.errorf("expected ']' to close array type")
		}
		p.nextToken()
		return &ast.ArrayType{Elem: elem, Pos: pos}
	case lexer.LBRACE:
		p.nextToken() // consume '{'
		elem := p.parseType()
		if !p.curTokenIs(lexer.RBRACE) {
			p.errorf("expected '}' to close set type")
		}
		p.nextToken()
		return &ast.SetType{Elem: elem, Pos: pos}
	case lexer.FUNC:
		p.nextToken() // consume 'fn'
		if !p.expectPeekIfNot(lexer.LPAREN) {
			return &ast.FuncType{Pos: pos}
		}
		p.nextToken() // consume '('
		var params []ast.TypeExpr
		for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
			params = append(params, p.parseType())
			if p.curTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		p.nextToken() // consume ')'
		var ret ast.TypeExpr
		if !p.curTokenIs(lexer.LBRACE) && !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.COMMA) &&
			!p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.SEMICOLON) && !p.curTokenIs(lexer.EOF) {
			ret = p.parseType()
		}
		return &ast.FuncType{Params: params, Return: ret, Pos: pos}
	case lexer.IDENT:
		name := p.curToken.Literal
		p.nextToken()
		var args []ast.TypeExpr
		if p.curTokenIs(lexer.LT) {
			p.nextToken() // consume '<'
			for !p.curTokenIs(lexer.GT) && !p.curTokenIs(lexer.EOF) {
				args = append(args, p.parseType())
				if p.curTokenIs(lexer.COMMA) {
					p.nextToken()
				}
			}
			p.nextToken() // consume '>'
		}
		return &ast.NamedType{Name: name, Args: args, Pos: pos}
	default:
		p.errorf("expected a type, got %s (%q)", p.curToken.Type, p.curToken.Literal)
		p.nextToken()
		return &ast.NamedType{Name: "void", Pos: pos}
	}
}
