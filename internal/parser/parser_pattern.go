package parser

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/lexer"
)

// parsePattern parses one match-arm pattern: `_`, a literal, a bound
// identifier, or an enum variant (optionally qualified and/or
// binding data-carrying fields by name).
func (p *Parser) parsePattern() ast.Pattern {
	pos := p.curPos()

	switch p.curToken.Type {
	case lexer.IDENT:
		if p.curToken.Literal == "_" {
			p.nextToken()
			return &ast.WildcardPattern{Pos: pos}
		}
		name := p.curToken.Literal
		p.nextToken()
		if p.curTokenIs(lexer.DCOLON) {
			p.nextToken() // consume '::'
			variant := p.curToken.Literal
			p.nextToken()
			return p.finishVariantPattern(name, variant, pos)
		}
		if p.curTokenIs(lexer.LPAREN) {
			return p.finishVariantPattern("", name, pos)
		}
		if isCapitalized(name) {
			return &ast.VariantPattern{VariantName: name, Pos: pos}
		}
		return &ast.Identifier{Name: name, Pos: pos}
	case lexer.INT:
		v := parseIntValue(p.curToken.Literal)
		p.nextToken()
		return &ast.LiteralPattern{Value: &ast.Literal{Kind: ast.IntLit, Value: v, Pos: pos}, Pos: pos}
	case lexer.FLOAT:
		v := parseFloatValue(p.curToken.Literal)
		p.nextToken()
		return &ast.LiteralPattern{Value: &ast.Literal{Kind: ast.FloatLit, Value: v, Pos: pos}, Pos: pos}
	case lexer.STRING:
		v := p.curToken.Literal
		p.nextToken()
		return &ast.LiteralPattern{Value: &ast.Literal{Kind: ast.StringLit, Value: v, Pos: pos}, Pos: pos}
	case lexer.TRUE, lexer.FALSE:
		v := p.curTokenIs(lexer.TRUE)
		p.nextToken()
		return &ast.LiteralPattern{Value: &ast.Literal{Kind: ast.BoolLit, Value: v, Pos: pos}, Pos: pos}
	default:
		p.errorf("expected a pattern, got %s (%q)", p.curToken.Type, p.curToken.Literal)
		p.nextToken()
		return &ast.WildcardPattern{Pos: pos}
	}
}

// finishVariantPattern parses the optional `(bind1, bind2, ...)` bind
// list once the enum/variant names are already consumed.
func (p *Parser) finishVariantPattern(enumName, variantName string, pos ast.Pos) ast.Pattern {
	var binds []string
	if p.curTokenIs(lexer.LPAREN) {
		p.nextToken() // consume '('
		for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
			binds = append(binds, p.curToken.Literal)
			p.nextToken()
			if p.curTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		p.nextToken() // consume ')'
	}
	return &ast.VariantPattern{EnumName: enumName, VariantName: variantName, Binds: binds, Pos: pos}
}
