package parser

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/lexer"
)

// parseDecl dispatches on the current token to one of the module-item
// productions (spec §6's Decl variant list).
func (p *Parser) parseDecl() ast.Decl {
	pub := false
	if p.curTokenIs(lexer.PUB) {
		pub = true
		p.nextToken()
	}

	switch p.curToken.Type {
	case lexer.CLASS:
		return p.parseClassDecl(pub)
	case lexer.TRAIT:
		return p.parseTraitDecl(pub)
	case lexer.ENUM:
		return p.parseEnumDecl(pub)
	case lexer.ERROR:
		return p.parseErrorDecl(pub)
	case lexer.FUNC:
		return p.parseFuncDecl(pub)
	case lexer.APP:
		return p.parseAppDecl()
	case lexer.STAGE:
		return p.parseStageDecl()
	case lexer.SYSTEM:
		return p.parseSystemDecl()
	default:
		p.errorf("expected a declaration, got %s (%q)", p.curToken.Type, p.curToken.Literal)
		return nil
	}
}

// parseGenericParams parses an optional `<T, U: Bound1 + Bound2>` list.
func (p *Parser) parseGenericParams() []*ast.GenericParam {
	if !p.curTokenIs(lexer.LT) {
		return nil
	}
	p.nextToken() // consume '<'
	var params []*ast.GenericParam
	for !p.curTokenIs(lexer.GT) && !p.curTokenIs(lexer.EOF) {
		pos := p.curPos()
		name := p.curToken.Literal
		p.nextToken()
		var bounds []string
		if p.curTokenIs(lexer.COLON) {
			p.nextToken()
			bounds = append(bounds, p.curToken.Literal)
			p.nextToken()
			for p.curTokenIs(lexer.PLUS) {
				p.nextToken()
				bounds = append(bounds, p.curToken.Literal)
				p.nextToken()
			}
		}
		params = append(params, &ast.GenericParam{Name: name, Bounds: bounds, Pos: pos})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '>'
	return params
}

// parseBracketDeps parses an optional `[name: Type, ...]` constructor
// dependency list on a class/app/stage header.
func (p *Parser) parseBracketDeps() []*ast.BracketDep {
	if !p.curTokenIs(lexer.LBRACKET) {
		return nil
	}
	p.nextToken() // consume '['
	var deps []*ast.BracketDep
	for !p.curTokenIs(lexer.RBRACKET) && !p.curTokenIs(lexer.EOF) {
		pos := p.curPos()
		name := p.curToken.Literal
		p.nextToken()
		p.expectPeekNoAdvanceColon()
		typ := p.parseType()
		deps = append(deps, &ast.BracketDep{Name: name, Type: typ, Pos: pos})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume ']'
	return deps
}

// expectPeekNoAdvanceColon consumes a ':' that must be the current
// token (used after reading a bound name in a field-like list).
func (p *Parser) expectPeekNoAdvanceColon() {
	if p.curTokenIs(lexer.COLON) {
		p.nextToken()
		return
	}
	p.errorf("expected ':', got %s", p.curToken.Type)
}

func (p *Parser) parseIdentList() []string {
	var names []string
	names = append(names, p.curToken.Literal)
	p.nextToken()
	for p.curTokenIs(lexer.COMMA) {
		p.nextToken()
		names = append(names, p.curToken.Literal)
		p.nextToken()
	}
	return names
}

func (p *Parser) parseField() *ast.Field {
	pos := p.curPos()
	name := p.curToken.Literal
	p.nextToken()
	p.expectPeekNoAdvanceColon()
	typ := p.parseType()
	return &ast.Field{Name: name, Type: typ, Pos: pos}
}

func (p *Parser) parseParams() []*ast.Param {
	var params []*ast.Param
	for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
		pos := p.curPos()
		name := p.curToken.Literal
		p.nextToken()
		p.expectPeekNoAdvanceColon()
		typ := p.parseType()
		params = append(params, &ast.Param{Name: name, Type: typ, Pos: pos})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	return params
}

// parseSelfReceiver consumes a leading `self` or `mut self` receiver,
// if present, and reports whether it was `mut self`.
func (p *Parser) parseSelfReceiver() bool {
	mut := false
	if p.curTokenIs(lexer.MUT) {
		mut = true
		p.nextToken()
	}
	if p.curTokenIs(lexer.SELF) {
		p.nextToken()
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	return mut
}

func (p *Parser) parseContract() *ast.Contract {
	var c ast.Contract
	hasContract := false
	if p.curTokenIs(lexer.REQUIRES) {
		p.nextToken()
		c.Requires = p.parseExpr(LOWEST)
		hasContract = true
	}
	if p.curTokenIs(lexer.ENSURES) {
		p.nextToken()
		c.Ensures = p.parseExpr(LOWEST)
		hasContract = true
	}
	if !hasContract {
		return nil
	}
	return &c
}

// parseMethodDecl parses `fn name<G>(self, params...) Ret { body }`,
// where Body is nil for a trait method signature with no default.
func (p *Parser) parseMethodDecl() *ast.MethodDecl {
	pos := p.curPos()
	p.nextToken() // consume 'fn'
	name := p.curToken.Literal
	p.nextToken()

	generics := p.parseGenericParams()

	if !p.curTokenIs(lexer.LPAREN) {
		p.errorf("expected '(' after method name %s", name)
		return nil
	}
	p.nextToken() // consume '('
	selfMut := p.parseSelfReceiver()
	params := p.parseParams()
	if !p.curTokenIs(lexer.RPAREN) {
		p.errorf("expected ')' to close parameter list")
	}
	p.nextToken() // consume ')'

	var ret ast.TypeExpr
	if !p.curTokenIs(lexer.LBRACE) && !p.curTokenIs(lexer.REQUIRES) && !p.curTokenIs(lexer.ENSURES) &&
		!p.curTokenIs(lexer.SEMICOLON) && !p.curTokenIs(lexer.RBRACE) {
		ret = p.parseType()
	}
	contract := p.parseContract()

	var body *ast.BlockExpr
	if p.curTokenIs(lexer.LBRACE) {
		body = p.parseBlock()
	} else if p.curTokenIs(lexer.SEMICOLON) {
		p.nextToken()
	}

	return &ast.MethodDecl{
		Name: name, Generics: generics, Params: params, SelfMut: selfMut,
		Return: ret, Body: body, Contract: contract, Pos: pos,
	}
}

func (p *Parser) parseMethodList() []*ast.MethodDecl {
	var methods []*ast.MethodDecl
	for p.curTokenIs(lexer.FUNC) {
		m := p.parseMethodDecl()
		if m != nil {
			methods = append(methods, m)
		}
	}
	return methods
}

func (p *Parser) parseClassDecl(pub bool) *ast.ClassDecl {
	pos := p.curPos()
	p.nextToken() // consume 'class'
	name := p.curToken.Literal
	p.nextToken()

	generics := p.parseGenericParams()
	deps := p.parseBracketDeps()

	var uses, implements []string
	if p.curTokenIs(lexer.USES) {
		p.nextToken()
		uses = p.parseIdentList()
	}
	if p.curTokenIs(lexer.IMPL) {
		p.nextToken()
		implements = p.parseIdentList()
	}

	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.ClassDecl{Name: name, Pub: pub, Pos: pos}
	}
	p.nextToken() // consume '{'

	var fields []*ast.Field
	var invariants []ast.Expr
	var methods []*ast.MethodDecl
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		switch {
		case p.curTokenIs(lexer.FUNC):
			methods = append(methods, p.parseMethodDecl())
		case p.curTokenIs(lexer.INVARIANT):
			p.nextToken()
			invariants = append(invariants, p.parseExpr(LOWEST))
		case p.curTokenIs(lexer.IDENT):
			fields = append(fields, p.parseField())
		default:
			p.errorf("unexpected token %s in class body", p.curToken.Type)
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'

	return &ast.ClassDecl{
		Name: name, Generics: generics, Fields: fields, BracketDeps: deps,
		Uses: uses, Methods: methods, Implements: implements, Invariants: invariants,
		Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()},
	}
}

func (p *Parser) parseTraitDecl(pub bool) *ast.TraitDecl {
	pos := p.curPos()
	p.nextToken() // consume 'trait'
	name := p.curToken.Literal
	p.nextToken()
	generics := p.parseGenericParams()
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.TraitDecl{Name: name, Pub: pub, Pos: pos}
	}
	p.nextToken() // consume '{'
	methods := p.parseMethodList()
	if !p.curTokenIs(lexer.RBRACE) {
		p.errorf("expected '}' to close trait %s", name)
	}
	p.nextToken()
	return &ast.TraitDecl{Name: name, Generics: generics, Methods: methods, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseEnumDecl(pub bool) *ast.EnumDecl {
	pos := p.curPos()
	p.nextToken() // consume 'enum'
	name := p.curToken.Literal
	p.nextToken()
	generics := p.parseGenericParams()
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.EnumDecl{Name: name, Pub: pub, Pos: pos}
	}
	p.nextToken() // consume '{'
	var variants []*ast.EnumVariant
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		vpos := p.curPos()
		vname := p.curToken.Literal
		p.nextToken()
		var fields []*ast.Field
		if p.curTokenIs(lexer.LPAREN) {
			p.nextToken()
			for !p.curTokenIs(lexer.RPAREN) && !p.curTokenIs(lexer.EOF) {
				fields = append(fields, p.parseField())
				if p.curTokenIs(lexer.COMMA) {
					p.nextToken()
				}
			}
			p.nextToken() // consume ')'
		}
		variants = append(variants, &ast.EnumVariant{Name: vname, Fields: fields, Pos: vpos})
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return &ast.EnumDecl{Name: name, Generics: generics, Variants: variants, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseErrorDecl(pub bool) *ast.ErrorDecl {
	pos := p.curPos()
	p.nextToken() // consume 'error'
	name := p.curToken.Literal
	p.nextToken()
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.ErrorDecl{Name: name, Pub: pub, Pos: pos}
	}
	p.nextToken() // consume '{'
	var fields []*ast.Field
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		fields = append(fields, p.parseField())
		if p.curTokenIs(lexer.COMMA) {
			p.nextToken()
		}
	}
	p.nextToken() // consume '}'
	return &ast.ErrorDecl{Name: name, Fields: fields, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseFuncDecl(pub bool) *ast.FuncDecl {
	pos := p.curPos()
	p.nextToken() // consume 'fn'
	name := p.curToken.Literal
	p.nextToken()
	generics := p.parseGenericParams()
	if !p.expectPeekIfNot(lexer.LPAREN) {
		return &ast.FuncDecl{Name: name, Pub: pub, Pos: pos}
	}
	p.nextToken() // consume '('
	params := p.parseParams()
	if !p.curTokenIs(lexer.RPAREN) {
		p.errorf("expected ')' to close parameters of %s", name)
	}
	p.nextToken() // consume ')'

	var ret ast.TypeExpr
	if !p.curTokenIs(lexer.LBRACE) && !p.curTokenIs(lexer.REQUIRES) && !p.curTokenIs(lexer.ENSURES) {
		ret = p.parseType()
	}
	contract := p.parseContract()
	body := p.parseBlock()
	return &ast.FuncDecl{
		Name: name, Generics: generics, Params: params, Return: ret,
		Body: body, Contract: contract, Pub: pub, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()},
	}
}

func (p *Parser) parseAppDecl() *ast.AppDecl {
	pos := p.curPos()
	p.nextToken() // consume 'app'
	name := p.curToken.Literal
	p.nextToken()
	deps := p.parseBracketDeps()
	var ambient []string
	if p.curTokenIs(lexer.AMBIENT) {
		p.nextToken()
		ambient = p.parseIdentList()
	}
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.AppDecl{Name: name, Pos: pos}
	}
	p.nextToken() // consume '{'
	methods := p.parseMethodList()
	if !p.curTokenIs(lexer.RBRACE) {
		p.errorf("expected '}' to close app %s", name)
	}
	p.nextToken()
	return &ast.AppDecl{Name: name, BracketDeps: deps, Ambient: ambient, Methods: methods, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseStageDecl() *ast.StageDecl {
	pos := p.curPos()
	p.nextToken() // consume 'stage'
	name := p.curToken.Literal
	p.nextToken()
	deps := p.parseBracketDeps()
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.StageDecl{Name: name, Pos: pos}
	}
	p.nextToken() // consume '{'
	methods := p.parseMethodList()
	if !p.curTokenIs(lexer.RBRACE) {
		p.errorf("expected '}' to close stage %s", name)
	}
	p.nextToken()
	return &ast.StageDecl{Name: name, BracketDeps: deps, Methods: methods, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseSystemDecl() *ast.SystemDecl {
	pos := p.curPos()
	p.nextToken() // consume 'system'
	name := p.curToken.Literal
	p.nextToken()
	if !p.expectPeekIfNot(lexer.LBRACE) {
		return &ast.SystemDecl{Name: name, Pos: pos}
	}
	p.nextToken() // consume '{'
	members := p.parseIdentList()
	if !p.curTokenIs(lexer.RBRACE) {
		p.errorf("expected '}' to close system %s", name)
	}
	p.nextToken()
	return &ast.SystemDecl{Name: name, Members: members, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

// expectPeekIfNot reports and records an error if the current token
// isn't t, without consuming anything (caller decides how to recover).
func (p *Parser) expectPeekIfNot(t lexer.TokenType) bool {
	if p.curTokenIs(t) {
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.curToken.Type, p.curToken.Literal)
	return false
}
