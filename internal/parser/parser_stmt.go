package parser

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/lexer"
)

func (p *Parser) parseBlock() *ast.BlockExpr {
	pos := p.curPos()
	if !p.curTokenIs(lexer.LBRACE) {
		p.errorf("expected '{' to start a block, got %s", p.curToken.Type)
		return &ast.BlockExpr{Pos: pos}
	}
	p.nextToken() // consume '{'
	var stmts []ast.Stmt
	for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
		s := p.parseStmt()
		if s != nil {
			stmts = append(stmts, s)
		}
	}
	p.nextToken() // consume '}'
	return &ast.BlockExpr{Stmts: stmts, Pos: pos}
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curToken.Type {
	case lexer.LET:
		return p.parseLetStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.WHILE:
		return p.parseWhileStmt()
	case lexer.FOR:
		return p.parseForStmt()
	case lexer.BREAK:
		pos := p.curPos()
		p.nextToken()
		return &ast.BreakStmt{Pos: pos}
	case lexer.CONTINUE:
		pos := p.curPos()
		p.nextToken()
		return &ast.ContinueStmt{Pos: pos}
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.RAISE:
		return p.parseRaiseStmt()
	case lexer.YIELD:
		pos := p.curPos()
		p.nextToken()
		return &ast.YieldStmt{Value: p.parseExpr(LOWEST), Pos: pos}
	case lexer.SCOPE:
		return p.parseScopeStmt()
	case lexer.MATCH:
		return p.parseMatchExpr().(*ast.MatchStmt)
	default:
		return p.parseExprOrAssignStmt()
	}
}

func (p *Parser) parseLetStmt() *ast.LetStmt {
	pos := p.curPos()
	p.nextToken() // consume 'let'
	name := p.curToken.Literal
	p.nextToken()
	var typ ast.TypeExpr
	if p.curTokenIs(lexer.COLON) {
		p.nextToken()
		typ = p.parseType()
	}
	if !p.expectPeekIfNot(lexer.ASSIGN) {
		return &ast.LetStmt{Name: name, Type: typ, Pos: pos}
	}
	p.nextToken() // consume '='
	value := p.parseExpr(LOWEST)
	return &ast.LetStmt{Name: name, Type: typ, Value: value, Pos: pos}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	pos := p.curPos()
	p.nextToken() // consume 'if'
	cond := p.parseExpr(LOWEST)
	then := p.parseBlock()
	var els ast.Stmt
	if p.curTokenIs(lexer.ELSE) {
		p.nextToken() // consume 'else'
		if p.curTokenIs(lexer.IF) {
			els = p.parseIfStmt()
		} else {
			els = &ast.ExprStmt{X: p.parseBlock(), Pos: p.curPos()}
		}
	}
	return &ast.IfStmt{Cond: cond, Then: then, Else: els, Pos: pos}
}

func (p *Parser) parseWhileStmt() *ast.WhileStmt {
	pos := p.curPos()
	p.nextToken() // consume 'while'
	cond := p.parseExpr(LOWEST)
	body := p.parseBlock()
	return &ast.WhileStmt{Cond: cond, Body: body, Pos: pos}
}

func (p *Parser) parseForStmt() *ast.ForStmt {
	pos := p.curPos()
	p.nextToken() // consume 'for'
	varName := p.curToken.Literal
	p.nextToken()
	if !p.expectPeekIfNot(lexer.IN) {
		return &ast.ForStmt{Var: varName, Pos: pos}
	}
	p.nextToken() // consume 'in'
	iterand := p.parseExpr(LOWEST)
	body := p.parseBlock()
	return &ast.ForStmt{Var: varName, Iterand: iterand, Body: body, Pos: pos}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	pos := p.curPos()
	p.nextToken() // consume 'return'
	if p.curTokenIs(lexer.RBRACE) {
		return &ast.ReturnStmt{Pos: pos}
	}
	return &ast.ReturnStmt{Value: p.parseExpr(LOWEST), Pos: pos}
}

func (p *Parser) parseRaiseStmt() *ast.RaiseStmt {
	pos := p.curPos()
	p.nextToken() // consume 'raise'
	errType := p.curToken.Literal
	p.nextToken()
	fields := map[string]ast.Expr{}
	if p.curTokenIs(lexer.LBRACE) {
		p.nextToken() // consume '{'
		for !p.curTokenIs(lexer.RBRACE) && !p.curTokenIs(lexer.EOF) {
			fname := p.curToken.Literal
			p.nextToken()
			p.expectPeekNoAdvanceColon()
			fields[fname] = p.parseExpr(LOWEST)
			if p.curTokenIs(lexer.COMMA) {
				p.nextToken()
			}
		}
		p.nextToken() // consume '}'
	}
	return &ast.RaiseStmt{ErrorType: errType, Fields: fields, Pos: pos}
}

func (p *Parser) parseScopeStmt() *ast.ScopeStmt {
	pos := p.curPos()
	p.nextToken() // consume 'scope'
	if !p.expectPeekIfNot(lexer.LPAREN) {
		return &ast.ScopeStmt{Pos: pos}
	}
	p.nextToken() // consume '('
	seed := p.parseExpr(LOWEST)
	if !p.curTokenIs(lexer.RPAREN) {
		p.errorf("expected ')' to close scope seed")
	}
	p.nextToken() // consume ')'
	body := p.parseBlock()
	return &ast.ScopeStmt{Seed: seed, Body: body, Pos: pos}
}

// parseExprOrAssignStmt parses an expression statement, promoting it
// to an AssignStmt if immediately followed by `=`.
func (p *Parser) parseExprOrAssignStmt() ast.Stmt {
	pos := p.curPos()
	x := p.parseExpr(LOWEST)
	if p.curTokenIs(lexer.ASSIGN) {
		p.nextToken() // consume '='
		value := p.parseExpr(LOWEST)
		return &ast.AssignStmt{Target: x, Value: value, Pos: pos}
	}
	return &ast.ExprStmt{X: x, Pos: pos}
}
