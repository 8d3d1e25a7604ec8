// Package parser turns a token stream into the AST that the semantic
// middle-end consumes (internal/ast). It is a straightforward
// recursive-descent parser for declarations and statements, with a
// Pratt parser for expressions.
package parser

import (
	"fmt"
	"strconv"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/lexer"
)

// Parser consumes a token stream and builds an *ast.File.
type Parser struct {
	l    *lexer.Lexer
	file string

	curToken  lexer.Token
	peekToken lexer.Token

	errors []error

	prefixParseFns map[lexer.TokenType]prefixParseFn
	infixParseFns  map[lexer.TokenType]infixParseFn
}

type (
	prefixParseFn func() ast.Expr
	infixParseFn  func(ast.Expr) ast.Expr
)

// New creates a Parser reading from l.
func New(l *lexer.Lexer, file string) *Parser {
	p := &Parser{l: l, file: file, errors: []error{}}

	p.prefixParseFns = map[lexer.TokenType]prefixParseFn{
		lexer.IDENT:  p.parseIdentifierOrCallOrStruct,
		lexer.INT:    p.parseIntLiteral,
		lexer.FLOAT:  p.parseFloatLiteral,
		lexer.STRING: p.parseStringLiteral,
		lexer.INTERP: p.parseInterpString,
		lexer.TRUE:   p.parseBoolLiteral,
		lexer.FALSE:  p.parseBoolLiteral,
		lexer.NONE:   p.parseNoneLiteral,
		lexer.MINUS:  p.parseUnaryExpr,
		lexer.BANG:   p.parseUnaryExpr,
		lexer.LPAREN: p.parseGroupedExpr,
		lexer.LBRACKET: p.parseBracketLiteral,
		lexer.LBRACE: p.parseSetLiteral,
		lexer.FUNC:   p.parseLambda,
		lexer.SPAWN:  p.parseSpawnExpr,
		lexer.MATCH:  p.parseMatchExpr,
		lexer.SELF:   p.parseSelfExpr,
	}

	p.infixParseFns = map[lexer.TokenType]infixParseFn{
		lexer.PLUS: p.parseBinaryExpr, lexer.MINUS: p.parseBinaryExpr,
		lexer.STAR: p.parseBinaryExpr, lexer.SLASH: p.parseBinaryExpr, lexer.PERCENT: p.parseBinaryExpr,
		lexer.EQ: p.parseBinaryExpr, lexer.NEQ: p.parseBinaryExpr,
		lexer.LT: p.parseBinaryExpr, lexer.GT: p.parseBinaryExpr, lexer.LTE: p.parseBinaryExpr, lexer.GTE: p.parseBinaryExpr,
		lexer.AND: p.parseBinaryExpr, lexer.OR: p.parseBinaryExpr,
		lexer.DOTDOT:   p.parseRangeExpr,
		lexer.AS:       p.parseCastExpr,
		lexer.QUESTION: p.parseNullPropagate,
		lexer.BANG:     p.parseErrorPropagate,
		lexer.DOT:      p.parseFieldOrMethod,
		lexer.LPAREN:   p.parseCallOfExpr,
		lexer.LBRACKET: p.parseIndexExpr,
	}

	p.nextToken()
	p.nextToken()
	return p
}

func (p *Parser) Errors() []error { return p.errors }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) curPos() ast.Pos {
	return ast.Pos{Line: p.curToken.Line, Column: p.curToken.Column, File: p.file}
}

func (p *Parser) curTokenIs(t lexer.TokenType) bool  { return p.curToken.Type == t }
func (p *Parser) peekTokenIs(t lexer.TokenType) bool { return p.peekToken.Type == t }

func (p *Parser) expectPeek(t lexer.TokenType) bool {
	if p.peekTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s (%q)", t, p.peekToken.Type, p.peekToken.Literal)
	return false
}

func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	r := diag.New(diag.SyntaxError, "parse", msg).WithSpan(ast.Span{Start: p.curPos(), End: p.curPos()})
	p.errors = append(p.errors, diag.Wrap(r))
}

// ParseFile parses one complete source file, recovering from any
// internal panic as a syntax error rather than crashing the caller.
func (p *Parser) ParseFile() (file *ast.File) {
	defer func() {
		if r := recover(); r != nil {
			p.errorf("internal parser error: %v", r)
			if file == nil {
				file = &ast.File{Path: p.file, Pos: p.curPos()}
			}
		}
	}()

	file = &ast.File{Path: p.file, Pos: p.curPos()}

	if p.curTokenIs(lexer.MODULE) {
		file.Module = p.parseModuleDecl()
	}
	for p.curTokenIs(lexer.IMPORT) {
		file.Imports = append(file.Imports, p.parseImportDecl())
	}
	for !p.curTokenIs(lexer.EOF) {
		decl := p.parseDecl()
		if decl != nil {
			file.Decls = append(file.Decls, decl)
		} else {
			p.nextToken()
		}
	}
	return file
}

func (p *Parser) parseModuleDecl() *ast.ModuleDecl {
	pos := p.curPos()
	p.nextToken() // consume 'module'
	path := p.parseDottedPath()
	return &ast.ModuleDecl{Path: path, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseImportDecl() *ast.ImportDecl {
	pos := p.curPos()
	p.nextToken() // consume 'import'
	path := p.parseDottedPath()
	return &ast.ImportDecl{Path: path, Pos: pos, Span: ast.Span{Start: pos, End: p.curPos()}}
}

func (p *Parser) parseDottedPath() string {
	if !p.curTokenIs(lexer.IDENT) {
		p.errorf("expected identifier in path, got %s", p.curToken.Type)
		return ""
	}
	path := p.curToken.Literal
	p.nextToken()
	for p.curTokenIs(lexer.DOT) {
		p.nextToken()
		if p.curTokenIs(lexer.IDENT) {
			path += "." + p.curToken.Literal
			p.nextToken()
		}
	}
	return path
}

func parseIntValue(lit string) int64 {
	v, _ := strconv.ParseInt(lit, 10, 64)
	return v
}

func parseFloatValue(lit string) float64 {
	v, _ := strconv.ParseFloat(lit, 64)
	return v
}
