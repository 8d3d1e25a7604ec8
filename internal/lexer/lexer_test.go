package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func collectTypes(t *testing.T, src string) []TokenType {
	t.Helper()
	l := New(src, "t.pluto")
	var types []TokenType
	for {
		tok := l.NextToken()
		types = append(types, tok.Type)
		if tok.Type == EOF {
			break
		}
	}
	return types
}

func TestNextTokenScansDeclarationHeader(t *testing.T) {
	types := collectTypes(t, `pub class Box<T: Clone> [store: T] uses db {`)
	assert.Equal(t, []TokenType{
		PUB, CLASS, IDENT, LT, IDENT, COLON, IDENT, GT,
		LBRACKET, IDENT, COLON, IDENT, RBRACKET,
		USES, IDENT, LBRACE, EOF,
	}, types)
}

func TestNextTokenScansOperatorsByMaximalMunch(t *testing.T) {
	types := collectTypes(t, `a == b != c <= d >= e && f || !g -> h => i :: j .. k`)
	assert.Equal(t, []TokenType{
		IDENT, EQ, IDENT, NEQ, IDENT, LTE, IDENT, GTE, IDENT,
		AND, IDENT, OR, BANG, IDENT, ARROW, IDENT, FARROW, IDENT,
		DCOLON, IDENT, DOTDOT, IDENT, EOF,
	}, types)
}

func TestNextTokenScansNumberLiterals(t *testing.T) {
	l := New(`42 3.14 1e10 2.5e-3`, "t.pluto")

	tok := l.NextToken()
	assert.Equal(t, INT, tok.Type)
	assert.Equal(t, "42", tok.Literal)

	tok = l.NextToken()
	assert.Equal(t, FLOAT, tok.Type)
	assert.Equal(t, "3.14", tok.Literal)

	tok = l.NextToken()
	assert.Equal(t, FLOAT, tok.Type)
	assert.Equal(t, "1e10", tok.Literal)

	tok = l.NextToken()
	assert.Equal(t, FLOAT, tok.Type)
	assert.Equal(t, "2.5e-3", tok.Literal)
}

func TestNextTokenUnescapesPlainStrings(t *testing.T) {
	l := New(`"hello\nworld"`, "t.pluto")
	tok := l.NextToken()
	assert.Equal(t, STRING, tok.Type)
	assert.Equal(t, "hello\nworld", tok.Literal)
}

func TestNextTokenTagsInterpolatedStringsWithoutUnescaping(t *testing.T) {
	l := New(`"count: ${n + 1}!"`, "t.pluto")
	tok := l.NextToken()
	assert.Equal(t, INTERP, tok.Type)
	assert.Equal(t, `count: ${n + 1}!`, tok.Literal)
}

func TestNextTokenSkipsLineComments(t *testing.T) {
	types := collectTypes(t, "let x = 1 // trailing comment\nlet y = 2")
	assert.Equal(t, []TokenType{
		LET, IDENT, ASSIGN, INT,
		LET, IDENT, ASSIGN, INT, EOF,
	}, types)
}

func TestNextTokenClassifiesKeywordsNotAsIdentifiers(t *testing.T) {
	types := collectTypes(t, `if else while for in return raise break continue match catch scope yield spawn requires ensures invariant`)
	assert.Equal(t, []TokenType{
		IF, ELSE, WHILE, FOR, IN, RETURN, RAISE, BREAK, CONTINUE,
		MATCH, CATCH, SCOPE, YIELD, SPAWN, REQUIRES, ENSURES, INVARIANT, EOF,
	}, types)
}

func TestNextTokenTracksLineAndColumn(t *testing.T) {
	l := New("let a\nlet b", "t.pluto")
	_ = l.NextToken() // let
	tok := l.NextToken() // a
	assert.Equal(t, "a", tok.Literal)
	assert.Equal(t, 1, tok.Line)

	_ = l.NextToken() // let (line 2)
	tok = l.NextToken() // b
	assert.Equal(t, "b", tok.Literal)
	assert.Equal(t, 2, tok.Line)
}

func TestLookupIdentDistinguishesKeywordsFromIdentifiers(t *testing.T) {
	assert.Equal(t, CLASS, LookupIdent("class"))
	assert.Equal(t, IDENT, LookupIdent("className"))
}
