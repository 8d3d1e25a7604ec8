package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassDeclIsDIOnly(t *testing.T) {
	plain := &ClassDecl{Name: "Point", Fields: []*Field{{Name: "x", Type: &NamedType{Name: "int"}}}}
	assert.False(t, plain.IsDIOnly())

	wired := &ClassDecl{Name: "Service", BracketDeps: []*BracketDep{{Name: "db", Type: &NamedType{Name: "Database"}}}}
	assert.True(t, wired.IsDIOnly())
}

func TestNullableTypeRendersSingleSuffix(t *testing.T) {
	inner := &NamedType{Name: "int"}
	nullable := &NullableType{Inner: inner}
	assert.Equal(t, "int?", nullable.String())
}

func TestNamedTypeGenericArgsRender(t *testing.T) {
	box := &NamedType{Name: "Box", Args: []TypeExpr{&NamedType{Name: "int"}}}
	assert.Equal(t, "Box<int>", box.String())
}

func TestFuncTypeVoidReturn(t *testing.T) {
	ft := &FuncType{Params: []TypeExpr{&NamedType{Name: "string"}}}
	assert.Equal(t, "fn(string) void", ft.String())
}
