package mono

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/infer"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

func namedType(name string) ast.TypeExpr { return &ast.NamedType{Name: name} }

func funcSymbol(name string, decl *ast.FuncDecl) *register.Symbol {
	return &register.Symbol{
		Name: name, QualifiedName: name, Kind: register.KindFunction,
		Decl: decl, SID: sid.SID(name), Pos: decl.Pos,
	}
}

func programWith(syms ...*register.Symbol) *register.Table {
	mt := register.NewModuleTable("")
	for _, s := range syms {
		mt.Add(s)
	}
	return &register.Table{
		Modules: map[string]*register.ModuleTable{"": mt},
		Global:  map[string]*register.Symbol{},
	}
}

func emptyConformTable() *conform.Table {
	return &conform.Table{ByClass: map[string][]*conform.Impl{}}
}

func TestRunSpecializesGenericFunctionPerCallSite(t *testing.T) {
	identity := &ast.FuncDecl{
		Name:     "identity",
		Generics: []*ast.GenericParam{{Name: "T"}},
		Params:   []*ast.Param{{Name: "x", Type: namedType("T")}},
		Return:   namedType("T"),
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.FreeCall{Callee: "identity", Args: []ast.Expr{
				&ast.Literal{Kind: ast.IntLit, Value: int64(42)},
			}}},
		}},
	}

	reg := programWith(funcSymbol("identity", identity), funcSymbol("caller", caller))
	result := infer.Run(reg, emptyConformTable())
	require.Empty(t, result.Errors)
	require.Len(t, result.Generics, 1)

	monoResult := Run(result.Ctx)
	require.Empty(t, monoResult.Errors)
	require.Len(t, monoResult.Specializations, 1)

	spec := monoResult.Specializations[0]
	assert.Equal(t, "identity<int>", spec.Qualified)
	assert.Equal(t, infer.Int, spec.Sig.Return)
	require.Len(t, spec.Sig.Params, 1)
	assert.Equal(t, infer.Int, spec.Sig.Params[0])
}

func TestRunIsIdempotentOnRepeatInstantiation(t *testing.T) {
	identity := &ast.FuncDecl{
		Name:     "identity",
		Generics: []*ast.GenericParam{{Name: "T"}},
		Params:   []*ast.Param{{Name: "x", Type: namedType("T")}},
		Return:   namedType("T"),
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	caller := &ast.FuncDecl{
		Name: "caller",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ExprStmt{X: &ast.FreeCall{Callee: "identity", Args: []ast.Expr{
				&ast.Literal{Kind: ast.IntLit, Value: int64(1)},
			}}},
			&ast.ExprStmt{X: &ast.FreeCall{Callee: "identity", Args: []ast.Expr{
				&ast.Literal{Kind: ast.IntLit, Value: int64(2)},
			}}},
		}},
	}

	reg := programWith(funcSymbol("identity", identity), funcSymbol("caller", caller))
	result := infer.Run(reg, emptyConformTable())
	require.Empty(t, result.Errors)

	monoResult := Run(result.Ctx)
	require.Empty(t, monoResult.Errors)
	assert.Len(t, monoResult.Specializations, 1) // both call sites share one Int specialization
}
