package lower

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

func enumSymbol(mt *register.ModuleTable, decl *ast.EnumDecl) {
	mt.Add(&register.Symbol{
		Name: decl.Name, QualifiedName: decl.Name, Kind: register.KindEnum,
		Decl: decl, SID: sid.SID(decl.Name), Pos: decl.Pos,
	})
}

func funcSymbolLower(mt *register.ModuleTable, decl *ast.FuncDecl) {
	mt.Add(&register.Symbol{
		Name: decl.Name, QualifiedName: decl.Name, Kind: register.KindFunction,
		Decl: decl, SID: sid.SID(decl.Name), Pos: decl.Pos,
	})
}

func statusEnum() *ast.EnumDecl {
	return &ast.EnumDecl{
		Name: "Status",
		Variants: []*ast.EnumVariant{
			{Name: "Ok"},
			{Name: "Err", Fields: []*ast.Field{{Name: "msg", Type: &ast.NamedType{Name: "string"}}}},
		},
	}
}

func runInfer(t *testing.T, enum *ast.EnumDecl, fn *ast.FuncDecl) *infer.Context {
	t.Helper()
	mt := register.NewModuleTable("")
	enumSymbol(mt, enum)
	funcSymbolLower(mt, fn)
	reg := &register.Table{Modules: map[string]*register.ModuleTable{"": mt}, Global: map[string]*register.Symbol{}}
	result := infer.Run(reg, &conform.Table{ByClass: map[string][]*conform.Impl{}})
	require.Empty(t, result.Errors)
	return result.Ctx
}

func TestCheckExhaustivenessAcceptsWildcardCoverage(t *testing.T) {
	enum := statusEnum()
	fn := &ast.FuncDecl{
		Name: "describe",
		Params: []*ast.Param{{Name: "s", Type: &ast.NamedType{Name: "Status"}}},
		Return: &ast.NamedType{Name: "string"},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.MatchStmt{
				Scrutinee: &ast.Identifier{Name: "s"},
				Arms: []*ast.MatchArm{
					{Pattern: &ast.VariantPattern{VariantName: "Ok"}, Body: &ast.Literal{Kind: ast.StringLit, Value: "ok"}},
					{Pattern: &ast.WildcardPattern{}, Body: &ast.Literal{Kind: ast.StringLit, Value: "other"}},
				},
			}},
		}},
	}

	ctx := runInfer(t, enum, fn)
	errs := CheckExhaustiveness(ctx)
	assert.Empty(t, errs)
}

func TestCheckExhaustivenessRejectsMissingVariant(t *testing.T) {
	enum := statusEnum()
	fn := &ast.FuncDecl{
		Name: "describe",
		Params: []*ast.Param{{Name: "s", Type: &ast.NamedType{Name: "Status"}}},
		Return: &ast.NamedType{Name: "string"},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.MatchStmt{
				Scrutinee: &ast.Identifier{Name: "s"},
				Arms: []*ast.MatchArm{
					{Pattern: &ast.VariantPattern{VariantName: "Ok"}, Body: &ast.Literal{Kind: ast.StringLit, Value: "ok"}},
				},
			}},
		}},
	}

	ctx := runInfer(t, enum, fn)
	errs := CheckExhaustiveness(ctx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "Err")
}
