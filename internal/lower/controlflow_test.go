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

func ctxOverFunc(t *testing.T, fn *ast.FuncDecl) *infer.Context {
	t.Helper()
	mt := register.NewModuleTable("")
	funcSymbolLower(mt, fn)
	reg := &register.Table{Modules: map[string]*register.ModuleTable{"": mt}, Global: map[string]*register.Symbol{}}
	result := infer.Run(reg, &conform.Table{ByClass: map[string][]*conform.Impl{}})
	require.Empty(t, result.Errors)
	return result.Ctx
}

func TestCheckControlFlowAcceptsReturnOnEveryPath(t *testing.T) {
	// fn sign(x: int) int { if x < 0 { return -1 } else { return 1 } }
	fn := &ast.FuncDecl{
		Name:   "sign",
		Params: []*ast.Param{{Name: "x", Type: &ast.NamedType{Name: "int"}}},
		Return: &ast.NamedType{Name: "int"},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BinaryOp{Op: "<", Left: &ast.Identifier{Name: "x"}, Right: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}},
				Then: &ast.BlockExpr{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.UnaryOp{Op: "-", X: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}}},
				}},
				Else: &ast.ExprStmt{X: &ast.BlockExpr{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
				}}},
			},
		}},
	}

	ctx := ctxOverFunc(t, fn)
	errs := CheckControlFlow(ctx)
	assert.Empty(t, errs)
}

func TestCheckControlFlowRejectsFallOffEnd(t *testing.T) {
	// fn sign(x: int) int { if x < 0 { return -1 } }
	fn := &ast.FuncDecl{
		Name:   "sign",
		Params: []*ast.Param{{Name: "x", Type: &ast.NamedType{Name: "int"}}},
		Return: &ast.NamedType{Name: "int"},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.IfStmt{
				Cond: &ast.BinaryOp{Op: "<", Left: &ast.Identifier{Name: "x"}, Right: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}},
				Then: &ast.BlockExpr{Stmts: []ast.Stmt{
					&ast.ReturnStmt{Value: &ast.UnaryOp{Op: "-", X: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}}},
				}},
			},
		}},
	}

	ctx := ctxOverFunc(t, fn)
	errs := CheckControlFlow(ctx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "sign")
}

func TestCheckControlFlowAcceptsInfiniteLoopWithoutBreak(t *testing.T) {
	// fn spin() int { while true { } }
	fn := &ast.FuncDecl{
		Name:   "spin",
		Return: &ast.NamedType{Name: "int"},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.WhileStmt{
				Cond: &ast.Literal{Kind: ast.BoolLit, Value: true},
				Body: &ast.BlockExpr{},
			},
		}},
	}

	ctx := ctxOverFunc(t, fn)
	errs := CheckControlFlow(ctx)
	assert.Empty(t, errs)
}

func TestCheckControlFlowRejectsUnreachableCodeAfterReturn(t *testing.T) {
	// fn f() { return; let x = 1 }
	fn := &ast.FuncDecl{
		Name: "f",
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{},
			&ast.LetStmt{Name: "x", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
		}},
	}

	ctx := ctxOverFunc(t, fn)
	errs := CheckControlFlow(ctx)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "unreachable")
}
