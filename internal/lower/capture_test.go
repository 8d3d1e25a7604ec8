package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

func funcDeclFor(name string, params []*ast.Param, body *ast.BlockExpr) *ast.FuncDecl {
	return &ast.FuncDecl{Name: name, Params: params, Body: body}
}

func tableWith(decl *ast.FuncDecl) *register.Table {
	mt := register.NewModuleTable("")
	mt.Add(&register.Symbol{
		Name: decl.Name, QualifiedName: decl.Name, Kind: register.KindFunction,
		Decl: decl, SID: sid.SID(decl.Name), Pos: decl.Pos,
	})
	return &register.Table{Modules: map[string]*register.ModuleTable{"": mt}, Global: map[string]*register.Symbol{}}
}

func TestPrecomputeCapturesFindsOuterLocal(t *testing.T) {
	// fn make_adder() { let n = 1; let add = fn(x) { return x + n }; return add }
	lambda := &ast.LambdaExpr{
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.BinaryOp{
				Op:    "+",
				Left:  &ast.Identifier{Name: "x"},
				Right: &ast.Identifier{Name: "n"},
			}},
		}},
	}
	decl := funcDeclFor("make_adder", nil, &ast.BlockExpr{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "n", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
		&ast.LetStmt{Name: "add", Value: lambda},
		&ast.ReturnStmt{Value: &ast.Identifier{Name: "add"}},
	}})

	PrecomputeCaptures(tableWith(decl))

	require.Equal(t, []string{"n"}, lambda.Captures)
}

func TestPrecomputeCapturesExcludesOwnParamsAndSelf(t *testing.T) {
	// fn identity(x) { let f = fn(x) { return x }; return f }
	lambda := &ast.LambdaExpr{
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "x"}},
		}},
	}
	decl := funcDeclFor("identity", []*ast.Param{{Name: "x"}}, &ast.BlockExpr{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "f", Value: lambda},
		&ast.ReturnStmt{Value: &ast.Identifier{Name: "f"}},
	}})

	PrecomputeCaptures(tableWith(decl))

	assert.Empty(t, lambda.Captures)
}

func TestPrecomputeCapturesPropagatesThroughNestedLambda(t *testing.T) {
	// fn outer() { let n = 1; let f = fn() { let g = fn() { return n }; return g }; return f }
	inner := &ast.LambdaExpr{
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "n"}},
		}},
	}
	outerLambda := &ast.LambdaExpr{
		Body: &ast.BlockExpr{Stmts: []ast.Stmt{
			&ast.LetStmt{Name: "g", Value: inner},
			&ast.ReturnStmt{Value: &ast.Identifier{Name: "g"}},
		}},
	}
	decl := funcDeclFor("outer", nil, &ast.BlockExpr{Stmts: []ast.Stmt{
		&ast.LetStmt{Name: "n", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
		&ast.LetStmt{Name: "f", Value: outerLambda},
		&ast.ReturnStmt{Value: &ast.Identifier{Name: "f"}},
	}})

	PrecomputeCaptures(tableWith(decl))

	assert.Equal(t, []string{"n"}, inner.Captures)
	assert.Equal(t, []string{"n"}, outerLambda.Captures)
}
