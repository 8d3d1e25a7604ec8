package digraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

func classSymbol(mt *register.ModuleTable, decl *ast.ClassDecl) {
	mt.Add(&register.Symbol{
		Name: decl.Name, QualifiedName: decl.Name, Kind: register.KindClass,
		Decl: decl, SID: sid.SID(decl.Name), Pos: decl.Pos,
	})
}

func namedType(name string) ast.TypeExpr { return &ast.NamedType{Name: name} }

func testTable(decls ...*ast.ClassDecl) *register.Table {
	mt := register.NewModuleTable("")
	for _, d := range decls {
		classSymbol(mt, d)
	}
	return &register.Table{
		Modules: map[string]*register.ModuleTable{"": mt},
		Global:  map[string]*register.Symbol{},
	}
}

func TestBuildOrdersDependenciesBeforeDependents(t *testing.T) {
	classA := &ast.ClassDecl{Name: "ClassA"}
	classB := &ast.ClassDecl{
		Name:        "ClassB",
		BracketDeps: []*ast.BracketDep{{Name: "a", Type: namedType("ClassA")}},
	}
	reg := testTable(classA, classB)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "b", Type: namedType("ClassB")}},
	}

	g, errs := Build(reg, mt, app)
	require.Empty(t, errs)
	require.Len(t, g.Order, 2)
	assert.Equal(t, "ClassA", g.Order[0])
	assert.Equal(t, "ClassB", g.Order[1])
	assert.Equal(t, "ClassA", g.Nodes["ClassB"].Deps["a"])
	assert.Equal(t, "ClassB", g.RootDeps["b"])
}

func TestBuildDedupsSharedSingleton(t *testing.T) {
	shared := &ast.ClassDecl{Name: "Shared"}
	classB := &ast.ClassDecl{
		Name:        "ClassB",
		BracketDeps: []*ast.BracketDep{{Name: "s", Type: namedType("Shared")}},
	}
	classC := &ast.ClassDecl{
		Name:        "ClassC",
		BracketDeps: []*ast.BracketDep{{Name: "s", Type: namedType("Shared")}},
	}
	reg := testTable(shared, classB, classC)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name: "Main",
		BracketDeps: []*ast.BracketDep{
			{Name: "b", Type: namedType("ClassB")},
			{Name: "c", Type: namedType("ClassC")},
		},
	}

	g, errs := Build(reg, mt, app)
	require.Empty(t, errs)
	require.Len(t, g.Nodes, 3) // Shared counted once despite two references
	assert.Len(t, g.Order, 3)
}

func TestBuildReportsCycle(t *testing.T) {
	classX := &ast.ClassDecl{
		Name:        "ClassX",
		BracketDeps: []*ast.BracketDep{{Name: "y", Type: namedType("ClassY")}},
	}
	classY := &ast.ClassDecl{
		Name:        "ClassY",
		BracketDeps: []*ast.BracketDep{{Name: "x", Type: namedType("ClassX")}},
	}
	reg := testTable(classX, classY)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "x", Type: namedType("ClassX")}},
	}

	g, errs := Build(reg, mt, app)
	require.Len(t, errs, 1)
	assert.Nil(t, g.Order)
}

func TestBuildSatisfiesUsesFromAmbient(t *testing.T) {
	logger := &ast.ClassDecl{Name: "Logger"}
	worker := &ast.ClassDecl{Name: "Worker", Uses: []string{"Logger"}}
	reg := testTable(logger, worker)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "w", Type: namedType("Worker")}},
		Ambient:     []string{"Logger"},
	}

	g, errs := Build(reg, mt, app)
	require.Empty(t, errs)
	assert.Equal(t, "ambient:Logger", g.Nodes["Worker"].Ambient["Logger"])
}

func TestBuildReportsAmbientNotSatisfied(t *testing.T) {
	worker := &ast.ClassDecl{Name: "Worker", Uses: []string{"Logger"}}
	reg := testTable(worker)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "w", Type: namedType("Worker")}},
	}

	_, errs := Build(reg, mt, app)
	require.Len(t, errs, 1)
}

func TestGenerateEntryWiresAllocationsInOrder(t *testing.T) {
	classA := &ast.ClassDecl{Name: "ClassA"}
	classB := &ast.ClassDecl{
		Name:        "ClassB",
		BracketDeps: []*ast.BracketDep{{Name: "a", Type: namedType("ClassA")}},
	}
	reg := testTable(classA, classB)
	mt := reg.Modules[""]
	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "b", Type: namedType("ClassB")}},
	}

	g, errs := Build(reg, mt, app)
	require.Empty(t, errs)

	plan := GenerateEntry(g)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, "ClassA", plan.Allocations[0].Qualified)
	assert.Equal(t, "ClassB", plan.Allocations[1].Qualified)
	assert.Equal(t, FieldSource{Kind: FromNode, Ref: "ClassA"}, plan.Allocations[1].Brackets["a"])
	assert.Equal(t, FieldSource{Kind: FromNode, Ref: "ClassB"}, plan.RootAssignments["b"])
}

func TestCheckEscapeRejectsSingletonHoldingScopedField(t *testing.T) {
	request := &ast.ClassDecl{Name: "Request"}
	cache := &ast.ClassDecl{
		Name:   "Cache",
		Fields: []*ast.Field{{Name: "last", Type: namedType("Request")}},
	}
	reg := testTable(request, cache)
	mt := reg.Modules[""]

	app := &ast.AppDecl{
		Name:        "Main",
		BracketDeps: []*ast.BracketDep{{Name: "cache", Type: namedType("Cache")}},
	}
	mainGraph, errs := Build(reg, mt, app)
	require.Empty(t, errs)

	scopeGraph, errs := BuildScope(reg, mt, mainGraph, "req", namedType("Request"))
	require.Empty(t, errs)

	escapeErrs := CheckEscape(mainGraph, []*Graph{scopeGraph})
	assert.Len(t, escapeErrs, 1)
}
