package register

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/sid"
)

// Kind classifies what a Symbol names.
type Kind int

const (
	KindClass Kind = iota
	KindTrait
	KindEnum
	KindError
	KindFunction
	KindApp
	KindStage
	KindSystem
	KindBuiltin
)

func (k Kind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindTrait:
		return "trait"
	case KindEnum:
		return "enum"
	case KindError:
		return "error"
	case KindFunction:
		return "function"
	case KindApp:
		return "app"
	case KindStage:
		return "stage"
	case KindSystem:
		return "system"
	case KindBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// Symbol is one entry in the symbol table: a name bound to exactly one
// declaration (spec §4.2 contract).
type Symbol struct {
	Name          string
	QualifiedName string // module path + simple name, e.g. "std.net.TcpListener"
	Kind          Kind
	ModulePath    string
	Pub           bool
	Decl          ast.Decl // nil for builtins
	SID           sid.SID
	Pos           ast.Pos
}

// declSpan returns the byte span of a declaration, used for SID
// minting. Every Decl variant in internal/ast carries both Pos and
// Span, but Go gives us no common field access through the interface,
// so we switch on the concrete type.
func declSpan(d ast.Decl) ast.Span {
	switch n := d.(type) {
	case *ast.ClassDecl:
		return n.Span
	case *ast.TraitDecl:
		return n.Span
	case *ast.EnumDecl:
		return n.Span
	case *ast.ErrorDecl:
		return n.Span
	case *ast.FuncDecl:
		return n.Span
	case *ast.AppDecl:
		return n.Span
	case *ast.StageDecl:
		return n.Span
	case *ast.SystemDecl:
		return n.Span
	default:
		pos := d.Position()
		return ast.Span{Start: pos, End: pos}
	}
}

func kindOf(d ast.Decl) Kind {
	switch d.(type) {
	case *ast.ClassDecl:
		return KindClass
	case *ast.TraitDecl:
		return KindTrait
	case *ast.EnumDecl:
		return KindEnum
	case *ast.ErrorDecl:
		return KindError
	case *ast.FuncDecl:
		return KindFunction
	case *ast.AppDecl:
		return KindApp
	case *ast.StageDecl:
		return KindStage
	case *ast.SystemDecl:
		return KindSystem
	default:
		return KindFunction
	}
}

func isPub(d ast.Decl) bool {
	switch n := d.(type) {
	case *ast.ClassDecl:
		return n.Pub
	case *ast.TraitDecl:
		return n.Pub
	case *ast.EnumDecl:
		return n.Pub
	case *ast.ErrorDecl:
		return n.Pub
	case *ast.FuncDecl:
		return n.Pub
	default:
		// App/Stage/System are program roots, not imported by name.
		return false
	}
}
