package infer

import (
	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/conform"
	"github.com/plutolang/pluto/internal/register"
	"github.com/plutolang/pluto/internal/sid"
)

// FuncSig is one function or method's resolved signature and body,
// the unit P4 type-checks and the unit P6's monomorphization worklist
// clones (spec §4.6 step 1: "Clone the declaration's typed body").
type FuncSig struct {
	SID        sid.SID
	Name       string
	Qualified  string
	ModulePath string
	MT         *register.ModuleTable

	Generics     GenericScope
	GenericOrder []string
	Bounds       map[string][]string // generic name -> required trait names

	ParamNames []string
	Params     []*Type
	Return     *Type // Void for a void function

	IsMethod  bool
	SelfMut   bool
	Receiver  *Type // owning class, for methods
	OwnerDecl *ast.ClassDecl

	Contract *ast.Contract
	Body     *ast.BlockExpr
	Decl     ast.Node // *ast.FuncDecl or *ast.MethodDecl, for span info

	ErrorSet map[string]bool // filled in by the error-set fixed point
}

func (f *FuncSig) Pos() ast.Pos { return f.Decl.Position() }

// Context is the shared, mutable state threaded through one P4 run
// over an entire program: the symbol and conformance tables inherited
// from P2/P3, every function signature discovered, and the
// generic-instantiation worklist P6 drains.
type Context struct {
	Reg     *register.Table
	Conform *conform.Table

	Funcs      map[sid.SID]*FuncSig
	funcOrder  []sid.SID
	byQualName map[string]*FuncSig

	Generics *GenericWorklist

	// currentProp is the propagation mode the call expression being
	// resolved right now is wrapped in — set by inferErrorPropagate /
	// inferCatch just before recursing into their inner expression,
	// and reset to propBare by the call resolver as soon as it is
	// read (see errorsets.go).
	currentProp propMode
	callSites   []callSiteRecord
	directRaise map[sid.SID]map[string]bool

	// symbolsByQualName indexes every declaration (public or not) by
	// its fully-qualified name, so method-call resolution can find a
	// class/trait declaration from a ClassRef/TraitRef Type without
	// re-deriving module path parsing (built once in NewContext;
	// register.Table.Global only holds pub symbols).
	symbolsByQualName map[string]*register.Symbol
	// qualifiedOf recovers a declaration's fully-qualified name from
	// its AST pointer, used to resolve conform.Impl.Trait (which only
	// carries the *ast.TraitDecl, not the symbol) during method-call
	// lookup against a trait's default body.
	qualifiedOf map[ast.Decl]string

	// MatchSites records every well-formed match-over-enum checkMatch
	// sees, for lower.CheckExhaustiveness to compare against each
	// enum's full variant set once P4 is done (spec §4.7). Matches on
	// a non-enum scrutinee never reach this list; checkMatch rejects
	// one locally when an arm uses a variant pattern.
	MatchSites []MatchSite

	errs []error
}

// MatchSite is one match statement P4 type-checked successfully,
// carrying the enum it matched against and which variants its arms
// actually covered.
type MatchSite struct {
	Pos      ast.Pos
	Enum     string // enum's qualified name
	Matched  map[string]bool
	Wildcard bool // an arm bound by _ or a plain identifier, covering every remaining variant
}

func (c *Context) recordMatch(site MatchSite) {
	c.MatchSites = append(c.MatchSites, site)
}

// NewContext builds a Context over P2's symbol table and P3's
// conformance table, ready for CollectSignatures then Run.
func NewContext(reg *register.Table, conformTable *conform.Table) *Context {
	c := &Context{
		Reg:               reg,
		Conform:           conformTable,
		Funcs:             make(map[sid.SID]*FuncSig),
		byQualName:        make(map[string]*FuncSig),
		Generics:          newGenericWorklist(),
		symbolsByQualName: make(map[string]*register.Symbol),
		qualifiedOf:       make(map[ast.Decl]string),
	}
	for _, mt := range reg.Modules {
		for _, sym := range mt.Ordered() {
			c.symbolsByQualName[sym.QualifiedName] = sym
			if sym.Decl != nil {
				c.qualifiedOf[sym.Decl] = sym.QualifiedName
			}
		}
	}
	return c
}

// classDecl resolves a ClassRef's name back to its *ast.ClassDecl.
func (c *Context) classDecl(qualifiedName string) (*ast.ClassDecl, bool) {
	sym, ok := c.symbolsByQualName[qualifiedName]
	if !ok || sym.Kind != register.KindClass {
		return nil, false
	}
	decl, ok := sym.Decl.(*ast.ClassDecl)
	return decl, ok
}

// traitDecl resolves a TraitRef's name back to its *ast.TraitDecl.
func (c *Context) traitDecl(qualifiedName string) (*ast.TraitDecl, bool) {
	sym, ok := c.symbolsByQualName[qualifiedName]
	if !ok || sym.Kind != register.KindTrait {
		return nil, false
	}
	decl, ok := sym.Decl.(*ast.TraitDecl)
	return decl, ok
}

// enumDecl resolves an EnumRef's name back to its *ast.EnumDecl.
func (c *Context) enumDecl(qualifiedName string) (*ast.EnumDecl, bool) {
	sym, ok := c.symbolsByQualName[qualifiedName]
	if !ok || sym.Kind != register.KindEnum {
		return nil, false
	}
	decl, ok := sym.Decl.(*ast.EnumDecl)
	return decl, ok
}

// EnumDeclByQualified exposes enumDecl for lower.CheckExhaustiveness,
// which needs the full variant set of a MatchSite's enum without
// re-deriving qualified-name resolution P4 already built.
func (c *Context) EnumDeclByQualified(qualifiedName string) (*ast.EnumDecl, bool) {
	return c.enumDecl(qualifiedName)
}

// methodSig looks up the already-collected FuncSig for a method of a
// class/trait by qualified-owner-name + method name.
func (c *Context) methodSig(ownerQualified, method string) (*FuncSig, bool) {
	f, ok := c.byQualName[ownerQualified+"."+method]
	return f, ok
}

// funcSig looks up a free function's FuncSig by qualified name.
func (c *Context) funcSig(qualifiedName string) (*FuncSig, bool) {
	f, ok := c.byQualName[qualifiedName]
	return f, ok
}

func (c *Context) addFunc(f *FuncSig) {
	c.Funcs[f.SID] = f
	c.funcOrder = append(c.funcOrder, f.SID)
	c.byQualName[f.Qualified] = f
}

// OrderedFuncs returns every collected signature in discovery order,
// for deterministic iteration.
func (c *Context) OrderedFuncs() []*FuncSig {
	out := make([]*FuncSig, 0, len(c.funcOrder))
	for _, id := range c.funcOrder {
		out = append(out, c.Funcs[id])
	}
	return out
}

func (c *Context) report(err error) {
	c.errs = append(c.errs, err)
}
