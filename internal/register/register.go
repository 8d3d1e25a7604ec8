// Package register implements P2 (spec §4.2): one pass over the
// assembled program (P1's output) that records every top-level
// declaration in a symbol table keyed by name, catching any name that
// would otherwise resolve to more than one declaration.
package register

import (
	"fmt"

	"github.com/plutolang/pluto/internal/ast"
	"github.com/plutolang/pluto/internal/diag"
	"github.com/plutolang/pluto/internal/module"
	"github.com/plutolang/pluto/internal/sid"
)

// ModuleTable is the symbol table for one directory-module: every
// name declared in it, public or private, keyed by simple name
// (spec §4.1 rule 4: files in one directory share a namespace).
type ModuleTable struct {
	Path    string
	Symbols map[string]*Symbol
	order   []string
}

// NewModuleTable creates an empty module table, for building one
// programmatically (tests, or a caller assembling a synthetic module
// outside the normal P1->P2 pipeline).
func NewModuleTable(path string) *ModuleTable {
	return &ModuleTable{Path: path, Symbols: make(map[string]*Symbol)}
}

// Add records a symbol, preserving insertion order for Ordered.
func (mt *ModuleTable) Add(sym *Symbol) {
	if _, exists := mt.Symbols[sym.Name]; !exists {
		mt.order = append(mt.order, sym.Name)
	}
	mt.Symbols[sym.Name] = sym
}

// Lookup resolves a simple name within this module.
func (mt *ModuleTable) Lookup(name string) (*Symbol, bool) {
	s, ok := mt.Symbols[name]
	return s, ok
}

// Ordered returns symbols in declaration order, for deterministic
// iteration (diagnostics, dumps, later-phase worklists).
func (mt *ModuleTable) Ordered() []*Symbol {
	out := make([]*Symbol, 0, len(mt.order))
	for _, name := range mt.order {
		out = append(out, mt.Symbols[name])
	}
	return out
}

// Table is the complete result of P2: one ModuleTable per
// directory-module, plus a global table of every `pub` declaration
// keyed by fully-qualified name (spec §4.1 rule 5).
type Table struct {
	Modules map[string]*ModuleTable // keyed by module path (e.g. "std.net")
	Global  map[string]*Symbol      // keyed by qualified name, pub only
	SIDs    *sid.Registry
}

// Register runs P2 over an assembled program.
func Register(prog *module.Program) (*Table, error) {
	t := &Table{
		Modules: make(map[string]*ModuleTable),
		Global:  make(map[string]*Symbol),
		SIDs:    sid.NewRegistry(),
	}

	for _, dm := range prog.OrderedDirs() {
		mt, err := registerModule(dm, t.SIDs)
		if err != nil {
			return nil, err
		}
		t.Modules[dm.ModulePath] = mt

		for _, sym := range mt.Ordered() {
			if !sym.Pub {
				continue
			}
			if existing, ok := t.Global[sym.QualifiedName]; ok {
				if existing.Kind == KindBuiltin && sym.Kind == KindBuiltin {
					continue
				}
				return nil, duplicateErr(existing, sym)
			}
			t.Global[sym.QualifiedName] = sym
		}
	}

	return t, nil
}

// registerModule builds the symbol table for one directory-module,
// pre-populated with the unshadowable builtins, then recording every
// top-level declaration across every file merged into it.
func registerModule(dm *module.DirModule, sids *sid.Registry) (*ModuleTable, error) {
	mt := &ModuleTable{Path: dm.ModulePath, Symbols: make(map[string]*Symbol)}

	for _, b := range builtinSymbols() {
		mt.Symbols[b.Name] = b
		mt.order = append(mt.order, b.Name)
	}

	for _, file := range dm.Files {
		for _, decl := range file.Decls {
			name := decl.DeclName()

			if existing, ok := mt.Symbols[name]; ok {
				if existing.Kind == KindBuiltin {
					return nil, diag.Wrap(diag.New(diag.DuplicateDeclaration, "register",
						fmt.Sprintf("%q collides with a builtin and cannot be redeclared", name)).
						WithSpan(ast.Span{Start: decl.Position(), End: decl.Position()}).
						WithData("name", name))
				}
				return nil, duplicateErr(existing, &Symbol{Name: name, Pos: decl.Position()})
			}

			qualified := name
			if dm.ModulePath != "" {
				qualified = dm.ModulePath + "." + name
			}

			span := declSpan(decl)
			id := sid.New(span.Start.File, span.Start.Offset, span.End.Offset, kindOf(decl).String(), qualified)
			if sids != nil {
				sids.Record(id, qualified)
			}

			sym := &Symbol{
				Name:          name,
				QualifiedName: qualified,
				Kind:          kindOf(decl),
				ModulePath:    dm.ModulePath,
				Pub:           isPub(decl),
				Decl:          decl,
				SID:           id,
				Pos:           decl.Position(),
			}
			mt.Symbols[name] = sym
			mt.order = append(mt.order, name)
		}
	}

	return mt, nil
}

// duplicateErr reports spec §4.2's contract: "every name resolves to
// exactly one declaration or reports DuplicateDeclaration with both
// source spans."
func duplicateErr(first, second *Symbol) error {
	rep := diag.New(diag.DuplicateDeclaration, "register",
		fmt.Sprintf("%q is declared more than once", second.Name)).
		WithSpan(ast.Span{Start: second.Pos, End: second.Pos}).
		WithSecondarySpan(ast.Span{Start: first.Pos, End: first.Pos}).
		WithData("name", second.Name)
	return diag.Wrap(rep)
}
