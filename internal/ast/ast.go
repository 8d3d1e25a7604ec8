// Package ast defines the AST contract that the parser (an external
// collaborator, see spec §1) hands to the semantic middle-end: every
// node records a byte-span into the source and one of the variants
// enumerated in spec §6.
package ast

import "fmt"

// Node is the base interface implemented by every AST node.
type Node interface {
	String() string
	Position() Pos
}

// Pos is a single point in source.
type Pos struct {
	Line   int
	Column int
	File   string
	Offset int // byte offset, used for SID calculation
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a byte range in source, used for SID calculation and
// diagnostic rendering.
type Span struct {
	Start Pos
	End   Pos
}

// Expr is implemented by every expression node (spec §6's expression
// variant list).
type Expr interface {
	Node
	exprNode()
}

// Stmt is implemented by every statement node (spec §6's statement
// variant list).
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is implemented by every type node (spec §3's type
// representation, as written in source before resolution).
type TypeExpr interface {
	Node
	typeNode()
}

// Pattern is implemented by every match-pattern node.
type Pattern interface {
	Node
	patternNode()
}

// Decl is implemented by every top-level module item (spec §6's
// module-item variant list: Class, Trait, Enum, Error, Function, App,
// Stage, System, Import).
type Decl interface {
	Node
	declNode()
	DeclName() string
}

// File is one parsed source file. Files in the same directory are
// merged into a single module by P1 (spec §4.1 rule 4).
type File struct {
	Module  *ModuleDecl
	Imports []*ImportDecl
	Decls   []Decl
	Path    string
	Pos     Pos
}

func (f *File) Position() Pos { return f.Pos }
func (f *File) String() string {
	return fmt.Sprintf("file %s (%d decls)", f.Path, len(f.Decls))
}

// ModuleDecl optionally names the module a file belongs to.
type ModuleDecl struct {
	Path string
	Pos  Pos
	Span Span
}

func (m *ModuleDecl) Position() Pos  { return m.Pos }
func (m *ModuleDecl) String() string { return fmt.Sprintf("module %s", m.Path) }

// ImportDecl names a module dependency, resolved by P1.
type ImportDecl struct {
	Path string // dotted path, e.g. "std.net"
	Pos  Pos
	Span Span
}

func (i *ImportDecl) Position() Pos  { return i.Pos }
func (i *ImportDecl) String() string { return fmt.Sprintf("import %s", i.Path) }
func (i *ImportDecl) declNode()      {}
func (i *ImportDecl) DeclName() string {
	return i.Path
}
