package ast

import "fmt"

// Param is a function/method parameter.
type Param struct {
	Name string
	Type TypeExpr
	Pos  Pos
}

// Field is an ordinary class field: name: Type.
type Field struct {
	Name string
	Type TypeExpr
	Pos  Pos
}

// BracketDep is a constructor-injected field declared in [...] on a
// class or app header; filled by the DI graph (P5), never by a
// struct literal.
type BracketDep struct {
	Name string
	Type TypeExpr // must resolve to a class reference
	Pos  Pos
}

// Contract holds an optional requires/ensures clause pair on a
// function or method.
type Contract struct {
	Requires Expr // nil if absent
	Ensures  Expr // nil if absent; may reference `result` and `old(e)`
}

// MethodDecl is a method on a class, trait, app, or stage.
type MethodDecl struct {
	Name      string
	Generics  []*GenericParam
	Params    []*Param
	SelfMut   bool // true for `mut self`, false for `self`
	Return    TypeExpr
	Body      *BlockExpr // nil for trait methods without a default body
	Contract  *Contract
	Pos       Pos
}

func (m *MethodDecl) Position() Pos   { return m.Pos }
func (m *MethodDecl) String() string  { return fmt.Sprintf("fn %s(...)", m.Name) }

// ClassDecl is spec §3's Class declaration.
type ClassDecl struct {
	Name        string
	Generics    []*GenericParam
	Fields      []*Field
	BracketDeps []*BracketDep
	Uses        []string // ambient-required trait/class refs
	Methods     []*MethodDecl
	Implements  []string // explicit `impl T1, T2, ...`
	Invariants  []Expr
	Pub         bool
	Pos         Pos
	Span        Span
}

func (c *ClassDecl) Position() Pos    { return c.Pos }
func (c *ClassDecl) declNode()        {}
func (c *ClassDecl) DeclName() string { return c.Name }
func (c *ClassDecl) String() string   { return fmt.Sprintf("class %s", c.Name) }

// IsDIOnly reports whether this class can only be constructed by the
// DI graph (it declares bracket deps; spec §4.5 "Restrictions").
func (c *ClassDecl) IsDIOnly() bool { return len(c.BracketDeps) > 0 }

// TraitDecl is spec §3's Trait declaration.
type TraitDecl struct {
	Name     string
	Generics []*GenericParam
	Methods  []*MethodDecl // Body != nil means a default implementation
	Pub      bool
	Pos      Pos
	Span     Span
}

func (t *TraitDecl) Position() Pos    { return t.Pos }
func (t *TraitDecl) declNode()        {}
func (t *TraitDecl) DeclName() string { return t.Name }
func (t *TraitDecl) String() string   { return fmt.Sprintf("trait %s", t.Name) }

// EnumVariant is one arm of an enum: unit or data-carrying.
type EnumVariant struct {
	Name   string
	Fields []*Field // empty for a unit variant
	Pos    Pos
}

// EnumDecl is spec §3's Enum declaration: a nominal sum type.
type EnumDecl struct {
	Name     string
	Generics []*GenericParam
	Variants []*EnumVariant
	Pub      bool
	Pos      Pos
	Span     Span
}

func (e *EnumDecl) Position() Pos    { return e.Pos }
func (e *EnumDecl) declNode()        {}
func (e *EnumDecl) DeclName() string { return e.Name }
func (e *EnumDecl) String() string   { return fmt.Sprintf("enum %s", e.Name) }

// ErrorDecl is spec §3's Error declaration: a class with only
// ordinary fields, tagged as error-kind.
type ErrorDecl struct {
	Name   string
	Fields []*Field
	Pub    bool
	Pos    Pos
	Span   Span
}

func (e *ErrorDecl) Position() Pos    { return e.Pos }
func (e *ErrorDecl) declNode()        {}
func (e *ErrorDecl) DeclName() string { return e.Name }
func (e *ErrorDecl) String() string   { return fmt.Sprintf("error %s", e.Name) }

// FuncDecl is spec §3's Function declaration. Return is nil for void.
// The error set is absent here (inferred, not written) and filled in
// by P4 on the corresponding types.FuncSig.
type FuncDecl struct {
	Name     string
	Generics []*GenericParam
	Params   []*Param
	Return   TypeExpr
	Body     *BlockExpr
	Contract *Contract
	Pub      bool
	Pos      Pos
	Span     Span
}

func (f *FuncDecl) Position() Pos    { return f.Pos }
func (f *FuncDecl) declNode()        {}
func (f *FuncDecl) DeclName() string { return f.Name }
func (f *FuncDecl) String() string   { return fmt.Sprintf("fn %s(...)", f.Name) }

// AppDecl is spec §3's App declaration: a class-like DI root with an
// additional `ambient` list. Exactly one App (or one per System
// member) is the program root.
type AppDecl struct {
	Name        string
	BracketDeps []*BracketDep
	Ambient     []string // `ambient T` — satisfies transitive `uses T`
	Methods     []*MethodDecl
	Pos         Pos
	Span        Span
}

func (a *AppDecl) Position() Pos    { return a.Pos }
func (a *AppDecl) declNode()        {}
func (a *AppDecl) DeclName() string { return a.Name }
func (a *AppDecl) String() string   { return fmt.Sprintf("app %s", a.Name) }

// StageDecl is spec §3's Stage declaration: a class-like deployable
// unit intended to become an RPC boundary.
type StageDecl struct {
	Name        string
	BracketDeps []*BracketDep
	Methods     []*MethodDecl
	Pos         Pos
	Span        Span
}

func (s *StageDecl) Position() Pos    { return s.Pos }
func (s *StageDecl) declNode()        {}
func (s *StageDecl) DeclName() string { return s.Name }
func (s *StageDecl) String() string   { return fmt.Sprintf("stage %s", s.Name) }

// SystemDecl groups multiple App/Stage members, each of which is its
// own DI root (spec §3: "an app additionally has an ambient list;
// exactly one app (or one per system member) is the program root").
type SystemDecl struct {
	Name    string
	Members []string // names of App/Stage decls in this system
	Pos     Pos
	Span    Span
}

func (s *SystemDecl) Position() Pos    { return s.Pos }
func (s *SystemDecl) declNode()        {}
func (s *SystemDecl) DeclName() string { return s.Name }
func (s *SystemDecl) String() string   { return fmt.Sprintf("system %s", s.Name) }
