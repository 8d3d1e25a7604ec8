package ast

import (
	"fmt"
	"strings"
)

// NamedType is a primitive or nominal reference written in source:
// int, float, bool, byte, string, void, or a class/trait/enum name
// (possibly with generic arguments). Which of those it resolves to is
// decided by P3/P4, not the parser.
type NamedType struct {
	Name string
	Args []TypeExpr // generic arguments, e.g. Box<int> -> Args=[int]
	Pos  Pos
}

func (t *NamedType) Position() Pos { return t.Pos }
func (t *NamedType) typeNode()     {}
func (t *NamedType) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.String()
	}
	return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
}

// NullableType is T?. Invariant: never nested and never void?. The
// parser takes a single postfix `?`, so `T??` is a syntax error; since
// Inner is any TypeExpr, P4 also rejects a NullableType whose inner
// type resolves to a nullable type or to void.
type NullableType struct {
	Inner TypeExpr
	Pos   Pos
}

func (t *NullableType) Position() Pos   { return t.Pos }
func (t *NullableType) typeNode()       {}
func (t *NullableType) String() string  { return t.Inner.String() + "?" }

// ArrayType is [T].
type ArrayType struct {
	Elem TypeExpr
	Pos  Pos
}

func (t *ArrayType) Position() Pos  { return t.Pos }
func (t *ArrayType) typeNode()      {}
func (t *ArrayType) String() string { return "[" + t.Elem.String() + "]" }

// MapType is [K: V].
type MapType struct {
	Key   TypeExpr
	Value TypeExpr
	Pos   Pos
}

func (t *MapType) Position() Pos { return t.Pos }
func (t *MapType) typeNode()     {}
func (t *MapType) String() string {
	return fmt.Sprintf("[%s: %s]", t.Key.String(), t.Value.String())
}

// SetType is {T}.
type SetType struct {
	Elem TypeExpr
	Pos  Pos
}

func (t *SetType) Position() Pos  { return t.Pos }
func (t *SetType) typeNode()      {}
func (t *SetType) String() string { return "{" + t.Elem.String() + "}" }

// StreamType is Stream<T>: a lazy, by-default single-pass sequence.
type StreamType struct {
	Elem TypeExpr
	Pos  Pos
}

func (t *StreamType) Position() Pos  { return t.Pos }
func (t *StreamType) typeNode()      {}
func (t *StreamType) String() string { return fmt.Sprintf("Stream<%s>", t.Elem.String()) }

// FuncType is fn(T1,...,Tn) R.
type FuncType struct {
	Params []TypeExpr
	Return TypeExpr // nil means void
	Pos    Pos
}

func (t *FuncType) Position() Pos { return t.Pos }
func (t *FuncType) typeNode()     {}
func (t *FuncType) String() string {
	parts := make([]string, len(t.Params))
	for i, p := range t.Params {
		parts[i] = p.String()
	}
	ret := "void"
	if t.Return != nil {
		ret = t.Return.String()
	}
	return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), ret)
}

// GenericParam is a named placeholder in a declaration's generic
// parameter list, optionally bounded by one or more trait names.
type GenericParam struct {
	Name   string
	Bounds []string
	Pos    Pos
}

func (g *GenericParam) Position() Pos { return g.Pos }
func (g *GenericParam) String() string {
	if len(g.Bounds) == 0 {
		return g.Name
	}
	return fmt.Sprintf("%s: %s", g.Name, strings.Join(g.Bounds, " + "))
}
