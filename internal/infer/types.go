// Package infer implements P4 (spec §4.4): bidirectional type
// inference over every function and method body, discovering each
// function's error set and the program's generic-instantiation
// worklist along the way.
package infer

import (
	"fmt"
	"strings"
)

// Kind tags which variant of spec §3's type grammar a Type is.
type Kind int

const (
	KPrimitive Kind = iota
	KVoid
	KNullable
	KArray
	KMap
	KSet
	KStream
	KFunc
	KClass
	KTrait
	KEnum
	KError
	KGeneric
)

// Type is a resolved type, as opposed to ast.TypeExpr which is the
// unresolved, source-level written form. P3 and earlier phases carry
// names as strings; P4 is where names become Types.
type Type struct {
	Kind Kind
	Name string  // primitive name, or class/trait/enum/error/generic name
	Elem *Type   // array/set/stream element, nullable inner
	Key  *Type   // map key
	Val  *Type   // map value
	Args []*Type // generic instantiation args, e.g. Box<int> -> [int]

	Params []*Type // func params
	Return *Type   // func return; nil means void
}

// Primitive type singletons.
var (
	Int    = &Type{Kind: KPrimitive, Name: "int"}
	Float  = &Type{Kind: KPrimitive, Name: "float"}
	Bool   = &Type{Kind: KPrimitive, Name: "bool"}
	Byte   = &Type{Kind: KPrimitive, Name: "byte"}
	String = &Type{Kind: KPrimitive, Name: "string"}
	Void   = &Type{Kind: KVoid, Name: "void"}
)

func primitiveByName(name string) *Type {
	switch name {
	case "int":
		return Int
	case "float":
		return Float
	case "bool":
		return Bool
	case "byte":
		return Byte
	case "string":
		return String
	case "void":
		return Void
	default:
		return nil
	}
}

// Nullable wraps t as T?. Per spec §4.4.1 nullability is never nested;
// wrapping an already-nullable type returns it unchanged rather than
// producing T??.
func Nullable(t *Type) *Type {
	if t.Kind == KNullable {
		return t
	}
	return &Type{Kind: KNullable, Elem: t}
}

func Array(elem *Type) *Type           { return &Type{Kind: KArray, Elem: elem} }
func MapOf(key, val *Type) *Type       { return &Type{Kind: KMap, Key: key, Val: val} }
func SetOf(elem *Type) *Type           { return &Type{Kind: KSet, Elem: elem} }
func Stream(elem *Type) *Type          { return &Type{Kind: KStream, Elem: elem} }
func Func(params []*Type, ret *Type) *Type {
	if ret == nil {
		ret = Void
	}
	return &Type{Kind: KFunc, Params: params, Return: ret}
}
func ClassRef(name string, args ...*Type) *Type { return &Type{Kind: KClass, Name: name, Args: args} }
func TraitRef(name string, args ...*Type) *Type { return &Type{Kind: KTrait, Name: name, Args: args} }
func EnumRef(name string, args ...*Type) *Type  { return &Type{Kind: KEnum, Name: name, Args: args} }
func ErrorRef(name string) *Type                { return &Type{Kind: KError, Name: name} }
func GenericParam(name string) *Type            { return &Type{Kind: KGeneric, Name: name} }

// IsPrimitive reports whether t is one of int/float/bool/byte/string.
func (t *Type) IsPrimitive() bool { return t.Kind == KPrimitive }

// IsNumeric reports whether t is int or float (spec §4.4.1 arithmetic).
func (t *Type) IsNumeric() bool {
	return t.Kind == KPrimitive && (t.Name == "int" || t.Name == "float")
}

// IsNullable reports whether t is T? for some T.
func (t *Type) IsNullable() bool { return t.Kind == KNullable }

// NullableInner returns the T of a T?, or t itself if not nullable.
func (t *Type) NullableInner() *Type {
	if t.Kind == KNullable {
		return t.Elem
	}
	return t
}

// Printable reports whether t may appear inside a string interpolation
// (spec §4.4.1: "must be a printable primitive").
func (t *Type) Printable() bool {
	return t.Kind == KPrimitive
}

// String renders t in the same surface syntax spec §3 describes, so
// diagnostic messages read like the source the programmer wrote.
func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case KPrimitive, KVoid:
		return t.Name
	case KNullable:
		return t.Elem.String() + "?"
	case KArray:
		return "[" + t.Elem.String() + "]"
	case KMap:
		return fmt.Sprintf("[%s: %s]", t.Key.String(), t.Val.String())
	case KSet:
		return "{" + t.Elem.String() + "}"
	case KStream:
		return fmt.Sprintf("Stream<%s>", t.Elem.String())
	case KFunc:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		ret := "void"
		if t.Return != nil && t.Return.Kind != KVoid {
			ret = t.Return.String()
		}
		return fmt.Sprintf("fn(%s) %s", strings.Join(parts, ", "), ret)
	case KClass, KTrait, KEnum, KError, KGeneric:
		if len(t.Args) == 0 {
			return t.Name
		}
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s<%s>", t.Name, strings.Join(parts, ", "))
	default:
		return "?"
	}
}

// Equals is nominal equality: the same Kind, Name, and structural
// components in the same position (spec §4.3/§4.4.1: "no covariance
// or contravariance").
func (t *Type) Equals(o *Type) bool {
	if t == nil || o == nil {
		return t == o
	}
	if t.Kind != o.Kind {
		return false
	}
	switch t.Kind {
	case KPrimitive, KVoid, KGeneric:
		return t.Name == o.Name
	case KNullable:
		return t.Elem.Equals(o.Elem)
	case KArray, KSet, KStream:
		return t.Elem.Equals(o.Elem)
	case KMap:
		return t.Key.Equals(o.Key) && t.Val.Equals(o.Val)
	case KFunc:
		if len(t.Params) != len(o.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equals(o.Params[i]) {
				return false
			}
		}
		return t.Return.Equals(o.Return)
	case KClass, KTrait, KEnum, KError:
		if t.Name != o.Name || len(t.Args) != len(o.Args) {
			return false
		}
		for i := range t.Args {
			if !t.Args[i].Equals(o.Args[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Substitute returns t with every KGeneric leaf replaced per subst,
// used by P4's generic-instantiation worklist (spec §4.4.4: resolve
// the call's concrete type arguments, then substitute them into the
// declaration's parameter and return types) and reused by P6 when it
// clones a generic declaration's body for a specialization.
func (t *Type) Substitute(subst map[string]*Type) *Type {
	if t == nil {
		return nil
	}
	switch t.Kind {
	case KGeneric:
		if r, ok := subst[t.Name]; ok {
			return r
		}
		return t
	case KNullable:
		return Nullable(t.Elem.Substitute(subst))
	case KArray:
		return Array(t.Elem.Substitute(subst))
	case KSet:
		return SetOf(t.Elem.Substitute(subst))
	case KStream:
		return Stream(t.Elem.Substitute(subst))
	case KMap:
		return MapOf(t.Key.Substitute(subst), t.Val.Substitute(subst))
	case KFunc:
		params := make([]*Type, len(t.Params))
		for i, p := range t.Params {
			params[i] = p.Substitute(subst)
		}
		return Func(params, t.Return.Substitute(subst))
	case KClass, KTrait, KEnum, KError:
		if len(t.Args) == 0 {
			return t
		}
		args := make([]*Type, len(t.Args))
		for i, a := range t.Args {
			args[i] = a.Substitute(subst)
		}
		return &Type{Kind: t.Kind, Name: t.Name, Args: args}
	default:
		return t
	}
}

// AssignableTo reports whether a value of type t may be used where
// target is expected: identity, or the implicit T -> T? wrap (spec
// §4.4.1 "Nullable rules": "T is assignable to T?. T? is not
// assignable to T.").
func (t *Type) AssignableTo(target *Type) bool {
	if t.Equals(target) {
		return true
	}
	if target.Kind == KNullable && !t.IsNullable() {
		return t.AssignableTo(target.Elem)
	}
	return false
}
