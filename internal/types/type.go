// Package types defines the semantic type representation used by the
// checker and codegen passes, distinct from the AST type nodes the
// parser produces (spec.md §3.4). Types are plain values compared
// structurally through Key(), which gives every Type a canonical string used for interning and error
// messages.
//
// Grounded on
// _examples/original_source/compiler/include/types/type.hpp.
package types

import (
	"fmt"
	"strings"
)

// Type is any semantic type variant.
type Type interface {
	// Key returns a canonical, comparable string representation used
	// for interning, map keys, and mangled-name derivation.
	Key() string
	String() string
}

// PrimitiveKind enumerates the built-in scalar kinds.
type PrimitiveKind int

const (
	I8 PrimitiveKind = iota
	I16
	I32
	I64
	I128
	U8
	U16
	U32
	U64
	U128
	F32
	F64
	Bool
	Char
	Str
	Unit
	Never
)

var primitiveNames = map[PrimitiveKind]string{
	I8: "I8", I16: "I16", I32: "I32", I64: "I64", I128: "I128",
	U8: "U8", U16: "U16", U32: "U32", U64: "U64", U128: "U128",
	F32: "F32", F64: "F64", Bool: "Bool", Char: "Char", Str: "Str",
	Unit: "Unit", Never: "Never",
}

// PrimitiveTypeOf looks up a primitive by its source spelling, for the
// checker's builtin-name table.
func PrimitiveTypeOf(name string) (Primitive, bool) {
	for k, n := range primitiveNames {
		if n == name {
			return Primitive{Kind: k}, true
		}
	}
	return Primitive{}, false
}

// IsInt reports whether k is a signed or unsigned integer kind.
func (k PrimitiveKind) IsInt() bool { return k <= U128 }

// IsSigned reports whether k is a signed integer kind.
func (k PrimitiveKind) IsSigned() bool { return k <= I128 }

// IsFloat reports whether k is F32 or F64.
func (k PrimitiveKind) IsFloat() bool { return k == F32 || k == F64 }

// BitWidth returns the storage width of an integer or float kind, 0
// for non-numeric kinds.
func (k PrimitiveKind) BitWidth() int {
	switch k {
	case I8, U8:
		return 8
	case I16, U16:
		return 16
	case I32, U32, F32:
		return 32
	case I64, U64, F64:
		return 64
	case I128, U128:
		return 128
	}
	return 0
}

type Primitive struct{ Kind PrimitiveKind }

func (p Primitive) Key() string    { return primitiveNames[p.Kind] }
func (p Primitive) String() string { return p.Key() }

// Named is a user-defined struct/enum/class/interface type, optionally
// generic-instantiated.
type Named struct {
	Name       string
	ModulePath string
	TypeArgs   []Type
}

func (n Named) Key() string {
	var sb strings.Builder
	if n.ModulePath != "" {
		sb.WriteString(n.ModulePath)
		sb.WriteString("::")
	}
	sb.WriteString(n.Name)
	if len(n.TypeArgs) > 0 {
		sb.WriteString("[")
		for i, a := range n.TypeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.Key())
		}
		sb.WriteString("]")
	}
	return sb.String()
}
func (n Named) String() string { return n.Key() }

// Ref is `ref T` / `mut ref T`, with an optional named lifetime.
type Ref struct {
	Mut      bool
	Elem     Type
	Lifetime string
}

func (r Ref) Key() string {
	prefix := "ref "
	if r.Mut {
		prefix = "mut ref "
	}
	return prefix + r.Elem.Key()
}
func (r Ref) String() string { return r.Key() }

// Ptr is `*T` / `*mut T`.
type Ptr struct {
	Mut  bool
	Elem Type
}

func (p Ptr) Key() string {
	if p.Mut {
		return "*mut " + p.Elem.Key()
	}
	return "*" + p.Elem.Key()
}
func (p Ptr) String() string { return p.Key() }

// Array is a fixed-size `[T; N]`.
type Array struct {
	Elem Type
	Size int64
}

func (a Array) Key() string    { return fmt.Sprintf("[%s; %d]", a.Elem.Key(), a.Size) }
func (a Array) String() string { return a.Key() }

// Slice is `[T]`.
type Slice struct{ Elem Type }

func (s Slice) Key() string    { return "[" + s.Elem.Key() + "]" }
func (s Slice) String() string { return s.Key() }

// Tuple is `(T0, T1, …)`.
type Tuple struct{ Elems []Type }

func (t Tuple) Key() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.Key()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
func (t Tuple) String() string { return t.Key() }

// Func is a free function's signature type.
type Func struct {
	Params  []Type
	Ret     Type
	IsAsync bool
}

func (f Func) Key() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.Key()
	}
	ret := "Unit"
	if f.Ret != nil {
		ret = f.Ret.Key()
	}
	return "func(" + strings.Join(parts, ", ") + ") -> " + ret
}
func (f Func) String() string { return f.Key() }

// CapturedVar is one closure-environment capture.
type CapturedVar struct {
	Name string
	Type Type
	Mut  bool
}

// Closure is a closure's signature plus its captured environment,
// populated by the checker after capture analysis.
type Closure struct {
	Params   []Type
	Ret      Type
	Captures []CapturedVar
}

func (c Closure) Key() string {
	parts := make([]string, len(c.Params))
	for i, p := range c.Params {
		parts[i] = p.Key()
	}
	ret := "Unit"
	if c.Ret != nil {
		ret = c.Ret.Key()
	}
	return "closure(" + strings.Join(parts, ", ") + ") -> " + ret
}
func (c Closure) String() string { return c.Key() }

// Var is an inference type variable, resolved via unification in a
// TypeEnv (spec.md §4.3 "bidirectional inference for literals").
type Var struct {
	ID    uint32
	Bound Type // optional upper bound; nil if unconstrained
}

func (v Var) Key() string    { return fmt.Sprintf("?%d", v.ID) }
func (v Var) String() string { return v.Key() }

// Generic is an unbound generic type parameter occurring in a
// declaration's own body (not yet substituted by a call site).
type Generic struct {
	Name   string
	Bounds []Named // behavior bounds
}

func (g Generic) Key() string    { return g.Name }
func (g Generic) String() string { return g.Name }

// ConstGeneric is a const-generic parameter, e.g. `const N: U64`.
type ConstGeneric struct {
	Name      string
	ValueType Type
}

func (c ConstGeneric) Key() string    { return "const " + c.Name }
func (c ConstGeneric) String() string { return c.Key() }

// ConstValue is a compile-time constant of a const-generic argument or
// a `const` declaration's evaluated value.
type ConstValue struct {
	Int   int64
	Uint  uint64
	Bool  bool
	Char  rune
	Kind  PrimitiveKind
	IsInt bool
}

func (c ConstValue) AsI64() int64 {
	switch {
	case c.IsInt:
		return c.Int
	default:
		return int64(c.Uint)
	}
}

// DynBehavior is a trait object `dyn Behavior[T]`, optionally mutable.
type DynBehavior struct {
	BehaviorName string
	TypeArgs     []Type
	Mut          bool
}

func (d DynBehavior) Key() string {
	mut := ""
	if d.Mut {
		mut = "mut "
	}
	return "dyn " + mut + (Named{Name: d.BehaviorName, TypeArgs: d.TypeArgs}).Key()
}
func (d DynBehavior) String() string { return d.Key() }

// ImplBehavior is an opaque `impl Behavior[T]` return type.
type ImplBehavior struct {
	BehaviorName string
	TypeArgs     []Type
}

func (i ImplBehavior) Key() string {
	return "impl " + (Named{Name: i.BehaviorName, TypeArgs: i.TypeArgs}).Key()
}
func (i ImplBehavior) String() string { return i.Key() }

// Equal reports structural equality of two resolved (non-Var) types by
// canonical key comparison.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Key() == b.Key()
}
