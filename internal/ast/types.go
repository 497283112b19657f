package ast

func (*NamedType) typeNode()     {}
func (*RefType) typeNode()       {}
func (*PointerType) typeNode()   {}
func (*ArrayType) typeNode()     {}
func (*SliceType) typeNode()     {}
func (*TupleType) typeNode()     {}
func (*FuncType) typeNode()      {}
func (*DynType) typeNode()       {}
func (*ImplType) typeNode()      {}
func (*InferType) typeNode()     {}
func (*TemplateType) typeNode()  {}

// NamedType is a qualified path with optional generic and const-arg
// lists, e.g. `a::List[I32, 4]`.
type NamedType struct {
	base
	Path      *Path
	TypeArgs  []Type
	ConstArgs []Expr
}

// RefType is `ref T` / `mut ref T`, with an optional explicit
// lifetime `ref[a] T`.
type RefType struct {
	base
	Mutable  bool
	Lifetime string // "" if not given
	Elem     Type
}

// PointerType is `*T` / `*mut T`.
type PointerType struct {
	base
	Mutable bool
	Elem    Type
}

// ArrayType is a fixed-size array `[T; N]`.
type ArrayType struct {
	base
	Elem Type
	Size Expr
}

// SliceType is `[T]`.
type SliceType struct {
	base
	Elem Type
}

// TupleType is `(T0, T1, …)`.
type TupleType struct {
	base
	Elems []Type
}

// FuncType is a function-signature type.
type FuncType struct {
	base
	Params []Type
	Ret    Type
}

// DynType is `dyn Behavior[...]`, optionally mutable.
type DynType struct {
	base
	Behavior *NamedType
	Mutable  bool
}

// ImplType is `impl Behavior[...]`.
type ImplType struct {
	base
	Behavior *NamedType
}

// InferType is the `_` infer-hole.
type InferType struct{ base }

// TemplateType marks a template-literal-typed expression position
// (downstream distinct `Text` type per spec.md §3.3).
type TemplateType struct{ base }
