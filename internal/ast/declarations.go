package ast

func (*FuncDecl) declNode()      {}
func (*StructDecl) declNode()    {}
func (*EnumDecl) declNode()      {}
func (*BehaviorDecl) declNode()  {}
func (*ImplDecl) declNode()      {}
func (*TypeAliasDecl) declNode() {}
func (*ConstDecl) declNode()     {}
func (*UseDecl) declNode()       {}
func (*ModuleDecl) declNode()    {}
func (*DecoratorDecl) declNode() {}
func (*ClassDecl) declNode()     {}
func (*InterfaceDecl) declNode() {}

// Visibility is shared by class members, module items, and use
// declarations.
type Visibility int

const (
	VisDefault Visibility = iota
	VisPrivate
	VisProtected
	VisPub
)

// Decorator is `@Name(args…)`, e.g. `@derive(Eq, Ord)`.
type Decorator struct {
	Name string
	Args []Expr
}

// GenericParam is one entry of a declaration's `[T, …]` parameter
// list: either a type parameter or, when Const is set, a
// const-generic parameter of the given type.
type GenericParam struct {
	Name  string
	Const bool
	Type  Type // the const parameter's type, when Const is set
}

// WhereClause is one `T: Bound1 + Bound2` entry of a function's
// `where` clause (spec.md §4.4: "checked when monomorphizing call
// sites").
type WhereClause struct {
	Param  string
	Bounds []*NamedType
}

// Param is one function/method/closure-signature parameter.
type Param struct {
	Name string
	Type Type
}

// FuncDecl is a free function, possibly `async`/`lowlevel`.
type FuncDecl struct {
	base
	Doc         string
	Decorators  []Decorator
	Name        string
	Generics    []GenericParam
	Params      []Param
	RetType     Type // nil means Unit
	Where       []WhereClause
	Async       bool
	Lowlevel    bool
	Body        *BlockExpr // nil for a signature-only declaration (behavior method, extern)
}

// StructField is one field of a StructDecl.
type StructField struct {
	Name string
	Type Type
}

type StructDecl struct {
	base
	Doc        string
	Decorators []Decorator
	Name       string
	Generics   []GenericParam
	Fields     []StructField
}

// EnumVariant is one variant of an EnumDecl; Payload is nil for a
// unit variant, or the tuple-style payload types otherwise.
type EnumVariant struct {
	Name    string
	Payload []Type
}

type EnumDecl struct {
	base
	Doc        string
	Decorators []Decorator
	Name       string
	Generics   []GenericParam
	Variants   []EnumVariant
}

// AssocType is an associated-type declaration inside a behavior, e.g.
// `type Output;`.
type AssocType struct {
	Name    string
	Default Type // nil if no default
}

// BehaviorDecl is a trait: a named set of method signatures, optional
// associated types, and optional default-method bodies (spec.md
// GLOSSARY "Behavior").
type BehaviorDecl struct {
	base
	Doc        string
	Decorators []Decorator
	Name       string
	Generics   []GenericParam
	AssocTypes []AssocType
	Methods    []*FuncDecl // Body non-nil for methods with a default implementation
}

// ImplDecl is `impl Behavior for Type { … }` (Behavior nil for an
// inherent impl).
type ImplDecl struct {
	base
	Generics  []GenericParam
	Behavior  *NamedType // nil for inherent impls
	Self      Type
	Where     []WhereClause
	AssocTypes map[string]Type
	Methods   []*FuncDecl
	Consts    []*ConstDecl
}

type TypeAliasDecl struct {
	base
	Doc      string
	Name     string
	Generics []GenericParam
	Target   Type
}

type ConstDecl struct {
	base
	Doc   string
	Name  string
	Type  Type
	Value Expr
}

// UseItem is one imported symbol of a UseDecl, optionally `as`-aliased.
type UseItem struct {
	Name  string
	Alias string // "" if not aliased
}

// UseDecl is a `use` import: a glob (`use a::b::*`), a selected-symbol
// list (`use a::b::{X, Y as Z}`), or a single aliased import.
type UseDecl struct {
	base
	Path  *Path
	Glob  bool
	Items []UseItem // empty when Glob is true
}

// ModuleDecl declares the current file's module path, e.g.
// `module a::b::c;`.
type ModuleDecl struct {
	base
	Path *Path
}

// DecoratorDecl declares a user-defined decorator (attribute) usable
// via `@Name(...)` on later declarations.
type DecoratorDecl struct {
	base
	Name   string
	Params []Param
}

// --- OOP overlay ---

type ClassField struct {
	Visibility Visibility
	Static     bool
	Name       string
	Type       Type
	Init       Expr // nil if uninitialized
}

type MethodModifiers struct {
	Virtual  bool
	Override bool
	Abstract bool
	Sealed   bool
	Static   bool
}

type ClassMethod struct {
	Visibility Visibility
	Modifiers  MethodModifiers
	Decl       *FuncDecl
}

type ClassProperty struct {
	Visibility Visibility
	Name       string
	Type       Type
	Getter     *BlockExpr // nil if no getter
	Setter     *BlockExpr // nil if no setter; setter binds the implicit `value` parameter
}

type ClassConstructor struct {
	Visibility Visibility
	Params     []Param
	BaseArgs   []Expr // arguments forwarded to `extends` base constructor
	Body       *BlockExpr
}

// ClassDecl is a `class` declaration: fields, methods, properties, at
// most one constructor, an optional single `extends` target, and zero
// or more `implements` targets.
type ClassDecl struct {
	base
	Doc         string
	Decorators  []Decorator
	Name        string
	Generics    []GenericParam
	Extends     *NamedType // nil if no base class
	Implements  []*NamedType
	Sealed      bool
	Abstract    bool
	Fields      []ClassField
	Properties  []ClassProperty
	Methods     []ClassMethod
	Constructor *ClassConstructor
}

// InterfaceMethod is one method signature of an InterfaceDecl, with
// an optional default body.
type InterfaceMethod struct {
	Decl *FuncDecl // Body non-nil when a default implementation is supplied
}

type InterfaceDecl struct {
	base
	Doc      string
	Name     string
	Generics []GenericParam
	Extends  []*NamedType
	Methods  []InterfaceMethod
}
