package types

import "github.com/hivellm/tml/internal/ast"

// Param is one resolved function parameter.
type Param struct {
	Name string
	Type Type
	Mut  bool
}

// FuncSig is a resolved function signature, registered for every free
// function, behavior method, and impl method.
//
// Grounded on
// _examples/original_source/compiler/include/types/module.hpp
// (forward-declared FuncSig) together with the signature shape implied
// by include/types/checker.hpp's declaration-registration pass.
type FuncSig struct {
	Name       string
	Generics   []Generic
	ConstGenerics []ConstGeneric
	Params     []Param
	Ret        Type
	IsAsync    bool
	IsLowlevel bool
	Visibility ast.Visibility
	Decl       *ast.FuncDecl // nil for builtin/intrinsic signatures
}

// FieldDef is one resolved struct field.
type FieldDef struct {
	Name       string
	Type       Type
	Visibility ast.Visibility
}

// StructDef is a resolved struct declaration.
type StructDef struct {
	Name     string
	Generics []Generic
	Fields   []FieldDef
	Derives  []string
	Decl     *ast.StructDecl
}

func (s *StructDef) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

func (s *StructDef) Field(name string) (FieldDef, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

// VariantDef is one enum variant, in tuple, struct, or unit form.
type VariantDef struct {
	Name        string
	TupleFields []Type     // non-nil for tuple variants
	StructFields []FieldDef // non-nil for struct-shaped variants
	Discriminant int64
}

// EnumDef is a resolved enum declaration.
type EnumDef struct {
	Name     string
	Generics []Generic
	Variants []VariantDef
	Derives  []string
	Decl     *ast.EnumDecl
}

func (e *EnumDef) Variant(name string) (VariantDef, bool) {
	for _, v := range e.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return VariantDef{}, false
}

// BehaviorDef is a resolved behavior (trait) declaration.
type BehaviorDef struct {
	Name          string
	Generics      []Generic
	Methods       map[string]FuncSig
	DefaultBodies map[string]*ast.FuncDecl
	AssocTypes    []string
	Decl          *ast.BehaviorDecl
}

// ImplDef records one `impl [Behavior for] Self` block's resolved
// method table, keyed by the impl's target type so the checker and
// codegen can look up method dispatch without re-walking the AST.
type ImplDef struct {
	Behavior   *Named // nil for an inherent impl
	Target     Type
	Methods    map[string]FuncSig
	AssocTypes map[string]Type
	Decl       *ast.ImplDecl
}

// ClassDef is a resolved `class` declaration (OOP overlay, spec.md
// GLOSSARY "Class").
type ClassDef struct {
	Name        string
	Generics    []Generic
	Extends     *Named
	Implements  []Named
	Fields      []FieldDef
	Methods     map[string]FuncSig
	Constructor *FuncSig
	Sealed      bool
	Abstract    bool
	Decl        *ast.ClassDecl
}

// InterfaceDef is a resolved `interface` declaration.
type InterfaceDef struct {
	Name    string
	Extends []Named
	Methods map[string]FuncSig
	Decl    *ast.InterfaceDecl
}
