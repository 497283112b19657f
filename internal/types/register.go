package types

import "github.com/hivellm/tml/internal/ast"

// genericNames extracts the plain name list from a GenericParam slice,
// for seeding a Resolver's in-scope generic set.
func genericNames(gs []ast.GenericParam) []string {
	names := make([]string, len(gs))
	for i, g := range gs {
		names[i] = g.Name
	}
	return names
}

// ResolveGenerics converts AST generic parameters into semantic
// Generic/ConstGeneric placeholders, grounded on
// _examples/original_source/compiler/include/types/type.hpp's
// `GenericType`/`ConstGenericType`.
func ResolveGenerics(env *Env, gs []ast.GenericParam) []Generic {
	out := make([]Generic, 0, len(gs))
	for _, g := range gs {
		if !g.Const {
			out = append(out, Generic{Name: g.Name})
		}
	}
	return out
}

// ResolveConstGenerics converts the const-generic subset of gs.
func ResolveConstGenerics(env *Env, gs []ast.GenericParam) []ConstGeneric {
	r := NewResolver(env, genericNames(gs))
	var out []ConstGeneric
	for _, g := range gs {
		if g.Const {
			out = append(out, ConstGeneric{Name: g.Name, ValueType: r.Resolve(g.Type)})
		}
	}
	return out
}

// RegisterFuncSig builds a FuncSig from a FuncDecl without resolving
// its body (the declaration-registration pass, spec.md §4.4 "Pass 1").
func RegisterFuncSig(env *Env, d *ast.FuncDecl) FuncSig {
	names := genericNames(d.Generics)
	r := NewResolver(env, names)
	params := make([]Param, len(d.Params))
	for i, p := range d.Params {
		rt := r.Resolve(p.Type)
		mut := false
		if ref, ok := rt.(Ref); ok {
			mut = ref.Mut
		}
		params[i] = Param{Name: p.Name, Type: rt, Mut: mut}
	}
	var ret Type = Primitive{Unit}
	if d.RetType != nil {
		ret = r.Resolve(d.RetType)
	}
	return FuncSig{
		Name: d.Name, Generics: ResolveGenerics(env, d.Generics),
		ConstGenerics: ResolveConstGenerics(env, d.Generics),
		Params: params, Ret: ret, IsAsync: d.Async, IsLowlevel: d.Lowlevel,
		Decl: d,
	}
}

// RegisterStruct builds a StructDef from a StructDecl.
func RegisterStruct(env *Env, d *ast.StructDecl) *StructDef {
	r := NewResolver(env, genericNames(d.Generics))
	fields := make([]FieldDef, len(d.Fields))
	for i, f := range d.Fields {
		fields[i] = FieldDef{Name: f.Name, Type: r.Resolve(f.Type), Visibility: ast.VisDefault}
	}
	return &StructDef{
		Name: d.Name, Generics: ResolveGenerics(env, d.Generics),
		Fields: fields, Derives: decoratorNames(d.Decorators), Decl: d,
	}
}

// RegisterEnum builds an EnumDef from an EnumDecl, assigning sequential
// discriminants in declaration order (spec.md §3.2 "Enum").
func RegisterEnum(env *Env, d *ast.EnumDecl) *EnumDef {
	r := NewResolver(env, genericNames(d.Generics))
	variants := make([]VariantDef, len(d.Variants))
	for i, v := range d.Variants {
		var tuple []Type
		for _, p := range v.Payload {
			tuple = append(tuple, r.Resolve(p))
		}
		variants[i] = VariantDef{Name: v.Name, TupleFields: tuple, Discriminant: int64(i)}
	}
	return &EnumDef{
		Name: d.Name, Generics: ResolveGenerics(env, d.Generics),
		Variants: variants, Derives: decoratorNames(d.Decorators), Decl: d,
	}
}

// RegisterBehavior builds a BehaviorDef from a BehaviorDecl.
func RegisterBehavior(env *Env, d *ast.BehaviorDecl) *BehaviorDef {
	methods := map[string]FuncSig{}
	bodies := map[string]*ast.FuncDecl{}
	for _, m := range d.Methods {
		methods[m.Name] = RegisterFuncSig(env, m)
		if m.Body != nil {
			bodies[m.Name] = m
		}
	}
	assoc := make([]string, len(d.AssocTypes))
	for i, a := range d.AssocTypes {
		assoc[i] = a.Name
	}
	return &BehaviorDef{
		Name: d.Name, Generics: ResolveGenerics(env, d.Generics),
		Methods: methods, DefaultBodies: bodies, AssocTypes: assoc, Decl: d,
	}
}

func decoratorNames(ds []ast.Decorator) []string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = d.Name
	}
	return names
}
