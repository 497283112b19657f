package codegen

import (
	"fmt"
	"strings"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// requireStructInstantiation canonicalizes base/typeArgs to a mangled
// name, queues it on the worklist if unseen, and returns the mangled
// name — the entry point every struct-literal/field-access site calls
// through (spec.md §4.6 "Monomorphization").
func (g *Generator) requireStructInstantiation(base string, typeArgs []types.Type) string {
	mangled := g.MangleNamed(base, typeArgs)
	if g.seenStructs[mangled] {
		return mangled
	}
	g.seenStructs[mangled] = true
	def, ok := g.tenv.LookupStruct(base)
	if !ok {
		return mangled
	}
	g.pendingStructs = append(g.pendingStructs, pendingStruct{mangled: mangled, def: def, typeArgs: typeArgs})
	return mangled
}

func (g *Generator) requireEnumInstantiation(base string, typeArgs []types.Type) string {
	mangled := g.MangleNamed(base, typeArgs)
	if g.seenEnums[mangled] {
		return mangled
	}
	g.seenEnums[mangled] = true
	def, ok := g.tenv.LookupEnum(base)
	if !ok {
		return mangled
	}
	g.pendingEnums = append(g.pendingEnums, pendingEnum{mangled: mangled, def: def, typeArgs: typeArgs})
	return mangled
}

func (g *Generator) requireFuncInstantiation(sig types.FuncSig, typeArgs []types.Type) string {
	mangled := g.MangleFunc(sig.Name, typeArgs)
	if g.seenFuncs[mangled] {
		return mangled
	}
	g.seenFuncs[mangled] = true
	g.pendingFuncs = append(g.pendingFuncs, pendingFunc{mangled: mangled, sig: sig, typeArgs: typeArgs})
	return mangled
}

// substituteGenerics binds def's generic parameter names to typeArgs
// positionally so field types resolve concretely for this
// instantiation.
func substituteGenerics(names []string, typeArgs []types.Type, t types.Type) types.Type {
	if g, ok := t.(types.Generic); ok {
		for i, n := range names {
			if n == g.Name && i < len(typeArgs) {
				return typeArgs[i]
			}
		}
	}
	return t
}

func (g *Generator) emitStructType(s pendingStruct) {
	names := genericNames(s.def.Generics)
	var fields []string
	for _, f := range s.def.Fields {
		ft := substituteGenerics(names, s.typeArgs, f.Type)
		fields = append(fields, g.AggregateType(ft))
	}
	g.w.EmitLine(fmt.Sprintf("%%struct.%s = type { %s }", s.mangled, strings.Join(fields, ", ")))
	g.emitDeriveImpls(s.mangled, s.def.Name, s.def.Derives, s.def.Fields, names, s.typeArgs)
}

// emitEnumType lowers an enum to a tag field followed by a byte-array
// payload area sized to the largest variant (spec.md §4.6 "named
// (enum) | %struct.MangledName with tag field + payload union area").
func (g *Generator) emitEnumType(e pendingEnum) {
	names := genericNames(e.def.Generics)
	maxPayload := 0
	for _, v := range e.def.Variants {
		size := 0
		for _, t := range v.TupleFields {
			size += llvmSizeHint(g.LowerType(substituteGenerics(names, e.typeArgs, t)))
		}
		for _, f := range v.StructFields {
			size += llvmSizeHint(g.LowerType(substituteGenerics(names, e.typeArgs, f.Type)))
		}
		if size > maxPayload {
			maxPayload = size
		}
	}
	g.w.EmitLine(fmt.Sprintf("%%struct.%s = type { i32, [%d x i8] }", e.mangled, maxPayload))
}

// llvmSizeHint is a conservative byte-size estimate for a lowered
// LLVM type, used only to size an enum's payload union area — not a
// target-accurate sizeof.
func llvmSizeHint(llvmType string) int {
	switch llvmType {
	case "i1", "i8":
		return 1
	case "i16":
		return 2
	case "i32", "float":
		return 4
	case "i64", "double", "ptr":
		return 8
	case "i128":
		return 16
	default:
		return 16
	}
}

func genericNames(gs []types.Generic) []string {
	names := make([]string, len(gs))
	for i, gp := range gs {
		names[i] = gp.Name
	}
	return names
}

// genFunc emits one concrete (non-generic) function or a single
// monomorphized instantiation, under name.
func (g *Generator) genFunc(decl *ast.FuncDecl, typeArgs []types.Type, name string) {
	sig, ok := g.tenv.LookupFunc(decl.Name)
	if !ok {
		sig = types.FuncSig{Name: decl.Name, Decl: decl}
	}
	g.genFuncBody(decl, sig, typeArgs, name, "")
}

func (g *Generator) emitFuncInstantiation(p pendingFunc) {
	if p.sig.Decl == nil {
		return
	}
	g.genFuncBody(p.sig.Decl, p.sig, p.typeArgs, p.mangled, "")
}

// genFuncBody lowers a function declaration's signature and body.
// selfType is non-empty for methods, whose name arrives already
// mangled as `Type__method`.
func (g *Generator) genFuncBody(decl *ast.FuncDecl, sig types.FuncSig, typeArgs []types.Type, name, selfType string) {
	retType := "void"
	if sig.Ret != nil {
		retType = g.LowerType(sig.Ret)
	}
	genericNamesList := make([]string, len(sig.Generics))
	for i, gp := range sig.Generics {
		genericNamesList[i] = gp.Name
	}

	var params []string
	g.pushScope()
	for _, p := range decl.Params {
		pt := g.resolveType(p.Type)
		if len(typeArgs) > 0 {
			pt = substituteGenerics(genericNamesList, typeArgs, pt)
		}
		params = append(params, g.LowerType(pt)+" %"+p.Name)
	}

	linkage := ""
	if g.Options.ForceInternalLinkage {
		linkage = "internal "
	}
	g.w.EmitLine(fmt.Sprintf("define %s%s @%s(%s) {", linkage, retType, name, strings.Join(params, ", ")))
	g.w.EmitLine("entry:")
	g.emitFunctionDebug(name, decl.Span())
	g.emitCoverageFuncEntry(name)

	for _, p := range decl.Params {
		pt := g.resolveType(p.Type)
		if len(typeArgs) > 0 {
			pt = substituteGenerics(genericNamesList, typeArgs, pt)
		}
		llt := g.LowerType(pt)
		slot := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", slot, llt))
		g.w.EmitLine(fmt.Sprintf("  store %s %%%s, ptr %s", llt, p.Name, slot))
		g.defineLocal(p.Name, slot, pt)
	}

	g.blockTerminated = false
	if decl.Body != nil {
		g.genBlockInline(decl.Body)
	}
	if !g.blockTerminated {
		g.emitScopeDrops()
		if retType == "void" {
			g.w.EmitLine("  ret void")
		} else {
			g.w.EmitLine(fmt.Sprintf("  ret %s %s", retType, zeroValue(retType)))
		}
	}
	g.popScope()
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

func zeroValue(llvmType string) string {
	switch llvmType {
	case "float", "double":
		return "0.0"
	case "ptr":
		return "null"
	default:
		return "0"
	}
}

// genImpl emits every method of an inherent or behavior impl block,
// plus the behavior impl's vtable constant (spec.md §4.6 "Vtables and
// dyn dispatch").
func (g *Generator) genImpl(impl *ast.ImplDecl) {
	selfType := g.resolveType(impl.Self)
	selfName := typeName(selfType)
	for _, m := range impl.Methods {
		if len(m.Generics) != 0 {
			continue
		}
		mangled := selfName + "__" + m.Name
		_, sig, ok := g.tenv.FindImpl(selfType, m.Name)
		if !ok {
			sig = types.FuncSig{Name: m.Name, Decl: m}
		}
		g.genFuncBody(m, sig, nil, mangled, selfName)
	}
	if impl.Behavior != nil {
		g.emitVtable(selfName, impl)
	}
}

// emitVtable synthesizes `@vtable.Type.Behavior`, an internal constant
// holding the impl's method function pointers in declared order.
// emitVtable emits the vtable in the behavior's own declared method
// order (not the impl block's method order, which a caller is free to
// write in any order) so the slot index behaviorMethodSlot computes
// from the behavior declaration always lines up with the slot this
// function actually wrote.
func (g *Generator) emitVtable(selfName string, impl *ast.ImplDecl) {
	behaviorName := impl.Behavior.Path.String()
	key := selfName + "." + behaviorName
	if g.vtables[key] {
		return
	}
	g.vtables[key] = true

	var order []string
	if def, ok := g.tenv.LookupBehavior(behaviorName); ok && def.Decl != nil {
		for _, m := range def.Decl.Methods {
			order = append(order, m.Name)
		}
	} else {
		for _, m := range impl.Methods {
			order = append(order, m.Name)
		}
	}

	var slots []string
	for _, name := range order {
		slots = append(slots, "ptr @"+selfName+"__"+name)
	}
	g.w.EmitLine(fmt.Sprintf("@vtable.%s.%s = internal constant { %s } { %s }",
		selfName, behaviorName, strings.Repeat("ptr, ", len(slots)-1)+"ptr", strings.Join(slots, ", ")))
}

// genClass lowers a class declaration's fields to a struct type and
// each of its methods/constructor to functions, mirroring how an
// inherent impl's methods are named (`Type__method`).
func (g *Generator) genClass(cl *ast.ClassDecl) {
	var fields []string
	for _, f := range cl.Fields {
		fields = append(fields, g.AggregateType(g.resolveType(f.Type)))
	}
	g.w.EmitLine(fmt.Sprintf("%%struct.%s = type { %s }", cl.Name, strings.Join(fields, ", ")))

	if cl.Constructor != nil {
		g.genConstructor(cl, cl.Constructor)
	}
	for _, m := range cl.Methods {
		if len(m.Decl.Generics) != 0 {
			continue
		}
		mangled := cl.Name + "__" + m.Decl.Name
		g.genFuncBody(m.Decl, types.FuncSig{Name: m.Decl.Name, Decl: m.Decl}, nil, mangled, cl.Name)
	}
}

func (g *Generator) genConstructor(cl *ast.ClassDecl, ctor *ast.ClassConstructor) {
	var params []string
	g.pushScope()
	for _, p := range ctor.Params {
		pt := g.resolveType(p.Type)
		params = append(params, g.LowerType(pt)+" %"+p.Name)
	}
	linkage := ""
	if g.Options.ForceInternalLinkage {
		linkage = "internal "
	}
	g.w.EmitLine(fmt.Sprintf("define %sptr @%s__new(%s) {", linkage, cl.Name, strings.Join(params, ", ")))
	g.w.EmitLine("entry:")
	selfPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %%struct.%s", selfPtr, cl.Name))
	g.defineLocal("self", selfPtr, types.Named{Name: cl.Name})
	for _, p := range ctor.Params {
		pt := g.resolveType(p.Type)
		llt := g.LowerType(pt)
		slot := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", slot, llt))
		g.w.EmitLine(fmt.Sprintf("  store %s %%%s, ptr %s", llt, p.Name, slot))
		g.defineLocal(p.Name, slot, pt)
	}
	g.blockTerminated = false
	if ctor.Body != nil {
		g.genBlockInline(ctor.Body)
	}
	if !g.blockTerminated {
		g.emitScopeDrops()
		g.w.EmitLine(fmt.Sprintf("  ret ptr %s", selfPtr))
	}
	g.popScope()
	g.w.EmitLine("}")
	g.w.EmitLine("")
}
