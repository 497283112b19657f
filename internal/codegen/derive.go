package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/types"
)

// emitDeriveImpls synthesizes an impl for each derive the struct
// declaration requested, field-by-field, per spec.md §4.6 "Derive
// macros". Super-trait relationships are enforced here the same way
// the derive registry does: `Eq` also emits `PartialEq`, `Copy` also
// emits `Duplicate`, `Ord` also emits `PartialOrd` and `Eq`.
//
// Grounded on
// _examples/original_source/compiler/src/codegen/llvm/derive/{debug,default,deserialize,display,fromstr,partial_eq,serialize}.cpp
// for the one-impl-per-derive shape, generalized here to a single
// field-by-field loop shared across the comparison/hash derives
// rather than one bespoke function per derive kind.
func (g *Generator) emitDeriveImpls(mangled, typeName string, derives []string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	set := map[string]bool{}
	for _, d := range derives {
		set[d] = true
	}
	if set["Eq"] {
		set["PartialEq"] = true
	}
	if set["Ord"] {
		set["PartialOrd"] = true
		set["Eq"] = true
		set["PartialEq"] = true
	}
	if set["Copy"] {
		set["Duplicate"] = true
	}

	structType := "%struct." + mangled
	if set["PartialEq"] {
		g.emitDerivedEq(mangled, structType, fields, genericNames, typeArgs)
	}
	if set["PartialOrd"] {
		g.emitDerivedOrd(mangled, structType, fields, genericNames, typeArgs)
	}
	if set["Hash"] {
		g.emitDerivedHash(mangled, structType, fields, genericNames, typeArgs)
	}
	if set["Default"] {
		g.emitDerivedDefault(mangled, structType, fields, genericNames, typeArgs)
	}
	if set["Duplicate"] {
		g.emitDerivedDuplicate(mangled, structType)
	}
	if set["Debug"] {
		g.emitDerivedDebug(mangled, typeName, structType, fields, genericNames, typeArgs)
	}
	if set["Display"] {
		g.emitDerivedDisplay(mangled, structType, fields, genericNames, typeArgs)
	}
}

// emitDerivedEq synthesizes field-by-field structural equality.
func (g *Generator) emitDerivedEq(mangled, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define i1 @%s__eq(ptr %%a, ptr %%b) {", mangled))
	g.w.EmitLine("entry:")
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		ap := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%a, i32 0, i32 %d", ap, structType, i))
		bp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%b, i32 0, i32 %d", bp, structType, i))
		av := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", av, llt, ap))
		bv := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", bv, llt, bp))
		cmp := g.w.FreshReg()
		instr := "icmp eq"
		if isFloatType(ft) {
			instr = "fcmp oeq"
		}
		g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", cmp, instr, llt, av, bv))
		okL := g.w.FreshLabel("eq.ok.")
		failL := g.w.FreshLabel("eq.fail.")
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, okL, failL))
		g.w.EmitLine(failL + ":")
		g.w.EmitLine("  ret i1 false")
		g.w.EmitLine(okL + ":")
	}
	g.w.EmitLine("  ret i1 true")
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedOrd synthesizes lexicographic ordering across fields in
// declaration order (spec.md §4.6 "lexicographic ordering for
// multi-field structs").
func (g *Generator) emitDerivedOrd(mangled, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define i32 @%s__cmp(ptr %%a, ptr %%b) {", mangled))
	g.w.EmitLine("entry:")
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		ap := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%a, i32 0, i32 %d", ap, structType, i))
		bp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%b, i32 0, i32 %d", bp, structType, i))
		av := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", av, llt, ap))
		bv := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", bv, llt, bp))
		lt := g.w.FreshReg()
		gt := g.w.FreshReg()
		ltInstr, gtInstr := "icmp slt", "icmp sgt"
		if isFloatType(ft) {
			ltInstr, gtInstr = "fcmp olt", "fcmp ogt"
		} else if !isSignedType(ft) {
			ltInstr, gtInstr = "icmp ult", "icmp ugt"
		}
		g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", lt, ltInstr, llt, av, bv))
		g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", gt, gtInstr, llt, av, bv))
		ltL := g.w.FreshLabel("cmp.lt.")
		checkGtL := g.w.FreshLabel("cmp.checkgt.")
		gtL := g.w.FreshLabel("cmp.gt.")
		nextL := g.w.FreshLabel("cmp.next.")
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", lt, ltL, checkGtL))
		g.w.EmitLine(ltL + ":")
		g.w.EmitLine("  ret i32 -1")
		g.w.EmitLine(checkGtL + ":")
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", gt, gtL, nextL))
		g.w.EmitLine(gtL + ":")
		g.w.EmitLine("  ret i32 1")
		g.w.EmitLine(nextL + ":")
	}
	g.w.EmitLine("  ret i32 0")
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedHash synthesizes an FNV-1a mix across fields (spec.md
// §4.6 "FNV-1a as the default hash mix").
func (g *Generator) emitDerivedHash(mangled, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define i64 @%s__hash(ptr %%self) {", mangled))
	g.w.EmitLine("entry:")
	accSlot := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca i64", accSlot))
	g.w.EmitLine(fmt.Sprintf("  store i64 -3750763034362895579, ptr %s", accSlot)) // FNV offset basis
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		fp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%self, i32 0, i32 %d", fp, structType, i))
		fv := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", fv, llt, fp))
		fvi64 := fv
		if llt != "i64" {
			ext := g.w.FreshReg()
			if llt == "ptr" {
				g.w.EmitLine(fmt.Sprintf("  %s = ptrtoint ptr %s to i64", ext, fv))
			} else if llt == "double" || llt == "float" {
				g.w.EmitLine(fmt.Sprintf("  %s = bitcast %s %s to i64", ext, llt, fv))
			} else {
				g.w.EmitLine(fmt.Sprintf("  %s = zext %s %s to i64", ext, llt, fv))
			}
			fvi64 = ext
		}
		cur := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load i64, ptr %s", cur, accSlot))
		xored := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = xor i64 %s, %s", xored, cur, fvi64))
		mixed := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = mul i64 %s, 1099511628211", mixed, xored))
		g.w.EmitLine(fmt.Sprintf("  store i64 %s, ptr %s", mixed, accSlot))
	}
	result := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load i64, ptr %s", result, accSlot))
	g.w.EmitLine(fmt.Sprintf("  ret i64 %s", result))
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedDefault synthesizes a zero-valued constructor.
func (g *Generator) emitDerivedDefault(mangled, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define ptr @%s__default() {", mangled))
	g.w.EmitLine("entry:")
	ptr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", ptr, structType))
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		fp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %s, i32 0, i32 %d", fp, structType, ptr, i))
		g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", llt, zeroValue(llt), fp))
	}
	g.w.EmitLine(fmt.Sprintf("  ret ptr %s", ptr))
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedDuplicate synthesizes a shallow field-copying clone,
// grounded on `Copy`/`Duplicate`'s value-semantics (a bitwise-copyable
// aggregate load/store round trip).
func (g *Generator) emitDerivedDuplicate(mangled, structType string) {
	g.w.EmitLine(fmt.Sprintf("define ptr @%s__duplicate(ptr %%self) {", mangled))
	g.w.EmitLine("entry:")
	ptr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", ptr, structType))
	val := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %%self", val, structType))
	g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", structType, val, ptr))
	g.w.EmitLine(fmt.Sprintf("  ret ptr %s", ptr))
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedDebug synthesizes `"TypeName { field1: <value>, field2:
// <value> }"`, the shape documented in
// `_examples/original_source/compiler/src/codegen/llvm/derive/debug.cpp`.
// Each field is loaded and stringified the same way string
// interpolation stringifies an embedded expression
// (`stringifyValue`), then joined with literal `", "` separators.
func (g *Generator) emitDerivedDebug(mangled, typeName, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define ptr @%s__debug(ptr %%self) {", mangled))
	g.w.EmitLine("entry:")
	acc := g.genStringLit(typeName + " { ")
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		fp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%self, i32 0, i32 %d", fp, structType, i))
		fv := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", fv, llt, fp))
		prefix := f.Name + ": "
		if i > 0 {
			prefix = ", " + prefix
		}
		acc = g.concatStrings(acc, g.genStringLit(prefix))
		acc = g.concatStrings(acc, g.stringifyValue(fv, ft))
	}
	acc = g.concatStrings(acc, g.genStringLit(" }"))
	g.w.EmitLine(fmt.Sprintf("  ret ptr %s", acc))
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

// emitDerivedDisplay synthesizes a bare comma-joined field listing
// (`"value1, value2, value3"`), the shape documented in
// `_examples/original_source/compiler/src/codegen/llvm/derive/display.cpp`.
func (g *Generator) emitDerivedDisplay(mangled, structType string, fields []types.FieldDef, genericNames []string, typeArgs []types.Type) {
	g.w.EmitLine(fmt.Sprintf("define ptr @%s__display(ptr %%self) {", mangled))
	g.w.EmitLine("entry:")
	acc := g.genStringLit("")
	for i, f := range fields {
		ft := substituteGenerics(genericNames, typeArgs, f.Type)
		llt := g.AggregateType(ft)
		fp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%self, i32 0, i32 %d", fp, structType, i))
		fv := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", fv, llt, fp))
		if i > 0 {
			acc = g.concatStrings(acc, g.genStringLit(", "))
		}
		acc = g.concatStrings(acc, g.stringifyValue(fv, ft))
	}
	g.w.EmitLine(fmt.Sprintf("  ret ptr %s", acc))
	g.w.EmitLine("}")
	g.w.EmitLine("")
}
