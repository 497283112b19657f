package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/ast"
	"github.com/hivellm/tml/internal/types"
)

// genIf lowers `if`/`else` with unique labels from the writer's label
// counter, matching spec.md §4.6 "Control flow".
func (g *Generator) genIf(n *ast.IfExpr) string {
	cond := g.genExpr(n.Cond)
	g.emitCoverageBranch(cond)
	thenL := g.w.FreshLabel("if.then.")
	elseL := g.w.FreshLabel("if.else.")
	endL := g.w.FreshLabel("if.end.")

	g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cond, thenL, elseL))
	g.w.EmitLine(thenL + ":")
	g.blockTerminated = false
	g.genBlockInline(n.Then)
	if !g.blockTerminated {
		g.w.EmitLine("  br label %" + endL)
	}
	g.w.EmitLine(elseL + ":")
	g.blockTerminated = false
	if n.Else != nil {
		g.genExpr(n.Else)
	}
	if !g.blockTerminated {
		g.w.EmitLine("  br label %" + endL)
	}
	g.w.EmitLine(endL + ":")
	g.blockTerminated = false
	return "void"
}

func (g *Generator) genTernary(n *ast.TernaryExpr) string {
	cond := g.genExpr(n.Cond)
	g.emitCoverageBranch(cond)
	thenL := g.w.FreshLabel("tern.then.")
	elseL := g.w.FreshLabel("tern.else.")
	endL := g.w.FreshLabel("tern.end.")
	resultType := g.LowerType(g.inferType(n.Then))
	resultSlot := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", resultSlot, resultType))
	g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cond, thenL, elseL))
	g.w.EmitLine(thenL + ":")
	thenVal := g.genExpr(n.Then)
	g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", resultType, thenVal, resultSlot))
	g.w.EmitLine("  br label %" + endL)
	g.w.EmitLine(elseL + ":")
	elseVal := g.genExpr(n.Else)
	g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", resultType, elseVal, resultSlot))
	g.w.EmitLine("  br label %" + endL)
	g.w.EmitLine(endL + ":")
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", reg, resultType, resultSlot))
	return reg
}

// genWhen lowers a `when` expression to a chain of pattern tests, each
// possibly producing payload bindings (spec.md §4.6 "`when` lowers to
// a chain of pattern tests"). genArmTest emits the tag/value test
// ending in the branch to armL/nextL; genArmBind then materializes any
// names the matched pattern introduces before the guard or body runs.
// EnumPattern gets a full discriminant test plus payload
// getelementptr/load (spec.md §8.2.6's `Just(x) => x + 1` scenario);
// StructPattern/TuplePattern/OrPattern/RangePattern/ArrayPattern still
// fall through to an unconditional match, which the borrow/type
// checker's exhaustiveness check makes safe but not discriminating.
func (g *Generator) genWhen(n *ast.WhenExpr) string {
	scrutinee := g.genExpr(n.Scrutinee)
	scrutType := g.inferType(n.Scrutinee)
	endL := g.w.FreshLabel("when.end.")
	for _, arm := range n.Arms {
		armL := g.w.FreshLabel("when.arm.")
		nextL := g.w.FreshLabel("when.next.")
		g.genArmTest(arm.Pattern, scrutinee, scrutType, armL, nextL)
		g.w.EmitLine(armL + ":")
		g.blockTerminated = false
		g.genArmBind(arm.Pattern, scrutinee, scrutType)
		if arm.Guard != nil {
			guardVal := g.genExpr(arm.Guard)
			guardThen := g.w.FreshLabel("when.guard.then.")
			g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", guardVal, guardThen, nextL))
			g.w.EmitLine(guardThen + ":")
		}
		g.genExpr(arm.Body)
		if !g.blockTerminated {
			g.w.EmitLine("  br label %" + endL)
		}
		g.w.EmitLine(nextL + ":")
		g.blockTerminated = false
	}
	g.w.EmitLine("  br label %" + endL)
	g.w.EmitLine(endL + ":")
	return "void"
}

// genArmTest emits the branch deciding whether one when-arm's pattern
// matches scrutinee (of semantic type scrutType), branching to matchL
// on success and nextL otherwise. A wildcard/binding pattern always
// matches; EnumPattern compares the scrutinee's tag field against the
// named variant's discriminant.
func (g *Generator) genArmTest(pat ast.Pattern, scrutinee string, scrutType types.Type, matchL, nextL string) {
	switch p := pat.(type) {
	case *ast.WildcardPattern:
		g.w.EmitLine("  br label %" + matchL)
	case *ast.IdentPattern:
		g.w.EmitLine("  br label %" + matchL)
	case *ast.LiteralPattern:
		lit := g.genExpr(p.Value)
		cmp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = icmp eq i64 %s, %s", cmp, scrutinee, lit))
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, matchL, nextL))
	case *ast.EnumPattern:
		variant, structType, ok := g.enumPatternLayout(p, scrutType)
		if !ok {
			g.w.EmitLine("  br label %" + matchL)
			return
		}
		ptr := g.spillToPtr(scrutinee, structType)
		tagPtr := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %s, i32 0, i32 0", tagPtr, structType, ptr))
		tagVal := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load i32, ptr %s", tagVal, tagPtr))
		cmp := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = icmp eq i32 %s, %d", cmp, tagVal, variant.Discriminant))
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, matchL, nextL))
	default:
		g.w.EmitLine("  br label %" + matchL)
	}
}

// genArmBind materializes the local bindings a matched pattern
// introduces, run once per arm right after its matchL label so the
// guard and body see them. IdentPattern binds the whole scrutinee by
// name; EnumPattern additionally loads each payload sub-pattern's
// identifier out of the enum's byte-array payload area.
func (g *Generator) genArmBind(pat ast.Pattern, scrutinee string, scrutType types.Type) {
	switch p := pat.(type) {
	case *ast.IdentPattern:
		if p.Name == "_" {
			return
		}
		llt := g.LowerType(scrutType)
		slot := g.spillToPtr(scrutinee, llt)
		g.defineLocal(p.Name, slot, scrutType)
	case *ast.EnumPattern:
		g.bindEnumPayload(p, scrutinee, scrutType)
	}
}

// enumPatternLayout resolves an EnumPattern against scrutType's enum
// definition, returning the matched variant and the scrutinee's
// mangled `%struct.*` type name. ok is false when scrutType isn't the
// named enum the pattern expects, in which case the caller should
// treat the pattern as already ruled out by the type checker.
func (g *Generator) enumPatternLayout(p *ast.EnumPattern, scrutType types.Type) (types.VariantDef, string, bool) {
	named, ok := scrutType.(types.Named)
	if !ok {
		return types.VariantDef{}, "", false
	}
	def, ok := g.tenv.LookupEnum(named.Name)
	if !ok {
		return types.VariantDef{}, "", false
	}
	variant, ok := def.Variant(p.Variant)
	if !ok {
		return types.VariantDef{}, "", false
	}
	mangled := g.requireEnumInstantiation(named.Name, named.TypeArgs)
	return variant, "%struct." + mangled, true
}

// bindEnumPayload loads each bound payload identifier out of the
// enum's `[N x i8]` payload area by accumulated byte offset, the same
// llvmSizeHint accounting emitEnumType uses to size that area in the
// first place (spec.md §8.2.6: "IR extracts tag at offset 0, payload
// at offset 1").
func (g *Generator) bindEnumPayload(p *ast.EnumPattern, scrutinee string, scrutType types.Type) {
	if len(p.Payload) == 0 {
		return
	}
	variant, structType, ok := g.enumPatternLayout(p, scrutType)
	if !ok {
		return
	}
	base := g.spillToPtr(scrutinee, structType)
	payloadPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %s, i32 0, i32 1", payloadPtr, structType, base))

	offset := 0
	for i, sub := range p.Payload {
		if i >= len(variant.TupleFields) {
			break
		}
		ft := variant.TupleFields[i]
		llt := g.LowerType(ft)
		if ident, ok := sub.(*ast.IdentPattern); ok && ident.Name != "_" {
			fieldPtr := g.w.FreshReg()
			g.w.EmitLine(fmt.Sprintf("  %s = getelementptr i8, ptr %s, i64 %d", fieldPtr, payloadPtr, offset))
			val := g.w.FreshReg()
			g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", val, llt, fieldPtr))
			slot := g.spillToPtr(val, llt)
			g.defineLocal(ident.Name, slot, ft)
		}
		offset += llvmSizeHint(llt)
	}
}

func (g *Generator) genLoop(n *ast.LoopExpr) string {
	startL := g.w.FreshLabel("loop.start.")
	endL := g.w.FreshLabel("loop.end.")
	save := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr @llvm.stacksave()", save))
	g.loopStart = append(g.loopStart, startL)
	g.loopEnd = append(g.loopEnd, endL)
	g.loopStackSave = append(g.loopStackSave, save)

	g.w.EmitLine("  br label %" + startL)
	g.w.EmitLine(startL + ":")
	g.blockTerminated = false
	g.genBlockInline(n.Body)
	if !g.blockTerminated {
		g.w.EmitLine("  br label %" + startL)
	}
	g.w.EmitLine(endL + ":")
	g.blockTerminated = false

	g.loopStart = g.loopStart[:len(g.loopStart)-1]
	g.loopEnd = g.loopEnd[:len(g.loopEnd)-1]
	g.loopStackSave = g.loopStackSave[:len(g.loopStackSave)-1]
	return "void"
}

func (g *Generator) genWhile(n *ast.WhileExpr) string {
	startL := g.w.FreshLabel("while.start.")
	bodyL := g.w.FreshLabel("while.body.")
	endL := g.w.FreshLabel("while.end.")
	save := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr @llvm.stacksave()", save))
	g.loopStart = append(g.loopStart, startL)
	g.loopEnd = append(g.loopEnd, endL)
	g.loopStackSave = append(g.loopStackSave, save)

	g.w.EmitLine("  br label %" + startL)
	g.w.EmitLine(startL + ":")
	cond := g.genExpr(n.Cond)
	g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cond, bodyL, endL))
	g.w.EmitLine(bodyL + ":")
	g.blockTerminated = false
	g.genBlockInline(n.Body)
	if !g.blockTerminated {
		g.w.EmitLine("  br label %" + startL)
	}
	g.w.EmitLine(endL + ":")
	g.blockTerminated = false

	g.loopStart = g.loopStart[:len(g.loopStart)-1]
	g.loopEnd = g.loopEnd[:len(g.loopEnd)-1]
	g.loopStackSave = g.loopStackSave[:len(g.loopStackSave)-1]
	return "void"
}

// genFor lowers `for x in iterable { … }` against the runtime
// collection iteration protocol (tml_vec_len/tml_vec_get), the
// concrete iterable shape spec.md leaves to the standard-library
// collections rather than a general iterator-trait lowering.
func (g *Generator) genFor(n *ast.ForExpr) string {
	iter := g.genExpr(n.Iterable)
	g.w.MarkRuntimeNeeded("tml_vec_len")
	g.w.MarkRuntimeNeeded("tml_vec_get")
	lenReg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call i64 @tml_vec_len(ptr %s)", lenReg, iter))
	idxSlot := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca i64", idxSlot))
	g.w.EmitLine(fmt.Sprintf("  store i64 0, ptr %s", idxSlot))

	startL := g.w.FreshLabel("for.start.")
	bodyL := g.w.FreshLabel("for.body.")
	endL := g.w.FreshLabel("for.end.")
	save := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr @llvm.stacksave()", save))
	g.loopStart = append(g.loopStart, startL)
	g.loopEnd = append(g.loopEnd, endL)
	g.loopStackSave = append(g.loopStackSave, save)

	g.w.EmitLine("  br label %" + startL)
	g.w.EmitLine(startL + ":")
	idx := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load i64, ptr %s", idx, idxSlot))
	cmp := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = icmp slt i64 %s, %s", cmp, idx, lenReg))
	g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, bodyL, endL))
	g.w.EmitLine(bodyL + ":")

	g.pushScope()
	elemPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr @tml_vec_get(ptr %s, i64 %s)", elemPtr, iter, idx))
	if ident, ok := n.Pattern.(*ast.IdentPattern); ok {
		g.defineLocal(ident.Name, elemPtr, nil)
	}
	g.blockTerminated = false
	for _, s := range n.Body.Stmts {
		g.genStmt(s)
		if g.blockTerminated {
			break
		}
	}
	if !g.blockTerminated {
		g.emitScopeDrops()
	}
	g.popScope()

	if !g.blockTerminated {
		next := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = add i64 %s, 1", next, idx))
		g.w.EmitLine(fmt.Sprintf("  store i64 %s, ptr %s", next, idxSlot))
		g.w.EmitLine("  br label %" + startL)
	}
	g.w.EmitLine(endL + ":")
	g.blockTerminated = false

	g.loopStart = g.loopStart[:len(g.loopStart)-1]
	g.loopEnd = g.loopEnd[:len(g.loopEnd)-1]
	g.loopStackSave = g.loopStackSave[:len(g.loopStackSave)-1]
	return "void"
}

func (g *Generator) genReturn(n *ast.ReturnExpr) string {
	g.emitScopeDrops()
	if n.Value == nil {
		g.w.EmitLine("  ret void")
	} else {
		val := g.genExpr(n.Value)
		t := g.inferType(n.Value)
		g.w.EmitLine(fmt.Sprintf("  ret %s %s", g.LowerType(t), val))
	}
	g.blockTerminated = true
	return "void"
}

func (g *Generator) genBreak(n *ast.BreakExpr) string {
	if len(g.loopEnd) == 0 {
		return "void"
	}
	g.emitScopeDrops()
	top := len(g.loopEnd) - 1
	g.w.EmitLine(fmt.Sprintf("  call void @llvm.stackrestore(ptr %s)", g.loopStackSave[top]))
	g.w.EmitLine("  br label %" + g.loopEnd[top])
	g.blockTerminated = true
	return "void"
}

func (g *Generator) genContinue() string {
	if len(g.loopStart) == 0 {
		return "void"
	}
	g.emitScopeDrops()
	top := len(g.loopStart) - 1
	g.w.EmitLine(fmt.Sprintf("  call void @llvm.stackrestore(ptr %s)", g.loopStackSave[top]))
	g.w.EmitLine("  br label %" + g.loopStart[top])
	g.blockTerminated = true
	return "void"
}

func (g *Generator) genThrow(n *ast.ThrowExpr) string {
	g.emitScopeDrops()
	val := g.genExpr(n.Value)
	t := g.inferType(n.Value)
	g.w.EmitLine(fmt.Sprintf("  ret %s %s", g.LowerType(t), val))
	g.blockTerminated = true
	return "void"
}

// genTry lowers postfix `!`/`?` propagation on Outcome[T,E]/Maybe[T]:
// load the discriminant, branch on it, and on the error/Nothing
// branch return the value unchanged after running in-scope drops
// (spec.md §4.6 "Try / error propagation").
func (g *Generator) genTry(n *ast.TryExpr) string {
	val := g.genExpr(n.X)
	tagPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { i32, [8 x i8] }, ptr %s, i32 0, i32 0", tagPtr, val))
	tag := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load i32, ptr %s", tag, tagPtr))
	okL := g.w.FreshLabel("try.ok.")
	errL := g.w.FreshLabel("try.err.")
	cmp := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = icmp eq i32 %s, 0", cmp, tag))
	g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, okL, errL))
	g.w.EmitLine(errL + ":")
	g.emitScopeDrops()
	g.w.EmitLine(fmt.Sprintf("  ret ptr %s", val))
	g.w.EmitLine(okL + ":")
	payloadPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { i32, [8 x i8] }, ptr %s, i32 0, i32 1", payloadPtr, val))
	return payloadPtr
}

// genCall lowers a direct call. A generic callee is routed through
// requireFuncInstantiation to queue the specific monomorphization
// this call site needs.
func (g *Generator) genCall(n *ast.CallExpr) string {
	ident, isIdent := n.Callee.(*ast.IdentExpr)
	var calleeName string
	var retType string
	if isIdent {
		calleeName = ident.Name
		if sig, ok := g.tenv.LookupFunc(ident.Name); ok {
			if len(sig.Generics) > 0 {
				typeArgs := g.inferCallTypeArgs(sig, n.Args)
				calleeName = g.requireFuncInstantiation(sig, typeArgs)
			}
			retType = g.LowerType(sig.Ret)
		} else if val, handled := g.tryGenBuiltin(ident.Name, n.Args); handled {
			return val
		}
	} else {
		calleeName = g.genExpr(n.Callee)
	}
	if retType == "" {
		retType = "void"
	}
	var args []string
	for _, a := range n.Args {
		val := g.genExpr(a)
		args = append(args, g.LowerType(g.inferType(a))+" "+val)
	}
	callee := calleeName
	if isIdent {
		callee = "@" + calleeName
	}
	if retType == "void" {
		g.w.EmitLine(fmt.Sprintf("  call void %s(%s)", callee, joinArgs(args)))
		return "void"
	}
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call %s %s(%s)", reg, retType, callee, joinArgs(args)))
	return reg
}

func joinArgs(args []string) string {
	out := ""
	for i, a := range args {
		if i > 0 {
			out += ", "
		}
		out += a
	}
	return out
}

// inferCallTypeArgs infers a generic function's type arguments from
// its call-site argument expressions, one slot per generic parameter
// matched against the first parameter whose declared type names it —
// the same positional-field matching strategy the original's
// gen_struct_expr_ptr uses for generic structs, generalized from
// fields to parameters.
func (g *Generator) inferCallTypeArgs(sig types.FuncSig, args []ast.Expr) []types.Type {
	if len(sig.Generics) == 0 {
		return nil
	}
	inferred := make(map[string]types.Type, len(sig.Generics))
	for i, p := range sig.Params {
		if i >= len(args) {
			break
		}
		if gp, ok := p.Type.(types.Generic); ok {
			if _, seen := inferred[gp.Name]; !seen {
				inferred[gp.Name] = g.inferType(args[i])
			}
		}
	}
	result := make([]types.Type, len(sig.Generics))
	for i, gp := range sig.Generics {
		if t, ok := inferred[gp.Name]; ok {
			result[i] = t
		} else {
			result[i] = types.Primitive{Kind: types.I32}
		}
	}
	return result
}

func (g *Generator) genMethodCall(n *ast.MethodCallExpr) string {
	recvType := g.inferType(n.Receiver)
	recvPtr := g.genLValue(n.Receiver)
	named, _ := recvType.(types.Named)

	if dyn, ok := recvType.(types.DynBehavior); ok {
		return g.genDynMethodCall(n, recvPtr, dyn)
	}

	mangled := named.Name + "__" + n.Method
	_, sig, _ := g.tenv.FindImpl(recvType, n.Method)
	retType := "void"
	if sig.Ret != nil {
		retType = g.LowerType(sig.Ret)
	}
	args := []string{"ptr " + recvPtr}
	for _, a := range n.Args {
		val := g.genExpr(a)
		args = append(args, g.LowerType(g.inferType(a))+" "+val)
	}
	if retType == "void" {
		g.w.EmitLine(fmt.Sprintf("  call void @%s(%s)", mangled, joinArgs(args)))
		return "void"
	}
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call %s @%s(%s)", reg, retType, mangled, joinArgs(args)))
	return reg
}

// genDynMethodCall loads the vtable pointer from a `dyn` receiver,
// indexes to the method's slot, and calls through the function
// pointer with the data pointer as the first argument (spec.md §4.6
// "Method call on a dyn receiver").
func (g *Generator) genDynMethodCall(n *ast.MethodCallExpr, recvPtr string, dyn types.DynBehavior) string {
	vtablePtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { ptr, ptr }, ptr %s, i32 0, i32 1", vtablePtr, recvPtr))
	vtable := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load ptr, ptr %s", vtable, vtablePtr))
	dataPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { ptr, ptr }, ptr %s, i32 0, i32 0", dataPtr, recvPtr))
	data := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load ptr, ptr %s", data, dataPtr))

	slotIdx := g.behaviorMethodSlot(dyn.BehaviorName, n.Method)
	slotPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr ptr, ptr %s, i32 %d", slotPtr, vtable, slotIdx))
	fn := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load ptr, ptr %s", fn, slotPtr))

	args := []string{"ptr " + data}
	for _, a := range n.Args {
		val := g.genExpr(a)
		args = append(args, g.LowerType(g.inferType(a))+" "+val)
	}
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr %s(%s)", reg, fn, joinArgs(args)))
	return reg
}

// behaviorMethodSlot returns method's index in the behavior's
// declared method order, the same order emitVtable writes its slots
// in — def.Methods is an unordered map, so the slot
// index must come from the declaration's method slice, not the map.
func (g *Generator) behaviorMethodSlot(behaviorName, method string) int {
	def, ok := g.tenv.LookupBehavior(behaviorName)
	if !ok || def.Decl == nil {
		return 0
	}
	for i, m := range def.Decl.Methods {
		if m.Name == method {
			return i
		}
	}
	return 0
}

func (g *Generator) genPostfix(n *ast.PostfixExpr) string {
	ptr := g.genLValue(n.X)
	t := g.inferType(n.X)
	llt := g.LowerType(t)
	old := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", old, llt, ptr))
	delta := "1"
	op := "add"
	if n.Op == ast.OpPostDec {
		op = "sub"
	}
	next := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", next, op, llt, old, delta))
	g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", llt, next, ptr))
	return old
}

// genClosure emits an anonymous function taking `(ptr env, args…)`
// plus an env struct allocated on the caller's stack, and returns the
// `{ fn_ptr, env_ptr }` fat pointer value (spec.md §4.6 "Closures").
func (g *Generator) genClosure(n *ast.ClosureExpr) string {
	fnName := fmt.Sprintf("closure.%s", g.w.FreshLabel(""))

	var envFields []string
	var captureTypes []types.Type
	var captures []string
	for _, cap := range n.Captures {
		if l, ok := g.lookupLocal(cap); ok {
			envFields = append(envFields, g.AggregateType(l.typ))
			captureTypes = append(captureTypes, l.typ)
			captures = append(captures, cap)
		}
	}
	envType := fmt.Sprintf("{ %s }", joinArgs(envFields))
	if len(envFields) == 0 {
		envType = "{}"
	}

	var retType types.Type
	if n.RetType != nil {
		retType = g.resolveType(n.RetType)
	} else {
		retType = g.inferType(n.Body)
	}
	g.pendingClosures = append(g.pendingClosures, pendingClosure{
		fnName:       fnName,
		params:       n.Params,
		retType:      retType,
		body:         n.Body,
		captures:     captures,
		captureTypes: captureTypes,
	})
	envPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", envPtr, envType))
	for i, cap := range captures {
		l, _ := g.lookupLocal(cap)
		fieldPtr := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %s, i32 0, i32 %d", fieldPtr, envType, envPtr, i))
		val := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", val, g.LowerType(l.typ), l.ptr))
		g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", g.AggregateType(l.typ), val, fieldPtr))
	}

	resultPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = alloca { ptr, ptr }", resultPtr))
	fnFieldPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { ptr, ptr }, ptr %s, i32 0, i32 0", fnFieldPtr, resultPtr))
	g.w.EmitLine(fmt.Sprintf("  store ptr @%s, ptr %s", fnName, fnFieldPtr))
	envFieldPtr := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = getelementptr { ptr, ptr }, ptr %s, i32 0, i32 1", envFieldPtr, resultPtr))
	g.w.EmitLine(fmt.Sprintf("  store ptr %s, ptr %s", envPtr, envFieldPtr))
	return resultPtr
}

// emitClosureBody drains one queued pendingClosure into an actual
// `define` for the `@closure.N` symbol genClosure already referenced:
// the env pointer's fields are unpacked into fresh locals exactly as
// a normal function's parameters are, then its captured names and
// declared parameters are bound before lowering the body.
func (g *Generator) emitClosureBody(c pendingClosure) {
	retLL := g.LowerType(c.retType)
	if retLL == "" {
		retLL = "void"
	}
	var paramDecls []string
	for i, p := range c.params {
		paramDecls = append(paramDecls, g.LowerType(g.resolveType(p.Type))+" %p"+fmt.Sprint(i))
	}
	g.w.EmitLine(fmt.Sprintf("define %s @%s(ptr %%env%s) {", retLL, c.fnName, closureParamSuffix(paramDecls)))
	g.w.EmitLine("entry:")

	g.pushScope()
	var envFields []string
	for _, t := range c.captureTypes {
		envFields = append(envFields, g.AggregateType(t))
	}
	envType := fmt.Sprintf("{ %s }", joinArgs(envFields))
	if len(envFields) == 0 {
		envType = "{}"
	}
	for i, name := range c.captures {
		ct := c.captureTypes[i]
		fieldPtr := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = getelementptr %s, ptr %%env, i32 0, i32 %d", fieldPtr, envType, i))
		val := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load %s, ptr %s", val, g.AggregateType(ct), fieldPtr))
		slot := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", slot, g.LowerType(ct)))
		g.w.EmitLine(fmt.Sprintf("  store %s %s, ptr %s", g.LowerType(ct), val, slot))
		g.defineLocal(name, slot, ct)
	}
	for i, p := range c.params {
		pt := g.resolveType(p.Type)
		pll := g.LowerType(pt)
		slot := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = alloca %s", slot, pll))
		g.w.EmitLine(fmt.Sprintf("  store %s %%p%d, ptr %s", pll, i, slot))
		g.defineLocal(p.Name, slot, pt)
	}

	g.blockTerminated = false
	result := g.genExpr(c.body)
	if !g.blockTerminated {
		if retLL == "void" {
			g.w.EmitLine("  ret void")
		} else {
			g.w.EmitLine(fmt.Sprintf("  ret %s %s", retLL, result))
		}
	}
	g.popScope()
	g.w.EmitLine("}")
	g.w.EmitLine("")
}

func closureParamSuffix(paramDecls []string) string {
	if len(paramDecls) == 0 {
		return ""
	}
	return ", " + joinArgs(paramDecls)
}
