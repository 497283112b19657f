package codegen

import (
	"fmt"

	"github.com/hivellm/tml/internal/ast"
)

// tryGenBuiltin dispatches a call by name through the per-category
// builtin tables in sequence, returning (ir, true) on a match or
// ("", false) when name names no builtin (the caller then treats it
// as an ordinary user function call), per spec.md §4.6 "Builtin
// intrinsics".
//
// Grounded on
// _examples/original_source/compiler/src/codegen/builtins/{assert,atomic,io}.cpp
// and _examples/original_source/packages/compiler/src/codegen/builtins/{mem,sync}.cpp
// for the dispatch-table shape (try_gen_builtin_X returning an
// optional) and the individual lowering patterns below.
func (g *Generator) tryGenBuiltin(name string, args []ast.Expr) (string, bool) {
	if v, ok := g.tryGenBuiltinIO(name, args); ok {
		return v, true
	}
	if v, ok := g.tryGenBuiltinMem(name, args); ok {
		return v, true
	}
	if v, ok := g.tryGenBuiltinAtomic(name, args); ok {
		return v, true
	}
	if v, ok := g.tryGenBuiltinSync(name, args); ok {
		return v, true
	}
	if v, ok := g.tryGenBuiltinAssert(name, args); ok {
		return v, true
	}
	return "", false
}

// tryGenBuiltinIO lowers print/println/panic, grounded on io.cpp's
// with_newline handling and runtime dispatch per argument LLVM type.
func (g *Generator) tryGenBuiltinIO(name string, args []ast.Expr) (string, bool) {
	switch name {
	case "print", "println":
		for _, a := range args {
			v := g.genExpr(a)
			t := g.inferType(a)
			switch g.LowerType(t) {
			case "i32":
				g.w.EmitLine(fmt.Sprintf("  call void @tml_print_i32(i32 %s)", v))
			case "i64":
				g.w.EmitLine(fmt.Sprintf("  call void @tml_print_i64(i64 %s)", v))
			case "double", "float":
				g.w.EmitLine(fmt.Sprintf("  call void @tml_print_f64(double %s)", v))
			case "i1":
				g.w.EmitLine(fmt.Sprintf("  call void @tml_print_bool(i1 %s)", v))
			default:
				g.w.EmitLine(fmt.Sprintf("  call void @tml_print(ptr %s)", v))
			}
		}
		if name == "println" {
			g.w.EmitLine("  call void @tml_println()")
		}
		return "void", true
	case "panic":
		var msg string
		if len(args) > 0 {
			msg = g.genExpr(args[0])
		} else {
			msg = g.internStringPtr("panic")
		}
		g.w.EmitLine(fmt.Sprintf("  call void @tml_panic(ptr %s)", msg))
		g.w.EmitLine("  unreachable")
		g.blockTerminated = true
		return "void", true
	}
	return "", false
}

// tryGenBuiltinMem lowers the mem_* family to direct runtime calls,
// grounded on mem.cpp's alloc/dealloc/copy/compare set.
func (g *Generator) tryGenBuiltinMem(name string, args []ast.Expr) (string, bool) {
	switch name {
	case "alloc", "mem_alloc":
		size := g.genExpr(args[0])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = call ptr @tml_alloc(i64 %s)", reg, size))
		return reg, true
	case "mem_realloc":
		ptr, size := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = call ptr @tml_realloc(ptr %s, i64 %s)", reg, ptr, size))
		return reg, true
	case "dealloc", "mem_free":
		ptr := g.genExpr(args[0])
		g.w.EmitLine(fmt.Sprintf("  call void @tml_free(ptr %s)", ptr))
		return "void", true
	case "mem_copy", "mem_move":
		dst, src, n := g.genExpr(args[0]), g.genExpr(args[1]), g.genExpr(args[2])
		g.w.EmitLine(fmt.Sprintf("  call void @llvm.memmove.p0.p0.i64(ptr %s, ptr %s, i64 %s, i1 false)", dst, src, n))
		g.w.MarkRuntimeNeeded("llvm.memmove.p0.p0.i64")
		return "void", true
	case "mem_zero":
		ptr, n := g.genExpr(args[0]), g.genExpr(args[1])
		g.w.EmitLine(fmt.Sprintf("  call void @llvm.memset.p0.i64(ptr %s, i8 0, i64 %s, i1 false)", ptr, n))
		g.w.MarkRuntimeNeeded("llvm.memset.p0.i64")
		return "void", true
	}
	return "", false
}

// tryGenBuiltinAtomic lowers atomic_* to LLVM atomicrmw/cmpxchg/fence
// instructions directly, rather than to runtime calls, grounded on
// atomic.cpp's per-operation instruction choice.
func (g *Generator) tryGenBuiltinAtomic(name string, args []ast.Expr) (string, bool) {
	intWidth := func() string {
		if len(args) > 0 {
			return g.LowerType(g.inferType(args[0]))
		}
		return "i32"
	}
	switch name {
	case "atomic_load", "atomic_load_i32", "atomic_load_i64":
		ptr := g.genExpr(args[0])
		w := "i32"
		if name == "atomic_load_i64" {
			w = "i64"
		}
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = load atomic %s, ptr %s seq_cst, align %d", reg, w, ptr, byteAlign(w)))
		return reg, true
	case "atomic_store", "atomic_store_i32", "atomic_store_i64":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		w := "i32"
		if name == "atomic_store_i64" {
			w = "i64"
		}
		g.w.EmitLine(fmt.Sprintf("  store atomic %s %s, ptr %s seq_cst, align %d", w, val, ptr, byteAlign(w)))
		return "void", true
	case "atomic_add", "atomic_fetch_add_i32", "atomic_fetch_add_i64":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = atomicrmw add ptr %s, %s %s seq_cst", reg, ptr, intWidth(), val))
		return reg, true
	case "atomic_sub", "atomic_fetch_sub_i32", "atomic_fetch_sub_i64":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = atomicrmw sub ptr %s, %s %s seq_cst", reg, ptr, intWidth(), val))
		return reg, true
	case "atomic_and":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = atomicrmw and ptr %s, %s %s seq_cst", reg, ptr, intWidth(), val))
		return reg, true
	case "atomic_or":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = atomicrmw or ptr %s, %s %s seq_cst", reg, ptr, intWidth(), val))
		return reg, true
	case "atomic_exchange", "atomic_swap_i32", "atomic_swap_i64":
		ptr, val := g.genExpr(args[0]), g.genExpr(args[1])
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = atomicrmw xchg ptr %s, %s %s seq_cst", reg, ptr, intWidth(), val))
		return reg, true
	case "atomic_cas", "atomic_cas_val", "atomic_compare_exchange_i32", "atomic_compare_exchange_i64":
		ptr, expected, desired := g.genExpr(args[0]), g.genExpr(args[1]), g.genExpr(args[2])
		w := intWidth()
		pairReg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = cmpxchg ptr %s, %s %s, %s %s seq_cst seq_cst", pairReg, ptr, w, expected, w, desired))
		reg := g.w.FreshReg()
		g.w.EmitLine(fmt.Sprintf("  %s = extractvalue { %s, i1 } %s, 1", reg, w, pairReg))
		return reg, true
	case "fence", "atomic_fence":
		g.w.EmitLine("  fence seq_cst")
		return "void", true
	case "fence_acquire", "atomic_fence_acquire":
		g.w.EmitLine("  fence acquire")
		return "void", true
	case "fence_release", "atomic_fence_release":
		g.w.EmitLine("  fence release")
		return "void", true
	}
	return "", false
}

func byteAlign(llvmType string) int {
	switch llvmType {
	case "i64", "double":
		return 8
	case "i32", "float":
		return 4
	case "i16":
		return 2
	default:
		return 1
	}
}

// tryGenBuiltinSync lowers the thread/mutex/channel/waitgroup family
// to named runtime calls, grounded on sync.cpp's one-call-per-op
// shape — every sync primitive is opaque to codegen and lives in the
// support runtime, not inlined LLVM instructions.
func (g *Generator) tryGenBuiltinSync(name string, args []ast.Expr) (string, bool) {
	syncRuntimeOps := map[string]string{
		"spin_lock": "tml_spin_lock", "spin_unlock": "tml_spin_unlock", "spin_trylock": "tml_spin_trylock",
		"thread_spawn": "tml_thread_spawn", "thread_join": "tml_thread_join", "thread_yield": "tml_thread_yield",
		"thread_sleep": "tml_thread_sleep", "thread_id": "tml_thread_id",
		"channel_create": "tml_channel_create", "channel_send": "tml_channel_send", "channel_recv": "tml_channel_recv",
		"channel_try_send": "tml_channel_try_send", "channel_try_recv": "tml_channel_try_recv",
		"channel_close": "tml_channel_close", "channel_destroy": "tml_channel_destroy", "channel_len": "tml_channel_len",
		"mutex_create": "tml_mutex_create", "mutex_lock": "tml_mutex_lock", "mutex_unlock": "tml_mutex_unlock",
		"mutex_try_lock": "tml_mutex_try_lock", "mutex_destroy": "tml_mutex_destroy",
		"waitgroup_create": "tml_waitgroup_create", "waitgroup_add": "tml_waitgroup_add",
		"waitgroup_done": "tml_waitgroup_done", "waitgroup_wait": "tml_waitgroup_wait",
		"waitgroup_destroy": "tml_waitgroup_destroy",
	}
	runtimeName, ok := syncRuntimeOps[name]
	if !ok {
		return "", false
	}
	var rendered []string
	for _, a := range args {
		v := g.genExpr(a)
		rendered = append(rendered, g.LowerType(g.inferType(a))+" "+v)
	}
	reg := g.w.FreshReg()
	g.w.EmitLine(fmt.Sprintf("  %s = call ptr @%s(%s)", reg, runtimeName, joinArgs(rendered)))
	g.w.MarkRuntimeNeeded(runtimeName)
	return reg, true
}

// tryGenBuiltinAssert lowers assert/assert_eq/assert_ne to a
// comparison followed by a conditional panic, grounded directly on
// assert.cpp's br-to-fail-label-then-unreachable pattern.
func (g *Generator) tryGenBuiltinAssert(name string, args []ast.Expr) (string, bool) {
	switch name {
	case "assert":
		cond := g.genExpr(args[0])
		okL, failL := g.w.FreshLabel("assert.ok."), g.w.FreshLabel("assert.fail.")
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cond, okL, failL))
		g.w.EmitLine(failL + ":")
		msg := g.internStringPtr("assertion failed")
		g.w.EmitLine(fmt.Sprintf("  call void @tml_panic(ptr %s)", msg))
		g.w.EmitLine("  unreachable")
		g.w.EmitLine(okL + ":")
		return "void", true
	case "assert_eq", "assert_ne":
		left, right := g.genExpr(args[0]), g.genExpr(args[1])
		t := g.inferType(args[0])
		llt := g.LowerType(t)
		var cmp string
		if llt == "ptr" {
			eqReg := g.w.FreshReg()
			g.w.EmitLine(fmt.Sprintf("  %s = call i1 @tml_str_eq(ptr %s, ptr %s)", eqReg, left, right))
			cmp = eqReg
		} else {
			instr := "icmp eq"
			if isFloatType(t) {
				instr = "fcmp oeq"
			}
			reg := g.w.FreshReg()
			g.w.EmitLine(fmt.Sprintf("  %s = %s %s %s, %s", reg, instr, llt, left, right))
			cmp = reg
		}
		if name == "assert_ne" {
			negated := g.w.FreshReg()
			g.w.EmitLine(fmt.Sprintf("  %s = xor i1 %s, 1", negated, cmp))
			cmp = negated
		}
		okL, failL := g.w.FreshLabel("assert.ok."), g.w.FreshLabel("assert.fail.")
		g.w.EmitLine(fmt.Sprintf("  br i1 %s, label %%%s, label %%%s", cmp, okL, failL))
		g.w.EmitLine(failL + ":")
		msg := g.internStringPtr("assertion failed: values not equal")
		g.w.EmitLine(fmt.Sprintf("  call void @tml_panic(ptr %s)", msg))
		g.w.EmitLine("  unreachable")
		g.w.EmitLine(okL + ":")
		return "void", true
	}
	return "", false
}
