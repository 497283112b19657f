package types

// Builtins holds the signatures of intrinsic functions available in
// every module without an explicit `use`, organized by concern the
// same way the original compiler's `TypeEnv::init_builtin_*` methods
// do: I/O, memory, and atomics.
//
// Grounded on
// _examples/original_source/compiler/src/types/builtins/{io,mem,atomic}.cpp.
var Builtins = buildBuiltins()

func ptrUnit() Type     { return Ptr{Elem: Primitive{Unit}} }
func ptrMutUnit() Type  { return Ptr{Mut: true, Elem: Primitive{Unit}} }
func sliceStr() Type    { return Slice{Elem: Primitive{Str}} }
func prim(k PrimitiveKind) Type { return Primitive{k} }

func buildBuiltins() map[string]FuncSig {
	b := map[string]FuncSig{}
	add := func(name string, params []Param, ret Type) {
		b[name] = FuncSig{Name: name, Params: params, Ret: ret}
	}

	// io.cpp
	add("print", []Param{{Name: "value", Type: prim(Str)}}, Primitive{Unit})
	add("println", []Param{{Name: "value", Type: prim(Str)}}, Primitive{Unit})
	add("panic", []Param{{Name: "message", Type: prim(Str)}}, Primitive{Never})
	add("assert", []Param{{Name: "cond", Type: prim(Bool)}}, Primitive{Unit})
	add("assert_eq", []Param{{Name: "a", Type: prim(I32)}, {Name: "b", Type: prim(I32)}}, Primitive{Unit})
	add("assert_ne", []Param{{Name: "a", Type: prim(I32)}, {Name: "b", Type: prim(I32)}}, Primitive{Unit})

	// mem.cpp
	add("mem_alloc", []Param{{Name: "size", Type: prim(U64)}}, ptrMutUnit())
	add("mem_alloc_zeroed", []Param{{Name: "size", Type: prim(U64)}}, ptrMutUnit())
	add("mem_realloc", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "size", Type: prim(U64)}}, ptrMutUnit())
	add("mem_free", []Param{{Name: "ptr", Type: ptrMutUnit()}}, Primitive{Unit})
	add("mem_copy", []Param{{Name: "dst", Type: ptrMutUnit()}, {Name: "src", Type: ptrUnit()}, {Name: "size", Type: prim(U64)}}, Primitive{Unit})
	add("mem_move", []Param{{Name: "dst", Type: ptrMutUnit()}, {Name: "src", Type: ptrUnit()}, {Name: "size", Type: prim(U64)}}, Primitive{Unit})
	add("mem_set", []Param{{Name: "dst", Type: ptrMutUnit()}, {Name: "value", Type: prim(U8)}, {Name: "size", Type: prim(U64)}}, Primitive{Unit})
	add("mem_zero", []Param{{Name: "dst", Type: ptrMutUnit()}, {Name: "size", Type: prim(U64)}}, Primitive{Unit})
	add("mem_compare", []Param{{Name: "a", Type: ptrUnit()}, {Name: "b", Type: ptrUnit()}, {Name: "size", Type: prim(U64)}}, Primitive{I32})
	add("mem_eq", []Param{{Name: "a", Type: ptrUnit()}, {Name: "b", Type: ptrUnit()}, {Name: "size", Type: prim(U64)}}, Primitive{Bool})
	add("ptr_offset", []Param{{Name: "ptr", Type: ptrUnit()}, {Name: "offset", Type: prim(I64)}}, ptrUnit())

	// atomic.cpp
	add("atomic_load", []Param{{Name: "ptr", Type: ptrUnit()}}, Primitive{I32})
	add("atomic_store", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "value", Type: prim(I32)}}, Primitive{Unit})
	add("atomic_add", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "value", Type: prim(I32)}}, Primitive{I32})
	add("atomic_sub", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "value", Type: prim(I32)}}, Primitive{I32})
	add("atomic_exchange", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "value", Type: prim(I32)}}, Primitive{I32})
	add("atomic_cas", []Param{{Name: "ptr", Type: ptrMutUnit()}, {Name: "expected", Type: prim(I32)}, {Name: "desired", Type: prim(I32)}}, Primitive{Bool})
	add("fence_acquire", nil, Primitive{Unit})
	add("fence_release", nil, Primitive{Unit})
	add("fence_seqcst", nil, Primitive{Unit})

	return b
}

// Lookup returns the builtin signature named name, if one exists.
func Lookup(name string) (FuncSig, bool) {
	sig, ok := Builtins[name]
	return sig, ok
}
