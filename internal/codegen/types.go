package codegen

import (
	"strconv"
	"strings"

	"github.com/hivellm/tml/internal/types"
)

// LowerType maps a semantic type to its LLVM textual type, per
// spec.md §4.6's type-lowering table. nil (an unresolved/unknown
// type) lowers to `ptr`, the generator's fallback for anything it
// could not statically pin down.
func (g *Generator) LowerType(t types.Type) string {
	if t == nil {
		return "ptr"
	}
	switch tt := t.(type) {
	case types.Primitive:
		return lowerPrimitive(tt.Kind)
	case types.Ref:
		return "ptr"
	case types.Ptr:
		return "ptr"
	case types.Array:
		return "[" + strconv.FormatInt(tt.Size, 10) + " x " + g.LowerType(tt.Elem) + "]"
	case types.Slice:
		return "{ ptr, i64 }"
	case types.Tuple:
		parts := make([]string, len(tt.Elems))
		for i, e := range tt.Elems {
			parts[i] = g.LowerType(e)
		}
		return "{ " + strings.Join(parts, ", ") + " }"
	case types.Named:
		// Struct, enum, class, and interface named types all lower to
		// the same struct-shaped aggregate; the borrow/type checker
		// already rejected any use that wouldn't be layout-compatible.
		return "%struct." + g.MangleNamed(tt.Name, tt.TypeArgs)
	case types.Func:
		return "ptr"
	case types.Closure:
		return "{ ptr, ptr }"
	case types.DynBehavior:
		return "%dyn." + tt.BehaviorName
	case types.ImplBehavior:
		return "ptr"
	case types.Var:
		return "ptr"
	case types.Generic:
		return "ptr"
	default:
		return "ptr"
	}
}

func lowerPrimitive(k types.PrimitiveKind) string {
	switch k {
	case types.I8, types.U8:
		return "i8"
	case types.I16, types.U16:
		return "i16"
	case types.I32, types.U32:
		return "i32"
	case types.I64, types.U64:
		return "i64"
	case types.I128, types.U128:
		return "i128"
	case types.F32:
		return "float"
	case types.F64:
		return "double"
	case types.Bool:
		return "i1"
	case types.Char:
		return "i32"
	case types.Str:
		return "ptr"
	case types.Unit:
		return "void"
	case types.Never:
		return "void"
	}
	return "ptr"
}

// AggregateType is LowerType's result for a value stored inside
// another aggregate (a struct field, an array element), where `Bool`
// is stored widened to a full byte rather than the packed `i1` used
// at top level (spec.md §4.6 "stored as i8 in aggregates").
func (g *Generator) AggregateType(t types.Type) string {
	if p, ok := t.(types.Primitive); ok && p.Kind == types.Bool {
		return "i8"
	}
	return g.LowerType(t)
}

// canonicalTypeName returns a mangling-safe short name for t, used as
// one `Tᵢ` component of a generic instantiation's mangled name.
func canonicalTypeName(t types.Type) string {
	if t == nil {
		return "Unknown"
	}
	switch tt := t.(type) {
	case types.Primitive:
		return tt.Key()
	case types.Ref:
		return "ref" + canonicalTypeName(tt.Elem)
	case types.Ptr:
		return "ptr" + canonicalTypeName(tt.Elem)
	case types.Named:
		if len(tt.TypeArgs) == 0 {
			return tt.Name
		}
		parts := make([]string, len(tt.TypeArgs))
		for i, a := range tt.TypeArgs {
			parts[i] = canonicalTypeName(a)
		}
		return tt.Name + "__" + strings.Join(parts, "__")
	case types.Array:
		return "Array" + strconv.FormatInt(tt.Size, 10) + canonicalTypeName(tt.Elem)
	case types.Slice:
		return "Slice" + canonicalTypeName(tt.Elem)
	case types.Tuple:
		parts := make([]string, len(tt.Elems))
		for i, e := range tt.Elems {
			parts[i] = canonicalTypeName(e)
		}
		return "Tuple" + strings.Join(parts, "")
	default:
		return "T"
	}
}

// MangleNamed produces the `Base__T0__T1` mangled name for a
// generic-instantiated struct/enum/class (spec.md §4.6 "Name
// mangling"). A non-generic name (no type args) is returned
// unmangled.
func (g *Generator) MangleNamed(base string, typeArgs []types.Type) string {
	if len(typeArgs) == 0 {
		return base
	}
	parts := make([]string, len(typeArgs))
	for i, a := range typeArgs {
		parts[i] = canonicalTypeName(a)
	}
	return base + "__" + strings.Join(parts, "__")
}

// MangleFunc produces a function's mangled symbol name: its generic
// instantiation suffix, plus an `sN_` suite prefix when the driver
// requested test-internal linkage for suite N (spec.md §4.6).
func (g *Generator) MangleFunc(name string, typeArgs []types.Type) string {
	mangled := g.MangleNamed(name, typeArgs)
	if g.Options.SuiteTestIndex > 0 {
		mangled = "s" + strconv.Itoa(g.Options.SuiteTestIndex) + "_" + mangled
	}
	return mangled
}
