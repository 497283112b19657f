package codegen

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
)

// TestGenerateFunctionIRSnapshot pins the emitted LLVM IR for a small,
// representative function against a golden file, the same way the
// teacher locks down interpreter output with go-snaps
// (internal/interp/fixture_test.go's TestDWScriptFixtures) rather than
// re-deriving every expected instruction by hand at each call site.
func TestGenerateFunctionIRSnapshot(t *testing.T) {
	ir := compileToIR(t, "fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n")
	snaps.MatchSnapshot(t, "add_function_ir", ir)
}

// TestGenerateStructEqIRSnapshot pins the derived-PartialEq dispatch
// lowering (the struct `==` -> `__eq(ptr, ptr)` call path) as a golden
// file so a future regression in operators.go's genStructEq shows up
// as a snapshot diff instead of only an assertion failure.
func TestGenerateStructEqIRSnapshot(t *testing.T) {
	src := `
@PartialEq
struct Point {
  x: I32,
  y: I32,
}

fn same(a: Point, b: Point) -> Bool {
  a == b
}
`
	ir := compileToIR(t, src)
	snaps.MatchSnapshot(t, "struct_eq_ir", ir)
}

// TestGenerateStringInterpolationIRSnapshot pins the interpolated-
// string lowering (tml_str_new/tml_str_concat/tml_i32_to_str chain)
// added to expr.go's genInterpString.
func TestGenerateStringInterpolationIRSnapshot(t *testing.T) {
	ir := compileToIR(t, "fn greet(name: Str, age: I32) -> Str {\n  \"hello {name}, age {age}\"\n}\n")
	snaps.MatchSnapshot(t, "string_interpolation_ir", ir)
}
