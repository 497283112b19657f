package codegen

import (
	"strings"
	"testing"

	"github.com/hivellm/tml/internal/checker"
	"github.com/hivellm/tml/internal/config"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/parser"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

// compileToIR runs the lex/parse/check pipeline over src and lowers
// the result to LLVM IR text, failing the test on any diagnostic.
func compileToIR(t *testing.T, src string) string {
	t.Helper()
	f := source.NewFile("test.tml", src)
	bag := &diag.Bag{}
	p := parser.New(f, bag)
	file := p.ParseFile()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", bag.Render(f))
	}
	env := types.NewEnv(types.NewRegistry(), "test")
	chk := checker.New(env, bag)
	chk.CheckFile(file)
	if bag.HasErrors() {
		t.Fatalf("check errors: %s", bag.Render(f))
	}
	g := New(env, bag, config.Default(), f)
	ir := g.Generate(file)
	if bag.HasErrors() {
		t.Fatalf("codegen errors: %s", bag.Render(f))
	}
	return ir
}

func TestGenerateSimpleFunction(t *testing.T) {
	ir := compileToIR(t, "fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n")
	if !strings.Contains(ir, "define") {
		t.Fatalf("expected a function definition in IR, got:\n%s", ir)
	}
	if !strings.Contains(ir, "add") {
		t.Fatalf("expected mangled name referencing add, got:\n%s", ir)
	}
}

func TestGenerateOnlyReferencedRuntimeDeclsSurvive(t *testing.T) {
	ir := compileToIR(t, "fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n")
	if strings.Contains(ir, "@tml_str_concat") {
		t.Fatalf("did not expect tml_str_concat to be declared when no string ops are used:\n%s", ir)
	}
}

func TestGenerateStructWithDeriveEq(t *testing.T) {
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
	if !strings.Contains(ir, "__eq(") {
		t.Fatalf("expected a derived __eq function, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call i1 @") || !strings.Contains(ir, "__eq(ptr") {
		t.Fatalf("expected struct == to call the derived __eq by pointer, got:\n%s", ir)
	}
	if strings.Contains(ir, "icmp eq %struct.") {
		t.Fatalf("struct == must not icmp the raw aggregate value, got:\n%s", ir)
	}
}

func TestGenerateStringInterpolation(t *testing.T) {
	src := "fn greet(name: Str, age: I32) -> Str {\n  \"hello {name}, age {age}\"\n}\n"
	ir := compileToIR(t, src)
	if !strings.Contains(ir, "@tml_str_concat") {
		t.Fatalf("expected interpolation to lower to tml_str_concat calls, got:\n%s", ir)
	}
	if !strings.Contains(ir, "@tml_i32_to_str") {
		t.Fatalf("expected the I32 age segment to route through tml_i32_to_str, got:\n%s", ir)
	}
}

func TestGenerateCoverageInstrumentation(t *testing.T) {
	f := source.NewFile("cov.tml", "fn add(a: I32, b: I32) -> I32 {\n  let sum: I32 = a + b\n  sum\n}\n")
	bag := &diag.Bag{}
	p := parser.New(f, bag)
	file := p.ParseFile()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", bag.Render(f))
	}
	env := types.NewEnv(types.NewRegistry(), "test")
	chk := checker.New(env, bag)
	chk.CheckFile(file)
	if bag.HasErrors() {
		t.Fatalf("check errors: %s", bag.Render(f))
	}
	opts := config.Default()
	opts.CoverageEnabled = true
	g := New(env, bag, opts, f)
	ir := g.Generate(file)
	if bag.HasErrors() {
		t.Fatalf("codegen errors: %s", bag.Render(f))
	}
	if !strings.Contains(ir, "call void @tml_cover_func(i32 0)") {
		t.Fatalf("expected a tml_cover_func call at function entry, got:\n%s", ir)
	}
	if !strings.Contains(ir, "call void @tml_cover_line(i32") {
		t.Fatalf("expected a tml_cover_line call per statement, got:\n%s", ir)
	}
}

func TestGenerateCoverageDisabledByDefault(t *testing.T) {
	ir := compileToIR(t, "fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n")
	if strings.Contains(ir, "tml_cover_") {
		t.Fatalf("did not expect coverage calls without Options.CoverageEnabled, got:\n%s", ir)
	}
}

func TestGenerateEnumPatternDiscriminantAndPayload(t *testing.T) {
	src := `
enum Maybe {
  Just(I32),
  Nothing,
}

fn unwrapOr(m: Maybe) -> I32 {
  when m {
    Just(x) => x + 1
    Nothing => 0
  }
}
`
	ir := compileToIR(t, src)
	if !strings.Contains(ir, "getelementptr %struct.Maybe, ptr") {
		t.Fatalf("expected the tag to be extracted via getelementptr on the enum struct, got:\n%s", ir)
	}
	if !strings.Contains(ir, "icmp eq i32") {
		t.Fatalf("expected a tag discriminant comparison, got:\n%s", ir)
	}
	if !strings.Contains(ir, "getelementptr i8, ptr") {
		t.Fatalf("expected the Just payload to be loaded via a byte-offset getelementptr, got:\n%s", ir)
	}
	if strings.Contains(ir, "@x") {
		t.Fatalf("Just(x)'s binding must not fall back to the unresolved symbol @x, got:\n%s", ir)
	}
}

func TestGenerateStructWithDeriveDebugAndDisplay(t *testing.T) {
	src := `
@Debug
@Display
struct Point {
  x: I32,
  y: I32,
}
`
	ir := compileToIR(t, src)
	if !strings.Contains(ir, "__debug(ptr") {
		t.Fatalf("expected a derived __debug function, got:\n%s", ir)
	}
	if !strings.Contains(ir, "Point { ") {
		t.Fatalf("expected the Debug output to be prefixed with the type name, got:\n%s", ir)
	}
	if !strings.Contains(ir, "x: ") || !strings.Contains(ir, "y: ") {
		t.Fatalf("expected Debug output to name each field, got:\n%s", ir)
	}
	if !strings.Contains(ir, "__display(ptr") {
		t.Fatalf("expected a derived __display function, got:\n%s", ir)
	}
}

func TestGenerateBoolInterpolation(t *testing.T) {
	src := "fn describe(flag: Bool) -> Str {\n  \"flag={flag}\"\n}\n"
	ir := compileToIR(t, src)
	if !strings.Contains(ir, "@tml_bool_to_str") {
		t.Fatalf("expected the Bool segment to route through tml_bool_to_str, got:\n%s", ir)
	}
}
