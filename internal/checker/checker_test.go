package checker

import (
	"testing"

	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/parser"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

func checkSrc(t *testing.T, text string) *diag.Bag {
	t.Helper()
	file := source.NewFile("test.tml", text)
	bag := &diag.Bag{}
	p := parser.New(file, bag)
	f := p.ParseFile()
	if bag.HasErrors() {
		t.Fatalf("parse errors: %s", bag.Render(file))
	}
	env := types.NewEnv(types.NewRegistry(), "test")
	c := New(env, bag)
	c.CheckFile(f)
	return bag
}

func TestCheckSimpleFunction(t *testing.T) {
	bag := checkSrc(t, "fn add(a: I32, b: I32) -> I32 {\n  a + b\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
}

func TestCheckStructFieldAccess(t *testing.T) {
	bag := checkSrc(t, "struct Point {\n  x: I32\n  y: I32\n}\n\n"+
		"fn sum(p: Point) -> I32 {\n  p.x + p.y\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
}

func TestCheckUndefinedNameSuggestsSimilar(t *testing.T) {
	bag := checkSrc(t, "fn f() -> I32 {\n  coun\n}\n\nfn count() -> I32 { 1 }\n")
	if !bag.HasErrors() {
		t.Fatalf("expected an undefined-name error")
	}
}

func TestCheckImmutableAssignmentRejected(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n  let x: I32 = 1\n  x = 2\n}\n")
	if !bag.HasErrors() {
		t.Fatalf("expected an error assigning to an immutable binding")
	}
}

func TestCheckMutableAssignmentAllowed(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n  var x: I32 = 1\n  x = 2\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
}

func TestCheckWhenArmsUnify(t *testing.T) {
	bag := checkSrc(t, "fn classify(x: I32) -> Str {\n"+
		"  when x {\n    1 => \"one\"\n    _ => \"other\"\n  }\n}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
}
