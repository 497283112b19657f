package borrow

import (
	"testing"

	"github.com/hivellm/tml/internal/checker"
	"github.com/hivellm/tml/internal/diag"
	"github.com/hivellm/tml/internal/parser"
	"github.com/hivellm/tml/internal/source"
	"github.com/hivellm/tml/internal/types"
)

// checkSrc type-checks then borrow-checks text, returning the
// diagnostics the borrow pass produced (type errors fail the test
// outright, matching internal/checker's own helper).
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
	tc := checker.New(env, bag)
	tc.CheckFile(f)
	if bag.HasErrors() {
		t.Fatalf("type errors: %s", bag.Render(file))
	}
	borrowBag := &diag.Bag{}
	New(env, borrowBag).CheckFile(f)
	return borrowBag
}

func TestUseAfterMoveRejected(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let a: Str = \"hi\"\n"+
		"  let b = a\n"+
		"  let c = a\n"+
		"}\n")
	if !bag.HasErrors() {
		t.Fatalf("expected a use-of-moved-value error")
	}
}

func TestCopyTypeNotMoved(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let a: I32 = 1\n"+
		"  let b = a\n"+
		"  let c = a\n"+
		"}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors for a Copy type: %v", bag.Items())
	}
}

func TestDoubleMutableBorrowRejected(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let mut x: I32 = 1\n"+
		"  let r1 = ref mut x\n"+
		"  let r2 = ref mut x\n"+
		"}\n")
	if !bag.HasErrors() {
		t.Fatalf("expected an error borrowing x as mutable twice")
	}
}

func TestMutateWhileBorrowedRejected(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let mut x: I32 = 1\n"+
		"  let r = ref x\n"+
		"  x = 2\n"+
		"}\n")
	if !bag.HasErrors() {
		t.Fatalf("expected an error mutating a borrowed place")
	}
}

func TestBorrowReleasedAtScopeEnd(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let mut x: I32 = 1\n"+
		"  {\n"+
		"    let r = ref mut x\n"+
		"  }\n"+
		"  x = 2\n"+
		"}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors after the borrow's scope ended: %v", bag.Items())
	}
}

func TestAssignToImmutableRejected(t *testing.T) {
	bag := checkSrc(t, "fn f() {\n"+
		"  let x: I32 = 1\n"+
		"  x = 2\n"+
		"}\n")
	if !bag.HasErrors() {
		t.Fatalf("expected an error assigning to an immutable binding")
	}
}

func TestMethodCallArgumentsCanReadReceiver(t *testing.T) {
	bag := checkSrc(t, "struct Counter {\n  n: I32\n}\n\n"+
		"impl Counter {\n"+
		"  fn bump(self: ref mut Counter, by: I32) {\n    self.n = self.n + by\n  }\n"+
		"}\n\n"+
		"fn f() {\n"+
		"  let mut c: Counter = Counter { n: 0 }\n"+
		"  c.bump(c.n)\n"+
		"}\n")
	if bag.HasErrors() {
		t.Fatalf("unexpected errors: %v", bag.Items())
	}
}
